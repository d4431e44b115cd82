// Package reconcile implements the scheduling core of a UI rendering
// library: a priority-based update queue with expiration-time scheduling.
//
// State transitions are recorded as updates tagged with an expiration time on
// an inverted scale (larger = more urgent). A processing pass applies every
// update at or above a priority threshold and keeps the rest, in original
// order, for a later pass; re-running at progressively lower thresholds
// always converges to the state produced by applying everything in insertion
// order, no matter how the passes were interleaved or interrupted.
//
// The package never blocks and owns no event loop. Work is handed to an
// external cooperative scheduler through the Scheduler interface; updates
// that must not be deferred go through a synchronous flush queue instead.
// All bookkeeping is scoped to a per-goroutine runtime, so independent roots
// on different goroutines cannot interfere.
package reconcile
