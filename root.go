package reconcile

import "github.com/AnatoleLucet/reconcile/internal"

// Root tracks the pending, suspended, and expired expiration-time ranges of
// one application root, plus its single outstanding scheduler callback. See
// the methods on internal.Root: MarkUpdatedAtTime, MarkSuspendedAtTime,
// MarkFinishedAtTime, MarkExpiredAtTime, MarkPingedAtTime, IsSuspendedAtTime,
// NextExpirationTimeToWorkOn.
type Root = internal.Root

// NewRoot creates an empty root with no pending work.
func NewRoot() *Root {
	return internal.NewRoot()
}

// EnsureRootIsScheduled keeps exactly one scheduler callback outstanding for
// the root, cancelling and rescheduling when its aggregate priority changed.
// Sync and expired work goes through the synchronous flush queue.
func EnsureRootIsScheduled(root *Root) {
	root.EnsureScheduled(internal.GetRuntime())
}
