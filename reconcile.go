package reconcile

import "github.com/AnatoleLucet/reconcile/internal"

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

// ExpirationTime is a deadline on an inverted scale: larger values are more
// urgent. Real timestamps always map below the Sync/Batched band.
type ExpirationTime = internal.ExpirationTime

const (
	NoWork              = internal.NoWork
	Never               = internal.Never
	Idle                = internal.Idle
	ContinuousHydration = internal.ContinuousHydration
	Batched             = internal.Batched
	Sync                = internal.Sync
)

// MsToExpirationTime maps elapsed milliseconds into the expiration space.
func MsToExpirationTime(ms int) ExpirationTime {
	return internal.MsToExpirationTime(ms)
}

// ExpirationTimeToMs inverts MsToExpirationTime, up to the 10ms unit.
func ExpirationTimeToMs(t ExpirationTime) int {
	return internal.ExpirationTimeToMs(t)
}

// ComputeAsyncExpiration buckets low-priority work into coarse 250ms windows
// 5 seconds out, so near-simultaneous requests collapse into one pass.
func ComputeAsyncExpiration(currentTime ExpirationTime) ExpirationTime {
	return internal.ComputeAsyncExpiration(currentTime)
}

// ComputeInteractiveExpiration buckets user-interaction work into fine 100ms
// windows a short distance out. Debug runtimes use a longer window.
func ComputeInteractiveExpiration(currentTime ExpirationTime) ExpirationTime {
	return internal.GetRuntime().ComputeInteractiveExpiration(currentTime)
}

// ComputeSuspenseExpiration buckets a suspending transition by its configured
// timeout instead of the default async window.
func ComputeSuspenseExpiration(currentTime ExpirationTime, timeoutMs int) ExpirationTime {
	return internal.ComputeSuspenseExpiration(currentTime, timeoutMs)
}

// InferPriorityFromExpirationTime classifies an expiration time relative to
// now into a priority level. Debug runtimes use a wider user-blocking band to
// match their interactive expiration window.
func InferPriorityFromExpirationTime(currentTime, expirationTime ExpirationTime) PriorityLevel {
	return internal.GetRuntime().InferPriorityFromExpirationTime(currentTime, expirationTime)
}

// CurrentTime is the scheduler's clock mapped into the expiration space.
func CurrentTime() ExpirationTime {
	return internal.GetRuntime().CurrentTime()
}

// SuspenseConfig governs how long a suspending transition may stay pending
// before a fallback is forced.
type SuspenseConfig = internal.SuspenseConfig

// RenderPhaseHooks are the two setters the render-phase tree walk supplies.
type RenderPhaseHooks = internal.RenderPhaseHooks

// SetRenderPhaseHooks installs the tree walk's setters on the current
// goroutine's runtime.
func SetRenderPhaseHooks(hooks RenderPhaseHooks) {
	internal.GetRuntime().SetRenderPhaseHooks(hooks)
}

// EnableDebug turns on strict double invocation of updater functions, the
// longer interactive expiration window, and diagnostic logging.
func EnableDebug() {
	internal.GetRuntime().EnableDebug()
}

// ResetHasForceUpdateBeforeProcessing clears the force-update marker; call it
// before each processing pass.
func ResetHasForceUpdateBeforeProcessing() {
	internal.GetRuntime().ResetHasForceUpdateBeforeProcessing()
}

// CheckHasForceUpdateAfterProcessing reports whether the last pass applied a
// ForceUpdate, meaning downstream output must be recomputed even though the
// state may be identical.
func CheckHasForceUpdateAfterProcessing() bool {
	return internal.GetRuntime().CheckHasForceUpdateAfterProcessing()
}
