package internal

// ExpirationTime is a deadline on an inverted scale: larger values are more
// urgent. Real timestamps map below the reserved Sync/Batched band, so a unit
// of work scheduled "now" can never outrank synchronous work.
type ExpirationTime int32

const maxSigned31BitInt = 1073741823

const (
	NoWork              ExpirationTime = 0
	Never               ExpirationTime = 1
	Idle                ExpirationTime = 2
	ContinuousHydration ExpirationTime = 3

	Sync    ExpirationTime = maxSigned31BitInt
	Batched ExpirationTime = Sync - 1

	magicNumberOffset = Batched - 1
)

// unit of expiration time is 10ms
const expirationUnitMs = 10

// MsToExpirationTime maps elapsed milliseconds into the expiration space.
// Strictly decreasing: later wall-clock times yield smaller (less urgent) values.
func MsToExpirationTime(ms int) ExpirationTime {
	return magicNumberOffset - ExpirationTime(ms/expirationUnitMs)
}

// ExpirationTimeToMs is the inverse of MsToExpirationTime, up to the 10ms unit.
func ExpirationTimeToMs(t ExpirationTime) int {
	return int(magicNumberOffset-t) * expirationUnitMs
}

func ceiling(num, precision ExpirationTime) ExpirationTime {
	return (num/precision + 1) * precision
}

// computeExpirationBucket quantizes currentTime+expirationInMs into the
// enclosing bucket, rounding toward the later deadline. Requests landing in
// the same bucket share an expiration time and collapse into one pass.
func computeExpirationBucket(currentTime ExpirationTime, expirationInMs, bucketSizeMs int) ExpirationTime {
	return magicNumberOffset - ceiling(
		magicNumberOffset-currentTime+ExpirationTime(expirationInMs/expirationUnitMs),
		ExpirationTime(bucketSizeMs/expirationUnitMs),
	)
}

const (
	lowPriorityExpirationMs = 5000
	lowPriorityBatchSizeMs  = 250

	// intentionally short in production to surface scheduling problems early;
	// debug runtimes use the longer window to cut false-positive jank
	highPriorityExpirationMs      = 150
	highPriorityDebugExpirationMs = 500
	highPriorityBatchSizeMs       = 100
)

// ComputeAsyncExpiration buckets low-priority work into coarse 250ms windows
// 5 seconds out.
func ComputeAsyncExpiration(currentTime ExpirationTime) ExpirationTime {
	return computeExpirationBucket(currentTime, lowPriorityExpirationMs, lowPriorityBatchSizeMs)
}

// ComputeInteractiveExpiration buckets user-interaction work into fine 100ms
// windows 150ms out.
func ComputeInteractiveExpiration(currentTime ExpirationTime) ExpirationTime {
	return computeExpirationBucket(currentTime, highPriorityExpirationMs, highPriorityBatchSizeMs)
}

// ComputeSuspenseExpiration buckets a suspending transition by its configured
// timeout instead of the default async window.
func ComputeSuspenseExpiration(currentTime ExpirationTime, timeoutMs int) ExpirationTime {
	return computeExpirationBucket(currentTime, timeoutMs, lowPriorityBatchSizeMs)
}

// ComputeInteractiveExpiration on a runtime honors the debug window.
func (r *Runtime) ComputeInteractiveExpiration(currentTime ExpirationTime) ExpirationTime {
	windowMs := highPriorityExpirationMs
	if r.debug {
		windowMs = highPriorityDebugExpirationMs
	}
	return computeExpirationBucket(currentTime, windowMs, highPriorityBatchSizeMs)
}

// InferPriorityFromExpirationTime classifies an expiration time relative to
// the current time into a dispatch priority level.
func InferPriorityFromExpirationTime(currentTime, expirationTime ExpirationTime) PriorityLevel {
	return inferPriority(currentTime, expirationTime, highPriorityExpirationMs)
}

// InferPriorityFromExpirationTime on a runtime honors the debug window, so
// interactive expirations computed under it still classify as user-blocking.
func (r *Runtime) InferPriorityFromExpirationTime(currentTime, expirationTime ExpirationTime) PriorityLevel {
	windowMs := highPriorityExpirationMs
	if r.debug {
		windowMs = highPriorityDebugExpirationMs
	}
	return inferPriority(currentTime, expirationTime, windowMs)
}

func inferPriority(currentTime, expirationTime ExpirationTime, interactiveWindowMs int) PriorityLevel {
	if expirationTime == Sync {
		return ImmediatePriority
	}
	if expirationTime == Never || expirationTime == Idle {
		return IdlePriority
	}

	msUntil := ExpirationTimeToMs(expirationTime) - ExpirationTimeToMs(currentTime)
	if msUntil <= 0 {
		return ImmediatePriority
	}
	if msUntil <= interactiveWindowMs+highPriorityBatchSizeMs {
		return UserBlockingPriority
	}
	if msUntil <= lowPriorityExpirationMs+lowPriorityBatchSizeMs {
		return NormalPriority
	}

	// todo: handle LowPriority here once suspense-driven offscreen work needs it
	return IdlePriority
}
