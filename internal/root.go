package internal

import "go.uber.org/zap"

// Root tracks, per application root, which expiration-time ranges have
// pending work, which band is suspended waiting on data, and the single
// scheduler callback currently outstanding for the root.
//
// Range invariant: firstSuspendedTime >= lastSuspendedTime when both are set
// (first is the most urgent level in the band). NoWork means "not tracked".
type Root struct {
	firstPendingTime      ExpirationTime
	firstSuspendedTime    ExpirationTime
	lastSuspendedTime     ExpirationTime
	nextKnownPendingLevel ExpirationTime
	lastPingedTime        ExpirationTime
	lastExpiredTime       ExpirationTime

	// at most one scheduler callback is outstanding per root
	callbackNode           CallbackHandle
	callbackExpirationTime ExpirationTime
	callbackPriority       PriorityLevel

	// render-walk entry points, supplied by the host
	PerformSyncWork       func(*Root)
	PerformConcurrentWork func(*Root, bool) SchedulerCallback
}

func NewRoot() *Root {
	return &Root{callbackPriority: NoPriority}
}

func (root *Root) FirstPendingTime() ExpirationTime      { return root.firstPendingTime }
func (root *Root) FirstSuspendedTime() ExpirationTime    { return root.firstSuspendedTime }
func (root *Root) LastSuspendedTime() ExpirationTime     { return root.lastSuspendedTime }
func (root *Root) NextKnownPendingLevel() ExpirationTime { return root.nextKnownPendingLevel }
func (root *Root) LastPingedTime() ExpirationTime        { return root.lastPingedTime }
func (root *Root) LastExpiredTime() ExpirationTime       { return root.lastExpiredTime }

func (root *Root) CallbackNode() CallbackHandle           { return root.callbackNode }
func (root *Root) CallbackExpirationTime() ExpirationTime { return root.callbackExpirationTime }
func (root *Root) CallbackPriority() PriorityLevel        { return root.callbackPriority }

// MarkUpdatedAtTime records new pending work at level t, un-suspending any
// part of the suspended range at or below t's urgency.
func (root *Root) MarkUpdatedAtTime(t ExpirationTime) {
	if t > root.firstPendingTime {
		root.firstPendingTime = t
	}

	firstSuspendedTime := root.firstSuspendedTime
	if firstSuspendedTime != NoWork {
		if t >= firstSuspendedTime {
			// the entire suspended range is now outranked; unsuspend it
			root.firstSuspendedTime = NoWork
			root.lastSuspendedTime = NoWork
			root.nextKnownPendingLevel = NoWork
		} else if t >= root.lastSuspendedTime {
			root.lastSuspendedTime = t + 1
		}

		// the new update is itself a known pending level
		if t > root.nextKnownPendingLevel {
			root.nextKnownPendingLevel = t
		}
	}
}

// MarkSuspendedAtTime extends the suspended range to include t and clears any
// ping or expiry markers it supersedes.
func (root *Root) MarkSuspendedAtTime(t ExpirationTime) {
	firstSuspendedTime := root.firstSuspendedTime
	lastSuspendedTime := root.lastSuspendedTime

	if firstSuspendedTime < t {
		root.firstSuspendedTime = t
	}
	if lastSuspendedTime > t || firstSuspendedTime == NoWork {
		root.lastSuspendedTime = t
	}

	// markers at or below the newly suspended level are superseded by it;
	// more urgent ones stay
	if root.lastPingedTime <= t {
		root.lastPingedTime = NoWork
	}
	if root.lastExpiredTime <= t {
		root.lastExpiredTime = NoWork
	}
}

// MarkFinishedAtTime records that work at finishedT committed, leaving
// remainingT (reported by the update queue) as the next pending level.
func (root *Root) MarkFinishedAtTime(finishedT, remainingT ExpirationTime) {
	root.firstPendingTime = remainingT

	if finishedT <= root.lastSuspendedTime {
		// the whole suspended range was covered by this commit
		root.firstSuspendedTime = NoWork
		root.lastSuspendedTime = NoWork
		root.nextKnownPendingLevel = NoWork
	} else if finishedT <= root.firstSuspendedTime {
		root.firstSuspendedTime = finishedT - 1
	}

	if finishedT <= root.lastPingedTime {
		root.lastPingedTime = NoWork
	}
	if finishedT <= root.lastExpiredTime {
		root.lastExpiredTime = NoWork
	}
}

// MarkExpiredAtTime forces work at level t to flush synchronously. The most
// urgent tracked expiry wins.
func (root *Root) MarkExpiredAtTime(t ExpirationTime) {
	lastExpiredTime := root.lastExpiredTime
	if lastExpiredTime == NoWork || lastExpiredTime > t {
		root.lastExpiredTime = t
	}
}

// MarkPingedAtTime records that suspended work at level t may be retried.
func (root *Root) MarkPingedAtTime(t ExpirationTime) {
	root.lastPingedTime = t
}

// IsSuspendedAtTime reports whether t falls inside the suspended range.
func (root *Root) IsSuspendedAtTime(t ExpirationTime) bool {
	return root.firstSuspendedTime != NoWork &&
		root.firstSuspendedTime >= t &&
		root.lastSuspendedTime <= t
}

// HasPendingSyncWork reports whether the root has work that must not be
// deferred.
func (root *Root) HasPendingSyncWork() bool {
	return root.lastExpiredTime != NoWork || root.firstPendingTime == Sync
}

// NextExpirationTimeToWorkOn picks the level the next unit of work should
// render at: expired work first, then the first pending level unless it is
// suspended, then the most urgent of the last ping and the level just below
// the suspended range.
func (root *Root) NextExpirationTimeToWorkOn() ExpirationTime {
	if root.lastExpiredTime != NoWork {
		return root.lastExpiredTime
	}

	firstPendingTime := root.firstPendingTime
	if !root.IsSuspendedAtTime(firstPendingTime) {
		return firstPendingTime
	}

	nextLevel := root.nextKnownPendingLevel
	if root.lastPingedTime > nextLevel {
		nextLevel = root.lastPingedTime
	}

	// don't volunteer for idle-band work unless it is all that is left
	if nextLevel <= Idle && firstPendingTime != nextLevel {
		return NoWork
	}

	return nextLevel
}

// EnsureScheduled keeps exactly one scheduler callback outstanding for the
// root, at the priority of its most urgent work. A callback whose expiration
// and priority still match is left alone; otherwise it is cancelled and
// replaced.
func (root *Root) EnsureScheduled(r *Runtime) {
	if root.lastExpiredTime != NoWork {
		// expired work flushes synchronously at the next opportunity
		root.callbackExpirationTime = Sync
		root.callbackPriority = ImmediatePriority
		root.callbackNode = r.ScheduleSyncCallback(root.syncWorkCallback(r))
		return
	}

	expirationTime := root.NextExpirationTimeToWorkOn()
	existing := root.callbackNode

	if expirationTime == NoWork {
		if existing != nil {
			root.callbackNode = nil
			root.callbackExpirationTime = NoWork
			root.callbackPriority = NoPriority
			r.CancelCallback(existing)
		}
		return
	}

	currentTime := r.CurrentTime()
	priorityLevel := r.InferPriorityFromExpirationTime(currentTime, expirationTime)

	if existing != nil {
		if root.callbackExpirationTime == expirationTime && root.callbackPriority >= priorityLevel {
			// the outstanding callback is already good enough
			return
		}
		r.CancelCallback(existing)
		r.log.Debug("replacing root callback",
			zap.Int32("expirationTime", int32(expirationTime)),
			zap.String("priority", priorityLevel.String()))
	}

	root.callbackExpirationTime = expirationTime
	root.callbackPriority = priorityLevel

	if expirationTime == Sync {
		root.callbackNode = r.ScheduleSyncCallback(root.syncWorkCallback(r))
	} else {
		opts := &CallbackOptions{TimeoutMs: ExpirationTimeToMs(expirationTime) - r.scheduler.Now()}
		root.callbackNode = r.ScheduleCallback(priorityLevel, root.concurrentWorkCallback(r), opts)
	}

	r.log.Debug("scheduled root callback",
		zap.Int32("expirationTime", int32(expirationTime)),
		zap.String("priority", priorityLevel.String()))
}

func (root *Root) clearCallback() {
	root.callbackNode = nil
	root.callbackExpirationTime = NoWork
	root.callbackPriority = NoPriority
}

func (root *Root) syncWorkCallback(r *Runtime) SyncCallback {
	return func() SyncCallback {
		root.clearCallback()
		invariant(root.PerformSyncWork != nil, "root has no sync work entry point")
		root.PerformSyncWork(root)
		return nil
	}
}

func (root *Root) concurrentWorkCallback(r *Runtime) SchedulerCallback {
	return func(didTimeout bool) SchedulerCallback {
		root.clearCallback()
		invariant(root.PerformConcurrentWork != nil, "root has no concurrent work entry point")
		return root.PerformConcurrentWork(root, didTimeout)
	}
}
