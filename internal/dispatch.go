package internal

// PriorityLevel is the reconciler's own priority scale. Values are arbitrary
// but ordered, and deliberately distinct from the scheduler's scale.
type PriorityLevel int

const (
	NoPriority           PriorityLevel = 90
	IdlePriority         PriorityLevel = 95
	LowPriority          PriorityLevel = 96
	NormalPriority       PriorityLevel = 97
	UserBlockingPriority PriorityLevel = 98
	ImmediatePriority    PriorityLevel = 99
)

func (p PriorityLevel) String() string {
	switch p {
	case ImmediatePriority:
		return "immediate"
	case UserBlockingPriority:
		return "user-blocking"
	case NormalPriority:
		return "normal"
	case LowPriority:
		return "low"
	case IdlePriority:
		return "idle"
	default:
		return "no-priority"
	}
}

// ToSchedulerPriority translates a reconciler priority to the external
// scheduler's scale.
func ToSchedulerPriority(level PriorityLevel) SchedulerPriority {
	switch level {
	case ImmediatePriority:
		return SchedulerImmediatePriority
	case UserBlockingPriority:
		return SchedulerUserBlockingPriority
	case NormalPriority:
		return SchedulerNormalPriority
	case LowPriority:
		return SchedulerLowPriority
	case IdlePriority:
		return SchedulerIdlePriority
	}

	invariant(false, "unknown priority level %d", level)
	return SchedulerNormalPriority
}

// FromSchedulerPriority translates a scheduler priority back to the
// reconciler's scale.
func FromSchedulerPriority(priority SchedulerPriority) PriorityLevel {
	switch priority {
	case SchedulerImmediatePriority:
		return ImmediatePriority
	case SchedulerUserBlockingPriority:
		return UserBlockingPriority
	case SchedulerNormalPriority:
		return NormalPriority
	case SchedulerLowPriority:
		return LowPriority
	case SchedulerIdlePriority:
		return IdlePriority
	}

	invariant(false, "unknown scheduler priority %d", priority)
	return NormalPriority
}

// CurrentPriorityLevel reports the ambient scheduler priority on the
// reconciler's scale.
func (r *Runtime) CurrentPriorityLevel() PriorityLevel {
	return FromSchedulerPriority(r.scheduler.CurrentPriority())
}

// RunWithPriority runs fn synchronously with the ambient priority overridden.
func (r *Runtime) RunWithPriority(level PriorityLevel, fn func()) {
	r.scheduler.RunWithPriority(ToSchedulerPriority(level), fn)
}

// ScheduleCallback forwards to the external scheduler under the translated
// priority and returns its cancellation handle.
func (r *Runtime) ScheduleCallback(level PriorityLevel, callback SchedulerCallback, opts *CallbackOptions) CallbackHandle {
	return r.scheduler.ScheduleCallback(ToSchedulerPriority(level), callback, opts)
}

// CancelCallback cancels a handle returned by ScheduleCallback. The fake
// handle used for sync-queue entries is ignored.
func (r *Runtime) CancelCallback(handle CallbackHandle) {
	if handle == nil || handle == fakeCallbackNode {
		return
	}
	r.scheduler.CancelCallback(handle)
}

// SyncCallback is one logical unit of synchronous work. It may return a
// continuation to be invoked immediately, looping until nil.
type SyncCallback func() SyncCallback

// fakeCallbackNode stands in for a scheduler handle on the sync path, where
// cancellation is a no-op.
var fakeCallbackNode = &struct{}{}

// ScheduleSyncCallback appends to the synchronous flush queue. The queue is
// flushed either by FlushSyncCallbackQueue or at the scheduler's next
// opportunity, whichever comes first.
func (r *Runtime) ScheduleSyncCallback(callback SyncCallback) CallbackHandle {
	if r.syncQueue == nil {
		r.syncQueue = []SyncCallback{callback}

		// flush the queue at the earliest opportunity
		r.immediateQueueCallbackNode = r.scheduler.ScheduleCallback(
			SchedulerImmediatePriority,
			func(didTimeout bool) SchedulerCallback {
				r.flushSyncCallbackQueueImpl()
				return nil
			},
			nil,
		)
	} else {
		// no extra scheduling needed; the first enqueue took care of it
		r.syncQueue = append(r.syncQueue, callback)
	}

	return fakeCallbackNode
}

// FlushSyncCallbackQueue cancels any pending auto-flush and flushes the
// synchronous queue immediately. Reentrant calls are no-ops.
func (r *Runtime) FlushSyncCallbackQueue() {
	if node := r.immediateQueueCallbackNode; node != nil {
		r.immediateQueueCallbackNode = nil
		r.scheduler.CancelCallback(node)
	}
	r.flushSyncCallbackQueueImpl()
}

func (r *Runtime) flushSyncCallbackQueueImpl() {
	if r.isFlushingSyncQueue || r.syncQueue == nil {
		return
	}

	r.isFlushingSyncQueue = true
	i := 0

	defer func() {
		r.isFlushingSyncQueue = false

		if err := recover(); err != nil {
			// keep whatever was not attempted yet and let the failure surface
			if r.syncQueue != nil {
				r.syncQueue = r.syncQueue[i+1:]
				if len(r.syncQueue) == 0 {
					r.syncQueue = nil
				}
			}
			r.scheduler.ScheduleCallback(
				SchedulerImmediatePriority,
				func(didTimeout bool) SchedulerCallback {
					r.FlushSyncCallbackQueue()
					return nil
				},
				nil,
			)
			panic(err)
		}
	}()

	r.RunWithPriority(ImmediatePriority, func() {
		// read the queue through the runtime so callbacks enqueued mid-flush
		// are picked up in the same pass
		for ; i < len(r.syncQueue); i++ {
			callback := r.syncQueue[i]
			for callback != nil {
				callback = callback()
			}
		}
	})

	r.syncQueue = nil
}
