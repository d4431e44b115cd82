package reconcile

import "github.com/AnatoleLucet/reconcile/internal"

// Scheduler is the host's cooperative task scheduler, consumed as a black
// box.
type Scheduler = internal.Scheduler

type (
	SchedulerPriority = internal.SchedulerPriority
	SchedulerCallback = internal.SchedulerCallback
	CallbackHandle    = internal.CallbackHandle
	CallbackOptions   = internal.CallbackOptions
	SyncCallback      = internal.SyncCallback
)

const (
	SchedulerImmediatePriority    = internal.SchedulerImmediatePriority
	SchedulerUserBlockingPriority = internal.SchedulerUserBlockingPriority
	SchedulerNormalPriority       = internal.SchedulerNormalPriority
	SchedulerLowPriority          = internal.SchedulerLowPriority
	SchedulerIdlePriority         = internal.SchedulerIdlePriority
)

// ManualScheduler is a deterministic single-goroutine Scheduler for hosts and
// tests: nothing runs until FlushNext or FlushAll is called.
type ManualScheduler = internal.ManualScheduler

func NewManualScheduler() *ManualScheduler {
	return internal.NewManualScheduler()
}

// SetScheduler installs the host's scheduler on the current goroutine's
// runtime. Call before any work is scheduled.
func SetScheduler(s Scheduler) {
	internal.GetRuntime().SetScheduler(s)
}

// PriorityLevel is the reconciler's internal priority scale.
type PriorityLevel = internal.PriorityLevel

const (
	NoPriority           = internal.NoPriority
	IdlePriority         = internal.IdlePriority
	LowPriority          = internal.LowPriority
	NormalPriority       = internal.NormalPriority
	UserBlockingPriority = internal.UserBlockingPriority
	ImmediatePriority    = internal.ImmediatePriority
)

// ToSchedulerPriority translates a reconciler priority to the scheduler's
// scale; FromSchedulerPriority goes the other way.
func ToSchedulerPriority(level PriorityLevel) SchedulerPriority {
	return internal.ToSchedulerPriority(level)
}

func FromSchedulerPriority(priority SchedulerPriority) PriorityLevel {
	return internal.FromSchedulerPriority(priority)
}

// CurrentPriorityLevel reports the ambient scheduler priority on the
// reconciler's scale.
func CurrentPriorityLevel() PriorityLevel {
	return internal.GetRuntime().CurrentPriorityLevel()
}

// RunWithPriority runs fn synchronously with the ambient priority overridden.
func RunWithPriority(level PriorityLevel, fn func()) {
	internal.GetRuntime().RunWithPriority(level, fn)
}

// ScheduleCallback forwards to the external scheduler under the translated
// priority and returns its cancellation handle.
func ScheduleCallback(level PriorityLevel, callback SchedulerCallback, opts *CallbackOptions) CallbackHandle {
	return internal.GetRuntime().ScheduleCallback(level, callback, opts)
}

// CancelCallback cancels a handle returned by ScheduleCallback; the fake sync
// handle is ignored.
func CancelCallback(handle CallbackHandle) {
	internal.GetRuntime().CancelCallback(handle)
}

// ScheduleSyncCallback appends to the synchronous flush queue, which runs at
// the scheduler's next opportunity or on FlushSyncCallbackQueue.
func ScheduleSyncCallback(callback SyncCallback) CallbackHandle {
	return internal.GetRuntime().ScheduleSyncCallback(callback)
}

// FlushSyncCallbackQueue flushes the synchronous queue immediately. Reentrant
// calls during a flush are no-ops.
func FlushSyncCallbackQueue() {
	internal.GetRuntime().FlushSyncCallbackQueue()
}
