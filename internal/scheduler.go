package internal

import (
	"container/heap"
	"time"
)

// SchedulerPriority is the external cooperative scheduler's priority scale.
// Smaller values are more urgent.
type SchedulerPriority int

const (
	SchedulerImmediatePriority SchedulerPriority = iota + 1
	SchedulerUserBlockingPriority
	SchedulerNormalPriority
	SchedulerLowPriority
	SchedulerIdlePriority
)

// SchedulerCallback is a unit of work handed to the scheduler. It may return
// a continuation to be run later under the same task.
type SchedulerCallback func(didTimeout bool) SchedulerCallback

// CallbackHandle is an opaque cancellation handle.
type CallbackHandle any

type CallbackOptions struct {
	// TimeoutMs is how long the callback may be deferred before it runs with
	// didTimeout set.
	TimeoutMs int
}

// Scheduler is the host's cooperative task scheduler, consumed as a black
// box. The reconciler never blocks in it; every call returns synchronously.
type Scheduler interface {
	ScheduleCallback(priority SchedulerPriority, callback SchedulerCallback, opts *CallbackOptions) CallbackHandle
	CancelCallback(handle CallbackHandle)
	ShouldYield() bool
	Now() int // ms
	RunWithPriority(priority SchedulerPriority, fn func())
	CurrentPriority() SchedulerPriority
	RequestPaint()
}

// default deferral budget per priority, in ms
func priorityTimeoutMs(priority SchedulerPriority) int {
	switch priority {
	case SchedulerImmediatePriority:
		return -1 // already expired
	case SchedulerUserBlockingPriority:
		return 250
	case SchedulerLowPriority:
		return 10000
	case SchedulerIdlePriority:
		return 1 << 30 // never expires in practice
	default:
		return 5000
	}
}

type schedulerTask struct {
	callback  SchedulerCallback
	priority  SchedulerPriority
	seqNo     int64
	timeoutAt int
	index     int
}

// ManualScheduler is a deterministic, single-goroutine Scheduler: nothing
// runs until the host calls FlushNext or FlushAll. Tasks run in priority
// order, FIFO within a priority.
type ManualScheduler struct {
	tasks           taskHeap
	seqNo           int64
	origin          time.Time
	currentPriority SchedulerPriority
	paintRequested  bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{
		origin:          time.Now(),
		currentPriority: SchedulerNormalPriority,
	}
}

func (s *ManualScheduler) Now() int {
	return int(time.Since(s.origin) / time.Millisecond)
}

func (s *ManualScheduler) ScheduleCallback(priority SchedulerPriority, callback SchedulerCallback, opts *CallbackOptions) CallbackHandle {
	timeoutMs := priorityTimeoutMs(priority)
	if opts != nil {
		timeoutMs = opts.TimeoutMs
	}

	task := &schedulerTask{
		callback:  callback,
		priority:  priority,
		seqNo:     s.seqNo,
		timeoutAt: s.Now() + timeoutMs,
		index:     -1,
	}
	s.seqNo++
	heap.Push(&s.tasks, task)

	return task
}

func (s *ManualScheduler) CancelCallback(handle CallbackHandle) {
	task, ok := handle.(*schedulerTask)
	if !ok || task.index < 0 {
		return
	}
	heap.Remove(&s.tasks, task.index)
}

func (s *ManualScheduler) ShouldYield() bool {
	return false
}

func (s *ManualScheduler) RunWithPriority(priority SchedulerPriority, fn func()) {
	prev := s.currentPriority
	s.currentPriority = priority
	defer func() { s.currentPriority = prev }()

	fn()
}

func (s *ManualScheduler) CurrentPriority() SchedulerPriority {
	return s.currentPriority
}

func (s *ManualScheduler) RequestPaint() {
	s.paintRequested = true
}

// PaintRequested reports and clears the paint flag.
func (s *ManualScheduler) PaintRequested() bool {
	requested := s.paintRequested
	s.paintRequested = false
	return requested
}

func (s *ManualScheduler) Len() int {
	return s.tasks.Len()
}

// FlushNext runs the highest-priority task, re-queueing any continuation it
// returns under the same task identity. Reports whether a task ran.
func (s *ManualScheduler) FlushNext() bool {
	if s.tasks.Len() == 0 {
		return false
	}

	task := heap.Pop(&s.tasks).(*schedulerTask)
	didTimeout := task.timeoutAt <= s.Now()

	var continuation SchedulerCallback
	s.RunWithPriority(task.priority, func() {
		continuation = task.callback(didTimeout)
	})

	if continuation != nil {
		// same seqNo keeps the continuation ahead of later same-priority tasks
		task.callback = continuation
		heap.Push(&s.tasks, task)
	}

	return true
}

// FlushAll runs tasks until the queue is empty, including work scheduled by
// the tasks themselves.
func (s *ManualScheduler) FlushAll() {
	for s.FlushNext() {
	}
}

type taskHeap []*schedulerTask

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seqNo < h[j].seqNo
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	task := x.(*schedulerTask)
	task.index = len(*h)
	*h = append(*h, task)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	task := old[n-1]
	old[n-1] = nil  // avoid memory leak
	task.index = -1 // for safety
	*h = old[:n-1]
	return task
}
