package internal

import "go.uber.org/zap"

// RenderPhaseHooks are supplied by the render-phase tree walk. Both are plain
// setters on the walk's side; the runtime calls them from the processing loop.
type RenderPhaseHooks struct {
	MarkRenderEventTimeAndConfig func(ExpirationTime, *SuspenseConfig)
	MarkUnprocessedUpdateTime    func(ExpirationTime)
}

// Runtime owns all the state the original keeps in module-level variables:
// the force-update marker, the synchronous flush queue and its lock, and the
// handle on the external scheduler. Runtimes are per goroutine (see
// GetRuntime), so roots driven from different goroutines cannot interfere.
//
// Everything here is single-threaded and cooperative: the runtime is called
// synchronously and returns synchronously, never blocking.
type Runtime struct {
	scheduler Scheduler

	hasForceUpdate bool

	syncQueue                  []SyncCallback
	immediateQueueCallbackNode CallbackHandle
	isFlushingSyncQueue        bool

	// shared queue currently being processed, for the debug reentrancy warning
	processingShared *SharedQueue

	hooks RenderPhaseHooks

	debug bool
	log   *zap.Logger
}

func NewRuntime() *Runtime {
	return &Runtime{
		scheduler: NewManualScheduler(),
		log:       zap.NewNop(),
	}
}

// SetScheduler swaps in the host's scheduler. Call before any work is
// scheduled.
func (r *Runtime) SetScheduler(s Scheduler) {
	invariant(s != nil, "scheduler must not be nil")
	r.scheduler = s
}

func (r *Runtime) Scheduler() Scheduler {
	return r.scheduler
}

// EnableDebug turns on the diagnostics the production runtime skips: the
// development logger, strict double invocation of updater functions, and the
// longer interactive expiration window.
func (r *Runtime) EnableDebug() {
	r.debug = true
	r.log = newDebugLogger()
}

func (r *Runtime) Debug() bool {
	return r.debug
}

// SetRenderPhaseHooks installs the tree walk's setters.
func (r *Runtime) SetRenderPhaseHooks(hooks RenderPhaseHooks) {
	r.hooks = hooks
}

// CurrentTime is the scheduler's clock mapped into the expiration space.
func (r *Runtime) CurrentTime() ExpirationTime {
	return MsToExpirationTime(r.scheduler.Now())
}

func (r *Runtime) markRenderEventTimeAndConfig(t ExpirationTime, config *SuspenseConfig) {
	if r.hooks.MarkRenderEventTimeAndConfig != nil {
		r.hooks.MarkRenderEventTimeAndConfig(t, config)
	}
}

func (r *Runtime) markUnprocessedUpdateTime(t ExpirationTime) {
	if r.hooks.MarkUnprocessedUpdateTime != nil {
		r.hooks.MarkUnprocessedUpdateTime(t)
	}
}
