package internal

type UpdateTag int

const (
	UpdateState UpdateTag = iota
	ReplaceState
	ForceUpdate
	CaptureUpdate
)

// SuspenseConfig governs how long a suspending transition may stay pending
// before a fallback is forced. Only TimeoutMs feeds the expiration clock.
type SuspenseConfig struct {
	TimeoutMs         int
	BusyDelayMs       int
	BusyMinDurationMs int
}

// Payload is the content of a state transition: either a literal partial
// state or an updater function of the previous state and current props.
type Payload struct {
	value any
	fn    func(prevState, props any) any
}

func LiteralPayload(v any) Payload {
	return Payload{value: v}
}

func FuncPayload(fn func(prevState, props any) any) Payload {
	return Payload{fn: fn}
}

// Update is a single requested state transition. Live updates form a circular
// singly-linked list with their siblings; an update is reachable from exactly
// one shared.pending or one baseQueue at a time.
type Update struct {
	ExpirationTime ExpirationTime
	SuspenseConfig *SuspenseConfig
	Tag            UpdateTag
	Payload        Payload
	Callback       func()

	next *Update
}

// NewUpdate builds an UpdateState update that is its own single-element
// circular list.
func NewUpdate(expirationTime ExpirationTime, config *SuspenseConfig) *Update {
	u := &Update{
		ExpirationTime: expirationTime,
		SuspenseConfig: config,
		Tag:            UpdateState,
	}
	u.next = u // loop to self

	return u
}

func (u *Update) clone() *Update {
	return &Update{
		ExpirationTime: u.ExpirationTime,
		SuspenseConfig: u.SuspenseConfig,
		Tag:            u.Tag,
		Payload:        u.Payload,
		Callback:       u.Callback,
	}
}

// SharedQueue holds the tail of the circular pending list; pending.next is
// the oldest unprocessed update. It is the one field co-owned by the current
// and work-in-progress queues, so an update enqueued against either variant
// is visible from whichever one is live at commit time.
type SharedQueue struct {
	pending *Update
}

type UpdateQueue struct {
	// owner generation tag; bumped on copy-on-write so divergence between the
	// current and work-in-progress queues is detected by generation rather
	// than pointer identity
	gen uint64

	// result of all fully-applied updates before the first still-queued one
	baseState any

	// skipped and rebased updates carried over from earlier passes; circular
	// while accumulating, tail-pointed like shared.pending
	baseQueue *Update

	shared *SharedQueue

	// updates with a pending callback, in the order they were applied;
	// drained on commit
	effects []*Update
}

func (q *UpdateQueue) BaseState() any {
	if q == nil {
		return nil
	}
	return q.baseState
}

func (q *UpdateQueue) HasBaseQueue() bool {
	return q != nil && q.baseQueue != nil
}

// InitializeUpdateQueue allocates a fresh queue seeded with the node's
// current materialized state.
func (r *Runtime) InitializeUpdateQueue(n *Node) {
	n.queue = &UpdateQueue{
		baseState: n.memoizedState,
		shared:    &SharedQueue{},
	}
}

// CloneUpdateQueue is the copy-on-write trigger: if the work-in-progress node
// still shares its queue with the current node, replace it with a shallow
// copy. The shared pending list is carried over by reference, never copied.
func (r *Runtime) CloneUpdateQueue(current, workInProgress *Node) {
	currentQueue := current.queue
	queue := workInProgress.queue
	if currentQueue == nil || queue == nil || queue.gen != currentQueue.gen {
		return
	}

	workInProgress.queue = &UpdateQueue{
		gen:       currentQueue.gen + 1,
		baseState: currentQueue.baseState,
		baseQueue: currentQueue.baseQueue,
		shared:    currentQueue.shared,
		effects:   currentQueue.effects,
	}
}

// EnqueueUpdate appends an update to the node's shared pending list via tail
// insertion. No-op if the node has unmounted.
func (r *Runtime) EnqueueUpdate(n *Node, update *Update) {
	queue := n.queue
	if queue == nil {
		// only happens if the node has been unmounted
		return
	}

	shared := queue.shared
	pending := shared.pending
	if pending == nil {
		update.next = update // loop to self
	} else {
		update.next = pending.next
		pending.next = update
	}
	shared.pending = update

	if r.debug && r.processingShared == shared {
		r.log.Warn("an update was enqueued from inside an updater function; " +
			"updater functions must be pure")
	}
}

// EnqueueCapturedUpdate appends an error-capture update directly onto the
// work-in-progress baseQueue. It first forces the queue to diverge from the
// current one so the update cannot survive a discarded attempt.
func (r *Runtime) EnqueueCapturedUpdate(workInProgress *Node, update *Update) {
	if current := workInProgress.alternate; current != nil {
		r.CloneUpdateQueue(current, workInProgress)
	}

	queue := workInProgress.queue
	invariant(queue != nil, "cannot capture an update on an unmounted node")

	last := queue.baseQueue
	if last == nil {
		update.next = update
	} else {
		update.next = last.next
		last.next = update
	}
	queue.baseQueue = update
}

// ProcessUpdateQueue materializes a new state for the work-in-progress node
// from its base and pending updates, applying every update whose expiration
// time is at or above renderExpirationTime (larger = more urgent) and keeping
// the rest, in original order, for a later pass.
func (r *Runtime) ProcessUpdateQueue(workInProgress *Node, props any, renderExpirationTime ExpirationTime) {
	queue := workInProgress.queue
	invariant(queue != nil, "cannot process the update queue of an unmounted node")

	prevShared := r.processingShared
	r.processingShared = queue.shared
	defer func() { r.processingShared = prevShared }()

	baseQueue := queue.baseQueue

	// splice the pending updates onto the base queue
	pendingQueue := queue.shared.pending
	if pendingQueue != nil {
		if baseQueue != nil {
			// merge the two circular lists, base content first
			baseFirst := baseQueue.next
			pendingFirst := pendingQueue.next
			baseQueue.next = pendingFirst
			pendingQueue.next = baseFirst
		}
		baseQueue = pendingQueue
		queue.baseQueue = baseQueue
		queue.shared.pending = nil

		// hand the raw pending list to the sibling queue as well, so the
		// updates survive if this attempt is thrown away
		if current := workInProgress.alternate; current != nil {
			if currentQueue := current.queue; currentQueue != nil && currentQueue != queue {
				currentQueue.baseQueue = pendingQueue
			}
		}
	}

	if baseQueue == nil {
		return
	}

	first := baseQueue.next
	newState := queue.baseState
	newExpirationTime := NoWork

	var newBaseState any
	var newBaseQueueFirst, newBaseQueueLast *Update

	update := first
	for update != nil {
		updateExpirationTime := update.ExpirationTime
		if updateExpirationTime < renderExpirationTime {
			// insufficient priority: skip, but keep a clone for a later pass
			clone := update.clone()
			if newBaseQueueLast == nil {
				newBaseQueueFirst = clone
				newBaseQueueLast = clone
				// the state before the first skipped update becomes the new base
				newBaseState = newState
			} else {
				newBaseQueueLast.next = clone
				newBaseQueueLast = clone
			}
			// the root must revisit this priority later
			if updateExpirationTime > newExpirationTime {
				newExpirationTime = updateExpirationTime
			}
		} else {
			if newBaseQueueLast != nil {
				// this update folds into a state that commits now; the clone
				// kept for rebasing must never look pending on its own again
				clone := update.clone()
				clone.ExpirationTime = Sync
				newBaseQueueLast.next = clone
				newBaseQueueLast = clone
			}

			r.markRenderEventTimeAndConfig(updateExpirationTime, update.SuspenseConfig)
			newState = r.getStateFromUpdate(workInProgress, update, newState, props)

			if update.Callback != nil {
				workInProgress.AddFlag(FlagCallback)
				queue.effects = append(queue.effects, update)
			}
		}

		update = update.next
		if update == nil || update == first {
			pendingQueue = queue.shared.pending
			if pendingQueue == nil {
				break
			}
			// an updater function enqueued more work mid-walk; splice it onto
			// the end of the list and keep processing so it lands in this pass
			update = pendingQueue.next
			baseQueue.next = update
			pendingQueue.next = first
			baseQueue = pendingQueue
			queue.baseQueue = baseQueue
			queue.shared.pending = nil
		}
	}

	if newBaseQueueLast == nil {
		newBaseState = newState
	} else {
		newBaseQueueLast.next = newBaseQueueFirst // circularize
	}

	queue.baseState = newBaseState
	queue.baseQueue = newBaseQueueLast

	r.markUnprocessedUpdateTime(newExpirationTime)
	workInProgress.expirationTime = newExpirationTime
	workInProgress.memoizedState = newState
}

func (r *Runtime) getStateFromUpdate(workInProgress *Node, update *Update, prevState, props any) any {
	switch update.Tag {
	case ReplaceState:
		return r.evalPayload(update.Payload, prevState, props)

	case CaptureUpdate:
		workInProgress.flags = (workInProgress.flags &^ FlagShouldCapture) | FlagDidCapture
		fallthrough

	case UpdateState:
		partial := r.evalPayload(update.Payload, prevState, props)
		if partial == nil {
			// null/undefined partial state is a no-op
			return prevState
		}
		return mergeState(prevState, partial)

	case ForceUpdate:
		r.hasForceUpdate = true
		return prevState
	}

	return prevState
}

func (r *Runtime) evalPayload(p Payload, prevState, props any) any {
	if p.fn == nil {
		return p.value
	}
	if r.debug {
		// double invocation in debug runtimes flushes out impure updaters
		p.fn(prevState, props)
	}
	return p.fn(prevState, props)
}

// mergeState shallow-merges a partial state over the previous one. Map states
// merge field-wise with partial fields winning; any other partial value
// replaces the previous state outright.
func mergeState(prevState, partial any) any {
	part, ok := partial.(map[string]any)
	if !ok {
		return partial
	}

	prev, _ := prevState.(map[string]any)
	merged := make(map[string]any, len(prev)+len(part))
	for k, v := range prev {
		merged[k] = v
	}
	for k, v := range part {
		merged[k] = v
	}

	return merged
}

// CommitUpdateQueue drains the effects captured during processing, invoking
// each update's callback exactly once in capture order.
func (r *Runtime) CommitUpdateQueue(finished *Node) {
	queue := finished.queue
	if queue == nil {
		return
	}

	effects := queue.effects
	queue.effects = nil

	for _, update := range effects {
		callback := update.Callback
		invariant(callback != nil, "processed an effect with no callback")
		update.Callback = nil
		callback()
	}

	finished.RemoveFlag(FlagCallback)
}

// ResetHasForceUpdateBeforeProcessing clears the force-update marker; call it
// before each processing pass.
func (r *Runtime) ResetHasForceUpdateBeforeProcessing() {
	r.hasForceUpdate = false
}

// CheckHasForceUpdateAfterProcessing reports whether the last pass applied a
// ForceUpdate, meaning downstream output must be recomputed even though the
// state may be identical.
func (r *Runtime) CheckHasForceUpdateAfterProcessing() bool {
	return r.hasForceUpdate
}
