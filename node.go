package reconcile

import "github.com/AnatoleLucet/reconcile/internal"

type NodeFlags = internal.NodeFlags

const (
	FlagNone          = internal.FlagNone
	FlagCallback      = internal.FlagCallback
	FlagShouldCapture = internal.FlagShouldCapture
	FlagDidCapture    = internal.FlagDidCapture
)

// Node is a stateful unit of the render tree: an opaque owner handle carrying
// an update queue, its last materialized state, and the most urgent
// expiration time of its still-pending updates.
type Node[S any] struct {
	node *internal.Node
}

// NewNode creates a stateful node with a freshly initialized update queue.
func NewNode[S any](initial S) *Node[S] {
	return &Node[S]{
		internal.GetRuntime().NewNode(initial),
	}
}

// State is the node's last materialized state.
func (n *Node[S]) State() S {
	return as[S](n.node.MemoizedState())
}

// BaseState is the result of all fully-applied updates before the first
// still-queued one.
func (n *Node[S]) BaseState() S {
	return as[S](n.node.Queue().BaseState())
}

// PendingExpirationTime is the highest-priority update left queued after the
// last processing pass, or NoWork.
func (n *Node[S]) PendingExpirationTime() ExpirationTime {
	return n.node.ExpirationTime()
}

// HasQueuedWork reports whether skipped updates are still carried on the base
// queue.
func (n *Node[S]) HasQueuedWork() bool {
	return n.node.Queue().HasBaseQueue()
}

func (n *Node[S]) HasFlag(flag NodeFlags) bool {
	return n.node.HasFlag(flag)
}

func (n *Node[S]) AddFlag(flag NodeFlags) {
	n.node.AddFlag(flag)
}

// Enqueue appends an update to the node's shared pending list. No-op once the
// node has unmounted.
func (n *Node[S]) Enqueue(update *Update) {
	internal.GetRuntime().EnqueueUpdate(n.node, update)
}

// EnqueueCaptured appends an error-capture update directly onto the
// work-in-progress base queue, forcing the queue to diverge from the current
// one first so the update cannot survive a discarded attempt.
func (n *Node[S]) EnqueueCaptured(update *Update) {
	internal.GetRuntime().EnqueueCapturedUpdate(n.node, update)
}

// WorkInProgress returns the node's speculative twin, sharing the update
// queue until Process (or EnqueueCaptured) splits it copy-on-write.
func (n *Node[S]) WorkInProgress() *Node[S] {
	return &Node[S]{n.node.WorkInProgress()}
}

// Alternate returns the node's twin, or nil.
func (n *Node[S]) Alternate() *Node[S] {
	alt := n.node.Alternate()
	if alt == nil {
		return nil
	}
	return &Node[S]{alt}
}

// CloneUpdateQueue is the copy-on-write trigger: if workInProgress still
// shares its queue with current, it gets a shallow copy. Process calls this
// automatically.
func CloneUpdateQueue[S any](current, workInProgress *Node[S]) {
	internal.GetRuntime().CloneUpdateQueue(current.node, workInProgress.node)
}

// Process materializes a new state from the node's base and pending updates,
// applying every update at or above renderExpirationTime and keeping the
// rest, in original order, for a later pass.
func (n *Node[S]) Process(props any, renderExpirationTime ExpirationTime) {
	r := internal.GetRuntime()
	if current := n.node.Alternate(); current != nil {
		r.CloneUpdateQueue(current, n.node)
	}
	r.ProcessUpdateQueue(n.node, props, renderExpirationTime)
}

// Commit makes this work-in-progress node current and drains the callbacks
// captured during processing, each exactly once, in capture order.
func (n *Node[S]) Commit() {
	n.node.Commit()
	internal.GetRuntime().CommitUpdateQueue(n.node)
}

// Unmount drops the node's queue; later enqueues become no-ops.
func (n *Node[S]) Unmount() {
	n.node.Unmount()
}
