package internal

type NodeFlags int

const (
	FlagNone NodeFlags = 0

	FlagCallback NodeFlags = 1 << iota
	FlagShouldCapture
	FlagDidCapture
)

// Node is a stateful unit of the render tree as this package sees it: an
// opaque owner handle carrying its update queue, its last materialized state,
// and the most urgent expiration time of its still-pending updates.
//
// Two timelines exist per node: "current" reflects the last committed state,
// "work-in-progress" is being speculatively computed. They alias each other
// through alternate and co-own a single shared pending list.
type Node struct {
	memoizedState  any
	expirationTime ExpirationTime
	flags          NodeFlags

	queue     *UpdateQueue
	alternate *Node
}

func (r *Runtime) NewNode(initialState any) *Node {
	n := &Node{
		memoizedState:  initialState,
		expirationTime: NoWork,
	}
	r.InitializeUpdateQueue(n)

	return n
}

func (n *Node) HasFlag(flag NodeFlags) bool {
	return n.flags&flag != 0
}

func (n *Node) AddFlag(flag NodeFlags) {
	n.flags |= flag
}

func (n *Node) RemoveFlag(flag NodeFlags) {
	n.flags &^= flag
}

func (n *Node) MemoizedState() any {
	return n.memoizedState
}

// ExpirationTime is the highest-priority pending update left on this node
// after the last processing pass, or NoWork.
func (n *Node) ExpirationTime() ExpirationTime {
	return n.expirationTime
}

func (n *Node) Alternate() *Node {
	return n.alternate
}

// Queue returns the node's update queue, or nil after unmount.
func (n *Node) Queue() *UpdateQueue {
	return n.queue
}

// WorkInProgress returns the node's speculative twin, creating it on first
// use. The twin starts out sharing the current queue; CloneUpdateQueue splits
// them on first divergence.
func (n *Node) WorkInProgress() *Node {
	wip := n.alternate
	if wip == nil {
		wip = &Node{alternate: n}
		n.alternate = wip
	}

	wip.memoizedState = n.memoizedState
	wip.expirationTime = n.expirationTime
	wip.flags = FlagNone
	wip.queue = n.queue

	return wip
}

// Commit makes this work-in-progress node the current one: the committed
// state, remaining expiration time, and processed queue all flow back to the
// twin.
func (n *Node) Commit() {
	if n.alternate != nil {
		n.alternate.memoizedState = n.memoizedState
		n.alternate.expirationTime = n.expirationTime
		n.alternate.queue = n.queue
	}
}

// Unmount drops the node's queue. Enqueues against an unmounted node become
// no-ops; this is the only case where updates are silently discarded.
func (n *Node) Unmount() {
	n.queue = nil
	if n.alternate != nil {
		n.alternate.queue = nil
	}
}
