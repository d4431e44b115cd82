package reconcile

import "github.com/AnatoleLucet/reconcile/internal"

// Update is a single requested state transition.
type Update = internal.Update

type UpdateTag = internal.UpdateTag

const (
	UpdateState   = internal.UpdateState
	ReplaceState  = internal.ReplaceState
	ForceUpdate   = internal.ForceUpdate
	CaptureUpdate = internal.CaptureUpdate
)

// Payload is either a literal partial state or an updater function of the
// previous state and current props.
type Payload = internal.Payload

func LiteralPayload(v any) Payload {
	return internal.LiteralPayload(v)
}

func FuncPayload(fn func(prevState, props any) any) Payload {
	return internal.FuncPayload(fn)
}

// NewUpdate builds a bare UpdateState update; set Payload, Tag, and Callback
// as needed before enqueueing.
func NewUpdate(expirationTime ExpirationTime, config *SuspenseConfig) *Update {
	return internal.NewUpdate(expirationTime, config)
}

// NewStateUpdate builds an UpdateState update with a literal partial state.
func NewStateUpdate(expirationTime ExpirationTime, partial any) *Update {
	u := internal.NewUpdate(expirationTime, nil)
	u.Payload = internal.LiteralPayload(partial)
	return u
}

// NewStateUpdateFunc builds an UpdateState update with an updater function.
func NewStateUpdateFunc(expirationTime ExpirationTime, fn func(prevState, props any) any) *Update {
	u := internal.NewUpdate(expirationTime, nil)
	u.Payload = internal.FuncPayload(fn)
	return u
}

// NewReplaceStateUpdate builds an update that replaces the state outright.
func NewReplaceStateUpdate(expirationTime ExpirationTime, state any) *Update {
	u := internal.NewUpdate(expirationTime, nil)
	u.Tag = internal.ReplaceState
	u.Payload = internal.LiteralPayload(state)
	return u
}

// NewForceUpdate builds an update that leaves state untouched but marks
// downstream output for recomputation.
func NewForceUpdate(expirationTime ExpirationTime) *Update {
	u := internal.NewUpdate(expirationTime, nil)
	u.Tag = internal.ForceUpdate
	return u
}

// NewCaptureUpdate builds an error-capture update; it merges like
// UpdateState and flips the owning node from should-capture to did-capture.
func NewCaptureUpdate(expirationTime ExpirationTime, partial any) *Update {
	u := internal.NewUpdate(expirationTime, nil)
	u.Tag = internal.CaptureUpdate
	u.Payload = internal.LiteralPayload(partial)
	return u
}
