package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type state = map[string]any

func TestProcessUpdateQueue(t *testing.T) {
	t.Run("applies every eligible update in insertion order", func(t *testing.T) {
		n := NewNode[state](state{})
		n.Enqueue(NewStateUpdate(2, state{"a": 1}))
		n.Enqueue(NewStateUpdate(1, state{"b": 2}))

		wip := n.WorkInProgress()
		ResetHasForceUpdateBeforeProcessing()
		wip.Process(nil, 1)

		assert.Equal(t, state{"a": 1, "b": 2}, wip.State())
		assert.False(t, wip.HasQueuedWork())
		assert.Equal(t, NoWork, wip.PendingExpirationTime())
	})

	t.Run("skips low-priority updates and reapplies them later", func(t *testing.T) {
		n := NewNode[state](state{})
		n.Enqueue(NewStateUpdate(2, state{"a": 1}))
		n.Enqueue(NewStateUpdate(1, state{"b": 2}))

		wip := n.WorkInProgress()
		wip.Process(nil, 2)

		assert.Equal(t, state{"a": 1}, wip.State())
		assert.True(t, wip.HasQueuedWork())
		assert.Equal(t, ExpirationTime(1), wip.PendingExpirationTime())

		wip.Commit()

		wip = n.WorkInProgress()
		wip.Process(nil, 1)

		assert.Equal(t, state{"a": 1, "b": 2}, wip.State())
		assert.False(t, wip.HasQueuedWork())
		assert.Equal(t, NoWork, wip.PendingExpirationTime())
	})

	t.Run("merges partial state over the previous one", func(t *testing.T) {
		n := NewNode[state](state{"a": 1, "b": 2})
		n.Enqueue(NewStateUpdate(1, state{"b": 3, "c": 4}))

		wip := n.WorkInProgress()
		wip.Process(nil, 1)

		assert.Equal(t, state{"a": 1, "b": 3, "c": 4}, wip.State())
	})

	t.Run("replace state drops unspecified fields", func(t *testing.T) {
		n := NewNode[state](state{"a": 1})
		n.Enqueue(NewReplaceStateUpdate(1, state{"b": 2}))

		wip := n.WorkInProgress()
		wip.Process(nil, 1)

		assert.Equal(t, state{"b": 2}, wip.State())
	})

	t.Run("nil partial state is a no-op", func(t *testing.T) {
		n := NewNode[state](state{"a": 1})
		n.Enqueue(NewStateUpdate(1, nil))
		n.Enqueue(NewStateUpdateFunc(1, func(prevState, props any) any {
			return nil
		}))

		wip := n.WorkInProgress()
		wip.Process(nil, 1)

		assert.Equal(t, state{"a": 1}, wip.State())
	})

	t.Run("updater functions see the previous state and props", func(t *testing.T) {
		n := NewNode[state](state{"count": 1})
		n.Enqueue(NewStateUpdateFunc(1, func(prevState, props any) any {
			prev := prevState.(state)
			step := props.(int)
			return state{"count": prev["count"].(int) + step}
		}))

		wip := n.WorkInProgress()
		wip.Process(10, 1)

		assert.Equal(t, state{"count": 11}, wip.State())
	})

	t.Run("force update marks without changing state", func(t *testing.T) {
		n := NewNode[state](state{"a": 1})
		n.Enqueue(NewForceUpdate(1))

		wip := n.WorkInProgress()
		ResetHasForceUpdateBeforeProcessing()
		wip.Process(nil, 1)

		assert.True(t, CheckHasForceUpdateAfterProcessing())
		assert.Equal(t, state{"a": 1}, wip.State())
	})

	t.Run("enqueue after unmount is a no-op", func(t *testing.T) {
		n := NewNode[state](state{})
		n.Unmount()

		assert.NotPanics(t, func() {
			n.Enqueue(NewStateUpdate(1, state{"a": 1}))
		})
	})

	t.Run("processing an unmounted node is an invariant violation", func(t *testing.T) {
		n := NewNode[state](state{})
		n.Unmount()

		assert.Panics(t, func() {
			n.Process(nil, 1)
		})
	})
}

func TestRenderPhaseHooks(t *testing.T) {
	t.Run("report applied event times and leftover work", func(t *testing.T) {
		eventTimes := []ExpirationTime{}
		configs := []*SuspenseConfig{}
		unprocessed := []ExpirationTime{}

		SetRenderPhaseHooks(RenderPhaseHooks{
			MarkRenderEventTimeAndConfig: func(et ExpirationTime, config *SuspenseConfig) {
				eventTimes = append(eventTimes, et)
				configs = append(configs, config)
			},
			MarkUnprocessedUpdateTime: func(et ExpirationTime) {
				unprocessed = append(unprocessed, et)
			},
		})

		config := &SuspenseConfig{TimeoutMs: 3000}
		n := NewNode[state](state{})

		withConfig := NewUpdate(5, config)
		withConfig.Payload = LiteralPayload(state{"a": 1})
		n.Enqueue(withConfig)
		n.Enqueue(NewStateUpdate(2, state{"b": 2})) // skipped this pass

		wip := n.WorkInProgress()
		wip.Process(nil, 4)

		// only the applied update reports its event time and config
		assert.Equal(t, []ExpirationTime{5}, eventTimes)
		assert.Equal(t, []*SuspenseConfig{config}, configs)
		// the skipped update's priority is handed back at the end of the pass
		assert.Equal(t, []ExpirationTime{2}, unprocessed)
	})
}

func TestRebasing(t *testing.T) {
	t.Run("skipped updates keep their original relative order", func(t *testing.T) {
		// U1 applies, U2 is skipped: U1 folds into the new base, a clone of U2
		// stays pending at its original expiration time.
		n := NewNode[state](state{})
		n.Enqueue(NewStateUpdate(3, state{"a": 1}))
		n.Enqueue(NewStateUpdate(1, state{"b": 2}))

		wip := n.WorkInProgress()
		wip.Process(nil, 2)

		assert.Equal(t, state{"a": 1}, wip.State())
		assert.Equal(t, state{"a": 1}, wip.BaseState())
		assert.Equal(t, ExpirationTime(1), wip.PendingExpirationTime())

		wip.Commit()

		wip = n.WorkInProgress()
		wip.Process(nil, 1)

		assert.Equal(t, state{"a": 1, "b": 2}, wip.State())
		assert.False(t, wip.HasQueuedWork())
	})

	t.Run("partial passes converge to the single-pass result", func(t *testing.T) {
		apply := func(thresholds []ExpirationTime) int {
			n := NewNode[state](state{"v": 1})
			n.Enqueue(NewStateUpdateFunc(5, double))
			n.Enqueue(NewStateUpdateFunc(2, add(3)))
			n.Enqueue(NewStateUpdateFunc(4, times(10)))
			n.Enqueue(NewStateUpdateFunc(1, add(1)))

			var wip *Node[state]
			for _, threshold := range thresholds {
				wip = n.WorkInProgress()
				wip.Process(nil, threshold)
				wip.Commit()
			}

			return wip.State()["v"].(int)
		}

		want := apply([]ExpirationTime{1}) // everything in one pass

		assert.Equal(t, 51, want)
		assert.Equal(t, want, apply([]ExpirationTime{5, 4, 2, 1}))
		assert.Equal(t, want, apply([]ExpirationTime{4, 1}))
		assert.Equal(t, want, apply([]ExpirationTime{2, 2, 1}))
		assert.Equal(t, want, apply([]ExpirationTime{5, 1}))
	})

	t.Run("applied-after-skip updates never look pending again", func(t *testing.T) {
		n := NewNode[state](state{"v": 1})
		n.Enqueue(NewStateUpdateFunc(1, add(3))) // skipped first
		n.Enqueue(NewStateUpdateFunc(4, double)) // applied over its head

		wip := n.WorkInProgress()
		wip.Process(nil, 4)
		wip.Commit()

		assert.Equal(t, 2, wip.State()["v"])
		// only the skipped update's priority is reported back
		assert.Equal(t, ExpirationTime(1), wip.PendingExpirationTime())

		wip = n.WorkInProgress()
		wip.Process(nil, 1)

		// rebased in original order: (1+3)*2, not 2+3
		assert.Equal(t, 8, wip.State()["v"])
	})
}

func TestReentrantUpdates(t *testing.T) {
	t.Run("updates enqueued by an updater land in the same pass", func(t *testing.T) {
		n := NewNode[state](state{})

		enqueued := false
		n.Enqueue(NewStateUpdateFunc(5, func(prevState, props any) any {
			if !enqueued {
				enqueued = true
				n.Enqueue(NewStateUpdate(5, state{"reentrant": true}))
			}
			return state{"first": true}
		}))

		wip := n.WorkInProgress()
		wip.Process(nil, 1)

		assert.Equal(t, state{"first": true, "reentrant": true}, wip.State())
		assert.False(t, wip.HasQueuedWork())
	})
}

func TestSharedPendingQueue(t *testing.T) {
	t.Run("pending updates survive a discarded attempt", func(t *testing.T) {
		n := NewNode[state](state{})
		n.Enqueue(NewStateUpdate(5, state{"a": 1}))

		wip := n.WorkInProgress()
		wip.Process(nil, 1)
		assert.Equal(t, state{"a": 1}, wip.State())

		// throw the attempt away and start over from current
		wip = n.WorkInProgress()
		wip.Process(nil, 1)

		assert.Equal(t, state{"a": 1}, wip.State())
	})

	t.Run("work-in-progress processing leaves the current state alone", func(t *testing.T) {
		n := NewNode[state](state{})
		n.Enqueue(NewStateUpdate(5, state{"a": 1}))

		wip := n.WorkInProgress()
		wip.Process(nil, 1)

		assert.Equal(t, state{"a": 1}, wip.State())
		assert.Equal(t, state{}, n.State())
	})
}

func TestCapturedUpdates(t *testing.T) {
	t.Run("flips should-capture to did-capture and merges", func(t *testing.T) {
		n := NewNode[state](state{"ok": true})

		wip := n.WorkInProgress()
		wip.AddFlag(FlagShouldCapture)
		wip.EnqueueCaptured(NewCaptureUpdate(5, state{"err": "boom"}))
		wip.Process(nil, 1)

		assert.Equal(t, state{"ok": true, "err": "boom"}, wip.State())
		assert.False(t, wip.HasFlag(FlagShouldCapture))
		assert.True(t, wip.HasFlag(FlagDidCapture))
	})

	t.Run("captured updates do not survive a discarded attempt", func(t *testing.T) {
		n := NewNode[state](state{"ok": true})

		wip := n.WorkInProgress()
		wip.EnqueueCaptured(NewCaptureUpdate(5, state{"err": "boom"}))
		wip.Process(nil, 1)
		assert.Equal(t, state{"ok": true, "err": "boom"}, wip.State())

		// discard the attempt; the capture must be gone
		wip = n.WorkInProgress()
		wip.Process(nil, 1)

		assert.Equal(t, state{"ok": true}, wip.State())
	})
}

func TestCommitUpdateQueue(t *testing.T) {
	t.Run("drains callbacks once in capture order", func(t *testing.T) {
		log := []string{}

		n := NewNode[state](state{})

		first := NewStateUpdate(1, state{"a": 1})
		first.Callback = func() { log = append(log, "first") }
		second := NewStateUpdate(1, state{"b": 2})
		second.Callback = func() { log = append(log, "second") }
		n.Enqueue(first)
		n.Enqueue(second)

		wip := n.WorkInProgress()
		wip.Process(nil, 1)

		assert.True(t, wip.HasFlag(FlagCallback))

		wip.Commit()
		assert.Equal(t, []string{"first", "second"}, log)
		assert.False(t, wip.HasFlag(FlagCallback))

		// a second commit must not re-run them
		wip.Commit()
		assert.Equal(t, []string{"first", "second"}, log)
	})

	t.Run("skipped callbacks fire on the pass that applies them", func(t *testing.T) {
		log := []string{}

		n := NewNode[state](state{})
		u := NewStateUpdate(1, state{"a": 1})
		u.Callback = func() { log = append(log, "late") }
		n.Enqueue(u)

		wip := n.WorkInProgress()
		wip.Process(nil, 2) // too low-priority, skipped
		wip.Commit()
		assert.Empty(t, log)

		wip = n.WorkInProgress()
		wip.Process(nil, 1)
		wip.Commit()
		assert.Equal(t, []string{"late"}, log)
	})
}

func TestDebugRuntime(t *testing.T) {
	t.Run("double-invokes updater functions", func(t *testing.T) {
		EnableDebug()

		calls := 0
		n := NewNode[state](state{"v": 1})
		n.Enqueue(NewStateUpdateFunc(1, func(prevState, props any) any {
			calls++
			prev := prevState.(state)
			return state{"v": prev["v"].(int) + 1}
		}))

		wip := n.WorkInProgress()
		wip.Process(nil, 1)

		assert.Equal(t, 2, calls)
		assert.Equal(t, state{"v": 2}, wip.State()) // first result is discarded
	})
}

func double(prevState, props any) any {
	prev := prevState.(state)
	return state{"v": prev["v"].(int) * 2}
}

func times(factor int) func(prevState, props any) any {
	return func(prevState, props any) any {
		prev := prevState.(state)
		return state{"v": prev["v"].(int) * factor}
	}
}

func add(delta int) func(prevState, props any) any {
	return func(prevState, props any) any {
		prev := prevState.(state)
		return state{"v": prev["v"].(int) + delta}
	}
}
