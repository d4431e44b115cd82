package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpirationTime(t *testing.T) {
	t.Run("later times map to lower priority", func(t *testing.T) {
		earlier := MsToExpirationTime(1000)
		later := MsToExpirationTime(2000)

		assert.Greater(t, earlier, later)
	})

	t.Run("real times stay below the reserved band", func(t *testing.T) {
		assert.Less(t, MsToExpirationTime(0), Batched)
		assert.Less(t, MsToExpirationTime(1<<30), Batched)
	})

	t.Run("round trips through ms", func(t *testing.T) {
		assert.Equal(t, 1000, ExpirationTimeToMs(MsToExpirationTime(1000)))
	})

	t.Run("loses sub-10ms resolution", func(t *testing.T) {
		assert.Equal(t, MsToExpirationTime(1000), MsToExpirationTime(1009))
	})
}

func TestComputeAsyncExpiration(t *testing.T) {
	t.Run("collapses near-simultaneous requests into one bucket", func(t *testing.T) {
		a := ComputeAsyncExpiration(MsToExpirationTime(1000))
		b := ComputeAsyncExpiration(MsToExpirationTime(1200))

		assert.Equal(t, a, b)
	})

	t.Run("separates requests across a bucket boundary", func(t *testing.T) {
		a := ComputeAsyncExpiration(MsToExpirationTime(1000))
		b := ComputeAsyncExpiration(MsToExpirationTime(1260))

		assert.NotEqual(t, a, b)
		assert.Greater(t, a, b) // the earlier request keeps the sooner deadline
	})
}

func TestComputeInteractiveExpiration(t *testing.T) {
	t.Run("requests 5ms apart share a 100ms bucket", func(t *testing.T) {
		a := ComputeInteractiveExpiration(MsToExpirationTime(1035))
		b := ComputeInteractiveExpiration(MsToExpirationTime(1040))

		assert.Equal(t, a, b)
	})

	t.Run("requests straddling a bucket boundary differ", func(t *testing.T) {
		a := ComputeInteractiveExpiration(MsToExpirationTime(1045))
		b := ComputeInteractiveExpiration(MsToExpirationTime(1050))

		assert.NotEqual(t, a, b)
	})

	t.Run("expires sooner than async work", func(t *testing.T) {
		now := MsToExpirationTime(1000)

		assert.Greater(t, ComputeInteractiveExpiration(now), ComputeAsyncExpiration(now))
	})
}

func TestComputeSuspenseExpiration(t *testing.T) {
	t.Run("buckets by the configured timeout", func(t *testing.T) {
		now := MsToExpirationTime(1000)

		short := ComputeSuspenseExpiration(now, 1000)
		long := ComputeSuspenseExpiration(now, 8000)

		assert.Greater(t, short, long)
	})
}

func TestInferPriorityFromExpirationTime(t *testing.T) {
	now := MsToExpirationTime(10000)

	t.Run("sync is immediate", func(t *testing.T) {
		assert.Equal(t, ImmediatePriority, InferPriorityFromExpirationTime(now, Sync))
	})

	t.Run("idle band is idle", func(t *testing.T) {
		assert.Equal(t, IdlePriority, InferPriorityFromExpirationTime(now, Never))
		assert.Equal(t, IdlePriority, InferPriorityFromExpirationTime(now, Idle))
	})

	t.Run("past deadlines are immediate", func(t *testing.T) {
		overdue := MsToExpirationTime(9000)

		assert.Equal(t, ImmediatePriority, InferPriorityFromExpirationTime(now, overdue))
	})

	t.Run("near deadlines are user-blocking", func(t *testing.T) {
		soon := MsToExpirationTime(10200)

		assert.Equal(t, UserBlockingPriority, InferPriorityFromExpirationTime(now, soon))
	})

	t.Run("async-window deadlines are normal", func(t *testing.T) {
		later := MsToExpirationTime(13000)

		assert.Equal(t, NormalPriority, InferPriorityFromExpirationTime(now, later))
	})

	t.Run("distant deadlines are idle", func(t *testing.T) {
		distant := MsToExpirationTime(16000)

		assert.Equal(t, IdlePriority, InferPriorityFromExpirationTime(now, distant))
	})

	t.Run("debug runtimes widen the user-blocking band", func(t *testing.T) {
		soon := MsToExpirationTime(10400) // inside the 500ms debug window only

		assert.Equal(t, NormalPriority, InferPriorityFromExpirationTime(now, soon))

		EnableDebug()
		assert.Equal(t, UserBlockingPriority, InferPriorityFromExpirationTime(now, soon))
	})
}
