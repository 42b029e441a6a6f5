package poll

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/rentme/internal/api"
	"github.com/five82/rentme/internal/state"
)

const (
	tick    = 20 * time.Millisecond
	waitFor = 2 * time.Second
)

type counter struct {
	calls atomic.Int64
	err   atomic.Pointer[error]
}

func (c *counter) fetch(ctx context.Context) (int, error) {
	n := c.calls.Add(1)
	if e := c.err.Load(); e != nil {
		return 0, *e
	}
	return int(n), nil
}

func (c *counter) fail(err error) {
	if err == nil {
		c.err.Store(nil)
		return
	}
	c.err.Store(&err)
}

func TestEnableFetchesImmediatelyThenOnTicks(t *testing.T) {
	c := &counter{}
	p := New("test", time.Hour, c.fetch)
	p.Enable(context.Background())
	defer p.Disable()

	require.Eventually(t, func() bool {
		return p.Snapshot().Phase == state.PhaseReady
	}, waitFor, time.Millisecond)
	assert.Equal(t, int64(1), c.calls.Load(), "hour-long interval means only the immediate fetch ran")
	assert.Equal(t, 1, p.Snapshot().Data)

	fast := New("fast", tick, c.fetch)
	fast.Enable(context.Background())
	defer fast.Disable()
	require.Eventually(t, func() bool { return c.calls.Load() >= 4 }, waitFor, time.Millisecond)
}

func TestDisableStopsNetworkAndClears(t *testing.T) {
	c := &counter{}
	p := New("test", tick, c.fetch)
	p.Enable(context.Background())
	require.Eventually(t, func() bool { return p.Snapshot().HasData }, waitFor, time.Millisecond)

	p.Disable()
	snap := p.Snapshot()
	assert.Equal(t, state.PhaseIdle, snap.Phase)
	assert.False(t, snap.HasData)
	assert.NoError(t, snap.LastError)
	assert.False(t, p.Enabled())

	// Allow one in-flight tick to drain, then make sure nothing else runs.
	time.Sleep(2 * tick)
	after := c.calls.Load()
	time.Sleep(5 * tick)
	assert.Equal(t, after, c.calls.Load())
	assert.Equal(t, state.PhaseIdle, p.Snapshot().Phase)
}

func TestReEnableFetchesFresh(t *testing.T) {
	c := &counter{}
	p := New("test", time.Hour, c.fetch)
	p.Enable(context.Background())
	require.Eventually(t, func() bool { return p.Snapshot().HasData }, waitFor, time.Millisecond)
	p.Disable()

	p.Enable(context.Background())
	defer p.Disable()
	require.Eventually(t, func() bool { return c.calls.Load() == 2 && p.Snapshot().Data == 2 }, waitFor, time.Millisecond)
}

func TestFailureKeepsTickingAndSelfHeals(t *testing.T) {
	c := &counter{}
	c.fail(&api.Error{Kind: api.KindServer, Status: 503})
	p := New("test", tick, c.fetch)
	p.Enable(context.Background())
	defer p.Disable()

	require.Eventually(t, func() bool {
		return p.Snapshot().Phase == state.PhaseError
	}, waitFor, time.Millisecond)
	snap := p.Snapshot()
	assert.Equal(t, api.KindServer, api.KindOf(snap.LastError))
	assert.NotEmpty(t, snap.Message)

	c.fail(nil)
	require.Eventually(t, func() bool {
		return p.Snapshot().Phase == state.PhaseReady
	}, waitFor, time.Millisecond)
	assert.False(t, p.Halted())
}

func TestAuthErrorHaltsSilently(t *testing.T) {
	c := &counter{}
	c.fail(&api.Error{Kind: api.KindAuthRequired, Status: 401})
	p := New("test", tick, c.fetch)
	p.Enable(context.Background())
	defer p.Disable()

	require.Eventually(t, p.Halted, waitFor, time.Millisecond)
	calls := c.calls.Load()
	time.Sleep(5 * tick)
	assert.Equal(t, calls, c.calls.Load(), "halted poller must not fetch")
	assert.True(t, p.Enabled())

	p.Refresh()
	time.Sleep(2 * tick)
	assert.Equal(t, calls, c.calls.Load(), "refresh is ignored while halted")

	c.fail(nil)
	p.Enable(context.Background())
	require.Eventually(t, func() bool { return p.Snapshot().Phase == state.PhaseReady }, waitFor, time.Millisecond)
	assert.False(t, p.Halted())
}

func TestRefreshSupersedesHungTick(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int64
	fetch := func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			select {
			case <-release:
				return "stale", nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		return "fresh", nil
	}

	var mu sync.Mutex
	var delivered []string
	p := New("test", time.Hour, fetch, WithOnSuccess(func(_ context.Context, v string) {
		mu.Lock()
		delivered = append(delivered, v)
		mu.Unlock()
	}))
	p.Enable(context.Background())
	defer p.Disable()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, waitFor, time.Millisecond)
	p.Refresh()
	require.Eventually(t, func() bool { return p.Snapshot().Data == "fresh" }, waitFor, time.Millisecond)
	close(release)

	time.Sleep(2 * tick)
	assert.Equal(t, "fresh", p.Snapshot().Data)
	assert.NoError(t, p.Snapshot().LastError, "superseded fetch is not an error")
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"fresh"}, delivered)
}

func TestRefreshRightAfterEnableWins(t *testing.T) {
	for i := 0; i < 300; i++ {
		var calls atomic.Int64
		var delivered atomic.Int64
		p := New("test", time.Hour, func(context.Context) (int64, error) {
			// Ignores cancellation, like a response already on the wire.
			return calls.Add(1), nil
		}, WithOnSuccess(func(context.Context, int64) { delivered.Add(1) }))

		p.Enable(context.Background())
		require.Equal(t, uint64(1), p.env.Seq(), "enable issues its fetch before returning")
		p.Refresh()
		require.Equal(t, uint64(2), p.env.Seq())

		require.Eventually(t, func() bool { return calls.Load() == 2 }, waitFor, time.Millisecond, "iteration %d", i)
		require.Eventually(t, func() bool {
			p.mu.Lock()
			defer p.mu.Unlock()
			return p.lastDelivered == 2
		}, waitFor, time.Millisecond, "iteration %d", i)
		snap := p.Snapshot()
		assert.Equal(t, state.PhaseReady, snap.Phase)
		assert.False(t, snap.Loading)
		require.Eventually(t, func() bool { return delivered.Load() == 1 }, waitFor, time.Millisecond)
		p.Disable()
		assert.Equal(t, int64(1), delivered.Load(), "the superseded first fetch is not delivered")
	}
}

func TestRefreshIgnoredWhileDisabled(t *testing.T) {
	c := &counter{}
	p := New("test", tick, c.fetch)
	p.Refresh()
	time.Sleep(2 * tick)
	assert.Zero(t, c.calls.Load())
}

func TestOnSuccessReceivesValues(t *testing.T) {
	got := make(chan int, 8)
	c := &counter{}
	p := New("test", time.Hour, c.fetch, WithOnSuccess(func(_ context.Context, v int) { got <- v }))
	p.Enable(context.Background())
	defer p.Disable()

	select {
	case v := <-got:
		assert.Equal(t, 1, v)
	case <-time.After(waitFor):
		t.Fatal("onSuccess not called")
	}
}

func TestCancelledParentIsNotAnError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	p := New("test", time.Hour, func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})
	p.Enable(ctx)
	<-started
	cancel()

	time.Sleep(2 * tick)
	snap := p.Snapshot()
	assert.NotEqual(t, state.PhaseError, snap.Phase)
	assert.False(t, errors.Is(snap.LastError, context.Canceled))
}
