package overlay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/rentme/internal/router"
	"github.com/five82/rentme/internal/state"
)

const waitFor = 2 * time.Second

type detailFetcher struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (d *detailFetcher) fetch(_ context.Context, id string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, id)
	if err := d.fail[id]; err != nil {
		return "", err
	}
	return "detail:" + id, nil
}

func (d *detailFetcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

func TestSelectFetchesDetail(t *testing.T) {
	r := router.NewMemory("/catalog")
	d := &detailFetcher{}
	o := New(r, d.fetch, Options{})

	assert.False(t, o.Open())
	o.Select(context.Background(), "a")
	assert.True(t, o.Open())
	assert.Equal(t, "a", o.Selected())
	require.Eventually(t, func() bool { return o.Detail().Phase == state.PhaseReady }, waitFor, time.Millisecond)
	assert.Equal(t, "detail:a", o.Detail().Data)

	o.Select(context.Background(), "a")
	assert.Equal(t, 1, d.count(), "reselecting the same id does not refetch")
}

func TestReconcileClosesWhenSelectionDisappears(t *testing.T) {
	r := router.NewMemory("/catalog")
	o := New(r, (&detailFetcher{}).fetch, Options{})
	o.Select(context.Background(), "x")

	o.Reconcile([]string{"x", "y"})
	assert.True(t, o.Open())

	o.Reconcile([]string{"y"})
	assert.False(t, o.Open())
	assert.Equal(t, state.PhaseIdle, o.Detail().Phase)
	assert.Len(t, r.History(), 1, "list-opened overlay leaves the URL alone")
}

func TestURLSelectionOpensAndCloseStripsParamWithReplace(t *testing.T) {
	r := router.NewMemory("/catalog")
	r.Navigate("/catalog?city=Prague&listing_id=abc&page=1", router.NavigateOptions{})
	o := New(r, (&detailFetcher{}).fetch, Options{})
	unsubscribe := o.Attach(context.Background())
	defer unsubscribe()

	assert.Equal(t, "abc", o.Selected())
	historyLen := len(r.History())

	o.Close()
	assert.False(t, o.Open())
	assert.Equal(t, "/catalog?city=Prague&page=1", r.Location().String())
	assert.Len(t, r.History(), historyLen, "close must replace, not push")
}

func TestReconcileOnURLSelectionDoesNotReopen(t *testing.T) {
	r := router.NewMemory("/catalog?listing_id=gone")
	d := &detailFetcher{}
	o := New(r, d.fetch, Options{})
	unsubscribe := o.Attach(context.Background())
	defer unsubscribe()
	require.True(t, o.Open())

	o.Reconcile([]string{"other"})
	assert.False(t, o.Open())
	assert.Equal(t, "/catalog", r.Location().String())
}

func TestURLChangeSwitchesSelection(t *testing.T) {
	r := router.NewMemory("/catalog")
	d := &detailFetcher{}
	o := New(r, d.fetch, Options{})
	unsubscribe := o.Attach(context.Background())
	defer unsubscribe()
	assert.False(t, o.Open())

	r.Navigate("/catalog?listing_id=one", router.NavigateOptions{})
	require.Eventually(t, func() bool { return o.Detail().Data == "detail:one" }, waitFor, time.Millisecond)
	r.Navigate("/catalog?listing_id=two", router.NavigateOptions{})
	require.Eventually(t, func() bool { return o.Detail().Data == "detail:two" }, waitFor, time.Millisecond)
	assert.Equal(t, "two", o.Selected())
}

func TestBackToBackSelectLoadsLatest(t *testing.T) {
	for i := 0; i < 500; i++ {
		r := router.NewMemory("/catalog")
		o := New(r, func(_ context.Context, id string) (string, error) {
			time.Sleep(time.Millisecond)
			return "detail:" + id, nil
		}, Options{})

		o.Select(context.Background(), "a")
		o.Select(context.Background(), "b")

		require.Eventually(t, func() bool { return o.Detail().Phase == state.PhaseReady }, waitFor, time.Millisecond, "iteration %d", i)
		assert.Equal(t, "b", o.Selected())
		assert.Equal(t, "detail:b", o.Detail().Data)
		assert.False(t, o.Detail().Loading)
	}
}

func TestBackToBackURLSelectionLoadsLatest(t *testing.T) {
	for i := 0; i < 300; i++ {
		r := router.NewMemory("/catalog")
		gates := map[string]chan struct{}{"one": make(chan struct{}), "two": make(chan struct{})}
		o := New(r, func(_ context.Context, id string) (string, error) {
			<-gates[id]
			return "detail:" + id, nil
		}, Options{})
		unsubscribe := o.Attach(context.Background())

		r.Navigate("/catalog?listing_id=one", router.NavigateOptions{})
		r.Navigate("/catalog?listing_id=two", router.NavigateOptions{})
		close(gates["two"])
		close(gates["one"])

		require.Eventually(t, func() bool { return o.Detail().Phase == state.PhaseReady }, waitFor, time.Millisecond, "iteration %d", i)
		time.Sleep(time.Millisecond)
		assert.Equal(t, "detail:two", o.Detail().Data)
		unsubscribe()
	}
}

func TestDetailFailureIsRecorded(t *testing.T) {
	r := router.NewMemory("/catalog")
	d := &detailFetcher{fail: map[string]error{"bad": errors.New("boom")}}
	o := New(r, d.fetch, Options{})
	o.Select(context.Background(), "bad")
	require.Eventually(t, func() bool { return o.Detail().Phase == state.PhaseError }, waitFor, time.Millisecond)
	assert.True(t, o.Open(), "a failed detail keeps the preview open with its error")
}

func TestCloseDiscardsLateDetail(t *testing.T) {
	r := router.NewMemory("/catalog")
	release := make(chan struct{})
	o := New(r, func(_ context.Context, id string) (string, error) {
		<-release
		return "late:" + id, nil
	}, Options{})
	o.Select(context.Background(), "slow")
	o.Close()
	close(release)

	time.Sleep(20 * time.Millisecond)
	snap := o.Detail()
	assert.False(t, snap.HasData)
	assert.Equal(t, state.PhaseIdle, snap.Phase)
}

func TestCustomParam(t *testing.T) {
	r := router.NewMemory("/me/bookings?booking=b1")
	o := New(r, (&detailFetcher{}).fetch, Options{Param: "booking"})
	unsubscribe := o.Attach(context.Background())
	defer unsubscribe()
	assert.Equal(t, "b1", o.Selected())
	o.Close()
	assert.Equal(t, "/me/bookings", r.Location().String())
}
