package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/rentme/internal/api"
	"github.com/five82/rentme/internal/query"
	"github.com/five82/rentme/internal/router"
	"github.com/five82/rentme/internal/state"
)

const waitFor = 2 * time.Second

type reply struct {
	catalog api.ListingCatalog
	err     error
}

// gatedFetcher blocks each call until the test releases it.
type gatedFetcher struct {
	mu      sync.Mutex
	queries []string
	gates   map[string]chan reply
	auto    bool
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{gates: make(map[string]chan reply)}
}

func (g *gatedFetcher) gate(q string) chan reply {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[q]
	if !ok {
		ch = make(chan reply, 1)
		g.gates[q] = ch
	}
	return ch
}

func (g *gatedFetcher) ListListings(ctx context.Context, q string) (api.ListingCatalog, error) {
	g.mu.Lock()
	g.queries = append(g.queries, q)
	auto := g.auto
	g.mu.Unlock()
	if auto {
		return catalogOf(q), nil
	}
	// Responses are delivered even if ctx was cancelled, like a socket
	// that completes after the caller stopped caring.
	r := <-g.gate(q)
	return r.catalog, r.err
}

func (g *gatedFetcher) calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.queries...)
}

func catalogOf(ids ...string) api.ListingCatalog {
	items := make([]api.ListingRecord, 0, len(ids))
	for _, id := range ids {
		items = append(items, api.ListingRecord{ID: id})
	}
	return api.ListingCatalog{Items: items, Meta: api.CatalogMeta{Total: len(items), Limit: 20}}
}

func start(t *testing.T, g *gatedFetcher, initial string) (*Controller, *router.Memory) {
	t.Helper()
	r := router.NewMemory(initial)
	c := New(g, r, Options{Logger: zerolog.Nop()})
	c.Start(context.Background())
	t.Cleanup(c.Stop)
	return c, r
}

func TestStartFetchesCanonicalQuery(t *testing.T) {
	g := newGatedFetcher()
	g.auto = true
	c, _ := start(t, g, "/catalog?guests=2&location=Prague")

	require.Eventually(t, func() bool { return c.Snapshot().Phase == state.PhaseReady }, waitFor, time.Millisecond)
	assert.Equal(t, []string{"city=Prague&min_guests=2&page=1&limit=20&sort=price_asc"}, g.calls())
	assert.Equal(t, "Prague", c.Filter().City)
	assert.Equal(t, c.Filter(), c.Form())
}

func TestSortChangeSupersedesInFlightPage(t *testing.T) {
	for _, staleFirst := range []bool{true, false} {
		g := newGatedFetcher()
		c, r := start(t, g, "/catalog?page=1")
		stale := "page=1&limit=20&sort=price_asc"
		fresh := "page=1&limit=20&sort=rating_desc"

		require.Eventually(t, func() bool { return len(g.calls()) == 1 }, waitFor, time.Millisecond)
		c.SetSort(query.SortRatingDesc)
		assert.Equal(t, "/catalog?"+fresh, r.Location().String())
		require.Eventually(t, func() bool { return len(g.calls()) == 2 }, waitFor, time.Millisecond)

		if staleFirst {
			g.gate(stale) <- reply{catalog: catalogOf("old-1", "old-2")}
			time.Sleep(20 * time.Millisecond)
			assert.False(t, c.Snapshot().HasData, "stale page must not commit")
			g.gate(fresh) <- reply{catalog: catalogOf("top-rated")}
		} else {
			g.gate(fresh) <- reply{catalog: catalogOf("top-rated")}
			require.Eventually(t, func() bool { return c.Snapshot().HasData }, waitFor, time.Millisecond)
			g.gate(stale) <- reply{catalog: catalogOf("old-1", "old-2")}
			time.Sleep(20 * time.Millisecond)
		}

		require.Eventually(t, func() bool { return c.Snapshot().Phase == state.PhaseReady }, waitFor, time.Millisecond)
		snap := c.Snapshot()
		assert.Equal(t, []string{"top-rated"}, snap.Data.IDs(), "staleFirst=%v", staleFirst)
		assert.NoError(t, snap.LastError)
		c.Stop()
	}
}

func TestBackToBackSortChangeNeverCommitsStalePage(t *testing.T) {
	stale := "page=1&limit=20&sort=price_asc"
	fresh := "page=1&limit=20&sort=rating_desc"

	for i := 0; i < 300; i++ {
		g := newGatedFetcher()
		r := router.NewMemory("/catalog?page=1")
		c := New(g, r, Options{Logger: zerolog.Nop()})
		c.Start(context.Background())
		c.SetSort(query.SortRatingDesc)

		require.Eventually(t, func() bool { return len(g.calls()) == 2 }, waitFor, time.Millisecond)
		if i%2 == 0 {
			g.gate(fresh) <- reply{catalog: catalogOf("top-rated")}
			g.gate(stale) <- reply{catalog: catalogOf("old-1")}
		} else {
			g.gate(stale) <- reply{catalog: catalogOf("old-1")}
			g.gate(fresh) <- reply{catalog: catalogOf("top-rated")}
		}

		require.Eventually(t, func() bool { return c.Snapshot().Phase == state.PhaseReady }, waitFor, time.Millisecond, "iteration %d", i)
		time.Sleep(time.Millisecond)
		require.Equal(t, []string{"top-rated"}, c.Snapshot().Data.IDs(), "iteration %d", i)
		require.Equal(t, query.SortRatingDesc, c.Filter().Sort)
		c.Stop()
	}
}

func TestStopClearsLoadingAndKeepsData(t *testing.T) {
	g := newGatedFetcher()
	c, _ := start(t, g, "/catalog?city=Brno")
	first := "city=Brno&page=1&limit=20&sort=price_asc"
	g.gate(first) <- reply{catalog: catalogOf("l1")}
	require.Eventually(t, func() bool { return c.Snapshot().Phase == state.PhaseReady }, waitFor, time.Millisecond)

	c.Refresh()
	require.True(t, c.Snapshot().Loading)
	c.Stop()

	snap := c.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, state.PhaseReady, snap.Phase)
	assert.Equal(t, []string{"l1"}, snap.Data.IDs())

	g.gate(first) <- reply{catalog: catalogOf("late")}
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []string{"l1"}, c.Snapshot().Data.IDs())
}

func TestStagedEditsDoNotFetchUntilApplied(t *testing.T) {
	g := newGatedFetcher()
	g.auto = true
	c, r := start(t, g, "/catalog?page=3")
	require.Eventually(t, func() bool { return len(g.calls()) == 1 }, waitFor, time.Millisecond)

	c.Stage(func(f *query.FilterState) { f.City = "Brno" })
	c.Stage(func(f *query.FilterState) { f.PriceMax = 5000 })
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, g.calls(), 1)
	assert.Equal(t, "", c.Filter().City)
	assert.Equal(t, "Brno", c.Form().City)
	assert.Equal(t, 1, c.Form().Page)

	c.Apply()
	assert.Equal(t, "?city=Brno&price_max=5000&page=1&limit=20&sort=price_asc", r.Location().Search)
	require.Eventually(t, func() bool { return len(g.calls()) == 2 }, waitFor, time.Millisecond)
	assert.Equal(t, "Brno", c.Filter().City)
}

func TestImmediateFacetsResetPage(t *testing.T) {
	g := newGatedFetcher()
	g.auto = true
	c, r := start(t, g, "/catalog?page=4")

	c.SetPropertyType(query.PropertyLoft)
	assert.Equal(t, "?type=loft&page=1&limit=20&sort=price_asc", r.Location().Search)

	c.SetRentalTerm(query.TermLong)
	assert.Equal(t, "?type=loft&rental_term=long_term&page=1&limit=20&sort=price_asc", r.Location().Search)

	c.ChangePage(0)
	assert.Equal(t, 1, c.Filter().Page)
	c.ChangePage(2)
	assert.Equal(t, 2, c.Filter().Page)
}

func TestUnrelatedParamDoesNotRefetch(t *testing.T) {
	g := newGatedFetcher()
	g.auto = true
	c, r := start(t, g, "/catalog?city=Prague")
	require.Eventually(t, func() bool { return len(g.calls()) == 1 }, waitFor, time.Millisecond)

	c.Stage(func(f *query.FilterState) { f.Guests = 3 })
	r.Navigate("/catalog?city=Prague&listing_id=abc", router.NavigateOptions{})
	r.Navigate("/chats", router.NavigateOptions{})
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, g.calls(), 1)
	assert.Equal(t, 3, c.Form().Guests, "staged form survives when the query is unchanged")
}

func TestRefreshRefetchesSameQuery(t *testing.T) {
	g := newGatedFetcher()
	g.auto = true
	c, _ := start(t, g, "/catalog")
	require.Eventually(t, func() bool { return len(g.calls()) == 1 }, waitFor, time.Millisecond)

	c.Refresh()
	require.Eventually(t, func() bool { return len(g.calls()) == 2 }, waitFor, time.Millisecond)
	calls := g.calls()
	assert.Equal(t, calls[0], calls[1])
	assert.Equal(t, 1, c.ReloadCount())
}

func TestFailureClearsListAndRecordsMessage(t *testing.T) {
	g := newGatedFetcher()
	c, r := start(t, g, "/catalog")
	first := "page=1&limit=20&sort=price_asc"
	g.gate(first) <- reply{catalog: catalogOf("a")}
	require.Eventually(t, func() bool { return c.Snapshot().HasData }, waitFor, time.Millisecond)

	c.SetSort(query.SortNewest)
	g.gate("page=1&limit=20&sort=newest") <- reply{err: &api.Error{Kind: api.KindServer, Status: 500}}
	require.Eventually(t, func() bool { return c.Snapshot().Phase == state.PhaseError }, waitFor, time.Millisecond)

	snap := c.Snapshot()
	assert.False(t, snap.HasData)
	assert.Empty(t, snap.Data.Items)
	assert.NotEmpty(t, snap.Message)
	assert.Equal(t, "/catalog?page=1&limit=20&sort=newest", r.Location().String())
}

func TestResetRestoresDefaults(t *testing.T) {
	g := newGatedFetcher()
	g.auto = true
	c, r := start(t, g, "/catalog?city=Oslo&sort=newest&page=2")
	c.Reset()
	assert.Equal(t, "?page=1&limit=20&sort=price_asc", r.Location().Search)
	assert.Equal(t, query.DefaultCodec.Default(), c.Form())
}

func TestCustomCodecDefaults(t *testing.T) {
	g := newGatedFetcher()
	g.auto = true
	r := router.NewMemory("/catalog")
	c := New(g, r, Options{Codec: query.Codec{Limit: 12, Sort: query.SortRatingDesc}})
	c.Start(context.Background())
	defer c.Stop()
	require.Eventually(t, func() bool { return len(g.calls()) == 1 }, waitFor, time.Millisecond)
	assert.Equal(t, "page=1&limit=12&sort=rating_desc", g.calls()[0])
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(api.CatalogMeta{}))
	assert.Equal(t, 3, TotalPages(api.CatalogMeta{Total: 41, Limit: 20}))
	assert.Equal(t, 2, TotalPages(api.CatalogMeta{Total: 40, Limit: 20}))
}
