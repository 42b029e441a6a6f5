// Package catalog keeps the listing catalog in step with the URL query.
//
// The URL is the source of truth for the accepted filter. Facet changes
// (sort, property type, rental term, page) are written straight to the URL;
// free-text and range edits are staged on a local form until Apply or
// Submit pushes them. Every accepted change that alters the canonical query
// issues one fetch through a request envelope, so only the newest query can
// reach the visible list.
package catalog

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/five82/rentme/internal/api"
	"github.com/five82/rentme/internal/query"
	"github.com/five82/rentme/internal/request"
	"github.com/five82/rentme/internal/router"
	"github.com/five82/rentme/internal/state"
)

// DefaultPath is the route the catalog lives on.
const DefaultPath = "/catalog"

// Fetcher loads one catalog page for a canonical query string.
type Fetcher interface {
	ListListings(ctx context.Context, rawQuery string) (api.ListingCatalog, error)
}

// Options configures a Controller.
type Options struct {
	Codec  query.Codec
	Path   string
	Logger zerolog.Logger
}

// Controller owns the catalog filter, form and result set.
type Controller struct {
	fetcher Fetcher
	router  router.Router
	codec   query.Codec
	path    string
	log     zerolog.Logger

	store *state.Store[api.ListingCatalog]
	env   request.Envelope[api.ListingCatalog]

	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	filter      query.FilterState
	form        query.FilterState
	lastQuery   string
	reloads     int
}

// New returns a stopped Controller.
func New(fetcher Fetcher, r router.Router, opts Options) *Controller {
	if opts.Codec == (query.Codec{}) {
		opts.Codec = query.DefaultCodec
	}
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	def := opts.Codec.Default()
	return &Controller{
		fetcher: fetcher,
		router:  r,
		codec:   opts.Codec,
		path:    opts.Path,
		log:     opts.Logger,
		store:   state.NewStore(cloneCatalog),
		filter:  def,
		form:    def,
	}
}

// Start subscribes to the router and syncs with the current location.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.unsubscribe != nil {
		c.mu.Unlock()
		return
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.lastQuery = ""
	c.unsubscribe = c.router.Subscribe(c.sync)
	c.mu.Unlock()

	c.sync(c.router.Location())
}

// Stop unsubscribes from the router and discards in-flight work. Data
// already shown stays visible.
func (c *Controller) Stop() {
	c.mu.Lock()
	unsubscribe, cancel := c.unsubscribe, c.cancel
	c.unsubscribe, c.cancel = nil, nil
	c.ctx = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	c.env.Cancel()
	c.store.Abort()
}

// sync accepts the router's current location. Notifications from
// concurrent navigations can arrive out of order, so the location is read
// again under c.mu instead of trusting the notified one.
func (c *Controller) sync(router.Location) {
	c.mu.Lock()
	loc := c.router.Location()
	if c.ctx == nil || loc.Pathname != c.path {
		c.mu.Unlock()
		return
	}
	f := c.codec.Decode(loc.Search)
	encoded := c.codec.Encode(f)
	if encoded == c.lastQuery {
		c.mu.Unlock()
		return
	}
	c.lastQuery = encoded
	c.filter = f
	c.form = f
	ticket, release := c.issueLocked(encoded)
	c.mu.Unlock()

	release()
	go c.complete(ticket, encoded)
}

// issueLocked starts a fetch while c.mu is held, so the order of accepted
// filters and the order of envelope sequence numbers always agree.
func (c *Controller) issueLocked(encoded string) (request.Ticket, func()) {
	release := c.store.Hold()
	ticket := c.env.Begin(c.ctx)
	c.store.Begin()
	c.log.Debug().Str("query", encoded).Uint64("seq", ticket.Seq).Msg("catalog fetch")
	return ticket, release
}

func (c *Controller) complete(ticket request.Ticket, encoded string) {
	page, err := c.fetcher.ListListings(ticket.Context(), encoded)

	release := c.store.Hold()
	res := c.env.Finish(ticket, page, err, func(res request.Result[api.ListingCatalog]) {
		c.store.Update(res.Value, res.Err)
	})
	release()
	if res.Committed() && res.Err != nil {
		c.log.Warn().Err(res.Err).Str("query", encoded).Msg("catalog load failed")
	}
}

// Stage edits the local form without touching the URL. The page resets to 1.
func (c *Controller) Stage(edit func(*query.FilterState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	edit(&c.form)
	c.form.Page = 1
}

// Apply pushes the staged form to the URL.
func (c *Controller) Apply() {
	c.mu.Lock()
	f := c.form
	c.mu.Unlock()
	c.push(f)
}

// Submit pushes the staged form to the URL starting from the first page.
func (c *Controller) Submit() {
	c.mu.Lock()
	c.form.Page = 1
	f := c.form
	c.mu.Unlock()
	c.push(f)
}

// ApplyImmediate merges edit into the form and pushes it to the URL at page 1.
func (c *Controller) ApplyImmediate(edit func(*query.FilterState)) {
	c.mu.Lock()
	edit(&c.form)
	c.form.Page = 1
	f := c.form
	c.mu.Unlock()
	c.push(f)
}

// SetSort applies a sort key immediately.
func (c *Controller) SetSort(s query.Sort) {
	c.ApplyImmediate(func(f *query.FilterState) { f.Sort = s })
}

// SetPropertyType applies a property type facet immediately.
func (c *Controller) SetPropertyType(p query.PropertyType) {
	c.ApplyImmediate(func(f *query.FilterState) { f.PropertyType = p })
}

// SetRentalTerm applies a rental term facet immediately.
func (c *Controller) SetRentalTerm(t query.RentalTerm) {
	c.ApplyImmediate(func(f *query.FilterState) { f.RentalTerm = t })
}

// ChangePage moves to page n, clamped to at least 1.
func (c *Controller) ChangePage(n int) {
	if n < 1 {
		n = 1
	}
	c.mu.Lock()
	c.form.Page = n
	f := c.form
	c.mu.Unlock()
	c.push(f)
}

// Reset restores the default filter.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.form = c.codec.Default()
	f := c.form
	c.mu.Unlock()
	c.push(f)
}

// Refresh re-fetches the accepted query.
func (c *Controller) Refresh() {
	c.mu.Lock()
	if c.ctx == nil {
		c.mu.Unlock()
		return
	}
	c.reloads++
	encoded := c.codec.Encode(c.filter)
	ticket, release := c.issueLocked(encoded)
	c.mu.Unlock()

	release()
	go c.complete(ticket, encoded)
}

// ReloadCount returns how many manual refreshes were issued.
func (c *Controller) ReloadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reloads
}

// Form returns the staged form.
func (c *Controller) Form() query.FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Filter returns the filter last accepted from the URL.
func (c *Controller) Filter() query.FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Snapshot returns the latest result state.
func (c *Controller) Snapshot() state.Snapshot[api.ListingCatalog] {
	return c.store.Snapshot()
}

// Subscribe registers fn to run after each result state change.
func (c *Controller) Subscribe(fn func(state.Snapshot[api.ListingCatalog])) {
	c.store.Subscribe(fn)
}

// TotalPages derives the page count from the result meta.
func TotalPages(meta api.CatalogMeta) int {
	if meta.Limit <= 0 || meta.Total <= 0 {
		return 1
	}
	return (meta.Total + meta.Limit - 1) / meta.Limit
}

func (c *Controller) push(f query.FilterState) {
	c.router.Navigate(c.path+"?"+c.codec.Encode(f), router.NavigateOptions{})
}

func cloneCatalog(cat api.ListingCatalog) api.ListingCatalog {
	cat.Items = state.CloneSlice(cat.Items)
	return cat
}
