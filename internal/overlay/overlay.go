// Package overlay binds a selected entity to an on-demand detail fetch and
// closes itself when the entity leaves the owning list.
package overlay

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/five82/rentme/internal/request"
	"github.com/five82/rentme/internal/router"
	"github.com/five82/rentme/internal/state"
)

// DefaultParam is the query parameter carrying a URL-bound selection.
const DefaultParam = "listing_id"

// Options configures an Overlay.
type Options struct {
	Param  string
	Logger zerolog.Logger
}

// Overlay tracks one optional selection and its detail.
type Overlay[T any] struct {
	router router.Router
	fetch  func(ctx context.Context, id string) (T, error)
	param  string
	log    zerolog.Logger

	store *state.Store[T]
	env   request.Envelope[T]

	mu       sync.Mutex
	selected string
	fromURL  bool
}

// New returns a closed Overlay. fetch loads the detail for a selected id.
func New[T any](r router.Router, fetch func(ctx context.Context, id string) (T, error), opts Options) *Overlay[T] {
	if opts.Param == "" {
		opts.Param = DefaultParam
	}
	return &Overlay[T]{
		router: r,
		fetch:  fetch,
		param:  opts.Param,
		log:    opts.Logger,
		store:  state.NewStore[T](nil),
	}
}

// Attach follows the router so a selection in the URL opens the overlay.
// It returns the unsubscribe function.
func (o *Overlay[T]) Attach(ctx context.Context) func() {
	o.SyncURL(ctx, o.router.Location())
	return o.router.Subscribe(func(loc router.Location) {
		o.SyncURL(ctx, loc)
	})
}

// Select opens the overlay for id picked from the list.
func (o *Overlay[T]) Select(ctx context.Context, id string) {
	o.open(ctx, strings.TrimSpace(id), false)
}

// SyncURL opens the overlay for the id carried by loc, if any.
func (o *Overlay[T]) SyncURL(ctx context.Context, loc router.Location) {
	id := strings.TrimSpace(loc.Param(o.param))
	if id == "" {
		return
	}
	o.open(ctx, id, true)
}

func (o *Overlay[T]) open(ctx context.Context, id string, fromURL bool) {
	if id == "" {
		o.Close()
		return
	}
	o.mu.Lock()
	if o.selected == id {
		o.fromURL = o.fromURL || fromURL
		o.mu.Unlock()
		return
	}
	o.selected = id
	o.fromURL = fromURL
	release := o.store.Hold()
	ticket := o.env.Begin(ctx)
	o.store.Reset()
	o.store.Begin()
	o.mu.Unlock()
	release()

	go func() {
		detail, err := o.fetch(ticket.Context(), id)
		release := o.store.Hold()
		defer release()
		o.env.Finish(ticket, detail, err, func(res request.Result[T]) {
			if res.Err != nil {
				o.log.Warn().Err(res.Err).Str("id", id).Msg("detail load failed")
			}
			o.store.Update(res.Value, res.Err)
		})
	}()
}

// Open reports whether a selection is present.
func (o *Overlay[T]) Open() bool {
	return o.Selected() != ""
}

// Selected returns the selected id, or "".
func (o *Overlay[T]) Selected() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.selected
}

// Detail returns the state of the detail fetch for the selection.
func (o *Overlay[T]) Detail() state.Snapshot[T] {
	return o.store.Snapshot()
}

// Subscribe registers fn for detail state changes.
func (o *Overlay[T]) Subscribe(fn func(state.Snapshot[T])) {
	o.store.Subscribe(fn)
}

// Reconcile closes the overlay when the selection is not among ids. Call it
// after every successful refresh of the owning list.
func (o *Overlay[T]) Reconcile(ids []string) {
	selected := o.Selected()
	if selected == "" || slices.Contains(ids, selected) {
		return
	}
	o.log.Debug().Str("id", selected).Msg("selection left the result set")
	o.Close()
}

// Close clears the selection and discards any detail fetch. When the
// current URL carries the selection parameter it is removed in place,
// without a new history entry.
func (o *Overlay[T]) Close() {
	o.mu.Lock()
	o.selected = ""
	o.fromURL = false
	release := o.store.Hold()
	o.env.Cancel()
	o.store.Reset()
	o.mu.Unlock()
	release()

	loc := o.router.Location()
	if loc.Param(o.param) == "" {
		return
	}
	o.router.Navigate(loc.WithoutParam(o.param), router.NavigateOptions{Replace: true})
}
