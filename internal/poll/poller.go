// Package poll keeps a remote resource fresh by fetching it once on enable
// and then on a fixed cadence until disabled.
package poll

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/rentme/internal/api"
	"github.com/five82/rentme/internal/request"
	"github.com/five82/rentme/internal/state"
)

const defaultInterval = 5 * time.Second

// Option configures a Poller.
type Option[T any] func(*Poller[T])

// WithLogger sets the logger used for poll failures.
func WithLogger[T any](log zerolog.Logger) Option[T] {
	return func(p *Poller[T]) { p.log = log }
}

// WithOnSuccess registers a hook that receives every committed value, in
// commit order. It runs on the polling goroutine outside all locks.
func WithOnSuccess[T any](fn func(context.Context, T)) Option[T] {
	return func(p *Poller[T]) { p.onSuccess = fn }
}

// WithClone sets the function used to copy data handed to readers.
func WithClone[T any](clone func(T) T) Option[T] {
	return func(p *Poller[T]) { p.clone = clone }
}

// Poller re-fetches one resource while enabled. At most one fetch result
// can reach the snapshot at a time; overlapping fetches are settled by the
// request envelope.
type Poller[T any] struct {
	name      string
	interval  time.Duration
	fetch     func(context.Context) (T, error)
	log       zerolog.Logger
	onSuccess func(context.Context, T)
	clone     func(T) T

	store *state.Store[T]
	env   request.Envelope[T]

	mu            sync.Mutex
	enabled       bool
	halted        bool
	gen           uint64
	loopCtx       context.Context
	stop          context.CancelFunc
	lastDelivered uint64
}

// New returns a disabled Poller. Call Enable to start it.
func New[T any](name string, interval time.Duration, fetch func(context.Context) (T, error), opts ...Option[T]) *Poller[T] {
	if interval <= 0 {
		interval = defaultInterval
	}
	p := &Poller[T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.store = state.NewStore(p.clone)
	return p
}

// Name identifies the poller in logs.
func (p *Poller[T]) Name() string { return p.name }

// Interval returns the tick period.
func (p *Poller[T]) Interval() time.Duration { return p.interval }

// Enable fetches immediately and then on every tick. Enabling a halted
// poller restarts it; enabling a running one is a no-op.
func (p *Poller[T]) Enable(ctx context.Context) {
	p.mu.Lock()
	if p.enabled && !p.halted {
		p.mu.Unlock()
		return
	}
	if p.stop != nil {
		p.stop()
	}
	p.enabled = true
	p.halted = false
	p.gen++
	loopCtx, stop := context.WithCancel(ctx)
	p.loopCtx = loopCtx
	p.stop = stop
	p.log.Debug().Str("poll", p.name).Dur("interval", p.interval).Msg("poll enabled")

	first, release := p.issueLocked(loopCtx)
	go p.loop(loopCtx, p.gen, first)
	p.mu.Unlock()
	release()
}

// Disable stops the ticker, discards anything in flight and clears the
// snapshot back to idle.
func (p *Poller[T]) Disable() {
	p.mu.Lock()
	if !p.enabled {
		p.mu.Unlock()
		return
	}
	p.enabled = false
	p.halted = false
	p.gen++
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
	p.loopCtx = nil
	release := p.store.Hold()
	p.env.Cancel()
	p.store.Reset()
	p.log.Debug().Str("poll", p.name).Msg("poll disabled")
	p.mu.Unlock()
	release()
}

// SetEnabled enables or disables the poller.
func (p *Poller[T]) SetEnabled(ctx context.Context, enabled bool) {
	if enabled {
		p.Enable(ctx)
		return
	}
	p.Disable()
}

// Enabled reports whether the poller was enabled and not disabled since.
func (p *Poller[T]) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Halted reports whether polling stopped after an authorization failure.
func (p *Poller[T]) Halted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.halted
}

// Refresh issues an extra fetch without touching the ticker phase. It is
// ignored while disabled or halted.
func (p *Poller[T]) Refresh() {
	p.mu.Lock()
	if !p.enabled || p.halted || p.loopCtx == nil {
		p.mu.Unlock()
		return
	}
	ctx, gen := p.loopCtx, p.gen
	ticket, release := p.issueLocked(ctx)
	p.mu.Unlock()

	release()
	go p.complete(ctx, gen, ticket)
}

// Snapshot returns the latest state.
func (p *Poller[T]) Snapshot() state.Snapshot[T] {
	return p.store.Snapshot()
}

// Subscribe registers fn to run after each state change. fn runs outside
// the poller's locks.
func (p *Poller[T]) Subscribe(fn func(state.Snapshot[T])) {
	p.store.Subscribe(fn)
}

func (p *Poller[T]) loop(ctx context.Context, gen uint64, first request.Ticket) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.complete(ctx, gen, first)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		p.poll(ctx, gen)
	}
}

func (p *Poller[T]) poll(ctx context.Context, gen uint64) {
	p.mu.Lock()
	if gen != p.gen || !p.enabled || p.halted {
		p.mu.Unlock()
		return
	}
	ticket, release := p.issueLocked(ctx)
	p.mu.Unlock()

	release()
	p.complete(ctx, gen, ticket)
}

// issueLocked starts a fetch while p.mu is held. Holding p.mu keeps the
// envelope sequence in the order ticks and refreshes were issued.
func (p *Poller[T]) issueLocked(ctx context.Context) (request.Ticket, func()) {
	release := p.store.Hold()
	ticket := p.env.Begin(ctx)
	p.store.Begin()
	return ticket, release
}

func (p *Poller[T]) complete(ctx context.Context, gen uint64, ticket request.Ticket) {
	value, err := p.fetch(ticket.Context())

	release := p.store.Hold()
	res := p.env.Finish(ticket, value, err, func(res request.Result[T]) {
		p.store.Update(res.Value, res.Err)
	})
	release()
	if res.Superseded {
		return
	}

	if res.Err != nil {
		if api.IsAuth(res.Err) {
			p.halt(gen, res.Err)
			return
		}
		p.log.Warn().Err(res.Err).Str("poll", p.name).Msg("poll failed")
		return
	}

	p.mu.Lock()
	if gen != p.gen || res.Seq <= p.lastDelivered {
		p.mu.Unlock()
		return
	}
	p.lastDelivered = res.Seq
	p.mu.Unlock()

	if p.onSuccess != nil {
		p.onSuccess(ctx, res.Value)
	}
}

func (p *Poller[T]) halt(gen uint64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen || p.halted {
		return
	}
	p.halted = true
	if p.stop != nil {
		p.stop()
	}
	p.log.Info().Str("poll", p.name).Str("kind", api.KindOf(err).String()).Msg("poll halted")
}
