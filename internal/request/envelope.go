// Package request serializes overlapping fetches of one logical resource so
// that only the most recently issued one can reach visible state.
package request

import (
	"context"
	"errors"
	"sync"
)

// Result is the outcome of one request. When Superseded is set it lost
// to a newer one (or was cancelled) and Value/Err must be ignored.
type Result[T any] struct {
	Seq        uint64
	Value      T
	Err        error
	Superseded bool
}

// Committed reports whether the result reached visible state.
func (r Result[T]) Committed() bool {
	return !r.Superseded
}

// Envelope wraps outbound calls with a cancellation handle and a strictly
// increasing sequence number. The zero value is ready to use.
type Envelope[T any] struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// Ticket is one issued request. Its context is cancelled as soon as a newer
// request is issued or the envelope is cancelled.
type Ticket struct {
	Seq    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// Context returns the context the request must run under.
func (t Ticket) Context() context.Context {
	return t.ctx
}

// Begin issues a new request under a fresh child of ctx and cancels the
// previous outstanding one. The sequence number is fixed on return, so
// requests issued one after another on any goroutines are ordered by their
// Begin calls, not by when their fetches get scheduled.
func (e *Envelope[T]) Begin(ctx context.Context) Ticket {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
	e.seq++
	reqCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	return Ticket{Seq: e.seq, ctx: reqCtx, cancel: cancel}
}

// Finish settles t with the outcome of its fetch. commit runs only if t is
// still the latest request; it runs with the envelope locked, so it must
// not call back into the same Envelope.
func (e *Envelope[T]) Finish(t Ticket, value T, err error, commit func(Result[T])) Result[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t.cancel == nil {
		return Result[T]{Seq: t.Seq, Superseded: true}
	}
	cancelled := t.ctx.Err() != nil
	t.cancel()
	if t.Seq != e.seq {
		return Result[T]{Seq: t.Seq, Superseded: true}
	}
	e.cancel = nil
	if cancelled || (err != nil && errors.Is(err, context.Canceled)) {
		return Result[T]{Seq: t.Seq, Superseded: true}
	}

	res := Result[T]{Seq: t.Seq, Value: value, Err: err}
	if commit != nil {
		commit(res)
	}
	return res
}

// Run issues fetch and settles it on the calling goroutine. Callers that
// fetch in the background should call Begin before starting the goroutine
// and Finish inside it.
func (e *Envelope[T]) Run(ctx context.Context, fetch func(context.Context) (T, error), commit func(Result[T])) Result[T] {
	t := e.Begin(ctx)
	value, err := fetch(t.Context())
	return e.Finish(t, value, err, commit)
}

// Cancel supersedes whatever is in flight. Late arrivals are discarded.
func (e *Envelope[T]) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// Seq returns the latest issued sequence number.
func (e *Envelope[T]) Seq() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seq
}
