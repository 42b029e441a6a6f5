package state

import (
	"sync"
	"time"

	"github.com/five82/rentme/internal/api"
)

// Phase is the observable lifecycle of a synchronized resource.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// Snapshot represents the latest data available to the UI.
type Snapshot[T any] struct {
	Phase               Phase
	Data                T
	HasData             bool
	LastError           error
	Message             string // human-readable form of LastError
	LastUpdated         time.Time
	ConsecutiveFailures int
	// Loading is true while a fetch is outstanding, including background
	// refreshes that keep the previous data visible.
	Loading bool
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot[T]) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store[T any] struct {
	mu        sync.RWMutex
	snapshot  Snapshot[T]
	clone     func(T) T
	listeners []func(Snapshot[T])
	held      int
	pending   bool
}

// NewStore returns a Store that copies Data with clone on every read.
// A nil clone shares Data as-is.
func NewStore[T any](clone func(T) T) *Store[T] {
	return &Store[T]{clone: clone}
}

// Subscribe registers fn to run after every change. fn runs outside the
// store lock, on the goroutine that made the change.
func (s *Store[T]) Subscribe(fn func(Snapshot[T])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Begin marks a fetch as outstanding. Data stays visible; the previous error
// is cleared.
func (s *Store[T]) Begin() {
	s.mutate(func(snap *Snapshot[T]) {
		snap.Phase = PhaseLoading
		snap.Loading = true
		snap.LastError = nil
		snap.Message = ""
	})
}

// Update records a fetch outcome. A failure clears the previous data
// instead of showing it next to the error.
func (s *Store[T]) Update(data T, err error) {
	s.mutate(func(snap *Snapshot[T]) {
		snap.Loading = false
		snap.LastUpdated = time.Now()
		if err != nil {
			var zero T
			snap.Phase = PhaseError
			snap.Data = zero
			snap.HasData = false
			snap.LastError = err
			snap.Message = api.Describe(err)
			snap.ConsecutiveFailures++
			return
		}
		snap.Phase = PhaseReady
		snap.Data = data
		snap.HasData = true
		snap.LastError = nil
		snap.Message = ""
		snap.ConsecutiveFailures = 0
	})
}

// Abort drops the outstanding-fetch mark after a fetch was discarded. The
// store falls back to Ready when it still has data, Idle otherwise.
func (s *Store[T]) Abort() {
	s.mutate(func(snap *Snapshot[T]) {
		if !snap.Loading && snap.Phase != PhaseLoading {
			return
		}
		snap.Loading = false
		if snap.Phase == PhaseLoading {
			snap.Phase = PhaseIdle
			if snap.HasData {
				snap.Phase = PhaseReady
			}
		}
	})
}

// Hold defers listener delivery until the returned release runs, so the
// store can be changed while the caller holds its own locks. Changes made
// while held are delivered once, as the snapshot current at release.
func (s *Store[T]) Hold() (release func()) {
	s.mu.Lock()
	s.held++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.held--
			if s.held > 0 || !s.pending {
				s.mu.Unlock()
				return
			}
			s.pending = false
			s.notifyUnlock()
		})
	}
}

// Reset returns the store to Idle with no data and no error.
func (s *Store[T]) Reset() {
	s.mutate(func(snap *Snapshot[T]) {
		*snap = Snapshot[T]{}
	})
}

// Snapshot returns a copy of the current snapshot.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

func (s *Store[T]) copyLocked() Snapshot[T] {
	snap := s.snapshot
	if snap.HasData && s.clone != nil {
		snap.Data = s.clone(s.snapshot.Data)
	}
	return snap
}

func (s *Store[T]) mutate(fn func(*Snapshot[T])) {
	s.mu.Lock()
	fn(&s.snapshot)
	if s.held > 0 {
		s.pending = true
		s.mu.Unlock()
		return
	}
	s.notifyUnlock()
}

// notifyUnlock copies the listeners and snapshot, releases s.mu and calls
// them.
func (s *Store[T]) notifyUnlock() {
	listeners := append([]func(Snapshot[T]){}, s.listeners...)
	var snap Snapshot[T]
	if len(listeners) > 0 {
		snap = s.copyLocked()
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// CloneSlice copies a slice so callers cannot alias stored data.
func CloneSlice[E any](items []E) []E {
	if len(items) == 0 {
		return nil
	}
	dup := make([]E, len(items))
	copy(dup, items)
	return dup
}
