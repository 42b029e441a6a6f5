// Package router models the addressable location the catalog and chat
// screens are bound to.
package router

import (
	"net/url"
	"slices"
	"strings"
	"sync"
)

// Location is the current path and query string. Search keeps its leading
// "?" when non-empty.
type Location struct {
	Pathname string
	Search   string
}

// NavigateOptions controls how Navigate records history.
type NavigateOptions struct {
	// Replace overwrites the current entry instead of pushing a new one.
	Replace bool
}

// Router is the sole source of truth for URL-bound state and the sole sink
// for shareable state changes.
type Router interface {
	Location() Location
	Navigate(path string, opts NavigateOptions)
	Subscribe(fn func(Location)) (unsubscribe func())
}

// Parse splits a path such as "/catalog?page=2" into a Location.
func Parse(path string) Location {
	trimmed := strings.TrimSpace(path)
	if i := strings.IndexByte(trimmed, '#'); i >= 0 {
		trimmed = trimmed[:i]
	}
	loc := Location{Pathname: trimmed}
	if i := strings.IndexByte(trimmed, '?'); i >= 0 {
		loc.Pathname = trimmed[:i]
		if rest := trimmed[i+1:]; rest != "" {
			loc.Search = "?" + rest
		}
	}
	if loc.Pathname == "" {
		loc.Pathname = "/"
	}
	return loc
}

// String renders the location as a navigable path.
func (l Location) String() string {
	path := l.Pathname
	if path == "" {
		path = "/"
	}
	return path + l.Search
}

// Query parses the search string.
func (l Location) Query() url.Values {
	values, _ := url.ParseQuery(strings.TrimPrefix(l.Search, "?"))
	return values
}

// Param returns the trimmed value of a query parameter.
func (l Location) Param(name string) string {
	return strings.TrimSpace(l.Query().Get(name))
}

// WithoutParam returns the path with one query parameter removed, keeping
// the order of the remaining pairs.
func (l Location) WithoutParam(name string) string {
	raw := strings.TrimPrefix(l.Search, "?")
	if raw == "" {
		return l.String()
	}
	kept := make([]string, 0, 8)
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key := pair
		if i := strings.IndexByte(pair, '='); i >= 0 {
			key = pair[:i]
		}
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if key == name {
			continue
		}
		kept = append(kept, pair)
	}
	next := Location{Pathname: l.Pathname}
	if len(kept) > 0 {
		next.Search = "?" + strings.Join(kept, "&")
	}
	return next.String()
}

// Memory is an in-process Router with a history stack.
type Memory struct {
	mu        sync.Mutex
	history   []Location
	index     int
	listeners map[int]func(Location)
	nextID    int
}

// NewMemory starts a history at initial.
func NewMemory(initial string) *Memory {
	return &Memory{
		history:   []Location{Parse(initial)},
		listeners: make(map[int]func(Location)),
	}
}

// Location returns the current entry.
func (m *Memory) Location() Location {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history[m.index]
}

// Navigate pushes or replaces the current entry and notifies subscribers
// when the location changed.
func (m *Memory) Navigate(path string, opts NavigateOptions) {
	next := Parse(path)

	m.mu.Lock()
	current := m.history[m.index]
	if opts.Replace {
		m.history[m.index] = next
	} else {
		m.history = append(m.history[:m.index+1], next)
		m.index++
	}
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	if next == current {
		return
	}
	for _, fn := range listeners {
		fn(next)
	}
}

// Back moves one entry back in history. It reports false at the start.
func (m *Memory) Back() bool {
	m.mu.Lock()
	if m.index == 0 {
		m.mu.Unlock()
		return false
	}
	m.index--
	loc := m.history[m.index]
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(loc)
	}
	return true
}

// History returns a copy of the entries up to and including the current one.
func (m *Memory) History() []Location {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Location, m.index+1)
	copy(out, m.history[:m.index+1])
	return out
}

// Subscribe registers fn for location changes.
func (m *Memory) Subscribe(fn func(Location)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Memory) snapshotListeners() []func(Location) {
	ids := make([]int, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]func(Location), 0, len(ids))
	for _, id := range ids {
		out = append(out, m.listeners[id])
	}
	return out
}
