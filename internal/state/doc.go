// Package state provides thread-safe snapshot stores for synchronized
// resources.
//
// # Overview
//
// Each controller (catalog, chat list, chat thread, preview overlay) owns
// one Store holding the latest committed result of its resource. Writers
// are the fetch goroutines, always through a request.Envelope commit, so
// only the newest request ever writes. Readers are the UI and tests, which
// take copies via Snapshot.
//
// # Phases
//
//	Idle ──Begin──> Loading ──Update(ok)──> Ready
//	                   │                      │
//	                   └──Update(err)──> Error┘ (Begin again on refresh)
//
// Reset returns to Idle and drops data and error; pollers call it when
// disabled.
//
// # Update Semantics
//
//	// Success: data replaced, error cleared, failure counter reset
//	store.Update(page, nil)
//
//	// Failure: data cleared, error recorded with a display message
//	store.Update(zero, err)
//
// Failures clear the data rather than keep it next to the error, so the UI
// never presents a stale list as if it were current.
//
// # Concurrency Model
//
// Update/Begin/Reset take the write lock; Snapshot takes the read lock.
// Subscribers run after the lock is released.
package state
