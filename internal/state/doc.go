// Package state provides thread-safe storage for the last committed snapshot
// of a polled resource.
//
// # Overview
//
// Each polling session owns one Store. Fetch results arrive on poller
// goroutines and are committed here; the UI and tests read copies through
// Snapshot. The Store is the only place a fetched value lives after commit.
//
// # Architecture
//
//	Producer (session commit):     Consumer (UI, tests):
//	┌──────────────────┐          ┌──────────────────┐
//	│ poller result    │          │                  │
//	│      ↓           │          │                  │
//	│ store.Commit()   │─────────→│ store.Snapshot() │
//	│ store.Fail()     │ (mutex)  │      ↓           │
//	│                  │          │  render          │
//	└──────────────────┘          └──────────────────┘
//
// # Update Semantics
//
//	// Success: replace the value, clear failure state
//	store.Commit(value, seq)
//	→ snapshot.Value = value
//	→ snapshot.Seq = seq
//	→ snapshot.LastError = nil
//	→ snapshot.ConsecutiveFailures = 0
//
//	// Failure: keep the old value, record the error
//	store.Fail(err)
//	→ snapshot.Value = <unchanged>
//	→ snapshot.LastError = err
//	→ snapshot.ConsecutiveFailures++
//
// A snapshot with a value and a LastError is Stale: the UI keeps drawing the
// value and marks it. Two or more consecutive failures make it Offline.
//
// # Defensive Copying
//
// NewStore takes a clone function applied on Commit and on Snapshot. Slice
// values such as conversation lists use CloneSlice. Errors are re-wrapped on
// read so errors.Is still matches while the instance is not shared. The zero
// Store skips cloning, which suits plain value types.
package state
