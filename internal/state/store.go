package state

import (
	"fmt"
	"sync"
	"time"
)

// Snapshot represents the latest committed data for one polled resource.
type Snapshot[T any] struct {
	Value               T
	HasValue            bool
	Seq                 uint64    // fetch sequence of Value
	LastUpdated         time.Time // last attempt, successful or not
	LastSuccess         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot[T]) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Stale reports whether the displayed value predates a failed fetch.
func (s Snapshot[T]) Stale() bool {
	return s.HasValue && s.LastError != nil
}

// Store coordinates concurrent updates to the snapshot. The zero value is
// ready to use and stores values without copying.
type Store[T any] struct {
	mu       sync.RWMutex
	snapshot Snapshot[T]
	clone    func(T) T
	now      func() time.Time
}

// NewStore returns a Store that passes values through clone on the way in and
// on the way out, so callers never share mutable backing arrays.
func NewStore[T any](clone func(T) T) *Store[T] {
	return &Store[T]{clone: clone}
}

// Commit replaces the stored value and clears the failure state.
func (s *Store[T]) Commit(value T, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timeNow()
	s.snapshot.Value = s.copy(value)
	s.snapshot.HasValue = true
	s.snapshot.Seq = seq
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = now
	s.snapshot.LastSuccess = now
	s.snapshot.ConsecutiveFailures = 0
}

// Fail records err after a failed fetch. The previous value is kept for
// display.
func (s *Store[T]) Fail(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastError = err
	s.snapshot.LastUpdated = s.timeNow()
	s.snapshot.ConsecutiveFailures++
}

// Update applies the outcome of one fetch: a non-nil err is recorded with
// Fail, anything else is committed.
func (s *Store[T]) Update(value T, seq uint64, err error) {
	if err != nil {
		s.Fail(err)
		return
	}
	s.Commit(value, seq)
}

// Snapshot returns a copy of the current snapshot.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Value = s.copy(s.snapshot.Value)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func (s *Store[T]) copy(v T) T {
	if s.clone == nil {
		return v
	}
	return s.clone(v)
}

func (s *Store[T]) timeNow() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// CloneSlice copies items so the result shares no backing array with the
// input. Empty input yields nil.
func CloneSlice[E any](items []E) []E {
	if len(items) == 0 {
		return nil
	}
	dup := make([]E, len(items))
	copy(dup, items)
	return dup
}
