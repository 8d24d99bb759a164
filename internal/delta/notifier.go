// Package delta detects increases in a tracked numeric value across
// consecutive observations.
package delta

import "sync"

// Event describes one observed increase.
type Event struct {
	Previous int64
	Current  int64
	Delta    int64
}

// Notifier compares each observation with the one immediately before it.
// The first observation only sets the baseline. Values are integer minor
// units (e.g. cents). The zero value is ready to use.
type Notifier struct {
	mu       sync.Mutex
	baseline int64
	primed   bool
}

// Observe records value and returns an event when it is greater than the
// previous observation. Decreases and repeats update the baseline silently.
func (n *Notifier) Observe(value int64) (Event, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.primed {
		n.baseline = value
		n.primed = true
		return Event{}, false
	}

	prev := n.baseline
	n.baseline = value
	if value <= prev {
		return Event{}, false
	}
	return Event{Previous: prev, Current: value, Delta: value - prev}, true
}

// Baseline returns the last observed value and whether one exists.
func (n *Notifier) Baseline() (int64, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.baseline, n.primed
}

// Reset forgets the baseline so the next observation is treated as the first.
func (n *Notifier) Reset() {
	n.mu.Lock()
	n.baseline = 0
	n.primed = false
	n.mu.Unlock()
}
