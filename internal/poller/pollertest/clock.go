// Package pollertest provides a manually driven clock for timer tests.
package pollertest

import (
	"sync"
	"time"

	"github.com/five82/courier/internal/poller"
)

// Clock is a poller.Clock whose tickers fire only when Tick is called.
type Clock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*Ticker
}

// NewClock returns a Clock set to now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NewTicker implements poller.Clock.
func (c *Clock) NewTicker(d time.Duration) poller.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &Ticker{ch: make(chan time.Time, 1), period: d}
	c.tickers = append(c.tickers, t)
	return t
}

// Tick advances the clock by one period of the active tickers and fires each
// of them once. A ticker whose buffered tick has not been consumed drops the
// new one, like time.Ticker.
func (c *Clock) Tick() {
	c.mu.Lock()
	active := c.activeLocked()
	if len(active) > 0 {
		c.now = c.now.Add(active[0].period)
	}
	now := c.now
	c.mu.Unlock()

	for _, t := range active {
		select {
		case t.ch <- now:
		default:
		}
	}
}

// Active returns the number of tickers created and not yet stopped.
func (c *Clock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.activeLocked())
}

// Created returns the number of tickers ever created.
func (c *Clock) Created() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

func (c *Clock) activeLocked() []*Ticker {
	var out []*Ticker
	for _, t := range c.tickers {
		if !t.Stopped() {
			out = append(out, t)
		}
	}
	return out
}

// Ticker is a fake poller.Ticker.
type Ticker struct {
	ch      chan time.Time
	period  time.Duration
	mu      sync.Mutex
	stopped bool
}

// C implements poller.Ticker.
func (t *Ticker) C() <-chan time.Time { return t.ch }

// Stop implements poller.Ticker.
func (t *Ticker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

// Stopped reports whether Stop was called.
func (t *Ticker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
