// Package lifecycle decides when a poller may run based on view focus and
// application foreground state.
package lifecycle

import (
	"sync"

	"go.uber.org/zap"
)

// Target is the timer a Gate governs.
type Target interface {
	Start()
	Stop()
	// FetchNow starts a fetch of its own; it must not join one in flight.
	FetchNow()
}

// State is the pair of inputs a Gate combines.
type State struct {
	Focused    bool
	Foreground bool
}

// Open reports whether polling is allowed in s.
func (s State) Open() bool {
	return s.Focused && s.Foreground
}

// DefaultState is an unfocused view in a foreground app.
var DefaultState = State{Focused: false, Foreground: true}

// Gate opens its Target only while the view is focused and the app is in the
// foreground. Closing stops the timer before the call returns. Opening
// fetches once immediately and then restarts the timer from zero, so a
// failing fetch never keeps the timer from running.
type Gate struct {
	mu     sync.Mutex
	target Target
	state  State
	open   bool
	log    *zap.Logger
}

// New returns a Gate in the given state. When both inputs are already true
// the Target is opened at once.
func New(target Target, initial State, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gate{target: target, state: initial, log: logger}
	g.mu.Lock()
	g.applyLocked()
	g.mu.Unlock()
	return g
}

// SetFocused records view focus and returns whether the gate is open
// afterwards. Setting the current value does nothing.
func (g *Gate) SetFocused(focused bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state.Focused = focused
	g.applyLocked()
	return g.open
}

// SetForeground records app foreground state and returns whether the gate is
// open afterwards. Setting the current value does nothing.
func (g *Gate) SetForeground(foreground bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state.Foreground = foreground
	g.applyLocked()
	return g.open
}

// Open reports the current decision.
func (g *Gate) Open() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

// State returns the current inputs.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Close stops the target regardless of the inputs. The inputs are kept.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open {
		g.open = false
		g.target.Stop()
		g.log.Debug("gate closed", zap.Bool("focused", g.state.Focused), zap.Bool("foreground", g.state.Foreground))
	}
}

func (g *Gate) applyLocked() {
	want := g.state.Open()
	if want == g.open {
		return
	}
	g.open = want
	if want {
		g.target.FetchNow()
		g.target.Start()
		g.log.Debug("gate opened")
		return
	}
	g.target.Stop()
	g.log.Debug("gate closed", zap.Bool("focused", g.state.Focused), zap.Bool("foreground", g.state.Foreground))
}
