package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Trigger identifies what caused a fetch.
type Trigger int

const (
	// TriggerTick is a fetch fired by the interval timer.
	TriggerTick Trigger = iota
	// TriggerForced is an out-of-cycle fetch from ForceRefreshNow or FetchNow.
	TriggerForced
)

func (t Trigger) String() string {
	switch t {
	case TriggerTick:
		return "tick"
	case TriggerForced:
		return "forced"
	default:
		return "unknown"
	}
}

// FetchFunc retrieves one snapshot.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Result is the outcome of one fetch. Seq increases with every fetch issued
// by a Poller, so a consumer can tell a late result from a newer one.
type Result[T any] struct {
	Value     T
	Err       error
	Seq       uint64
	Trigger   Trigger
	FetchedAt time.Time
}

// Options configure a Poller.
type Options struct {
	Interval time.Duration
	Clock    Clock
	Logger   *zap.Logger
}

const defaultInterval = 5 * time.Second

// Poller owns a single repeating timer that re-fetches a snapshot. Timer
// ticks fetch inline on the timer goroutine; forced refreshes run on their own
// goroutine and may overlap a tick fetch. Failed fetches are delivered like
// successful ones and never stop the timer.
type Poller[T any] struct {
	ctx      context.Context
	fetch    FetchFunc[T]
	deliver  func(Result[T])
	interval time.Duration
	clock    Clock
	log      *zap.Logger

	mu       sync.Mutex
	ticker   Ticker
	done     chan struct{}
	timerGen uint64
	closed   bool
	wg       sync.WaitGroup

	seq    atomic.Uint64
	forced singleflight.Group
}

// New builds a stopped Poller. ctx bounds every fetch; deliver receives each
// result and may be called from several goroutines.
func New[T any](ctx context.Context, fetch FetchFunc[T], deliver func(Result[T]), opts Options) *Poller[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if deliver == nil {
		deliver = func(Result[T]) {}
	}
	return &Poller[T]{
		ctx:      ctx,
		fetch:    fetch,
		deliver:  deliver,
		interval: opts.Interval,
		clock:    opts.Clock,
		log:      opts.Logger,
	}
}

// Interval returns the timer period.
func (p *Poller[T]) Interval() time.Duration {
	return p.interval
}

// Start begins the interval timer with a fresh period. It is a no-op while
// the timer is already running or after Close.
func (p *Poller[T]) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.ticker != nil {
		return
	}
	p.timerGen++
	gen := p.timerGen
	ticker := p.clock.NewTicker(p.interval)
	done := make(chan struct{})
	p.ticker = ticker
	p.done = done

	p.wg.Add(1)
	go p.run(ticker, done, gen)
	p.log.Debug("timer started", zap.Duration("interval", p.interval), zap.Uint64("timer_gen", gen))
}

// Stop cancels the timer synchronously. A tick that is already buffered is
// discarded. A tick fetch in flight completes and is still delivered. Stop is
// a no-op when the timer is not running.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Poller[T]) stopLocked() {
	if p.ticker == nil {
		return
	}
	p.ticker.Stop()
	close(p.done)
	p.ticker = nil
	p.done = nil
	p.log.Debug("timer stopped", zap.Uint64("timer_gen", p.timerGen))
}

// Running reports whether the timer is active.
func (p *Poller[T]) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ticker != nil
}

// ForceRefreshNow fetches immediately without touching the timer schedule.
// Calls made while another ForceRefreshNow fetch is in flight share that
// fetch and its single delivery.
func (p *Poller[T]) ForceRefreshNow() {
	p.spawn(func() {
		leader := false
		v, _, _ := p.forced.Do("forced", func() (any, error) {
			leader = true
			return p.fetchOnce(TriggerForced), nil
		})
		if leader {
			p.deliver(v.(Result[T]))
		}
	})
}

// FetchNow always starts a new forced fetch, even while a ForceRefreshNow
// fetch is in flight. The timer schedule is untouched.
func (p *Poller[T]) FetchNow() {
	p.spawn(func() { p.runFetch(TriggerForced) })
}

func (p *Poller[T]) spawn(fn func()) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		fn()
	}()
}

// Close stops the timer, refuses further work and waits for the timer and
// forced-fetch goroutines to return.
func (p *Poller[T]) Close() {
	p.mu.Lock()
	p.closed = true
	p.stopLocked()
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Poller[T]) run(ticker Ticker, done <-chan struct{}, gen uint64) {
	defer p.wg.Done()
	for {
		select {
		case <-done:
			return
		case <-p.ctx.Done():
			return
		case <-ticker.C():
			if !p.current(gen) {
				return
			}
			p.runFetch(TriggerTick)
		}
	}
}

// current reports whether gen is still the active timer. It guards against a
// tick that was buffered before Stop and selected afterwards.
func (p *Poller[T]) current(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ticker != nil && p.timerGen == gen
}

func (p *Poller[T]) runFetch(trigger Trigger) {
	p.deliver(p.fetchOnce(trigger))
}

func (p *Poller[T]) fetchOnce(trigger Trigger) Result[T] {
	seq := p.seq.Add(1)
	value, err := p.fetch(p.ctx)
	if err != nil {
		p.log.Warn("poll failed",
			zap.Stringer("trigger", trigger),
			zap.Uint64("seq", seq),
			zap.Error(err))
	}
	return Result[T]{
		Value:     value,
		Err:       err,
		Seq:       seq,
		Trigger:   trigger,
		FetchedAt: p.clock.Now(),
	}
}
