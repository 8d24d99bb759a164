package poller_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/five82/courier/internal/poller"
	"github.com/five82/courier/internal/poller/pollertest"
)

const waitFor = 2 * time.Second

type harness struct {
	clock   *pollertest.Clock
	p       *poller.Poller[int]
	results chan poller.Result[int]
	calls   atomic.Int64
}

func newHarness(t *testing.T, fetch poller.FetchFunc[int]) *harness {
	t.Helper()
	h := &harness{
		clock:   pollertest.NewClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
		results: make(chan poller.Result[int], 16),
	}
	if fetch == nil {
		fetch = func(context.Context) (int, error) {
			return int(h.calls.Load()), nil
		}
	}
	wrapped := func(ctx context.Context) (int, error) {
		h.calls.Add(1)
		return fetch(ctx)
	}
	h.p = poller.New(context.Background(), wrapped, func(r poller.Result[int]) { h.results <- r }, poller.Options{
		Interval: 5 * time.Second,
		Clock:    h.clock,
	})
	t.Cleanup(h.p.Close)
	return h
}

func (h *harness) next(t *testing.T) poller.Result[int] {
	t.Helper()
	select {
	case r := <-h.results:
		return r
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for a fetch result")
		return poller.Result[int]{}
	}
}

func (h *harness) none(t *testing.T) {
	t.Helper()
	select {
	case r := <-h.results:
		t.Fatalf("unexpected fetch result: %+v", r)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStartIsIdempotent(t *testing.T) {
	h := newHarness(t, nil)
	h.p.Start()
	h.p.Start()

	if got := h.clock.Created(); got != 1 {
		t.Fatalf("tickers created = %d, want 1", got)
	}
	h.clock.Tick()
	if r := h.next(t); r.Trigger != poller.TriggerTick {
		t.Fatalf("trigger = %v, want tick", r.Trigger)
	}
	h.none(t)
}

func TestNoFetchBeforeFirstTick(t *testing.T) {
	h := newHarness(t, nil)
	h.p.Start()
	h.none(t)
	if h.calls.Load() != 0 {
		t.Fatalf("fetch calls = %d, want 0", h.calls.Load())
	}
}

func TestStopPreventsFurtherFetches(t *testing.T) {
	h := newHarness(t, nil)
	h.p.Start()
	h.p.Stop()
	h.p.Stop()

	if h.p.Running() {
		t.Fatal("Running() = true after Stop")
	}
	if h.clock.Active() != 0 {
		t.Fatalf("active tickers = %d, want 0", h.clock.Active())
	}
	h.clock.Tick()
	h.none(t)
}

func TestRestartUsesFreshTicker(t *testing.T) {
	h := newHarness(t, nil)
	h.p.Start()
	h.p.Stop()
	h.p.Start()

	if h.clock.Created() != 2 || h.clock.Active() != 1 {
		t.Fatalf("created=%d active=%d, want 2 and 1", h.clock.Created(), h.clock.Active())
	}
	h.clock.Tick()
	h.next(t)
	h.none(t)
}

func TestForceRefreshKeepsSchedule(t *testing.T) {
	h := newHarness(t, nil)
	h.p.Start()

	h.p.ForceRefreshNow()
	if r := h.next(t); r.Trigger != poller.TriggerForced {
		t.Fatalf("trigger = %v, want forced", r.Trigger)
	}
	if h.clock.Created() != 1 || !h.p.Running() {
		t.Fatal("forced refresh disturbed the timer")
	}

	h.clock.Tick()
	if r := h.next(t); r.Trigger != poller.TriggerTick {
		t.Fatalf("trigger = %v, want tick", r.Trigger)
	}
}

func TestForceRefreshWhileStopped(t *testing.T) {
	h := newHarness(t, nil)
	h.p.ForceRefreshNow()
	h.next(t)
	if h.p.Running() {
		t.Fatal("forced refresh started the timer")
	}
}

func TestFailuresDoNotStopTimer(t *testing.T) {
	boom := errors.New("boom")
	h := newHarness(t, func(context.Context) (int, error) { return 0, boom })
	h.p.Start()

	for i := 0; i < 3; i++ {
		h.clock.Tick()
		r := h.next(t)
		if !errors.Is(r.Err, boom) {
			t.Fatalf("tick %d err = %v, want boom", i, r.Err)
		}
	}
	if !h.p.Running() {
		t.Fatal("timer stopped after failures")
	}
}

func TestSequenceIncreases(t *testing.T) {
	h := newHarness(t, nil)
	h.p.Start()

	h.clock.Tick()
	first := h.next(t)
	h.p.ForceRefreshNow()
	second := h.next(t)
	if second.Seq <= first.Seq {
		t.Fatalf("seq %d not after %d", second.Seq, first.Seq)
	}
	if second.FetchedAt.IsZero() {
		t.Fatal("FetchedAt not set")
	}
}

func TestConcurrentForcedRefreshesShareFetch(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 4)
	h := newHarness(t, func(context.Context) (int, error) {
		started <- struct{}{}
		<-release
		return 1, nil
	})

	h.p.ForceRefreshNow()
	select {
	case <-started:
	case <-time.After(waitFor):
		t.Fatal("forced fetch did not start")
	}
	h.p.ForceRefreshNow()
	h.p.ForceRefreshNow()
	time.Sleep(100 * time.Millisecond)
	close(release)

	h.next(t)
	h.p.Close()
	if got := h.calls.Load(); got != 1 {
		t.Fatalf("fetch calls = %d, want 1", got)
	}
}

func TestFetchNowDoesNotJoinForcedFetch(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 4)
	h := newHarness(t, func(context.Context) (int, error) {
		started <- struct{}{}
		<-release
		return 1, nil
	})

	h.p.ForceRefreshNow()
	h.p.FetchNow()
	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(waitFor):
			t.Fatalf("fetch %d did not start", i+1)
		}
	}
	close(release)

	h.next(t)
	h.next(t)
	if got := h.calls.Load(); got != 2 {
		t.Fatalf("fetch calls = %d, want 2", got)
	}
}

func TestCloseRefusesWork(t *testing.T) {
	h := newHarness(t, nil)
	h.p.Close()
	h.p.Start()
	h.p.ForceRefreshNow()
	h.p.FetchNow()
	if h.p.Running() {
		t.Fatal("Start after Close ran the timer")
	}
	h.none(t)
}

func TestContextBoundsFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	results := make(chan error, 1)
	p := poller.New(ctx, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}, func(r poller.Result[int]) { results <- r.Err }, poller.Options{Clock: pollertest.NewClock(time.Now())})
	defer p.Close()

	p.ForceRefreshNow()
	cancel()
	select {
	case err := <-results:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(waitFor):
		t.Fatal("fetch ignored context cancellation")
	}
}
