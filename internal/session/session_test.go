package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/five82/courier/internal/lifecycle"
	"github.com/five82/courier/internal/poller"
	"github.com/five82/courier/internal/poller/pollertest"
)

const waitFor = 2 * time.Second

type rig struct {
	clock   *pollertest.Clock
	sess    *Session[string]
	commits chan Commit[string]
}

func newRig(t *testing.T, fetch poller.FetchFunc[string], track func(string) int64) *rig {
	t.Helper()
	r := &rig{
		clock:   pollertest.NewClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
		commits: make(chan Commit[string], 32),
	}
	r.sess = New(Config[string]{
		Name:     "test",
		Interval: 5 * time.Second,
		Fetch:    fetch,
		OnCommit: func(c Commit[string]) { r.commits <- c },
		Track:    track,
		Clock:    r.clock,
		Initial:  lifecycle.DefaultState,
	})
	t.Cleanup(r.sess.Close)
	return r
}

func (r *rig) next(t *testing.T) Commit[string] {
	t.Helper()
	select {
	case c := <-r.commits:
		return c
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for a commit")
		return Commit[string]{}
	}
}

func (r *rig) none(t *testing.T) {
	t.Helper()
	select {
	case c := <-r.commits:
		t.Fatalf("unexpected commit: %+v", c.Result)
	case <-time.After(50 * time.Millisecond):
	}
}

func constant(v string) poller.FetchFunc[string] {
	return func(context.Context) (string, error) { return v, nil }
}

func TestMountWithoutFocusDoesNotPoll(t *testing.T) {
	r := newRig(t, constant("x"), nil)
	r.sess.Mount(context.Background())
	r.none(t)
	if r.sess.Polling() {
		t.Fatal("Polling() = true before focus")
	}
	snap, err := r.sess.Snapshot()
	if err != nil || snap.HasValue {
		t.Fatalf("Snapshot() = %+v, %v; want empty, nil", snap, err)
	}
}

func TestFocusCommitsImmediateFetch(t *testing.T) {
	r := newRig(t, constant("ready"), nil)
	r.sess.Mount(context.Background())
	r.sess.SetFocused(true)

	c := r.next(t)
	if c.Result.Trigger != poller.TriggerForced || c.Snapshot.Value != "ready" {
		t.Fatalf("commit = %+v", c)
	}
	if c.SessionID == "" || c.SessionID != r.sess.ID() {
		t.Fatalf("SessionID = %q, want %q", c.SessionID, r.sess.ID())
	}
	if !r.sess.Polling() {
		t.Fatal("Polling() = false while focused in foreground")
	}

	r.clock.Tick()
	if c := r.next(t); c.Result.Trigger != poller.TriggerTick {
		t.Fatalf("trigger = %v, want tick", c.Result.Trigger)
	}
}

func TestFlagsPersistAcrossMount(t *testing.T) {
	r := newRig(t, constant("x"), nil)
	r.sess.SetFocused(true)
	r.sess.SetForeground(false)
	r.sess.Mount(context.Background())
	r.none(t)

	r.sess.SetForeground(true)
	r.next(t)
}

func TestUnmountedAccessReturnsErrClosed(t *testing.T) {
	r := newRig(t, constant("x"), nil)
	if _, err := r.sess.Snapshot(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Snapshot before mount err = %v, want ErrClosed", err)
	}
	r.sess.Mount(context.Background())
	r.sess.Unmount()
	r.sess.Unmount()

	if _, err := r.sess.Snapshot(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Snapshot err = %v, want ErrClosed", err)
	}
	if err := r.sess.Refresh(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Refresh err = %v, want ErrClosed", err)
	}
	if r.sess.ID() != "" || r.sess.Mounted() {
		t.Fatal("session still reports a mount")
	}
}

func TestResultAfterUnmountIsDropped(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	r := newRig(t, func(context.Context) (string, error) {
		started <- struct{}{}
		<-release
		return "late", nil
	}, nil)

	r.sess.Mount(context.Background())
	if err := r.sess.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	<-started
	r.sess.Unmount()
	close(release)
	r.none(t)
}

func TestSlowForcedRefreshDoesNotOverwriteNewerTick(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var calls atomic.Int64
	r := newRig(t, func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			started <- struct{}{}
			<-release
			return "forced", nil
		}
		return "tick", nil
	}, nil)

	r.sess.SetFocused(true)
	r.sess.Mount(context.Background())
	<-started // the opening forced fetch holds the oldest sequence number

	r.clock.Tick()
	if c := r.next(t); c.Snapshot.Value != "tick" {
		t.Fatalf("committed %q, want tick", c.Snapshot.Value)
	}
	close(release)
	r.none(t)

	snap, err := r.sess.Snapshot()
	if err != nil || snap.Value != "tick" {
		t.Fatalf("Snapshot() = %q, %v; want tick", snap.Value, err)
	}
}

func TestSlowSuccessReplacesNewerFailure(t *testing.T) {
	boom := errors.New("gateway timeout")
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var calls atomic.Int64
	r := newRig(t, func(context.Context) (string, error) {
		switch calls.Add(1) {
		case 1:
			return "v1", nil
		case 2:
			started <- struct{}{}
			<-release
			return "v2", nil
		default:
			return "", boom
		}
	}, nil)

	r.sess.SetFocused(true)
	r.sess.Mount(context.Background())
	if c := r.next(t); c.Snapshot.Value != "v1" {
		t.Fatalf("committed %q, want v1", c.Snapshot.Value)
	}

	if err := r.sess.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	<-started
	r.clock.Tick()
	c := r.next(t)
	if !errors.Is(c.Result.Err, boom) || c.Snapshot.Value != "v1" || !c.Snapshot.Stale() {
		t.Fatalf("tick commit = %q err=%v stale=%v, want stale v1", c.Snapshot.Value, c.Result.Err, c.Snapshot.Stale())
	}

	close(release)
	c = r.next(t)
	if c.Snapshot.Value != "v2" || c.Snapshot.Stale() {
		t.Fatalf("slow success = %q stale=%v, want fresh v2", c.Snapshot.Value, c.Snapshot.Stale())
	}
}

func TestSlowFailureDoesNotMarkNewerSuccessStale(t *testing.T) {
	boom := errors.New("gateway timeout")
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var calls atomic.Int64
	r := newRig(t, func(context.Context) (string, error) {
		if calls.Add(1) == 1 {
			started <- struct{}{}
			<-release
			return "", boom
		}
		return "tick", nil
	}, nil)

	r.sess.SetFocused(true)
	r.sess.Mount(context.Background())
	<-started

	r.clock.Tick()
	if c := r.next(t); c.Snapshot.Value != "tick" {
		t.Fatalf("committed %q, want tick", c.Snapshot.Value)
	}
	close(release)
	r.none(t)

	snap, err := r.sess.Snapshot()
	if err != nil || snap.Stale() {
		t.Fatalf("Snapshot() stale=%v err=%v; want fresh", snap.Stale(), err)
	}
}

func TestFailureRecordedAndDataKept(t *testing.T) {
	boom := errors.New("gateway timeout")
	var fail atomic.Bool
	r := newRig(t, func(context.Context) (string, error) {
		if fail.Load() {
			return "", boom
		}
		return "good", nil
	}, nil)
	r.sess.Mount(context.Background())

	_ = r.sess.Refresh()
	r.next(t)

	fail.Store(true)
	_ = r.sess.Refresh()
	c := r.next(t)
	if !errors.Is(c.Result.Err, boom) {
		t.Fatalf("Result.Err = %v, want %v", c.Result.Err, boom)
	}
	if c.Snapshot.Value != "good" || !c.Snapshot.Stale() {
		t.Fatalf("snapshot = %+v, want stale good", c.Snapshot)
	}
	_ = r.sess.Refresh()
	if c := r.next(t); !c.Snapshot.IsOffline() {
		t.Fatal("two consecutive failures should be offline")
	}
}

func TestDeltaEventsAndResetOnRemount(t *testing.T) {
	var mu sync.Mutex
	values := []string{"1000", "1000", "2500", "2500", "1800", "5000"}
	next := 0
	r := newRig(t, func(context.Context) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		v := values[next]
		next++
		return v, nil
	}, func(v string) int64 {
		switch v {
		case "1000":
			return 1000
		case "2500":
			return 2500
		case "1800":
			return 1800
		default:
			return 5000
		}
	})

	r.sess.Mount(context.Background())
	var deltas []int64
	for i := 0; i < 5; i++ {
		_ = r.sess.Refresh()
		if c := r.next(t); c.HasDelta {
			deltas = append(deltas, c.Delta.Delta)
		}
	}
	if len(deltas) != 1 || deltas[0] != 1500 {
		t.Fatalf("deltas = %v, want [1500]", deltas)
	}

	r.sess.Unmount()
	r.sess.Mount(context.Background())
	_ = r.sess.Refresh()
	if c := r.next(t); c.HasDelta {
		t.Fatalf("first observation after remount emitted %+v", c.Delta)
	}
}

func TestRemountStartsFreshStore(t *testing.T) {
	r := newRig(t, constant("x"), nil)
	r.sess.Mount(context.Background())
	first := r.sess.ID()
	_ = r.sess.Refresh()
	r.next(t)

	r.sess.Unmount()
	r.sess.Mount(context.Background())
	if r.sess.ID() == first {
		t.Fatal("remount kept the session id")
	}
	snap, err := r.sess.Snapshot()
	if err != nil || snap.HasValue {
		t.Fatalf("Snapshot() after remount = %+v, %v", snap, err)
	}
}

func TestUnmountStopsTimer(t *testing.T) {
	r := newRig(t, constant("x"), nil)
	r.sess.SetFocused(true)
	r.sess.Mount(context.Background())
	r.next(t)

	r.sess.Unmount()
	if r.clock.Active() != 0 {
		t.Fatalf("active tickers = %d after unmount", r.clock.Active())
	}
	r.clock.Tick()
	r.none(t)
}
