package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/five82/courier/internal/delta"
	"github.com/five82/courier/internal/lifecycle"
	"github.com/five82/courier/internal/poller"
	"github.com/five82/courier/internal/state"
)

// ErrClosed is returned when session state is read while unmounted.
var ErrClosed = errors.New("session closed")

// Commit is handed to OnCommit after every accepted fetch result.
type Commit[T any] struct {
	SessionID string
	Snapshot  state.Snapshot[T]
	Result    poller.Result[T]
	Delta     delta.Event
	HasDelta  bool
}

// Config describes one polled resource.
type Config[T any] struct {
	Name     string
	Interval time.Duration
	Fetch    poller.FetchFunc[T]

	// OnCommit runs synchronously for each accepted result, in commit order.
	OnCommit func(Commit[T])
	// Track, when set, feeds each successful value into a delta.Notifier.
	Track func(T) int64
	// Clone copies committed values on the way in and out of the store.
	Clone func(T) T

	Clock  poller.Clock
	Logger *zap.Logger
	// Initial is the focus and foreground state before the first Set call.
	Initial lifecycle.State
}

// Session is the view-owned bundle of gate, poller, store and notifier. It
// can be mounted and unmounted repeatedly; every mount starts from an empty
// store and a fresh baseline.
type Session[T any] struct {
	cfg Config[T]
	log *zap.Logger

	// commitMu serialises commits and OnCommit calls. It is taken before mu.
	commitMu sync.Mutex

	mu         sync.Mutex
	flags      lifecycle.State
	mounted    bool
	generation uint64
	lastSeq    uint64 // newest committed result of either kind
	lastGood   uint64 // newest committed success
	id         string
	cancel     context.CancelFunc
	poller     *poller.Poller[T]
	gate       *lifecycle.Gate
	store      *state.Store[T]
	notifier   *delta.Notifier

	retired sync.WaitGroup
}

// New returns an unmounted Session.
func New[T any](cfg Config[T]) *Session[T] {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Name == "" {
		cfg.Name = "session"
	}
	return &Session[T]{
		cfg:   cfg,
		log:   cfg.Logger.Named(cfg.Name),
		flags: cfg.Initial,
	}
}

// Name returns the configured resource name.
func (s *Session[T]) Name() string {
	return s.cfg.Name
}

// Mount creates the session lifetime context, a fresh poller and gate, and
// applies the recorded focus and foreground flags. Mounting a mounted
// session does nothing.
func (s *Session[T]) Mount(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mounted {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s.generation++
	s.lastSeq, s.lastGood = 0, 0
	s.id = uuid.NewString()
	s.store = state.NewStore(s.cfg.Clone)
	if s.cfg.Track != nil {
		s.notifier = &delta.Notifier{}
	}

	lifetime, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	log := s.log.With(zap.String("session_id", s.id), zap.Uint64("generation", s.generation))
	s.poller = poller.New(lifetime, s.cfg.Fetch, s.deliver(s.generation), poller.Options{
		Interval: s.cfg.Interval,
		Clock:    s.cfg.Clock,
		Logger:   log.Named("poller"),
	})
	s.mounted = true
	log.Info("session mounted", zap.Duration("interval", s.poller.Interval()))
	s.gate = lifecycle.New(s.poller, s.flags, log.Named("gate"))
}

// Unmount stops the timer, cancels in-flight fetches and discards the store
// and notifier baseline. Results that arrive afterwards are dropped. It does
// not wait for fetch goroutines; Close does.
func (s *Session[T]) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.mounted {
		return
	}
	s.gate.Close()
	s.cancel()
	s.mounted = false
	s.generation++
	if s.notifier != nil {
		s.notifier.Reset()
		s.notifier = nil
	}

	p := s.poller
	s.retired.Add(1)
	go func() {
		defer s.retired.Done()
		p.Close()
	}()
	s.log.Info("session unmounted", zap.String("session_id", s.id))
	s.poller, s.gate, s.store, s.cancel = nil, nil, nil, nil
}

// Close unmounts and waits for every poller goroutine the session started.
// OnCommit must not block forever once Close is called.
func (s *Session[T]) Close() {
	s.Unmount()
	s.retired.Wait()
}

// Mounted reports whether the session is mounted.
func (s *Session[T]) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted
}

// ID returns the id of the current mount, or "" when unmounted.
func (s *Session[T]) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return ""
	}
	return s.id
}

// SetFocused records view focus. The flag persists across mounts.
func (s *Session[T]) SetFocused(focused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags.Focused = focused
	if s.mounted {
		s.gate.SetFocused(focused)
	}
}

// SetForeground records app foreground state. The flag persists across
// mounts.
func (s *Session[T]) SetForeground(foreground bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags.Foreground = foreground
	if s.mounted {
		s.gate.SetForeground(foreground)
	}
}

// Polling reports whether the gate is open.
func (s *Session[T]) Polling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted && s.gate.Open()
}

// Refresh triggers an immediate fetch without changing the timer schedule.
func (s *Session[T]) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return ErrClosed
	}
	s.poller.ForceRefreshNow()
	return nil
}

// Snapshot returns the last committed state.
func (s *Session[T]) Snapshot() (state.Snapshot[T], error) {
	s.mu.Lock()
	store := s.store
	mounted := s.mounted
	s.mu.Unlock()
	if !mounted {
		return state.Snapshot[T]{}, ErrClosed
	}
	return store.Snapshot(), nil
}

func (s *Session[T]) deliver(gen uint64) func(poller.Result[T]) {
	return func(res poller.Result[T]) {
		s.commitMu.Lock()
		defer s.commitMu.Unlock()

		s.mu.Lock()
		if !s.mounted || s.generation != gen {
			s.mu.Unlock()
			s.log.Debug("dropping result from unmounted session",
				zap.Uint64("generation", gen), zap.Uint64("seq", res.Seq))
			return
		}
		// Successes are ordered against successes only; failures against everything.
		committed := s.lastSeq
		if res.Err == nil {
			committed = s.lastGood
		}
		if res.Seq <= committed {
			s.mu.Unlock()
			s.log.Debug("dropping superseded result",
				zap.Uint64("seq", res.Seq), zap.Uint64("committed_seq", committed))
			return
		}
		s.lastSeq = max(s.lastSeq, res.Seq)
		if res.Err == nil {
			s.lastGood = res.Seq
		}
		commit := Commit[T]{SessionID: s.id, Result: res}
		if res.Err != nil {
			s.store.Fail(res.Err)
		} else {
			s.store.Commit(res.Value, res.Seq)
			if s.notifier != nil {
				commit.Delta, commit.HasDelta = s.notifier.Observe(s.cfg.Track(res.Value))
			}
		}
		commit.Snapshot = s.store.Snapshot()
		s.mu.Unlock()

		if s.cfg.OnCommit != nil {
			s.cfg.OnCommit(commit)
		}
	}
}
