package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/courier/internal/lifecycle"
	"github.com/five82/courier/internal/market"
	"github.com/five82/courier/internal/poller"
	"github.com/five82/courier/internal/stage"
)

// Order polls one order's progress flags.
type Order = Session[market.OrderSnapshot]

// Wallet polls a rider's balance and reports increases.
type Wallet = Session[market.WalletSnapshot]

// Chats polls a user's conversation list.
type Chats = Session[market.ConversationList]

// Common carries the settings shared by the three resource sessions.
type Common struct {
	Clock  poller.Clock
	Logger *zap.Logger
}

func (c Common) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Target is the order id an order session fetches. Changing it takes effect
// on the next fetch; remount the session to drop state kept for the old id.
type Target struct {
	mu sync.RWMutex
	id string
}

// NewTarget returns a Target pointing at id.
func NewTarget(id string) *Target {
	return &Target{id: id}
}

// Get returns the current order id.
func (t *Target) Get() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.id
}

// Set replaces the order id.
func (t *Target) Set(id string) {
	t.mu.Lock()
	t.id = id
	t.mu.Unlock()
}

// NewOrder returns a session for the order target names. Snapshots whose
// flags skip a prerequisite stage are logged; the derived stage is
// unaffected.
func NewOrder(f market.Fetcher, target *Target, interval time.Duration, common Common, onCommit func(Commit[market.OrderSnapshot])) *Order {
	log := common.logger().Named("order")
	return New(Config[market.OrderSnapshot]{
		Name:     "order",
		Interval: interval,
		Fetch: func(ctx context.Context) (market.OrderSnapshot, error) {
			orderID := target.Get()
			snap, err := f.FetchOrder(ctx, orderID)
			if err == nil && stage.Inconsistent(snap.Flags()) {
				log.Warn("order flags skip a stage",
					zap.String("order_id", orderID),
					zap.Stringer("stage", snap.Stage()))
			}
			return snap, err
		},
		OnCommit: onCommit,
		Clock:    common.Clock,
		Logger:   common.Logger,
		Initial:  lifecycle.DefaultState,
	})
}

// NewWallet returns a session for riderID whose commits carry a delta event
// when the balance rises.
func NewWallet(f market.Fetcher, riderID string, interval time.Duration, common Common, onCommit func(Commit[market.WalletSnapshot])) *Wallet {
	return New(Config[market.WalletSnapshot]{
		Name:     "wallet",
		Interval: interval,
		Fetch: func(ctx context.Context) (market.WalletSnapshot, error) {
			return f.FetchWallet(ctx, riderID)
		},
		OnCommit: onCommit,
		Track:    func(w market.WalletSnapshot) int64 { return int64(w.Balance) },
		Clock:    common.Clock,
		Logger:   common.Logger,
		Initial:  lifecycle.DefaultState,
	})
}

// NewChats returns a session for userID's conversation list.
func NewChats(f market.Fetcher, userID string, interval time.Duration, common Common, onCommit func(Commit[market.ConversationList])) *Chats {
	return New(Config[market.ConversationList]{
		Name:     "chats",
		Interval: interval,
		Fetch: func(ctx context.Context) (market.ConversationList, error) {
			return f.FetchConversations(ctx, userID)
		},
		OnCommit: onCommit,
		Clone:    market.ConversationList.Clone,
		Clock:    common.Clock,
		Logger:   common.Logger,
		Initial:  lifecycle.DefaultState,
	})
}
