package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/courier/internal/config"
	"github.com/five82/courier/internal/market"
	"github.com/five82/courier/internal/poller"
	"github.com/five82/courier/internal/session"
	"github.com/five82/courier/internal/ui"
)

// sender is the subset of *tea.Program the sessions push commits into.
type sender interface {
	Send(msg tea.Msg)
}

// relay forwards to a program bound after the sessions exist. Messages sent
// before bind are dropped.
type relay struct {
	mu sync.RWMutex
	to sender
}

func (r *relay) bind(s sender) {
	r.mu.Lock()
	r.to = s
	r.mu.Unlock()
}

// Send implements prefs.Sender.
func (r *relay) Send(msg tea.Msg) {
	r.mu.RLock()
	to := r.to
	r.mu.RUnlock()
	if to != nil {
		to.Send(msg)
	}
}

// sessions owns the three resource sessions backing the UI screens.
type sessions struct {
	ctx    context.Context
	log    *zap.Logger
	target *session.Target
	order  *session.Order
	wallet *session.Wallet
	chats  *session.Chats
}

func newSessions(f market.Fetcher, cfg config.Config, out sender, clock poller.Clock, logger *zap.Logger) *sessions {
	common := session.Common{Clock: clock, Logger: logger}
	target := session.NewTarget(cfg.OrderID)
	return &sessions{
		log:    logger,
		target: target,
		order: session.NewOrder(f, target, cfg.OrderPoll, common, func(c session.Commit[market.OrderSnapshot]) {
			out.Send(ui.OrderMsg(c))
		}),
		wallet: session.NewWallet(f, cfg.RiderID, cfg.WalletPoll, common, func(c session.Commit[market.WalletSnapshot]) {
			out.Send(ui.WalletMsg(c))
		}),
		chats: session.NewChats(f, cfg.UserID, cfg.ChatPoll, common, func(c session.Commit[market.ConversationList]) {
			out.Send(ui.ChatsMsg(c))
		}),
	}
}

// mount mounts every session under ctx. None polls until the UI focuses it.
func (s *sessions) mount(ctx context.Context) {
	s.ctx = ctx
	s.order.Mount(ctx)
	s.wallet.Mount(ctx)
	s.chats.Mount(ctx)
}

// switchOrder points the order session at id and remounts it, so state and
// in-flight results for the previous order are discarded. It returns the new
// session id.
func (s *sessions) switchOrder(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("switch order: %w", market.ErrMissingID)
	}
	previous := s.target.Get()
	s.target.Set(id)
	s.order.Unmount()
	s.order.Mount(s.ctx)
	s.log.Info("tracking order", zap.String("order_id", id), zap.String("previous_order_id", previous))
	return s.order.ID(), nil
}

// close unmounts every session and waits for their poller goroutines.
func (s *sessions) close() {
	var wg sync.WaitGroup
	for _, c := range []interface{ Close() }{s.order, s.wallet, s.chats} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Close()
		}()
	}
	wg.Wait()
}
