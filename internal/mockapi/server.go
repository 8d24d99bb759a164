// Package mockapi simulates the marketplace read endpoints for demos and
// client tests. Orders advance, wallets get credited and counterparties come
// and go as the endpoints are polled.
package mockapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/five82/courier/internal/market"
)

// Options tune the simulation. Zero values take the defaults noted.
type Options struct {
	// StageEvery advances an order one stage per this many status requests (3).
	StageEvery int
	// CreditEvery credits a wallet once per this many requests (4).
	CreditEvery int
	// Credit is the amount added per credit in minor units (150000).
	Credit market.Amount
	// OpeningBalance is a wallet's first balance in minor units (500000).
	OpeningBalance market.Amount
	// FailEvery answers every Nth request with 503; 0 disables failures.
	FailEvery int
	// Token, when set, is required as a bearer token.
	Token string

	Now    func() time.Time
	Logger *zap.Logger
}

// Server holds the simulated state.
type Server struct {
	opts Options
	log  *zap.Logger

	mu       sync.Mutex
	requests int
	orders   map[string]*order
	wallets  map[string]*wallet
	chats    map[string]*chatState
}

type order struct {
	polls int
	stage int
	rider string
}

type wallet struct {
	polls   int
	balance market.Amount
}

type chatState struct {
	polls int
	convs []market.Conversation
}

// New returns a Server with opts applied.
func New(opts Options) *Server {
	if opts.StageEvery <= 0 {
		opts.StageEvery = 3
	}
	if opts.CreditEvery <= 0 {
		opts.CreditEvery = 4
	}
	if opts.Credit == 0 {
		opts.Credit = 150000
	}
	if opts.OpeningBalance == 0 {
		opts.OpeningBalance = 500000
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Server{
		opts:    opts,
		log:     opts.Logger,
		orders:  make(map[string]*order),
		wallets: make(map[string]*wallet),
		chats:   make(map[string]*chatState),
	}
}

// Handler returns the router serving the API.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.requestLog, s.auth, s.outage)
	api.HandleFunc("/orders/{id}/status", s.orderStatus).Methods(http.MethodGet)
	api.HandleFunc("/riders/{id}/wallet", s.riderWallet).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/conversations", s.conversations).Methods(http.MethodGet)
	return r
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		s.log.Debug("request", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.String("request_id", reqID))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Token != "" {
			got := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
			if got != s.opts.Token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) outage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests++
		fail := s.opts.FailEvery > 0 && s.requests%s.opts.FailEvery == 0
		s.mu.Unlock()
		if fail {
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

var riders = []string{"Chidi Okafor", "Amaka Eze", "Tunde Bakare"}

func (s *Server) orderStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	o, ok := s.orders[id]
	if !ok {
		o = &order{rider: riders[len(s.orders)%len(riders)]}
		s.orders[id] = o
	}
	o.polls++
	if o.polls%s.opts.StageEvery == 0 && o.stage < 4 {
		o.stage++
	}
	snap := market.OrderSnapshot{
		OrderID:       id,
		OrderAccepted: o.stage >= 1,
		ItemPicked:    o.stage >= 2,
		RiderEnRoute:  o.stage >= 3,
		Completed:     o.stage >= 4,
		UpdatedAt:     market.NewTimestamp(s.opts.Now()),
	}
	if o.stage >= 2 {
		snap.RiderName = o.rider
	}
	s.mu.Unlock()

	writeJSON(w, snap)
}

func (s *Server) riderWallet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	wl, ok := s.wallets[id]
	if !ok {
		wl = &wallet{balance: s.opts.OpeningBalance}
		s.wallets[id] = wl
	}
	wl.polls++
	if wl.polls%s.opts.CreditEvery == 0 {
		wl.balance += s.opts.Credit
	}
	snap := market.WalletSnapshot{RiderID: id, Balance: wl.balance, Currency: "NGN"}
	s.mu.Unlock()

	writeJSON(w, snap)
}

func (s *Server) conversations(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	cs, ok := s.chats[id]
	if !ok {
		cs = &chatState{convs: seedConversations(s.opts.Now())}
		s.chats[id] = cs
	}
	cs.polls++
	now := s.opts.Now()
	// Presence of the first counterparty flips on every poll; every third
	// poll the second counterparty sends a message.
	if len(cs.convs) > 0 {
		cs.convs[0].Online = !cs.convs[0].Online
	}
	if len(cs.convs) > 1 && cs.polls%3 == 0 {
		c := &cs.convs[1]
		c.Messages = append(c.Messages, market.Message{
			ID:     uuid.NewString(),
			Text:   fmt.Sprintf("Update %d: still on schedule", cs.polls/3),
			SentAt: market.NewTimestamp(now),
		})
		c.Unread++
	}
	body := struct {
		Conversations market.ConversationList `json:"conversations"`
	}{Conversations: market.ConversationList(cs.convs).Clone()}
	s.mu.Unlock()

	writeJSON(w, body)
}

func seedConversations(now time.Time) []market.Conversation {
	at := func(d time.Duration) market.Timestamp { return market.NewTimestamp(now.Add(-d)) }
	return []market.Conversation{
		{
			ID:           "conv-1",
			OrderID:      "ORD-1042",
			Counterparty: market.Counterparty{ID: "rider-7", DisplayName: "Chidi Okafor", Role: "rider"},
			CreatedAt:    at(2 * time.Hour),
			Messages: []market.Message{
				{ID: "m-1", Text: "Picked up your order", SentAt: at(20 * time.Minute)},
				{ID: "m-2", Text: "Thank you!", SentAt: at(18 * time.Minute), FromMe: true},
			},
			Online: true,
		},
		{
			ID:           "conv-2",
			OrderID:      "ORD-1042",
			Counterparty: market.Counterparty{ID: "seller-3", DisplayName: "Mama Put Kitchen", Role: "seller"},
			CreatedAt:    at(3 * time.Hour),
			Messages: []market.Message{
				{ID: "m-3", Text: "Your jollof is ready", SentAt: at(45 * time.Minute)},
			},
		},
		{
			ID:           "conv-3",
			Counterparty: market.Counterparty{ID: "support", DisplayName: "Support", Role: "support"},
			CreatedAt:    at(5 * time.Minute),
		},
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
	}
}
