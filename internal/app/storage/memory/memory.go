// Package memory is an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app/domain/trade"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app/domain/user"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app/storage"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/errors"
)

// Store keeps users and trades in maps guarded by a single RWMutex.
type Store struct {
	mu           sync.RWMutex
	nextTradeID  int64
	users        map[string]user.User
	usersByEmail map[string]string
	trades       []trade.Trade
	tradesByID   map[int64]int
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.TradeStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextTradeID:  1,
		users:        make(map[string]user.User),
		usersByEmail: make(map[string]string),
		tradesByID:   make(map[int64]int),
	}
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[u.Email]; exists {
		return user.User{}, errors.Conflict("account already exists")
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()

	s.users[u.ID] = u
	s.usersByEmail[u.Email] = u.ID
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[email]
	if !ok {
		return user.User{}, errors.NotFound("user not found")
	}
	return s.users[id], nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, errors.NotFound("user not found")
	}
	return u, nil
}

// TradeStore implementation ---------------------------------------------------

func (s *Store) CreateTrade(_ context.Context, t trade.Trade) (trade.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.nextTradeID
	s.nextTradeID++
	t.CreatedAt = time.Now().UTC()

	s.tradesByID[t.ID] = len(s.trades)
	s.trades = append(s.trades, t)
	return t, nil
}

func (s *Store) ListTrades(_ context.Context, filter trade.Filter) ([]trade.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Insertion order is id order.
	result := make([]trade.Trade, 0, len(s.trades))
	for _, t := range s.trades {
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.UserID != "" && t.UserID != filter.UserID {
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

func (s *Store) GetTrade(_ context.Context, id int64) (trade.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.tradesByID[id]
	if !ok {
		return trade.Trade{}, errors.NotFound("trade not found")
	}
	return s.trades[idx], nil
}
