// Package storage defines the persistence contracts consumed by the
// application services.
package storage

import (
	"context"

	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app/domain/trade"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app/domain/user"
)

// UserStore persists user accounts. Email uniqueness is enforced
// atomically by the store; violations surface as a Conflict service error.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
}

// TradeStore persists trade records. Ids are assigned monotonically on
// insert, so ascending id equals creation order.
type TradeStore interface {
	CreateTrade(ctx context.Context, t trade.Trade) (trade.Trade, error)
	ListTrades(ctx context.Context, filter trade.Filter) ([]trade.Trade, error)
	GetTrade(ctx context.Context, id int64) (trade.Trade, error)
}
