// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app/domain/trade"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app/domain/user"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app/storage"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/errors"
)

const uniqueViolation = pq.ErrorCode("23505")

// Store implements the storage interfaces using the provided database
// handle. The caller owns the handle's lifecycle.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.TradeStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, u.ID, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return user.User{}, errors.Conflict("account already exists")
		}
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row)
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return user.User{}, errors.NotFound("user not found")
		}
		return user.User{}, err
	}
	return u, nil
}

// --- TradeStore -------------------------------------------------------------

func (s *Store) CreateTrade(ctx context.Context, t trade.Trade) (trade.Trade, error) {
	t.CreatedAt = time.Now().UTC()

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO trades (type, user_id, symbol, shares, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, t.Type, t.UserID, t.Symbol, t.Shares, t.Price, t.CreatedAt)
	if err := row.Scan(&t.ID); err != nil {
		return trade.Trade{}, err
	}
	return t, nil
}

func (s *Store) ListTrades(ctx context.Context, filter trade.Filter) ([]trade.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, user_id, symbol, shares, price, created_at
		FROM trades
		WHERE ($1 = '' OR type = $1)
		  AND ($2 = '' OR user_id::text = $2)
		ORDER BY id
	`, string(filter.Type), filter.UserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []trade.Trade
	for rows.Next() {
		var t trade.Trade
		if err := rows.Scan(&t.ID, &t.Type, &t.UserID, &t.Symbol, &t.Shares, &t.Price, &t.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (s *Store) GetTrade(ctx context.Context, id int64) (trade.Trade, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, user_id, symbol, shares, price, created_at
		FROM trades
		WHERE id = $1
	`, id)

	var t trade.Trade
	if err := row.Scan(&t.ID, &t.Type, &t.UserID, &t.Symbol, &t.Shares, &t.Price, &t.CreatedAt); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return trade.Trade{}, errors.NotFound("trade not found")
		}
		return trade.Trade{}, err
	}
	return t, nil
}
