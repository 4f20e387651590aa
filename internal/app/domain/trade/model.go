// Package trade defines the ledger-style trade record. Records are
// append-only: once written they are never mutated or deleted through the
// service surface.
package trade

import (
	"encoding/json"
	"time"
)

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Valid reports whether s is one of the two permitted directions.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Trade is a single ledger entry. The id is assigned by the store in
// insertion order; CreatedAt is assigned at write time and immutable.
type Trade struct {
	ID        int64
	Type      Side
	UserID    string
	Symbol    string
	Shares    int
	Price     float64
	CreatedAt time.Time
}

// MarshalJSON serializes the creation instant as integer milliseconds
// since the Unix epoch.
func (t Trade) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        int64   `json:"id"`
		Type      Side    `json:"type"`
		UserID    string  `json:"user_id"`
		Symbol    string  `json:"symbol"`
		Shares    int     `json:"shares"`
		Price     float64 `json:"price"`
		Timestamp int64   `json:"timestamp"`
	}{
		ID:        t.ID,
		Type:      t.Type,
		UserID:    t.UserID,
		Symbol:    t.Symbol,
		Shares:    t.Shares,
		Price:     t.Price,
		Timestamp: t.CreatedAt.UnixMilli(),
	})
}

// Filter narrows a trade listing. Zero values match everything.
type Filter struct {
	Type   Side
	UserID string
}
