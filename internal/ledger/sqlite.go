package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SQLite stores balances in the balances table. Amounts are kept as decimal
// strings so no float rounding creeps in.
type SQLite struct{ db *sql.DB }

func NewSQLite(db *sql.DB) *SQLite { return &SQLite{db: db} }

func (l *SQLite) Balance(ctx context.Context, owner string) (decimal.Decimal, error) {
	var s string
	err := l.db.QueryRowContext(ctx, `SELECT amount FROM balances WHERE owner=?`, owner).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, ErrNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ledger: bad amount %q for %s: %w", s, owner, err)
	}
	return v, nil
}

func (l *SQLite) SetBalance(ctx context.Context, owner string, v decimal.Decimal) error {
	_, err := l.db.ExecContext(ctx, `
        INSERT INTO balances (owner, amount, updated_at) VALUES (?, ?, ?)
        ON CONFLICT(owner) DO UPDATE SET amount=excluded.amount, updated_at=excluded.updated_at`,
		owner, v.StringFixed(2), time.Now().UTC().Format(time.RFC3339))
	return err
}
