// internal/ledger/ledger.go
//
// Point balances shared by the guessing game and the casino.
//
// Ledger is the storage contract (memory or SQLite). Book wraps a Ledger and
// owns the per-owner critical section: read, compute, write. Every write is
// clamped to ≥0 and rounded to 2 places.

package ledger

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by a Ledger for an owner with no balance row.
var ErrNotFound = errors.New("ledger: no balance")

// Ledger stores one balance per owner.
type Ledger interface {
	Balance(ctx context.Context, owner string) (decimal.Decimal, error)
	SetBalance(ctx context.Context, owner string, v decimal.Decimal) error
}

// Normalize clamps v to ≥0 and rounds to 2 places.
func Normalize(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v.Round(2)
}

// SeedFunc supplies the opening balance for an owner with no row yet.
type SeedFunc func(ctx context.Context, owner string) (decimal.Decimal, error)

// Book serializes balance mutations per owner.
type Book struct {
	l    Ledger
	seed SeedFunc

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewBook wraps l. seed may be nil (missing balances start at 0).
func NewBook(l Ledger, seed SeedFunc) *Book {
	return &Book{l: l, seed: seed, locks: make(map[string]*sync.Mutex)}
}

func (b *Book) lock(owner string) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.locks[owner]
	if !ok {
		m = &sync.Mutex{}
		b.locks[owner] = m
	}
	return m
}

// Balance reads owner's balance. Read failures are logged and read as 0.
func (b *Book) Balance(ctx context.Context, owner string) decimal.Decimal {
	m := b.lock(owner)
	m.Lock()
	defer m.Unlock()
	return b.read(ctx, owner)
}

// read is Balance without the lock.
func (b *Book) read(ctx context.Context, owner string) decimal.Decimal {
	v, err := b.l.Balance(ctx, owner)
	if err == nil {
		return Normalize(v)
	}
	if errors.Is(err, ErrNotFound) {
		if b.seed == nil {
			return decimal.Zero
		}
		s, serr := b.seed(ctx, owner)
		if serr != nil {
			log.Warn().Err(serr).Str("owner", owner).Msg("seed balance")
			return decimal.Zero
		}
		return Normalize(s)
	}
	log.Warn().Err(err).Str("owner", owner).Msg("read balance, using 0")
	return decimal.Zero
}

// Apply runs fn on the current balance inside owner's critical section and
// stores the normalized result. If fn fails nothing is written. A failed
// write is returned; the caller decides whether that is fatal.
func (b *Book) Apply(ctx context.Context, owner string, fn func(cur decimal.Decimal) (decimal.Decimal, error)) (decimal.Decimal, error) {
	m := b.lock(owner)
	m.Lock()
	defer m.Unlock()

	cur := b.read(ctx, owner)
	next, err := fn(cur)
	if err != nil {
		return cur, err
	}
	next = Normalize(next)
	if err := b.l.SetBalance(ctx, owner, next); err != nil {
		log.Warn().Err(err).Str("owner", owner).Msg("write balance")
		return next, err
	}
	return next, nil
}

// Add applies a signed delta.
func (b *Book) Add(ctx context.Context, owner string, delta decimal.Decimal) (decimal.Decimal, error) {
	return b.Apply(ctx, owner, func(cur decimal.Decimal) (decimal.Decimal, error) {
		return cur.Add(delta), nil
	})
}

// Set overwrites the balance.
func (b *Book) Set(ctx context.Context, owner string, v decimal.Decimal) (decimal.Decimal, error) {
	return b.Apply(ctx, owner, func(decimal.Decimal) (decimal.Decimal, error) { return v, nil })
}

// Merge moves from's balance onto to (a guest claiming an account) and
// leaves from at 0. Both owners are locked in a fixed order. to always gets
// a stored row, so a later read never seeds it from rounds moved with the
// guest.
func (b *Book) Merge(ctx context.Context, from, to string) (decimal.Decimal, error) {
	if from == "" || to == "" || from == to {
		return b.Balance(ctx, to), nil
	}
	first, second := b.lock(from), b.lock(to)
	if to < from {
		first, second = second, first
	}
	first.Lock()
	defer first.Unlock()
	second.Lock()
	defer second.Unlock()

	moved, rerr := b.l.Balance(ctx, from)
	switch {
	case errors.Is(rerr, ErrNotFound):
		moved, rerr = decimal.Zero, nil
	case rerr != nil:
		log.Warn().Err(rerr).Str("owner", from).Msg("read balance for merge")
		moved = decimal.Zero
	}
	next := Normalize(b.read(ctx, to).Add(moved))
	if err := b.l.SetBalance(ctx, to, next); err != nil {
		return next, err
	}
	if rerr != nil {
		return next, rerr
	}
	if !moved.IsZero() {
		if err := b.l.SetBalance(ctx, from, decimal.Zero); err != nil {
			log.Warn().Err(err).Str("owner", from).Msg("clear merged balance")
		}
	}
	return next, nil
}

// ---- memory ----

// Memory is an in-process Ledger.
type Memory struct {
	mu sync.RWMutex
	m  map[string]decimal.Decimal
}

// NewMemory builds an empty Memory ledger.
func NewMemory() *Memory { return &Memory{m: make(map[string]decimal.Decimal)} }

func (l *Memory) Balance(_ context.Context, owner string) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.m[owner]
	if !ok {
		return decimal.Zero, ErrNotFound
	}
	return v, nil
}

func (l *Memory) SetBalance(_ context.Context, owner string, v decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.m[owner] = v
	return nil
}
