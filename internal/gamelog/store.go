// internal/gamelog/store.go
//
// Persistent log of finished rounds and casino wagers.
// Responsibilities:
//   - Record round completions (the RoundRecord emitted by a session).
//   - Count rounds started per owner.
//   - Aggregate per-owner stats: started/won/lost, win rate, average guesses, best game.
//   - Per-target win counts for the card collection grid.
//   - Sum of won-round scores, used to seed a balance that does not exist yet.
//   - Wager history for the casino.

package gamelog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/robalobadob/crwordle/internal/game"
	"github.com/robalobadob/crwordle/internal/wager"
)

// Store is the SQLite-backed game log.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Stats is the per-owner summary shown on the stats panel.
type Stats struct {
	GamesStarted   int     `json:"gamesStarted"`
	GamesWon       int     `json:"gamesWon"`
	GamesLost      int     `json:"gamesLost"`
	WinRate        int     `json:"winRate"`        // percent of finished rounds, rounded
	AverageGuesses float64 `json:"averageGuesses"` // over won rounds, 1 decimal
	BestGame       *int    `json:"bestGame"`       // fewest guesses in a win, nil if none
}

// Round is one row of round history.
type Round struct {
	game.RoundRecord
	Owner     string `json:"owner"`
	CreatedAt string `json:"createdAt"`
}

func startedKey(owner string) string { return "started:" + owner }

// IncStarted bumps the rounds-started counter for owner.
func (s *Store) IncStarted(ctx context.Context, owner string) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO counters (name, value) VALUES (?, 1)
        ON CONFLICT(name) DO UPDATE SET value = value + 1`, startedKey(owner))
	return err
}

// Record stores a finished round. Recording the same round id twice is a no-op.
func (s *Store) Record(ctx context.Context, owner string, r game.RoundRecord) error {
	if r.RoundID == "" {
		r.RoundID = uuid.NewString()
	}
	disabled, err := json.Marshal(nonNil(r.DisabledCategories))
	if err != nil {
		return err
	}
	guessed, err := json.Marshal(nonNil(r.GuessedIDs))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO rounds
            (id, owner, won, guess_count, score_base, score_multiplier, score_total,
             disabled_categories, target_id, guessed_ids)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RoundID, owner, r.Won, r.GuessCount, r.ScoreBase, r.ScoreMultiplier,
		r.ScoreTotal.StringFixed(2), string(disabled), r.TargetID, string(guessed),
	)
	if err != nil {
		return fmt.Errorf("gamelog: record %s: %w", r.RoundID, err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Stats aggregates owner's history.
func (s *Store) Stats(ctx context.Context, owner string) (Stats, error) {
	var st Stats
	var wonGuesses sql.NullInt64
	var best sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
        SELECT
            COALESCE(SUM(CASE WHEN won=1 THEN 1 ELSE 0 END), 0),
            COALESCE(SUM(CASE WHEN won=0 THEN 1 ELSE 0 END), 0),
            SUM(CASE WHEN won=1 THEN guess_count END),
            MIN(CASE WHEN won=1 THEN guess_count END)
        FROM rounds WHERE owner=?`, owner,
	).Scan(&st.GamesWon, &st.GamesLost, &wonGuesses, &best)
	if err != nil {
		return Stats{}, err
	}

	err = s.db.QueryRowContext(ctx, `SELECT value FROM counters WHERE name=?`, startedKey(owner)).Scan(&st.GamesStarted)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Stats{}, err
	}
	// Rounds recorded without a start (older clients) still count as started.
	if done := st.GamesWon + st.GamesLost; st.GamesStarted < done {
		st.GamesStarted = done
	}

	if done := st.GamesWon + st.GamesLost; done > 0 {
		st.WinRate = int(math.Round(float64(st.GamesWon) / float64(done) * 100))
	}
	if st.GamesWon > 0 && wonGuesses.Valid {
		st.AverageGuesses = math.Round(float64(wonGuesses.Int64)/float64(st.GamesWon)*10) / 10
	}
	if best.Valid {
		b := int(best.Int64)
		st.BestGame = &b
	}
	return st, nil
}

// TargetWins counts wins per target card for owner.
func (s *Store) TargetWins(ctx context.Context, owner string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT target_id, COUNT(1) FROM rounds
        WHERE owner=? AND won=1
        GROUP BY target_id`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

// TotalScore sums the score of every won round for owner.
func (s *Store) TotalScore(ctx context.Context, owner string) (decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT score_total FROM rounds WHERE owner=? AND won=1`, owner)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()
	total := decimal.Zero
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return decimal.Zero, err
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("gamelog: bad score %q: %w", v, err)
		}
		total = total.Add(d)
	}
	return total, rows.Err()
}

// Recent returns owner's latest rounds, newest first.
func (s *Store) Recent(ctx context.Context, owner string, limit int) ([]Round, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, owner, won, guess_count, score_base, score_multiplier, score_total,
               disabled_categories, target_id, guessed_ids, created_at
        FROM rounds WHERE owner=?
        ORDER BY created_at DESC, rowid DESC
        LIMIT ?`, owner, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Round{}
	for rows.Next() {
		var r Round
		var total, disabled, guessed string
		if err := rows.Scan(&r.RoundID, &r.Owner, &r.Won, &r.GuessCount, &r.ScoreBase,
			&r.ScoreMultiplier, &total, &disabled, &r.TargetID, &guessed, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.ScoreTotal, _ = decimal.NewFromString(total)
		_ = json.Unmarshal([]byte(disabled), &r.DisabledCategories)
		_ = json.Unmarshal([]byte(guessed), &r.GuessedIDs)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Claim moves owner "from"'s history to "to" (guest signing in).
func (s *Store) Claim(ctx context.Context, from, to string) error {
	if from == "" || to == "" || from == to {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE rounds SET owner=? WHERE owner=?`, to, from); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE wagers SET owner=? WHERE owner=?`, to, from); err != nil {
		return err
	}
	var n int
	err = tx.QueryRowContext(ctx, `SELECT value FROM counters WHERE name=?`, startedKey(from)).Scan(&n)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return err
	default:
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO counters (name, value) VALUES (?, ?)
            ON CONFLICT(name) DO UPDATE SET value = value + excluded.value`, startedKey(to), n); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM counters WHERE name=?`, startedKey(from)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ---- wagers ----

// Wager is one row of casino history.
type Wager struct {
	ID         string          `json:"id"`
	Game       string          `json:"game"`
	Outcome    string          `json:"outcome"`
	Bet        decimal.Decimal `json:"bet"`
	Multiplier float64         `json:"multiplier"`
	Payout     decimal.Decimal `json:"payout"`
	Net        decimal.Decimal `json:"net"`
	CreatedAt  string          `json:"createdAt"`
}

// RecordWager stores a resolved casino round.
func (s *Store) RecordWager(ctx context.Context, owner string, bet decimal.Decimal, r wager.Result) error {
	m, _ := r.Multiplier.Float64()
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO wagers (id, owner, game, outcome, bet, multiplier, payout, net)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), owner, r.Game, r.Outcome, bet.StringFixed(2), m,
		r.Payout.StringFixed(2), r.Net.StringFixed(2),
	)
	return err
}

// Wagers returns owner's latest casino rounds, newest first.
func (s *Store) Wagers(ctx context.Context, owner string, limit int) ([]Wager, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, game, outcome, bet, multiplier, payout, net, created_at
        FROM wagers WHERE owner=?
        ORDER BY created_at DESC, rowid DESC
        LIMIT ?`, owner, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Wager{}
	for rows.Next() {
		var w Wager
		var bet, payout, net string
		if err := rows.Scan(&w.ID, &w.Game, &w.Outcome, &bet, &w.Multiplier, &payout, &net, &w.CreatedAt); err != nil {
			return nil, err
		}
		w.Bet, _ = decimal.NewFromString(bet)
		w.Payout, _ = decimal.NewFromString(payout)
		w.Net, _ = decimal.NewFromString(net)
		out = append(out, w)
	}
	return out, rows.Err()
}
