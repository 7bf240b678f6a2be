package daily

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Result is one player's won daily round.
type Result struct {
	UserID      string          `json:"userId"`
	Date        string          `json:"date"`
	TargetIndex int             `json:"targetIndex"`
	Guesses     int             `json:"guesses"`
	ElapsedMs   int             `json:"elapsedMs"`
	Score       decimal.Decimal `json:"score"`
}

// Store persists daily results in the daily_results table.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) AlreadyPlayed(ctx context.Context, owner, date string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?`, owner, date,
	).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertResult keeps the first result per owner and date; later inserts are ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, target_index, guesses, elapsed_ms, score)
        VALUES(?,?,?,?,?,?)`,
		r.UserID, r.Date, r.TargetIndex, r.Guesses, r.ElapsedMs, r.Score.StringFixed(2),
	)
	return err
}

// LBRow is one leaderboard line. Username is empty for guests.
type LBRow struct {
	Rank      int             `json:"rank"`
	UserID    string          `json:"userId"`
	Username  string          `json:"username,omitempty"`
	Guesses   int             `json:"guesses"`
	ElapsedMs int             `json:"elapsedMs"`
	Score     decimal.Decimal `json:"score"`
}

// Leaderboard orders by fewest guesses, then fastest, then earliest.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.user_id, COALESCE(u.username, ''), d.guesses, d.elapsed_ms, d.score
        FROM daily_results d
        LEFT JOIN users u ON u.id = d.user_id
        WHERE d.date=?
        ORDER BY d.guesses ASC, d.elapsed_ms ASC, d.created_at ASC
        LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LBRow{}
	for rows.Next() {
		var (
			r     LBRow
			score string
		)
		if err := rows.Scan(&r.UserID, &r.Username, &r.Guesses, &r.ElapsedMs, &score); err != nil {
			return nil, err
		}
		r.Score, _ = decimal.NewFromString(score)
		r.Rank = len(out) + 1
		out = append(out, r)
	}
	return out, rows.Err()
}

// Streak counts consecutive days with a result, ending at today or, when
// today is not played yet, yesterday.
func (s *Store) Streak(ctx context.Context, owner string, today time.Time) (int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date FROM daily_results WHERE user_id=? AND date<=? ORDER BY date DESC LIMIT 366`,
		owner, DateKey(today),
	)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	want := DateKey(today)
	first := true
	streak := 0
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return 0, err
		}
		if first && d != want {
			want = DateKey(today.AddDate(0, 0, -1))
		}
		first = false
		if d != want {
			break
		}
		streak++
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			break
		}
		want = DateKey(day.AddDate(0, 0, -1))
	}
	return streak, rows.Err()
}

// Claim moves a guest's results to a user. Days the user already played keep
// the user's own result.
func (s *Store) Claim(ctx context.Context, from, to string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `UPDATE OR IGNORE daily_results SET user_id=? WHERE user_id=?`, to, from); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM daily_results WHERE user_id=?`, from); err != nil {
		return err
	}
	return tx.Commit()
}
