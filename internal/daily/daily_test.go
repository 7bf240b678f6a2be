package daily

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/robalobadob/crwordle/internal/sqldb"
)

func TestTargetIndexIsDeterministic(t *testing.T) {
	day := time.Date(2024, 3, 9, 1, 0, 0, 0, time.UTC)
	late := time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC)
	a := TargetIndex(day, "salt", 54)
	if b := TargetIndex(late, "salt", 54); a != b {
		t.Errorf("expected same index across the day, got %d and %d", a, b)
	}
	if a < 0 || a >= 54 {
		t.Errorf("index %d out of range", a)
	}
	if TargetIndex(day, "salt", 0) != 0 {
		t.Error("expected 0 for an empty catalog")
	}

	seen := map[int]bool{}
	for i := 0; i < 60; i++ {
		seen[TargetIndex(day.AddDate(0, 0, i), "salt", 54)] = true
	}
	if len(seen) < 20 {
		t.Errorf("expected indexes to vary across days, got %d distinct", len(seen))
	}
}

func TestDateKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	ts := time.Date(2024, 3, 10, 5, 0, 0, 0, loc)
	if got := DateKey(ts); got != "2024-03-09" {
		t.Errorf("expected 2024-03-09, got %s", got)
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	db, err := sqldb.OpenMemory(ctx)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	s := NewStore(db)

	date := "2024-03-09"
	if played, _ := s.AlreadyPlayed(ctx, "p1", date); played {
		t.Fatal("expected not played yet")
	}
	_ = s.InsertResult(ctx, Result{UserID: "p1", Date: date, TargetIndex: 3, Guesses: 4, ElapsedMs: 9000})
	_ = s.InsertResult(ctx, Result{UserID: "p1", Date: date, TargetIndex: 3, Guesses: 1, ElapsedMs: 10})
	_ = s.InsertResult(ctx, Result{UserID: "p2", Date: date, TargetIndex: 3, Guesses: 2, ElapsedMs: 20000})

	if played, _ := s.AlreadyPlayed(ctx, "p1", date); !played {
		t.Error("expected p1 played")
	}
	top, err := s.Leaderboard(ctx, date, 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(top) != 2 || top[0].UserID != "p2" || top[1].Guesses != 4 {
		t.Errorf("unexpected leaderboard %+v", top)
	}
}

func TestLeaderboardRanksAndNames(t *testing.T) {
	ctx := context.Background()
	db, err := sqldb.OpenMemory(ctx)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(`INSERT INTO users(id, username, password_hash, created_at) VALUES ('u1', 'ada', 'x', 'now')`); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	s := NewStore(db)
	date := "2024-03-09"
	_ = s.InsertResult(ctx, Result{UserID: "u1", Date: date, Guesses: 3, ElapsedMs: 500, Score: decimal.NewFromFloat(7.5)})
	_ = s.InsertResult(ctx, Result{UserID: "anon_x", Date: date, Guesses: 3, ElapsedMs: 900, Score: decimal.NewFromInt(7)})

	top, err := s.Leaderboard(ctx, date, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(top))
	}
	if top[0].Rank != 1 || top[0].Username != "ada" || !top[0].Score.Equal(decimal.NewFromFloat(7.5)) {
		t.Errorf("unexpected first row %+v", top[0])
	}
	if top[1].Rank != 2 || top[1].Username != "" {
		t.Errorf("unexpected second row %+v", top[1])
	}
}

func TestStreak(t *testing.T) {
	ctx := context.Background()
	db, err := sqldb.OpenMemory(ctx)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	s := NewStore(db)

	today := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	for _, d := range []int{-1, -2, -3, -5} {
		_ = s.InsertResult(ctx, Result{UserID: "p", Date: DateKey(today.AddDate(0, 0, d)), Guesses: 2})
	}
	if n, err := s.Streak(ctx, "p", today); err != nil || n != 3 {
		t.Errorf("expected streak 3 before playing today, got %d (%v)", n, err)
	}
	_ = s.InsertResult(ctx, Result{UserID: "p", Date: DateKey(today), Guesses: 2})
	if n, _ := s.Streak(ctx, "p", today); n != 4 {
		t.Errorf("expected streak 4, got %d", n)
	}
	if n, _ := s.Streak(ctx, "p", today.AddDate(0, 0, 3)); n != 0 {
		t.Errorf("expected broken streak, got %d", n)
	}
}

func TestClaimKeepsUserResult(t *testing.T) {
	ctx := context.Background()
	db, err := sqldb.OpenMemory(ctx)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	s := NewStore(db)

	_ = s.InsertResult(ctx, Result{UserID: "anon", Date: "2024-03-09", Guesses: 5})
	_ = s.InsertResult(ctx, Result{UserID: "anon", Date: "2024-03-10", Guesses: 6})
	_ = s.InsertResult(ctx, Result{UserID: "user", Date: "2024-03-10", Guesses: 1})
	if err := s.Claim(ctx, "anon", "user"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if played, _ := s.AlreadyPlayed(ctx, "anon", "2024-03-09"); played {
		t.Error("expected guest rows to be gone")
	}
	if played, _ := s.AlreadyPlayed(ctx, "user", "2024-03-09"); !played {
		t.Error("expected guest day to move to the user")
	}
	top, _ := s.Leaderboard(ctx, "2024-03-10", 10)
	if len(top) != 1 || top[0].Guesses != 1 {
		t.Errorf("expected the user's own result to win, got %+v", top)
	}
}
