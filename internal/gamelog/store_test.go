package gamelog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/robalobadob/crwordle/internal/game"
	"github.com/robalobadob/crwordle/internal/sqldb"
	"github.com/robalobadob/crwordle/internal/wager"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := sqldb.OpenMemory(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db)
}

func won(id, target string, guesses int, total string) game.RoundRecord {
	return game.RoundRecord{
		RoundID:         id,
		Won:             true,
		GuessCount:      guesses,
		ScoreBase:       game.BaseScore(guesses),
		ScoreMultiplier: 1,
		ScoreTotal:      decimal.RequireFromString(total),
		TargetID:        target,
		GuessedIDs:      []string{target},
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	empty, err := s.Stats(ctx, "p1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if empty.GamesStarted != 0 || empty.BestGame != nil || empty.WinRate != 0 {
		t.Errorf("expected empty stats, got %+v", empty)
	}

	for i := 0; i < 4; i++ {
		_ = s.IncStarted(ctx, "p1")
	}
	_ = s.Record(ctx, "p1", won("r1", "knight", 2, "5"))
	_ = s.Record(ctx, "p1", won("r2", "knight", 5, "1"))
	_ = s.Record(ctx, "p1", game.RoundRecord{RoundID: "r3", GuessCount: 10, TargetID: "zap"})
	_ = s.Record(ctx, "p2", won("r4", "zap", 1, "10"))

	st, err := s.Stats(ctx, "p1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.GamesStarted != 4 || st.GamesWon != 2 || st.GamesLost != 1 {
		t.Errorf("unexpected counts %+v", st)
	}
	if st.WinRate != 67 {
		t.Errorf("expected win rate 67, got %d", st.WinRate)
	}
	if st.AverageGuesses != 3.5 {
		t.Errorf("expected 3.5 average guesses, got %v", st.AverageGuesses)
	}
	if st.BestGame == nil || *st.BestGame != 2 {
		t.Errorf("expected best game 2, got %v", st.BestGame)
	}
}

func TestRecordIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	r := won("r1", "knight", 1, "10")
	for i := 0; i < 3; i++ {
		if err := s.Record(ctx, "p1", r); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	got, _ := s.Recent(ctx, "p1", 0)
	if len(got) != 1 {
		t.Errorf("expected 1 round, got %d", len(got))
	}
	if got[0].TargetID != "knight" || !got[0].ScoreTotal.Equal(decimal.NewFromInt(10)) || len(got[0].GuessedIDs) != 1 {
		t.Errorf("round did not round-trip: %+v", got[0])
	}
}

func TestTargetWinsAndTotalScore(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_ = s.Record(ctx, "p1", won("r1", "knight", 1, "15"))
	_ = s.Record(ctx, "p1", won("r2", "knight", 3, "3.75"))
	_ = s.Record(ctx, "p1", won("r3", "zap", 2, "5"))
	_ = s.Record(ctx, "p1", game.RoundRecord{RoundID: "r4", GuessCount: 10, TargetID: "hog-rider"})

	wins, err := s.TargetWins(ctx, "p1")
	if err != nil {
		t.Fatalf("target wins: %v", err)
	}
	if wins["knight"] != 2 || wins["zap"] != 1 || wins["hog-rider"] != 0 {
		t.Errorf("unexpected target wins %v", wins)
	}

	total, err := s.TotalScore(ctx, "p1")
	if err != nil || total.String() != "23.75" {
		t.Errorf("expected total 23.75, got %s (%v)", total, err)
	}
}

func TestClaimMovesHistory(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_ = s.IncStarted(ctx, "guest")
	_ = s.Record(ctx, "guest", won("r1", "knight", 1, "10"))
	_ = s.RecordWager(ctx, "guest", decimal.NewFromInt(5), wager.Settle("coin", decimal.NewFromInt(5), 2, nil))

	if err := s.Claim(ctx, "guest", "user"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	st, _ := s.Stats(ctx, "user")
	if st.GamesStarted != 1 || st.GamesWon != 1 {
		t.Errorf("expected claimed stats, got %+v", st)
	}
	ws, _ := s.Wagers(ctx, "user", 0)
	if len(ws) != 1 || ws[0].Payout.String() != "10" {
		t.Errorf("expected claimed wager, got %+v", ws)
	}
	if st, _ := s.Stats(ctx, "guest"); st.GamesStarted != 0 {
		t.Errorf("expected guest emptied, got %+v", st)
	}
}

type fakeRecorder struct {
	mu   sync.Mutex
	got  []game.RoundRecord
	fail bool
}

func (f *fakeRecorder) Record(_ context.Context, _ string, r game.RoundRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("db down")
	}
	f.got = append(f.got, r)
	return nil
}

func TestSinkDeliversAndDrains(t *testing.T) {
	rec := &fakeRecorder{}
	sink := NewSink(rec, 8)
	var after []string
	obs := sink.For("p1", func(r game.RoundRecord) { after = append(after, r.RoundID) })
	obs.RoundFinished(won("r1", "knight", 1, "10"))
	obs.RoundFinished(won("r2", "zap", 2, "5"))
	sink.Close()

	if len(rec.got) != 2 {
		t.Errorf("expected 2 records, got %d", len(rec.got))
	}
	if len(after) != 2 || after[0] != "r1" {
		t.Errorf("expected after hooks in order, got %v", after)
	}
}

func TestSinkFailureDoesNotBlock(t *testing.T) {
	rec := &fakeRecorder{fail: true}
	sink := NewSink(rec, 1)
	obs := sink.For("p1", nil)
	for i := 0; i < 10; i++ {
		obs.RoundFinished(won("r", "knight", 1, "10"))
	}
	sink.Close()
}
