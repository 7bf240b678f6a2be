package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robalobadob/crwordle/internal/catalog"
	"github.com/robalobadob/crwordle/internal/game"
)

func session(t *testing.T) *game.Session {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	s, err := game.New(cat)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	return s
}

func TestSaveGetOwner(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(0)
	s := session(t)
	_ = m.Save(ctx, s.ID(), "p1", s)

	got, err := m.Get(ctx, s.ID(), "p1")
	if err != nil || got != s {
		t.Fatalf("expected stored session, got %v (%v)", got, err)
	}
	if _, err := m.Get(ctx, s.ID(), "p2"); !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
	if _, err := m.Get(ctx, "missing", "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	_ = m.Delete(ctx, s.ID())
	if m.Len() != 0 {
		t.Errorf("expected empty store after delete, got %d", m.Len())
	}
}

func TestIdleSessionsExpire(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryStore(time.Minute)
	m.now = func() time.Time { return now }

	a, b := session(t), session(t)
	_ = m.Save(ctx, "a", "p1", a)
	_ = m.Save(ctx, "b", "p1", b)

	now = now.Add(45 * time.Second)
	if _, err := m.Get(ctx, "a", "p1"); err != nil {
		t.Fatalf("get a: %v", err)
	}
	now = now.Add(30 * time.Second)

	if n := m.Sweep(); n != 1 {
		t.Errorf("expected 1 swept, got %d", n)
	}
	if _, err := m.Get(ctx, "a", "p1"); err != nil {
		t.Errorf("expected touched session kept, got %v", err)
	}
	if _, err := m.Get(ctx, "b", "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected idle session gone, got %v", err)
	}
}
