package sqldb

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := OpenMemory(ctx)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var before int
	if err := db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&before); err != nil {
		t.Fatalf("count: %v", err)
	}
	if before == 0 {
		t.Fatal("expected embedded migrations to be recorded")
	}

	extra := fstest.MapFS{
		"900_extra.sql": {Data: []byte(`CREATE TABLE extra (id INTEGER PRIMARY KEY);`)},
	}
	for i := 0; i < 2; i++ {
		if err := Migrate(ctx, db, extra); err != nil {
			t.Fatalf("migrate pass %d: %v", i, err)
		}
	}
	var after int
	if err := db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&after); err != nil {
		t.Fatalf("count: %v", err)
	}
	if after != before+1 {
		t.Errorf("expected %d migrations, got %d", before+1, after)
	}

	for _, table := range []string{"users", "balances", "rounds", "counters", "daily_results", "wagers", "extra"} {
		var n int
		if err := db.QueryRow(`SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&n); err != nil || n != 1 {
			t.Errorf("table %s missing (%v)", table, err)
		}
	}
}

func TestMigrateRollsBackBrokenScript(t *testing.T) {
	ctx := context.Background()
	db, err := OpenMemory(ctx)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	bad := fstest.MapFS{"901_bad.sql": {Data: []byte(`CREATE TABLE ok (id INTEGER); CREATE TABLE;`)}}
	if err := Migrate(ctx, db, bad); err == nil {
		t.Fatal("expected broken migration to fail")
	}
	var n int
	_ = db.QueryRow(`SELECT COUNT(1) FROM _migrations WHERE name='901_bad.sql'`).Scan(&n)
	if n != 0 {
		t.Error("broken migration recorded as applied")
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		t.Errorf("ping: %v", err)
	}
}
