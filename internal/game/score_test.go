package game

import (
	"errors"
	"testing"
)

func TestComputeScore(t *testing.T) {
	cases := []struct {
		guesses  int
		disabled []Category
		base     int
		mult     float64
		total    string
	}{
		{1, nil, 10, 1, "10"},
		{2, nil, 5, 1, "5"},
		{3, nil, 3, 1, "3"},
		{4, nil, 2, 1, "2"},
		{5, nil, 1, 1, "1"},
		{10, nil, 1, 1, "1"},
		{1, []Category{CategoryElixir}, 10, 1.5, "15"},
		{1, []Category{CategoryElixir, CategoryType}, 10, 1.875, "18.75"},
		{3, []Category{CategorySpeed}, 3, 1.25, "3.75"},
		{5, []Category{CategoryRarity, CategoryReleaseYear, CategoryRange}, 1, 2.8125, "2.81"},
	}
	for _, tc := range cases {
		d, err := NewDisabledSet(tc.disabled...)
		if err != nil {
			t.Fatalf("disabled %v: %v", tc.disabled, err)
		}
		got := ComputeScore(tc.guesses, d)
		if got.Base != tc.base || got.Multiplier != tc.mult || got.Total.String() != tc.total {
			t.Errorf("ComputeScore(%d, %v): expected %d/%v/%s, got %d/%v/%s",
				tc.guesses, tc.disabled, tc.base, tc.mult, tc.total,
				got.Base, got.Multiplier, got.Total.String())
		}
	}
}

func TestComputeScoreIsDeterministic(t *testing.T) {
	d, _ := NewDisabledSet(CategoryHitSpeed, CategoryElixir)
	a := ComputeScore(2, d)
	b := ComputeScore(2, d)
	if !a.Total.Equal(b.Total) || a.Multiplier != b.Multiplier {
		t.Errorf("expected identical results, got %+v and %+v", a, b)
	}
}

func TestComputeScorePanicsOutOfRange(t *testing.T) {
	for _, n := range []int{0, MaxGuesses + 1} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("expected panic for guess count %d", n)
				}
			}()
			ComputeScore(n, 0)
		}()
	}
}

func TestDisabledSetLimits(t *testing.T) {
	five := Categories[:5]
	d, err := NewDisabledSet(five...)
	if err != nil {
		t.Fatalf("five disabled should be allowed: %v", err)
	}
	if d.Len() != 5 {
		t.Errorf("expected 5 disabled, got %d", d.Len())
	}

	if _, err := NewDisabledSet(Categories[:6]...); !errors.Is(err, ErrTooManyDisabled) {
		t.Errorf("expected ErrTooManyDisabled, got %v", err)
	}
	if _, err := ParseCategories([]string{"elixir", "colour"}); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestDisabledSetListOrder(t *testing.T) {
	d, err := ParseCategories([]string{"releaseYear", "elixir", "elixir"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := d.Strings()
	if len(got) != 2 || got[0] != "elixir" || got[1] != "releaseYear" {
		t.Errorf("expected [elixir releaseYear], got %v", got)
	}
	if !d.Has(CategoryElixir) || d.Has(CategoryType) {
		t.Errorf("unexpected membership for %v", got)
	}
}
