package wager

import (
	"math"
	"testing"
)

func TestTablePickBoundaries(t *testing.T) {
	cases := []struct {
		u    float64
		want int
	}{
		{0, 0},
		{59.999 / 360, 0},
		{60.5 / 360, 1},
		{109.5 / 360, 1},
		{110.5 / 360, 2},
		{0.9999999, 5},
	}
	for _, tc := range cases {
		if got := WheelTable.Index(tc.u); got != tc.want {
			t.Errorf("Index(%v): expected %d, got %d", tc.u, tc.want, got)
		}
	}
}

func TestBuiltInTablesAreWellFormed(t *testing.T) {
	if got := WheelTable.Total(); got != 360 {
		t.Errorf("wheel: expected 360 degrees, got %v", got)
	}
	for tier, tbl := range BoxTables {
		if got := tbl.Total(); got != 100 {
			t.Errorf("%s box: expected total 100, got %v", tier, got)
		}
	}

	for _, g := range All() {
		for choice := range ChoiceOdds(g) {
			tbl, err := g.Table(choice)
			if err != nil {
				t.Fatalf("%s/%s: %v", g.Spec().ID, choice, err)
			}
			if err := tbl.Validate(); err != nil {
				t.Errorf("%s/%s: %v", g.Spec().ID, choice, err)
			}
			var sum float64
			for _, e := range tbl {
				sum += e.Weight
			}
			if math.Abs(sum-tbl.Total()) > 1e-9 {
				t.Errorf("%s/%s: weights sum %v, Total %v", g.Spec().ID, choice, sum, tbl.Total())
			}
		}
	}
}

func TestValidateRejectsBadTables(t *testing.T) {
	bad := []Table{
		nil,
		{{Multiplier: 2, Weight: 0}},
		{{Multiplier: -1, Weight: 1}},
	}
	for i, tbl := range bad {
		if err := tbl.Validate(); err == nil {
			t.Errorf("table %d: expected error", i)
		}
	}
}

func TestEveryMultiplierReachable(t *testing.T) {
	for tier, tbl := range BoxTables {
		seen := map[float64]bool{}
		for i := 0; i < 1000; i++ {
			seen[tbl.Pick((float64(i)+0.5)/1000).Multiplier] = true
		}
		for _, m := range tbl.Multipliers() {
			if !seen[m] {
				t.Errorf("%s box: multiplier %v never drawn", tier, m)
			}
		}
	}
}
