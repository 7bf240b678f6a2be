// internal/wager/table.go
//
// Weighted outcome tables.
//
// A Table is walked cumulatively: a draw in [0, Total) selects the first entry
// whose running weight exceeds it. Tables are tiny (≤6 entries for the built-in
// games) so a linear scan is all that is needed.

package wager

import (
	"errors"
	"fmt"
)

// Entry is one outcome band.
type Entry struct {
	Multiplier float64 `yaml:"multiplier" json:"multiplier"`
	Weight     float64 `yaml:"weight" json:"weight"`
}

// Table is an ordered list of weighted outcomes.
type Table []Entry

var errEmptyTable = errors.New("wager: empty table")

// Total is the sum of weights.
func (t Table) Total() float64 {
	var sum float64
	for _, e := range t {
		sum += e.Weight
	}
	return sum
}

// Pick maps a uniform u in [0,1) onto an entry.
func (t Table) Pick(u float64) Entry {
	return t[t.Index(u)]
}

// Index is Pick returning the entry position.
func (t Table) Index(u float64) int {
	draw := u * t.Total()
	var cum float64
	for i, e := range t {
		cum += e.Weight
		if draw < cum {
			return i
		}
	}
	// u rounding up to Total lands on the last band.
	return len(t) - 1
}

// Validate checks the table is usable: at least one entry, positive weights,
// non-negative multipliers.
func (t Table) Validate() error {
	if len(t) == 0 {
		return errEmptyTable
	}
	for i, e := range t {
		if e.Weight <= 0 {
			return fmt.Errorf("wager: entry %d has weight %v", i, e.Weight)
		}
		if e.Multiplier < 0 {
			return fmt.Errorf("wager: entry %d has multiplier %v", i, e.Multiplier)
		}
	}
	return nil
}

// Multipliers lists the distinct multipliers in table order.
func (t Table) Multipliers() []float64 {
	seen := make(map[float64]bool, len(t))
	out := make([]float64, 0, len(t))
	for _, e := range t {
		if !seen[e.Multiplier] {
			seen[e.Multiplier] = true
			out = append(out, e.Multiplier)
		}
	}
	return out
}

// mustTable panics on a malformed built-in table.
func mustTable(t Table) Table {
	if err := t.Validate(); err != nil {
		panic(err)
	}
	return t
}
