// internal/game/score.go
//
// Reward calculation for a won round.
//
// base:       by guess count (1→10, 2→5, 3→3, 4→2, ≥5→1).
// multiplier: product over disabled categories; elixir, rarity and
//             release year pay ×1.5, the rest ×1.25.
// total:      base × multiplier, rounded to 2 places.

package game

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Category identifies a toggleable attribute column.
type Category string

const (
	CategoryElixir      Category = "elixir"
	CategoryRarity      Category = "rarity"
	CategoryType        Category = "type"
	CategoryRange       Category = "range"
	CategorySpeed       Category = "speed"
	CategoryHitSpeed    Category = "hitSpeed"
	CategoryReleaseYear Category = "releaseYear"
)

// Categories lists every toggleable category in display order.
var Categories = []Category{
	CategoryElixir,
	CategoryRarity,
	CategoryType,
	CategoryRange,
	CategorySpeed,
	CategoryHitSpeed,
	CategoryReleaseYear,
}

// MinEnabled is how many categories must stay visible.
const MinEnabled = 2

func (c Category) bit() (DisabledSet, bool) {
	for i, x := range Categories {
		if x == c {
			return 1 << i, true
		}
	}
	return 0, false
}

// Factor is the multiplier a category contributes when disabled.
func (c Category) Factor() float64 {
	switch c {
	case CategoryElixir, CategoryRarity, CategoryReleaseYear:
		return 1.5
	default:
		return 1.25
	}
}

// DisabledSet is a set of hidden categories. The zero value hides nothing.
type DisabledSet uint8

// NewDisabledSet builds a set, rejecting unknown categories and sets that
// would leave fewer than MinEnabled categories visible.
func NewDisabledSet(cats ...Category) (DisabledSet, error) {
	var d DisabledSet
	for _, c := range cats {
		b, ok := c.bit()
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
		}
		d |= b
	}
	if len(Categories)-d.Len() < MinEnabled {
		return 0, ErrTooManyDisabled
	}
	return d, nil
}

// ParseCategories is NewDisabledSet over raw names.
func ParseCategories(names []string) (DisabledSet, error) {
	cats := make([]Category, len(names))
	for i, n := range names {
		cats[i] = Category(n)
	}
	return NewDisabledSet(cats...)
}

// Has reports whether c is disabled.
func (d DisabledSet) Has(c Category) bool {
	b, ok := c.bit()
	return ok && d&b != 0
}

// Len is the number of disabled categories.
func (d DisabledSet) Len() int {
	n := 0
	for _, c := range Categories {
		if d.Has(c) {
			n++
		}
	}
	return n
}

// List returns the disabled categories in display order.
func (d DisabledSet) List() []Category {
	out := make([]Category, 0, d.Len())
	for _, c := range Categories {
		if d.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Strings is List as plain strings.
func (d DisabledSet) Strings() []string {
	out := make([]string, 0, d.Len())
	for _, c := range d.List() {
		out = append(out, string(c))
	}
	return out
}

// Multiplier is the product of the disabled categories' factors.
func (d DisabledSet) Multiplier() float64 {
	m := 1.0
	for _, c := range d.List() {
		m *= c.Factor()
	}
	return m
}

// ScoreResult is the reward for a round.
type ScoreResult struct {
	Base       int             `json:"base"`
	Multiplier float64         `json:"multiplier"`
	Total      decimal.Decimal `json:"total"`
}

// BaseScore maps a winning guess count to its base points.
func BaseScore(guessCount int) int {
	switch guessCount {
	case 1:
		return 10
	case 2:
		return 5
	case 3:
		return 3
	case 4:
		return 2
	default:
		return 1
	}
}

// ComputeScore scores a win after guessCount guesses. guessCount must be in
// [1, MaxGuesses].
func ComputeScore(guessCount int, disabled DisabledSet) ScoreResult {
	if guessCount < 1 || guessCount > MaxGuesses {
		panic(fmt.Sprintf("game: guess count %d out of range [1,%d]", guessCount, MaxGuesses))
	}
	base := BaseScore(guessCount)
	mult := disabled.Multiplier()
	total := decimal.NewFromInt(int64(base)).Mul(decimal.NewFromFloat(mult)).Round(2)
	return ScoreResult{Base: base, Multiplier: mult, Total: total}
}
