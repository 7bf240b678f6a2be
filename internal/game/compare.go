// internal/game/compare.go
//
// Attribute comparison for a single guess.
//
// Each attribute kind has its own rule:
//   - exact:            categorical equality, never a direction.
//   - numeric/ordinal:  equality, else Higher when guess < target, Lower otherwise.
//   - optional ordinal: speed; absent target ranks below every real speed.
//   - optional numeric: hit speed; same cases as speed, except a guessed N/A
//                       against a present target is tagged not-applicable.
//
// Direction always points from the guess towards the target:
// Higher means "the target is higher than what you guessed".

package game

import (
	"cmp"

	"github.com/robalobadob/crwordle/internal/catalog"
)

// Direction is the hint arrow on an incorrect ordered attribute.
type Direction string

const (
	DirectionNone   Direction = ""
	DirectionHigher Direction = "higher"
	DirectionLower  Direction = "lower"
)

// Verdict is the comparison result for one attribute of one guess.
type Verdict struct {
	Value           any       `json:"value"`
	IsCorrect       bool      `json:"isCorrect"`
	Direction       Direction `json:"direction,omitempty"`
	IsNotApplicable bool      `json:"isNA"`
}

// Verdicts holds one Verdict per attribute category.
type Verdicts map[Category]Verdict

// AllCorrect reports whether every verdict is correct.
func (v Verdicts) AllCorrect() bool {
	for _, x := range v {
		if !x.IsCorrect {
			return false
		}
	}
	return true
}

// Without returns a copy with the disabled categories removed.
func (v Verdicts) Without(d DisabledSet) Verdicts {
	out := make(Verdicts, len(v))
	for c, x := range v {
		if !d.Has(c) {
			out[c] = x
		}
	}
	return out
}

// CompareExact compares categorical values.
func CompareExact(guessed, target string) Verdict {
	return Verdict{Value: guessed, IsCorrect: guessed == target}
}

// CompareNumeric compares continuous values that are always present.
func CompareNumeric[T cmp.Ordered](guessed, target T) Verdict {
	return Verdict{
		Value:     guessed,
		IsCorrect: guessed == target,
		Direction: direction(guessed, target),
	}
}

// CompareRarity compares rarity by rank.
func CompareRarity(guessed, target catalog.Rarity) Verdict {
	return Verdict{
		Value:     guessed,
		IsCorrect: guessed == target,
		Direction: direction(guessed.Rank(), target.Rank()),
	}
}

// CompareSpeed compares optional ordinal speeds.
// A guessed N/A against a real speed is incorrect but not tagged N/A.
func CompareSpeed(guessed, target catalog.Speed) Verdict {
	v := compareOptional(guessed.Rank(), target.Rank(), guessed.Present(), target.Present(), false)
	v.Value = guessed
	return v
}

// CompareHitSpeed compares optional attack intervals.
// A guessed N/A against a real interval is tagged N/A (grey cell).
func CompareHitSpeed(guessed, target catalog.Interval) Verdict {
	v := compareOptional(guessed.Seconds, target.Seconds, guessed.Valid, target.Valid, true)
	v.Value = guessed
	return v
}

// CompareEntities runs every attribute comparison of guessed against target.
func CompareEntities(guessed, target catalog.Entity) Verdicts {
	return Verdicts{
		CategoryElixir:      CompareNumeric(guessed.Elixir, target.Elixir),
		CategoryRarity:      CompareRarity(guessed.Rarity, target.Rarity),
		CategoryType:        CompareExact(guessed.Type, target.Type),
		CategoryRange:       CompareExact(guessed.Range, target.Range),
		CategorySpeed:       CompareSpeed(guessed.Speed, target.Speed),
		CategoryHitSpeed:    CompareHitSpeed(guessed.HitSpeed, target.HitSpeed),
		CategoryReleaseYear: CompareNumeric(guessed.ReleaseYear, target.ReleaseYear),
	}
}

// compareOptional handles the four absent/present cases. The caller fills Value.
func compareOptional[T cmp.Ordered](guessed, target T, guessedOK, targetOK, tagGuessedNA bool) Verdict {
	switch {
	case !guessedOK && !targetOK:
		return Verdict{IsCorrect: true}
	case !guessedOK:
		return Verdict{IsNotApplicable: tagGuessedNA}
	case !targetOK:
		// Absent target sits below every real value.
		return Verdict{Direction: DirectionLower}
	}
	return Verdict{IsCorrect: guessed == target, Direction: direction(guessed, target)}
}

func direction[T cmp.Ordered](guessed, target T) Direction {
	switch {
	case guessed == target:
		return DirectionNone
	case guessed < target:
		return DirectionHigher
	default:
		return DirectionLower
	}
}
