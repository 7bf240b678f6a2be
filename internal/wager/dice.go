package wager

import "fmt"

// DiceRoll sums two six-sided dice. The player backs one band: low (2-6),
// seven, or high (8-12).
//
// Floats: first die, second die.
type DiceRoll struct{}

const (
	DiceLow   = "low"
	DiceSeven = "seven"
	DiceHigh  = "high"
)

// DiceMultiplier is the payout for a band given the rolled sum.
func DiceMultiplier(band string, sum int) float64 {
	switch {
	case band == DiceLow && sum < 7:
		return 2
	case band == DiceSeven && sum == 7:
		return 6
	case band == DiceHigh && sum > 7:
		return 2
	default:
		return 0
	}
}

func (DiceRoll) Spec() Spec {
	return Spec{
		ID:          "dice",
		Name:        "Dice Roll",
		Description: "Guess higher or lower. Beat the house!",
		Icon:        "🎲",
		Odds:        "Up to 6x",
		Enabled:     true,
		Choices:     []string{DiceLow, DiceSeven, DiceHigh},
	}
}

func (DiceRoll) FloatCount(Bet) int { return 2 }

func (g DiceRoll) EvaluateWithFloats(floats []float64, bet Bet) (Result, error) {
	if err := need("dice", floats, g.FloatCount(bet)); err != nil {
		return Result{}, err
	}
	d1 := index(floats[0], 6) + 1
	d2 := index(floats[1], 6) + 1
	sum := d1 + d2
	return Settle("dice", bet.Amount, DiceMultiplier(bet.Choice, sum), map[string]any{
		"dice": []int{d1, d2},
		"sum":  sum,
		"band": bet.Choice,
	}), nil
}

// Table counts the 36 equally likely rolls for a band.
func (g DiceRoll) Table(choice string) (Table, error) {
	if err := ValidateChoice(g, choice); err != nil {
		return nil, err
	}
	var hit float64
	for a := 1; a <= 6; a++ {
		for b := 1; b <= 6; b++ {
			if DiceMultiplier(choice, a+b) > 0 {
				hit++
			}
		}
	}
	if hit == 0 {
		return nil, fmt.Errorf("dice: band %q never pays", choice)
	}
	return Table{
		{Multiplier: DiceMultiplier(choice, bandSum(choice)), Weight: hit},
		{Multiplier: 0, Weight: 36 - hit},
	}, nil
}

// bandSum is a representative sum inside a band.
func bandSum(band string) int {
	switch band {
	case DiceLow:
		return 2
	case DiceHigh:
		return 12
	default:
		return 7
	}
}
