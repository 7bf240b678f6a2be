package wager

// CoinFlip is double or nothing on a fair coin, with a rare edge landing
// that pays the jackpot whatever side was called.
//
// Floats: edge check, side.
type CoinFlip struct{}

const (
	CoinHeads = "heads"
	CoinTails = "tails"

	// EdgeChance is the per-flip probability of the coin landing on its edge.
	EdgeChance     = 0.002
	EdgeMultiplier = 10
)

func (CoinFlip) Spec() Spec {
	return Spec{
		ID:          "coin",
		Name:        "Coin Flip",
		Description: "Double or nothing! 50/50 chance to double your bet.",
		Icon:        "🪙",
		Odds:        "2x Multiplier",
		Enabled:     true,
		Choices:     []string{CoinHeads, CoinTails},
	}
}

func (CoinFlip) FloatCount(Bet) int { return 2 }

func (g CoinFlip) EvaluateWithFloats(floats []float64, bet Bet) (Result, error) {
	if err := need("coin", floats, g.FloatCount(bet)); err != nil {
		return Result{}, err
	}
	if floats[0] < EdgeChance {
		return Settle("coin", bet.Amount, EdgeMultiplier, map[string]any{
			"landed": "edge",
			"called": bet.Choice,
		}), nil
	}
	side := CoinHeads
	if floats[1] >= 0.5 {
		side = CoinTails
	}
	mult := 0.0
	if side == bet.Choice {
		mult = 2
	}
	return Settle("coin", bet.Amount, mult, map[string]any{
		"landed": side,
		"called": bet.Choice,
	}), nil
}

func (CoinFlip) Table(string) (Table, error) {
	side := (1 - EdgeChance) / 2
	return Table{
		{Multiplier: EdgeMultiplier, Weight: EdgeChance},
		{Multiplier: 2, Weight: side},
		{Multiplier: 0, Weight: side},
	}, nil
}
