package wager

// LuckySpin spins a wheel whose wedges are sized in degrees.
//
// Floats: wheel position.
type LuckySpin struct{}

// WheelTable is the wheel, one entry per wedge; weights are degree widths.
var WheelTable = mustTable(Table{
	{Multiplier: 0, Weight: 60},
	{Multiplier: 1, Weight: 50},
	{Multiplier: 2, Weight: 90},
	{Multiplier: 3, Weight: 80},
	{Multiplier: 5, Weight: 50},
	{Multiplier: 10, Weight: 30},
})

func (LuckySpin) Spec() Spec {
	return Spec{
		ID:          "lucky-spin",
		Name:        "Lucky Spin",
		Description: "Spin the wheel for a chance at big multipliers!",
		Icon:        "🎡",
		Odds:        "Up to 10x",
		Enabled:     true,
	}
}

func (LuckySpin) FloatCount(Bet) int { return 1 }

func (g LuckySpin) EvaluateWithFloats(floats []float64, bet Bet) (Result, error) {
	if err := need("lucky-spin", floats, g.FloatCount(bet)); err != nil {
		return Result{}, err
	}
	i := WheelTable.Index(floats[0])
	return Settle("lucky-spin", bet.Amount, WheelTable[i].Multiplier, map[string]any{
		"wedge": i,
		"angle": floats[0] * WheelTable.Total(),
	}), nil
}

func (LuckySpin) Table(string) (Table, error) { return WheelTable, nil }
