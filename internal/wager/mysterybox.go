package wager

// MysteryBox opens one box of the chosen tier. Higher tiers trade a bigger
// chance of losing the stake for rarer large multipliers.
//
// Floats: box contents.
type MysteryBox struct{}

const (
	BoxWooden    = "wooden"
	BoxGolden    = "golden"
	BoxLegendary = "legendary"
)

// BoxTables maps each tier to its contents table.
var BoxTables = map[string]Table{
	BoxWooden: mustTable(Table{
		{Multiplier: 0.5, Weight: 20},
		{Multiplier: 1, Weight: 30},
		{Multiplier: 1.25, Weight: 30},
		{Multiplier: 1.5, Weight: 15},
		{Multiplier: 2, Weight: 5},
	}),
	BoxGolden: mustTable(Table{
		{Multiplier: 0, Weight: 15},
		{Multiplier: 1, Weight: 20},
		{Multiplier: 1.5, Weight: 30},
		{Multiplier: 2.5, Weight: 20},
		{Multiplier: 4, Weight: 10},
		{Multiplier: 6, Weight: 5},
	}),
	BoxLegendary: mustTable(Table{
		{Multiplier: 0, Weight: 45},
		{Multiplier: 2, Weight: 25},
		{Multiplier: 4, Weight: 15},
		{Multiplier: 6, Weight: 10},
		{Multiplier: 10, Weight: 5},
	}),
}

func (MysteryBox) Spec() Spec {
	return Spec{
		ID:          "mystery-box",
		Name:        "Mystery Box",
		Description: "Open boxes for random score rewards.",
		Icon:        "📦",
		Odds:        "???",
		Enabled:     true,
		Choices:     []string{BoxWooden, BoxGolden, BoxLegendary},
	}
}

func (MysteryBox) FloatCount(Bet) int { return 1 }

func (g MysteryBox) EvaluateWithFloats(floats []float64, bet Bet) (Result, error) {
	if err := need("mystery-box", floats, g.FloatCount(bet)); err != nil {
		return Result{}, err
	}
	t, err := g.Table(bet.Choice)
	if err != nil {
		return Result{}, err
	}
	e := t.Pick(floats[0])
	return Settle("mystery-box", bet.Amount, e.Multiplier, map[string]any{
		"box": bet.Choice,
	}), nil
}

func (g MysteryBox) Table(choice string) (Table, error) {
	t, ok := BoxTables[choice]
	if !ok {
		return nil, ValidateChoice(g, choice)
	}
	return t, nil
}
