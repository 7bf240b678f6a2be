package wager

// CardDraw deals one card to the player and one to the dealer; the rank
// margin decides the payout.
//
// Floats: player rank, player suit, dealer rank, dealer suit.
type CardDraw struct{}

var (
	cardValues = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}
	cardSuits  = []string{"♠", "♥", "♦", "♣"}
)

// Card is a drawn card. Rank is 2..14 (ace high).
type Card struct {
	Value string `json:"value"`
	Suit  string `json:"suit"`
	Rank  int    `json:"rank"`
}

func drawCard(rank, suit float64) Card {
	i := index(rank, len(cardValues))
	return Card{Value: cardValues[i], Suit: cardSuits[index(suit, len(cardSuits))], Rank: i + 2}
}

// CardMultiplier maps player rank minus dealer rank to a payout.
func CardMultiplier(margin int) float64 {
	switch {
	case margin >= 5:
		return 3
	case margin >= 2:
		return 2
	case margin == 1:
		return 1.5
	case margin == 0:
		return 1
	default:
		return 0
	}
}

func (CardDraw) Spec() Spec {
	return Spec{
		ID:          "card-draw",
		Name:        "Card Draw",
		Description: "Draw a card and beat the dealer's hand.",
		Icon:        "🃏",
		Odds:        "Up to 3x",
		Enabled:     true,
	}
}

func (CardDraw) FloatCount(Bet) int { return 4 }

func (g CardDraw) EvaluateWithFloats(floats []float64, bet Bet) (Result, error) {
	if err := need("card-draw", floats, g.FloatCount(bet)); err != nil {
		return Result{}, err
	}
	player := drawCard(floats[0], floats[1])
	dealer := drawCard(floats[2], floats[3])
	margin := player.Rank - dealer.Rank
	return Settle("card-draw", bet.Amount, CardMultiplier(margin), map[string]any{
		"player": player,
		"dealer": dealer,
		"margin": margin,
	}), nil
}

// Table derives the margin distribution over the 13×13 equally likely deals.
func (CardDraw) Table(string) (Table, error) {
	weights := map[float64]float64{}
	n := len(cardValues)
	for p := 0; p < n; p++ {
		for d := 0; d < n; d++ {
			weights[CardMultiplier(p-d)]++
		}
	}
	t := Table{}
	for _, m := range []float64{3, 2, 1.5, 1, 0} {
		t = append(t, Entry{Multiplier: m, Weight: weights[m]})
	}
	return t, nil
}
