package wager

// registry holds the lobby in display order.
var registry = []Game{
	CardDraw{},
	CoinFlip{},
	Crash{},
	DiceRoll{},
	LuckySpin{},
	MysteryBox{},
}

// All returns every registered game in lobby order.
func All() []Game {
	return append([]Game(nil), registry...)
}

// Specs returns the lobby manifests.
func Specs() []Spec {
	out := make([]Spec, len(registry))
	for i, g := range registry {
		out[i] = g.Spec()
	}
	return out
}

// Lookup finds a game by id.
func Lookup(id string) (Game, bool) {
	for _, g := range registry {
		if g.Spec().ID == id {
			return g, true
		}
	}
	return nil, false
}
