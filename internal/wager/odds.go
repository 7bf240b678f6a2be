package wager

import (
	"gonum.org/v1/gonum/stat"
)

// Odds summarizes a payout distribution per unit staked.
type Odds struct {
	RTP    float64 `json:"rtp" yaml:"rtp"`
	StdDev float64 `json:"stdDev" yaml:"stdDev"`
	// HitRate is the probability of getting at least the stake back.
	HitRate float64 `json:"hitRate" yaml:"hitRate"`
}

// TableOdds computes the expected multiplier and its spread over t.
func TableOdds(t Table) Odds {
	x := make([]float64, len(t))
	w := make([]float64, len(t))
	var hit float64
	for i, e := range t {
		x[i] = e.Multiplier
		w[i] = e.Weight
		if e.Multiplier >= 1 {
			hit += e.Weight
		}
	}
	mean, std := stat.PopMeanStdDev(x, w)
	return Odds{RTP: mean, StdDev: std, HitRate: hit / t.Total()}
}

// GameOdds is TableOdds for a game's distribution under choice.
func GameOdds(g Game, choice string) (Odds, error) {
	t, err := g.Table(choice)
	if err != nil {
		return Odds{}, err
	}
	return TableOdds(t), nil
}

// ChoiceOdds returns odds for every declared choice of g, keyed by choice.
// Games without declared choices are keyed by "".
func ChoiceOdds(g Game) map[string]Odds {
	choices := g.Spec().Choices
	if len(choices) == 0 {
		choices = []string{""}
	}
	out := make(map[string]Odds, len(choices))
	for _, c := range choices {
		if o, err := GameOdds(g, c); err == nil {
			out[c] = o
		}
	}
	return out
}
