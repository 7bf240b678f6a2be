// internal/wager/game.go
//
// Shared shape of the casino games.
//
// Every game is a pure function of pre-drawn uniform floats:
//
//	FloatCount(bet)              how many floats one round consumes
//	EvaluateWithFloats(fs, bet)  deterministic outcome for those floats
//
// Play draws exactly FloatCount floats once and evaluates them, so a round's
// outcome is fixed before any presentation timeline starts. Bet validation
// happens before the draw; a rejected bet consumes no randomness.

package wager

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/shopspring/decimal"
)

var (
	ErrBetTooSmall         = errors.New("bet below minimum")
	ErrInsufficientBalance = errors.New("bet exceeds balance")
	ErrUnknownChoice       = errors.New("unknown choice")
	ErrUnknownGame         = errors.New("unknown game")
	ErrNotEnoughFloats     = errors.New("not enough floats")
)

// MinBet is the smallest accepted stake.
var MinBet = decimal.NewFromInt(1)

// Spec is the manifest a game advertises to the lobby.
type Spec struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Odds        string   `json:"odds"`
	Enabled     bool     `json:"enabled"`
	Choices     []string `json:"choices,omitempty"`
}

// Bet is a stake plus the game-specific choice (coin side, dice band, box
// tier, crash auto cash-out). Games without a choice ignore it.
type Bet struct {
	Amount decimal.Decimal `json:"bet"`
	Choice string          `json:"choice,omitempty"`
}

// Result is a resolved round.
//
// Outcome is "win", "push" or "loss" for every game; Details carries the
// game-specific draw (cards, dice, wedge, box, crash point).
type Result struct {
	Game       string          `json:"game"`
	Outcome    string          `json:"outcome"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Payout     decimal.Decimal `json:"payout"`
	Net        decimal.Decimal `json:"net"`
	Details    map[string]any  `json:"details,omitempty"`
}

const (
	OutcomeWin  = "win"
	OutcomePush = "push"
	OutcomeLoss = "loss"
)

// Game is one casino game.
type Game interface {
	Spec() Spec
	FloatCount(bet Bet) int
	EvaluateWithFloats(floats []float64, bet Bet) (Result, error)
	// Table is the effective payout distribution for a choice.
	Table(choice string) (Table, error)
}

// Source yields uniform floats in [0,1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// DefaultSource draws from the math/rand/v2 global generator.
var DefaultSource Source = globalSource{}

// ValidateBet rejects stakes below MinBet or above balance.
func ValidateBet(amount, balance decimal.Decimal) error {
	if amount.LessThan(MinBet) {
		return ErrBetTooSmall
	}
	if amount.GreaterThan(balance) {
		return ErrInsufficientBalance
	}
	return nil
}

// ValidateChoice checks bet.Choice against the game's declared choices.
// Games with no declared choices accept anything here and parse it themselves.
func ValidateChoice(g Game, choice string) error {
	cs := g.Spec().Choices
	if len(cs) == 0 || slices.Contains(cs, choice) {
		return nil
	}
	return fmt.Errorf("%w %q for %s", ErrUnknownChoice, choice, g.Spec().ID)
}

// Play validates the choice, draws once and evaluates.
func Play(g Game, src Source, bet Bet) (Result, error) {
	if err := ValidateChoice(g, bet.Choice); err != nil {
		return Result{}, err
	}
	if src == nil {
		src = DefaultSource
	}
	n := g.FloatCount(bet)
	floats := make([]float64, n)
	for i := range floats {
		floats[i] = src.Float64()
	}
	return g.EvaluateWithFloats(floats, bet)
}

// Settle builds a Result paying bet × mult. mult 0 loses the stake, 1 is a push.
func Settle(game string, bet decimal.Decimal, mult float64, details map[string]any) Result {
	m := decimal.NewFromFloat(mult)
	payout := bet.Mul(m).Round(2)
	outcome := OutcomeWin
	switch {
	case mult == 0:
		outcome = OutcomeLoss
	case mult == 1:
		outcome = OutcomePush
	case mult < 1:
		outcome = OutcomeLoss
	}
	return Result{
		Game:       game,
		Outcome:    outcome,
		Multiplier: m,
		Payout:     payout,
		Net:        payout.Sub(bet),
		Details:    details,
	}
}

func need(game string, floats []float64, n int) error {
	if len(floats) < n {
		return fmt.Errorf("%s: %w: need %d, got %d", game, ErrNotEnoughFloats, n, len(floats))
	}
	return nil
}

// index maps u in [0,1) onto 0..n-1.
func index(u float64, n int) int {
	i := int(u * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
