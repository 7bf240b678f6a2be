// internal/game/types.go
//
// Core type definitions for the guessing game.
// Defines:
//   - Outcome:       round state (playing / won / lost).
//   - GuessResult:   verdicts returned for one accepted guess.
//   - Snapshot:      read-only view of a session.
//   - RoundRecord:   the completion record handed to a RoundObserver.
//   - RoundObserver: optional collaborator notified when a round ends.

package game

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/robalobadob/crwordle/internal/catalog"
)

// MaxGuesses is the guess budget per round.
const MaxGuesses = 10

// Outcome is the round state.
type Outcome string

const (
	InProgress Outcome = "playing"
	Won        Outcome = "won"
	Lost       Outcome = "lost"
)

// Terminal reports whether no further guesses are accepted.
func (o Outcome) Terminal() bool { return o == Won || o == Lost }

var (
	ErrRoundOver       = errors.New("round finished")
	ErrDuplicateGuess  = errors.New("card already guessed")
	ErrUnknownEntity   = errors.New("unknown card")
	ErrRoundInProgress = errors.New("round in progress")
	ErrGuessesMade     = errors.New("categories locked after first guess")
	ErrUnknownCategory = errors.New("unknown category")
	ErrTooManyDisabled = errors.New("at least 2 categories must stay enabled")
)

// GuessResult is returned for every accepted guess.
type GuessResult struct {
	Card       catalog.Entity `json:"card"`
	Verdicts   Verdicts       `json:"attributes"`
	Outcome    Outcome        `json:"state"`
	GuessCount int            `json:"guessCount"`
}

// IsWin reports whether this guess won the round.
func (r GuessResult) IsWin() bool { return r.Outcome == Won }

// Visible drops the verdicts for hidden categories.
func (r GuessResult) Visible(d DisabledSet) GuessResult {
	r.Verdicts = r.Verdicts.Without(d)
	return r
}

// Snapshot is a read-only view of a session. Target is set only once the
// round is won.
type Snapshot struct {
	ID         string           `json:"gameId"`
	GuessCount int              `json:"guessCount"`
	MaxGuesses int              `json:"maxGuesses"`
	Guesses    []catalog.Entity `json:"guessedCards"`
	Outcome    Outcome          `json:"state"`
	Disabled   []string         `json:"disabledCategories"`
	Target     *catalog.Entity  `json:"targetCard,omitempty"`
}

// RoundRecord describes a finished round.
type RoundRecord struct {
	RoundID            string          `json:"roundId"`
	Won                bool            `json:"won"`
	GuessCount         int             `json:"guessCount"`
	ScoreBase          int             `json:"scoreBase"`
	ScoreMultiplier    float64         `json:"scoreMultiplier"`
	ScoreTotal         decimal.Decimal `json:"scoreTotal"`
	DisabledCategories []string        `json:"disabledCategories"`
	TargetID           string          `json:"targetId"`
	GuessedIDs         []string        `json:"guessedIds"`
}

// RoundObserver is told about each finished round exactly once.
// Implementations must not block.
type RoundObserver interface {
	RoundFinished(RoundRecord)
}

type nopObserver struct{}

func (nopObserver) RoundFinished(RoundRecord) {}

// ObserverFunc adapts a function to RoundObserver.
type ObserverFunc func(RoundRecord)

func (f ObserverFunc) RoundFinished(r RoundRecord) { f(r) }
