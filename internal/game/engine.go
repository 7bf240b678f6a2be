// internal/game/engine.go
//
// Guess session for a single round.
// Responsibilities:
//   - Pick a hidden target uniformly from the catalog (or a fixed one).
//   - Validate and apply guesses (known card, not yet guessed, round open).
//   - Compare each guess attribute-by-attribute against the target.
//   - Track state transitions: playing → won/lost.
//   - Score wins and notify the round observer once per round.
//
// A Session is an explicit value owned by its caller; the session store keeps
// one per game id. Methods lock internally so handlers may share a session.
package game

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"

	"github.com/robalobadob/crwordle/internal/catalog"
)

// Session is one guessing round.
type Session struct {
	mu sync.Mutex

	id       string
	cat      *catalog.Catalog
	rng      catalog.Picker
	observer RoundObserver
	fixed    string

	target   catalog.Entity
	guesses  []catalog.Entity
	guessed  map[string]bool
	disabled DisabledSet
	outcome  Outcome
}

// Option configures a Session.
type Option func(*Session)

// WithRand sets the source used to pick targets.
func WithRand(p catalog.Picker) Option { return func(s *Session) { s.rng = p } }

// WithObserver sets the round observer. nil keeps the no-op default.
func WithObserver(o RoundObserver) Option {
	return func(s *Session) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithTarget fixes the target card id for every round of this session.
func WithTarget(id string) Option { return func(s *Session) { s.fixed = id } }

// WithDisabled hides categories for the first round.
func WithDisabled(d DisabledSet) Option { return func(s *Session) { s.disabled = d } }

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// New builds a session over cat and starts its first round.
func New(cat *catalog.Catalog, opts ...Option) (*Session, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, catalog.ErrEmptyCatalog
	}
	s := &Session{cat: cat, rng: globalRand{}, observer: nopObserver{}}
	for _, o := range opts {
		o(s)
	}
	if s.fixed != "" {
		if _, ok := cat.Get(s.fixed); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, s.fixed)
		}
	}
	d := s.disabled
	s.Start()
	s.disabled = d
	return s, nil
}

// ID is the current round id.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Start begins a new round: new target, no guesses, all categories enabled.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = uuid.NewString()
	if s.fixed != "" {
		s.target, _ = s.cat.Get(s.fixed)
	} else {
		s.target = s.cat.Random(s.rng)
	}
	s.guesses = []catalog.Entity{}
	s.guessed = make(map[string]bool)
	s.disabled = 0
	s.outcome = InProgress
}

// SetDisabled changes the hidden categories. Only allowed before the first guess.
func (s *Session) SetDisabled(d DisabledSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.guesses) > 0 || s.outcome.Terminal() {
		return ErrGuessesMade
	}
	s.disabled = d
	return nil
}

// Disabled returns the hidden categories of the current round.
func (s *Session) Disabled() DisabledSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disabled
}

// Guess applies a guess by card id.
//
// Rejections leave the session untouched:
//   - ErrRoundOver when the round is won or lost.
//   - ErrUnknownEntity when id is not in the catalog.
//   - ErrDuplicateGuess when id was already guessed this round.
//
// State transitions:
//   - id == target → Won.
//   - else guess count reaches MaxGuesses → Lost.
func (s *Session) Guess(id string) (GuessResult, error) {
	res, rec, err := s.apply(id)
	if err != nil {
		return GuessResult{}, err
	}
	if rec != nil {
		s.observer.RoundFinished(*rec)
	}
	return res, nil
}

func (s *Session) apply(id string) (GuessResult, *RoundRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outcome.Terminal() {
		return GuessResult{}, nil, ErrRoundOver
	}
	card, ok := s.cat.Get(id)
	if !ok {
		return GuessResult{}, nil, fmt.Errorf("%w: %q", ErrUnknownEntity, id)
	}
	if s.guessed[id] {
		return GuessResult{}, nil, fmt.Errorf("%w: %q", ErrDuplicateGuess, id)
	}

	s.guesses = append(s.guesses, card)
	s.guessed[id] = true
	verdicts := CompareEntities(card, s.target)

	if card.ID == s.target.ID {
		s.outcome = Won
	} else if len(s.guesses) >= MaxGuesses {
		s.outcome = Lost
	}

	res := GuessResult{
		Card:       card,
		Verdicts:   verdicts,
		Outcome:    s.outcome,
		GuessCount: len(s.guesses),
	}
	if !s.outcome.Terminal() {
		return res, nil, nil
	}
	rec := s.record()
	return res, &rec, nil
}

// record builds the completion record. Caller holds mu.
func (s *Session) record() RoundRecord {
	score := s.score()
	ids := make([]string, len(s.guesses))
	for i, g := range s.guesses {
		ids[i] = g.ID
	}
	return RoundRecord{
		RoundID:            s.id,
		Won:                s.outcome == Won,
		GuessCount:         len(s.guesses),
		ScoreBase:          score.Base,
		ScoreMultiplier:    score.Multiplier,
		ScoreTotal:         score.Total,
		DisabledCategories: s.disabled.Strings(),
		TargetID:           s.target.ID,
		GuessedIDs:         ids,
	}
}

// score is the round reward; zero unless won. Caller holds mu.
func (s *Session) score() ScoreResult {
	if s.outcome != Won {
		return ScoreResult{Multiplier: s.disabled.Multiplier()}
	}
	return ComputeScore(len(s.guesses), s.disabled)
}

// Score returns the reward for the current round (zero total unless won).
func (s *Session) Score() ScoreResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score()
}

// Outcome returns the round state.
func (s *Session) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// State returns a snapshot. The target is included only after a win.
func (s *Session) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:         s.id,
		GuessCount: len(s.guesses),
		MaxGuesses: MaxGuesses,
		Guesses:    append([]catalog.Entity{}, s.guesses...),
		Outcome:    s.outcome,
		Disabled:   s.disabled.Strings(),
	}
	if s.outcome == Won {
		t := s.target
		snap.Target = &t
	}
	return snap
}

// Reveal discloses the target once the round is over (won or lost).
func (s *Session) Reveal() (catalog.Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.outcome.Terminal() {
		return catalog.Entity{}, ErrRoundInProgress
	}
	return s.target, nil
}

// Search returns up to catalog.SearchLimit not-yet-guessed cards matching query.
func (s *Session) Search(query string) []catalog.Entity {
	s.mu.Lock()
	exclude := make(map[string]bool, len(s.guessed))
	for id := range s.guessed {
		exclude[id] = true
	}
	s.mu.Unlock()
	return s.cat.Search(query, exclude, catalog.SearchLimit)
}

// Available lists every card not yet guessed this round.
func (s *Session) Available() []catalog.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Entity, 0, s.cat.Len()-len(s.guesses))
	for _, e := range s.cat.All() {
		if !s.guessed[e.ID] {
			out = append(out, e)
		}
	}
	return out
}
