// internal/casino/service.go
//
// Casino service: the one place balances move for wagers.
// Responsibilities:
//   - Instant games: validate bet → draw once → apply net delta, in one ledger critical section.
//   - Live crash: take the stake at start, pay bet × multiplier on cash-out,
//     nothing on crash. One live round per owner.
//   - Crash timeline: a cancellable ticker per round that settles the crash and
//     streams frames to subscribers. Outcomes never depend on tick timing.
//   - Best-effort wager history.

package casino

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/robalobadob/crwordle/internal/ledger"
	"github.com/robalobadob/crwordle/internal/wager"
)

var (
	ErrNoRound  = errors.New("no crash round in progress")
	ErrDisabled = errors.New("game disabled")
)

// WagerLog receives every resolved round. Failures are logged, never returned.
type WagerLog interface {
	RecordWager(ctx context.Context, owner string, bet decimal.Decimal, r wager.Result) error
}

// Outcome is a settled wager plus the balance after it.
type Outcome struct {
	wager.Result
	Balance decimal.Decimal `json:"balance"`
}

// Frame is one crash timeline update.
type Frame struct {
	RoundID    string           `json:"roundId"`
	State      wager.CrashState `json:"state"`
	Multiplier float64          `json:"multiplier"`
	CrashPoint float64          `json:"crashPoint,omitempty"` // disclosed once settled
	Payout     *decimal.Decimal `json:"payout,omitempty"`
}

type live struct {
	round  *wager.CrashRound
	cancel context.CancelFunc
	done   bool // guarded by Service.mu
}

// Service runs wagers against a ledger.Book.
type Service struct {
	book *ledger.Book
	wlog WagerLog
	src  wager.Source
	now  func() time.Time
	tick time.Duration

	mu     sync.Mutex
	rounds map[string]*live                   // by owner
	subs   map[string]map[chan Frame]struct{} // by owner
}

// Option configures a Service.
type Option func(*Service)

// WithSource sets the random source.
func WithSource(src wager.Source) Option { return func(s *Service) { s.src = src } }

// WithClock sets the clock used for crash rounds.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithTick sets the crash timeline interval.
func WithTick(d time.Duration) Option { return func(s *Service) { s.tick = d } }

// WithWagerLog sets the wager history sink.
func WithWagerLog(l WagerLog) Option { return func(s *Service) { s.wlog = l } }

func New(book *ledger.Book, opts ...Option) *Service {
	s := &Service{
		book:   book,
		src:    wager.DefaultSource,
		now:    time.Now,
		tick:   50 * time.Millisecond,
		rounds: make(map[string]*live),
		subs:   make(map[string]map[chan Frame]struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Balance reads owner's balance.
func (s *Service) Balance(ctx context.Context, owner string) decimal.Decimal {
	return s.book.Balance(ctx, owner)
}

// Play resolves an instant round of gameID.
func (s *Service) Play(ctx context.Context, owner, gameID string, bet wager.Bet) (Outcome, error) {
	g, ok := wager.Lookup(gameID)
	if !ok {
		return Outcome{}, wager.ErrUnknownGame
	}
	if !g.Spec().Enabled {
		return Outcome{}, ErrDisabled
	}
	var res wager.Result
	bal, err := s.book.Apply(ctx, owner, func(cur decimal.Decimal) (decimal.Decimal, error) {
		if err := wager.ValidateBet(bet.Amount, cur); err != nil {
			return cur, err
		}
		r, err := wager.Play(g, s.src, bet)
		if err != nil {
			return cur, err
		}
		res = r
		return cur.Add(r.Net), nil
	})
	if err != nil {
		return Outcome{Balance: bal}, err
	}
	s.record(ctx, owner, bet.Amount, res)
	log.Debug().Str("owner", owner).Str("game", gameID).Str("outcome", res.Outcome).
		Str("net", res.Net.String()).Msg("wager settled")
	return Outcome{Result: res, Balance: bal}, nil
}

func (s *Service) record(ctx context.Context, owner string, bet decimal.Decimal, r wager.Result) {
	if s.wlog == nil {
		return
	}
	if err := s.wlog.RecordWager(ctx, owner, bet, r); err != nil {
		log.Warn().Err(err).Str("owner", owner).Str("game", r.Game).Msg("record wager")
	}
}

// ---- live crash ----

// StartCrash takes the stake and starts a live round. The new round replaces
// owner's previous one in a single step; an unsettled previous round is
// forfeited.
func (s *Service) StartCrash(ctx context.Context, owner string, amount decimal.Decimal) (*wager.CrashRound, decimal.Decimal, error) {
	var round *wager.CrashRound
	bal, err := s.book.Apply(ctx, owner, func(cur decimal.Decimal) (decimal.Decimal, error) {
		if err := wager.ValidateBet(amount, cur); err != nil {
			return cur, err
		}
		round = wager.NewCrashRound(owner, amount, s.src.Float64(), s.now)
		return cur.Sub(amount), nil
	})
	if err != nil {
		return nil, bal, err
	}

	tctx, cancel := context.WithCancel(context.Background())
	lv := &live{round: round, cancel: cancel}
	s.mu.Lock()
	prev := s.rounds[owner]
	s.rounds[owner] = lv
	s.mu.Unlock()
	if prev != nil {
		prev.round.Forfeit()
		s.finish(ctx, owner, prev)
	}

	s.publish(owner, Frame{RoundID: round.ID, State: wager.CrashRunning, Multiplier: 1})
	go s.timeline(tctx, owner, lv)
	return round, bal, nil
}

// Current returns owner's live round, if any.
func (s *Service) Current(owner string) (*wager.CrashRound, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lv, ok := s.rounds[owner]
	if !ok {
		return nil, false
	}
	return lv.round, true
}

// CashOut settles owner's live round at the current multiplier. If the curve
// already passed the crash point the round is lost and wager.ErrCrashed returned.
func (s *Service) CashOut(ctx context.Context, owner string) (Outcome, error) {
	s.mu.Lock()
	lv, ok := s.rounds[owner]
	s.mu.Unlock()
	if !ok {
		return Outcome{Balance: s.book.Balance(ctx, owner)}, ErrNoRound
	}

	res, err := lv.round.CashOut()
	switch {
	case errors.Is(err, wager.ErrCrashed):
		s.finish(ctx, owner, lv)
		return Outcome{Result: res, Balance: s.book.Balance(ctx, owner)}, err
	case err != nil:
		return Outcome{Result: res, Balance: s.book.Balance(ctx, owner)}, err
	}

	bal, werr := s.book.Add(ctx, owner, res.Payout)
	s.finish(ctx, owner, lv)
	if werr != nil {
		return Outcome{Result: res, Balance: bal}, werr
	}
	return Outcome{Result: res, Balance: bal}, nil
}

// Discard forfeits owner's unsettled round and stops its timeline. Used when
// a new round starts or the player leaves the game.
func (s *Service) Discard(owner string) {
	s.mu.Lock()
	lv, ok := s.rounds[owner]
	s.mu.Unlock()
	if !ok {
		return
	}
	lv.round.Forfeit()
	s.finish(context.Background(), owner, lv)
}

// finish stops the timeline, logs the result and pushes the final frame.
// Only the first caller for a round does the work. A round already replaced
// by a newer one is still finished, but the newer one stays live.
func (s *Service) finish(ctx context.Context, owner string, lv *live) {
	s.mu.Lock()
	if lv.done {
		s.mu.Unlock()
		return
	}
	lv.done = true
	if s.rounds[owner] == lv {
		delete(s.rounds, owner)
	}
	s.mu.Unlock()

	lv.cancel()
	res := lv.round.Result()
	s.record(ctx, owner, lv.round.Bet, res)

	f := Frame{RoundID: lv.round.ID, State: lv.round.State(), CrashPoint: lv.round.Point}
	if f.State == wager.CrashCashedOut {
		m, _ := res.Multiplier.Float64()
		f.Multiplier = m
		p := res.Payout
		f.Payout = &p
	} else {
		f.Multiplier = lv.round.Point
	}
	s.publish(owner, f)
}

// timeline ticks the round until it settles or ctx is cancelled.
func (s *Service) timeline(ctx context.Context, owner string, lv *live) {
	t := time.NewTicker(s.tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m, crashed := lv.round.Tick()
			if crashed {
				s.finish(context.Background(), owner, lv)
				return
			}
			if lv.round.State() != wager.CrashRunning {
				return
			}
			s.publish(owner, Frame{RoundID: lv.round.ID, State: wager.CrashRunning, Multiplier: m})
		}
	}
}

// Subscribe streams owner's crash frames. Slow readers miss frames rather
// than stall the timeline. Call the returned func to unsubscribe.
func (s *Service) Subscribe(owner string) (<-chan Frame, func()) {
	ch := make(chan Frame, 32)
	s.mu.Lock()
	if s.subs[owner] == nil {
		s.subs[owner] = make(map[chan Frame]struct{})
	}
	s.subs[owner][ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs[owner], ch)
			if len(s.subs[owner]) == 0 {
				delete(s.subs, owner)
			}
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Service) publish(owner string, f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs[owner] {
		select {
		case ch <- f:
		default:
		}
	}
}

// Close forfeits every live round.
func (s *Service) Close() {
	s.mu.Lock()
	owners := make([]string, 0, len(s.rounds))
	for o := range s.rounds {
		owners = append(owners, o)
	}
	s.mu.Unlock()
	for _, o := range owners {
		s.Discard(o)
	}
}
