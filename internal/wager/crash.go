// internal/wager/crash.go
//
// Crash: a multiplier climbs from 1.00x until it hits a crash point fixed at
// round start. Cashing out before that point pays bet × live multiplier;
// otherwise the stake is lost.
//
// Two ways to play:
//   - Crash (Game):   instant round with an auto cash-out target as the choice.
//   - CrashRound:     live round; CashOut and Tick race and the first to settle wins.
//
// The crash-point distribution is the contract; the growth curve only decides
// how long disclosure takes.

package wager

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CrashMin    = 1.01
	CrashMax    = 20.0
	crashGrowth = 1.05
	// DefaultCrashTarget is the auto cash-out used when none is given.
	DefaultCrashTarget = 2.0
)

var (
	ErrRoundSettled = errors.New("crash round already settled")
	ErrCrashed      = errors.New("crashed before cash-out")
)

// CrashPoint maps a uniform u in [0,1) onto the crash multiplier.
func CrashPoint(u float64) float64 {
	p := 1 / (1 - u*0.99)
	return math.Min(CrashMax, math.Max(CrashMin, p))
}

// CrashMultiplier is the live multiplier after elapsed time: 1.05^(10·s).
func CrashMultiplier(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 1
	}
	return math.Pow(crashGrowth, elapsed.Seconds()*10)
}

// CrashElapsed inverts CrashMultiplier: how long the curve takes to reach m.
func CrashElapsed(m float64) time.Duration {
	if m <= 1 {
		return 0
	}
	s := math.Log(m) / math.Log(crashGrowth) / 10
	return time.Duration(s * float64(time.Second))
}

// CrashWinChance is P(crash point > target).
func CrashWinChance(target float64) float64 {
	switch {
	case target < CrashMin:
		return 1
	case target >= CrashMax:
		return 0
	}
	// point > target  ⟺  u > (1 - 1/target) / 0.99
	return 1 - (1-1/target)/0.99
}

// Crash is the instant, auto cash-out form of the game.
//
// Floats: crash point.
type Crash struct{}

func (Crash) Spec() Spec {
	return Spec{
		ID:          "crash",
		Name:        "Crash",
		Description: "Cash out before the multiplier crashes!",
		Icon:        "📈",
		Odds:        "Unlimited",
		Enabled:     true,
	}
}

// ParseCrashTarget reads an auto cash-out choice; empty means the default.
func ParseCrashTarget(choice string) (float64, error) {
	if choice == "" {
		return DefaultCrashTarget, nil
	}
	v, err := strconv.ParseFloat(choice, 64)
	if err != nil || math.IsNaN(v) || v < CrashMin {
		return 0, fmt.Errorf("%w %q for crash: auto cash-out must be a number ≥ %.2f", ErrUnknownChoice, choice, CrashMin)
	}
	return v, nil
}

func (Crash) FloatCount(Bet) int { return 1 }

func (g Crash) EvaluateWithFloats(floats []float64, bet Bet) (Result, error) {
	if err := need("crash", floats, g.FloatCount(bet)); err != nil {
		return Result{}, err
	}
	target, err := ParseCrashTarget(bet.Choice)
	if err != nil {
		return Result{}, err
	}
	point := CrashPoint(floats[0])
	mult := 0.0
	if target < point {
		mult = target
	}
	return Settle("crash", bet.Amount, mult, map[string]any{
		"crashPoint": point,
		"target":     target,
	}), nil
}

func (Crash) Table(choice string) (Table, error) {
	target, err := ParseCrashTarget(choice)
	if err != nil {
		return nil, err
	}
	p := CrashWinChance(target)
	if p <= 0 {
		return Table{{Multiplier: 0, Weight: 1}}, nil
	}
	return Table{
		{Multiplier: target, Weight: p},
		{Multiplier: 0, Weight: 1 - p},
	}, nil
}

// CrashState is the settlement state of a live round.
type CrashState string

const (
	CrashRunning   CrashState = "running"
	CrashCashedOut CrashState = "cashed_out"
	CrashCrashed   CrashState = "crashed"
)

// CrashRound is one live crash round. The stake is taken when the round is
// created; only a successful CashOut pays anything back.
type CrashRound struct {
	mu sync.Mutex

	ID      string
	Owner   string
	Bet     decimal.Decimal
	Point   float64
	Started time.Time

	now    func() time.Time
	state  CrashState
	result Result
}

// NewCrashRound fixes the crash point from u and starts the clock.
// now may be nil for time.Now.
func NewCrashRound(owner string, bet decimal.Decimal, u float64, now func() time.Time) *CrashRound {
	if now == nil {
		now = time.Now
	}
	return &CrashRound{
		ID:      uuid.NewString(),
		Owner:   owner,
		Bet:     bet,
		Point:   CrashPoint(u),
		Started: now(),
		now:     now,
		state:   CrashRunning,
	}
}

// CrashAt is when the live multiplier reaches the crash point.
func (r *CrashRound) CrashAt() time.Time {
	return r.Started.Add(CrashElapsed(r.Point))
}

// Multiplier is the live multiplier at t, never beyond the crash point.
func (r *CrashRound) Multiplier(t time.Time) float64 {
	return math.Min(r.Point, CrashMultiplier(t.Sub(r.Started)))
}

// State reports the settlement state.
func (r *CrashRound) State() CrashState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Result is the settled result; zero while running.
func (r *CrashRound) Result() Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}

// CashOut tries to lock in bet × live multiplier. If the curve has already
// reached the crash point the round crashes instead and ErrCrashed is
// returned with the losing result. A settled round returns ErrRoundSettled.
func (r *CrashRound) CashOut() (Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != CrashRunning {
		return r.result, ErrRoundSettled
	}
	t := r.now()
	m := CrashMultiplier(t.Sub(r.Started))
	if m >= r.Point {
		r.crash()
		return r.result, ErrCrashed
	}
	r.state = CrashCashedOut
	r.result = Settle("crash", r.Bet, m, map[string]any{
		"crashPoint": r.Point,
		"cashedAt":   m,
	})
	return r.result, nil
}

// Tick advances the round to now. It returns the live multiplier and whether
// this call settled the round by crashing it.
func (r *CrashRound) Tick() (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.now()
	m := r.Multiplier(t)
	if r.state != CrashRunning {
		return m, false
	}
	if m >= r.Point {
		r.crash()
		return r.Point, true
	}
	return m, false
}

// Forfeit settles a running round as crashed, e.g. when it is abandoned.
// Reports whether the round was still running.
func (r *CrashRound) Forfeit() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != CrashRunning {
		return false
	}
	r.crash()
	return true
}

// crash settles as a loss. Caller holds mu.
func (r *CrashRound) crash() {
	r.state = CrashCrashed
	r.result = Settle("crash", r.Bet, 0, map[string]any{
		"crashPoint": r.Point,
	})
}
