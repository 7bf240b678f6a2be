// internal/sim/sim.go
//
// Monte Carlo runner for the casino games.
//
// Run plays one game/choice many times with a fixed stake and compares the
// observed return with the game's payout table. It backs cmd/sim and the
// odds regression tests.

package sim

import (
	"errors"
	"io"
	"math"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/robalobadob/crwordle/internal/wager"
)

// Confidence is the level of every interval in a Report.
const Confidence = 0.95

var ErrNoRounds = errors.New("sim: rounds must be positive")

// CI is a closed interval.
type CI struct {
	Lo float64 `yaml:"lo"`
	Hi float64 `yaml:"hi"`
}

// Contains reports whether v is inside the interval.
func (c CI) Contains(v float64) bool { return v >= c.Lo && v <= c.Hi }

// Report is the outcome of one simulation run.
type Report struct {
	RunID    string        `yaml:"runId"`
	Game     string        `yaml:"game"`
	Choice   string        `yaml:"choice,omitempty"`
	Rounds   int           `yaml:"rounds"`
	Bet      string        `yaml:"bet"`
	TotalBet string        `yaml:"totalBet"`
	TotalWin string        `yaml:"totalWin"`
	Used     time.Duration `yaml:"used"`

	RTP     float64 `yaml:"rtp"`
	RtpCI   CI      `yaml:"rtpCI"`
	StdDev  float64 `yaml:"stdDev"`
	HitRate float64 `yaml:"hitRate"`
	HitCI   CI      `yaml:"hitCI"`
	Wins    int     `yaml:"wins"`
	Pushes  int     `yaml:"pushes"`
	Losses  int     `yaml:"losses"`

	// Expected is the exact figure derived from the payout table.
	Expected wager.Odds `yaml:"expected"`
}

// Options tunes Run.
type Options struct {
	Rounds   int
	Bet      decimal.Decimal
	Source   wager.Source
	Progress io.Writer // nil hides the bar
}

// Run plays g under choice opts.Rounds times.
func Run(g wager.Game, choice string, opts Options) (Report, error) {
	if opts.Rounds <= 0 {
		return Report{}, ErrNoRounds
	}
	if opts.Bet.LessThan(wager.MinBet) {
		opts.Bet = wager.MinBet
	}
	expected, err := wager.GameOdds(g, choice)
	if err != nil {
		return Report{}, err
	}

	rep := Report{
		RunID:    uuid.NewString(),
		Game:     g.Spec().ID,
		Choice:   choice,
		Rounds:   opts.Rounds,
		Bet:      opts.Bet.String(),
		Expected: expected,
	}
	bet := wager.Bet{Amount: opts.Bet, Choice: choice}
	stake := opts.Bet.InexactFloat64()
	mults := make([]float64, 0, opts.Rounds)
	totalWin := decimal.Zero

	out := opts.Progress
	if out == nil {
		out = io.Discard
	}
	bar := pb.New(opts.Rounds).SetWriter(out).Start()
	for i := 0; i < opts.Rounds; i++ {
		res, err := wager.Play(g, opts.Source, bet)
		if err != nil {
			bar.Finish()
			return Report{}, err
		}
		totalWin = totalWin.Add(res.Payout)
		mults = append(mults, res.Payout.InexactFloat64()/stake)
		switch res.Outcome {
		case wager.OutcomeWin:
			rep.Wins++
		case wager.OutcomePush:
			rep.Pushes++
		default:
			rep.Losses++
		}
		bar.Increment()
	}
	rep.Used = time.Since(bar.StartTime())
	bar.Finish()

	rep.TotalBet = opts.Bet.Mul(decimal.NewFromInt(int64(opts.Rounds))).String()
	rep.TotalWin = totalWin.String()
	rep.RTP, rep.StdDev = stat.MeanStdDev(mults, nil)
	if len(mults) < 2 {
		rep.StdDev = 0
	}
	rep.RtpCI = meanCI(rep.RTP, rep.StdDev, len(mults), Confidence)
	hits := rep.Wins + rep.Pushes
	rep.HitRate = float64(hits) / float64(opts.Rounds)
	rep.HitCI = proportionCI(hits, opts.Rounds, Confidence)
	return rep, nil
}

// meanCI is the normal-approximation interval around a sample mean.
func meanCI(mean, std float64, n int, confidence float64) CI {
	z := distuv.UnitNormal.Quantile(1 - (1-confidence)/2)
	half := z * std / math.Sqrt(float64(n))
	return CI{Lo: mean - half, Hi: mean + half}
}

// proportionCI is the Clopper-Pearson interval for k successes in n trials.
func proportionCI(k, n int, confidence float64) (ci CI) {
	if n <= 0 {
		return CI{0, 1}
	}
	alpha := 1 - confidence
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}
