package sim

import (
	"bytes"
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/crwordle/internal/wager"
)

func TestRunMatchesPayoutTables(t *testing.T) {
	const rounds = 40_000
	for _, g := range wager.All() {
		choices := g.Spec().Choices
		if len(choices) == 0 {
			choices = []string{""}
		}
		for _, c := range choices {
			src := rand.New(rand.NewPCG(7, 11))
			rep, err := Run(g, c, Options{Rounds: rounds, Bet: decimal.NewFromInt(10), Source: src})
			if err != nil {
				t.Fatalf("%s/%s: unexpected error %v", g.Spec().ID, c, err)
			}
			tol := 6*rep.Expected.StdDev/math.Sqrt(rounds) + 1e-3
			if d := math.Abs(rep.RTP - rep.Expected.RTP); d > tol {
				t.Errorf("%s/%s: expected RTP %.4f, got %.4f (tolerance %.4f)", g.Spec().ID, c, rep.Expected.RTP, rep.RTP, tol)
			}
			if got := rep.Wins + rep.Pushes + rep.Losses; got != rounds {
				t.Errorf("%s/%s: expected %d outcomes, got %d", g.Spec().ID, c, rounds, got)
			}
		}
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	if _, err := Run(wager.CoinFlip{}, "heads", Options{}); !errors.Is(err, ErrNoRounds) {
		t.Errorf("expected ErrNoRounds, got %v", err)
	}
	_, err := Run(wager.CoinFlip{}, "edge", Options{Rounds: 10})
	if !errors.Is(err, wager.ErrUnknownChoice) {
		t.Errorf("expected ErrUnknownChoice, got %v", err)
	}
}

func TestRunClampsStake(t *testing.T) {
	rep, err := Run(wager.LuckySpin{}, "", Options{Rounds: 5, Bet: decimal.Zero, Source: rand.New(rand.NewPCG(1, 2))})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if rep.Bet != wager.MinBet.String() {
		t.Errorf("expected bet %s, got %s", wager.MinBet, rep.Bet)
	}
	if rep.TotalBet != "5" {
		t.Errorf("expected total bet 5, got %s", rep.TotalBet)
	}
}

type constSource float64

func (c constSource) Float64() float64 { return float64(c) }

func TestRunSampleMoments(t *testing.T) {
	g := wager.LuckySpin{}
	want := wager.WheelTable.Pick(0.999).Multiplier
	rep, err := Run(g, "", Options{Rounds: 50, Bet: decimal.NewFromInt(10), Source: constSource(0.999)})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if math.Abs(rep.RTP-want) > 1e-9 || rep.StdDev != 0 {
		t.Errorf("expected RTP %.2f with zero spread, got %.4f / %.4f", want, rep.RTP, rep.StdDev)
	}

	one, err := Run(g, "", Options{Rounds: 1, Bet: decimal.NewFromInt(10), Source: constSource(0.999)})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if math.IsNaN(one.StdDev) || one.StdDev != 0 {
		t.Errorf("expected zero spread for a single round, got %v", one.StdDev)
	}
}

func TestRunWritesProgressToGivenWriter(t *testing.T) {
	var buf bytes.Buffer
	_, err := Run(wager.CoinFlip{}, "tails", Options{Rounds: 20, Bet: decimal.NewFromInt(1), Source: rand.New(rand.NewPCG(8, 9)), Progress: &buf})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected the progress bar to render into the writer")
	}
}

func TestProportionCIBounds(t *testing.T) {
	ci := proportionCI(0, 100, Confidence)
	if ci.Lo != 0 || ci.Hi <= 0 || ci.Hi >= 0.1 {
		t.Errorf("expected [0, <0.1], got %+v", ci)
	}
	ci = proportionCI(100, 100, Confidence)
	if ci.Hi != 1 || ci.Lo <= 0.9 {
		t.Errorf("expected [>0.9, 1], got %+v", ci)
	}
	ci = proportionCI(50, 100, Confidence)
	if !ci.Contains(0.5) || ci.Lo < 0.35 || ci.Hi > 0.65 {
		t.Errorf("expected an interval around 0.5, got %+v", ci)
	}
}

func TestTableRowsAlign(t *testing.T) {
	rep, err := Run(wager.DiceRoll{}, "high", Options{Rounds: 100, Bet: decimal.NewFromInt(10), Source: rand.New(rand.NewPCG(3, 4))})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	out := strings.TrimRight(rep.Table(), "\n")
	lines := strings.Split(out, "\n")
	keys, _ := rep.Rows()
	if len(lines) != len(keys)+4 {
		t.Fatalf("expected %d lines, got %d", len(keys)+4, len(lines))
	}
	w := runewidth.StringWidth(lines[0])
	for i, l := range lines {
		if got := runewidth.StringWidth(l); got != w {
			t.Errorf("line %d: expected width %d, got %d: %q", i, w, got, l)
		}
	}
	if !strings.Contains(out, "dice (high)") {
		t.Errorf("expected title in table, got\n%s", out)
	}
}

func TestWriteYAML(t *testing.T) {
	rep, err := Run(wager.CoinFlip{}, "heads", Options{Rounds: 10, Bet: decimal.NewFromInt(2), Source: rand.New(rand.NewPCG(5, 6))})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	var buf bytes.Buffer
	if err := WriteYAML(&buf, []Report{rep}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	var back []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(back) != 1 || back[0]["game"] != "coin" || back[0]["rounds"] != 10 {
		t.Errorf("unexpected dump %v", back)
	}
}
