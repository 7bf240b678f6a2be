package wager

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
)

var ten = decimal.NewFromInt(10)

// die returns the float that rolls face k.
func die(k int) float64 { return (float64(k) - 0.5) / 6 }

// rank returns the float that draws card index i (0 = "2", 12 = "A").
func rank(i int) float64 { return (float64(i) + 0.5) / 13 }

func TestRegistryOrderAndLookup(t *testing.T) {
	want := []string{"card-draw", "coin", "crash", "dice", "lucky-spin", "mystery-box"}
	specs := Specs()
	if len(specs) != len(want) {
		t.Fatalf("expected %d games, got %d", len(want), len(specs))
	}
	for i, id := range want {
		if specs[i].ID != id {
			t.Errorf("position %d: expected %q, got %q", i, id, specs[i].ID)
		}
		if !specs[i].Enabled || specs[i].Name == "" || specs[i].Icon == "" {
			t.Errorf("%s: incomplete manifest %+v", id, specs[i])
		}
		if _, ok := Lookup(id); !ok {
			t.Errorf("lookup %q failed", id)
		}
	}
	if _, ok := Lookup("roulette"); ok {
		t.Error("expected unknown game lookup to fail")
	}
}

func TestValidateBet(t *testing.T) {
	bal := decimal.NewFromInt(50)
	if err := ValidateBet(decimal.RequireFromString("0.5"), bal); !errors.Is(err, ErrBetTooSmall) {
		t.Errorf("expected ErrBetTooSmall, got %v", err)
	}
	if err := ValidateBet(decimal.NewFromInt(51), bal); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}
	if err := ValidateBet(bal, bal); err != nil {
		t.Errorf("expected full-balance bet accepted, got %v", err)
	}
}

type countingSource struct{ n int }

func (c *countingSource) Float64() float64 { c.n++; return 0.5 }

func TestPlayRejectsChoiceBeforeDrawing(t *testing.T) {
	src := &countingSource{}
	_, err := Play(DiceRoll{}, src, Bet{Amount: ten, Choice: "eleven"})
	if !errors.Is(err, ErrUnknownChoice) {
		t.Errorf("expected ErrUnknownChoice, got %v", err)
	}
	if src.n != 0 {
		t.Errorf("expected no draws, got %d", src.n)
	}

	if _, err := Play(DiceRoll{}, src, Bet{Amount: ten, Choice: DiceHigh}); err != nil {
		t.Fatalf("play: %v", err)
	}
	if src.n != 2 {
		t.Errorf("expected exactly 2 draws for dice, got %d", src.n)
	}
}

func TestSettle(t *testing.T) {
	cases := []struct {
		mult    float64
		outcome string
		payout  string
		net     string
	}{
		{0, OutcomeLoss, "0", "-10"},
		{1, OutcomePush, "10", "0"},
		{0.5, OutcomeLoss, "5", "-5"},
		{2.5, OutcomeWin, "25", "15"},
	}
	for _, tc := range cases {
		r := Settle("x", ten, tc.mult, nil)
		if r.Outcome != tc.outcome || r.Payout.String() != tc.payout || r.Net.String() != tc.net {
			t.Errorf("×%v: expected %s/%s/%s, got %s/%s/%s",
				tc.mult, tc.outcome, tc.payout, tc.net, r.Outcome, r.Payout, r.Net)
		}
	}
}

func TestCardDraw(t *testing.T) {
	cases := []struct {
		player, dealer int
		mult           string
	}{
		{12, 0, "3"},
		{5, 0, "3"},
		{4, 0, "2"},
		{2, 0, "2"},
		{1, 0, "1.5"},
		{7, 7, "1"},
		{0, 12, "0"},
	}
	for _, tc := range cases {
		r, err := CardDraw{}.EvaluateWithFloats([]float64{rank(tc.player), 0, rank(tc.dealer), 0.9}, Bet{Amount: ten})
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if r.Multiplier.String() != tc.mult {
			t.Errorf("player %d vs dealer %d: expected ×%s, got ×%s", tc.player, tc.dealer, tc.mult, r.Multiplier)
		}
	}

	r, _ := CardDraw{}.EvaluateWithFloats([]float64{rank(12), 0, rank(0), 0.9}, Bet{Amount: ten})
	p := r.Details["player"].(Card)
	d := r.Details["dealer"].(Card)
	if p.Value != "A" || p.Rank != 14 || p.Suit != "♠" || d.Value != "2" || d.Suit != "♣" {
		t.Errorf("unexpected cards %+v vs %+v", p, d)
	}

	if _, err := (CardDraw{}).EvaluateWithFloats([]float64{0.1}, Bet{Amount: ten}); !errors.Is(err, ErrNotEnoughFloats) {
		t.Errorf("expected ErrNotEnoughFloats, got %v", err)
	}
}

func TestCardDrawTableCoversAllDeals(t *testing.T) {
	tbl, _ := CardDraw{}.Table("")
	if tbl.Total() != 169 {
		t.Errorf("expected 169 deals, got %v", tbl.Total())
	}
	want := map[float64]float64{3: 36, 2: 30, 1.5: 12, 1: 13, 0: 78}
	for _, e := range tbl {
		if want[e.Multiplier] != e.Weight {
			t.Errorf("×%v: expected weight %v, got %v", e.Multiplier, want[e.Multiplier], e.Weight)
		}
	}
}

func TestCoinFlip(t *testing.T) {
	heads := Bet{Amount: ten, Choice: CoinHeads}
	cases := []struct {
		edge, side float64
		bet        Bet
		mult       string
		landed     string
	}{
		{0.5, 0.2, heads, "2", CoinHeads},
		{0.5, 0.7, heads, "0", CoinTails},
		{0.001, 0.7, heads, "10", "edge"},
		{0.001, 0.2, Bet{Amount: ten, Choice: CoinTails}, "10", "edge"},
	}
	for _, tc := range cases {
		r, err := CoinFlip{}.EvaluateWithFloats([]float64{tc.edge, tc.side}, tc.bet)
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if r.Multiplier.String() != tc.mult || r.Details["landed"] != tc.landed {
			t.Errorf("floats %v/%v: expected ×%s %s, got ×%s %v", tc.edge, tc.side, tc.mult, tc.landed, r.Multiplier, r.Details["landed"])
		}
	}
}

func TestDiceBandsPayOnlyTheirSums(t *testing.T) {
	for a := 1; a <= 6; a++ {
		for b := 1; b <= 6; b++ {
			sum := a + b
			for _, band := range []string{DiceLow, DiceSeven, DiceHigh} {
				r, err := DiceRoll{}.EvaluateWithFloats([]float64{die(a), die(b)}, Bet{Amount: ten, Choice: band})
				if err != nil {
					t.Fatalf("evaluate: %v", err)
				}
				if r.Details["sum"] != sum {
					t.Fatalf("dice %d+%d: expected sum %d, got %v", a, b, sum, r.Details["sum"])
				}
				want := 0.0
				switch {
				case band == DiceLow && sum < 7, band == DiceHigh && sum > 7:
					want = 2
				case band == DiceSeven && sum == 7:
					want = 6
				}
				if !r.Multiplier.Equal(decimal.NewFromFloat(want)) {
					t.Errorf("%s on %d: expected ×%v, got ×%s", band, sum, want, r.Multiplier)
				}
			}
		}
	}
}

func TestLuckySpin(t *testing.T) {
	r, err := LuckySpin{}.EvaluateWithFloats([]float64{350.0 / 360}, Bet{Amount: ten})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if r.Multiplier.String() != "10" || r.Payout.String() != "100" {
		t.Errorf("expected jackpot wedge, got ×%s paying %s", r.Multiplier, r.Payout)
	}
	r, _ = LuckySpin{}.EvaluateWithFloats([]float64{0.01}, Bet{Amount: ten})
	if r.Outcome != OutcomeLoss {
		t.Errorf("expected first wedge to lose, got %s", r.Outcome)
	}
}

func TestMysteryBox(t *testing.T) {
	cases := []struct {
		tier string
		u    float64
		mult string
	}{
		{BoxWooden, 0.1, "0.5"},
		{BoxWooden, 0.99, "2"},
		{BoxGolden, 0.1, "0"},
		{BoxGolden, 0.97, "6"},
		{BoxLegendary, 0.4, "0"},
		{BoxLegendary, 0.96, "10"},
	}
	for _, tc := range cases {
		r, err := MysteryBox{}.EvaluateWithFloats([]float64{tc.u}, Bet{Amount: ten, Choice: tc.tier})
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if r.Multiplier.String() != tc.mult {
			t.Errorf("%s at %v: expected ×%s, got ×%s", tc.tier, tc.u, tc.mult, r.Multiplier)
		}
	}
	if _, err := (MysteryBox{}).EvaluateWithFloats([]float64{0.5}, Bet{Amount: ten, Choice: "iron"}); !errors.Is(err, ErrUnknownChoice) {
		t.Errorf("expected ErrUnknownChoice, got %v", err)
	}
}

func TestOdds(t *testing.T) {
	cases := []struct {
		game   Game
		choice string
		rtp    float64
	}{
		{LuckySpin{}, "", 1020.0 / 360},
		{MysteryBox{}, BoxWooden, 1.1},
		{MysteryBox{}, BoxLegendary, 2.2},
		{DiceRoll{}, DiceLow, 30.0 / 36},
		{DiceRoll{}, DiceSeven, 1},
		{CardDraw{}, "", 199.0 / 169},
		{Crash{}, "2", 2 * (1 - 0.5/0.99)},
	}
	for _, tc := range cases {
		o, err := GameOdds(tc.game, tc.choice)
		if err != nil {
			t.Fatalf("%s: %v", tc.game.Spec().ID, err)
		}
		if math.Abs(o.RTP-tc.rtp) > 1e-9 {
			t.Errorf("%s/%s: expected RTP %.6f, got %.6f", tc.game.Spec().ID, tc.choice, tc.rtp, o.RTP)
		}
		if o.StdDev <= 0 {
			t.Errorf("%s/%s: expected positive spread, got %v", tc.game.Spec().ID, tc.choice, o.StdDev)
		}
	}
}

func TestPlayMatchesOdds(t *testing.T) {
	src := rand.New(rand.NewPCG(7, 11))
	const rounds = 20000
	for _, g := range All() {
		for choice, o := range ChoiceOdds(g) {
			var total float64
			for i := 0; i < rounds; i++ {
				r, err := Play(g, src, Bet{Amount: decimal.NewFromInt(1), Choice: choice})
				if err != nil {
					t.Fatalf("%s/%s: %v", g.Spec().ID, choice, err)
				}
				m, _ := r.Multiplier.Float64()
				total += m
			}
			got := total / rounds
			// 5 standard errors
			tol := 5 * o.StdDev / math.Sqrt(rounds)
			if math.Abs(got-o.RTP) > tol {
				t.Errorf("%s/%s: simulated RTP %.4f, expected %.4f ± %.4f", g.Spec().ID, choice, got, o.RTP, tol)
			}
		}
	}
}
