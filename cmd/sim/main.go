// cmd/sim
//
// Offline RTP checker for the casino games.
//
//	go run ./cmd/sim -rounds 200000 -game dice -choice high
//
// Without -game every game is run under each of its choices.

package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/robalobadob/crwordle/internal/sim"
	"github.com/robalobadob/crwordle/internal/wager"
)

func main() {
	rounds := flag.Int("rounds", 100_000, "rounds per game/choice")
	bet := flag.String("bet", "10", "stake per round")
	seed := flag.Uint64("seed", 0, "PCG seed (0 = time based)")
	gameID := flag.String("game", "", "game id (empty = all)")
	choice := flag.String("choice", "", "choice for -game (empty = every declared choice)")
	quiet := flag.Bool("quiet", false, "hide progress bars")
	dump := flag.String("dump", "", "write the reports as YAML to this file")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	stake, err := decimal.NewFromString(*bet)
	if err != nil {
		log.Fatal().Err(err).Str("bet", *bet).Msg("bad stake")
	}
	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}
	src := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))

	games := wager.All()
	if *gameID != "" {
		g, ok := wager.Lookup(*gameID)
		if !ok {
			log.Fatal().Str("game", *gameID).Msg("unknown game")
		}
		games = []wager.Game{g}
	}

	opts := sim.Options{Rounds: *rounds, Bet: stake, Source: src}
	if !*quiet {
		opts.Progress = os.Stderr
	}

	var reps []sim.Report
	for _, g := range games {
		choices := g.Spec().Choices
		switch {
		case *gameID != "" && *choice != "":
			choices = []string{*choice}
		case len(choices) == 0:
			choices = []string{""}
		}
		for _, c := range choices {
			rep, err := sim.Run(g, c, opts)
			if err != nil {
				log.Fatal().Err(err).Str("game", g.Spec().ID).Str("choice", c).Msg("simulate")
			}
			fmt.Print(rep.Table())
			if !rep.RtpCI.Contains(rep.Expected.RTP) {
				log.Warn().Str("game", rep.Game).Str("choice", c).
					Float64("rtp", rep.RTP).Float64("expected", rep.Expected.RTP).
					Msg("expected RTP outside confidence interval")
			}
			reps = append(reps, rep)
		}
	}

	if *dump != "" {
		f, err := os.Create(*dump)
		if err != nil {
			log.Fatal().Err(err).Str("file", *dump).Msg("create dump")
		}
		defer f.Close()
		if err := sim.WriteYAML(f, reps); err != nil {
			log.Fatal().Err(err).Msg("write dump")
		}
	}
	log.Info().Uint64("seed", *seed).Int("runs", len(reps)).Msg("simulation done")
}
