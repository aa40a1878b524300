package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"shell_game/internal/game"
)

type CLI struct {
	Trials   int   `default:"60000" help:"Number of rounds to simulate"`
	Shuffles int   `default:"1" help:"Shuffle steps per round"`
	Seed     int64 `default:"0" help:"Seed for a reproducible run (0 uses crypto/rand)"`
	Guess    int   `default:"2" help:"Slot (1..3, left to right) the simulated player always picks"`
	Verbose  bool  `short:"v" help:"Verbose logging"`
}

type result struct {
	perms   *game.PermutationCounter
	slots   []int
	wins    int
	rounds  int
	elapsed time.Duration
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("shellsim"),
		kong.Description("Shell game fairness simulator"),
		kong.UsageOnError(),
	)

	level := log.InfoLevel
	if cli.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: level, ReportTimestamp: true})

	var rng game.RandomSource = game.NewCryptoSource()
	if cli.Seed != 0 {
		rng = game.NewSeededSource(cli.Seed)
	}

	logger.Info("starting simulation", "trials", cli.Trials, "shuffles", cli.Shuffles, "seed", cli.Seed, "guess", cli.Guess)

	res, err := simulate(cli, rng, logger)
	ctx.FatalIfErrorf(err)

	if !report(res, logger) {
		ctx.Exit(1)
	}
	ctx.Exit(0)
}

func simulate(cli CLI, rng game.RandomSource, logger *log.Logger) (*result, error) {
	res := &result{perms: game.NewPermutationCounter(), slots: make([]int, game.ShellPositions)}
	start := time.Now()

	for i := 0; i < cli.Trials; i++ {
		s, err := playRound(cli, rng)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", i, err)
		}
		res.perms.Add(s)
		res.slots[s.BallSlot()-1]++
		res.rounds++
		if s.Outcome == game.OutcomeWon {
			res.wins++
		}
		if cli.Verbose && i < 10 {
			logger.Debug("round", "n", i, "order", s.Order(), "ball_slot", s.BallSlot(), "outcome", s.Outcome)
		}
	}

	res.elapsed = time.Since(start)
	return res, nil
}

// playRound drives one round through the same transitions the server uses
func playRound(cli CLI, rng game.RandomSource) (game.State, error) {
	s, err := game.BeginIntro(game.Initialize())
	if err != nil {
		return s, err
	}
	if s, err = game.BeginShuffling(s); err != nil {
		return s, err
	}
	for i := 0; i < cli.Shuffles; i++ {
		if s, err = game.ShuffleOnce(s, rng); err != nil {
			return s, err
		}
	}
	if s, err = game.FinishShuffling(s); err != nil {
		return s, err
	}
	return game.GuessSlot(s, cli.Guess)
}

// report prints the tallies and returns whether the shuffle looks uniform
func report(res *result, logger *log.Logger) bool {
	if res.rounds == 0 {
		logger.Warn("no rounds simulated")
		return true
	}
	buckets := game.Permutations(game.ShellPositions)
	expected := float64(res.perms.Total()) / float64(buckets)

	fmt.Printf("\n%-10s %10s %10s\n", "ORDER", "COUNT", "EXPECTED")
	counts := res.perms.Counts()
	for _, k := range res.perms.Keys() {
		fmt.Printf("%-10s %10d %10.0f\n", k, counts[k], expected)
	}

	fmt.Printf("\n%-10s %10s\n", "BALL", "SHARE")
	for i, n := range res.slots {
		fmt.Printf("slot %-5d %9.2f%%\n", i+1, 100*float64(n)/float64(res.rounds))
	}

	chi := res.perms.ChiSquare(buckets)
	fmt.Printf("\nwin rate   %.4f (fair: %.4f)\n", float64(res.wins)/float64(res.rounds), 1/float64(game.ShellPositions))
	fmt.Printf("chi-square %.3f (critical %.3f, %d orderings)\n", chi, game.ChiSquareCritical5DF, buckets)
	slotChi := game.ChiSquareUniform(res.slots)
	fmt.Printf("slot chi   %.3f (critical %.3f)\n", slotChi, game.ChiSquareCritical2DF)
	fmt.Printf("elapsed    %s\n", res.elapsed.Round(time.Millisecond))

	if chi > game.ChiSquareCritical5DF {
		logger.Error("orderings are not uniform", "chi_square", chi)
		return false
	}
	if slotChi > game.ChiSquareCritical2DF {
		logger.Error("ball slots are not uniform", "chi_square", slotChi, "slots", res.slots)
		return false
	}
	logger.Info("orderings look uniform", "chi_square", chi, "slot_chi_square", slotChi)
	return true
}
