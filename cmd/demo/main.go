package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/gildhall/gildhall-server-go/internal/content"
	"github.com/gildhall/gildhall-server-go/internal/game"
	"github.com/gildhall/gildhall-server-go/internal/game/rules"
)

// A scripted settlement run against the builtin card set. The bot plays
// every affordable card each turn, answers targeting requests with the
// first eligible candidates, and prints the resulting event stream. Running
// it twice with the same -seed prints the same stream.

var (
	seed    = flag.Int64("seed", 1, "run seed (same seed, same run)")
	verbose = flag.Bool("v", false, "print every run event, not just effects")
)

func main() {
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: %v\n", err)
			os.Exit(1)
		}
	}

	catalog := content.BuiltinCatalog(logger)
	if err := catalog.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "catalog: %v\n", err)
		os.Exit(1)
	}

	run, err := game.NewRun(game.RunConfig{Seed: *seed}, catalog, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "new run: %v\n", err)
		os.Exit(1)
	}

	run.Bus().Subscribe(func(evt rules.Event) {
		switch evt.Type {
		case rules.EventTurnStarted:
			fmt.Printf("\n=== turn %d ===\n", evt.Amount)
		case rules.EventEffectExecuted:
			fmt.Printf("  effect %-18s magnitude=%-3d ok=%v\n", evt.Data, evt.Amount, evt.Flag)
		case rules.EventTargetingRequired:
			fmt.Printf("  ... awaiting target selection (%s)\n", evt.Data)
		case rules.EventActivationCompleted:
			fmt.Printf("  activation complete (source=%s)\n", orDash(evt.SourceID))
		case rules.EventTownEvent:
			fmt.Printf("  town event: %s\n", evt.SourceID)
		case rules.EventRunEnded:
			fmt.Printf("\nrun over: %s\n", evt.Data)
		}
	})

	settle(run, run.Start())

	for !run.Over() {
		playTurn(run)
		if run.Over() {
			break
		}
		outcome, err := run.EndTurn()
		if err != nil {
			fmt.Fprintf(os.Stderr, "end turn: %v\n", err)
			os.Exit(1)
		}
		settle(run, outcome)
	}

	view := run.View()
	fmt.Printf("\nseed=%d turns=%d gold=%d score=%d\n", *seed, view.Turn, view.Gold, view.Score)
	fmt.Printf("cards played=%d gold earned=%d treasures settled=%d\n",
		view.Stats.CardsPlayed, view.Stats.GoldEarned, view.Stats.TreasuresSettled)
}

// playTurn greedily plays whatever the treasury and action pool allow.
func playTurn(run *game.Run) {
	for {
		played := false
		for _, card := range run.View().Hand {
			fmt.Printf("  play %s (%s)\n", card.Name, card.ID)
			outcome, err := run.PlayCard(card.ID)
			if err != nil {
				fmt.Printf("    skipped: %v\n", err)
				continue
			}
			settle(run, outcome)
			played = true
			break // hand changed, re-snapshot
		}
		if !played || run.Over() {
			return
		}
	}
}

// settle drives a suspended activation to completion: it answers targeting
// requests with the first candidates up to the cap and resolves promotion
// prompts with the first offered job.
func settle(run *game.Run, outcome game.Outcome) {
	for !outcome.Completed() {
		req := outcome.Request
		selected := make([]string, 0, req.Cap)
		for _, cand := range req.Candidates {
			if len(selected) == req.Cap {
				break
			}
			selected = append(selected, cand.ID)
		}
		fmt.Printf("    selecting %d of %d candidates\n", len(selected), len(req.Candidates))

		var err error
		outcome, err = run.Resume(selected)
		if err != nil {
			fmt.Fprintf(os.Stderr, "resume: %v\n", err)
			os.Exit(1)
		}
	}

	if choice := run.View().PendingPromotion; choice != nil && len(choice.Options) > 0 {
		fmt.Printf("    promoting unit %s to %s\n", choice.UnitID, choice.Options[0])
		if err := run.ResolvePromotion(choice.UnitID, choice.Options[0]); err != nil {
			fmt.Fprintf(os.Stderr, "promotion: %v\n", err)
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
