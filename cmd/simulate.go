package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/abhisek/wiggles/internal/feedback"
	"github.com/abhisek/wiggles/internal/round"
	"github.com/abhisek/wiggles/internal/session"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <game>",
	Short: "Play a game headlessly with a scripted player",
	Long: "Run a full session of a game with a scripted player that hits with the given accuracy.\n" +
		"The session is journaled and reported like a real one.",
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func runSimulate(cmd *cobra.Command, args []string) error {
	accuracy, _ := cmd.Flags().GetFloat64("accuracy")
	seed, _ := cmd.Flags().GetUint64("seed")
	fast, _ := cmd.Flags().GetBool("fast")
	quiet, _ := cmd.Flags().GetBool("quiet")
	if accuracy < 0 || accuracy > 1 {
		return fmt.Errorf("--accuracy must be between 0 and 1")
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	g, ok := cat.Get(args[0])
	if !ok {
		return fmt.Errorf("unknown game %q (see `wiggles games`)", args[0])
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	repo := st.EventRepo()

	backend, err := progressBackend(repo)
	if err != nil {
		return err
	}
	reporter := newReporter(backend)

	var sched round.Scheduler = round.WallClock{}
	var clock *round.ManualClock
	if fast {
		clock = round.NewManualClock(time.Now())
		sched = clock
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	player := session.NewAutoplayer(session.Accurate(accuracy, seed), sched)
	var cues *feedback.DirectorConfig
	if !quiet {
		cues = &feedback.DirectorConfig{
			Speaker: feedback.NewCaptions(func(text string) {
				if text != "" {
					fmt.Printf("  » %s\n", text)
				}
			}),
			Settings: openSettings(),
		}
	}
	s, err := session.New(g, session.Deps{
		Repo:      repo,
		Reporter:  reporter,
		Scheduler: sched,
		Cues:      cues,
		Listener:  round.Listeners(player, progressPrinter(quiet)),
		Seed:      seed,
		Logger:    global.logger,
	})
	if err != nil {
		return err
	}
	player.Attach(s)

	fmt.Printf("Simulating %s (accuracy %.0f%%, seed %d)\n", g.Name, accuracy*100, seed)
	s.Start()
	if clock != nil {
	loop:
		for {
			select {
			case <-s.Done():
				break loop
			case <-ctx.Done():
				s.Cancel()
			default:
				clock.Advance(100 * time.Millisecond)
			}
		}
	} else {
		select {
		case <-s.Done():
		case <-ctx.Done():
			s.Cancel()
		}
	}
	s.WaitCues()

	c, ok := s.Completion()
	if !ok {
		return fmt.Errorf("session cancelled")
	}

	fmt.Println()
	fmt.Printf("Correct:  %d of %d (%d%%)\n", c.Result.Correct, c.Result.Total, c.Result.AccuracyPct)
	fmt.Printf("Duration: %s\n", c.Duration.Round(time.Millisecond))
	fmt.Printf("XP:       +%d\n", c.Result.XPAwarded)

	if c.Delivery != nil {
		d := <-c.Delivery
		if d.Err != nil {
			fmt.Printf("Progress: not saved (%v)\n", d.Err)
		} else {
			fmt.Printf("Progress: saved, %s XP total\n", humanize.Comma(int64(d.Ack.TotalXP)))
		}
	}
	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := reporter.Close(drainCtx); err != nil {
		global.logger.Warn("progress reports not delivered", "err", err)
	}

	if svc := newNotes(ctx, repo); svc != nil {
		n := svc.Write(ctx, c)
		fmt.Printf("\nNote for grown-ups (%s):\n%s\n", n.Source, n.Text)
	}
	fmt.Printf("\nSession %s\n", c.SessionID)
	return nil
}

// progressPrinter prints each resolved attempt.
func progressPrinter(quiet bool) round.Listener {
	if quiet {
		return nil
	}
	return round.ListenerFunc(func(t round.Transition) {
		if t.To != round.PhaseResolved {
			return
		}
		st := t.State
		fmt.Printf("Round %d/%d (%s) attempt %d: %s\n",
			st.CurrentRound+1, st.TotalRounds, round.TargetKind(st.Round.Target), st.Attempt, t.Outcome)
	})
}

func init() {
	simulateCmd.Flags().Float64("accuracy", 0.8, "Chance the player hits each round, 0 to 1")
	simulateCmd.Flags().Uint64("seed", 0, "Seed for rounds and the player (0 picks one)")
	simulateCmd.Flags().Bool("fast", false, "Run on a simulated clock instead of real time")
	simulateCmd.Flags().BoolP("quiet", "q", false, "Only print the result")
}
