package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/wiggles/internal/app"
	"github.com/abhisek/wiggles/internal/feedback"
	"github.com/abhisek/wiggles/internal/progress"
	"github.com/abhisek/wiggles/internal/screens/play"
	"github.com/abhisek/wiggles/internal/session"
)

// drainTimeout bounds how long exit waits for queued progress reports.
const drainTimeout = 5 * time.Second

var playCmd = &cobra.Command{
	Use:   "play <game>",
	Short: "Start a game directly",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, args[0])
	},
}

// runApp opens the store, builds dependencies, and launches the TUI.
// start, when set, opens that game over the home screen.
func runApp(cmd *cobra.Command, start string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	if start != "" {
		if _, ok := cat.Get(start); !ok {
			return fmt.Errorf("unknown game %q (see `wiggles games`)", start)
		}
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
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
		defer cancel()
		if err := reporter.Close(drainCtx); err != nil {
			global.logger.Warn("progress reports not delivered", "err", err)
		}
	}()

	settings := openSettings()
	opts := app.Options{
		Catalog:  cat,
		Progress: backend,
		Notes:    progress.NewLocal(repo),
		Settings: settings,
		Logger:   global.logger,
		Start:    start,
		Play: play.Deps{
			Session: session.Deps{
				Repo:     repo,
				Reporter: reporter,
				Logger:   global.logger,
			},
			Sounder:  feedback.NewBell(os.Stderr),
			Buzzer:   feedback.NopBuzzer{},
			Settings: settings,
			Notes:    newNotes(ctx, repo),
		},
	}

	global.logger.Info("starting tui", "games", len(cat.Games()), "start", start)
	return app.Run(opts)
}
