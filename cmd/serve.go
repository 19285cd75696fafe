package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/wiggles/internal/logging"
	"github.com/abhisek/wiggles/internal/progress"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the progress service over HTTP",
	Long:  "Serve the local progress store so other devices can log games and read XP.",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := global.cfg.Serve.Addr
		if a, _ := cmd.Flags().GetString("addr"); a != "" {
			addr = a
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		// Requests are logged to stderr as well as the log file.
		level, _ := global.cfg.LogLevel()
		logger := global.logger
		if global.cfg.Log.File != "-" {
			logger = logging.New(os.Stderr, level)
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           progress.NewServer(progress.NewLocal(st.EventRepo()), logger).Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			logger.Info("progress service listening", "addr", addr)
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			return fmt.Errorf("serve: %w", err)
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides serve.addr)")
}
