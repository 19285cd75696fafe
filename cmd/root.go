package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/wiggles/internal/config"
	"github.com/abhisek/wiggles/internal/logging"
	"github.com/abhisek/wiggles/internal/store"
)

// env is the configuration and logger shared by every command.
type env struct {
	cfg       config.Config
	logger    *slog.Logger
	logCloser io.Closer
}

var global env

var rootCmd = &cobra.Command{
	Use:   "wiggles",
	Short: "Therapy mini-games for kids",
	Long:  "Wiggles: short occupational and speech therapy games played in the terminal.",

	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if global.logCloser != nil {
			global.logCloser.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, "")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides WIGGLES_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides WIGGLES_CONFIG env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads the config, applies the global flags and opens the log.
func setup(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.DB = db
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}

	file := cfg.Log.File
	if file == "" {
		dir, err := store.DataDir()
		if err != nil {
			return fmt.Errorf("resolve data dir: %w", err)
		}
		file = filepath.Join(dir, "wiggles.log")
	}
	logger, closer, err := logging.Open(logging.Options{Level: level, File: file})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	global = env{cfg: cfg, logger: logger, logCloser: closer}
	logger.Debug("config loaded", "path", cfg.Path, "command", cmd.Name())
	return nil
}

// resolveDBPath returns the database path using --db or the config file
// (highest priority), then WIGGLES_DB env var, then the default XDG path.
func resolveDBPath() (string, error) {
	if p := global.cfg.DB; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the configured database.
func openStore() (*store.Store, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}
