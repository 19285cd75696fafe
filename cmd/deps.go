package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/abhisek/wiggles/internal/catalog"
	"github.com/abhisek/wiggles/internal/feedback"
	"github.com/abhisek/wiggles/internal/llm"
	"github.com/abhisek/wiggles/internal/notes"
	"github.com/abhisek/wiggles/internal/progress"
	"github.com/abhisek/wiggles/internal/report"
	"github.com/abhisek/wiggles/internal/store"
)

const appName = "wiggles"

// loadCatalog returns the override catalog when one is configured,
// otherwise the built-in games.
func loadCatalog() (*catalog.Catalog, error) {
	if path := global.cfg.Catalog; path != "" {
		cat, err := catalog.LoadFile(path, version)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		global.logger.Info("catalog loaded", "path", path, "games", len(cat.Games()))
		return cat, nil
	}
	return catalog.Builtin(version)
}

// progressBackend returns a client for the configured progress endpoint,
// or the local backend on repo.
func progressBackend(repo store.EventRepo) (progress.Backend, error) {
	endpoint := global.cfg.Progress.Endpoint
	if endpoint == "" {
		return progress.NewLocal(repo), nil
	}
	c, err := progress.NewClient(endpoint,
		progress.WithHTTPClient(&http.Client{Timeout: global.cfg.Progress.Timeout}))
	if err != nil {
		return nil, err
	}
	global.logger.Info("using remote progress service", "endpoint", endpoint)
	return c, nil
}

// newReporter starts a reporter on backend. Close it before exit so queued
// results are delivered.
func newReporter(backend progress.Backend) *report.Reporter {
	return report.NewReporter(backend,
		report.WithLogger(global.logger),
		report.WithTimeout(global.cfg.Progress.Timeout))
}

// newNotes builds the parent note service, or nil when notes are off.
// Without a usable LLM provider notes use the template.
func newNotes(ctx context.Context, repo store.EventRepo) *notes.Service {
	if !global.cfg.Notes.Enabled {
		return nil
	}
	provider, err := llm.New(ctx, global.cfg.LLM, repo, global.logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Parent notes will use templates.")
		global.logger.Warn("llm provider unavailable", "err", err)
		provider = nil
	}
	cfg := notes.DefaultConfig()
	if global.cfg.Notes.Timeout > 0 {
		cfg.Timeout = global.cfg.Notes.Timeout
	}
	return notes.NewService(provider, repo, cfg, global.logger)
}

// openSettings opens the saved cue settings. A store that cannot be opened
// keeps settings in memory.
func openSettings() *feedback.SettingsStore {
	s, err := feedback.OpenSettings(appName)
	if err != nil {
		global.logger.Warn("cue settings not persisted", "err", err)
	}
	return s
}
