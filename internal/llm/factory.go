package llm

import (
	"context"
	"log/slog"

	"github.com/abhisek/wiggles/internal/store"
)

// New builds the configured provider, recording every request in repo
// (when non-nil) and retrying transient failures. It returns nil, nil
// when cfg selects no provider.
func New(ctx context.Context, cfg Config, repo store.EventRepo, logger *slog.Logger) (Provider, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModels[cfg.Provider]
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var p Provider
	var err error
	switch cfg.Provider {
	case ProviderAnthropic:
		p, err = newAnthropic(cfg)
	case ProviderOpenAI, ProviderOpenRouter:
		p, err = newOpenAI(cfg.Provider, cfg)
	case ProviderGemini:
		p, err = newGemini(ctx, cfg)
	case ProviderMock:
		p = NewMock()
	}
	if err != nil {
		return nil, err
	}

	if repo != nil {
		p = WithRecording(p, repo, logger)
	}
	if cfg.Retry.MaxAttempts > 1 {
		p = WithRetry(p, cfg.Retry, logger)
	}
	logger.Debug("llm provider ready", "provider", p.Name(), "model", p.Model())
	return p, nil
}
