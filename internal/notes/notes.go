// Package notes writes the short parent-facing note shown after a session.
// A configured language model writes it; otherwise, or when the model
// fails, a template note is used.
package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/wiggles/internal/llm"
	"github.com/abhisek/wiggles/internal/session"
	"github.com/abhisek/wiggles/internal/store"
)

// Note sources.
const (
	SourceLLM      = "llm"
	SourceTemplate = "template"
)

// Purpose labels note requests in the LLM event log.
const Purpose = "session-note"

// Note is a written note.
type Note struct {
	SessionID string
	Text      string
	Source    string
}

// Config tunes generation.
type Config struct {
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the default note settings.
func DefaultConfig() Config {
	return Config{Timeout: 20 * time.Second, MaxTokens: 300, Temperature: 0.4}
}

// Service writes and records notes. The zero provider always uses the
// template.
type Service struct {
	provider llm.Provider
	repo     store.EventRepo
	cfg      Config
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]chan Note
}

// NewService returns a Service. provider and repo may be nil.
func NewService(provider llm.Provider, repo store.EventRepo, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		provider: provider,
		repo:     repo,
		cfg:      cfg,
		logger:   logger,
		pending:  make(map[string]chan Note),
	}
}

// Write produces the note for a completed session and records it.
// It never fails: model errors fall back to the template.
func (s *Service) Write(ctx context.Context, c session.Completion) Note {
	in := InputFor(c)
	note := Note{SessionID: c.SessionID, Source: SourceTemplate, Text: Template(in)}

	if s.provider != nil {
		text, err := s.generate(ctx, in)
		if err == nil {
			note.Text, note.Source = text, SourceLLM
		} else {
			s.logger.Warn("llm note failed, using template", "session_id", c.SessionID, "err", err)
		}
	}

	if s.repo != nil {
		err := s.repo.AppendNote(context.WithoutCancel(ctx), store.NoteData{
			SessionID: note.SessionID,
			Source:    note.Source,
			Text:      note.Text,
		})
		if err != nil {
			s.logger.Warn("note write failed", "session_id", c.SessionID, "err", err)
		}
	}
	return note
}

// Request writes the note in the background. Requests for a session
// already in flight share its result. The channel yields one Note.
func (s *Service) Request(ctx context.Context, c session.Completion) <-chan Note {
	s.mu.Lock()
	if ch, ok := s.pending[c.SessionID]; ok {
		s.mu.Unlock()
		return ch
	}
	ch := make(chan Note, 1)
	s.pending[c.SessionID] = ch
	s.mu.Unlock()

	go func() {
		n := s.Write(ctx, c)
		s.mu.Lock()
		delete(s.pending, c.SessionID)
		s.mu.Unlock()
		ch <- n
		close(ch)
	}()
	return ch
}

type noteOutput struct {
	Note string `json:"note"`
}

func (s *Service) generate(ctx context.Context, in Input) (string, error) {
	ctx = llm.WithPurpose(ctx, Purpose)
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      buildPrompt(in),
		Schema:      NoteSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("note generation: %w", err)
	}

	var out noteOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("parse note response: %w", err)
	}
	text := strings.TrimSpace(out.Note)
	if text == "" {
		return "", fmt.Errorf("empty note")
	}
	return text, nil
}
