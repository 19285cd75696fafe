package progress

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abhisek/wiggles/internal/report"
)

// Error types carried in the error envelope.
const (
	ErrTypeValidation = "validation_error"
	ErrTypeBadRequest = "bad_request"
	ErrTypeInternal   = "internal_error"
)

// DefaultRecentLimit is used when /games/recent has no limit parameter.
const DefaultRecentLimit = 20

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Server exposes a Backend over HTTP.
type Server struct {
	backend Backend
	logger  *slog.Logger
	started time.Time
}

// NewServer creates a Server. A nil logger discards request logs.
func NewServer(backend Backend, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{backend: backend, logger: logger, started: time.Now()}
}

// Routes builds the router with its middleware stack.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/games/log", s.handleLogGame)
		r.Get("/games/recent", s.handleRecent)
		r.Get("/progress", s.handleSummary)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleLogGame(w http.ResponseWriter, r *http.Request) {
	var log report.GameLog
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&log); err != nil {
		writeError(w, http.StatusBadRequest, ErrTypeBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	ack, err := s.backend.LogGameAndAward(r.Context(), log)
	if errors.Is(err, report.ErrInvalidLog) {
		writeError(w, http.StatusUnprocessableEntity, ErrTypeValidation, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := DefaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, ErrTypeBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.backend.Recent(r.Context(), limit)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": entries})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.backend.Summary(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("progress request failed",
		"request_id", middleware.GetReqID(r.Context()),
		"path", r.URL.Path,
		"err", err)
	writeError(w, http.StatusInternalServerError, ErrTypeInternal, "internal error")
}

// requestLogger logs one line per request with its status and latency.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, ErrorBody{Type: errType, Message: message})
}
