package store

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// Tags is a list of skill tags stored as a JSON array.
type Tags []string

// Value implements driver.Valuer.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(v any) error {
	var raw []byte
	switch v := v.(type) {
	case nil:
		*t = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("scan tags: unsupported type %T", v)
	}
	return json.Unmarshal(raw, (*[]string)(t))
}

// SessionEventData captures a session lifecycle event
// (start, complete, cancel, replay).
type SessionEventData struct {
	SessionID   string
	GameType    string
	Action      string
	Score       int
	TotalRounds int
	DurationMs  int64
}

// SessionEventRecord is a stored session event.
type SessionEventRecord struct {
	ID          int       `sql:"id"`
	Sequence    int64     `sql:"sequence"`
	Timestamp   time.Time `sql:"timestamp"`
	SessionID   string    `sql:"session_id"`
	GameType    string    `sql:"game_type"`
	Action      string    `sql:"action"`
	Score       int       `sql:"score"`
	TotalRounds int       `sql:"total_rounds"`
	DurationMs  int64     `sql:"duration_ms"`
}

// RoundEventData captures the resolution of one round attempt.
type RoundEventData struct {
	SessionID  string
	RoundIndex int
	Attempt    int
	Outcome    string
	ResponseMs int64
	TimedOut   bool
}

// RoundEventRecord is a stored round event.
type RoundEventRecord struct {
	ID         int       `sql:"id"`
	Sequence   int64     `sql:"sequence"`
	Timestamp  time.Time `sql:"timestamp"`
	SessionID  string    `sql:"session_id"`
	RoundIndex int       `sql:"round_index"`
	Attempt    int       `sql:"attempt"`
	Outcome    string    `sql:"outcome"`
	ResponseMs int64     `sql:"response_ms"`
	TimedOut   bool      `sql:"timed_out"`
}

// GameResultData is a completed game as logged by the progress service.
type GameResultData struct {
	SessionID string
	GameType  string
	Correct   int
	Total     int
	Accuracy  int
	XPAwarded int
	SkillTags []string
}

// GameResultRecord is a stored game result.
type GameResultRecord struct {
	ID        int       `sql:"id"`
	Sequence  int64     `sql:"sequence"`
	Timestamp time.Time `sql:"timestamp"`
	SessionID string    `sql:"session_id"`
	GameType  string    `sql:"game_type"`
	Correct   int       `sql:"correct"`
	Total     int       `sql:"total"`
	Accuracy  int       `sql:"accuracy"`
	XPAwarded int       `sql:"xp_awarded"`
	SkillTags Tags      `sql:"skill_tags"`
}

// NoteData is a parent-facing note written for a session.
type NoteData struct {
	SessionID string
	Source    string // "llm" or "template"
	Text      string
}

// NoteRecord is a stored note.
type NoteRecord struct {
	ID        int       `sql:"id"`
	Sequence  int64     `sql:"sequence"`
	Timestamp time.Time `sql:"timestamp"`
	SessionID string    `sql:"session_id"`
	Source    string    `sql:"source"`
	Text      string    `sql:"text"`
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestRecord is a stored LLM request event.
type LLMRequestRecord struct {
	ID           int       `sql:"id"`
	Sequence     int64     `sql:"sequence"`
	Timestamp    time.Time `sql:"timestamp"`
	Provider     string    `sql:"provider"`
	Model        string    `sql:"model"`
	Purpose      string    `sql:"purpose"`
	InputTokens  int       `sql:"input_tokens"`
	OutputTokens int       `sql:"output_tokens"`
	LatencyMs    int64     `sql:"latency_ms"`
	Success      bool      `sql:"success"`
	ErrorMessage string    `sql:"error_message"`
	RequestBody  string    `sql:"request_body"`
	ResponseBody string    `sql:"response_body"`
}

// LLMUsage aggregates LLM calls for one purpose.
type LLMUsage struct {
	Purpose      string `sql:"purpose"`
	Calls        int    `sql:"calls"`
	InputTokens  int    `sql:"input_tokens"`
	OutputTokens int    `sql:"output_tokens"`
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendSessionEvent records a session lifecycle event.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// AppendRoundEvent records one resolved round attempt.
	AppendRoundEvent(ctx context.Context, data RoundEventData) error

	// SessionEvents returns session events, newest first.
	SessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error)

	// RoundEvents returns the round events of a session in order.
	RoundEvents(ctx context.Context, sessionID string) ([]RoundEventRecord, error)

	// AppendGameResult records a game result. A second result for the same
	// session is ignored and reported as not inserted.
	AppendGameResult(ctx context.Context, data GameResultData) (inserted bool, err error)

	// GameResult returns the result of a session or ErrNotFound.
	GameResult(ctx context.Context, sessionID string) (*GameResultRecord, error)

	// GameResults returns results, newest first.
	GameResults(ctx context.Context, opts QueryOpts) ([]GameResultRecord, error)

	// TotalXP sums the XP of every logged result.
	TotalXP(ctx context.Context) (int, error)

	// AppendNote records a session note.
	AppendNote(ctx context.Context, data NoteData) error

	// Note returns the latest note of a session or ErrNotFound.
	Note(ctx context.Context, sessionID string) (*NoteRecord, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestRecord, error)

	// GetLLMEvent returns one LLM event or ErrNotFound.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestRecord, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
}
