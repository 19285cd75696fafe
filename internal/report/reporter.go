package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/abhisek/wiggles/internal/round"
)

var (
	// ErrDuplicate is delivered when a session was already submitted.
	ErrDuplicate = errors.New("report: session already submitted")

	// ErrClosed is delivered for submissions after Close.
	ErrClosed = errors.New("report: reporter closed")

	// ErrQueueFull is delivered when the outbox cannot take more work.
	ErrQueueFull = errors.New("report: outbox full")
)

// DefaultTimeout bounds a single call to the progress service.
const DefaultTimeout = 5 * time.Second

// Report is a completed session handed to the Reporter.
type Report struct {
	SessionID    string
	GameType     string
	State        round.SessionState
	XPPerCorrect int
	SkillTags    []string
}

// Delivery is the outcome of sending one report. Err is informational;
// callers render the completion screen regardless.
type Delivery struct {
	Log GameLog
	Ack Ack
	Err error
}

// Reporter is a best-effort outbox in front of a ProgressService. Each
// session is sent at most once and failed sends are logged, not retried.
type Reporter struct {
	svc     ProgressService
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.Mutex
	seen   map[string]struct{}
	closed bool

	pending chan reportJob
	done    chan struct{}
}

type reportJob struct {
	ctx context.Context
	log GameLog
	out chan Delivery
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithLogger sets the logger used for failed deliveries.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reporter) { r.logger = l }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Reporter) { r.timeout = d }
}

// NewReporter starts a reporter delivering to svc.
func NewReporter(svc ProgressService, opts ...Option) *Reporter {
	r := &Reporter{
		svc:     svc,
		logger:  slog.Default(),
		timeout: DefaultTimeout,
		seen:    make(map[string]struct{}),
		pending: make(chan reportJob, 32),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	go r.processLoop()
	return r
}

// Submit computes the session result and queues it for delivery. The result
// is returned immediately; the channel yields exactly one Delivery.
func (r *Reporter) Submit(ctx context.Context, rep Report) (SessionResult, <-chan Delivery) {
	result := Finalize(rep.State, rep.XPPerCorrect)
	log := GameLog{
		SessionID: rep.SessionID,
		GameType:  rep.GameType,
		Correct:   result.Correct,
		Total:     result.Total,
		Accuracy:  result.AccuracyPct,
		XPAwarded: result.XPAwarded,
		SkillTags: append([]string(nil), rep.SkillTags...),
	}
	out := make(chan Delivery, 1)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		r.drop(out, log, ErrClosed)
		return result, out
	}
	if _, dup := r.seen[rep.SessionID]; dup {
		out <- Delivery{Log: log, Err: ErrDuplicate}
		return result, out
	}

	select {
	case r.pending <- reportJob{ctx: ctx, log: log, out: out}:
		r.seen[rep.SessionID] = struct{}{}
	default:
		r.drop(out, log, ErrQueueFull)
	}
	return result, out
}

// Close stops accepting reports and waits until queued ones are delivered
// or ctx is done.
func (r *Reporter) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.pending)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Reporter) drop(out chan Delivery, log GameLog, err error) {
	r.logger.Warn("progress report dropped",
		"session", log.SessionID, "game", log.GameType, "error", err)
	out <- Delivery{Log: log, Err: err}
}

func (r *Reporter) processLoop() {
	defer close(r.done)
	for job := range r.pending {
		d := r.deliver(job)
		if d.Err != nil {
			r.logger.Warn("progress report failed",
				"session", job.log.SessionID, "game", job.log.GameType, "error", d.Err)
		} else {
			r.logger.Info("progress report delivered",
				"session", job.log.SessionID, "xp", job.log.XPAwarded, "total_xp", d.Ack.TotalXP)
		}
		job.out <- d
	}
}

func (r *Reporter) deliver(job reportJob) (d Delivery) {
	d.Log = job.log
	defer func() {
		if p := recover(); p != nil {
			d.Err = fmt.Errorf("progress service panicked: %v", p)
		}
	}()

	// Detached from the caller's cancellation; only the per-call timeout applies.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(job.ctx), r.timeout)
	defer cancel()

	d.Ack, d.Err = r.svc.LogGameAndAward(ctx, job.log)
	return d
}
