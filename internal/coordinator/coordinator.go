// Package coordinator decides between synchronous and background execution
// of the generation and split pipelines. The pipelines themselves are pure;
// the coordinator only owns the single background worker slot, progress
// forwarding, and cancellation.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dbtoolkit/quickquery/internal/generate"
	"github.com/dbtoolkit/quickquery/internal/logging"
	"github.com/dbtoolkit/quickquery/internal/splitter"
)

// ErrWorkerBusy is returned when a background request arrives while another
// one is still in flight. The worker slot is exclusive per coordinator.
var ErrWorkerBusy = errors.New("a background task is already running")

// Config sets the thresholds above which a request runs in the background.
type Config struct {
	// RowThreshold is the data-row count at or above which generation runs
	// as a background task.
	RowThreshold int

	// ByteThreshold is the SQL text size at or above which splitting runs
	// as a background task.
	ByteThreshold int
}

// Coordinator owns one background worker slot.
type Coordinator struct {
	config Config

	mu   sync.Mutex
	busy bool
}

// New creates a Coordinator, applying defaults for unset thresholds.
func New(cfg Config) *Coordinator {
	if cfg.RowThreshold <= 0 {
		cfg.RowThreshold = 500
	}
	if cfg.ByteThreshold <= 0 {
		cfg.ByteThreshold = 1 << 20
	}
	return &Coordinator{config: cfg}
}

// Progress is one forwarded progress message.
type Progress struct {
	Percent int
	Phase   string
}

// Outcome is the terminal payload of a task. Exactly one of Generate or
// Split is populated, matching the entry point that produced the task.
type Outcome struct {
	Generate generate.Result
	Split    splitter.Result
}

// Task is the caller's handle on one request. Synchronous tasks are already
// complete when returned; background tasks complete asynchronously and can
// be cancelled.
type Task struct {
	background bool

	ctx      context.Context
	cancel   context.CancelFunc
	progress chan Progress
	done     chan struct{}

	outcome Outcome
	err     error
}

// Background reports whether the task ran on the background worker.
func (t *Task) Background() bool { return t.background }

// Progress returns the progress message channel. It is closed when the
// task finishes.
func (t *Task) Progress() <-chan Progress { return t.progress }

// Cancel rejects the outstanding request on the caller's side. The worker
// is not interrupted mid-computation; its result is discarded.
func (t *Task) Cancel() { t.cancel() }

// Wait blocks until the task completes or is cancelled. Cancellation is
// surfaced as a context error, distinct from pipeline errors.
func (t *Task) Wait() (Outcome, error) {
	select {
	case <-t.done:
		return t.outcome, t.err
	default:
	}
	select {
	case <-t.done:
		return t.outcome, t.err
	case <-t.ctx.Done():
		return Outcome{}, fmt.Errorf("task cancelled: %w", t.ctx.Err())
	}
}

// Generate runs the generation pipeline, synchronously below the row
// threshold and on the background worker at or above it.
func (c *Coordinator) Generate(ctx context.Context, req generate.Request) (*Task, error) {
	background := len(req.Grid.Rows) >= c.config.RowThreshold
	caller := req.Progress
	return c.start(ctx, background, func(emit generate.ProgressFunc) (Outcome, error) {
		req.Progress = func(percent int, phase string) {
			emit(percent, phase)
			if caller != nil {
				caller(percent, phase)
			}
		}
		result, err := generate.Run(req)
		return Outcome{Generate: result}, err
	})
}

// Split runs the splitter, synchronously below the byte threshold and on
// the background worker at or above it.
func (c *Coordinator) Split(ctx context.Context, sql string, mode splitter.Mode, limit int) (*Task, error) {
	background := len(sql) >= c.config.ByteThreshold
	return c.start(ctx, background, func(emit generate.ProgressFunc) (Outcome, error) {
		emit(10, "splitting output")
		result, err := splitter.Split(sql, mode, limit)
		if err == nil {
			emit(100, "done")
		}
		return Outcome{Split: result}, err
	})
}

func (c *Coordinator) start(ctx context.Context, background bool, fn func(generate.ProgressFunc) (Outcome, error)) (*Task, error) {
	taskCtx, cancel := context.WithCancel(ctx)
	t := &Task{
		background: background,
		ctx:        taskCtx,
		cancel:     cancel,
		progress:   make(chan Progress, 16),
		done:       make(chan struct{}),
	}
	emit := func(percent int, phase string) {
		select {
		case t.progress <- Progress{Percent: percent, Phase: phase}:
		default:
		}
	}

	if !background {
		t.outcome, t.err = fn(emit)
		close(t.progress)
		close(t.done)
		return t, nil
	}

	if !c.acquire() {
		cancel()
		return nil, ErrWorkerBusy
	}
	go func() {
		defer c.release()
		defer close(t.done)
		defer close(t.progress)
		t.outcome, t.err = fn(emit)
		if t.err != nil && taskCtx.Err() != nil {
			logging.Debug("discarding result of cancelled background task")
		}
	}()
	return t, nil
}

func (c *Coordinator) acquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return false
	}
	c.busy = true
	return true
}

func (c *Coordinator) release() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}
