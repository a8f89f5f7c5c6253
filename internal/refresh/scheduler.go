package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MinInterval is the shortest allowed refresh interval.
const MinInterval = 100 * time.Millisecond

// Refresher regenerates sample data. It is satisfied by [*board.Session].
type Refresher interface {
	RefreshSeries() error
}

// Result holds the outcome of one refresh.
type Result struct {
	// At is when the refresh ran.
	At time.Time

	// Err is the error returned by the refresh, or a recovered panic.
	Err error
}

// Scheduler regenerates sample data on a fixed interval.
//
// Results are published on a channel with a small buffer. Sends never
// block, so callers that do not care about results need not drain it.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Scheduler struct {
	target   Refresher
	interval time.Duration
	results  chan Result
	logger   *slog.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	closeOnce sync.Once
}

// NewScheduler creates a [Scheduler] that calls target.RefreshSeries every
// interval. Intervals below [MinInterval] are raised to it.
func NewScheduler(target Refresher, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval < MinInterval {
		interval = MinInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		target:   target,
		interval: interval,
		results:  make(chan Result, 1),
		logger:   logger,
	}
}

// Interval returns the effective refresh interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Results returns a channel that receives refresh outcomes.
// The channel is closed when the scheduler stops.
func (s *Scheduler) Results() <-chan Result {
	return s.results
}

// Start begins the refresh loop in a background goroutine. The first
// refresh happens one interval after Start.
//
// If ctx is nil, context.Background() is used as the parent context.
// Start is idempotent; subsequent calls after the first are no-ops.
// If Stop was called before Start, Start is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer s.closeOnce.Do(func() { close(s.results) })

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				s.emit(Result{At: time.Now(), Err: s.safeRefresh()})
			}
		}
	}()
}

// Stop halts the scheduler and waits for the loop to exit.
//
// Stop is idempotent and safe to call multiple times. Calling Stop before
// Start is a safe no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()

	// ensure channel is closed even if Start() was never called
	s.closeOnce.Do(func() { close(s.results) })
}

func (s *Scheduler) emit(r Result) {
	if r.Err != nil {
		s.logger.Warn("series refresh failed", "error", r.Err)
	}
	select {
	case s.results <- r:
	default:
	}
}

// safeRefresh calls the target with panic recovery.
// A panic is logged with its stack under a correlation id, and returned as
// an error carrying the same id.
func (s *Scheduler) safeRefresh() (err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			s.logger.Error("refresh panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("refresh panic (correlation_id: %s)", correlationID)
		}
	}()
	return s.target.RefreshSeries()
}
