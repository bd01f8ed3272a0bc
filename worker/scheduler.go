package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/xraph/hookq/ext"
	"github.com/xraph/hookq/hook"
)

// Scheduler is the poll loop: on a fixed interval it checks for
// outstanding work, claims a batch of due hooks, and fans them out to
// the Runner through a bounded semaphore.
//
// Backpressure: a tick never claims new work while hooks from a prior
// batch are still processing, so the in-flight set cannot widen
// unboundedly. Hooks within one batch execute concurrently up to the
// configured concurrency.
type Scheduler struct {
	store      hook.Store
	runner     *Runner
	extensions *ext.Registry
	logger     *slog.Logger

	interval    time.Duration
	batchSize   int
	concurrency int
	maxRetries  int
	limiter     *rate.Limiter

	stopCh  chan struct{}
	loopWG  sync.WaitGroup // poll loop goroutine
	jobWG   sync.WaitGroup // in-flight hook executions
	mu      sync.Mutex
	running bool
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithInterval sets the poll period.
func WithInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.interval = d }
}

// WithBatchSize sets the maximum number of hooks claimed per tick.
// Zero means unbounded.
func WithBatchSize(n int) SchedulerOption {
	return func(s *Scheduler) { s.batchSize = n }
}

// WithConcurrency sets the maximum number of hooks executed in parallel
// within one batch.
func WithConcurrency(n int) SchedulerOption {
	return func(s *Scheduler) { s.concurrency = n }
}

// WithMaxRetries sets the attempts ceiling used to exclude exhausted
// hooks from claiming. Zero means no ceiling.
func WithMaxRetries(n int) SchedulerOption {
	return func(s *Scheduler) { s.maxRetries = n }
}

// WithClaimLimiter rate-limits claim queries across ticks. Useful when
// several schedulers share one store.
func WithClaimLimiter(l *rate.Limiter) SchedulerOption {
	return func(s *Scheduler) { s.limiter = l }
}

// NewScheduler creates a Scheduler.
func NewScheduler(
	store hook.Store,
	runner *Runner,
	extensions *ext.Registry,
	logger *slog.Logger,
	opts ...SchedulerOption,
) *Scheduler {
	s := &Scheduler{
		store:       store,
		runner:      runner,
		extensions:  extensions,
		logger:      logger,
		interval:    5 * time.Second,
		concurrency: 10,
		stopCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	return s
}

// Start launches the poll loop. It returns immediately.
func (s *Scheduler) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	s.running = true

	s.logger.Info("scheduler starting",
		slog.Duration("interval", s.interval),
		slog.Int("batch_size", s.batchSize),
		slog.Int("concurrency", s.concurrency),
	)

	s.loopWG.Add(1)
	go s.pollLoop()

	return nil
}

// Stop commits the scheduler to not scheduling another tick and returns
// without waiting for in-flight hooks — they are allowed to finish.
// Use Drain to await them.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	s.logger.Info("scheduler stopping")
	close(s.stopCh)
}

// Drain blocks until the poll loop has exited and every in-flight hook
// has settled, or until ctx expires.
func (s *Scheduler) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.loopWG.Wait()
		s.jobWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("scheduler drained")
		return nil
	case <-ctx.Done():
		s.logger.Warn("scheduler drain timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) pollLoop() {
	defer s.loopWG.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.tick(context.Background())
		}
	}
}

// tick runs one poll cycle. Store errors abort only this tick; the next
// tick is the retry.
func (s *Scheduler) tick(ctx context.Context) {
	outstanding, err := s.store.CountStatus(ctx, hook.StatusProcessing)
	if err != nil {
		s.logger.Error("outstanding count failed", slog.String("error", err.Error()))
		s.extensions.EmitSchedulerError(ctx, err)
		return
	}
	if outstanding > 0 {
		// Prior work may still be running; claim nothing this tick.
		s.extensions.EmitBatchClaimed(ctx, 0, outstanding)
		return
	}

	if s.limiter != nil && !s.limiter.Allow() {
		return
	}

	claimed, err := s.store.ClaimDue(ctx, hook.ClaimOpts{
		Statuses:    []hook.Status{hook.StatusWaiting, hook.StatusFailed},
		Limit:       s.batchSize,
		MaxAttempts: s.maxRetries,
	})
	if err != nil {
		s.logger.Error("claim failed", slog.String("error", err.Error()))
		s.extensions.EmitSchedulerError(ctx, err)
		return
	}

	s.extensions.EmitBatchClaimed(ctx, len(claimed), 0)
	if len(claimed) == 0 {
		return
	}

	sem := make(chan struct{}, s.concurrency)
	for _, h := range claimed {
		sem <- struct{}{}
		s.jobWG.Add(1)
		go func(h *hook.Hook) {
			defer s.jobWG.Done()
			defer func() { <-sem }()
			if _, err := s.runner.Run(ctx, h); err != nil {
				s.logger.Error("hook cycle aborted",
					slog.String("hook_id", h.ID.String()),
					slog.String("error", err.Error()),
				)
			}
		}(h)
	}
}
