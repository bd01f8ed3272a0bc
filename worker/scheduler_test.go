package worker_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xraph/hookq/action"
	"github.com/xraph/hookq/backoff"
	"github.com/xraph/hookq/ext"
	"github.com/xraph/hookq/hook"
	"github.com/xraph/hookq/store/memory"
	"github.com/xraph/hookq/worker"
)

// schedHarness wires a scheduler over the shared runner harness.
type schedHarness struct {
	*harness
	scheduler *worker.Scheduler
}

func newSchedHarness(t *testing.T, opts ...worker.SchedulerOption) *schedHarness {
	t.Helper()
	logger := discardLogger()
	st := memory.New()
	reg := action.NewRegistry()
	extensions := ext.NewRegistry(logger)
	executor := action.NewExecutor(reg, 0, logger)
	runner := worker.NewRunner(st, reg, executor, extensions,
		backoff.NewConstant(time.Minute), 3, logger)

	base := []worker.SchedulerOption{
		worker.WithInterval(10 * time.Millisecond),
		worker.WithMaxRetries(3),
	}
	scheduler := worker.NewScheduler(st, runner, extensions, logger, append(base, opts...)...)

	return &schedHarness{
		harness:   &harness{store: st, registry: reg, ext: extensions, runner: runner},
		scheduler: scheduler,
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.After(timeout)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal(msg)
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func TestScheduler_ProcessesDueHooks(t *testing.T) {
	sh := newSchedHarness(t)

	var ran atomic.Int32
	sh.registry.RegisterHandler("counter", func(_ context.Context, _ map[string]any, _ ...any) (any, error) {
		ran.Add(1)
		return nil, nil
	})
	sh.registry.RegisterHook("count.me", action.Bind("counter"))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, _ = sh.store.Insert(ctx, hook.New("count.me", nil))
	}

	if err := sh.scheduler.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer sh.scheduler.Stop()

	waitFor(t, 5*time.Second, func() bool { return ran.Load() == 3 },
		"timed out waiting for hooks to process")

	waitFor(t, 5*time.Second, func() bool {
		n, _ := sh.store.CountStatus(ctx, hook.StatusComplete)
		return n == 3
	}, "timed out waiting for hooks to complete")
}

func TestScheduler_BatchSizeLimitsClaims(t *testing.T) {
	sh := newSchedHarness(t, worker.WithBatchSize(2))

	events := make(chan claimEvent, 64)
	sh.ext.Register(&batchRecorder{events: events})

	sh.registry.RegisterHandler("ok", func(_ context.Context, _ map[string]any, _ ...any) (any, error) {
		return nil, nil
	})
	sh.registry.RegisterHook("batched", action.Bind("ok"))

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, _ = sh.store.Insert(ctx, hook.New("batched", nil))
	}

	if err := sh.scheduler.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	waitFor(t, 5*time.Second, func() bool {
		n, _ := sh.store.CountStatus(ctx, hook.StatusComplete)
		return n == 5
	}, "timed out waiting for all hooks to complete")

	sh.scheduler.Stop()
	if err := sh.scheduler.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}

	close(events)
	for e := range events {
		if e.claimed > 2 {
			t.Errorf("a tick claimed %d hooks, batch size is 2", e.claimed)
		}
	}
}

// claimEvent is one OnBatchClaimed notification.
type claimEvent struct {
	claimed     int
	outstanding int64
}

// batchRecorder forwards claim notifications onto a channel.
type batchRecorder struct {
	events chan<- claimEvent
}

func (b *batchRecorder) Name() string { return "batch-recorder" }

func (b *batchRecorder) OnBatchClaimed(_ context.Context, claimed int, outstanding int64) error {
	select {
	case b.events <- claimEvent{claimed, outstanding}:
	default:
	}
	return nil
}

func TestScheduler_BackpressureSkipsClaim(t *testing.T) {
	sh := newSchedHarness(t)

	release := make(chan struct{})
	sh.registry.RegisterHandler("blocking", func(_ context.Context, _ map[string]any, _ ...any) (any, error) {
		<-release
		return nil, nil
	})
	sh.registry.RegisterHook("slow.hook", action.Bind("blocking"))

	events := make(chan claimEvent, 64)
	sh.ext.Register(&batchRecorder{events: events})

	ctx := context.Background()
	_, _ = sh.store.Insert(ctx, hook.New("slow.hook", nil))

	if err := sh.scheduler.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() {
		close(release)
		sh.scheduler.Stop()
	}()

	// While the first hook is stuck in processing, enqueue another and
	// observe skipped ticks reporting the outstanding count.
	waitFor(t, 5*time.Second, func() bool {
		n, _ := sh.store.CountStatus(ctx, hook.StatusProcessing)
		return n == 1
	}, "first hook never entered processing")

	_, _ = sh.store.Insert(ctx, hook.New("slow.hook", nil))

	waitFor(t, 5*time.Second, func() bool {
		for {
			select {
			case e := <-events:
				if e.claimed == 0 && e.outstanding > 0 {
					return true
				}
			default:
				return false
			}
		}
	}, "no tick reported backpressure while a hook was processing")

	// The second hook must still be unclaimed.
	waiting, _ := sh.store.CountStatus(ctx, hook.StatusWaiting)
	if waiting != 1 {
		t.Errorf("waiting = %d, want 1 — claim must be skipped under backpressure", waiting)
	}
}

func TestScheduler_StopReturnsImmediately(t *testing.T) {
	sh := newSchedHarness(t)

	release := make(chan struct{})
	started := make(chan struct{})
	sh.registry.RegisterHandler("blocking", func(_ context.Context, _ map[string]any, _ ...any) (any, error) {
		close(started)
		<-release
		return nil, nil
	})
	sh.registry.RegisterHook("slow.hook", action.Bind("blocking"))

	ctx := context.Background()
	_, _ = sh.store.Insert(ctx, hook.New("slow.hook", nil))

	if err := sh.scheduler.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-started

	// Stop with an in-flight hook must not block.
	done := make(chan struct{})
	go func() {
		sh.scheduler.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on an in-flight hook")
	}

	// Drain waits for it.
	drainCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := sh.scheduler.Drain(drainCtx); err == nil {
		t.Error("Drain should time out while the hook is stuck")
	}

	close(release)
	if err := sh.scheduler.Drain(context.Background()); err != nil {
		t.Errorf("Drain after release: %v", err)
	}

	// The in-flight hook was allowed to finish.
	waitFor(t, 2*time.Second, func() bool {
		n, _ := sh.store.CountStatus(ctx, hook.StatusComplete)
		return n == 1
	}, "in-flight hook did not settle after Stop")
}

func TestScheduler_StartIdempotent(t *testing.T) {
	sh := newSchedHarness(t)
	ctx := context.Background()

	if err := sh.scheduler.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := sh.scheduler.Start(ctx); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	sh.scheduler.Stop()
	sh.scheduler.Stop() // must not panic
	if err := sh.scheduler.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}
}
