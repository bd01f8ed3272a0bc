package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/xraph/hookq/hook"
	"github.com/xraph/hookq/middleware"
)

// Outcome aggregates the per-action results of one hook cycle. Results
// preserve action-declaration order regardless of completion order;
// Status is failed if at least one action failed, else complete.
type Outcome struct {
	Status  hook.Status
	Results []hook.Result
}

// Failed reports whether any action in the cycle failed.
func (o *Outcome) Failed() bool { return o.Status == hook.StatusFailed }

// Executor fans out the action list for one hook concurrently, enforcing
// a per-action deadline and collecting each action's result or error.
// It returns only after every action has settled — a slow or panicking
// action never blocks or fails its siblings.
type Executor struct {
	registry *Registry
	timeout  time.Duration
	mw       middleware.Middleware
	logger   *slog.Logger
}

// NewExecutor creates an Executor. timeout is the per-action deadline;
// zero means unbounded.
func NewExecutor(registry *Registry, timeout time.Duration, logger *slog.Logger, mws ...middleware.Middleware) *Executor {
	return &Executor{
		registry: registry,
		timeout:  timeout,
		mw:       middleware.Chain(mws...),
		logger:   logger,
	}
}

// Run executes every binding concurrently against the hook's payload and
// aggregates the ordered results. Actions within one hook have no
// dependency on each other: start order is unspecified and a failure in
// one never aborts the others.
func (e *Executor) Run(ctx context.Context, h *hook.Hook, bindings []Binding) *Outcome {
	results := make([]hook.Result, len(bindings))

	var wg sync.WaitGroup
	for i, b := range bindings {
		wg.Add(1)
		go func(idx int, b Binding) {
			defer wg.Done()
			results[idx] = e.runOne(ctx, h, idx, b)
		}(i, b)
	}
	wg.Wait()

	status := hook.StatusComplete
	for _, r := range results {
		if r.Failed() {
			status = hook.StatusFailed
			break
		}
	}
	return &Outcome{Status: status, Results: results}
}

// runOne executes a single action through the middleware chain, bounded
// by the per-action deadline.
func (e *Executor) runOne(ctx context.Context, h *hook.Hook, idx int, b Binding) hook.Result {
	res := hook.Result{Action: b.Action}

	handler, args, err := e.registry.Resolve(b.Action)
	if err != nil {
		res.Error = errorIdentity(err)
		return res
	}

	payload := MergePayload(b.Defaults, h.Data)
	inv := &middleware.Invocation{Hook: h, Action: b.Action, Index: idx}

	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	type settled struct {
		out any
		err error
	}
	done := make(chan settled, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("action handler panicked",
					slog.String("hook_name", h.Name),
					slog.String("hook_id", h.ID.String()),
					slog.String("action", b.Action),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
				done <- settled{err: &panicError{val: r}}
			}
		}()
		out, err := e.mw(runCtx, inv, func(c context.Context) (any, error) {
			return handler(c, payload, args...)
		})
		done <- settled{out: out, err: err}
	}()

	select {
	case s := <-done:
		if s.err != nil {
			res.Error = errorIdentity(s.err)
		} else {
			res.Output = s.out
		}
	case <-runCtx.Done():
		// The deadline cancels observation of the action, not the
		// handler itself: a handler that ignores its context keeps
		// running and is abandoned here.
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			res.Error = fmt.Sprintf("timeout: action %q did not settle within %s", b.Action, e.timeout)
		} else {
			res.Error = errorIdentity(runCtx.Err())
		}
	}
	return res
}

// panicError wraps a recovered panic value as an error.
type panicError struct{ val any }

func (p *panicError) Error() string { return fmt.Sprintf("panic: %v", p.val) }

// errorIdentity renders an error as "type: message" so the recorded
// result keeps the error's identity, not just its text.
func errorIdentity(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%T: %v", err, err)
}
