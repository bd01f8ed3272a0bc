package engine

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/xraph/hookq"
	"github.com/xraph/hookq/action"
	"github.com/xraph/hookq/backoff"
	"github.com/xraph/hookq/ext"
	"github.com/xraph/hookq/hook"
	"github.com/xraph/hookq/id"
	"github.com/xraph/hookq/middleware"
	"github.com/xraph/hookq/observability"
	"github.com/xraph/hookq/worker"
)

// Engine is the top-level hookq runtime. It owns the poll scheduler and
// exposes the public operations: enqueue a hook, retry a hook, start and
// stop processing.
type Engine struct {
	cfg        hookq.Config
	logger     *slog.Logger
	store      hook.Store
	registry   *action.Registry
	extensions *ext.Registry
	runner     *worker.Runner
	scheduler  *worker.Scheduler
	retrier    *worker.Retrier
}

// Option configures the Engine.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	extensions []ext.Extension
	mws        []middleware.Middleware
	backoff    backoff.Strategy
	limiter    *rate.Limiter
}

// WithLogger sets the engine logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithExtension registers a lifecycle extension.
func WithExtension(e ext.Extension) Option {
	return func(o *options) { o.extensions = append(o.extensions, e) }
}

// WithMiddleware appends action middleware. Middlewares run in the
// order given, outermost first.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(o *options) { o.mws = append(o.mws, mws...) }
}

// WithBackoff sets the retry backoff strategy. Defaults to exponential
// with full jitter.
func WithBackoff(s backoff.Strategy) Option {
	return func(o *options) { o.backoff = s }
}

// WithClaimLimiter rate-limits the scheduler's claim queries. Useful
// when several engines share one store.
func WithClaimLimiter(l *rate.Limiter) Option {
	return func(o *options) { o.limiter = l }
}

// New assembles an Engine from the config, store and action registry.
// Hook action lists from cfg.Actions are registered on the registry in
// addition to any lists already registered programmatically.
func New(cfg hookq.Config, st hook.Store, registry *action.Registry, opts ...Option) (*Engine, error) {
	if st == nil {
		return nil, hookq.ErrNoStore
	}
	if registry == nil {
		registry = action.NewRegistry()
	}

	o := &options{logger: slog.Default(), backoff: backoff.DefaultStrategy()}
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger

	for name, list := range cfg.Actions {
		bindings := make([]action.Binding, len(list))
		for i, ac := range list {
			bindings[i] = action.Binding{Action: ac.Action, Defaults: ac.Defaults}
		}
		registry.RegisterHook(name, bindings...)
	}

	extensions := ext.NewRegistry(logger)
	if cfg.Log {
		extensions.Register(observability.NewLoggingExtension(logger))
	}
	for _, e := range o.extensions {
		extensions.Register(e)
	}

	executor := action.NewExecutor(registry, cfg.Timeout, logger, o.mws...)
	runner := worker.NewRunner(st, registry, executor, extensions, o.backoff, cfg.MaxRetries, logger)

	schedOpts := []worker.SchedulerOption{
		worker.WithInterval(cfg.Interval),
		worker.WithBatchSize(cfg.BatchSize),
		worker.WithConcurrency(cfg.Concurrency),
		worker.WithMaxRetries(cfg.MaxRetries),
	}
	if o.limiter != nil {
		schedOpts = append(schedOpts, worker.WithClaimLimiter(o.limiter))
	}
	scheduler := worker.NewScheduler(st, runner, extensions, logger, schedOpts...)

	return &Engine{
		cfg:        cfg,
		logger:     logger,
		store:      st,
		registry:   registry,
		extensions: extensions,
		runner:     runner,
		scheduler:  scheduler,
		retrier:    worker.NewRetrier(st, runner, cfg.MaxRetries, logger),
	}, nil
}

// Registry returns the engine's action registry.
func (e *Engine) Registry() *action.Registry { return e.registry }

// Store returns the engine's hook store.
func (e *Engine) Store() hook.Store { return e.store }

// Hook enqueues a hook under the given name. An unregistered name is a
// silent no-op: nothing is persisted and nil is returned, so callers
// can emit hooks unconditionally and let configuration decide which
// ones are live.
func (e *Engine) Hook(ctx context.Context, name string, data map[string]any) error {
	if !e.registry.Handles(name) {
		e.logger.Debug("hook name not registered, skipping", slog.String("hook_name", name))
		return nil
	}

	h := hook.New(name, data)
	if _, err := e.store.Insert(ctx, h); err != nil {
		return fmt.Errorf("engine: enqueue hook %q: %w", name, err)
	}
	e.extensions.EmitHookEnqueued(ctx, h)
	return nil
}

// RetryHook synchronously re-executes the hook with the given id and
// returns the aggregated outcome.
func (e *Engine) RetryHook(ctx context.Context, hookID id.HookID) (*action.Outcome, error) {
	return e.retrier.Retry(ctx, hookID)
}

// Start verifies store connectivity when the backend supports it, then
// launches the poll scheduler. It returns immediately.
func (e *Engine) Start(ctx context.Context) error {
	if p, ok := e.store.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("engine: store ping: %w", err)
		}
	}
	return e.scheduler.Start(ctx)
}

// Stop shuts the engine down: the scheduler commits to not scheduling
// another tick immediately, then in-flight hooks are drained bounded by
// ctx or, when ctx carries no deadline, the configured shutdown
// timeout. Extensions are notified and the store is closed when the
// backend supports it.
func (e *Engine) Stop(ctx context.Context) error {
	e.scheduler.Stop()

	drainCtx := ctx
	if _, ok := ctx.Deadline(); !ok && e.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		drainCtx, cancel = context.WithTimeout(ctx, e.cfg.ShutdownTimeout)
		defer cancel()
	}
	drainErr := e.scheduler.Drain(drainCtx)

	e.extensions.EmitShutdown(ctx)

	if c, ok := e.store.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			e.logger.Error("store close failed", slog.String("error", err.Error()))
		}
	}
	return drainErr
}
