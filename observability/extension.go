package observability

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/hookq/ext"
	"github.com/xraph/hookq/hook"
)

// Compile-time interface checks.
var (
	_ ext.Extension          = (*LoggingExtension)(nil)
	_ ext.HookEnqueued       = (*LoggingExtension)(nil)
	_ ext.BatchClaimed       = (*LoggingExtension)(nil)
	_ ext.ExecutionStarted   = (*LoggingExtension)(nil)
	_ ext.ExecutionCompleted = (*LoggingExtension)(nil)
	_ ext.SchedulerError     = (*LoggingExtension)(nil)

	_ ext.Extension          = (*MetricsExtension)(nil)
	_ ext.HookEnqueued       = (*MetricsExtension)(nil)
	_ ext.BatchClaimed       = (*MetricsExtension)(nil)
	_ ext.ExecutionCompleted = (*MetricsExtension)(nil)
	_ ext.SchedulerError     = (*MetricsExtension)(nil)
)

// LoggingExtension logs every lifecycle event through slog. Register it
// when verbose lifecycle logging is wanted (the engine does so when the
// "log" config option is set).
type LoggingExtension struct {
	logger *slog.Logger
}

// NewLoggingExtension creates a LoggingExtension.
func NewLoggingExtension(logger *slog.Logger) *LoggingExtension {
	return &LoggingExtension{logger: logger}
}

// Name implements ext.Extension.
func (l *LoggingExtension) Name() string { return "observability-logging" }

// OnHookEnqueued implements ext.HookEnqueued.
func (l *LoggingExtension) OnHookEnqueued(_ context.Context, h *hook.Hook) error {
	l.logger.Info("hook enqueued",
		slog.String("hook_id", h.ID.String()),
		slog.String("hook_name", h.Name),
	)
	return nil
}

// OnBatchClaimed implements ext.BatchClaimed.
func (l *LoggingExtension) OnBatchClaimed(_ context.Context, claimed int, outstanding int64) error {
	l.logger.Debug("claim batch queried",
		slog.Int("claimed", claimed),
		slog.Int64("outstanding", outstanding),
	)
	return nil
}

// OnExecutionStarted implements ext.ExecutionStarted.
func (l *LoggingExtension) OnExecutionStarted(_ context.Context, h *hook.Hook) error {
	l.logger.Info("hook execution started",
		slog.String("hook_id", h.ID.String()),
		slog.String("hook_name", h.Name),
		slog.Int("attempt", h.Attempts),
	)
	return nil
}

// OnExecutionCompleted implements ext.ExecutionCompleted.
func (l *LoggingExtension) OnExecutionCompleted(_ context.Context, h *hook.Hook, elapsed time.Duration) error {
	l.logger.Info("hook execution completed",
		slog.String("hook_id", h.ID.String()),
		slog.String("hook_name", h.Name),
		slog.String("status", string(h.Status)),
		slog.Int("results", len(h.Results)),
		slog.Duration("elapsed", elapsed),
	)
	return nil
}

// OnSchedulerError implements ext.SchedulerError.
func (l *LoggingExtension) OnSchedulerError(_ context.Context, err error) error {
	l.logger.Error("scheduler error", slog.String("error", err.Error()))
	return nil
}

// MetricsExtension records lifecycle metrics via the OTel MeterProvider.
// If no MeterProvider is configured globally, noop instruments are used.
type MetricsExtension struct {
	enqueued   metric.Int64Counter
	claimed    metric.Int64Counter
	completed  metric.Int64Counter
	tickErrors metric.Int64Counter
}

// meterName is the instrumentation scope name for hookq lifecycle metrics.
const meterName = "github.com/xraph/hookq/observability"

// NewMetricsExtension creates a MetricsExtension using the global meter.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension with the
// provided meter. This variant allows injecting a MeterProvider for
// testing.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	m := &MetricsExtension{}
	// On error the OTel API returns noop instruments, so the extension
	// degrades gracefully.
	m.enqueued, _ = meter.Int64Counter("hookq.hooks.enqueued",
		metric.WithDescription("Total number of hooks enqueued"))
	m.claimed, _ = meter.Int64Counter("hookq.hooks.claimed",
		metric.WithDescription("Total number of hooks claimed by poll ticks"))
	m.completed, _ = meter.Int64Counter("hookq.hooks.completed",
		metric.WithDescription("Total number of completed hook cycles, by status"))
	m.tickErrors, _ = meter.Int64Counter("hookq.scheduler.errors",
		metric.WithDescription("Total number of scheduler tick errors"))
	return m
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnHookEnqueued implements ext.HookEnqueued.
func (m *MetricsExtension) OnHookEnqueued(ctx context.Context, h *hook.Hook) error {
	m.enqueued.Add(ctx, 1, metric.WithAttributes(attribute.String("hook_name", h.Name)))
	return nil
}

// OnBatchClaimed implements ext.BatchClaimed.
func (m *MetricsExtension) OnBatchClaimed(ctx context.Context, claimed int, _ int64) error {
	m.claimed.Add(ctx, int64(claimed))
	return nil
}

// OnExecutionCompleted implements ext.ExecutionCompleted.
func (m *MetricsExtension) OnExecutionCompleted(ctx context.Context, h *hook.Hook, _ time.Duration) error {
	m.completed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("hook_name", h.Name),
		attribute.String("status", string(h.Status)),
	))
	return nil
}

// OnSchedulerError implements ext.SchedulerError.
func (m *MetricsExtension) OnSchedulerError(ctx context.Context, _ error) error {
	m.tickErrors.Add(ctx, 1)
	return nil
}
