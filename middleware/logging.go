package middleware

import (
	"context"
	"log/slog"
	"time"
)

// Logging returns middleware that logs action start and completion.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, inv *Invocation, next Handler) (any, error) {
		logger.Info("action started",
			slog.String("hook_name", inv.Hook.Name),
			slog.String("hook_id", inv.Hook.ID.String()),
			slog.String("action", inv.Action),
		)

		start := time.Now()
		out, err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("action failed",
				slog.String("hook_name", inv.Hook.Name),
				slog.String("hook_id", inv.Hook.ID.String()),
				slog.String("action", inv.Action),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("action completed",
				slog.String("hook_name", inv.Hook.Name),
				slog.String("hook_id", inv.Hook.ID.String()),
				slog.String("action", inv.Action),
				slog.Duration("elapsed", elapsed),
			)
		}

		return out, err
	}
}
