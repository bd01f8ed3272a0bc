package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Recover returns middleware that recovers from panics in the handler
// chain. Panics are converted to errors and logged with a stack trace.
// The executor carries its own last-resort recovery; use this when a
// panic should be intercepted before outer middleware observe it.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, inv *Invocation, next Handler) (out any, retErr error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("action handler panicked",
					slog.String("hook_name", inv.Hook.Name),
					slog.String("hook_id", inv.Hook.ID.String()),
					slog.String("action", inv.Action),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
				out = nil
				retErr = fmt.Errorf("panic in action %s: %v", inv.Action, r)
			}
		}()
		return next(ctx)
	}
}
