package middleware

import (
	"context"

	"github.com/xraph/hookq/hook"
)

// Invocation describes one action invocation within a hook cycle.
type Invocation struct {
	// Hook is the hook whose action list is being executed.
	Hook *hook.Hook
	// Action is the action identifier as declared in the hook's list.
	Action string
	// Index is the action's declaration position.
	Index int
}

// Handler is the terminal function that executes the action and returns
// its output.
type Handler func(ctx context.Context) (any, error)

// Middleware wraps a Handler with cross-cutting logic. It receives the
// current context, the invocation being executed, and the next handler to
// call. Middleware MUST call next to continue the chain (unless
// short-circuiting on error).
type Middleware func(ctx context.Context, inv *Invocation, next Handler) (any, error)

// Chain composes multiple middleware into a single Middleware.
// Middleware are applied right-to-left: the first middleware in the
// list is the outermost wrapper.
//
// Example: Chain(logging, tracing, metrics) executes as:
//
//	logging → tracing → metrics → handler
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, inv *Invocation, next Handler) (any, error) {
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) (any, error) {
				return mw(ctx, inv, prev)
			}
		}
		return h(ctx)
	}
}
