// Package middleware provides composable middleware for action execution.
// Middleware wraps a single action invocation synchronously and can
// observe or modify it (log, add tracing, record metrics).
package middleware
