// Package observability provides ready-made hookq extensions: a verbose
// lifecycle logger (enabled by the "log" config option) and an
// OpenTelemetry metrics extension tracking enqueue, claim and execution
// counts.
package observability
