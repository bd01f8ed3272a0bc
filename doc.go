// Package hookq is a durable, poll-based hook scheduler for Go. Callers
// enqueue named hooks with a payload; a background scheduler periodically
// claims due hooks from a persistent store, fans out the configured action
// list for each, records per-action outcomes, and advances the hook through
// its status lifecycle (waiting, processing, complete, failed).
//
// Work survives process restarts because all cross-cycle state lives in the
// store. Execution is at-least-once: the claim is an atomic conditional
// update, but hookq does not attempt exactly-once guarantees or distributed
// consensus across scheduler instances.
//
// # Quick Start
//
//	reg := action.NewRegistry()
//	reg.RegisterHandler("mailer.send", sendMail)
//	reg.RegisterHook("welcome", action.Bind("mailer.send"))
//
//	eng, err := engine.New(hookq.DefaultConfig(), memory.New(), reg)
//	if err != nil { ... }
//	eng.Start(ctx)
//	eng.Hook(ctx, "welcome", map[string]any{"userId": 42})
//
// # Architecture
//
// Each subsystem lives in its own package: hook (model and store contract),
// action (registry and concurrent executor), worker (runner, scheduler,
// retrier), ext (lifecycle extensions), backoff (retry delay strategies).
// A store backend implements hook.Store; mongo and redis backends ship in
// store/, plus an in-memory backend for tests. The engine package wires
// everything together.
package hookq
