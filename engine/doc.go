// Package engine wires the hookq components — store, action registry,
// executor, runner, scheduler and retrier — into one runnable engine.
//
// Usage:
//
//	reg := action.NewRegistry()
//	reg.RegisterHandler("mailer.send", sendMail)
//	reg.RegisterHook("user.created", action.Bind("mailer.send"))
//
//	eng, err := engine.New(hookq.DefaultConfig(), memory.New(), reg)
//	if err != nil { ... }
//
//	_ = eng.Start(ctx)
//	_ = eng.Hook(ctx, "user.created", map[string]any{"email": "a@b.c"})
//	...
//	_ = eng.Stop(ctx)
package engine
