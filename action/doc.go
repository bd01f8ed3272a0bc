// Package action resolves and executes the action lists configured for
// hooks. A Registry pairs a method table (dotted path → handler) with the
// per-hook action bindings; an Executor fans the bound actions out
// concurrently, enforcing a per-action deadline and aggregating ordered
// results.
//
// Action identifiers come in two forms: a plain dotted path looked up in
// the method table ("mailer.send"), or a call expression with literal
// arguments ("mailer.send('welcome', 42)") parsed by a small whitelisted
// parser — never a general expression evaluator.
package action
