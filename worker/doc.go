// Package worker drives hook execution: a Runner that takes one claimed
// hook through a full cycle (execute actions, persist the aggregated
// outcome), a Scheduler that polls the store on a fixed interval with
// backpressure, and a Retrier for explicit operator re-execution.
package worker
