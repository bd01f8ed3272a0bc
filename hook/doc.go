// Package hook defines the persisted hook model, its status lifecycle,
// per-action results, and the store contract backends implement.
package hook
