// Package store defines the composite persistence contract a hookq
// backend implements: the hook.Store query/update surface plus backend
// lifecycle (Migrate, Ping, Close).
//
// Backends ship in subpackages: mongo (primary, document per hook),
// redis (hash per hook with a due-queue sorted set) and memory (tests
// and development).
package store
