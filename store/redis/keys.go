package redis

import "github.com/xraph/hookq/hook"

// Redis key naming conventions for hookq data. All keys share a
// configurable namespace (default "hooks") to avoid collisions.

// hookKey returns the Hash key for a hook entity: {ns}:hook:{id}
func (s *Store) hookKey(id string) string { return s.ns + ":hook:" + id }

// dueKey returns the Sorted Set key indexing claimable hooks by their
// run_after time: {ns}:due
func (s *Store) dueKey() string { return s.ns + ":due" }

// statusKey returns the Set key tracking hook IDs in a status: {ns}:status:{status}
func (s *Store) statusKey(status hook.Status) string {
	return s.ns + ":status:" + string(status)
}
