// Package id defines the TypeID-based identity type for hooks.
//
// Hook IDs are K-sortable (UUIDv7-based), globally unique, and URL-safe
// in the format "hook_01h2xcejqtf2nbrexx3vqjhp41".
package id

import (
	"database/sql/driver"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the entity type encoded in a TypeID.
type Prefix string

// PrefixHook is the prefix for hook identifiers.
const PrefixHook Prefix = "hook"

// HookID is the identifier for a persisted hook.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type HookID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value HookID.
var Nil HookID

// NewHookID generates a new globally unique hook ID.
func NewHookID() HookID {
	tid, err := typeid.Generate(string(PrefixHook))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", PrefixHook, err))
	}
	return HookID{inner: tid, valid: true}
}

// ParseHookID parses a TypeID string and validates the "hook" prefix.
func ParseHookID(s string) (HookID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}
	if Prefix(tid.Prefix()) != PrefixHook {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", PrefixHook, tid.Prefix())
	}

	return HookID{inner: tid, valid: true}, nil
}

// MustParseHookID is like ParseHookID but panics on error. Use for
// hardcoded ID values.
func MustParseHookID(s string) HookID {
	parsed, err := ParseHookID(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}
	return parsed
}

// String returns the full TypeID string representation (hook_suffix).
// Returns an empty string for the Nil ID.
func (i HookID) String() string {
	if !i.valid {
		return ""
	}
	return i.inner.String()
}

// IsNil reports whether this ID is the zero value.
func (i HookID) IsNil() bool {
	return !i.valid
}

// MarshalText implements encoding.TextMarshaler.
func (i HookID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}
	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *HookID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil
		return nil
	}

	parsed, err := ParseHookID(string(data))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// Value implements driver.Valuer for database storage.
// Returns nil for the Nil ID so optional columns store NULL.
func (i HookID) Value() (driver.Value, error) {
	if !i.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}
	return i.inner.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (i *HookID) Scan(src any) error {
	if src == nil {
		*i = Nil
		return nil
	}

	switch v := src.(type) {
	case string:
		if v == "" {
			*i = Nil
			return nil
		}
		return i.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 0 {
			*i = Nil
			return nil
		}
		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T into HookID", src)
	}
}
