package action

import "context"

// HandlerFunc is an invocable action handler. payload is the hook's data
// merged over the binding's defaults; args carries the literal arguments
// of a call-expression identifier (empty for plain identifiers).
type HandlerFunc func(ctx context.Context, payload map[string]any, args ...any) (any, error)

// Binding declares one action within a hook's action list: an identifier
// plus optional default payload fields merged under the hook's own data.
type Binding struct {
	// Action is the action identifier: a dotted method-table path or a
	// call expression with literal arguments.
	Action string
	// Defaults are payload fields the hook data is merged over. The
	// hook's data wins on key conflicts.
	Defaults map[string]any
}

// Bind declares a plain action binding.
func Bind(identifier string) Binding {
	return Binding{Action: identifier}
}

// BindWithDefaults declares a binding with default payload fields.
func BindWithDefaults(identifier string, defaults map[string]any) Binding {
	return Binding{Action: identifier, Defaults: defaults}
}

// MergePayload overlays data on top of defaults. Neither input map is
// mutated; the result is always a fresh map.
func MergePayload(defaults, data map[string]any) map[string]any {
	merged := make(map[string]any, len(defaults)+len(data))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range data {
		merged[k] = v
	}
	return merged
}
