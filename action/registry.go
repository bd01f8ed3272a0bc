package action

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xraph/hookq"
)

// Registry maps hook names to their ordered action bindings and action
// paths to invocable handlers. It is safe for concurrent use.
//
// The method table is fully resolved before the scheduler starts; action
// identifiers are resolved against it at execution time, so an unknown
// identifier is a per-action execution failure rather than a startup
// failure.
type Registry struct {
	mu    sync.RWMutex
	table map[string]HandlerFunc
	hooks map[string][]Binding
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		table: make(map[string]HandlerFunc),
		hooks: make(map[string][]Binding),
	}
}

// RegisterHandler adds a handler to the method table under the given
// dotted path (e.g. "mailer.send").
func (r *Registry) RegisterHandler(path string, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table[path] = fn
}

// RegisterHook declares the ordered action list for a hook name.
// Re-registering a name replaces its list.
func (r *Registry) RegisterHook(name string, bindings ...Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[name] = append([]Binding(nil), bindings...)
}

// Bindings returns the ordered action list for a hook name.
// Returns false if the name is not registered.
func (r *Registry) Bindings(name string) ([]Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.hooks[name]
	return b, ok
}

// Handles reports whether a hook name has a registered action list.
// Enqueueing a hook for an unregistered name is a no-op.
func (r *Registry) Handles(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.hooks[name]
	return ok
}

// Names returns all registered hook names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.hooks))
	for name := range r.hooks {
		names = append(names, name)
	}
	return names
}

// Resolve resolves an action identifier to a handler and, for call
// expressions, the parsed literal arguments. Unknown identifiers return
// an error wrapping hookq.ErrUnknownAction.
func (r *Registry) Resolve(identifier string) (HandlerFunc, []any, error) {
	path := identifier
	var args []any

	if strings.HasSuffix(identifier, ")") && strings.Contains(identifier, "(") {
		var err error
		path, args, err = parseCall(identifier)
		if err != nil {
			return nil, nil, err
		}
	}

	r.mu.RLock()
	fn, ok := r.table[path]
	r.mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", hookq.ErrUnknownAction, path)
	}
	return fn, args, nil
}
