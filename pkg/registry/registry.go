// Package registry implements the MessageFormat 2.0 function registry:
// a locale-parameterized lookup from function name (without its sigil)
// to the Function capability spec.md §4.5/§6 describes.
package registry

import (
	"sync"

	"golang.org/x/text/language"

	"github.com/catamorphism/icu-sub000/pkg/value"
)

// Options is the resolved (name -> value) option map passed to a
// Function; unlike datamodel.OptionMap its values have already been
// looked up from the environment, not left as unresolved operands.
type Options map[string]value.Value

// GetString returns options[name] coerced to a string, or fallback
// when absent or not string-shaped.
func (o Options) GetString(name, fallback string) string {
	v, ok := o[name]
	if !ok {
		return fallback
	}
	s, ok := v.AsString()
	if !ok {
		return fallback
	}
	return s
}

// Function is the capability a registered name resolves to: turning an
// operand plus options into formatted text.
type Function interface {
	Format(operand value.Value, options Options) (string, error)
}

// Selector is the additional capability a function offers when it may
// also appear in a `match` selector position (spec.md §4.7(a)).
// Functions that do not implement Selector (e.g. :datetime) may only be
// used in formatting position; using one as a selector records a
// dynamic SelectorError (spec.md §7).
type Selector interface {
	Function
	SelectKeys(operand value.Value, options Options, keys []string) ([]string, error)
}

// Factory builds a Function bound to a resolved locale. Built-in
// functions are locale-sensitive (plural rules, calendar layout);
// custom functions may ignore the locale argument entirely.
type Factory func(locale language.Tag) Function

// Registry holds the standard built-in factories plus any
// application-registered custom overlay, and is safe for concurrent
// use by multiple Formatter instances sharing one registry.
type Registry struct {
	mu       sync.RWMutex
	standard map[string]Factory
	custom   map[string]Factory
}

// New returns an empty registry. Callers typically start from
// builtin.Standard() and layer custom functions on top via Register.
func New() *Registry {
	return &Registry{standard: make(map[string]Factory), custom: make(map[string]Factory)}
}

// RegisterStandard adds name to the registry's built-in set. Used by
// builtin.Standard; application code should use Register instead.
func (r *Registry) RegisterStandard(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.standard[name] = f
}

// Register adds or replaces a custom function, shadowing any built-in
// of the same name.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.custom[name] = f
}

// Lookup resolves name, preferring a custom registration over the
// standard set.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if f, ok := r.custom[name]; ok {
		return f, true
	}
	f, ok := r.standard[name]
	return f, ok
}

// Clone returns a new Registry sharing no mutable state with r, useful
// for a Formatter that wants to layer its own custom functions without
// affecting a shared base registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := New()
	for k, v := range r.standard {
		out.standard[k] = v
	}
	for k, v := range r.custom {
		out.custom[k] = v
	}
	return out
}

// Names returns every registered name across both sets, standard first.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.standard)+len(r.custom))
	for k := range r.standard {
		names = append(names, k)
	}
	for k := range r.custom {
		names = append(names, k)
	}
	return names
}
