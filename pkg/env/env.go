// Package env implements the lazy-closure environment chain that binds
// local declarations over the top-level argument map, per spec.md
// §4.4/§9. A local variable's value is not computed until it is
// actually referenced, and referencing it twice evaluates its bound
// expression twice — there is no memoization, matching the "ordinary
// owning pointers, no interior mutability" guidance in spec.md §9.
package env

import (
	"github.com/catamorphism/icu-sub000/pkg/datamodel"
	"github.com/catamorphism/icu-sub000/pkg/diagnostics"
	"github.com/catamorphism/icu-sub000/pkg/value"
)

// Thunk computes a local variable's value on demand, recording any
// diagnostic it encounters rather than returning an error directly —
// formatting always produces a fallback, never aborts.
type Thunk func() (value.Value, *diagnostics.Error)

// frame is one link in the local-declaration chain: a single `let`
// binding closing over its parent environment.
type frame struct {
	parent   *frame
	name     datamodel.VariableName
	fallback string
	thunk    Thunk
}

// Env is the lookup context for one message evaluation: the immutable
// argument map plus zero or more chained local declarations.
type Env struct {
	args   map[string]value.Value
	locals *frame
}

// New returns the root environment over the top-level argument map.
// args may be nil, treated as empty.
func New(args map[string]value.Value) *Env {
	return &Env{args: args}
}

// WithLocal returns a new environment extending e with one more local
// binding. e itself is left unmodified, so sibling bindings (and the
// parent scope they shadow) can be reused safely.
func (e *Env) WithLocal(name datamodel.VariableName, fallback string, thunk Thunk) *Env {
	return &Env{args: e.args, locals: &frame{parent: e.locals, name: name, fallback: fallback, thunk: thunk}}
}

// Lookup resolves name against the local chain first (spec.md's
// "local lookup precedes global lookup", preserving the open question
// of whether a local may shadow an argument of the same name — it may),
// falling back to the argument map. ok is false only when name is
// bound nowhere, the UnresolvedVariable case.
func (e *Env) Lookup(name datamodel.VariableName) (value.Value, ok bool, diag *diagnostics.Error) {
	for f := e.locals; f != nil; f = f.parent {
		if f.name != name {
			continue
		}
		v, err := f.thunk()
		if err != nil {
			return value.Null(), true, err
		}
		return v, true, nil
	}
	if e.args != nil {
		if v, present := e.args[string(name)]; present {
			return v, true, nil
		}
	}
	return value.Null(), false, nil
}

// LocalFallback returns the fallback string recorded for name's local
// binding, if any — used when a failing local-declaration-sourced
// variable must fall back to its own right-hand-side text rather than
// the outer use site's fallback (spec.md §9).
func (e *Env) LocalFallback(name datamodel.VariableName) (string, bool) {
	for f := e.locals; f != nil; f = f.parent {
		if f.name == name {
			return f.fallback, true
		}
	}
	return "", false
}
