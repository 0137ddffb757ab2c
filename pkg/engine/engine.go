// Package engine implements the MessageFormat 2.0 formatting and
// selection algorithms: turning a checked data model plus an argument
// environment into output text (spec.md §4.6/§4.7).
package engine

import (
	"fmt"
	"sort"

	"golang.org/x/text/language"

	"github.com/catamorphism/icu-sub000/pkg/checker"
	"github.com/catamorphism/icu-sub000/pkg/datamodel"
	"github.com/catamorphism/icu-sub000/pkg/diagnostics"
	"github.com/catamorphism/icu-sub000/pkg/env"
	"github.com/catamorphism/icu-sub000/pkg/registry"
	"github.com/catamorphism/icu-sub000/pkg/value"
)

// Kind tags a Placeholder's position in the resolve-then-format state
// machine: a pattern expression starts Unevaluated, becomes Evaluated
// once its function has produced text, or collapses to Fallback the
// moment anything along the way — variable lookup, function lookup,
// the function call itself — fails. Null marks the no-op placeholder
// for an expression with neither an operand nor a function (never
// constructed by the parser, but kept as an explicit case rather than
// overloading Fallback's zero value).
type Kind int

const (
	KindNull Kind = iota
	KindUnevaluated
	KindEvaluated
	KindFallback
)

// Placeholder is the resolved-but-not-necessarily-formatted state of
// one expression. Format realizes it to text, recording a diagnostic
// if resolution or formatting failed along the way.
type Placeholder struct {
	kind     Kind
	operand  value.Value
	fn       registry.Function
	fnName   string
	opts     registry.Options
	fallback string
	text     string
}

// Format realizes p to its output text. For an Evaluated or Fallback
// placeholder this is a pure accessor; for an Unevaluated one it
// invokes the bound function now.
func (p Placeholder) Format() (string, *diagnostics.Error) {
	switch p.kind {
	case KindEvaluated:
		return p.text, nil
	case KindFallback:
		return "{" + p.fallback + "}", nil
	case KindNull:
		return "", nil
	case KindUnevaluated:
		out, err := p.fn.Format(p.operand, p.opts)
		if err != nil {
			return "{" + p.fallback + "}", diagnostics.NewFormattingError(p.fnName, err)
		}
		return out, nil
	default:
		return "{" + p.fallback + "}", nil
	}
}

// Resolver evaluates expressions against one environment, registry,
// and locale. It is the unit of reuse between pattern formatting and
// selector resolution.
type Resolver struct {
	Env      *env.Env
	Registry *registry.Registry
	Locale   language.Tag
}

// ResolveOperand turns a data-model Operand into a value.Value,
// reporting an UnresolvedVariable diagnostic when a variable reference
// cannot be found.
func (r *Resolver) ResolveOperand(o datamodel.Operand) (value.Value, *diagnostics.Error) {
	v, _, diag := r.resolveOperandFallback(o)
	return v, diag
}

// resolveOperandFallback is ResolveOperand plus the fallback string a
// caller should render if resolution failed. For a variable bound to a
// failing local declaration, that fallback is the declaration's own
// right-hand-side fallback string, not the referencing expression's —
// "when an error occurs in an expression with a variable operand and
// the variable refers to a local declaration, the fallback value is
// formatted based on the expression on the right-hand side of the
// declaration".
func (r *Resolver) resolveOperandFallback(o datamodel.Operand) (value.Value, string, *diagnostics.Error) {
	switch o.Kind {
	case datamodel.OperandLiteral:
		return value.String(o.Literal.Value), "", nil
	case datamodel.OperandVariable:
		v, ok, diag := r.Env.Lookup(o.Variable)
		if diag != nil {
			if fb, has := r.Env.LocalFallback(o.Variable); has {
				return value.Null(), fb, diagnostics.NewUnresolvedVariable(string(o.Variable))
			}
			return value.Null(), "", diag
		}
		if !ok {
			return value.Null(), "", diagnostics.NewUnresolvedVariable(string(o.Variable))
		}
		return v, "", nil
	default:
		return value.Null(), "", nil
	}
}

// resolveOptions resolves each option operand to a value.Value,
// skipping (and reporting) any that fail to resolve rather than
// aborting the whole expression.
func (r *Resolver) resolveOptions(m datamodel.OptionMap, d *diagnostics.Diagnostics) registry.Options {
	out := make(registry.Options, m.Len())
	for _, opt := range m.Options() {
		v, diag := r.ResolveOperand(opt.Value)
		if diag != nil {
			d.Add(diag)
			continue
		}
		out[opt.Name] = v
	}
	return out
}

// Resolve turns an Expression into a Placeholder: a fully-resolved
// operand plus bound function (Unevaluated), or an immediate Fallback
// when the operand, the function name, or a reserved annotation can't
// be used.
func (r *Resolver) Resolve(expr datamodel.Expression, d *diagnostics.Diagnostics) Placeholder {
	fallback := expr.FallbackString()

	operand, overrideFallback, diag := r.resolveOperandFallback(expr.Operand)
	operandFailed := diag != nil
	if operandFailed {
		d.Add(diag)
		if overrideFallback != "" {
			fallback = overrideFallback
		}
	}

	if expr.Operator == nil {
		if operandFailed {
			return Placeholder{kind: KindFallback, fallback: fallback}
		}
		return r.resolveDefaultFormat(operand, fallback, d)
	}

	switch expr.Operator.Kind {
	case datamodel.OperatorReserved:
		d.Add(diagnostics.NewReservedError())
		return Placeholder{kind: KindFallback, fallback: fallback}
	case datamodel.OperatorFunctionCall:
		name := expr.Operator.Function.Display()
		factory, ok := r.Registry.Lookup(expr.Operator.Function.Name)
		if !ok {
			d.Add(diagnostics.NewUnknownFunction(name))
			return Placeholder{kind: KindFallback, fallback: fallback}
		}
		if operandFailed {
			return Placeholder{kind: KindFallback, fallback: fallback}
		}
		fn := factory(r.Locale)
		opts := r.resolveOptions(expr.Operator.Options, d)
		return Placeholder{
			kind:     KindUnevaluated,
			operand:  operand,
			fn:       fn,
			fnName:   name,
			opts:     opts,
			fallback: fallback,
		}
	default:
		return Placeholder{kind: KindFallback, fallback: fallback}
	}
}

func mustString(v value.Value) string {
	if s, ok := v.AsString(); ok {
		return s
	}
	return ""
}

// resolveDefaultFormat applies spec.md §4.6's default-formatting rule
// to a placeholder with an operand and no annotation: a decimal or
// integral value is rendered through the locale's default :number/
// :integer formatting, a date through short/short :datetime, a string
// renders as itself, and an array or object — having no type-implied
// formatter — falls back rather than silently rendering as empty text.
func (r *Resolver) resolveDefaultFormat(operand value.Value, fallback string, d *diagnostics.Diagnostics) Placeholder {
	switch operand.Kind() {
	case value.KindString:
		return Placeholder{kind: KindEvaluated, text: mustString(operand), operand: operand}
	case value.KindInt64:
		return r.formatWithDefault("integer", operand, nil, fallback, d)
	case value.KindDouble, value.KindDecimal:
		return r.formatWithDefault("number", operand, nil, fallback, d)
	case value.KindDate:
		opts := registry.Options{"dateStyle": value.String("short"), "timeStyle": value.String("short")}
		return r.formatWithDefault("datetime", operand, opts, fallback, d)
	case value.KindArray, value.KindObject:
		d.Add(diagnostics.NewFormattingError("(default)", fmt.Errorf("%s value has no default string formatting", operand.Kind())))
		return Placeholder{kind: KindFallback, fallback: fallback}
	default:
		return Placeholder{kind: KindEvaluated, text: mustString(operand), operand: operand}
	}
}

// formatWithDefault looks up name (one of the standard registry's own
// functions) and invokes it with no explicit options, so "default
// formatting" always means exactly what the corresponding annotation
// would produce with its defaults — never a separate, hand-rolled path.
func (r *Resolver) formatWithDefault(name string, operand value.Value, opts registry.Options, fallback string, d *diagnostics.Diagnostics) Placeholder {
	factory, ok := r.Registry.Lookup(name)
	if !ok {
		return Placeholder{kind: KindFallback, fallback: fallback}
	}
	out, err := factory(r.Locale).Format(operand, opts)
	if err != nil {
		d.Add(diagnostics.NewFormattingError(name, err))
		return Placeholder{kind: KindFallback, fallback: fallback}
	}
	return Placeholder{kind: KindEvaluated, text: out, operand: operand}
}

// FormatPattern renders p to text, resolving each expression part in
// turn and appending either its formatted text or its fallback.
func (r *Resolver) FormatPattern(p datamodel.Pattern, d *diagnostics.Diagnostics) string {
	var out []byte
	for _, part := range p {
		switch part.Kind {
		case datamodel.PartText:
			out = append(out, part.Text...)
		case datamodel.PartExpression:
			ph := r.Resolve(*part.Expression, d)
			text, diag := ph.Format()
			if diag != nil {
				d.Add(diag)
			}
			out = append(out, text...)
		}
	}
	return string(out)
}

// bindLocals extends base with every local declaration in bindings, in
// order, so each later binding's closure sees every earlier one. A
// local's resolved value is its expression's formatted text wrapped as
// a string value: once a declaration applies a function, later
// references to the variable see that function's output rather than
// re-resolving the raw operand, matching how a value flows through a
// `let` binding in practice.
func bindLocals(base *env.Env, bindings []datamodel.Binding, reg *registry.Registry, locale language.Tag) *env.Env {
	cur := base
	for _, b := range bindings {
		expr := b.Value
		name := b.Name
		capturedEnv := cur
		thunk := func() (value.Value, *diagnostics.Error) {
			resolver := &Resolver{Env: capturedEnv, Registry: reg, Locale: locale}
			var d diagnostics.Diagnostics
			ph := resolver.Resolve(expr, &d)
			if ph.kind == KindFallback {
				if diag := d.First(); diag != nil {
					return value.Null(), diag
				}
				return value.Null(), diagnostics.NewUnresolvedVariable(string(name))
			}
			text, diag := ph.Format()
			if diag != nil {
				return value.Null(), diag
			}
			return value.String(text), nil
		}
		cur = cur.WithLocal(name, expr.FallbackString(), thunk)
	}
	return cur
}

// Format runs the static checker, builds the local-declaration
// environment, resolves selection if present, and renders the winning
// pattern. It never returns an error: every failure degrades to MF2
// fallback text, recorded in the returned Diagnostics.
func Format(msg datamodel.Message, args map[string]value.Value, reg *registry.Registry, locale language.Tag) (string, *diagnostics.Diagnostics) {
	d := checker.Check(msg)

	e := bindLocals(env.New(args), msg.Bindings, reg, locale)
	resolver := &Resolver{Env: e, Registry: reg, Locale: locale}

	if !msg.IsSelectMessage() {
		return resolver.FormatPattern(msg.Body, d), d
	}

	// spec.md §4.7(a)/§7: a selectors construct that already carries a
	// static error (nonexhaustive pattern, mismatched variant arity, an
	// unannotated selector) never reaches selection at all — the whole
	// result collapses to U+FFFD rather than a best-effort pick.
	if d.HasStatic() {
		return "�", d
	}

	pattern := selectPattern(resolver, msg, d)
	return resolver.FormatPattern(pattern, d), d
}

// selectPattern implements spec.md §4.7(a)-(d): resolve selectors,
// resolve preferences, filter variants, then stably sort them
// right-to-left before choosing the first.
func selectPattern(r *Resolver, msg datamodel.Message, d *diagnostics.Diagnostics) datamodel.Pattern {
	n := len(msg.Selectors)

	// (a) Resolve selectors to a value, its resolved options, and its
	// Selector capability.
	type resolved struct {
		val  value.Value
		sel  registry.Selector
		opts registry.Options
		ok   bool
	}
	selectors := make([]resolved, n)
	for i, sexpr := range msg.Selectors {
		ph := r.Resolve(sexpr, d)
		if ph.kind == KindFallback || ph.kind == KindNull {
			continue
		}
		sel, isSelector := ph.fn.(registry.Selector)
		if !isSelector {
			d.Add(diagnostics.NewSelectorError(ph.fnName, nil))
			continue
		}
		selectors[i] = resolved{val: ph.operand, sel: sel, opts: ph.opts, ok: true}
	}

	// (b) Resolve preferences: for each selector position, ask its
	// function which of the literal keys used at that position match,
	// in preference order.
	preferences := make([][]string, n)
	for i := 0; i < n; i++ {
		var keys []string
		seen := make(map[string]bool)
		for _, v := range msg.Variants {
			if i >= len(v.Keys) || v.Keys[i].IsWildcard() {
				continue
			}
			k := v.Keys[i].String()
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
		if !selectors[i].ok {
			continue
		}
		matched, err := selectors[i].sel.SelectKeys(selectors[i].val, selectors[i].opts, keys)
		if err != nil {
			d.Add(diagnostics.NewSelectorError("selector", err))
			continue
		}
		preferences[i] = matched
	}

	// (c) Filter: keep variants whose every non-wildcard key appears in
	// that position's preferences.
	var filtered []datamodel.Variant
	for _, v := range msg.Variants {
		keep := true
		for i := 0; i < n && i < len(v.Keys); i++ {
			if v.Keys[i].IsWildcard() {
				continue
			}
			if !contains(preferences[i], v.Keys[i].String()) {
				keep = false
				break
			}
		}
		if keep {
			filtered = append(filtered, v)
		}
	}
	if len(filtered) == 0 {
		// No variant matched at all; fall back to the catch-all if one
		// exists, otherwise the first declared variant.
		for _, v := range msg.Variants {
			if v.AllWildcard() {
				return v.Value
			}
		}
		if len(msg.Variants) > 0 {
			return msg.Variants[0].Value
		}
		return nil
	}

	// (d) Sort right-to-left: apply a stable sort per selector position,
	// starting from the last and ending at the first, so the first
	// selector ends up the most significant sort key.
	for i := n - 1; i >= 0; i-- {
		prefs := preferences[i]
		sort.SliceStable(filtered, func(a, b int) bool {
			return rank(filtered[a].Keys, i, prefs) < rank(filtered[b].Keys, i, prefs)
		})
	}

	return filtered[0].Value
}

func rank(keys datamodel.SelectorKeys, i int, prefs []string) int {
	if i >= len(keys) || keys[i].IsWildcard() {
		return len(prefs)
	}
	for idx, p := range prefs {
		if p == keys[i].String() {
			return idx
		}
	}
	return len(prefs)
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
