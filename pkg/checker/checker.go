// Package checker implements the MessageFormat 2.0 static checks: the
// invariants that can be verified from a parsed message alone, before
// any argument map is available.
package checker

import (
	"github.com/catamorphism/icu-sub000/pkg/datamodel"
	"github.com/catamorphism/icu-sub000/pkg/diagnostics"
)

// Check walks msg and returns every static diagnostic it can find. It
// never stops at the first problem: the checker reports everything it
// sees in one pass.
func Check(msg datamodel.Message) *diagnostics.Diagnostics {
	var d diagnostics.Diagnostics

	annotated := annotatedVariables(msg.Bindings)

	checkOptionArity(msg.Bindings, &d)

	if msg.IsSelectMessage() {
		for _, sel := range msg.Selectors {
			checkExpressionOptionArity(sel, &d)
		}
		checkSelectorAnnotations(msg.Selectors, annotated, &d)
		checkVariantArity(len(msg.Selectors), msg.Variants, &d)
		checkExhaustive(msg.Variants, &d)
		for _, v := range msg.Variants {
			checkOptionArityInPattern(v.Value, &d)
		}
	} else {
		checkOptionArityInPattern(msg.Body, &d)
	}

	return &d
}

// annotatedVariables computes, for each local declaration in source
// order, whether the bound expression is annotated: either it carries
// a function-call operator directly, or its operand is a variable that
// is itself already annotated. This is the two-point lattice spec.md
// §4.3 describes — a variable is either annotated or it is not, and
// annotation propagates through chained local declarations but not
// through the variants of a selector.
func annotatedVariables(bindings []datamodel.Binding) map[datamodel.VariableName]bool {
	annotated := make(map[datamodel.VariableName]bool, len(bindings))
	for _, b := range bindings {
		annotated[b.Name] = isAnnotated(b.Value, annotated)
	}
	return annotated
}

func isAnnotated(e datamodel.Expression, annotated map[datamodel.VariableName]bool) bool {
	if e.Operator != nil && e.Operator.Kind == datamodel.OperatorFunctionCall {
		return true
	}
	if e.Operand.Kind == datamodel.OperandVariable {
		return annotated[e.Operand.Variable]
	}
	return false
}

// checkSelectorAnnotations requires every selector expression to be
// annotated, directly or via a chain of local declarations.
func checkSelectorAnnotations(selectors []datamodel.Expression, annotated map[datamodel.VariableName]bool, d *diagnostics.Diagnostics) {
	for _, sel := range selectors {
		if isAnnotated(sel, annotated) {
			continue
		}
		name := ""
		if sel.Operand.Kind == datamodel.OperandVariable {
			name = string(sel.Operand.Variable)
		}
		d.Add(diagnostics.NewMissingSelectorAnnotation(sel.Pos, name))
	}
}

// checkVariantArity requires every variant's key count to equal the
// selector count.
func checkVariantArity(selectorCount int, variants []datamodel.Variant, d *diagnostics.Diagnostics) {
	for _, v := range variants {
		if len(v.Keys) != selectorCount {
			d.Add(diagnostics.NewVariantKeyMismatch(v.Pos))
		}
	}
}

// checkExhaustive requires at least one variant whose keys are all the
// wildcard `*`, so that selection can never fail to produce a pattern.
// The reported position anchors on the first variant, since the
// missing catch-all is a property of the construct as a whole rather
// than of any single variant.
func checkExhaustive(variants []datamodel.Variant, d *diagnostics.Diagnostics) {
	for _, v := range variants {
		if v.AllWildcard() {
			return
		}
	}
	var pos diagnostics.Position
	if len(variants) > 0 {
		pos = variants[0].Pos
	}
	d.Add(diagnostics.NewNonexhaustivePattern(pos))
}

// checkOptionArity re-asserts that no expression's option list carries
// a duplicate name. datamodel.NewOptionMap already rejects duplicates
// at build time, so this can only fail if a caller constructs an
// OptionMap by some other means; kept as a defensive, documented
// invariant rather than trusted silently.
func checkOptionArity(bindings []datamodel.Binding, d *diagnostics.Diagnostics) {
	for _, b := range bindings {
		checkExpressionOptionArity(b.Value, d)
	}
}

func checkOptionArityInPattern(p datamodel.Pattern, d *diagnostics.Diagnostics) {
	for _, part := range p {
		if part.Kind == datamodel.PartExpression && part.Expression != nil {
			checkExpressionOptionArity(*part.Expression, d)
		}
	}
}

func checkExpressionOptionArity(e datamodel.Expression, d *diagnostics.Diagnostics) {
	if e.Operator == nil || e.Operator.Kind != datamodel.OperatorFunctionCall {
		return
	}
	seen := make(map[string]bool, e.Operator.Options.Len())
	for _, name := range e.Operator.Options.Names() {
		if seen[name] {
			d.Add(diagnostics.NewDuplicateOptionName(e.Pos, name))
		}
		seen[name] = true
	}
}
