package checker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catamorphism/icu-sub000/pkg/checker"
	"github.com/catamorphism/icu-sub000/pkg/datamodel"
	"github.com/catamorphism/icu-sub000/pkg/diagnostics"
)

func annotatedExpr(fn string) datamodel.Expression {
	op := datamodel.FunctionCallOperator(datamodel.FunctionName{Sigil: datamodel.SigilDefault, Name: fn}, datamodel.OptionMap{})
	e, err := datamodel.NewExpression(datamodel.VariableOperand("count"), &op)
	if err != nil {
		panic(err)
	}
	return e
}

func TestCheckFlagsMissingSelectorAnnotation(t *testing.T) {
	sel := datamodel.Expression{Operand: datamodel.VariableOperand("count")}
	variant := datamodel.Variant{
		Keys:  datamodel.SelectorKeys{datamodel.WildcardKey()},
		Value: datamodel.Pattern{datamodel.TextPart("x")},
	}
	msg, err := datamodel.NewSelectMessage(nil, []datamodel.Expression{sel}, []datamodel.Variant{variant})
	require.NoError(t, err)

	d := checker.Check(msg)
	require.Len(t, d.Static(), 1)
	assert.Equal(t, diagnostics.MissingSelectorAnnotation, d.Static()[0].Kind)
}

func TestCheckAllowsAnnotationThroughLocalDeclaration(t *testing.T) {
	binding := datamodel.Binding{Name: "count", Value: annotatedExpr("number")}
	sel := datamodel.Expression{Operand: datamodel.VariableOperand("count")}
	variant := datamodel.Variant{
		Keys:  datamodel.SelectorKeys{datamodel.WildcardKey()},
		Value: datamodel.Pattern{datamodel.TextPart("x")},
	}
	msg, err := datamodel.NewSelectMessage([]datamodel.Binding{binding}, []datamodel.Expression{sel}, []datamodel.Variant{variant})
	require.NoError(t, err)

	d := checker.Check(msg)
	assert.False(t, d.HasStatic())
}

func TestCheckFlagsVariantKeyMismatch(t *testing.T) {
	sel := annotatedExpr("number")
	short := datamodel.Variant{
		Keys:  datamodel.SelectorKeys{datamodel.WildcardKey()},
		Value: datamodel.Pattern{datamodel.TextPart("x")},
	}
	long := datamodel.Variant{
		Keys:  datamodel.SelectorKeys{datamodel.WildcardKey(), datamodel.WildcardKey()},
		Value: datamodel.Pattern{datamodel.TextPart("y")},
	}
	msg, err := datamodel.NewSelectMessage(nil, []datamodel.Expression{sel}, []datamodel.Variant{short, long})
	require.NoError(t, err)

	d := checker.Check(msg)
	var kinds []diagnostics.Kind
	for _, e := range d.Static() {
		kinds = append(kinds, e.Kind)
	}
	assert.Contains(t, kinds, diagnostics.VariantKeyMismatch)
}

func TestCheckFlagsNonexhaustivePattern(t *testing.T) {
	sel := annotatedExpr("number")
	only := datamodel.Variant{
		Keys:  datamodel.SelectorKeys{datamodel.LiteralKey(datamodel.Literal{Value: "one"})},
		Value: datamodel.Pattern{datamodel.TextPart("x")},
	}
	msg, err := datamodel.NewSelectMessage(nil, []datamodel.Expression{sel}, []datamodel.Variant{only})
	require.NoError(t, err)

	d := checker.Check(msg)
	require.Len(t, d.Static(), 1)
	assert.Equal(t, diagnostics.NonexhaustivePattern, d.Static()[0].Kind)
}

func TestCheckPatternMessageHasNoStaticErrors(t *testing.T) {
	msg := datamodel.NewPatternMessage(nil, datamodel.Pattern{datamodel.TextPart("hello")})
	d := checker.Check(msg)
	assert.False(t, d.HasStatic())
}
