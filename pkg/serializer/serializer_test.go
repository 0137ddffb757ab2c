package serializer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catamorphism/icu-sub000/pkg/datamodel"
	"github.com/catamorphism/icu-sub000/pkg/serializer"
)

func TestSerializeSimplePattern(t *testing.T) {
	msg := datamodel.NewPatternMessage(nil, datamodel.Pattern{datamodel.TextPart("Hello, ")})
	assert.Equal(t, "{Hello, }", serializer.Serialize(msg))
}

func TestSerializeEscapesBraces(t *testing.T) {
	msg := datamodel.NewPatternMessage(nil, datamodel.Pattern{datamodel.TextPart("a {b} c")})
	assert.Equal(t, `{a \{b\} c}`, serializer.Serialize(msg))
}

func TestSerializeExpressionWithFunctionAndOptions(t *testing.T) {
	opts, err := datamodel.NewOptionMap([]datamodel.Option{
		{Name: "style", Value: datamodel.LiteralOperand(datamodel.Literal{Value: "long"})},
	})
	require.NoError(t, err)
	op := datamodel.FunctionCallOperator(datamodel.FunctionName{Sigil: datamodel.SigilDefault, Name: "number"}, opts)
	expr, err := datamodel.NewExpression(datamodel.VariableOperand("count"), &op)
	require.NoError(t, err)

	msg := datamodel.NewPatternMessage(nil, datamodel.Pattern{datamodel.ExpressionPart(expr)})
	assert.Equal(t, "{{$count :number style=long}}", serializer.Serialize(msg))
}

func TestSerializeSelectMessage(t *testing.T) {
	op := datamodel.FunctionCallOperator(datamodel.FunctionName{Sigil: datamodel.SigilDefault, Name: "number"}, datamodel.OptionMap{})
	sel, err := datamodel.NewExpression(datamodel.VariableOperand("count"), &op)
	require.NoError(t, err)

	one := datamodel.Variant{
		Keys:  datamodel.SelectorKeys{datamodel.LiteralKey(datamodel.Literal{Value: "one"})},
		Value: datamodel.Pattern{datamodel.TextPart("one item")},
	}
	other := datamodel.Variant{
		Keys:  datamodel.SelectorKeys{datamodel.WildcardKey()},
		Value: datamodel.Pattern{datamodel.TextPart("many items")},
	}
	msg, err := datamodel.NewSelectMessage(nil, []datamodel.Expression{sel}, []datamodel.Variant{one, other})
	require.NoError(t, err)

	out := serializer.Serialize(msg)
	assert.Contains(t, out, "match {$count :number}")
	assert.Contains(t, out, "when one {one item}")
	assert.Contains(t, out, "when * {many items}")
}

func TestSerializeQuotesUnsafeLiteral(t *testing.T) {
	msg := datamodel.NewPatternMessage(nil, datamodel.Pattern{
		datamodel.ExpressionPart(mustExpr(t, datamodel.LiteralOperand(datamodel.Literal{Value: "has space"}))),
	})
	assert.Equal(t, "{{|has space|}}", serializer.Serialize(msg))
}

func mustExpr(t *testing.T, operand datamodel.Operand) datamodel.Expression {
	t.Helper()
	e, err := datamodel.NewExpression(operand, nil)
	require.NoError(t, err)
	return e
}
