package datamodel_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catamorphism/icu-sub000/pkg/datamodel"
)

func TestOptionMapRejectsDuplicateName(t *testing.T) {
	opts := []datamodel.Option{
		{Name: "style", Value: datamodel.LiteralOperand(datamodel.Literal{Value: "long"})},
		{Name: "style", Value: datamodel.LiteralOperand(datamodel.Literal{Value: "short"})},
	}
	_, err := datamodel.NewOptionMap(opts)
	require.Error(t, err)
}

func TestOptionMapPreservesInsertionOrder(t *testing.T) {
	opts := []datamodel.Option{
		{Name: "b", Value: datamodel.LiteralOperand(datamodel.Literal{Value: "1"})},
		{Name: "a", Value: datamodel.LiteralOperand(datamodel.Literal{Value: "2"})},
	}
	m, err := datamodel.NewOptionMap(opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, m.Names())

	got := m.Options()
	want := []datamodel.Option{opts[0], opts[1]}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(datamodel.Operand{})); diff != "" {
		t.Errorf("Options() mismatch (-want +got):\n%s", diff)
	}
}

func TestExpressionRequiresOperandOrOperator(t *testing.T) {
	_, err := datamodel.NewExpression(datamodel.NullOperand(), nil)
	require.Error(t, err)

	op := datamodel.FunctionCallOperator(datamodel.FunctionName{Sigil: datamodel.SigilDefault, Name: "number"}, datamodel.OptionMap{})
	_, err = datamodel.NewExpression(datamodel.NullOperand(), &op)
	require.NoError(t, err)

	_, err = datamodel.NewExpression(datamodel.VariableOperand("x"), nil)
	require.NoError(t, err)
}

func TestKeyWildcardSortsAfterLiterals(t *testing.T) {
	lit := datamodel.LiteralKey(datamodel.Literal{Value: "one"})
	wild := datamodel.WildcardKey()
	assert.Equal(t, 1, wild.Compare(lit))
	assert.Equal(t, -1, lit.Compare(wild))
	assert.Equal(t, 0, wild.Compare(datamodel.WildcardKey()))
}

func TestSelectorKeysCompareLexicographic(t *testing.T) {
	a := datamodel.SelectorKeys{datamodel.LiteralKey(datamodel.Literal{Value: "one"}), datamodel.WildcardKey()}
	b := datamodel.SelectorKeys{datamodel.LiteralKey(datamodel.Literal{Value: "one"}), datamodel.LiteralKey(datamodel.Literal{Value: "two"})}
	assert.Equal(t, 1, a.Compare(b))
	assert.Equal(t, -1, b.Compare(a))
}

func TestFunctionNameOrdersBySigilThenName(t *testing.T) {
	def := datamodel.FunctionName{Sigil: datamodel.SigilDefault, Name: "number"}
	open := datamodel.FunctionName{Sigil: datamodel.SigilOpen, Name: "number"}
	assert.Equal(t, -1, def.Compare(open))
	assert.Equal(t, 1, open.Compare(def))
	assert.Equal(t, 0, def.Compare(def))
}

func TestVariantAllWildcard(t *testing.T) {
	v := datamodel.Variant{Keys: datamodel.SelectorKeys{datamodel.WildcardKey(), datamodel.WildcardKey()}}
	assert.True(t, v.AllWildcard())

	v2 := datamodel.Variant{Keys: datamodel.SelectorKeys{datamodel.WildcardKey(), datamodel.LiteralKey(datamodel.Literal{Value: "one"})}}
	assert.False(t, v2.AllWildcard())
}

func TestNewSelectMessageRequiresSelectorsAndVariants(t *testing.T) {
	_, err := datamodel.NewSelectMessage(nil, nil, []datamodel.Variant{{}})
	require.Error(t, err)

	_, err = datamodel.NewSelectMessage(nil, []datamodel.Expression{{}}, nil)
	require.Error(t, err)

	sel := datamodel.Expression{Operand: datamodel.VariableOperand("count")}
	variant := datamodel.Variant{Keys: datamodel.SelectorKeys{datamodel.WildcardKey()}, Value: datamodel.Pattern{datamodel.TextPart("x")}}
	msg, err := datamodel.NewSelectMessage(nil, []datamodel.Expression{sel}, []datamodel.Variant{variant})
	require.NoError(t, err)
	assert.True(t, msg.IsSelectMessage())
}

func TestOperandFallbackString(t *testing.T) {
	assert.Equal(t, "$count", datamodel.VariableOperand("count").FallbackString())
	assert.Equal(t, "hello", datamodel.LiteralOperand(datamodel.Literal{Value: "hello"}).FallbackString())
	assert.Equal(t, "|hi there|", datamodel.LiteralOperand(datamodel.Literal{Value: "hi there", Quoted: true}).FallbackString())
}
