package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/catamorphism/icu-sub000/pkg/builtin"
	"github.com/catamorphism/icu-sub000/pkg/diagnostics"
	"github.com/catamorphism/icu-sub000/pkg/engine"
	"github.com/catamorphism/icu-sub000/pkg/registry"
	"github.com/catamorphism/icu-sub000/pkg/value"

	"github.com/catamorphism/icu-sub000/internal/parser"
)

// pluralSelector is a minimal :plural stand-in, good enough to drive
// the concrete scenarios without pulling in golang.org/x/text/feature/plural's
// full cardinal-rule tables.
type pluralSelector struct{}

func newPluralSelector(language.Tag) registry.Function { return pluralSelector{} }

func (pluralSelector) category(n float64) string {
	if n == 1 {
		return "one"
	}
	return "other"
}

func (s pluralSelector) Format(operand value.Value, options registry.Options) (string, error) {
	n, _ := operand.AsNumeric()
	return s.category(n), nil
}

// SelectKeys prefers an exact numeric-literal match (e.g. variant key
// "1") over the plural category, mirroring :number's exactMatch rule.
func (s pluralSelector) SelectKeys(operand value.Value, options registry.Options, keys []string) ([]string, error) {
	n, _ := operand.AsNumeric()
	ns, _ := operand.AsString()
	cat := s.category(n)
	var out []string
	for _, k := range keys {
		if k == ns {
			out = append(out, k)
		}
	}
	for _, k := range keys {
		if k == cat && k != ns {
			out = append(out, k)
		}
	}
	return out, nil
}

func testRegistry() *registry.Registry {
	r := builtin.Standard()
	r.Register("plural", newPluralSelector)
	return r
}

func format(t *testing.T, source string, args map[string]value.Value) (string, *diagnostics.Diagnostics) {
	t.Helper()
	msg, diags := parser.Parse(source)
	require.Empty(t, diags.Static(), "unexpected static parse errors for %q", source)
	out, d := engine.Format(msg, args, testRegistry(), language.English)
	d.Merge(diags)
	return out, d
}

func TestScenario1SimpleSubstitution(t *testing.T) {
	out, d := format(t, `{Hello, {$userName}!}`, map[string]value.Value{"userName": value.String("John")})
	assert.Nil(t, d.First())
	assert.Equal(t, "Hello, John!", out)
}

func TestScenario2UnresolvedVariableFallsBack(t *testing.T) {
	out, d := format(t, `{Hello, {$userName}!}`, map[string]value.Value{})
	require.NotNil(t, d.First())
	assert.Equal(t, diagnostics.UnresolvedVariable, d.First().Kind)
	assert.Equal(t, "Hello, {$userName}!", out)
}

func TestScenario3SingleSelector(t *testing.T) {
	out, d := format(t, `match {$n :plural} when 1 {one} when * {other}`, map[string]value.Value{"n": value.Int64(1)})
	assert.Nil(t, d.First())
	assert.Equal(t, "one", out)
}

func TestScenario4TwoSelectors(t *testing.T) {
	out, d := format(t,
		`match {$n :plural} {$g :string} when one masculine {his} when * * {their}`,
		map[string]value.Value{"n": value.Int64(1), "g": value.String("masculine")})
	assert.Nil(t, d.First())
	assert.Equal(t, "his", out)
}

func TestScenario5ForwardReferenceInDecls(t *testing.T) {
	out, d := format(t, `let $x = {$y} let $y = {42} {{$x}}`, nil)
	require.NotNil(t, d.First())
	assert.Equal(t, diagnostics.UnresolvedVariable, d.First().Kind)
	assert.Equal(t, "{$y}", out)
}

func TestScenario6BadOptionSyntaxFallsBack(t *testing.T) {
	msg, diags := parser.Parse(`{bad {:placeholder option=}}`)
	require.NotEmpty(t, diags.Static())
	assert.Equal(t, diagnostics.SyntaxError, diags.Static()[0].Kind)

	out, d := engine.Format(msg, nil, testRegistry(), language.English)
	d.Merge(diags)
	assert.Contains(t, out, "{:placeholder}")
}

func TestScenario7TrailingContentAfterMatch(t *testing.T) {
	_, diags := parser.Parse(`match {|x|} when * {foo} extra`)
	require.NotEmpty(t, diags.Static())
	assert.Equal(t, diagnostics.SyntaxError, diags.Static()[len(diags.Static())-1].Kind)
}

func TestParsePatternWithEscapes(t *testing.T) {
	msg, diags := parser.Parse(`{literal \{brace\} and \\backslash}`)
	assert.Empty(t, diags.Static())
	out, d := engine.Format(msg, nil, testRegistry(), language.English)
	assert.Nil(t, d.First())
	assert.Equal(t, "literal {brace} and \\backslash", out)
}

func TestParseQuotedLiteralOperand(t *testing.T) {
	msg, diags := parser.Parse(`{{|hello world|}}`)
	require.Empty(t, diags.Static())
	out, d := engine.Format(msg, nil, testRegistry(), language.English)
	assert.Nil(t, d.First())
	assert.Equal(t, "hello world", out)
}

func TestParseOptionsOnFunctionCall(t *testing.T) {
	msg, diags := parser.Parse(`{{123 :number minimumFractionDigits=2}}`)
	require.Empty(t, diags.Static())
	out, d := engine.Format(msg, nil, testRegistry(), language.English)
	assert.Nil(t, d.First())
	assert.Equal(t, "123.00", out)
}

func TestParseReservedAnnotationProducesReservedError(t *testing.T) {
	msg, diags := parser.Parse(`{{!reserved stuff}}`)
	require.Empty(t, diags.Static())
	out, d := engine.Format(msg, nil, testRegistry(), language.English)
	require.NotEmpty(t, d.Dynamic())
	assert.Equal(t, diagnostics.ReservedError, d.Dynamic()[len(d.Dynamic())-1].Kind)
	assert.Equal(t, "{�}", out)
}

func TestParseDuplicateOptionNameRecordsDiagnostic(t *testing.T) {
	_, diags := parser.Parse(`{{$x :number useGrouping=true useGrouping=false}}`)
	require.NotEmpty(t, diags.Static())
	assert.Equal(t, diagnostics.DuplicateOptionName, diags.Static()[0].Kind)
}
