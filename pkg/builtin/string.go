package builtin

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/catamorphism/icu-sub000/pkg/registry"
	"github.com/catamorphism/icu-sub000/pkg/value"
)

// stringFunction implements :string: an identity formatter that also
// supports selection by exact, NFC-normalized string match.
type stringFunction struct{}

func newStringFunction(language.Tag) registry.Function { return stringFunction{} }

func (stringFunction) Format(operand value.Value, options registry.Options) (string, error) {
	s, ok := operand.AsString()
	if !ok {
		return "", fmt.Errorf("string: operand has no string representation")
	}
	return norm.NFC.String(s), nil
}

func (f stringFunction) SelectKeys(operand value.Value, options registry.Options, keys []string) ([]string, error) {
	s, err := f.Format(operand, options)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, k := range keys {
		if norm.NFC.String(k) == s {
			out = append(out, k)
		}
	}
	return out, nil
}
