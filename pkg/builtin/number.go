package builtin

import (
	"fmt"
	"strconv"
	"strings"

	money "github.com/Rhymond/go-money"
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/catamorphism/icu-sub000/pkg/registry"
	"github.com/catamorphism/icu-sub000/pkg/value"
)

// numberFunction implements :number and :integer. The two differ only
// in that :integer forces maximumFractionDigits to zero regardless of
// what the caller asked for, per spec.md §6's option table.
type numberFunction struct {
	locale    language.Tag
	forceInt  bool
}

func newNumberFunction(locale language.Tag) registry.Function  { return numberFunction{locale: locale} }
func newIntegerFunction(locale language.Tag) registry.Function { return numberFunction{locale: locale, forceInt: true} }

func (f numberFunction) Format(operand value.Value, options registry.Options) (string, error) {
	n, ok := operand.AsNumeric()
	if !ok {
		return "", fmt.Errorf("number: operand is not numeric")
	}
	opts := parseNumberOptions(options, f.forceInt)

	if opts.style == "currency" {
		return formatCurrency(n, opts)
	}

	nOpts := numberOpts(opts)
	p := message.NewPrinter(f.locale)
	var formatted string
	switch opts.style {
	case "percent":
		formatted = p.Sprint(number.Percent(n, nOpts...))
	default:
		formatted = p.Sprint(number.Decimal(n, nOpts...))
	}

	return applySignDisplay(formatted, n, opts.signDisplay), nil
}

func (f numberFunction) SelectKeys(operand value.Value, options registry.Options, keys []string) ([]string, error) {
	n, ok := operand.AsNumeric()
	if !ok {
		return nil, fmt.Errorf("number: operand is not numeric")
	}
	opts := parseNumberOptions(options, f.forceInt)

	if key, ok := exactMatch(n, keys); ok {
		return []string{key}, nil
	}

	scale := -1
	if opts.forceInt || opts.maxFractionDigits == 0 {
		scale = 0
	}
	nOpts := numberOpts(opts)
	digits := number.Decimal(n, nOpts...).Digits(nil, f.locale, scale)

	rules := plural.Cardinal
	if opts.selectRule == "ordinal" {
		rules = plural.Ordinal
	}
	form := rules.MatchDigits(f.locale, digits.Digits, int(digits.Exp), int(digits.End-digits.Exp))
	category := pluralFormString(form)

	var out []string
	for _, k := range keys {
		if k == category {
			out = append(out, k)
		}
	}
	return out, nil
}

// exactMatch looks for a literal numeric key (any key outside the six
// plural categories) that equals operand exactly, per MF2's rule that
// an explicit numeric variant key takes precedence over plural-rule
// matching.
func exactMatch(n float64, keys []string) (string, bool) {
	for _, k := range keys {
		switch k {
		case "zero", "one", "two", "few", "many", "other":
			continue
		}
		if f, err := strconv.ParseFloat(k, 64); err == nil && f == n {
			return k, true
		}
	}
	return "", false
}

func pluralFormString(f plural.Form) string {
	switch f {
	case plural.Zero:
		return "zero"
	case plural.One:
		return "one"
	case plural.Two:
		return "two"
	case plural.Few:
		return "few"
	case plural.Many:
		return "many"
	default:
		return "other"
	}
}

type numberOptions struct {
	style             string
	signDisplay       string
	selectRule        string
	currency          string
	minIntegerDigits  int
	minFractionDigits int
	maxFractionDigits int
	useGrouping       bool
	forceInt          bool
}

func parseNumberOptions(o registry.Options, forceInt bool) numberOptions {
	opts := numberOptions{
		style:             o.GetString("style", "decimal"),
		signDisplay:       o.GetString("signDisplay", "auto"),
		selectRule:        o.GetString("select", "cardinal"),
		currency:          o.GetString("currency", ""),
		useGrouping:       o.GetString("useGrouping", "true") != "false",
		minFractionDigits: -1,
		maxFractionDigits: -1,
		forceInt:          forceInt,
	}
	if v, ok := o["minimumIntegerDigits"]; ok {
		if f, ok := v.AsNumeric(); ok {
			opts.minIntegerDigits = int(f)
		}
	}
	if v, ok := o["minimumFractionDigits"]; ok {
		if f, ok := v.AsNumeric(); ok {
			opts.minFractionDigits = int(f)
		}
	}
	if v, ok := o["maximumFractionDigits"]; ok {
		if f, ok := v.AsNumeric(); ok {
			opts.maxFractionDigits = int(f)
		}
	}
	if forceInt {
		opts.maxFractionDigits = 0
		if opts.minFractionDigits > 0 {
			opts.minFractionDigits = 0
		}
	}
	return opts
}

func numberOpts(o numberOptions) []number.Option {
	var nOpts []number.Option
	if o.minIntegerDigits > 0 {
		nOpts = append(nOpts, number.MinIntegerDigits(o.minIntegerDigits))
	}
	if o.minFractionDigits >= 0 {
		nOpts = append(nOpts, number.MinFractionDigits(o.minFractionDigits))
	}
	if o.maxFractionDigits >= 0 {
		nOpts = append(nOpts, number.MaxFractionDigits(o.maxFractionDigits))
	}
	if !o.useGrouping {
		nOpts = append(nOpts, number.NoSeparator())
	}
	return nOpts
}

func applySignDisplay(formatted string, n float64, signDisplay string) string {
	switch signDisplay {
	case "always":
		if n >= 0 && !strings.HasPrefix(formatted, "+") {
			return "+" + formatted
		}
	case "never":
		return strings.TrimPrefix(formatted, "-")
	}
	return formatted
}

// formatCurrency renders n as currency via go-money, the minor-unit
// correct path the teacher reaches for rather than hand-rolled
// division/rounding. style=currency requires a currency ISO code.
func formatCurrency(n float64, opts numberOptions) (string, error) {
	if opts.currency == "" {
		return "", fmt.Errorf("number: style=currency requires a currency option")
	}
	code := strings.ToUpper(opts.currency)
	m := money.NewFromFloat(n, code)
	if m == nil {
		return "", fmt.Errorf("number: unsupported currency %q", code)
	}
	display := m.Display()
	if opts.signDisplay == "accounting" && m.IsNegative() {
		display = "(" + m.Absolute().Display() + ")"
	}
	return display, nil
}
