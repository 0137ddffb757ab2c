package builtin

import (
	"fmt"

	"github.com/dromara/carbon/v2"
	"golang.org/x/text/language"

	"github.com/catamorphism/icu-sub000/pkg/registry"
	"github.com/catamorphism/icu-sub000/pkg/value"
)

// dateTimeFunction implements :datetime, :date, and :time. field
// selects which style option the function reads and which half of the
// value it renders, per spec.md §6.
type dateTimeFunction struct {
	locale language.Tag
	field  dtField
}

type dtField int

const (
	dtBoth dtField = iota
	dtDateOnly
	dtTimeOnly
)

func newDateTimeFunction(locale language.Tag) registry.Function {
	return dateTimeFunction{locale: locale, field: dtBoth}
}
func newDateFunction(locale language.Tag) registry.Function {
	return dateTimeFunction{locale: locale, field: dtDateOnly}
}
func newTimeFunction(locale language.Tag) registry.Function {
	return dateTimeFunction{locale: locale, field: dtTimeOnly}
}

func (f dateTimeFunction) Format(operand value.Value, options registry.Options) (string, error) {
	t, ok := operand.DateVal()
	if !ok {
		return "", fmt.Errorf("datetime: operand is not a date")
	}

	c := carbon.CreateFromStdTime(t)
	if loc := localeToCarbon(f.locale); loc != "" {
		c = c.SetLocale(loc)
	}

	dateStyle := options.GetString("dateStyle", "medium")
	timeStyle := options.GetString("timeStyle", "medium")

	switch f.field {
	case dtDateOnly:
		return c.Format(carbonDateFormat(dateStyle)), nil
	case dtTimeOnly:
		return c.Format(carbonTimeFormat(timeStyle)), nil
	default:
		return c.Format(carbonDateFormat(dateStyle) + " " + carbonTimeFormat(timeStyle)), nil
	}
}

// localeToCarbon maps a BCP-47 tag to one of carbon's supported locale
// codes, falling back to no locale override when carbon has no
// matching translation table — carbon panics on an unrecognized code,
// so an empty result here means "leave the default".
func localeToCarbon(locale language.Tag) string {
	base, _ := locale.Base()
	switch base.String() {
	case "en", "fr", "de", "es", "it", "ja", "ko", "pt", "ru", "zh":
		return base.String()
	default:
		return ""
	}
}

func carbonDateFormat(style string) string {
	switch style {
	case "full":
		return "l, F j, Y"
	case "long":
		return "F j, Y"
	case "short":
		return "n/j/y"
	default: // medium
		return "M j, Y"
	}
}

func carbonTimeFormat(style string) string {
	switch style {
	case "full", "long":
		return "g:i:s A T"
	case "short":
		return "g:i A"
	default: // medium
		return "g:i:s A"
	}
}
