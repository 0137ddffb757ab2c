// Package builtin implements the standard MessageFormat 2.0 function
// registry: :number, :integer, :datetime, :date, :time, :string — the
// same six functions ICU4C's MessageFormat2 registry ships (spec.md §6,
// SPEC_FULL.md §4.10/§4.11). Locale-sensitive behavior is delegated to
// golang.org/x/text and github.com/dromara/carbon/v2 rather than
// hand-rolled, and :number's currency style additionally uses
// github.com/Rhymond/go-money for minor-unit-correct rendering.
package builtin

import "github.com/catamorphism/icu-sub000/pkg/registry"

// Standard returns a registry populated with the six built-in
// functions, ready to be used directly or cloned and extended with
// application-specific custom functions.
func Standard() *registry.Registry {
	r := registry.New()
	r.RegisterStandard("number", newNumberFunction)
	r.RegisterStandard("integer", newIntegerFunction)
	r.RegisterStandard("datetime", newDateTimeFunction)
	r.RegisterStandard("date", newDateFunction)
	r.RegisterStandard("time", newTimeFunction)
	r.RegisterStandard("string", newStringFunction)
	return r
}
