// Package messageformat2 is the public entry point for the
// MessageFormat 2.0 engine: parse a message once, then format it
// against any number of argument maps.
package messageformat2

import (
	"log/slog"

	"golang.org/x/text/language"

	"github.com/catamorphism/icu-sub000/internal/parser"
	"github.com/catamorphism/icu-sub000/pkg/builtin"
	"github.com/catamorphism/icu-sub000/pkg/checker"
	"github.com/catamorphism/icu-sub000/pkg/datamodel"
	"github.com/catamorphism/icu-sub000/pkg/diagnostics"
	"github.com/catamorphism/icu-sub000/pkg/engine"
	"github.com/catamorphism/icu-sub000/pkg/logger"
	"github.com/catamorphism/icu-sub000/pkg/registry"
	"github.com/catamorphism/icu-sub000/pkg/value"
)

// Formatter is a parsed, checked MessageFormat 2.0 message bound to a
// locale and a function registry. It is safe for concurrent use by
// multiple goroutines formatting the same message with different
// argument maps.
type Formatter struct {
	message  datamodel.Message
	locale   language.Tag
	registry *registry.Registry
	logger   *slog.Logger
}

type config struct {
	locale   language.Tag
	registry *registry.Registry
	logger   *slog.Logger
}

// Option configures a Formatter at construction time.
type Option func(*config)

// WithLocale sets the locale used for locale-sensitive formatting and
// selection (plural rules, number and date layout). The zero value
// (language.Und) falls back to en-US-like defaults supplied by the
// underlying golang.org/x/text tables.
func WithLocale(locale language.Tag) Option {
	return func(c *config) { c.locale = locale }
}

// WithFunctions registers application-specific functions, shadowing
// any built-in of the same name. Names are looked up without their
// sigil, matching the registry's convention.
func WithFunctions(functions map[string]registry.Factory) Option {
	return func(c *config) {
		for name, f := range functions {
			c.registry.Register(name, f)
		}
	}
}

// WithLogger sets the logger used for this Formatter's diagnostic
// trace. If not given, the package-level logger from pkg/logger is
// used.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// New parses source as a MessageFormat 2.0 message and returns a
// Formatter ready to be used with Format. A syntax error never
// prevents construction: a malformed expression is recovered in place,
// and a body that cannot be parsed at all degrades to a single text
// pattern. The returned Diagnostics hold the parser's syntax errors and
// the static checker's findings; Format does not report the syntax
// errors again. Callers that want to reject malformed messages outright
// should check diags.HasStatic().
func New(source string, opts ...Option) (*Formatter, *diagnostics.Diagnostics) {
	msg, diags := parser.Parse(source)

	cfg := &config{
		locale:   language.AmericanEnglish,
		registry: builtin.Standard(),
		logger:   logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	diags.Merge(checker.Check(msg))

	f := &Formatter{
		message:  msg,
		locale:   cfg.locale,
		registry: cfg.registry,
		logger:   cfg.logger,
	}
	return f, diags
}

// Format resolves and renders the message against args. It never
// returns a Go error: every failure — an unresolved variable, an
// unknown function — degrades to MF2 fallback text, with the cause
// recorded in the returned Diagnostics. A malformed expression
// recovered at parse time also renders as fallback text; its syntax
// error is reported by New, not here. Diagnostics are also logged at Debug for
// static issues and Warn for dynamic (resolution-time) ones, following
// the teacher's logging convention of treating MF2 fallback as
// expected rather than exceptional.
func (f *Formatter) Format(args map[string]value.Value) (string, *diagnostics.Diagnostics) {
	out, diags := engine.Format(f.message, args, f.registry, f.locale)
	f.logDiagnostics(diags)
	return out, diags
}

func (f *Formatter) logDiagnostics(diags *diagnostics.Diagnostics) {
	for _, d := range diags.Static() {
		f.logger.Debug("messageformat2: static diagnostic", "kind", d.Kind.String(), "message", d.Message)
	}
	for _, d := range diags.Dynamic() {
		f.logger.Warn("messageformat2: resolution diagnostic", "kind", d.Kind.String(), "message", d.Message)
	}
}

// Locale returns the locale this Formatter resolves functions and
// selectors against.
func (f *Formatter) Locale() language.Tag {
	return f.locale
}
