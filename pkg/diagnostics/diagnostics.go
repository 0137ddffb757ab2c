// Package diagnostics provides the error taxonomy and accumulator used
// across the parser, static checker, and formatter.
package diagnostics

import "fmt"

// Kind classifies a diagnostic as static (determined from source alone)
// or dynamic (determined from the argument map at format time).
type Kind int

const (
	// Static error kinds.
	SyntaxError Kind = iota
	DuplicateOptionName
	VariantKeyMismatch
	NonexhaustivePattern
	MissingSelectorAnnotation

	// Dynamic error kinds.
	UnresolvedVariable
	UnknownFunction
	FormattingError
	SelectorError
	ReservedError
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "syntax-error"
	case DuplicateOptionName:
		return "duplicate-option-name"
	case VariantKeyMismatch:
		return "variant-key-mismatch"
	case NonexhaustivePattern:
		return "nonexhaustive-pattern"
	case MissingSelectorAnnotation:
		return "missing-selector-annotation"
	case UnresolvedVariable:
		return "unresolved-variable"
	case UnknownFunction:
		return "unknown-function"
	case FormattingError:
		return "formatting-error"
	case SelectorError:
		return "selector-error"
	case ReservedError:
		return "reserved-error"
	default:
		return "unknown"
	}
}

// IsStatic reports whether the kind belongs to the static-error set.
func (k Kind) IsStatic() bool {
	return k <= MissingSelectorAnnotation
}

// Position locates a diagnostic within the source text.
type Position struct {
	Offset int // byte offset into source
	Line   int // 1-based line number
	Column int // 1-based column, counted in code points within the line
}

// Error is a single recorded diagnostic.
type Error struct {
	Kind     Kind
	Message  string
	Name     string // offending name (variable, function, option), if any
	Pos      Position
	Expected string // for syntax errors that expected specific text
	Cause    error  // underlying function error, if any
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// newError builds an Error and fills in a default message when one
// wasn't supplied.
func newError(kind Kind, pos Position, name, message string, cause error) *Error {
	if message == "" {
		if name != "" {
			message = fmt.Sprintf("%s: %s", kind, name)
		} else {
			message = kind.String()
		}
	}
	return &Error{Kind: kind, Message: message, Name: name, Pos: pos, Cause: cause}
}

// NewSyntaxError records a parse failure. expected, when non-empty, is
// the token the parser expected to find at pos.
func NewSyntaxError(pos Position, expected string) *Error {
	msg := "syntax error"
	if expected != "" {
		msg = fmt.Sprintf("missing %q", expected)
	}
	return &Error{Kind: SyntaxError, Message: msg, Pos: pos, Expected: expected}
}

// NewDuplicateOptionName records a repeated option name within one
// expression's option list.
func NewDuplicateOptionName(pos Position, name string) *Error {
	return newError(DuplicateOptionName, pos, name, fmt.Sprintf("duplicate option name %q", name), nil)
}

// NewVariantKeyMismatch records a variant whose key count differs from
// the selector count.
func NewVariantKeyMismatch(pos Position) *Error {
	return newError(VariantKeyMismatch, pos, "", "variant key count does not match selector count", nil)
}

// NewNonexhaustivePattern records a select message with no all-wildcard
// variant.
func NewNonexhaustivePattern(pos Position) *Error {
	return newError(NonexhaustivePattern, pos, "", "no variant matches every selector (missing catch-all)", nil)
}

// NewMissingSelectorAnnotation records a selector expression whose
// operand variable is not annotated.
func NewMissingSelectorAnnotation(pos Position, name string) *Error {
	return newError(MissingSelectorAnnotation, pos, name, fmt.Sprintf("selector $%s has no function annotation", name), nil)
}

// NewUnresolvedVariable records a reference to an undeclared variable.
func NewUnresolvedVariable(name string) *Error {
	return newError(UnresolvedVariable, Position{}, name, fmt.Sprintf("unresolved variable $%s", name), nil)
}

// NewUnknownFunction records a reference to a function name not present
// in the registry.
func NewUnknownFunction(name string) *Error {
	return newError(UnknownFunction, Position{}, name, fmt.Sprintf("unknown function %s", name), nil)
}

// NewFormattingError records a formatter invocation failure.
func NewFormattingError(name string, cause error) *Error {
	return newError(FormattingError, Position{}, name, fmt.Sprintf("formatting error in %s: %v", name, cause), cause)
}

// NewSelectorError records a selector invocation failure, or use of a
// formatter-only / unknown function as a selector.
func NewSelectorError(name string, cause error) *Error {
	msg := fmt.Sprintf("selector error in %s", name)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return newError(SelectorError, Position{}, name, msg, cause)
}

// NewReservedError records formatting of a reserved annotation.
func NewReservedError() *Error {
	return newError(ReservedError, Position{}, "", "reserved annotations have no defined formatting semantics", nil)
}

// Diagnostics accumulates the static and dynamic errors produced by a
// single parse-and-format call. It is never used to throw: every
// component that can fail calls Add and continues.
type Diagnostics struct {
	static  []*Error
	dynamic []*Error
}

// Add records e in the appropriate bucket based on its Kind.
func (d *Diagnostics) Add(e *Error) {
	if e == nil {
		return
	}
	if e.Kind.IsStatic() {
		d.static = append(d.static, e)
	} else {
		d.dynamic = append(d.dynamic, e)
	}
}

// Static returns the recorded static errors, in recording order.
func (d *Diagnostics) Static() []*Error { return d.static }

// Dynamic returns the recorded dynamic errors, in recording order.
func (d *Diagnostics) Dynamic() []*Error { return d.dynamic }

// HasStatic reports whether any static error was recorded.
func (d *Diagnostics) HasStatic() bool { return len(d.static) > 0 }

// First returns the call's status: the first static error if any,
// otherwise the first dynamic error, otherwise nil.
func (d *Diagnostics) First() *Error {
	if len(d.static) > 0 {
		return d.static[0]
	}
	if len(d.dynamic) > 0 {
		return d.dynamic[0]
	}
	return nil
}

// Merge appends other's errors onto d, preserving order within each
// bucket.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.static = append(d.static, other.static...)
	d.dynamic = append(d.dynamic, other.dynamic...)
}
