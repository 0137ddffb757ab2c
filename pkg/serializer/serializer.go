// Package serializer renders a parsed data model back to MessageFormat
// 2.0 source text. It produces a canonical re-escaping, not a
// byte-for-byte reproduction of the original source (spec.md's Non-goals
// explicitly excludes exact round-tripping).
package serializer

import (
	"strings"

	"github.com/catamorphism/icu-sub000/pkg/datamodel"
)

// Serialize renders msg as MessageFormat 2.0 source text.
func Serialize(msg datamodel.Message) string {
	var b strings.Builder
	writeBindings(&b, msg.Bindings)
	if msg.IsSelectMessage() {
		writeSelectMessage(&b, msg)
	} else {
		b.WriteString("{")
		writePattern(&b, msg.Body)
		b.WriteString("}")
	}
	return b.String()
}

func writeBindings(b *strings.Builder, bindings []datamodel.Binding) {
	for _, bind := range bindings {
		b.WriteString("let ")
		b.WriteString(bind.Name.Display())
		b.WriteString(" = {")
		writeExpression(b, bind.Value)
		b.WriteString("}\n")
	}
}

func writeSelectMessage(b *strings.Builder, msg datamodel.Message) {
	b.WriteString("match")
	for _, sel := range msg.Selectors {
		b.WriteString(" {")
		writeExpression(b, sel)
		b.WriteString("}")
	}
	b.WriteString("\n")
	for _, v := range msg.Variants {
		b.WriteString("when")
		for _, k := range v.Keys {
			b.WriteString(" ")
			writeKey(b, k)
		}
		b.WriteString(" {")
		writePattern(b, v.Value)
		b.WriteString("}\n")
	}
}

func writeKey(b *strings.Builder, k datamodel.Key) {
	if k.IsWildcard() {
		b.WriteString("*")
		return
	}
	writeLiteral(b, k.Literal)
}

func writePattern(b *strings.Builder, p datamodel.Pattern) {
	for _, part := range p {
		switch part.Kind {
		case datamodel.PartText:
			b.WriteString(escapeText(part.Text))
		case datamodel.PartExpression:
			b.WriteString("{")
			writeExpression(b, *part.Expression)
			b.WriteString("}")
		}
	}
}

func writeExpression(b *strings.Builder, e datamodel.Expression) {
	wrote := false
	if e.Operand.Kind != datamodel.OperandNull {
		writeOperand(b, e.Operand)
		wrote = true
	}
	if e.Operator != nil {
		if wrote {
			b.WriteString(" ")
		}
		writeOperator(b, *e.Operator)
	}
}

func writeOperand(b *strings.Builder, o datamodel.Operand) {
	switch o.Kind {
	case datamodel.OperandVariable:
		b.WriteString(o.Variable.Display())
	case datamodel.OperandLiteral:
		writeLiteral(b, o.Literal)
	}
}

func writeLiteral(b *strings.Builder, l datamodel.Literal) {
	if !l.Quoted && isUnquotedSafe(l.Value) {
		b.WriteString(l.Value)
		return
	}
	b.WriteString("|")
	b.WriteString(escapeLiteralBody(l.Value))
	b.WriteString("|")
}

func writeOperator(b *strings.Builder, op datamodel.Operator) {
	switch op.Kind {
	case datamodel.OperatorFunctionCall:
		b.WriteString(op.Function.Display())
		for _, opt := range op.Options.Options() {
			b.WriteString(" ")
			b.WriteString(opt.Name)
			b.WriteString("=")
			writeOperand(b, opt.Value)
		}
	case datamodel.OperatorReserved:
		b.WriteRune(op.Reserved.Sigil)
		for _, chunk := range op.Reserved.Chunks {
			b.WriteString(" ")
			b.WriteString(escapeText(chunk))
		}
	}
}

func isUnquotedSafe(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '|', '\\', '{', '}', '=', '*', '$', '.':
			return false
		}
	}
	return true
}

func escapeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '{', '}':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func escapeLiteralBody(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '|':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
