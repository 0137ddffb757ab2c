// Package parser implements the scannerless, recursive-descent
// MessageFormat 2.0 parser described in spec.md §4.2: one-codepoint
// lookahead everywhere except four bounded whitespace-lookahead
// exceptions, and syntax-error fallback wrapping so that formatting
// can always proceed.
//
// This grammar (`let`/`match`/`when`, `:`/`+`/`-` function sigils) is
// the ICU4C MessageFormat 2.0 tech-preview dialect; it is not the
// dot-prefixed, markup-bearing dialect the reference corpus's Go
// repositories target, so this parser is original work grounded on
// their surrounding style (ParseContext-like state, character-class
// predicates) rather than ported from any one of them.
package parser

import (
	"github.com/catamorphism/icu-sub000/pkg/datamodel"
	"github.com/catamorphism/icu-sub000/pkg/diagnostics"
)

// parser holds the scanning position over a message's source runes.
// The bounded whitespace-lookahead exceptions in spec.md §4.2 are
// resolved by consuming the whitespace unconditionally and deciding,
// from the single rune that follows, whether it was a separator or
// trailing. The one place that backs up is parseDecls's check for the
// "let" keyword, which saves and restores the position with mark/reset.
type parser struct {
	src  []rune
	pos  int
	line int
	col  int

	diags *diagnostics.Diagnostics
}

// Parse turns source into a Message and a set of static diagnostics.
// A message that cannot be parsed at all still returns a usable
// Message: the unparsed remainder becomes a single text pattern, per
// spec.md §4.2's error-recovery rule, so that formatting always has a
// pattern to render.
func Parse(source string) (datamodel.Message, *diagnostics.Diagnostics) {
	p := &parser{src: []rune(source), line: 1, col: 1, diags: &diagnostics.Diagnostics{}}

	msg, ok := p.parseMessage()
	if !ok {
		text := string(p.src[p.startOfFallback():])
		return datamodel.NewPatternMessage(nil, datamodel.Pattern{datamodel.TextPart(text)}), p.diags
	}
	return msg, p.diags
}

// startOfFallback reports where the unparsed remainder begins: the
// whole source if nothing at all was consumed, otherwise wherever the
// parser gave up.
func (p *parser) startOfFallback() int {
	if p.pos > len(p.src) {
		return len(p.src)
	}
	return p.pos
}

func (p *parser) pposition() diagnostics.Position {
	return diagnostics.Position{Offset: len(string(p.src[:p.pos])), Line: p.line, Column: p.col}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() (rune, bool) {
	if p.eof() {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *parser) peekAt(offset int) (rune, bool) {
	i := p.pos + offset
	if i < 0 || i >= len(p.src) {
		return 0, false
	}
	return p.src[i], true
}

// advance consumes and returns the current rune, updating line/column
// bookkeeping (spec.md §4.1's parser-facing offset tracking).
func (p *parser) advance() rune {
	r := p.src[p.pos]
	p.pos++
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	return r
}

// expect consumes r if it is the current rune, reporting whether it
// matched.
func (p *parser) expect(r rune) bool {
	if c, ok := p.peek(); ok && c == r {
		p.advance()
		return true
	}
	return false
}

// mark and reset save/restore (pos, line, col) together so that a
// speculative skipWS() ahead of a keyword check can be undone without
// leaving line/column bookkeeping out of sync with pos.
type mark struct {
	pos, line, col int
}

func (p *parser) mark() mark { return mark{p.pos, p.line, p.col} }

func (p *parser) reset(m mark) {
	p.pos, p.line, p.col = m.pos, m.line, m.col
}

func (p *parser) fail(expected string) {
	p.diags.Add(diagnostics.NewSyntaxError(p.pposition(), expected))
}

// skipWS consumes a run of whitespace and reports how many runes it
// consumed.
func (p *parser) skipWS() int {
	n := 0
	for {
		r, ok := p.peek()
		if !ok || !isWS(r) {
			return n
		}
		p.advance()
		n++
	}
}

func isWS(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n':
		return true
	default:
		return false
	}
}

func isNameStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127
}

func isNameChar(r rune) bool {
	return isNameStart(r) || (r >= '0' && r <= '9') || r == '-' || r == '.'
}

func isAnnotationSigil(r rune) bool {
	return r == ':' || r == '+' || r == '-'
}

// reservedStart is the set of sigils that introduce a reserved
// annotation: punctuation set aside by MF2 for future extension,
// distinct from the three function sigils and from every other
// structural character (spec.md §9's reserved-whitespace note,
// SPEC_FULL.md §4.11).
func isReservedStart(r rune) bool {
	switch r {
	case '!', '%', '^', '&', '<', '>', '?', '~', '#', '@', '`':
		return true
	default:
		return false
	}
}

func isUnquotedStart(r rune) bool {
	if isWS(r) {
		return false
	}
	switch r {
	case '{', '}', '|', '\\', '$', '=', '*':
		return false
	}
	if isAnnotationSigil(r) || isReservedStart(r) {
		return false
	}
	return true
}

func isUnquotedContinue(r rune) bool {
	switch r {
	case '{', '}', '|', '\\':
		return false
	}
	return !isWS(r)
}

// parseMessage parses `[decls] (pattern / selectors)`.
func (p *parser) parseMessage() (datamodel.Message, bool) {
	bindings, ok := p.parseDecls()
	if !ok {
		return datamodel.Message{}, false
	}

	p.skipWS()

	var msg datamodel.Message
	if p.matchKeyword("match") {
		m, ok := p.parseSelectors(bindings)
		if !ok {
			return datamodel.Message{}, false
		}
		msg = m
	} else {
		pat, ok := p.parsePattern()
		if !ok {
			p.fail("{")
			return datamodel.Message{}, false
		}
		msg = datamodel.NewPatternMessage(bindings, pat)
	}

	// Trailing content after an otherwise-complete body is reported but
	// does not discard the message that did parse: only a body that
	// couldn't be recognized at all falls back to whole-source text.
	p.skipWS()
	if !p.eof() {
		p.fail("end of message")
	}
	return msg, true
}

// matchKeyword consumes word if it appears at the current position
// followed by a non-name-char (so "matcher" does not match "match"),
// reporting whether it did.
func (p *parser) matchKeyword(word string) bool {
	runes := []rune(word)
	for i, r := range runes {
		c, ok := p.peekAt(i)
		if !ok || c != r {
			return false
		}
	}
	if next, ok := p.peekAt(len(runes)); ok && isNameChar(next) {
		return false
	}
	for range runes {
		p.advance()
	}
	return true
}

// parseDecls parses `*( "let" s variable s? "=" s? expression s? )`.
func (p *parser) parseDecls() ([]datamodel.Binding, bool) {
	var bindings []datamodel.Binding
	for {
		save := p.mark()
		p.skipWS()
		if !p.matchKeyword("let") {
			p.reset(save)
			return bindings, true
		}
		if p.skipWS() == 0 {
			p.fail("whitespace after let")
			return nil, false
		}
		if !p.expect('$') {
			p.fail("$")
			return nil, false
		}
		name, ok := p.parseName()
		if !ok {
			p.fail("variable name")
			return nil, false
		}
		p.skipWS()
		if !p.expect('=') {
			p.fail("=")
			return nil, false
		}
		p.skipWS()
		expr, ok := p.parseExpression()
		if !ok {
			return nil, false
		}
		bindings = append(bindings, datamodel.Binding{Name: datamodel.VariableName(name), Value: expr})
	}
}

// parseSelectors parses `"match" 1*( s? expression ) 1*( s? variant )`,
// having already consumed the "match" keyword.
func (p *parser) parseSelectors(bindings []datamodel.Binding) (datamodel.Message, bool) {
	var selectors []datamodel.Expression
	for {
		p.skipWS()
		c, ok := p.peek()
		if !ok || c != '{' {
			break
		}
		expr, ok := p.parseExpression()
		if !ok {
			return datamodel.Message{}, false
		}
		selectors = append(selectors, expr)
	}
	if len(selectors) == 0 {
		p.fail("selector expression")
		return datamodel.Message{}, false
	}

	var variants []datamodel.Variant
	for {
		p.skipWS()
		if !p.matchKeyword("when") {
			break
		}
		v, ok := p.parseVariant()
		if !ok {
			return datamodel.Message{}, false
		}
		variants = append(variants, v)
	}
	if len(variants) == 0 {
		p.fail("variant")
		return datamodel.Message{}, false
	}

	msg, err := datamodel.NewSelectMessage(bindings, selectors, variants)
	if err != nil {
		p.fail(err.Error())
		return datamodel.Message{}, false
	}
	return msg, true
}

// parseVariant parses `"when" 1*( s key ) s? pattern`, having already
// consumed the "when" keyword. This is lookahead exception #1: after
// each key, whitespace may begin another key or the pattern's opening
// brace.
func (p *parser) parseVariant() (datamodel.Variant, bool) {
	start := p.pposition()
	if p.skipWS() == 0 {
		p.fail("whitespace after when")
		return datamodel.Variant{}, false
	}

	var keys datamodel.SelectorKeys
	for {
		c, ok := p.peek()
		if ok && c == '{' {
			break
		}
		key, ok := p.parseKey()
		if !ok {
			p.fail("variant key")
			return datamodel.Variant{}, false
		}
		keys = append(keys, key)
		p.skipWS()
	}

	pat, ok := p.parsePattern()
	if !ok {
		p.fail("{")
		return datamodel.Variant{}, false
	}
	return datamodel.Variant{Keys: keys, Value: pat, Pos: start}, true
}

func (p *parser) parseKey() (datamodel.Key, bool) {
	c, ok := p.peek()
	if !ok {
		return datamodel.Key{}, false
	}
	if c == '*' {
		p.advance()
		return datamodel.WildcardKey(), true
	}
	lit, ok := p.parseLiteral()
	if !ok {
		return datamodel.Key{}, false
	}
	return datamodel.LiteralKey(lit), true
}

// parsePattern parses `"{" *( text / expression ) "}"`.
func (p *parser) parsePattern() (datamodel.Pattern, bool) {
	if !p.expect('{') {
		return nil, false
	}

	var pat datamodel.Pattern
	var text []rune
	flushText := func() {
		if len(text) > 0 {
			pat = append(pat, datamodel.TextPart(string(text)))
			text = nil
		}
	}

	for {
		c, ok := p.peek()
		if !ok {
			p.fail("}")
			return nil, false
		}
		if c == '}' {
			p.advance()
			flushText()
			return pat, true
		}
		if c == '{' {
			flushText()
			expr, ok := p.parseExpression()
			if !ok {
				return nil, false
			}
			pat = append(pat, datamodel.ExpressionPart(expr))
			continue
		}
		if c == '\\' {
			r, ok := p.parseEscape(textEscapes)
			if !ok {
				return nil, false
			}
			text = append(text, r)
			continue
		}
		text = append(text, p.advance())
	}
}

var textEscapes = map[rune]bool{'{': true, '}': true, '\\': true}
var literalEscapes = map[rune]bool{'|': true, '\\': true}
var reservedEscapes = map[rune]bool{'{': true, '}': true, '\\': true}

// parseEscape consumes a backslash sequence, reporting a syntax error
// for any escaped rune not in allowed.
func (p *parser) parseEscape(allowed map[rune]bool) (rune, bool) {
	p.advance() // consume '\\'
	r, ok := p.peek()
	if !ok || !allowed[r] {
		p.fail("escape")
		return 0, false
	}
	p.advance()
	return r, true
}

// parseExpression parses
// `"{" s? ( ((literal/variable) [s annotation]) / annotation ) s? "}"`,
// lookahead exception #4: after the operand, whitespace may begin an
// annotation or be trailing before the closing brace. A syntax error
// partway through (a bad option, a malformed operand) never
// aborts the surrounding pattern: it is recorded and the expression
// recovers to a best-effort fallback built from whatever operand or
// operator was already recognized, resynchronizing at the expression's
// own closing brace so the rest of the pattern parses normally.
func (p *parser) parseExpression() (datamodel.Expression, bool) {
	start := p.pposition()
	if !p.expect('{') {
		p.fail("{")
		return datamodel.Expression{}, false
	}
	p.skipWS()

	operand := datamodel.NullOperand()
	hasOperand := false

	if c, ok := p.peek(); ok && c == '$' {
		p.advance()
		name, ok := p.parseName()
		if !ok {
			p.fail("variable name")
			return p.recoverExpression(operand, nil).WithPos(start), true
		}
		operand = datamodel.VariableOperand(datamodel.VariableName(name))
		hasOperand = true
	} else if ok && isLiteralStart(c) {
		lit, ok := p.parseLiteral()
		if !ok {
			return p.recoverExpression(operand, nil).WithPos(start), true
		}
		operand = datamodel.LiteralOperand(lit)
		hasOperand = true
	}

	var operator *datamodel.Operator
	if hasOperand {
		p.skipWS()
		if c, ok := p.peek(); ok && isAnnotationStart(c) {
			op := p.parseAnnotation()
			operator = &op
		}
	} else {
		c, ok := p.peek()
		if !ok || !isAnnotationStart(c) {
			p.fail("operand or annotation")
			return p.recoverExpression(operand, nil).WithPos(start), true
		}
		op := p.parseAnnotation()
		operator = &op
	}

	p.skipWS()
	if !p.expect('}') {
		p.fail("}")
		return p.recoverExpression(operand, operator).WithPos(start), true
	}

	expr, err := datamodel.NewExpression(operand, operator)
	if err != nil {
		p.fail(err.Error())
		return p.recoverExpression(operand, operator).WithPos(start), true
	}
	return expr.WithPos(start), true
}

// recoverExpression resynchronizes at the current expression's closing
// brace and builds the best available fallback Expression from operand
// and operator, whichever of the two was already recognized before the
// error. When neither is available, the expression falls back to
// U+FFFD via a synthetic empty reserved operator, matching the generic
// "nothing could be recognized here" case.
func (p *parser) recoverExpression(operand datamodel.Operand, operator *datamodel.Operator) datamodel.Expression {
	p.skipToExpressionEnd()
	p.expect('}')

	if operator == nil && operand.Kind == datamodel.OperandNull {
		op := datamodel.ReservedOperator(datamodel.ReservedBody{})
		operator = &op
	}
	expr, err := datamodel.NewExpression(operand, operator)
	if err != nil {
		op := datamodel.ReservedOperator(datamodel.ReservedBody{})
		expr, _ = datamodel.NewExpression(datamodel.NullOperand(), &op)
	}
	return expr
}

// skipToExpressionEnd scans forward to (but does not consume) the '}'
// that closes the current expression, skipping over any nested braces
// and quoted-literal content so a stray '}' inside quotes doesn't end
// the scan early.
func (p *parser) skipToExpressionEnd() {
	depth := 0
	for {
		c, ok := p.peek()
		if !ok {
			return
		}
		switch {
		case c == '|':
			p.skipQuotedVerbatim()
		case c == '{':
			depth++
			p.advance()
		case c == '}':
			if depth == 0 {
				return
			}
			depth--
			p.advance()
		default:
			p.advance()
		}
	}
}

// skipQuotedVerbatim consumes a `|...|` run without interpreting its
// contents, used only to keep error recovery from stopping on a brace
// that is really inside a quoted literal.
func (p *parser) skipQuotedVerbatim() {
	p.advance() // opening '|'
	for {
		c, ok := p.peek()
		if !ok {
			return
		}
		if c == '\\' {
			p.advance()
			if _, ok := p.peek(); ok {
				p.advance()
			}
			continue
		}
		p.advance()
		if c == '|' {
			return
		}
	}
}

func isLiteralStart(r rune) bool { return r == '|' || isUnquotedStart(r) }

func isAnnotationStart(r rune) bool { return isAnnotationSigil(r) || isReservedStart(r) }

// parseAnnotation always returns a usable Operator: a malformed
// function name or option list is recorded as a diagnostic, not a hard
// failure, so one bad annotation can't abort the rest of the message.
func (p *parser) parseAnnotation() datamodel.Operator {
	c, _ := p.peek()
	if isReservedStart(c) {
		return p.parseReserved()
	}
	return p.parseFunctionCall()
}

// parseFunctionCall parses `("+" / "-" / ":") name *( s option )`. This
// is lookahead exception #2: after each option, whitespace may begin
// another option or be trailing before the closing brace. A malformed
// option stops the option list (recorded as a syntax error) rather
// than discarding the function name already recognized.
func (p *parser) parseFunctionCall() datamodel.Operator {
	sigilRune := p.advance()
	name, ok := p.parseName()
	if !ok {
		p.fail("function name")
		name = ""
	}

	var opts []datamodel.Option
	for {
		p.skipWS()
		c, ok := p.peek()
		if !ok || !isNameStart(c) {
			break
		}
		opt, ok := p.parseOption()
		if !ok {
			p.skipToExpressionEnd()
			break
		}
		opts = append(opts, opt)
	}

	optMap, err := datamodel.NewOptionMap(opts)
	if err != nil {
		dup := ""
		seen := make(map[string]bool, len(opts))
		for _, o := range opts {
			if seen[o.Name] && dup == "" {
				dup = o.Name
			}
			seen[o.Name] = true
		}
		p.diags.Add(diagnostics.NewDuplicateOptionName(p.pposition(), dup))
		optMap = dedupeLast(opts)
	}

	fn := datamodel.FunctionName{Sigil: datamodel.FunctionSigil(sigilRune), Name: name}
	return datamodel.FunctionCallOperator(fn, optMap)
}

// dedupeLast builds an OptionMap that keeps the last occurrence of each
// duplicated name, so that parsing can continue after recording a
// DuplicateOptionName diagnostic instead of discarding the whole
// function call.
func dedupeLast(opts []datamodel.Option) datamodel.OptionMap {
	byName := make(map[string]datamodel.Operand, len(opts))
	var order []string
	for _, o := range opts {
		if _, seen := byName[o.Name]; !seen {
			order = append(order, o.Name)
		}
		byName[o.Name] = o.Value
	}
	deduped := make([]datamodel.Option, 0, len(order))
	for _, name := range order {
		deduped = append(deduped, datamodel.Option{Name: name, Value: byName[name]})
	}
	m, _ := datamodel.NewOptionMap(deduped)
	return m
}

func (p *parser) parseOption() (datamodel.Option, bool) {
	name, ok := p.parseName()
	if !ok {
		p.fail("option name")
		return datamodel.Option{}, false
	}
	p.skipWS()
	if !p.expect('=') {
		p.fail("=")
		return datamodel.Option{}, false
	}
	p.skipWS()

	var operand datamodel.Operand
	if c, ok := p.peek(); ok && c == '$' {
		p.advance()
		varName, ok := p.parseName()
		if !ok {
			p.fail("variable name")
			return datamodel.Option{}, false
		}
		operand = datamodel.VariableOperand(datamodel.VariableName(varName))
	} else {
		lit, ok := p.parseLiteral()
		if !ok {
			p.fail("option value")
			return datamodel.Option{}, false
		}
		operand = datamodel.LiteralOperand(lit)
	}
	return datamodel.Option{Name: name, Value: operand}, true
}

// parseReserved parses a reserved annotation: a reserved-start sigil
// followed by zero or more whitespace-separated chunks, each either a
// quoted literal or a maximal run of characters other than whitespace
// and '}' (with backslash escapes). This is lookahead exception #3.
func (p *parser) parseReserved() datamodel.Operator {
	sigil := p.advance()
	var chunks []string
	for {
		p.skipWS()
		c, ok := p.peek()
		if !ok || c == '}' {
			break
		}
		chunk, ok := p.parseReservedChunk()
		if !ok {
			p.skipToExpressionEnd()
			break
		}
		chunks = append(chunks, chunk)
	}
	return datamodel.ReservedOperator(datamodel.ReservedBody{Sigil: sigil, Chunks: chunks})
}

func (p *parser) parseReservedChunk() (string, bool) {
	if c, ok := p.peek(); ok && c == '|' {
		lit, ok := p.parseQuotedLiteral()
		if !ok {
			return "", false
		}
		return lit.Value, true
	}

	var out []rune
	for {
		c, ok := p.peek()
		if !ok || isWS(c) || c == '}' {
			break
		}
		if c == '\\' {
			r, ok := p.parseEscape(reservedEscapes)
			if !ok {
				return "", false
			}
			out = append(out, r)
			continue
		}
		out = append(out, p.advance())
	}
	if len(out) == 0 {
		p.fail("reserved chunk")
		return "", false
	}
	return string(out), true
}

func (p *parser) parseLiteral() (datamodel.Literal, bool) {
	if c, ok := p.peek(); ok && c == '|' {
		return p.parseQuotedLiteral()
	}
	return p.parseUnquotedLiteral()
}

func (p *parser) parseQuotedLiteral() (datamodel.Literal, bool) {
	p.advance() // opening '|'
	var out []rune
	for {
		c, ok := p.peek()
		if !ok {
			p.fail("|")
			return datamodel.Literal{}, false
		}
		if c == '|' {
			p.advance()
			return datamodel.Literal{Value: string(out), Quoted: true}, true
		}
		if c == '\\' {
			r, ok := p.parseEscape(literalEscapes)
			if !ok {
				return datamodel.Literal{}, false
			}
			out = append(out, r)
			continue
		}
		out = append(out, p.advance())
	}
}

func (p *parser) parseUnquotedLiteral() (datamodel.Literal, bool) {
	c, ok := p.peek()
	if !ok || !isUnquotedStart(c) {
		p.fail("literal")
		return datamodel.Literal{}, false
	}
	var out []rune
	out = append(out, p.advance())
	for {
		c, ok := p.peek()
		if !ok || !isUnquotedContinue(c) {
			break
		}
		out = append(out, p.advance())
	}
	return datamodel.Literal{Value: string(out), Quoted: false}, true
}

func (p *parser) parseName() (string, bool) {
	c, ok := p.peek()
	if !ok || !isNameStart(c) {
		return "", false
	}
	var out []rune
	out = append(out, p.advance())
	for {
		c, ok := p.peek()
		if !ok || !isNameChar(c) {
			break
		}
		out = append(out, p.advance())
	}
	return string(out), true
}
