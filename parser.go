// parser.go: recursive-descent parser for the prompt DSL.
//
// The parser consumes the lexer's token slice and builds the AST bottom-up.
// Statement-level errors use panic-mode recovery: the offending statement is
// abandoned and the parser resynchronizes at the next statement keyword or
// just past the nearest `;`/`}`, so one bad statement does not hide errors in
// the rest of the file. All errors accumulate; the returned Program contains
// every statement that parsed cleanly.
package pcc

import "fmt"

// maxTreeDepth caps parser, analyzer, optimizer and generator recursion.
// Exceeding it is reported as an error, not a stack fault.
const maxTreeDepth = 512

// Parser holds the token cursor and accumulated errors.
type Parser struct {
	tokens []Token
	pos    int
	errors []*ParseError
	depth  int
}

// NewParser creates a parser over tokens, which must be EOF-terminated.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse consumes tokens and returns the program root together with every
// parse error encountered.
func Parse(tokens []Token) (*Program, []*ParseError) {
	p := NewParser(tokens)
	prog := p.ParseProgram()
	return prog, p.errors
}

// Errors returns the accumulated parse errors in source order.
func (p *Parser) Errors() []*ParseError { return p.errors }

func (p *Parser) peek() Token { return p.tokens[p.pos] }

func (p *Parser) next() Token {
	t := p.tokens[p.pos]
	if t.Type != EOF {
		p.pos++
	}
	return t
}

func (p *Parser) check(tt TokenType) bool { return p.peek().Type == tt }

func (p *Parser) match(tt TokenType) bool {
	if p.check(tt) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) errorf(pos Position, format string, args ...any) {
	p.errors = append(p.errors, &ParseError{Msg: fmt.Sprintf(format, args...), Pos: pos})
}

// expect consumes a token of type tt or records an error at the current token.
func (p *Parser) expect(tt TokenType, what string) (Token, bool) {
	if p.check(tt) {
		return p.next(), true
	}
	t := p.peek()
	p.errorf(t.Pos, "expected %s, found '%s'", what, describe(t))
	return t, false
}

func describe(t Token) string {
	switch t.Type {
	case EOF:
		return "end of input"
	case IDENTIFIER, STRING, NUMBER:
		return t.Lexeme
	case VARIABLE_REF:
		return "$" + t.Lexeme
	case TEMPLATE_CALL:
		return "@" + t.Lexeme
	default:
		return t.Type.String()
	}
}

// enter/leave guard recursion depth through nested expressions and blocks.
func (p *Parser) enter(pos Position) bool {
	p.depth++
	if p.depth > maxTreeDepth {
		p.errorf(pos, "input nesting exceeds depth limit %d", maxTreeDepth)
		return false
	}
	return true
}

func (p *Parser) leave() { p.depth-- }

// synchronize skips forward to the next statement keyword, or just past the
// nearest `;` or `}`, whichever comes first.
func (p *Parser) synchronize() {
	for {
		switch p.peek().Type {
		case EOF, PROMPT, VAR, TEMPLATE, CONSTRAINT, OUTPUT:
			return
		case SEMICOLON, RBRACE:
			p.next()
			return
		default:
			p.next()
		}
	}
}

/* ===========================
   Statements
   =========================== */

// ParseProgram parses `statement*` until EOF.
func (p *Parser) ParseProgram() *Program {
	prog := &Program{Position: p.peek().Pos}
	for !p.check(EOF) {
		before := p.pos
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		} else {
			p.synchronize()
			if p.pos == before {
				p.next() // ensure progress
			}
		}
	}
	return prog
}

func (p *Parser) parseStatement() Node {
	t := p.peek()
	switch t.Type {
	case PROMPT:
		return p.parsePromptDef()
	case VAR:
		return p.parseVarDecl()
	case TEMPLATE:
		return p.parseTemplateDef()
	case CONSTRAINT:
		return p.parseConstraintDef()
	case OUTPUT:
		return p.parseOutputSpec()
	default:
		p.errorf(t.Pos, "expected statement, found '%s'", describe(t))
		return nil
	}
}

// parsePromptDef parses `PROMPT name { elements }`.
func (p *Parser) parsePromptDef() Node {
	kw := p.next()
	name, ok := p.expect(IDENTIFIER, "prompt name")
	if !ok {
		return nil
	}
	if _, ok := p.expect(LBRACE, "'{' to open prompt body"); !ok {
		return nil
	}
	body := p.parseElementList()
	if _, ok := p.expect(RBRACE, "'}' to close prompt body"); !ok {
		return nil
	}
	return &PromptDef{Name: name.Lexeme, Body: body, Position: kw.Pos}
}

// parseVarDecl parses `VAR name = expr ;`.
func (p *Parser) parseVarDecl() Node {
	kw := p.next()
	name, ok := p.expect(IDENTIFIER, "variable name")
	if !ok {
		return nil
	}
	if _, ok := p.expect(ASSIGN, "'=' after variable name"); !ok {
		return nil
	}
	init := p.parseExpression()
	if init == nil {
		return nil
	}
	if _, ok := p.expect(SEMICOLON, "';' after variable declaration"); !ok {
		return nil
	}
	return &VarDecl{Name: name.Lexeme, Init: init, Position: kw.Pos}
}

// parseTemplateDef parses `TEMPLATE name ( params ) { elements }`.
func (p *Parser) parseTemplateDef() Node {
	kw := p.next()
	name, ok := p.expect(IDENTIFIER, "template name")
	if !ok {
		return nil
	}
	if _, ok := p.expect(LPAREN, "'(' after template name"); !ok {
		return nil
	}
	var params []string
	if !p.check(RPAREN) {
		for {
			param, ok := p.expect(IDENTIFIER, "parameter name")
			if !ok {
				return nil
			}
			params = append(params, param.Lexeme)
			if !p.match(COMMA) {
				break
			}
		}
	}
	if _, ok := p.expect(RPAREN, "')' after parameter list"); !ok {
		return nil
	}
	if _, ok := p.expect(LBRACE, "'{' to open template body"); !ok {
		return nil
	}
	body := p.parseElementList()
	if _, ok := p.expect(RBRACE, "'}' to close template body"); !ok {
		return nil
	}
	return &TemplateDef{Name: name.Lexeme, Params: params, Body: body, Position: kw.Pos}
}

// parseConstraintDef parses `CONSTRAINT name { (ident op value ;)* }`.
func (p *Parser) parseConstraintDef() Node {
	kw := p.next()
	name, ok := p.expect(IDENTIFIER, "constraint name")
	if !ok {
		return nil
	}
	if _, ok := p.expect(LBRACE, "'{' to open constraint body"); !ok {
		return nil
	}
	var constraints []*ConstraintExpr
	for !p.check(RBRACE) && !p.check(EOF) {
		c := p.parseConstraintExpr()
		if c == nil {
			return nil
		}
		constraints = append(constraints, c)
	}
	if _, ok := p.expect(RBRACE, "'}' to close constraint body"); !ok {
		return nil
	}
	return &ConstraintDef{Name: name.Lexeme, Constraints: constraints, Position: kw.Pos}
}

func (p *Parser) parseConstraintExpr() *ConstraintExpr {
	v, ok := p.expect(IDENTIFIER, "constrained name")
	if !ok {
		return nil
	}
	op := p.peek()
	switch op.Type {
	case EQ, NE, LT, GT, LE, GE:
		p.next()
	default:
		p.errorf(op.Pos, "expected comparison operator in constraint, found '%s'", describe(op))
		return nil
	}
	val := p.parsePrimary()
	if val == nil {
		return nil
	}
	if _, ok := p.expect(SEMICOLON, "';' after constraint"); !ok {
		return nil
	}
	return &ConstraintExpr{Variable: v.Lexeme, Op: op.Type, Value: val, Position: v.Pos}
}

// parseOutputSpec parses `OUTPUT name AS format ;`.
func (p *Parser) parseOutputSpec() Node {
	kw := p.next()
	name, ok := p.expect(IDENTIFIER, "prompt name after OUTPUT")
	if !ok {
		return nil
	}
	if _, ok := p.expect(AS, "'AS' after prompt name"); !ok {
		return nil
	}
	fmtTok, ok := p.expect(IDENTIFIER, "output format (JSON, TEXT or MARKDOWN)")
	if !ok {
		return nil
	}
	var format OutputFormat
	switch fmtTok.Lexeme {
	case "JSON":
		format = FormatJSON
	case "TEXT":
		format = FormatText
	case "MARKDOWN":
		format = FormatMarkdown
	default:
		p.errorf(fmtTok.Pos, "unknown output format '%s' (want JSON, TEXT or MARKDOWN)", fmtTok.Lexeme)
		return nil
	}
	if _, ok := p.expect(SEMICOLON, "';' after output specification"); !ok {
		return nil
	}
	return &OutputSpec{Name: name.Lexeme, Format: format, Position: kw.Pos}
}

/* ===========================
   Prompt-body elements
   =========================== */

// parseElementList parses elements up to the closing `}` without consuming it.
func (p *Parser) parseElementList() *List {
	list := &List{ListKind: KindElementList, Position: p.peek().Pos}
	for !p.check(RBRACE) && !p.check(EOF) {
		before := p.pos
		elems := p.parseElement()
		list.Elems = append(list.Elems, elems...)
		if p.pos == before {
			p.next() // ensure progress after an element error
		}
	}
	return list
}

// parseElement returns zero or more nodes: a single string element may expand
// into interleaved text and variable-reference nodes via interpolation.
func (p *Parser) parseElement() []Node {
	t := p.peek()
	switch t.Type {
	case STRING:
		p.next()
		return interpolate(t.Lexeme, t.Pos)

	case RAW:
		p.next()
		str, ok := p.expect(STRING, "string after RAW")
		if !ok {
			return nil
		}
		return []Node{&TextElement{Text: str.Lexeme, Raw: true, Position: t.Pos}}

	case VARIABLE_REF:
		p.next()
		return []Node{&VariableRef{Name: t.Lexeme, Position: t.Pos}}

	case TEMPLATE_CALL:
		call := p.parseTemplateCall()
		if call == nil {
			return nil
		}
		return []Node{call}

	case IF:
		n := p.parseIf()
		if n == nil {
			return nil
		}
		return []Node{n}

	case FOR:
		n := p.parseFor()
		if n == nil {
			return nil
		}
		return []Node{n}

	case WHILE:
		n := p.parseWhile()
		if n == nil {
			return nil
		}
		return []Node{n}

	default:
		p.errorf(t.Pos, "unexpected '%s' in prompt body", describe(t))
		return nil
	}
}

// interpolate splits a prompt-body string on `$name` references: the literal
// runs become text elements and each reference becomes a variable-ref node.
// Escapes are left verbatim, matching the lexer.
func interpolate(s string, pos Position) []Node {
	var out []Node
	start := 0
	i := 0
	for i < len(s) {
		if s[i] == '\\' { // escape protects the next byte
			i += 2
			continue
		}
		if s[i] == '$' && i+1 < len(s) && isAlpha(s[i+1]) {
			if i > start {
				out = append(out, &TextElement{Text: s[start:i], Position: pos})
			}
			j := i + 1
			for j < len(s) && isAlphaNum(s[j]) {
				j++
			}
			out = append(out, &VariableRef{Name: s[i+1 : j], Position: pos})
			i = j
			start = j
			continue
		}
		i++
	}
	if start < len(s) || len(out) == 0 {
		out = append(out, &TextElement{Text: s[start:], Position: pos})
	}
	return out
}

// parseTemplateCall parses `@name` with an optional `(args)` suffix.
func (p *Parser) parseTemplateCall() Node {
	t := p.next()
	call := &TemplateCall{Name: t.Lexeme, Position: t.Pos}
	if p.match(LPAREN) {
		if !p.check(RPAREN) {
			for {
				arg := p.parseExpression()
				if arg == nil {
					return nil
				}
				call.Args = append(call.Args, arg)
				if !p.match(COMMA) {
					break
				}
			}
		}
		if _, ok := p.expect(RPAREN, "')' after arguments"); !ok {
			return nil
		}
	}
	return call
}

func (p *Parser) parseIf() Node {
	kw := p.next()
	if !p.enter(kw.Pos) {
		p.leave()
		return nil
	}
	defer p.leave()

	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(LBRACE, "'{' after IF condition"); !ok {
		return nil
	}
	then := p.parseElementList()
	if _, ok := p.expect(RBRACE, "'}' to close IF body"); !ok {
		return nil
	}
	var els Node
	if p.match(ELSE) {
		if p.check(IF) {
			els = p.parseIf()
			if els == nil {
				return nil
			}
		} else {
			if _, ok := p.expect(LBRACE, "'{' after ELSE"); !ok {
				return nil
			}
			elseList := p.parseElementList()
			if _, ok := p.expect(RBRACE, "'}' to close ELSE body"); !ok {
				return nil
			}
			els = elseList
		}
	}
	return &IfStmt{Cond: cond, Then: then, Else: els, Position: kw.Pos}
}

func (p *Parser) parseFor() Node {
	kw := p.next()
	if !p.enter(kw.Pos) {
		p.leave()
		return nil
	}
	defer p.leave()

	v, ok := p.expect(IDENTIFIER, "loop variable after FOR")
	if !ok {
		return nil
	}
	if _, ok := p.expect(IN, "'IN' after loop variable"); !ok {
		return nil
	}
	iterable := p.parseExpression()
	if iterable == nil {
		return nil
	}
	if _, ok := p.expect(LBRACE, "'{' after FOR header"); !ok {
		return nil
	}
	body := p.parseElementList()
	if _, ok := p.expect(RBRACE, "'}' to close FOR body"); !ok {
		return nil
	}
	return &ForStmt{Var: v.Lexeme, Iterable: iterable, Body: body, Position: kw.Pos}
}

func (p *Parser) parseWhile() Node {
	kw := p.next()
	if !p.enter(kw.Pos) {
		p.leave()
		return nil
	}
	defer p.leave()

	cond := p.parseExpression()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(LBRACE, "'{' after WHILE condition"); !ok {
		return nil
	}
	body := p.parseElementList()
	if _, ok := p.expect(RBRACE, "'}' to close WHILE body"); !ok {
		return nil
	}
	return &WhileStmt{Cond: cond, Body: body, Position: kw.Pos}
}

/* ===========================
   Expressions
   ===========================

   Precedence, loosest to tightest:

     OR
     AND
     NOT
     == != < > <= >=
     + -
     * / %
     ^            (right-associative)
     unary -      (right-associative)
     primary
*/

func (p *Parser) parseExpression() Node {
	if !p.enter(p.peek().Pos) {
		p.leave()
		return nil
	}
	defer p.leave()
	return p.parseOr()
}

func (p *Parser) parseOr() Node {
	left := p.parseAnd()
	for left != nil && p.check(OR) {
		op := p.next()
		right := p.parseAnd()
		if right == nil {
			return nil
		}
		left = &BinaryExpr{Op: op.Type, Left: left, Right: right, Position: op.Pos}
	}
	return left
}

func (p *Parser) parseAnd() Node {
	left := p.parseNot()
	for left != nil && p.check(AND) {
		op := p.next()
		right := p.parseNot()
		if right == nil {
			return nil
		}
		left = &BinaryExpr{Op: op.Type, Left: left, Right: right, Position: op.Pos}
	}
	return left
}

func (p *Parser) parseNot() Node {
	if p.check(NOT) {
		op := p.next()
		operand := p.parseNot()
		if operand == nil {
			return nil
		}
		return &UnaryExpr{Op: NOT, Operand: operand, Position: op.Pos}
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() Node {
	left := p.parseAdditive()
	for left != nil {
		switch p.peek().Type {
		case EQ, NE, LT, GT, LE, GE:
			op := p.next()
			right := p.parseAdditive()
			if right == nil {
				return nil
			}
			left = &BinaryExpr{Op: op.Type, Left: left, Right: right, Position: op.Pos}
		default:
			return left
		}
	}
	return left
}

func (p *Parser) parseAdditive() Node {
	left := p.parseMultiplicative()
	for left != nil && (p.check(ADD) || p.check(SUB)) {
		op := p.next()
		right := p.parseMultiplicative()
		if right == nil {
			return nil
		}
		left = &BinaryExpr{Op: op.Type, Left: left, Right: right, Position: op.Pos}
	}
	return left
}

func (p *Parser) parseMultiplicative() Node {
	left := p.parsePower()
	for left != nil && (p.check(MUL) || p.check(DIV) || p.check(MOD)) {
		op := p.next()
		right := p.parsePower()
		if right == nil {
			return nil
		}
		left = &BinaryExpr{Op: op.Type, Left: left, Right: right, Position: op.Pos}
	}
	return left
}

func (p *Parser) parsePower() Node {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	if p.check(POW) {
		op := p.next()
		// right-associative: recurse at the same level
		right := p.parsePower()
		if right == nil {
			return nil
		}
		return &BinaryExpr{Op: POW, Left: left, Right: right, Position: op.Pos}
	}
	return left
}

func (p *Parser) parseUnary() Node {
	if p.check(SUB) {
		op := p.next()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &UnaryExpr{Op: SUB, Operand: operand, Position: op.Pos}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() Node {
	t := p.peek()
	switch t.Type {
	case NUMBER:
		p.next()
		v, _ := t.Literal.(float64)
		return &NumberLit{Value: v, Position: t.Pos}

	case STRING:
		p.next()
		return &StringLit{Value: t.Lexeme, Position: t.Pos}

	case TRUE:
		p.next()
		return &BoolLit{Value: true, Position: t.Pos}

	case FALSE:
		p.next()
		return &BoolLit{Value: false, Position: t.Pos}

	case VARIABLE_REF:
		p.next()
		return &VariableRef{Name: t.Lexeme, Position: t.Pos}

	case TEMPLATE_CALL:
		return p.parseTemplateCall()

	case IDENTIFIER:
		p.next()
		if p.check(LPAREN) {
			return p.parseFunctionCall(t)
		}
		return &Identifier{Name: t.Lexeme, Position: t.Pos}

	case LPAREN:
		p.next()
		if !p.enter(t.Pos) {
			p.leave()
			return nil
		}
		inner := p.parseOr()
		p.leave()
		if inner == nil {
			return nil
		}
		if _, ok := p.expect(RPAREN, "')'"); !ok {
			return nil
		}
		return inner

	default:
		p.errorf(t.Pos, "expected expression, found '%s'", describe(t))
		return nil
	}
}

// parseFunctionCall parses `(args)` after an identifier already consumed.
func (p *Parser) parseFunctionCall(name Token) Node {
	p.next() // '('
	call := &FunctionCall{Name: name.Lexeme, Position: name.Pos}
	if !p.check(RPAREN) {
		for {
			arg := p.parseExpression()
			if arg == nil {
				return nil
			}
			call.Args = append(call.Args, arg)
			if !p.match(COMMA) {
				break
			}
		}
	}
	if _, ok := p.expect(RPAREN, "')' after arguments"); !ok {
		return nil
	}
	return call
}
