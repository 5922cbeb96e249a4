// lexer.go: finite-automaton scanner for the prompt DSL.
package pcc

import (
	"fmt"
	"strconv"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	ERROR

	// Keywords
	PROMPT
	VAR
	TEMPLATE
	CONSTRAINT
	OUTPUT
	IF
	ELSE
	FOR
	WHILE
	IN
	AS
	AND
	OR
	NOT
	RAW
	TRUE
	FALSE

	// Identifiers and literals
	IDENTIFIER
	STRING
	NUMBER

	// Operators
	EQ         // "=="
	NE         // "!="
	LT         // "<"
	GT         // ">"
	LE         // "<="
	GE         // ">="
	ADD        // "+"
	SUB        // "-"
	MUL        // "*"
	DIV        // "/"
	MOD        // "%"
	POW        // "^"
	ASSIGN     // "="

	// Punctuation
	LBRACE    // "{"
	RBRACE    // "}"
	LPAREN    // "("
	RPAREN    // ")"
	LBRACKET  // "["
	RBRACKET  // "]"
	COMMA     // ","
	SEMICOLON // ";"
	COLON     // ":"
	DOT       // "."

	// Sigil tokens
	VARIABLE_REF  // $identifier
	TEMPLATE_CALL // @identifier
)

var tokenNames = map[TokenType]string{
	EOF: "EOF", ERROR: "ERROR",
	PROMPT: "PROMPT", VAR: "VAR", TEMPLATE: "TEMPLATE", CONSTRAINT: "CONSTRAINT",
	OUTPUT: "OUTPUT", IF: "IF", ELSE: "ELSE", FOR: "FOR", WHILE: "WHILE",
	IN: "IN", AS: "AS", AND: "AND", OR: "OR", NOT: "NOT", RAW: "RAW",
	TRUE: "TRUE", FALSE: "FALSE",
	IDENTIFIER: "IDENTIFIER", STRING: "STRING", NUMBER: "NUMBER",
	EQ: "==", NE: "!=", LT: "<", GT: ">", LE: "<=", GE: ">=",
	ADD: "+", SUB: "-", MUL: "*", DIV: "/", MOD: "%", POW: "^", ASSIGN: "=",
	LBRACE: "{", RBRACE: "}", LPAREN: "(", RPAREN: ")",
	LBRACKET: "[", RBRACKET: "]", COMMA: ",", SEMICOLON: ";", COLON: ":", DOT: ".",
	VARIABLE_REF: "VARIABLE_REF", TEMPLATE_CALL: "TEMPLATE_CALL",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// Token is a lexical token with optional literal value.
type Token struct {
	Type    TokenType
	Lexeme  string // raw text; for $x/@x tokens the sigil is stripped
	Literal any    // float64 for NUMBER, string for STRING, nil otherwise
	Pos     Position
}

// Keyword table. Exact, case-sensitive matches only: `prompt` is an
// identifier, `PROMPT` is the keyword.
var keywords = map[string]TokenType{
	"PROMPT":     PROMPT,
	"VAR":        VAR,
	"TEMPLATE":   TEMPLATE,
	"CONSTRAINT": CONSTRAINT,
	"OUTPUT":     OUTPUT,
	"IF":         IF,
	"ELSE":       ELSE,
	"FOR":        FOR,
	"WHILE":      WHILE,
	"IN":         IN,
	"AS":         AS,
	"AND":        AND,
	"OR":         OR,
	"NOT":        NOT,
	"RAW":        RAW,
	"true":       TRUE,
	"false":      FALSE,
}

// Lexer scans a DSL source string into tokens.
type Lexer struct {
	src      string
	filename string
	cur      int
	line     int // 1-based
	col      int // 1-based
	tokens   []Token

	// position at the start of the token being scanned
	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a lexer for the given source. filename is used only for
// positions on tokens and errors.
func NewLexer(src, filename string) *Lexer {
	if filename == "" {
		filename = "<unknown>"
	}
	return &Lexer{
		src:      src,
		filename: filename,
		line:     1,
		col:      1,
	}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek(n int) byte {
	if l.cur+n >= len(l.src) {
		return 0
	}
	return l.src[l.cur+n]
}

func (l *Lexer) advance() byte {
	if l.isAtEnd() {
		return 0
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) startToken() {
	l.tokStartLine = l.line
	l.tokStartCol = l.col
}

func (l *Lexer) tokenPos() Position {
	return Position{Line: l.tokStartLine, Column: l.tokStartCol, Filename: l.filename}
}

func (l *Lexer) add(tt TokenType, lexeme string, lit any) {
	l.tokens = append(l.tokens, Token{Type: tt, Lexeme: lexeme, Literal: lit, Pos: l.tokenPos()})
}

func (l *Lexer) err(msg string) *LexError {
	return &LexError{Msg: msg, Pos: Position{Line: l.line, Column: l.col, Filename: l.filename}}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		switch l.peek(0) {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

// skipComment consumes a // line comment or a /* ... */ block comment.
// An unclosed block comment simply runs to EOF.
func (l *Lexer) skipComment() {
	if l.peek(1) == '/' {
		for !l.isAtEnd() {
			if l.advance() == '\n' {
				return
			}
		}
		return
	}
	l.advance() // '/'
	l.advance() // '*'
	for !l.isAtEnd() {
		if l.advance() == '*' && l.peek(0) == '/' {
			l.advance()
			return
		}
	}
}

// scanIdentifier reads [A-Za-z_][A-Za-z0-9_]* starting at the current byte.
func (l *Lexer) scanIdentifier() (string, error) {
	if !isAlpha(l.peek(0)) {
		return "", l.err(fmt.Sprintf("expected identifier, found %q", l.peek(0)))
	}
	start := l.cur
	for !l.isAtEnd() && isAlphaNum(l.peek(0)) {
		l.advance()
	}
	return l.src[start:l.cur], nil
}

// scanString reads a string delimited by matching " or ' quotes. Escape
// sequences are kept verbatim (a backslash protects the next byte, so \" does
// not close the string). A newline or EOF before the closing quote is fatal.
func (l *Lexer) scanString() (string, error) {
	quote := l.advance()
	start := l.cur
	for !l.isAtEnd() {
		c := l.peek(0)
		if c == '\\' {
			l.advance()
			if !l.isAtEnd() {
				l.advance()
			}
			continue
		}
		if c == quote {
			val := l.src[start:l.cur]
			l.advance() // closing quote
			return val, nil
		}
		if c == '\n' {
			return "", l.err("unterminated string literal")
		}
		l.advance()
	}
	return "", l.err("unterminated string literal")
}

// scanNumber reads digits with at most one decimal point. No sign, no
// exponent: unary minus is a separate operator token.
func (l *Lexer) scanNumber() (string, float64, error) {
	start := l.cur
	for !l.isAtEnd() && isDigit(l.peek(0)) {
		l.advance()
	}
	if l.peek(0) == '.' {
		l.advance()
		for !l.isAtEnd() && isDigit(l.peek(0)) {
			l.advance()
		}
	}
	lex := l.src[start:l.cur]
	v, convErr := strconv.ParseFloat(lex, 64)
	if convErr != nil {
		return "", 0, l.err("invalid number literal " + strconv.Quote(lex))
	}
	return lex, v, nil
}

// scanOperator matches the two-character operators by one byte of lookahead
// before falling back to the single-character form.
func (l *Lexer) scanOperator() {
	c := l.peek(0)
	next := l.peek(1)
	var tt TokenType
	length := 1

	switch c {
	case '=':
		if next == '=' {
			tt, length = EQ, 2
		} else {
			tt = ASSIGN
		}
	case '!':
		if next == '=' {
			tt, length = NE, 2
		} else {
			tt = NOT
		}
	case '<':
		if next == '=' {
			tt, length = LE, 2
		} else {
			tt = LT
		}
	case '>':
		if next == '=' {
			tt, length = GE, 2
		} else {
			tt = GT
		}
	case '+':
		tt = ADD
	case '-':
		tt = SUB
	case '*':
		tt = MUL
	case '/':
		tt = DIV
	case '%':
		tt = MOD
	case '^':
		tt = POW
	}

	lex := l.src[l.cur : l.cur+length]
	for i := 0; i < length; i++ {
		l.advance()
	}
	l.add(tt, lex, nil)
}

// Tokenize scans the entire source and returns the token sequence terminated
// by EOF. The first lexical error aborts the scan; callers should treat
// lexing as all-or-nothing per invocation.
func (l *Lexer) Tokenize() ([]Token, error) {
	for {
		l.skipWhitespace()
		if l.peek(0) == '/' && (l.peek(1) == '/' || l.peek(1) == '*') {
			l.skipComment()
			continue
		}
		if l.isAtEnd() {
			break
		}

		l.startToken()
		c := l.peek(0)

		switch {
		case c == '$':
			l.advance()
			name, err := l.scanIdentifier()
			if err != nil {
				return nil, err
			}
			l.add(VARIABLE_REF, name, nil)

		case c == '@':
			l.advance()
			name, err := l.scanIdentifier()
			if err != nil {
				return nil, err
			}
			l.add(TEMPLATE_CALL, name, nil)

		case c == '"' || c == '\'':
			val, err := l.scanString()
			if err != nil {
				return nil, err
			}
			l.add(STRING, val, val)

		case isDigit(c):
			lex, v, err := l.scanNumber()
			if err != nil {
				return nil, err
			}
			l.add(NUMBER, lex, v)

		case isAlpha(c):
			name, err := l.scanIdentifier()
			if err != nil {
				return nil, err
			}
			if tt, ok := keywords[name]; ok {
				l.add(tt, name, nil)
			} else {
				l.add(IDENTIFIER, name, nil)
			}

		case c == '=' || c == '!' || c == '<' || c == '>' ||
			c == '+' || c == '-' || c == '*' || c == '/' || c == '%' || c == '^':
			l.scanOperator()

		default:
			var tt TokenType
			switch c {
			case '{':
				tt = LBRACE
			case '}':
				tt = RBRACE
			case '(':
				tt = LPAREN
			case ')':
				tt = RPAREN
			case '[':
				tt = LBRACKET
			case ']':
				tt = RBRACKET
			case ',':
				tt = COMMA
			case ';':
				tt = SEMICOLON
			case ':':
				tt = COLON
			case '.':
				tt = DOT
			default:
				// Unrecognized bytes are skipped, not errors.
				l.advance()
				continue
			}
			l.add(tt, string(c), nil)
			l.advance()
		}
	}

	l.startToken()
	l.add(EOF, "", nil)
	return l.tokens, nil
}
