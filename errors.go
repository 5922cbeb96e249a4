// errors.go: error types shared by the pipeline stages plus user-facing
// caret-snippet rendering.
//
// Every stage reports errors as data carrying a Position; nothing in this
// file is fatal. WrapErrorWithSource recognizes the pipeline's error types
// and re-renders them as a multi-line snippet with a caret pointing at the
// offending column:
//
//	PARSE ERROR at 3:12: expected '}' to close prompt body
//
//	   2 | PROMPT p {
//	   3 |     $greeting )
//	       |            ^
//	   4 | OUTPUT p AS JSON;
//
// Other error kinds pass through unchanged. Output is plain text, suitable
// for logs and terminals.
package pcc

import (
	"fmt"
	"strings"
)

// Position locates a token or error in the source. Line and Column are
// 1-based; Filename is whatever the caller handed to Tokenize.
type Position struct {
	Line     int
	Column   int
	Filename string
}

func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// LexError aborts tokenization; lexing is all-or-nothing per invocation.
type LexError struct {
	Msg string
	Pos Position
}

func (e *LexError) Error() string {
	return fmt.Sprintf("LEXICAL ERROR at %s: %s", e.Pos, e.Msg)
}

// ParseError is recorded per occurrence; the parser recovers and continues.
type ParseError struct {
	Msg string
	Pos Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %s: %s", e.Pos, e.Msg)
}

// SemanticCode classifies a semantic error.
type SemanticCode int

const (
	CodeUndefinedSymbol SemanticCode = iota + 1
	CodeRedefinedSymbol
	CodeTypeMismatch
	CodeInvalidOperation
	CodeMissingArgument
	CodeTooManyArguments
)

func (c SemanticCode) String() string {
	switch c {
	case CodeUndefinedSymbol:
		return "undefined-symbol"
	case CodeRedefinedSymbol:
		return "redefined-symbol"
	case CodeTypeMismatch:
		return "type-mismatch"
	case CodeInvalidOperation:
		return "invalid-operation"
	case CodeMissingArgument:
		return "missing-argument"
	case CodeTooManyArguments:
		return "too-many-arguments"
	default:
		return "unknown"
	}
}

// SemanticError accumulates on the symbol table during analysis.
type SemanticError struct {
	Msg  string
	Pos  Position
	Code SemanticCode
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("SEMANTIC ERROR at %s: %s [%s]", e.Pos, e.Msg, e.Code)
}

// GenError reports a code-generation failure (bad format, depth exhaustion).
type GenError struct {
	Msg string
}

func (e *GenError) Error() string { return "GENERATION ERROR: " + e.Msg }

/* ===========================
   Caret snippets
   =========================== */

// WrapErrorWithSource returns an error whose message is a caret-annotated
// snippet of src when err is one of the pipeline's positioned errors.
// Anything else is returned unchanged.
func WrapErrorWithSource(err error, src string) error {
	switch e := err.(type) {
	case *LexError:
		return fmt.Errorf("%s", snippet(src, "LEXICAL ERROR", e.Pos, e.Msg))
	case *ParseError:
		return fmt.Errorf("%s", snippet(src, "PARSE ERROR", e.Pos, e.Msg))
	case *SemanticError:
		return fmt.Errorf("%s", snippet(src, "SEMANTIC ERROR", e.Pos, e.Msg))
	default:
		return err
	}
}

// snippet builds a Python-like excerpt with a header and a caret. It shows at
// most one previous and one next line; coordinates are clamped to the source.
func snippet(src, header string, pos Position, msg string) string {
	lines := strings.Split(src, "\n")
	line, col := pos.Line, pos.Column
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	lineTxt := lines[line-1]

	var b strings.Builder
	if pos.Filename != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, pos.Filename, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
