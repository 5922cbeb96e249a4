// errors_test.go
package pcc

import (
	"errors"
	"strings"
	"testing"
)

func Test_Errors_Messages(t *testing.T) {
	pos := Position{Line: 3, Column: 7, Filename: "x.pcc"}

	lex := &LexError{Msg: "unterminated string literal", Pos: pos}
	if got := lex.Error(); got != "LEXICAL ERROR at x.pcc:3:7: unterminated string literal" {
		t.Fatalf("lex error: %q", got)
	}

	sem := &SemanticError{Msg: "undefined variable '$x'", Pos: pos, Code: CodeUndefinedSymbol}
	if !strings.Contains(sem.Error(), "[undefined-symbol]") {
		t.Fatalf("semantic error should carry its code: %q", sem.Error())
	}
}

func Test_Errors_PositionString(t *testing.T) {
	if got := (Position{Line: 2, Column: 9}).String(); got != "2:9" {
		t.Fatalf("got %q", got)
	}
	if got := (Position{Line: 2, Column: 9, Filename: "f"}).String(); got != "f:2:9" {
		t.Fatalf("got %q", got)
	}
}

func Test_Errors_SemanticCodeNames(t *testing.T) {
	want := map[SemanticCode]string{
		CodeUndefinedSymbol:  "undefined-symbol",
		CodeRedefinedSymbol:  "redefined-symbol",
		CodeTypeMismatch:     "type-mismatch",
		CodeInvalidOperation: "invalid-operation",
		CodeMissingArgument:  "missing-argument",
		CodeTooManyArguments: "too-many-arguments",
	}
	for code, name := range want {
		if code.String() != name {
			t.Fatalf("code %d: want %q, got %q", code, name, code.String())
		}
	}
}

func Test_WrapErrorWithSource_Snippet(t *testing.T) {
	src := "PROMPT p {\n    $greeting )\nOUTPUT p AS JSON;"
	err := &ParseError{
		Msg: "unexpected ')'",
		Pos: Position{Line: 2, Column: 15},
	}
	wrapped := WrapErrorWithSource(err, src)
	out := wrapped.Error()

	for _, want := range []string{
		"PARSE ERROR at 2:15: unexpected ')'",
		"   1 | PROMPT p {",
		"   2 |     $greeting )",
		"     |               ^",
		"   3 | OUTPUT p AS JSON;",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("snippet missing %q:\n%s", want, out)
		}
	}
}

func Test_WrapErrorWithSource_ClampsCoordinates(t *testing.T) {
	err := &LexError{Msg: "m", Pos: Position{Line: 99, Column: 99}}
	out := WrapErrorWithSource(err, "one line").Error()
	if !strings.Contains(out, "one line") {
		t.Fatalf("out-of-range position should clamp to the source:\n%s", out)
	}
}

func Test_WrapErrorWithSource_PassThrough(t *testing.T) {
	plain := errors.New("not positioned")
	if WrapErrorWithSource(plain, "src") != plain {
		t.Fatal("unrelated errors must pass through unchanged")
	}
}
