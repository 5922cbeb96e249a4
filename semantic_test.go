// semantic_test.go
package pcc

import (
	"testing"

	"github.com/nalgeon/be"
)

func analyzeSrc(t *testing.T, src string) ([]*SemanticError, *SymbolTable) {
	t.Helper()
	prog := parseOK(t, src)
	return Analyze(prog)
}

func Test_Semantic_CleanProgram(t *testing.T) {
	errs, table := analyzeSrc(t, `
VAR greeting = "Hi";
PROMPT p { "$greeting, world" }
OUTPUT p AS JSON;
`)
	be.Equal(t, 0, len(errs))
	be.Equal(t, SymVariable, table.Lookup("greeting").Type)
	be.Equal(t, SymPrompt, table.Lookup("p").Type)
}

func Test_Semantic_UndefinedVariableRef(t *testing.T) {
	errs, _ := analyzeSrc(t, `PROMPT p { "$nobody" }`)
	be.Equal(t, 1, len(errs))
	be.Equal(t, CodeUndefinedSymbol, errs[0].Code)
	// the error points at the reference, not anywhere else
	be.Equal(t, 1, errs[0].Pos.Line)
	be.Equal(t, 12, errs[0].Pos.Column)
}

func Test_Semantic_UndefinedTemplateCall(t *testing.T) {
	errs, _ := analyzeSrc(t, `PROMPT p { @ghost() }`)
	be.Equal(t, 1, len(errs))
	be.Equal(t, CodeUndefinedSymbol, errs[0].Code)
}

func Test_Semantic_RedefinitionSameScope(t *testing.T) {
	errs, _ := analyzeSrc(t, `
VAR x = 1;
VAR x = 2;
`)
	be.Equal(t, 1, len(errs))
	be.Equal(t, CodeRedefinedSymbol, errs[0].Code)
}

func Test_Semantic_TemplateParameterShadowsGlobal(t *testing.T) {
	errs, _ := analyzeSrc(t, `
VAR x = 1;
TEMPLATE t(x) { "$x" }
`)
	be.Equal(t, 0, len(errs))
}

func Test_Semantic_ParameterScopeEndsWithTemplate(t *testing.T) {
	errs, _ := analyzeSrc(t, `
TEMPLATE t(inner) { "$inner" }
PROMPT p { "$inner" }
`)
	be.Equal(t, 1, len(errs))
	be.Equal(t, CodeUndefinedSymbol, errs[0].Code)
}

func Test_Semantic_VariableRefKindCheck(t *testing.T) {
	// $t names a template, not a variable
	errs, _ := analyzeSrc(t, `
TEMPLATE t() { "x" }
PROMPT p { "$t" }
`)
	be.Equal(t, 1, len(errs))
	be.Equal(t, CodeTypeMismatch, errs[0].Code)
}

func Test_Semantic_TemplateCallKindCheck(t *testing.T) {
	errs, _ := analyzeSrc(t, `
VAR v = 1;
PROMPT p { @v() }
`)
	be.Equal(t, 1, len(errs))
	be.Equal(t, CodeTypeMismatch, errs[0].Code)
}

func Test_Semantic_OutputMustNamePrompt(t *testing.T) {
	errs, _ := analyzeSrc(t, `
VAR v = 1;
OUTPUT v AS TEXT;
`)
	be.Equal(t, 1, len(errs))
	be.Equal(t, CodeTypeMismatch, errs[0].Code)

	errs, _ = analyzeSrc(t, `OUTPUT ghost AS TEXT;`)
	be.Equal(t, 1, len(errs))
	be.Equal(t, CodeUndefinedSymbol, errs[0].Code)
}

func Test_Semantic_DefinitionOrderMatters(t *testing.T) {
	// reference before definition is undefined
	errs, _ := analyzeSrc(t, `
PROMPT p { "$later" }
VAR later = 1;
`)
	be.Equal(t, 1, len(errs))
	be.Equal(t, CodeUndefinedSymbol, errs[0].Code)
}

func Test_Semantic_CallArity(t *testing.T) {
	errs, _ := analyzeSrc(t, `
TEMPLATE greet(name) { "Hello $name" }
PROMPT p { @greet() }
`)
	be.Equal(t, 1, len(errs))
	be.Equal(t, CodeMissingArgument, errs[0].Code)

	errs, _ = analyzeSrc(t, `
TEMPLATE greet(name) { "Hello $name" }
PROMPT p { @greet("a", "b") }
`)
	be.Equal(t, 1, len(errs))
	be.Equal(t, CodeTooManyArguments, errs[0].Code)
}

func Test_Semantic_ForLoopVariableScope(t *testing.T) {
	errs, _ := analyzeSrc(t, `
VAR items = "abc";
PROMPT p {
	FOR item IN $items { "$item" }
}
`)
	be.Equal(t, 0, len(errs))

	// loop variable is not visible after the loop
	errs, _ = analyzeSrc(t, `
VAR items = "abc";
PROMPT p {
	FOR item IN $items { "x" }
	"$item"
}
`)
	be.Equal(t, 1, len(errs))
	be.Equal(t, CodeUndefinedSymbol, errs[0].Code)
}

func Test_Semantic_ConstraintReferences(t *testing.T) {
	errs, _ := analyzeSrc(t, `
VAR tone = "formal";
CONSTRAINT limits { tone == "formal"; }
`)
	be.Equal(t, 0, len(errs))

	errs, _ = analyzeSrc(t, `CONSTRAINT limits { ghost == 1; }`)
	be.Equal(t, 1, len(errs))
	be.Equal(t, CodeUndefinedSymbol, errs[0].Code)
}

func Test_Semantic_ErrorsAccumulate(t *testing.T) {
	errs, _ := analyzeSrc(t, `PROMPT p { "$a" "$b" @c() }`)
	be.Equal(t, 3, len(errs))
}

func Test_Semantic_MarksUsage(t *testing.T) {
	_, table := analyzeSrc(t, `
VAR used = 1;
VAR unused = 2;
PROMPT p { "$used" }
OUTPUT p AS TEXT;
`)
	be.True(t, table.Lookup("used").Used)
	be.True(t, !table.Lookup("unused").Used)
	be.True(t, table.Lookup("p").Used)
}
