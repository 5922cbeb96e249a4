// codegen_test.go
package pcc

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func genJSON(t *testing.T, node Node) string {
	t.Helper()
	out, err := Generate(node, FormatJSON, nil)
	be.Err(t, err, nil)
	return out
}

func Test_Codegen_JSONProgram(t *testing.T) {
	prog := parseOK(t, `PROMPT p { "hi" }`)
	out := genJSON(t, prog)
	want := `{"type":"program","statements":[` +
		`{"type":"prompt_def","name":"p","body":` +
		`{"type":"element_list","elements":[` +
		`{"type":"text","text":"hi","raw":false}]}}]}`
	be.Equal(t, want, out)
}

func Test_Codegen_JSONVariableRefAndCall(t *testing.T) {
	prog := parseOK(t, `PROMPT p { $name @greet("x") }`)
	out := genJSON(t, prog)
	be.True(t, strings.Contains(out, `{"type":"variable_ref","name":"name"}`))
	be.True(t, strings.Contains(out, `{"type":"template_call","name":"greet","arguments":[{"type":"string","value":"x"}]}`))
}

func Test_Codegen_JSONLiterals(t *testing.T) {
	be.Equal(t, `{"type":"number","value":3.14}`, genJSON(t, &NumberLit{Value: 3.14}))
	be.Equal(t, `{"type":"number","value":42}`, genJSON(t, &NumberLit{Value: 42}))
	be.Equal(t, `{"type":"boolean","value":true}`, genJSON(t, &BoolLit{Value: true}))
	be.Equal(t, `{"type":"string","value":"s"}`, genJSON(t, &StringLit{Value: "s"}))
}

func Test_Codegen_JSONRawFlag(t *testing.T) {
	prog := parseOK(t, `PROMPT p { RAW "as-is" }`)
	be.True(t, strings.Contains(genJSON(t, prog), `"raw":true`))
}

func Test_Codegen_JSONFallbackForUnhandledKinds(t *testing.T) {
	prog := parseOK(t, `VAR x = 1;`)
	out := genJSON(t, prog)
	// declarations have no dedicated JSON rendering and degrade to a tag
	be.Equal(t, `{"type":"program","statements":[{"type":"VAR_DECL"}]}`, out)

	be.Equal(t, `{"type":"IF_STMT"}`, genJSON(t, &IfStmt{Cond: &BoolLit{}}))
	be.Equal(t, `{"type":"EMPTY"}`, genJSON(t, &Empty{}))
}

func Test_Codegen_JSONUnescapedByDefault(t *testing.T) {
	out := genJSON(t, &StringLit{Value: `say "hi"`})
	// verbatim substitution: the payload's quotes pass straight through
	be.Equal(t, `{"type":"string","value":"say "hi""}`, out)
}

func Test_Codegen_JSONEscapingOptIn(t *testing.T) {
	gen := NewGenerator(FormatJSON, nil)
	gen.EscapeStrings = true
	out, err := gen.Generate(&StringLit{Value: "say \"hi\"\n\tdone\\"})
	be.Err(t, err, nil)

	var parsed struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}
	be.Err(t, json.Unmarshal([]byte(out), &parsed), nil)
	be.Equal(t, "say \"hi\"\n\tdone\\", parsed.Value)
}

func Test_Codegen_TextOutput(t *testing.T) {
	prog := parseOK(t, `PROMPT p { "Hello, " $name "!" }`)
	out, err := Generate(prog, FormatText, nil)
	be.Err(t, err, nil)
	be.Equal(t, "Prompt: p\nHello, $name!\n", out)
}

func Test_Codegen_MarkdownOutput(t *testing.T) {
	prog := parseOK(t, `PROMPT p { "Hello, " $name " " @sig(1) }`)
	out, err := Generate(prog, FormatMarkdown, nil)
	be.Err(t, err, nil)
	be.True(t, strings.HasPrefix(out, "## Prompt: p\n\n"))
	be.True(t, strings.Contains(out, "`$name`"))
	be.True(t, strings.Contains(out, "`@sig(1)`"))
}

func Test_Codegen_FormatStability(t *testing.T) {
	// literal text survives verbatim in both text formats
	prog := parseOK(t, `PROMPT p { "alpha " $x " omega" }`)
	text, err := Generate(prog, FormatText, nil)
	be.Err(t, err, nil)
	md, err := Generate(prog, FormatMarkdown, nil)
	be.Err(t, err, nil)

	for _, lit := range []string{"alpha ", " omega"} {
		be.True(t, strings.Contains(text, lit))
		be.True(t, strings.Contains(md, lit))
	}
	be.True(t, strings.Contains(text, "$x"))
	be.True(t, strings.Contains(md, "`$x`"))
}

func Test_Codegen_NumberFormatting(t *testing.T) {
	cases := map[float64]string{
		5:    "5",
		2.5:  "2.5",
		-0.1: "-0.1",
		1e21: "1e+21",
	}
	for v, want := range cases {
		be.Equal(t, `{"type":"number","value":`+want+`}`, genJSON(t, &NumberLit{Value: v}))
	}
}

func Test_Codegen_GeneratorReuse(t *testing.T) {
	gen := NewGenerator(FormatText, nil)
	first, err := gen.Generate(&TextElement{Text: "one"})
	be.Err(t, err, nil)
	second, err := gen.Generate(&TextElement{Text: "two"})
	be.Err(t, err, nil)
	be.Equal(t, "one", first)
	be.Equal(t, "two", second)
}

func Test_Codegen_NilRoot(t *testing.T) {
	_, err := Generate(nil, FormatJSON, nil)
	be.True(t, err != nil)
}

func Test_Codegen_RenderHTML(t *testing.T) {
	prog := parseOK(t, `PROMPT p { "body text " $x }`)
	html, err := RenderHTML(prog, nil)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(html, "<h2"))
	be.True(t, strings.Contains(html, "body text"))
	be.True(t, strings.Contains(html, "<code>$x</code>"))
}

func Test_Codegen_DeeplyNestedTreeReportsDepthLimit(t *testing.T) {
	var node Node = &TextElement{Text: "x"}
	for i := 0; i < 600; i++ {
		node = &List{ListKind: KindElementList, Elems: []Node{node}}
	}
	_, err := Generate(node, FormatJSON, nil)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "nesting exceeds depth limit"))
}
