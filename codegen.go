// codegen.go: serializes a (possibly optimized) AST to JSON, plain text or
// Markdown, plus a Markdown-to-HTML rendering helper.
//
// JSON output tags every object with "type" and nests children as objects or
// arrays. By default strings are substituted into the output verbatim, which
// keeps generated output byte-stable but means text containing quotes or
// backslashes does not produce valid JSON; EscapeStrings opts into proper
// escaping at the cost of that stability. Text and Markdown walk only prompt
// definitions and their body elements.
package pcc

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Generator serializes AST nodes into one output format.
type Generator struct {
	format OutputFormat
	table  *SymbolTable // read-only; reserved for symbol-aware rendering

	// EscapeStrings makes JSON output escape quotes, backslashes and control
	// characters inside string payloads. Off by default.
	EscapeStrings bool

	out   strings.Builder
	depth int
	err   error
}

// NewGenerator creates a generator for format. table may be nil.
func NewGenerator(format OutputFormat, table *SymbolTable) *Generator {
	return &Generator{format: format, table: table}
}

// Generate serializes root with a default generator.
func Generate(root Node, format OutputFormat, table *SymbolTable) (string, error) {
	return NewGenerator(format, table).Generate(root)
}

// Format returns the generator's output format.
func (g *Generator) Format() OutputFormat { return g.format }

// SetFormat changes the output format for subsequent Generate calls.
func (g *Generator) SetFormat(format OutputFormat) { g.format = format }

// Generate serializes root and returns the output string. The internal
// buffer is reset on every call, so a generator can be reused.
func (g *Generator) Generate(root Node) (string, error) {
	if root == nil {
		return "", &GenError{Msg: "nil AST root"}
	}
	g.out.Reset()
	g.depth = 0
	g.err = nil

	switch g.format {
	case FormatJSON:
		g.emitJSON(root)
	case FormatText:
		g.emitText(root)
	case FormatMarkdown:
		g.emitMarkdown(root)
	default:
		return "", &GenError{Msg: "unknown output format"}
	}
	if g.err != nil {
		return "", g.err
	}
	return g.out.String(), nil
}

func (g *Generator) enter() bool {
	g.depth++
	if g.depth > maxTreeDepth {
		if g.err == nil {
			g.err = &GenError{Msg: "tree nesting exceeds depth limit"}
		}
		return false
	}
	return true
}

func (g *Generator) leave() { g.depth-- }

func (g *Generator) str(s string) {
	if g.EscapeStrings {
		g.out.WriteString(escapeJSON(s))
	} else {
		g.out.WriteString(s)
	}
}

// escapeJSON escapes the characters JSON reserves inside string values.
func escapeJSON(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 {
				b.WriteString(`\u00`)
				const hex = "0123456789abcdef"
				b.WriteByte(hex[c>>4])
				b.WriteByte(hex[c&0xf])
			} else {
				b.WriteByte(c)
			}
		}
	}
	return b.String()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

/* ===========================
   JSON
   =========================== */

func (g *Generator) emitJSON(node Node) {
	if node == nil || !g.enter() {
		return
	}
	defer g.leave()

	switch n := node.(type) {
	case *Program:
		g.out.WriteString(`{"type":"program","statements":[`)
		for i, stmt := range n.Statements {
			if i > 0 {
				g.out.WriteString(",")
			}
			g.emitJSON(stmt)
		}
		g.out.WriteString(`]}`)

	case *PromptDef:
		g.out.WriteString(`{"type":"prompt_def","name":"`)
		g.str(n.Name)
		g.out.WriteString(`","body":`)
		if n.Body != nil {
			g.emitJSON(n.Body)
		} else {
			g.out.WriteString("null")
		}
		g.out.WriteString("}")

	case *TextElement:
		g.out.WriteString(`{"type":"text","text":"`)
		g.str(n.Text)
		g.out.WriteString(`","raw":`)
		g.out.WriteString(strconv.FormatBool(n.Raw))
		g.out.WriteString("}")

	case *VariableRef:
		g.out.WriteString(`{"type":"variable_ref","name":"`)
		g.str(n.Name)
		g.out.WriteString(`"}`)

	case *TemplateCall:
		g.emitJSONCall("template_call", n.Name, n.Args)

	case *FunctionCall:
		g.emitJSONCall("function_call", n.Name, n.Args)

	case *StringLit:
		g.out.WriteString(`{"type":"string","value":"`)
		g.str(n.Value)
		g.out.WriteString(`"}`)

	case *NumberLit:
		g.out.WriteString(`{"type":"number","value":`)
		g.out.WriteString(formatNumber(n.Value))
		g.out.WriteString("}")

	case *BoolLit:
		g.out.WriteString(`{"type":"boolean","value":`)
		g.out.WriteString(strconv.FormatBool(n.Value))
		g.out.WriteString("}")

	case *List:
		switch n.ListKind {
		case KindStatementList, KindExpressionList, KindElementList, KindArgumentList:
			g.out.WriteString(`{"type":"`)
			g.out.WriteString(strings.ToLower(string(n.ListKind)))
			g.out.WriteString(`","elements":[`)
			for i, elem := range n.Elems {
				if i > 0 {
					g.out.WriteString(",")
				}
				g.emitJSON(elem)
			}
			g.out.WriteString(`]}`)
		default:
			g.emitJSONFallback(node)
		}

	default:
		g.emitJSONFallback(node)
	}
}

func (g *Generator) emitJSONCall(tag, name string, args []Node) {
	g.out.WriteString(`{"type":"`)
	g.out.WriteString(tag)
	g.out.WriteString(`","name":"`)
	g.str(name)
	g.out.WriteString(`","arguments":[`)
	for i, arg := range args {
		if i > 0 {
			g.out.WriteString(",")
		}
		g.emitJSON(arg)
	}
	g.out.WriteString(`]}`)
}

// emitJSONFallback degrades an unhandled kind to a minimal tagged object.
func (g *Generator) emitJSONFallback(node Node) {
	g.out.WriteString(`{"type":"`)
	g.out.WriteString(string(node.Kind()))
	g.out.WriteString(`"}`)
}

/* ===========================
   Text
   =========================== */

func (g *Generator) emitText(node Node) {
	if node == nil || !g.enter() {
		return
	}
	defer g.leave()

	switch n := node.(type) {
	case *Program:
		for _, stmt := range n.Statements {
			g.emitText(stmt)
			g.out.WriteString("\n")
		}

	case *PromptDef:
		g.out.WriteString("Prompt: ")
		g.out.WriteString(n.Name)
		g.out.WriteString("\n")
		if n.Body != nil {
			g.emitText(n.Body)
		}

	case *TextElement:
		g.out.WriteString(n.Text)

	case *VariableRef:
		g.out.WriteString("$")
		g.out.WriteString(n.Name)

	case *TemplateCall:
		g.emitTextCall(n.Name, n.Args, false)

	case *FunctionCall:
		g.emitTextCall(n.Name, n.Args, false)

	case *List:
		if n.ListKind == KindElementList {
			for _, elem := range n.Elems {
				g.emitText(elem)
			}
		}
	}
}

func (g *Generator) emitTextCall(name string, args []Node, markdown bool) {
	g.out.WriteString("@")
	g.out.WriteString(name)
	g.out.WriteString("(")
	for i, arg := range args {
		if i > 0 {
			g.out.WriteString(", ")
		}
		if markdown {
			g.emitMarkdown(arg)
		} else {
			g.emitText(arg)
		}
	}
	g.out.WriteString(")")
}

/* ===========================
   Markdown
   =========================== */

func (g *Generator) emitMarkdown(node Node) {
	if node == nil || !g.enter() {
		return
	}
	defer g.leave()

	switch n := node.(type) {
	case *Program:
		for _, stmt := range n.Statements {
			g.emitMarkdown(stmt)
			g.out.WriteString("\n\n")
		}

	case *PromptDef:
		g.out.WriteString("## Prompt: ")
		g.out.WriteString(n.Name)
		g.out.WriteString("\n\n")
		if n.Body != nil {
			g.emitMarkdown(n.Body)
		}

	case *TextElement:
		g.out.WriteString(n.Text)

	case *VariableRef:
		g.out.WriteString("`$")
		g.out.WriteString(n.Name)
		g.out.WriteString("`")

	case *TemplateCall:
		g.out.WriteString("`")
		g.emitTextCall(n.Name, n.Args, true)
		g.out.WriteString("`")

	case *FunctionCall:
		g.out.WriteString("`")
		g.emitTextCall(n.Name, n.Args, true)
		g.out.WriteString("`")

	case *List:
		if n.ListKind == KindElementList {
			for _, elem := range n.Elems {
				g.emitMarkdown(elem)
			}
		}
	}
}

/* ===========================
   HTML
   =========================== */

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// RenderHTML converts the generator's Markdown output for root into HTML.
// Only meaningful for FormatMarkdown input; other formats render as plain
// Markdown text would.
func RenderHTML(root Node, table *SymbolTable) (string, error) {
	md, err := Generate(root, FormatMarkdown, table)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(md), &buf); err != nil {
		return "", &GenError{Msg: "markdown rendering failed: " + err.Error()}
	}
	return buf.String(), nil
}
