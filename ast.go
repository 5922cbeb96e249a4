// ast.go: tagged-variant AST for the prompt DSL.
//
// Every node kind is its own struct implementing Node, so a type switch over
// nodes gets the exhaustiveness checking of a tagged union. The tree is
// strict: each non-root node has exactly one owner and there are
// no parent or sibling links. Nodes are built bottom-up by the parser and may
// be *replaced* (never shared) by the optimizer.
//
// List containers (statement/expression/parameter/argument/constraint/element
// lists) share the List struct, distinguished by ListKind; they are the only
// nodes whose children live in a slice rather than named fields.
package pcc

// NodeKind names a node variant. The names double as the JSON generator's
// fallback "type" tags for kinds it has no dedicated rendering for.
type NodeKind string

const (
	KindProgram        NodeKind = "PROGRAM"
	KindPromptDef      NodeKind = "PROMPT_DEF"
	KindVarDecl        NodeKind = "VAR_DECL"
	KindTemplateDef    NodeKind = "TEMPLATE_DEF"
	KindConstraintDef  NodeKind = "CONSTRAINT_DEF"
	KindOutputSpec     NodeKind = "OUTPUT_SPEC"
	KindIdentifier     NodeKind = "IDENTIFIER"
	KindStringLit      NodeKind = "STRING_LITERAL"
	KindNumberLit      NodeKind = "NUMBER_LITERAL"
	KindBoolLit        NodeKind = "BOOLEAN_LITERAL"
	KindBinaryExpr     NodeKind = "BINARY_EXPR"
	KindUnaryExpr      NodeKind = "UNARY_EXPR"
	KindVariableRef    NodeKind = "VARIABLE_REF"
	KindTemplateCall   NodeKind = "TEMPLATE_CALL"
	KindFunctionCall   NodeKind = "FUNCTION_CALL"
	KindIfStmt         NodeKind = "IF_STMT"
	KindForStmt        NodeKind = "FOR_STMT"
	KindWhileStmt      NodeKind = "WHILE_STMT"
	KindTextElement    NodeKind = "TEXT_ELEMENT"
	KindConstraintExpr NodeKind = "CONSTRAINT_EXPR"
	KindStatementList  NodeKind = "STATEMENT_LIST"
	KindExpressionList NodeKind = "EXPRESSION_LIST"
	KindParameterList  NodeKind = "PARAMETER_LIST"
	KindArgumentList   NodeKind = "ARGUMENT_LIST"
	KindConstraintList NodeKind = "CONSTRAINT_LIST"
	KindElementList    NodeKind = "ELEMENT_LIST"
	KindEmpty          NodeKind = "EMPTY"
)

// Node is implemented by every AST node.
type Node interface {
	Kind() NodeKind
	Pos() Position
}

// OutputFormat selects the code generator's target.
type OutputFormat int

const (
	FormatJSON OutputFormat = iota
	FormatText
	FormatMarkdown
)

func (f OutputFormat) String() string {
	switch f {
	case FormatJSON:
		return "JSON"
	case FormatText:
		return "TEXT"
	case FormatMarkdown:
		return "MARKDOWN"
	default:
		return "UNKNOWN"
	}
}

// Program is the root node.
type Program struct {
	Statements []Node
	Position   Position
}

// PromptDef is `PROMPT name { elements }`.
type PromptDef struct {
	Name     string
	Body     *List // element list; may be nil for an empty prompt
	Position Position
}

// VarDecl is `VAR name = expr;`.
type VarDecl struct {
	Name     string
	Init     Node
	Position Position
}

// TemplateDef is `TEMPLATE name(params) { elements }`.
type TemplateDef struct {
	Name     string
	Params   []string
	Body     *List
	Position Position
}

// ConstraintDef is `CONSTRAINT name { constraint-exprs }`.
type ConstraintDef struct {
	Name        string
	Constraints []*ConstraintExpr
	Position    Position
}

// ConstraintExpr is one `identifier op value;` triple inside a CONSTRAINT.
type ConstraintExpr struct {
	Variable string
	Op       TokenType
	Value    Node
	Position Position
}

// OutputSpec is `OUTPUT name AS format;`.
type OutputSpec struct {
	Name     string
	Format   OutputFormat
	Position Position
}

// Identifier is a bare name in expression position.
type Identifier struct {
	Name     string
	Position Position
}

// StringLit holds a string literal with escape sequences kept verbatim.
type StringLit struct {
	Value    string
	Position Position
}

// NumberLit holds a numeric literal. All DSL numbers are float64.
type NumberLit struct {
	Value    float64
	Position Position
}

// BoolLit holds `true` or `false`.
type BoolLit struct {
	Value    bool
	Position Position
}

// BinaryExpr is `left op right`; Op is the operator's token type.
type BinaryExpr struct {
	Op       TokenType
	Left     Node
	Right    Node
	Position Position
}

// UnaryExpr is `op operand` (unary minus or NOT).
type UnaryExpr struct {
	Op       TokenType
	Operand  Node
	Position Position
}

// VariableRef is `$name`, in expressions or as a prompt-body element.
type VariableRef struct {
	Name     string
	Position Position
}

// TemplateCall is `@name(args)`.
type TemplateCall struct {
	Name     string
	Args     []Node
	Position Position
}

// FunctionCall is `name(args)` in expression position.
type FunctionCall struct {
	Name     string
	Args     []Node
	Position Position
}

// IfStmt is `IF cond { then } ELSE { else }`; Else may be nil.
type IfStmt struct {
	Cond     Node
	Then     Node
	Else     Node
	Position Position
}

// ForStmt is `FOR var IN iterable { body }`.
type ForStmt struct {
	Var      string
	Iterable Node
	Body     Node
	Position Position
}

// WhileStmt is `WHILE cond { body }`.
type WhileStmt struct {
	Cond     Node
	Body     Node
	Position Position
}

// TextElement is literal prompt text. Raw marks `RAW "..."` elements whose
// content must pass through generators untouched.
type TextElement struct {
	Text     string
	Raw      bool
	Position Position
}

// List is the shared container node for the six list kinds.
type List struct {
	ListKind NodeKind
	Elems    []Node
	Position Position
}

// Empty is a placeholder node (e.g. an eliminated branch).
type Empty struct {
	Position Position
}

func (n *Program) Kind() NodeKind        { return KindProgram }
func (n *PromptDef) Kind() NodeKind      { return KindPromptDef }
func (n *VarDecl) Kind() NodeKind        { return KindVarDecl }
func (n *TemplateDef) Kind() NodeKind    { return KindTemplateDef }
func (n *ConstraintDef) Kind() NodeKind  { return KindConstraintDef }
func (n *ConstraintExpr) Kind() NodeKind { return KindConstraintExpr }
func (n *OutputSpec) Kind() NodeKind     { return KindOutputSpec }
func (n *Identifier) Kind() NodeKind     { return KindIdentifier }
func (n *StringLit) Kind() NodeKind      { return KindStringLit }
func (n *NumberLit) Kind() NodeKind      { return KindNumberLit }
func (n *BoolLit) Kind() NodeKind        { return KindBoolLit }
func (n *BinaryExpr) Kind() NodeKind     { return KindBinaryExpr }
func (n *UnaryExpr) Kind() NodeKind      { return KindUnaryExpr }
func (n *VariableRef) Kind() NodeKind    { return KindVariableRef }
func (n *TemplateCall) Kind() NodeKind   { return KindTemplateCall }
func (n *FunctionCall) Kind() NodeKind   { return KindFunctionCall }
func (n *IfStmt) Kind() NodeKind         { return KindIfStmt }
func (n *ForStmt) Kind() NodeKind        { return KindForStmt }
func (n *WhileStmt) Kind() NodeKind      { return KindWhileStmt }
func (n *TextElement) Kind() NodeKind    { return KindTextElement }
func (n *List) Kind() NodeKind           { return n.ListKind }
func (n *Empty) Kind() NodeKind          { return KindEmpty }

func (n *Program) Pos() Position        { return n.Position }
func (n *PromptDef) Pos() Position      { return n.Position }
func (n *VarDecl) Pos() Position        { return n.Position }
func (n *TemplateDef) Pos() Position    { return n.Position }
func (n *ConstraintDef) Pos() Position  { return n.Position }
func (n *ConstraintExpr) Pos() Position { return n.Position }
func (n *OutputSpec) Pos() Position     { return n.Position }
func (n *Identifier) Pos() Position     { return n.Position }
func (n *StringLit) Pos() Position      { return n.Position }
func (n *NumberLit) Pos() Position      { return n.Position }
func (n *BoolLit) Pos() Position        { return n.Position }
func (n *BinaryExpr) Pos() Position     { return n.Position }
func (n *UnaryExpr) Pos() Position      { return n.Position }
func (n *VariableRef) Pos() Position    { return n.Position }
func (n *TemplateCall) Pos() Position   { return n.Position }
func (n *FunctionCall) Pos() Position   { return n.Position }
func (n *IfStmt) Pos() Position         { return n.Position }
func (n *ForStmt) Pos() Position        { return n.Position }
func (n *WhileStmt) Pos() Position      { return n.Position }
func (n *TextElement) Pos() Position    { return n.Position }
func (n *List) Pos() Position           { return n.Position }
func (n *Empty) Pos() Position          { return n.Position }
