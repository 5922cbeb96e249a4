// optimizer_test.go
package pcc

import (
	"testing"

	"github.com/nalgeon/be"
)

func num(v float64) *NumberLit  { return &NumberLit{Value: v} }
func boolean(v bool) *BoolLit   { return &BoolLit{Value: v} }
func binary(op TokenType, l, r Node) *BinaryExpr {
	return &BinaryExpr{Op: op, Left: l, Right: r}
}

func Test_Optimizer_FoldsArithmetic(t *testing.T) {
	cases := []struct {
		op   TokenType
		a, b float64
		want float64
	}{
		{ADD, 2, 3, 5},
		{SUB, 10, 4, 6},
		{MUL, 6, 7, 42},
		{DIV, 10, 4, 2.5},
		{MOD, 10, 3, 1},
		{POW, 2, 10, 1024},
	}
	for _, c := range cases {
		opt := NewOptimizer(PassConstantFolding)
		out := opt.Optimize(binary(c.op, num(c.a), num(c.b)))
		lit, ok := out.(*NumberLit)
		be.True(t, ok)
		be.Equal(t, c.want, lit.Value)
		be.Equal(t, 1, opt.Applied())
	}
}

func Test_Optimizer_DivisionByZeroNotFolded(t *testing.T) {
	for _, op := range []TokenType{DIV, MOD} {
		opt := NewOptimizer(PassAll)
		out := opt.Optimize(binary(op, num(1), num(0)))
		_, stillBinary := out.(*BinaryExpr)
		be.True(t, stillBinary)
		be.Equal(t, 0, opt.Applied())
	}
}

func Test_Optimizer_NestedFolding(t *testing.T) {
	// (1 + 2) * (3 + 4) folds bottom-up into 21
	expr := binary(MUL, binary(ADD, num(1), num(2)), binary(ADD, num(3), num(4)))
	opt := NewOptimizer(PassConstantFolding)
	out := opt.Optimize(expr)
	lit, ok := out.(*NumberLit)
	be.True(t, ok)
	be.Equal(t, 21.0, lit.Value)
	be.Equal(t, 3, opt.Applied())
}

func Test_Optimizer_StringOperandsNeverFold(t *testing.T) {
	expr := binary(ADD, &StringLit{Value: "a"}, &StringLit{Value: "b"})
	opt := NewOptimizer(PassAll)
	out := opt.Optimize(expr)
	_, stillBinary := out.(*BinaryExpr)
	be.True(t, stillBinary)
	be.Equal(t, 0, opt.Applied())
}

func Test_Optimizer_UnaryFolding(t *testing.T) {
	opt := NewOptimizer(PassConstantFolding)
	out := opt.Optimize(&UnaryExpr{Op: SUB, Operand: num(5)})
	be.Equal(t, -5.0, out.(*NumberLit).Value)

	out = opt.Optimize(&UnaryExpr{Op: NOT, Operand: boolean(true)})
	be.Equal(t, false, out.(*BoolLit).Value)

	// NOT on a number does not fold
	out = opt.Optimize(&UnaryExpr{Op: NOT, Operand: num(1)})
	_, stillUnary := out.(*UnaryExpr)
	be.True(t, stillUnary)
}

func elemList(elems ...Node) *List {
	return &List{ListKind: KindElementList, Elems: elems}
}

func Test_Optimizer_IfTrueKeepsThenBranch(t *testing.T) {
	then := elemList(&TextElement{Text: "A"})
	els := elemList(&TextElement{Text: "B"})
	opt := NewOptimizer(PassAll)
	out := opt.Optimize(&IfStmt{Cond: boolean(true), Then: then, Else: els})
	be.Equal(t, Node(then), out)
	be.Equal(t, 1, opt.Applied())
}

func Test_Optimizer_IfFalseKeepsElseBranch(t *testing.T) {
	then := elemList(&TextElement{Text: "A"})
	els := elemList(&TextElement{Text: "B"})
	opt := NewOptimizer(PassAll)
	out := opt.Optimize(&IfStmt{Cond: boolean(false), Then: then, Else: els})
	be.Equal(t, Node(els), out)
	be.Equal(t, 1, opt.Applied())
}

func Test_Optimizer_IfFalseNoElseRemoved(t *testing.T) {
	body := elemList(
		&TextElement{Text: "keep"},
		&IfStmt{Cond: boolean(false), Then: elemList(&TextElement{Text: "drop"})},
	)
	opt := NewOptimizer(PassAll)
	out := opt.Optimize(body).(*List)
	be.Equal(t, 1, len(out.Elems))
	be.Equal(t, "keep", out.Elems[0].(*TextElement).Text)
	be.Equal(t, 1, opt.Applied())
}

func Test_Optimizer_IfFoldedConditionEliminates(t *testing.T) {
	// NOT false folds to true, then the IF collapses
	cond := &UnaryExpr{Op: NOT, Operand: boolean(false)}
	then := elemList(&TextElement{Text: "A"})
	opt := NewOptimizer(PassAll)
	out := opt.Optimize(&IfStmt{Cond: cond, Then: then})
	be.Equal(t, Node(then), out)
	be.Equal(t, 2, opt.Applied())
}

func Test_Optimizer_DynamicIfUntouched(t *testing.T) {
	stmt := &IfStmt{
		Cond: &VariableRef{Name: "flag"},
		Then: elemList(&TextElement{Text: "A"}),
	}
	opt := NewOptimizer(PassAll)
	out := opt.Optimize(stmt)
	be.Equal(t, Node(stmt), out)
	be.Equal(t, 0, opt.Applied())
}

func Test_Optimizer_DoesNotDescendIntoDefinitions(t *testing.T) {
	// VAR initializers are outside the rewrite boundary
	decl := &VarDecl{Name: "x", Init: binary(ADD, num(1), num(2))}
	prog := &Program{Statements: []Node{decl}}
	opt := NewOptimizer(PassAll)
	opt.Optimize(prog)
	_, stillBinary := decl.Init.(*BinaryExpr)
	be.True(t, stillBinary)
	be.Equal(t, 0, opt.Applied())
}

func Test_Optimizer_PromptBodiesOutsideBoundary(t *testing.T) {
	prog := parseOK(t, `PROMPT p {
	IF true { "yes" } ELSE { "no" }
}`)
	opt := NewOptimizer(PassAll)
	out := opt.Optimize(prog).(*Program)

	// PromptDef passes through untouched, so the constant IF inside its body
	// survives
	body := out.Statements[0].(*PromptDef).Body
	_, stillIf := body.Elems[0].(*IfStmt)
	be.True(t, stillIf)
	be.Equal(t, 0, opt.Applied())
}

func Test_Optimizer_PassFlags(t *testing.T) {
	// folding off: binary survives
	opt := NewOptimizer(PassDeadCodeElimination)
	out := opt.Optimize(binary(ADD, num(1), num(2)))
	_, stillBinary := out.(*BinaryExpr)
	be.True(t, stillBinary)

	// DCE off: constant IF survives
	opt = NewOptimizer(PassConstantFolding)
	stmt := &IfStmt{Cond: boolean(true), Then: elemList()}
	res := opt.Optimize(stmt)
	_, stillIf := res.(*IfStmt)
	be.True(t, stillIf)
}

func Test_Optimizer_CounterAndReset(t *testing.T) {
	opt := NewOptimizer(PassAll)
	opt.Optimize(binary(ADD, num(1), num(1)))
	be.Equal(t, 1, opt.Applied())
	opt.ResetCounter()
	be.Equal(t, 0, opt.Applied())
}

func Test_Optimizer_EnableDisable(t *testing.T) {
	opt := NewOptimizer(0)
	be.True(t, !opt.Enabled(PassConstantFolding))
	opt.EnablePass(PassConstantFolding)
	be.True(t, opt.Enabled(PassConstantFolding))
	opt.DisablePass(PassConstantFolding)
	be.True(t, !opt.Enabled(PassConstantFolding))
}
