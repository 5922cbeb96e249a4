// optimizer.go: AST-rewriting optimization passes.
//
// Two passes run in a single bottom-up walk: constant folding (literal-number
// arithmetic and literal-boolean negation) and dead-code elimination (IF with
// a statically known condition). The walk recurses into the program root,
// list containers, binary/unary expressions and IF statements only;
// definition and loop nodes pass through unchanged. That boundary is pinned
// by tests, so widening it is a behavior change, not a cleanup.
package pcc

import "math"

// Pass selects optimization passes as a bitmask.
type Pass uint

const (
	PassConstantFolding Pass = 1 << iota
	PassDeadCodeElimination
	PassUnusedRemoval   // reserved
	PassInlineTemplates // reserved

	PassAll = PassConstantFolding | PassDeadCodeElimination
)

// Optimizer rewrites an AST according to its enabled passes and counts the
// rewrites it applies.
type Optimizer struct {
	passes  Pass
	applied int
	depth   int
}

// NewOptimizer creates an optimizer with the given passes enabled.
func NewOptimizer(passes Pass) *Optimizer {
	return &Optimizer{passes: passes}
}

// Optimize rewrites root with all passes enabled and returns the new root.
func Optimize(root Node) Node {
	return NewOptimizer(PassAll).Optimize(root)
}

// Applied returns how many rewrites the optimizer has performed.
func (o *Optimizer) Applied() int { return o.applied }

// ResetCounter zeroes the rewrite counter.
func (o *Optimizer) ResetCounter() { o.applied = 0 }

// Enabled reports whether pass is enabled.
func (o *Optimizer) Enabled(pass Pass) bool { return o.passes&pass != 0 }

// EnablePass turns pass on.
func (o *Optimizer) EnablePass(pass Pass) { o.passes |= pass }

// DisablePass turns pass off.
func (o *Optimizer) DisablePass(pass Pass) { o.passes &^= pass }

// Optimize rewrites root and returns the (possibly new) root node. A node
// eliminated outright is returned as Empty.
func (o *Optimizer) Optimize(root Node) Node {
	out := o.rewrite(root)
	if out == nil {
		out = &Empty{Position: root.Pos()}
	}
	return out
}

// rewrite returns the replacement for node, or nil when the node was removed
// entirely (a false IF with no else). Containers drop removed children.
func (o *Optimizer) rewrite(node Node) Node {
	if node == nil {
		return nil
	}
	o.depth++
	defer func() { o.depth-- }()
	if o.depth > maxTreeDepth {
		return node
	}

	switch n := node.(type) {
	case *Program:
		kept := n.Statements[:0]
		for _, stmt := range n.Statements {
			if out := o.rewrite(stmt); out != nil {
				kept = append(kept, out)
			}
		}
		n.Statements = kept
		return n

	case *List:
		kept := n.Elems[:0]
		for _, elem := range n.Elems {
			if out := o.rewrite(elem); out != nil {
				kept = append(kept, out)
			}
		}
		n.Elems = kept
		return n

	case *BinaryExpr:
		return o.foldBinary(n)

	case *UnaryExpr:
		return o.foldUnary(n)

	case *IfStmt:
		return o.eliminateIf(n)

	default:
		// Definitions, loops and leaves pass through unchanged.
		return node
	}
}

// foldBinary evaluates a binary expression whose operands optimized down to
// number literals. Division and modulo by exactly zero are left unfolded.
func (o *Optimizer) foldBinary(n *BinaryExpr) Node {
	n.Left = o.rewrite(n.Left)
	n.Right = o.rewrite(n.Right)

	if !o.Enabled(PassConstantFolding) {
		return n
	}
	left, ok := n.Left.(*NumberLit)
	if !ok {
		return n
	}
	right, ok := n.Right.(*NumberLit)
	if !ok {
		return n
	}

	var result float64
	switch n.Op {
	case ADD:
		result = left.Value + right.Value
	case SUB:
		result = left.Value - right.Value
	case MUL:
		result = left.Value * right.Value
	case DIV:
		if right.Value == 0 {
			return n
		}
		result = left.Value / right.Value
	case MOD:
		if right.Value == 0 {
			return n
		}
		result = math.Mod(left.Value, right.Value)
	case POW:
		result = math.Pow(left.Value, right.Value)
	default:
		return n
	}

	o.applied++
	return &NumberLit{Value: result, Position: n.Position}
}

// foldUnary folds `-number` and `NOT boolean`.
func (o *Optimizer) foldUnary(n *UnaryExpr) Node {
	n.Operand = o.rewrite(n.Operand)

	if !o.Enabled(PassConstantFolding) {
		return n
	}
	switch operand := n.Operand.(type) {
	case *NumberLit:
		if n.Op == SUB {
			o.applied++
			return &NumberLit{Value: -operand.Value, Position: n.Position}
		}
	case *BoolLit:
		if n.Op == NOT {
			o.applied++
			return &BoolLit{Value: !operand.Value, Position: n.Position}
		}
	}
	return n
}

// eliminateIf replaces an IF whose condition is a boolean literal with the
// surviving branch, or removes it when false with no else.
func (o *Optimizer) eliminateIf(n *IfStmt) Node {
	n.Cond = o.rewrite(n.Cond)

	if o.Enabled(PassDeadCodeElimination) {
		if cond, ok := n.Cond.(*BoolLit); ok {
			o.applied++
			if cond.Value {
				return o.rewrite(n.Then)
			}
			if n.Else != nil {
				return o.rewrite(n.Else)
			}
			return nil
		}
	}

	n.Then = o.rewrite(n.Then)
	if n.Else != nil {
		n.Else = o.rewrite(n.Else)
	}
	return n
}
