// semantic.go: scope-aware semantic validation.
//
// The analyzer walks the AST in pre-order, registering each definition in the
// symbol table before descending into its body, so a name is visible to
// everything nested beneath it (and to later siblings) but not before its
// declaration. Template parameters and loop variables live in their own
// scopes. Errors accumulate on the symbol table; analysis always walks the
// whole tree.
package pcc

import "fmt"

// Analyzer validates an AST against a fresh symbol table.
type Analyzer struct {
	table *SymbolTable
	depth int
}

// NewAnalyzer creates an analyzer with an empty symbol table.
func NewAnalyzer() *Analyzer {
	return &Analyzer{table: NewSymbolTable()}
}

// Analyze validates root and returns the accumulated semantic errors along
// with the populated symbol table. The table is left at the global scope.
func Analyze(root Node) ([]*SemanticError, *SymbolTable) {
	a := NewAnalyzer()
	a.analyze(root)
	return a.table.Errors(), a.table
}

// Table returns the analyzer's symbol table.
func (a *Analyzer) Table() *SymbolTable { return a.table }

func (a *Analyzer) analyze(node Node) {
	if node == nil {
		return
	}
	a.depth++
	defer func() { a.depth-- }()
	if a.depth > maxTreeDepth {
		a.table.AddError(fmt.Sprintf("tree nesting exceeds depth limit %d", maxTreeDepth),
			node.Pos(), CodeInvalidOperation)
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, stmt := range n.Statements {
			a.analyze(stmt)
		}

	case *PromptDef:
		a.table.Add(&Symbol{Name: n.Name, Type: SymPrompt, Decl: n, Pos: n.Position})
		if n.Body != nil {
			a.analyze(n.Body)
		}

	case *VarDecl:
		a.table.Add(&Symbol{Name: n.Name, Type: SymVariable, Decl: n, Pos: n.Position})
		a.analyze(n.Init)

	case *TemplateDef:
		a.table.Add(&Symbol{Name: n.Name, Type: SymTemplate, Decl: n, Pos: n.Position})
		a.table.EnterScope()
		for _, param := range n.Params {
			a.table.Add(&Symbol{Name: param, Type: SymParameter, Pos: n.Position})
		}
		if n.Body != nil {
			a.analyze(n.Body)
		}
		a.table.ExitScope()

	case *ConstraintDef:
		a.table.Add(&Symbol{Name: n.Name, Type: SymConstraint, Decl: n, Pos: n.Position})
		for _, c := range n.Constraints {
			a.analyze(c)
		}

	case *ConstraintExpr:
		// The constrained name must resolve, but any symbol kind may be
		// constrained.
		if a.table.Lookup(n.Variable) == nil {
			a.table.AddError(fmt.Sprintf("undefined symbol '%s' in constraint", n.Variable),
				n.Position, CodeUndefinedSymbol)
		} else {
			a.table.MarkUsed(n.Variable, n.Position)
		}
		a.analyze(n.Value)

	case *OutputSpec:
		sym := a.table.Lookup(n.Name)
		if sym == nil {
			a.table.AddError(fmt.Sprintf("undefined prompt '%s' in OUTPUT specification", n.Name),
				n.Position, CodeUndefinedSymbol)
			return
		}
		if sym.Type != SymPrompt {
			a.table.AddError(fmt.Sprintf("'%s' is not a prompt in OUTPUT specification", n.Name),
				n.Position, CodeTypeMismatch)
			return
		}
		sym.Used = true

	case *Identifier:
		if a.table.Lookup(n.Name) == nil {
			a.table.AddError(fmt.Sprintf("undefined identifier '%s'", n.Name),
				n.Position, CodeUndefinedSymbol)
		}

	case *VariableRef:
		sym := a.table.Lookup(n.Name)
		if sym == nil {
			a.table.AddError(fmt.Sprintf("undefined variable '$%s'", n.Name),
				n.Position, CodeUndefinedSymbol)
			return
		}
		if sym.Type != SymVariable && sym.Type != SymParameter {
			a.table.AddError(fmt.Sprintf("'$%s' is not a variable", n.Name),
				n.Position, CodeTypeMismatch)
			return
		}
		sym.Used = true

	case *TemplateCall:
		a.analyzeCall(n.Name, n.Args, n.Position)

	case *FunctionCall:
		a.analyzeCall(n.Name, n.Args, n.Position)

	case *BinaryExpr:
		a.analyze(n.Left)
		a.analyze(n.Right)

	case *UnaryExpr:
		a.analyze(n.Operand)

	case *IfStmt:
		a.analyze(n.Cond)
		a.analyze(n.Then)
		a.analyze(n.Else)

	case *ForStmt:
		a.table.EnterScope()
		a.table.Add(&Symbol{Name: n.Var, Type: SymVariable, Pos: n.Position})
		a.analyze(n.Iterable)
		a.analyze(n.Body)
		a.table.ExitScope()

	case *WhileStmt:
		a.analyze(n.Cond)
		a.analyze(n.Body)

	case *List:
		for _, elem := range n.Elems {
			a.analyze(elem)
		}

	case *StringLit, *NumberLit, *BoolLit, *TextElement, *Empty:
		// leaves
	}
}

// analyzeCall resolves a template call, checks arity against the definition's
// parameter list, and analyzes the arguments.
func (a *Analyzer) analyzeCall(name string, args []Node, pos Position) {
	sym := a.table.Lookup(name)
	if sym == nil {
		a.table.AddError(fmt.Sprintf("undefined template '%s'", name), pos, CodeUndefinedSymbol)
	} else if sym.Type != SymTemplate {
		a.table.AddError(fmt.Sprintf("'%s' is not a template", name), pos, CodeTypeMismatch)
	} else {
		sym.Used = true
		if def, ok := sym.Decl.(*TemplateDef); ok {
			switch {
			case len(args) < len(def.Params):
				a.table.AddError(
					fmt.Sprintf("call to '%s' is missing arguments: got %d, want %d",
						name, len(args), len(def.Params)),
					pos, CodeMissingArgument)
			case len(args) > len(def.Params):
				a.table.AddError(
					fmt.Sprintf("call to '%s' has too many arguments: got %d, want %d",
						name, len(args), len(def.Params)),
					pos, CodeTooManyArguments)
			}
		}
	}
	for _, arg := range args {
		a.analyze(arg)
	}
}
