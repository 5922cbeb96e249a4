// symtab.go: chained-scope symbol table used by the semantic analyzer.
//
// Scopes form a parent chain rooted at the global scope. Symbols are added to
// the current scope only; lookups walk the chain outward. The table also
// accumulates semantic errors so a whole analysis pass can report everything
// it found instead of stopping at the first problem.
package pcc

import "fmt"

// SymbolType classifies what a name is bound to.
type SymbolType int

const (
	SymVariable SymbolType = iota
	SymTemplate
	SymPrompt
	SymConstraint
	SymParameter
)

func (t SymbolType) String() string {
	switch t {
	case SymVariable:
		return "variable"
	case SymTemplate:
		return "template"
	case SymPrompt:
		return "prompt"
	case SymConstraint:
		return "constraint"
	case SymParameter:
		return "parameter"
	default:
		return "unknown"
	}
}

// Symbol is one named binding. Decl points back at the defining AST node so
// later passes can inspect e.g. a template's parameter list.
type Symbol struct {
	Name string
	Type SymbolType
	Decl Node
	Pos  Position
	Used bool
}

// Scope is one level of the chain. Level 0 is the global scope.
type Scope struct {
	symbols map[string]*Symbol
	parent  *Scope
	level   int
}

func newScope(parent *Scope, level int) *Scope {
	return &Scope{symbols: make(map[string]*Symbol), parent: parent, level: level}
}

// Level returns the scope's nesting depth.
func (s *Scope) Level() int { return s.level }

// SymbolTable owns the scope chain and the semantic error list.
type SymbolTable struct {
	global  *Scope
	current *Scope
	errors  []*SemanticError
}

// NewSymbolTable creates a table holding only the global scope.
func NewSymbolTable() *SymbolTable {
	g := newScope(nil, 0)
	return &SymbolTable{global: g, current: g}
}

// CurrentScope returns the innermost open scope.
func (t *SymbolTable) CurrentScope() *Scope { return t.current }

// GlobalScope returns the root scope.
func (t *SymbolTable) GlobalScope() *Scope { return t.global }

// EnterScope opens a child of the current scope and makes it current.
func (t *SymbolTable) EnterScope() {
	t.current = newScope(t.current, t.current.level+1)
}

// ExitScope closes the current scope. The global scope cannot be exited.
func (t *SymbolTable) ExitScope() error {
	if t.current.parent == nil {
		return fmt.Errorf("cannot exit global scope")
	}
	t.current = t.current.parent
	return nil
}

// Add binds sym in the current scope. A name already bound at this level is a
// redefinition: the error is recorded and the existing binding kept.
func (t *SymbolTable) Add(sym *Symbol) bool {
	if _, ok := t.current.symbols[sym.Name]; ok {
		t.AddError(fmt.Sprintf("symbol '%s' already defined in this scope", sym.Name),
			sym.Pos, CodeRedefinedSymbol)
		return false
	}
	t.current.symbols[sym.Name] = sym
	return true
}

// Lookup resolves name against the current scope and its ancestors, innermost
// binding wins. Returns nil when the name is unbound everywhere.
func (t *SymbolTable) Lookup(name string) *Symbol {
	for s := t.current; s != nil; s = s.parent {
		if sym, ok := s.symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// LookupLocal resolves name in the current scope only.
func (t *SymbolTable) LookupLocal(name string) *Symbol {
	return t.current.symbols[name]
}

// Contains reports whether name resolves in any enclosing scope.
func (t *SymbolTable) Contains(name string) bool {
	return t.Lookup(name) != nil
}

// MarkUsed flags the binding for name. An unresolvable name records an
// undefined-symbol error at pos.
func (t *SymbolTable) MarkUsed(name string, pos Position) bool {
	sym := t.Lookup(name)
	if sym == nil {
		t.AddError(fmt.Sprintf("undefined symbol '%s'", name), pos, CodeUndefinedSymbol)
		return false
	}
	sym.Used = true
	return true
}

// AddError appends a semantic error without touching any binding.
func (t *SymbolTable) AddError(msg string, pos Position, code SemanticCode) {
	t.errors = append(t.errors, &SemanticError{Msg: msg, Pos: pos, Code: code})
}

// Errors returns the accumulated semantic errors in discovery order.
func (t *SymbolTable) Errors() []*SemanticError { return t.errors }

// ErrorCount returns how many semantic errors have accumulated.
func (t *SymbolTable) ErrorCount() int { return len(t.errors) }

// UnusedSymbols returns every binding in scope chain order that was never
// marked used. Only the scopes still reachable from current are visited, so
// call this before exiting the scopes of interest.
func (t *SymbolTable) UnusedSymbols() []*Symbol {
	var out []*Symbol
	for s := t.current; s != nil; s = s.parent {
		for _, sym := range s.symbols {
			if !sym.Used {
				out = append(out, sym)
			}
		}
	}
	return out
}
