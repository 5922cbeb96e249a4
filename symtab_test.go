// symtab_test.go
package pcc

import (
	"testing"

	"github.com/nalgeon/be"
)

func Test_SymbolTable_AddAndLookup(t *testing.T) {
	st := NewSymbolTable()
	ok := st.Add(&Symbol{Name: "x", Type: SymVariable})
	be.True(t, ok)

	sym := st.Lookup("x")
	be.True(t, sym != nil)
	be.Equal(t, SymVariable, sym.Type)
	be.Equal(t, (*Symbol)(nil), st.Lookup("missing"))
}

func Test_SymbolTable_RedefinitionInSameScope(t *testing.T) {
	st := NewSymbolTable()
	be.True(t, st.Add(&Symbol{Name: "x", Type: SymVariable}))
	be.True(t, !st.Add(&Symbol{Name: "x", Type: SymVariable}))

	be.Equal(t, 1, st.ErrorCount())
	be.Equal(t, CodeRedefinedSymbol, st.Errors()[0].Code)
}

func Test_SymbolTable_ShadowingAcrossScopes(t *testing.T) {
	st := NewSymbolTable()
	st.Add(&Symbol{Name: "x", Type: SymVariable})

	st.EnterScope()
	ok := st.Add(&Symbol{Name: "x", Type: SymParameter})
	be.True(t, ok)
	be.Equal(t, 0, st.ErrorCount())

	// innermost binding wins
	be.Equal(t, SymParameter, st.Lookup("x").Type)

	be.Err(t, st.ExitScope(), nil)
	be.Equal(t, SymVariable, st.Lookup("x").Type)
}

func Test_SymbolTable_LookupLocal(t *testing.T) {
	st := NewSymbolTable()
	st.Add(&Symbol{Name: "x", Type: SymVariable})
	st.EnterScope()

	be.Equal(t, (*Symbol)(nil), st.LookupLocal("x"))
	be.True(t, st.Lookup("x") != nil)
}

func Test_SymbolTable_CannotExitGlobalScope(t *testing.T) {
	st := NewSymbolTable()
	err := st.ExitScope()
	be.True(t, err != nil)

	st.EnterScope()
	be.Err(t, st.ExitScope(), nil)
	be.True(t, st.ExitScope() != nil)
}

func Test_SymbolTable_ScopeLevels(t *testing.T) {
	st := NewSymbolTable()
	be.Equal(t, 0, st.CurrentScope().Level())
	st.EnterScope()
	be.Equal(t, 1, st.CurrentScope().Level())
	st.EnterScope()
	be.Equal(t, 2, st.CurrentScope().Level())
}

func Test_SymbolTable_MarkUsed(t *testing.T) {
	st := NewSymbolTable()
	st.Add(&Symbol{Name: "x", Type: SymVariable})

	be.True(t, st.MarkUsed("x", Position{Line: 1, Column: 1}))
	be.True(t, st.Lookup("x").Used)

	be.True(t, !st.MarkUsed("ghost", Position{Line: 2, Column: 5}))
	be.Equal(t, 1, st.ErrorCount())
	be.Equal(t, CodeUndefinedSymbol, st.Errors()[0].Code)
	be.Equal(t, 2, st.Errors()[0].Pos.Line)
}

func Test_SymbolTable_UnusedSymbols(t *testing.T) {
	st := NewSymbolTable()
	st.Add(&Symbol{Name: "used", Type: SymVariable})
	st.Add(&Symbol{Name: "unused", Type: SymVariable})
	st.MarkUsed("used", Position{})

	unused := st.UnusedSymbols()
	be.Equal(t, 1, len(unused))
	be.Equal(t, "unused", unused[0].Name)
}
