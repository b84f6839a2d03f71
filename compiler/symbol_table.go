package compiler

import "fmt"

// Symbol is a named local variable with its assigned slot index.
type Symbol struct {
	Name  string
	Index int
}

// SymbolTable assigns slot indexes to the variables of one function.
// Block tables share the enclosing function's slot counter, so a
// variable shadowed in a nested block still gets its own slot and the
// function's local count covers every block.
type SymbolTable struct {
	parent  *SymbolTable
	symbols map[string]*Symbol
	count   *int
}

// NewSymbolTable returns the root table for one function.
func NewSymbolTable() *SymbolTable {
	count := 0
	return &SymbolTable{
		symbols: map[string]*Symbol{},
		count:   &count,
	}
}

// NewBlock returns a child table for a nested block. Slots keep being
// claimed from the function's counter.
func (t *SymbolTable) NewBlock() *SymbolTable {
	return &SymbolTable{
		parent:  t,
		symbols: map[string]*Symbol{},
		count:   t.count,
	}
}

// Declare adds a variable to this table and claims the next slot.
func (t *SymbolTable) Declare(name string) (*Symbol, error) {
	if _, exists := t.symbols[name]; exists {
		return nil, fmt.Errorf("variable %q already declared in this scope", name)
	}
	sym := &Symbol{Name: name, Index: *t.count}
	*t.count++
	t.symbols[name] = sym
	return sym, nil
}

// Lookup finds a variable in this table or any enclosing block table.
func (t *SymbolTable) Lookup(name string) (*Symbol, bool) {
	for table := t; table != nil; table = table.parent {
		if sym, ok := table.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// Count returns the number of slots claimed so far.
func (t *SymbolTable) Count() int { return *t.count }
