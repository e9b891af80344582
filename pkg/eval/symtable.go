package eval

import (
	"fmt"
	"sort"
	"strings"
)

// Symbol is a name bound to a slot of the running function's frame.
type Symbol struct {
	Name string
	Slot int
}

// SymbolTable maps variable names to frame slots while a function body is
// compiled. Parameters take the first slots in order; every var/in binding
// and for loop variable gets a fresh slot after them, so an inner binding
// never overwrites the one it shadows.
type SymbolTable struct {
	// Stack of scopes. Scope 0 holds the parameters.
	locals []map[string]Symbol

	// Next free slot (monotonically increasing).
	nextSlot int
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{}
}

func (s *SymbolTable) EnterFunction() {
	s.locals = []map[string]Symbol{make(map[string]Symbol)}
	s.nextSlot = 0
}

func (s *SymbolTable) EnterScope() {
	if len(s.locals) == 0 {
		panic("EnterScope called outside function")
	}
	s.locals = append(s.locals, make(map[string]Symbol))
}

// ExitScope drops the innermost scope; names it shadowed become visible again.
func (s *SymbolTable) ExitScope() {
	if len(s.locals) > 1 {
		s.locals = s.locals[:len(s.locals)-1]
	}
}

// ExitFunction returns the number of slots the function's frame needs.
func (s *SymbolTable) ExitFunction() int {
	s.locals = nil
	return s.nextSlot
}

// DefineParam binds a parameter in the function-level scope. Parameter i
// lives in slot i, which is where Call copies its arguments.
func (s *SymbolTable) DefineParam(name string) (Symbol, error) {
	if len(s.locals) == 0 {
		panic("DefineParam called outside function scope")
	}
	if _, ok := s.locals[0][name]; ok {
		return Symbol{}, fmt.Errorf("duplicate parameter %q", name)
	}
	sym := Symbol{Name: name, Slot: s.nextSlot}
	s.nextSlot++
	s.locals[0][name] = sym
	return sym, nil
}

// Allocate binds name in the CURRENT scope. If name is already bound in the
// current scope the existing symbol is returned.
func (s *SymbolTable) Allocate(name string) (Symbol, bool) {
	if len(s.locals) == 0 {
		panic("Allocate called outside function")
	}
	current := s.locals[len(s.locals)-1]
	if sym, ok := current[name]; ok {
		return sym, true
	}
	sym := Symbol{Name: name, Slot: s.nextSlot}
	s.nextSlot++
	current[name] = sym
	return sym, false
}

// Lookup returns the innermost binding of name.
func (s *SymbolTable) Lookup(name string) (Symbol, bool) {
	for i := len(s.locals) - 1; i >= 0; i-- {
		if sym, ok := s.locals[i][name]; ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

// String returns a deterministically ordered dump of the active scopes.
func (s *SymbolTable) String() string {
	if len(s.locals) == 0 {
		return "Locals: (none)\n"
	}
	var sb strings.Builder
	sb.WriteString("Locals (Active Stack):\n")
	for i, scope := range s.locals {
		fmt.Fprintf(&sb, "  Scope %d:\n", i)
		names := make([]string, 0, len(scope))
		for name := range scope {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "    %-20s  Slot: %d\n", name, scope[name].Slot)
		}
	}
	return sb.String()
}
