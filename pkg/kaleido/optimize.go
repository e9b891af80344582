package kaleido

import "sort"

// IsBuiltinOp reports whether op is evaluated by the backend itself rather
// than by calling a user-defined "binary<op>" function.
func IsBuiltinOp(op rune) bool {
	switch op {
	case '=', '<', '+', '-', '*', '/':
		return true
	}
	return false
}

// Inspect walks e in pre-order. If f returns false the children of that node
// are skipped.
func Inspect(e Expr, f func(Expr) bool) {
	if e == nil || !f(e) {
		return
	}
	switch n := e.(type) {
	case *BinaryExpr:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *CallExpr:
		for _, arg := range n.Args {
			Inspect(arg, f)
		}
	case *ConditionalExpr:
		Inspect(n.Cond, f)
		Inspect(n.Then, f)
		Inspect(n.Else, f)
	case *ForExpr:
		Inspect(n.Start, f)
		Inspect(n.End, f)
		Inspect(n.Step, f)
		Inspect(n.Body, f)
	case *VarInExpr:
		for _, v := range n.Vars {
			Inspect(v.Init, f)
		}
		Inspect(n.Body, f)
	case *NumberExpr, *VariableExpr:
		// leaves
	}
}

// Callees returns the sorted, distinct names of every function fn's body
// calls, including the "unary<op>"/"binary<op>" functions behind user
// operators.
func Callees(fn *Function) []string {
	calls := make(map[string]bool)
	Inspect(fn.Body, func(e Expr) bool {
		switch n := e.(type) {
		case *CallExpr:
			calls[n.Callee] = true
		case *BinaryExpr:
			if !IsBuiltinOp(n.Op) {
				calls["binary"+string(n.Op)] = true
			}
		}
		return true
	})

	names := make([]string, 0, len(calls))
	for name := range calls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fold returns a copy of e in which built-in arithmetic and comparisons on
// two literals are replaced by their result. e itself is left untouched.
func Fold(e Expr) Expr {
	switch n := e.(type) {
	case nil:
		return nil
	case *NumberExpr:
		return &NumberExpr{Value: n.Value}
	case *VariableExpr:
		return &VariableExpr{Name: n.Name}
	case *BinaryExpr:
		left, right := Fold(n.Left), Fold(n.Right)
		l, lok := left.(*NumberExpr)
		r, rok := right.(*NumberExpr)
		if lok && rok {
			if v, ok := foldBinary(n.Op, l.Value, r.Value); ok {
				return &NumberExpr{Value: v}
			}
		}
		return &BinaryExpr{Op: n.Op, Left: left, Right: right}
	case *CallExpr:
		call := &CallExpr{Callee: n.Callee}
		for _, arg := range n.Args {
			call.Args = append(call.Args, Fold(arg))
		}
		return call
	case *ConditionalExpr:
		return &ConditionalExpr{Cond: Fold(n.Cond), Then: Fold(n.Then), Else: Fold(n.Else)}
	case *ForExpr:
		return &ForExpr{
			VarName: n.VarName,
			Start:   Fold(n.Start),
			End:     Fold(n.End),
			Step:    Fold(n.Step),
			Body:    Fold(n.Body),
		}
	case *VarInExpr:
		v := &VarInExpr{Body: Fold(n.Body)}
		for _, b := range n.Vars {
			v.Vars = append(v.Vars, VarBinding{Name: b.Name, Init: Fold(b.Init)})
		}
		return v
	default:
		return e
	}
}

// FoldFunction applies Fold to the body of fn and returns a new Function
// sharing fn's prototype.
func FoldFunction(fn *Function) *Function {
	return &Function{Proto: fn.Proto, Body: Fold(fn.Body), IsAnon: fn.IsAnon}
}

func foldBinary(op rune, l, r float64) (float64, bool) {
	switch op {
	case '+':
		return l + r, true
	case '-':
		return l - r, true
	case '*':
		return l * r, true
	case '/':
		return l / r, true
	case '<':
		if l < r {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
