package kaleido

import (
	"fmt"
	"strconv"
	"strings"
)

// AnonymousFunctionName names the prototype wrapped around a bare top-level expression.
const AnonymousFunctionName = "anonymous"

//  Expression nodes

// Expr is implemented by every AST node. Every node owns its children
// exclusively; trees never share subtrees.
type Expr interface {
	exprNode()
	String() string
}

// NumberExpr is a float64 literal.
type NumberExpr struct {
	Value float64
}

func (*NumberExpr) exprNode()        {}
func (n *NumberExpr) String() string { return formatNumber(n.Value) }

// VariableExpr is a read of a bound name.
type VariableExpr struct {
	Name string
}

func (*VariableExpr) exprNode()        {}
func (v *VariableExpr) String() string { return v.Name }

// BinaryExpr represents Left Op Right.
//
//	x + 1
//	^ ^ ^
//	| | |
//	| | Right
//	| Op
//	Left
type BinaryExpr struct {
	Op    rune
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %c %s)", b.Left, b.Op, b.Right)
}

// CallExpr represents Callee(Args...). Prefix operators are calls to
// "unary<op>".
type CallExpr struct {
	Callee string
	Args   []Expr
}

func (*CallExpr) exprNode() {}
func (c *CallExpr) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Callee, strings.Join(args, ", "))
}

// ConditionalExpr represents if Cond then Then else Else. Both branches are mandatory.
type ConditionalExpr struct {
	Cond Expr
	Then Expr
	Else Expr
}

func (*ConditionalExpr) exprNode() {}
func (c *ConditionalExpr) String() string {
	return fmt.Sprintf("(if %s then %s else %s)", c.Cond, c.Then, c.Else)
}

// ForExpr represents for VarName = Start, End[, Step] in Body.
// Step is nil when omitted; the consumer applies the default of 1.0.
type ForExpr struct {
	VarName string
	Start   Expr
	End     Expr
	Step    Expr
	Body    Expr
}

func (*ForExpr) exprNode() {}
func (f *ForExpr) String() string {
	if f.Step != nil {
		return fmt.Sprintf("(for %s = %s, %s, %s in %s)", f.VarName, f.Start, f.End, f.Step, f.Body)
	}
	return fmt.Sprintf("(for %s = %s, %s in %s)", f.VarName, f.Start, f.End, f.Body)
}

// VarBinding is one name of a var/in block. Init is nil when no initializer was written.
type VarBinding struct {
	Name string
	Init Expr
}

// VarInExpr represents var a = x, b in Body. Each binding is visible to the
// initializers after it and to Body.
type VarInExpr struct {
	Vars []VarBinding
	Body Expr
}

func (*VarInExpr) exprNode() {}
func (v *VarInExpr) String() string {
	vars := make([]string, len(v.Vars))
	for i, b := range v.Vars {
		if b.Init != nil {
			vars[i] = fmt.Sprintf("%s = %s", b.Name, b.Init)
		} else {
			vars[i] = b.Name
		}
	}
	return fmt.Sprintf("(var %s in %s)", strings.Join(vars, ", "), v.Body)
}

//  Declarations

// Prototype is the name and parameter list of a function, extern or
// user-defined operator. Prec is only meaningful for binary operators and is
// 0 when the declaration gave none.
type Prototype struct {
	Name string
	Args []string
	IsOp bool
	Prec int
}

// IsUnaryOp reports whether p declares a prefix operator.
func (p *Prototype) IsUnaryOp() bool {
	return p.IsOp && strings.HasPrefix(p.Name, "unary") && len(p.Args) == 1
}

// IsBinaryOp reports whether p declares an infix operator.
func (p *Prototype) IsBinaryOp() bool {
	return p.IsOp && strings.HasPrefix(p.Name, "binary") && len(p.Args) == 2
}

// OperatorName returns the operator character of an operator prototype.
func (p *Prototype) OperatorName() rune {
	if !p.IsOp {
		return 0
	}
	name := strings.TrimPrefix(strings.TrimPrefix(p.Name, "unary"), "binary")
	for _, r := range name {
		return r
	}
	return 0
}

func (p *Prototype) String() string {
	return fmt.Sprintf("%s(%s)", p.Name, strings.Join(p.Args, ", "))
}

// Function is one top-level item: a definition, an extern (Body == nil) or
// an anonymous wrapper around a bare expression.
type Function struct {
	Proto  *Prototype
	Body   Expr
	IsAnon bool
}

func (f *Function) String() string {
	switch {
	case f.Body == nil:
		return fmt.Sprintf("Extern(%s)", f.Proto)
	case f.IsAnon:
		return fmt.Sprintf("Expr(%s)", f.Body)
	default:
		return fmt.Sprintf("Def(%s, body=%s)", f.Proto, f.Body)
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
