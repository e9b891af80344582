// Package render lays an AST out as an indented outline, one node per line.
// The CLI prints it and the desktop viewer draws it.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"gokaleido/pkg/kaleido"
)

// Kind classifies a line so viewers can style it.
type Kind int

const (
	KindDecl Kind = iota
	KindNumber
	KindVariable
	KindOperator
	KindCall
	KindControl
)

// Line is one node of the outline. Role names the slot the node fills in its
// parent ("cond", "body", ...) and is empty for plain operands.
type Line struct {
	Depth int
	Kind  Kind
	Role  string
	Label string
}

func (l Line) String() string {
	if l.Role != "" {
		return l.Role + ": " + l.Label
	}
	return l.Label
}

// Tree returns the outline of fn, starting with its declaration at depth 0.
func Tree(fn *kaleido.Function) []Line {
	var lines []Line
	switch {
	case fn.Body == nil:
		lines = append(lines, Line{Kind: KindDecl, Label: "extern " + fn.Proto.String()})
	case fn.IsAnon:
		lines = append(lines, Line{Kind: KindDecl, Label: "expr"})
	default:
		label := "def " + fn.Proto.String()
		if fn.Proto.IsBinaryOp() && fn.Proto.Prec > 0 {
			label += fmt.Sprintf(" prec %d", fn.Proto.Prec)
		}
		lines = append(lines, Line{Kind: KindDecl, Label: label})
	}
	if fn.Body != nil {
		lines = walk(lines, fn.Body, 1, "")
	}
	return lines
}

func walk(lines []Line, e kaleido.Expr, depth int, role string) []Line {
	add := func(kind Kind, label string) {
		lines = append(lines, Line{Depth: depth, Kind: kind, Role: role, Label: label})
	}

	switch n := e.(type) {
	case *kaleido.NumberExpr:
		add(KindNumber, strconv.FormatFloat(n.Value, 'g', -1, 64))
	case *kaleido.VariableExpr:
		add(KindVariable, n.Name)
	case *kaleido.BinaryExpr:
		add(KindOperator, "binary "+string(n.Op))
		lines = walk(lines, n.Left, depth+1, "")
		lines = walk(lines, n.Right, depth+1, "")
	case *kaleido.CallExpr:
		add(KindCall, "call "+n.Callee)
		for _, arg := range n.Args {
			lines = walk(lines, arg, depth+1, "")
		}
	case *kaleido.ConditionalExpr:
		add(KindControl, "if")
		lines = walk(lines, n.Cond, depth+1, "cond")
		lines = walk(lines, n.Then, depth+1, "then")
		lines = walk(lines, n.Else, depth+1, "else")
	case *kaleido.ForExpr:
		add(KindControl, "for "+n.VarName)
		lines = walk(lines, n.Start, depth+1, "start")
		lines = walk(lines, n.End, depth+1, "end")
		if n.Step != nil {
			lines = walk(lines, n.Step, depth+1, "step")
		}
		lines = walk(lines, n.Body, depth+1, "body")
	case *kaleido.VarInExpr:
		names := make([]string, len(n.Vars))
		for i, v := range n.Vars {
			names[i] = v.Name
		}
		add(KindControl, "var "+strings.Join(names, ", "))
		for _, v := range n.Vars {
			if v.Init != nil {
				lines = walk(lines, v.Init, depth+1, v.Name)
			}
		}
		lines = walk(lines, n.Body, depth+1, "body")
	}
	return lines
}

// Text joins lines, indenting each by indent per level of depth.
func Text(lines []Line, indent string) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(strings.Repeat(indent, l.Depth))
		sb.WriteString(l.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
