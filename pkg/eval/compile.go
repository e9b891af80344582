package eval

import (
	"fmt"
	"strings"

	"gokaleido/pkg/kaleido"
)

// node is one compiled expression. frame holds the slots the SymbolTable
// handed out for the enclosing function.
type node func(m *machine, frame []float64) (float64, error)

// compiler walks one function's AST and builds its node tree.
type compiler struct {
	engine *Engine
	syms   *SymbolTable
	fn     *kaleido.Function
}

// Compile checks fn against the functions defined so far and turns it into a
// Callable. Definitions and externs are registered under their name,
// replacing an earlier one; anonymous expressions are only returned.
func (e *Engine) Compile(fn *kaleido.Function) (*Callable, error) {
	proto := fn.Proto
	if proto.IsOp && !proto.IsUnaryOp() && !proto.IsBinaryOp() {
		want := 2
		if strings.HasPrefix(proto.Name, "unary") {
			want = 1
		}
		return nil, compileErrorf(proto.Name, "invalid number of operands for operator: want %d, got %d", want, len(proto.Args))
	}

	if fn.Body == nil {
		return e.compileExtern(proto)
	}

	for _, name := range kaleido.Callees(fn) {
		if !fn.IsAnon && name == proto.Name {
			continue
		}
		if _, ok := e.funcs[name]; ok {
			continue
		}
		return nil, compileErrorf(proto.Name, "unknown function referenced: %s", name)
	}

	c := &compiler{engine: e, syms: NewSymbolTable(), fn: fn}
	c.syms.EnterFunction()
	for _, arg := range proto.Args {
		if _, err := c.syms.DefineParam(arg); err != nil {
			return nil, compileErrorf(proto.Name, "%v", err)
		}
	}
	body, err := c.compileExpr(fn.Body)
	if err != nil {
		return nil, err
	}

	callable := &Callable{
		Name:      proto.Name,
		Proto:     proto,
		engine:    e,
		body:      body,
		frameSize: c.syms.ExitFunction(),
	}
	if !fn.IsAnon {
		e.funcs[proto.Name] = callable
	}
	return callable, nil
}

func (e *Engine) compileExtern(proto *kaleido.Prototype) (*Callable, error) {
	native, ok := e.natives[proto.Name]
	if !ok {
		return nil, compileErrorf(proto.Name, "no native function named %q", proto.Name)
	}
	if native.Arity != len(proto.Args) {
		return nil, compileErrorf(proto.Name, "extern declares %d parameters, native takes %d", len(proto.Args), native.Arity)
	}
	callable := &Callable{Name: proto.Name, Proto: proto, engine: e, native: &native}
	e.funcs[proto.Name] = callable
	return callable, nil
}

func (c *compiler) errorf(format string, args ...any) error {
	return compileErrorf(c.fn.Proto.Name, format, args...)
}

func (c *compiler) compileExpr(e kaleido.Expr) (node, error) {
	switch n := e.(type) {
	case *kaleido.NumberExpr:
		v := n.Value
		return func(*machine, []float64) (float64, error) { return v, nil }, nil

	case *kaleido.VariableExpr:
		sym, ok := c.syms.Lookup(n.Name)
		if !ok {
			return nil, c.errorf("unknown variable name %q", n.Name)
		}
		slot := sym.Slot
		return func(_ *machine, frame []float64) (float64, error) { return frame[slot], nil }, nil

	case *kaleido.BinaryExpr:
		return c.compileBinary(n)

	case *kaleido.CallExpr:
		args := make([]node, len(n.Args))
		for i, arg := range n.Args {
			a, err := c.compileExpr(arg)
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		return c.compileCall(n.Callee, args)

	case *kaleido.ConditionalExpr:
		return c.compileConditional(n)

	case *kaleido.ForExpr:
		return c.compileFor(n)

	case *kaleido.VarInExpr:
		return c.compileVarIn(n)

	default:
		return nil, c.errorf("unsupported expression %T", e)
	}
}

func (c *compiler) compileBinary(n *kaleido.BinaryExpr) (node, error) {
	if n.Op == '=' {
		dst, ok := n.Left.(*kaleido.VariableExpr)
		if !ok {
			return nil, c.errorf("destination of '=' must be a variable, got %s", n.Left)
		}
		sym, ok := c.syms.Lookup(dst.Name)
		if !ok {
			return nil, c.errorf("unknown variable name %q", dst.Name)
		}
		val, err := c.compileExpr(n.Right)
		if err != nil {
			return nil, err
		}
		slot := sym.Slot
		return func(m *machine, frame []float64) (float64, error) {
			v, err := val(m, frame)
			if err != nil {
				return 0, err
			}
			frame[slot] = v
			return v, nil
		}, nil
	}

	left, err := c.compileExpr(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := c.compileExpr(n.Right)
	if err != nil {
		return nil, err
	}

	var op func(l, r float64) float64
	switch n.Op {
	case '+':
		op = func(l, r float64) float64 { return l + r }
	case '-':
		op = func(l, r float64) float64 { return l - r }
	case '*':
		op = func(l, r float64) float64 { return l * r }
	case '/':
		op = func(l, r float64) float64 { return l / r }
	case '<':
		op = func(l, r float64) float64 {
			if l < r {
				return 1
			}
			return 0
		}
	default:
		return c.compileCall("binary"+string(n.Op), []node{left, right})
	}

	return func(m *machine, frame []float64) (float64, error) {
		l, err := left(m, frame)
		if err != nil {
			return 0, err
		}
		r, err := right(m, frame)
		if err != nil {
			return 0, err
		}
		return op(l, r), nil
	}, nil
}

// compileCall resolves callee by name on every call so a redefinition is
// picked up by functions compiled before it.
func (c *compiler) compileCall(callee string, args []node) (node, error) {
	// A recursive call is checked against the prototype being compiled, not
	// against an earlier definition it is about to replace.
	want := -1
	if !c.fn.IsAnon && callee == c.fn.Proto.Name {
		want = len(c.fn.Proto.Args)
	} else if target, ok := c.engine.funcs[callee]; ok {
		want = target.Arity()
	}
	if want >= 0 && want != len(args) {
		return nil, c.errorf("incorrect number of arguments passed to %s: %s", callee, arityMsg(want, len(args)))
	}

	caller := c.fn.Proto.Name
	return func(m *machine, frame []float64) (float64, error) {
		target, ok := m.engine.funcs[callee]
		if !ok {
			return 0, &RuntimeError{Func: caller, Msg: fmt.Sprintf("unknown function %s", callee)}
		}
		if target.Arity() != len(args) {
			return 0, &RuntimeError{Func: caller, Msg: fmt.Sprintf("calling %s: %s", callee, arityMsg(target.Arity(), len(args)))}
		}
		vals := make([]float64, len(args))
		for i, arg := range args {
			v, err := arg(m, frame)
			if err != nil {
				return 0, err
			}
			vals[i] = v
		}
		return m.call(target, vals)
	}, nil
}

func (c *compiler) compileConditional(n *kaleido.ConditionalExpr) (node, error) {
	cond, err := c.compileExpr(n.Cond)
	if err != nil {
		return nil, err
	}
	then, err := c.compileExpr(n.Then)
	if err != nil {
		return nil, err
	}
	els, err := c.compileExpr(n.Else)
	if err != nil {
		return nil, err
	}
	return func(m *machine, frame []float64) (float64, error) {
		v, err := cond(m, frame)
		if err != nil {
			return 0, err
		}
		if v != 0 {
			return then(m, frame)
		}
		return els(m, frame)
	}, nil
}

// compileFor builds a loop that runs the body, then evaluates the step and
// the end condition, then increments the loop variable. It stops once the
// end condition evaluates to 0 and yields 0.
func (c *compiler) compileFor(n *kaleido.ForExpr) (node, error) {
	start, err := c.compileExpr(n.Start)
	if err != nil {
		return nil, err
	}

	c.syms.EnterScope()
	defer c.syms.ExitScope()
	sym, _ := c.syms.Allocate(n.VarName)
	slot := sym.Slot

	end, err := c.compileExpr(n.End)
	if err != nil {
		return nil, err
	}
	step := node(func(*machine, []float64) (float64, error) { return 1, nil })
	if n.Step != nil {
		if step, err = c.compileExpr(n.Step); err != nil {
			return nil, err
		}
	}
	body, err := c.compileExpr(n.Body)
	if err != nil {
		return nil, err
	}

	fn := c.fn.Proto.Name
	return func(m *machine, frame []float64) (float64, error) {
		v, err := start(m, frame)
		if err != nil {
			return 0, err
		}
		frame[slot] = v
		for {
			if err := m.interrupted(fn); err != nil {
				return 0, err
			}
			if _, err := body(m, frame); err != nil {
				return 0, err
			}
			inc, err := step(m, frame)
			if err != nil {
				return 0, err
			}
			cond, err := end(m, frame)
			if err != nil {
				return 0, err
			}
			frame[slot] += inc
			if cond == 0 {
				return 0, nil
			}
		}
	}, nil
}

// compileVarIn binds each name after compiling its initializer, so an
// initializer sees the bindings before it and the outer binding of its own
// name.
func (c *compiler) compileVarIn(n *kaleido.VarInExpr) (node, error) {
	c.syms.EnterScope()
	defer c.syms.ExitScope()

	type binding struct {
		slot int
		init node
	}
	bindings := make([]binding, 0, len(n.Vars))
	for _, v := range n.Vars {
		init := node(func(*machine, []float64) (float64, error) { return 0, nil })
		if v.Init != nil {
			var err error
			if init, err = c.compileExpr(v.Init); err != nil {
				return nil, err
			}
		}
		sym, _ := c.syms.Allocate(v.Name)
		bindings = append(bindings, binding{slot: sym.Slot, init: init})
	}

	body, err := c.compileExpr(n.Body)
	if err != nil {
		return nil, err
	}

	return func(m *machine, frame []float64) (float64, error) {
		for _, b := range bindings {
			v, err := b.init(m, frame)
			if err != nil {
				return 0, err
			}
			frame[b.slot] = v
		}
		return body(m, frame)
	}, nil
}

func arityMsg(want, got int) string {
	return fmt.Sprintf("want %d arguments, got %d", want, got)
}
