package eval

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gokaleido/pkg/kaleido"
)

// runProgram compiles every item of src in order and runs the anonymous
// ones. It returns the value of the last expression and everything the
// program wrote.
func runProgram(t *testing.T, e *Engine, src string) (float64, error) {
	t.Helper()
	fns, err := kaleido.ParseProgram(src, kaleido.DefaultPrecedence())
	require.NoError(t, err)

	var last float64
	for _, fn := range fns {
		c, err := e.Compile(fn)
		if err != nil {
			return 0, err
		}
		if fn.IsAnon {
			if last, err = c.Call(context.Background()); err != nil {
				return 0, err
			}
		}
	}
	return last, nil
}

func TestEngineEvaluates(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		output   string
	}{
		{"Arithmetic", "1 + 2 * 3 - 8 / 4", 5, ""},
		{"Less Than True", "4 < 5", 1, ""},
		{"Less Than False", "5 < 4", 0, ""},
		{"Conditional", "if 0 then 1 else if 2 then 3 else 4", 3, ""},
		{"Recursion", "def fib(n) if n < 3 then 1 else fib(n-1) + fib(n-2); fib(10)", 55, ""},
		{"Var In", "def f(x) var y = x * 2 in y + 1; f(3)", 7, ""},
		{"Var In Defaults To Zero", "var a in a", 0, ""},
		{"Var In Sees Earlier Bindings", "var a = 2, b = a * 3 in a + b", 8, ""},
		{"Var In Initializer Sees Outer Binding", "def f(x) var x = x + 1 in x; f(1)", 2, ""},
		{"Var In Shadowing Is Restored", "def f(x) (var x = 10 in x) + x; f(1)", 11, ""},
		{"Assignment Yields Value", "def f(x) var y = 1 in (y = x + 1) * y; f(2)", 9, ""},
		{"For Runs Body Before Testing", "extern putchard(c); for i = 65, i < 68 in putchard(i)", 0, "ABCD"},
		{"For With Step", "extern printd(x); for i = 0, i < 4, 2 in printd(i)", 0, "0\n2\n4\n"},
		{"For Accumulates", "def sum(n) var acc in (for i = 1, i < n in acc = acc + i) + acc; sum(4)", 10, ""},
		{"User Binary Operator", "def binary| 5 (a b) if a then 1 else if b then 1 else 0; 0 | 1", 1, ""},
		{"User Unary Operator", "def unary!(v) if v then 0 else 1; !0 + !1", 1, ""},
		{"Sequencing Operator", "def binary: 1 (x y) y; extern printd(x); printd(1) : printd(2.5)", 2.5, "1\n2.5\n"},
		{"Extern Math", "extern sqrt(x); extern pow(x y); sqrt(16) + pow(2, 10)", 1028, ""},
		{"Redefinition Is Late Bound", "def f() 1; def g() f(); def f() 2; g()", 2, ""},
		{"Recursive Redefinition Changes Arity", "def foo(a) a; def foo(a b) if a < 1 then b else foo(a-1, b+1); foo(3, 0)", 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := runProgram(t, New(WithOutput(&out)), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.output, out.String())
		})
	}
}

func TestEngineCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"Unknown Variable", "x", `unknown variable name "x"`},
		{"Unknown Function", "foo(1)", "unknown function referenced: foo"},
		{"Undeclared Extern Call", "sin(1)", "unknown function referenced: sin"},
		{"Unknown Native", "extern nope(x)", `no native function named "nope"`},
		{"Extern Arity", "extern sin(x y)", "extern declares 2 parameters, native takes 1"},
		{"Call Arity", "def f(x) x; f(1, 2)", "incorrect number of arguments passed to f"},
		{"Recursive Call Arity", "def f(x) f(x, 1)", "incorrect number of arguments passed to f"},
		{"Recursive Redefinition Uses New Arity", "def f(x y) x; def f(x) f(x, 1)", "incorrect number of arguments passed to f: want 1 arguments, got 2"},
		{"Duplicate Parameter", "def g(a a) a", `duplicate parameter "a"`},
		{"Binary Operator Arity", "def binary% 10 (a) a", "invalid number of operands for operator"},
		{"Unary Operator Arity", "def unary%(a b) a", "invalid number of operands for operator"},
		{"Assign To Non Variable", "def f(x) 1 = x", "destination of '=' must be a variable"},
		{"Undefined Operator", "1 | 2", "unknown function referenced: binary|"},
		{"Loop Variable Out Of Scope", "def f(n) (for i = 0, i < n in 0) + i", `unknown variable name "i"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runProgram(t, New(WithOutput(io.Discard)), tt.input)
			require.Error(t, err)

			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestEngineFailedDefinitionKeepsPrevious(t *testing.T) {
	e := New(WithOutput(io.Discard))
	_, err := runProgram(t, e, "def f() 1")
	require.NoError(t, err)

	_, err = runProgram(t, e, "def f() g()")
	require.Error(t, err)

	got, err := runProgram(t, e, "f()")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestEngineRegistersOnlyNamedFunctions(t *testing.T) {
	e := New(WithOutput(io.Discard))
	_, err := runProgram(t, e, "extern cos(x); def one() 1; one() + 1")
	require.NoError(t, err)

	assert.Equal(t, []string{"cos", "one"}, e.Functions())
	c, ok := e.Lookup("cos")
	require.True(t, ok)
	assert.True(t, c.IsExtern())
	assert.Equal(t, 1, c.Arity())
}

func TestEngineMaxCallDepth(t *testing.T) {
	_, err := runProgram(t, New(WithOutput(io.Discard)), "def f(x) f(x); f(1)")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMaxDepth), "got %v", err)

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "f", re.Func)
}

func TestEngineDeepRecursionWithinLimit(t *testing.T) {
	got, err := runProgram(t, New(WithOutput(io.Discard)), "def down(n) if n < 1 then 0 else 1 + down(n-1); down(5000)")
	require.NoError(t, err)
	assert.Equal(t, 5000.0, got)
}

func TestEngineCancellation(t *testing.T) {
	e := New(WithOutput(io.Discard))
	fns, err := kaleido.ParseProgram("def spin(x) for i = 0, 1 in x; spin(1)", nil)
	require.NoError(t, err)
	_, err = e.Compile(fns[0])
	require.NoError(t, err)
	run, err := e.Compile(fns[1])
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = run.Call(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	_, err = run.Call(cancelled)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestCallableCallArity(t *testing.T) {
	e := New(WithOutput(io.Discard))
	fn, err := kaleido.Parse("def add(a b) a + b", nil)
	require.NoError(t, err)
	add, err := e.Compile(fn)
	require.NoError(t, err)

	got, err := add.Call(context.Background(), 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got)

	_, err = add.Call(context.Background(), 2)
	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Contains(t, re.Error(), "want 2 arguments, got 1")
}

func TestWithExterns(t *testing.T) {
	twice := Extern{Arity: 1, Fn: func(_ io.Writer, args []float64) float64 { return 2 * args[0] }}
	e := New(WithOutput(io.Discard), WithExterns(map[string]Extern{"twice": twice}))

	got, err := runProgram(t, e, "extern twice(x); extern sin(x); twice(21) + sin(0)")
	require.NoError(t, err)
	assert.Equal(t, 42.0, got)
}

func TestPutchardClamps(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 72.0, putchard(&out, []float64{72}))
	putchard(&out, []float64{-3})
	putchard(&out, []float64{1000})
	assert.Equal(t, "H\x00ÿ", out.String())
}
