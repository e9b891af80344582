package eval

import (
	"context"
	"io"
	"os"
	"sort"

	"gokaleido/pkg/kaleido"
)

// MaxCallDepth bounds the number of nested calls a single Call may make.
const MaxCallDepth = 10000

// Engine holds every function defined so far and the natives extern
// declarations may bind to. It is not safe for concurrent use.
type Engine struct {
	out     io.Writer
	natives map[string]Extern
	funcs   map[string]*Callable
}

// Option configures an Engine.
type Option func(*Engine)

// WithOutput sets where putchard and printd write. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) { e.out = w }
}

// WithExterns adds natives to the default set, replacing any with the same name.
func WithExterns(externs map[string]Extern) Option {
	return func(e *Engine) {
		for name, ext := range externs {
			e.natives[name] = ext
		}
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		out:     os.Stdout,
		natives: DefaultExterns(),
		funcs:   make(map[string]*Callable),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Lookup returns the function or extern registered under name.
func (e *Engine) Lookup(name string) (*Callable, bool) {
	c, ok := e.funcs[name]
	return c, ok
}

// Functions returns the sorted names of every registered function and extern.
func (e *Engine) Functions() []string {
	names := make([]string, 0, len(e.funcs))
	for name := range e.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Callable is a compiled function ready to run.
type Callable struct {
	Name  string
	Proto *kaleido.Prototype

	engine    *Engine
	native    *Extern
	body      node
	frameSize int
}

// Arity is the number of arguments Call expects.
func (c *Callable) Arity() int {
	return len(c.Proto.Args)
}

// IsExtern reports whether c is bound to a native function.
func (c *Callable) IsExtern() bool {
	return c.native != nil
}

// Call runs c with args. ctx is checked before every call and loop
// iteration, so a cancelled context stops even a non-terminating program.
func (c *Callable) Call(ctx context.Context, args ...float64) (float64, error) {
	if len(args) != c.Arity() {
		return 0, &RuntimeError{Func: c.Name, Msg: arityMsg(c.Arity(), len(args))}
	}
	m := &machine{ctx: ctx, engine: c.engine}
	return m.call(c, args)
}

// machine is the state of one top-level Call.
type machine struct {
	ctx    context.Context
	engine *Engine
	depth  int
}

func (m *machine) call(c *Callable, args []float64) (float64, error) {
	if err := m.ctx.Err(); err != nil {
		return 0, &RuntimeError{Func: c.Name, Msg: "interrupted", Err: err}
	}
	if c.native != nil {
		return c.native.Fn(m.engine.out, args), nil
	}
	if m.depth >= MaxCallDepth {
		return 0, &RuntimeError{Func: c.Name, Msg: "call too deep", Err: ErrMaxDepth}
	}

	m.depth++
	defer func() { m.depth-- }()

	frame := make([]float64, c.frameSize)
	copy(frame, args)
	return c.body(m, frame)
}

// interrupted checks for cancellation inside a loop of fn.
func (m *machine) interrupted(fn string) error {
	if err := m.ctx.Err(); err != nil {
		return &RuntimeError{Func: fn, Msg: "interrupted", Err: err}
	}
	return nil
}
