// Package session ties the parser and the evaluator together the way the
// REPL and the batch runner use them: one precedence table and one engine
// shared by every input of a session.
package session

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"gokaleido/pkg/config"
	"gokaleido/pkg/eval"
	"gokaleido/pkg/kaleido"
)

// Logger is the subset of github.com/jcgregorio/logger a Session reports to.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{})   {}
func (nopLogger) Infof(string, ...interface{})    {}
func (nopLogger) Warningf(string, ...interface{}) {}
func (nopLogger) Errorf(string, ...interface{})   {}

// Result is the outcome of one top-level item. Value is only meaningful
// when Ran is set, i.e. for anonymous expressions.
type Result struct {
	Fn    *kaleido.Function
	Value float64
	Ran   bool
}

// Session is not safe for concurrent use.
type Session struct {
	cfg    config.Config
	log    Logger
	out    io.Writer
	prec   kaleido.Precedence
	engine *eval.Engine
}

// New builds a session whose table holds the defaults plus cfg's overrides.
// Program output and dumps go to out. log may be nil.
func New(cfg config.Config, log Logger, out io.Writer) (*Session, error) {
	prec, err := cfg.PrecedenceTable()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Session{
		cfg:    cfg,
		log:    log,
		out:    out,
		prec:   prec,
		engine: eval.New(eval.WithOutput(out)),
	}, nil
}

// Precedence returns the session's live table.
func (s *Session) Precedence() kaleido.Precedence {
	return s.prec
}

// Functions returns the names of everything defined or declared so far.
func (s *Session) Functions() []string {
	return s.engine.Functions()
}

// Lookup returns the compiled function or extern registered under name.
func (s *Session) Lookup(name string) (*eval.Callable, bool) {
	return s.engine.Lookup(name)
}

// Exec parses src as exactly one top-level item, compiles it and, for an
// anonymous expression, runs it.
func (s *Session) Exec(ctx context.Context, src string) (Result, error) {
	return s.ExecChunk(ctx, kaleido.Chunk{Text: src, Line: 1, Col: 1})
}

// ExecChunk is Exec for one item cut out of a larger input by
// kaleido.SplitTopLevel. Syntax errors point into that larger input.
func (s *Session) ExecChunk(ctx context.Context, c kaleido.Chunk) (Result, error) {
	if s.cfg.DumpTokens {
		s.dumpTokens(c.Text)
	}

	fn, err := kaleido.Parse(c.Text, s.prec)
	if err != nil {
		return Result{}, errors.Wrap(c.Relocate(err), "parsing expression")
	}
	if s.cfg.Fold {
		fn = kaleido.FoldFunction(fn)
	}
	if s.cfg.DumpAST {
		s.dumpAST(fn)
	}

	callable, err := s.engine.Compile(fn)
	if err != nil {
		return Result{}, errors.Wrap(err, "compiling function")
	}
	if !fn.IsAnon {
		s.log.Debugf("defined %s", fn.Proto)
		return Result{Fn: fn}, nil
	}

	v, err := callable.Call(ctx)
	if err != nil {
		return Result{}, errors.Wrap(err, "during execution")
	}
	s.log.Debugf("evaluated %s = %g", fn.Body, v)
	return Result{Fn: fn, Value: v, Ran: true}, nil
}

// ExecProgram runs every ';'-separated item of src in order. Without
// keepGoing it stops at the first failure; with it every failure is
// collected and the rest of the program still runs.
func (s *Session) ExecProgram(ctx context.Context, src string, keepGoing bool) ([]Result, error) {
	var (
		results []Result
		merr    *multierror.Error
	)
	for _, c := range kaleido.SplitTopLevel(src) {
		if err := ctx.Err(); err != nil {
			return results, multierror.Append(merr, err).ErrorOrNil()
		}
		res, err := s.ExecChunk(ctx, c)
		if err != nil {
			err = errors.Wrapf(err, "item at line %d", c.Line)
			if !keepGoing {
				return results, err
			}
			s.log.Warningf("%v", err)
			merr = multierror.Append(merr, err)
			continue
		}
		results = append(results, res)
	}
	return results, merr.ErrorOrNil()
}

func (s *Session) dumpTokens(src string) {
	tokens, err := kaleido.Lex(src)
	fmt.Fprintln(s.out, "-> Attempting to parse lexed input:")
	for _, tok := range tokens {
		fmt.Fprintln(s.out, "  ", tok)
	}
	if err != nil {
		fmt.Fprintln(s.out, "   (lexing stopped:", err.Error()+")")
	}
	fmt.Fprintln(s.out)
}

func (s *Session) dumpAST(fn *kaleido.Function) {
	if fn.IsAnon {
		fmt.Fprintf(s.out, "-> Expression parsed:\n%s\n\n", fn.Body)
		return
	}
	fmt.Fprintf(s.out, "-> Function parsed:\n%s\n\n", fn)
}
