//go:build !js

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/jcgregorio/logger"
	"github.com/peterh/liner"

	"gokaleido/pkg/kaleido"
	"gokaleido/pkg/session"
	"gokaleido/pkg/utils"
)

const (
	promptMain = "?> "
	promptCont = ".. "
)

const helpText = `Enter a definition, an extern or an expression. End items with ';' to
put several on one line. An item that is not finished yet continues on the
next line.

  :help          this text
  :funcs         list defined functions and externs
  :prec          show the operator precedence table
  :load FILE     run every item of FILE in this session
  :quit, exit    leave
`

var (
	errorColor = color.New(color.FgRed).SprintFunc()
	valueColor = color.New(color.FgBlue).SprintFunc()
)

func runREPL(ctx context.Context, flags *appFlags, log *logger.Logger) error {
	cfg, err := flags.loadConfig()
	if err != nil {
		return err
	}
	s, err := session.New(cfg, log, os.Stdout)
	if err != nil {
		return err
	}

	histPath := utils.HistoryPath(cfg.HistoryFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	// Load history (best-effort)
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	for {
		code, ok := readByParseProbe(ln, s.Precedence(), promptMain, promptCont)
		if !ok { // Ctrl+D
			fmt.Println()
			break
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if trimmed == "exit" || trimmed == "quit" {
			break
		}
		if strings.HasPrefix(trimmed, ":") {
			if done := handleReplCommand(ctx, s, trimmed); done {
				break
			}
			ln.AppendHistory(trimmed)
			continue
		}

		evalInput(ctx, s, code)
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	// Persist history (best-effort)
	if histPath != "" {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		} else {
			log.Warningf("cannot save history to %s: %v", histPath, err)
		}
	}
	return nil
}

// evalInput runs every item of one REPL input. Ctrl+C interrupts a running
// program without leaving the REPL.
func evalInput(ctx context.Context, s *session.Session, code string) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	for _, c := range kaleido.SplitTopLevel(code) {
		res, err := s.ExecChunk(ctx, c)
		if err != nil {
			fmt.Println(errorColor("!> Error " + err.Error()))
			return
		}
		if res.Ran {
			fmt.Println(valueColor("=> " + formatValue(res.Value)))
		}
	}
}

// handleReplCommand handles :help, :funcs, :prec, :load and :quit.
func handleReplCommand(ctx context.Context, s *session.Session, line string) (exit bool) {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ":help":
		fmt.Print(helpText)

	case ":quit", ":exit":
		return true

	case ":funcs":
		for _, line := range funcsListing(s) {
			fmt.Println(" ", line)
		}

	case ":prec":
		prec := s.Precedence()
		ops := make([]rune, 0, len(prec))
		for op := range prec {
			ops = append(ops, op)
		}
		sort.Slice(ops, func(i, j int) bool {
			if prec[ops[i]] != prec[ops[j]] {
				return prec[ops[i]] < prec[ops[j]]
			}
			return ops[i] < ops[j]
		})
		for _, op := range ops {
			fmt.Printf("  %c  %d\n", op, prec[op])
		}

	case ":load":
		if len(fields) < 2 {
			fmt.Println("usage: :load FILE")
			return false
		}
		src, err := utils.ReadSource(fields[1])
		if err != nil {
			fmt.Println(errorColor("!> Error " + err.Error()))
			return false
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		results, err := s.ExecProgram(ctx, src, false)
		if n := len(results); n > 0 && results[n-1].Ran {
			fmt.Println(valueColor("=> " + formatValue(results[n-1].Value)))
		}
		if err != nil {
			fmt.Println(errorColor("!> Error " + err.Error()))
		}

	default:
		fmt.Println("unknown command. Type :help for help.")
	}
	return false
}

// funcsListing describes every function of the session by its prototype,
// marking externs.
func funcsListing(s *session.Session) []string {
	var lines []string
	for _, name := range s.Functions() {
		c, ok := s.Lookup(name)
		if !ok {
			continue
		}
		line := c.Proto.String()
		if c.IsExtern() {
			line += "  [extern]"
		}
		lines = append(lines, line)
	}
	return lines
}

// readByParseProbe reads lines until the buffer parses, or fails for a reason
// other than running out of input. The probe parses against a copy of the
// session's table so a half-typed operator declaration changes nothing.
func readByParseProbe(ln *liner.State, prec kaleido.Precedence, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C aborts the current input; let user start again.
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if !needsMore(src, prec) {
			return src, true
		}
	}
}

// needsMore reports whether the REPL should keep reading: the last item of
// src ran out of input and every item before it parses.
func needsMore(src string, prec kaleido.Precedence) bool {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" || strings.HasPrefix(trimmed, ":") || trimmed == "exit" || trimmed == "quit" {
		return false
	}
	chunks := kaleido.SplitTopLevel(src)
	probe := prec.Clone()
	for i, c := range chunks {
		if _, err := kaleido.Parse(c.Text, probe); err != nil {
			return i == len(chunks)-1 && kaleido.IsIncomplete(err)
		}
	}
	return false
}
