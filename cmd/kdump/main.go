package main

import (
	"context"
	"fmt"
	"os"

	"gokaleido/pkg/config"
	"gokaleido/pkg/eval"
	"gokaleido/pkg/kaleido"
	"gokaleido/pkg/render"
	"gokaleido/pkg/session"
	"gokaleido/pkg/utils"
)

const testSource = `# fibonacci
def fib(x)
  if x < 3 then 1 else fib(x-1) + fib(x-2);

def binary : 1 (x y) y;
extern printd(x);

printd(fib(10)) : fib(1 + 2 * 3);
`

func main() {
	src := testSource
	if len(os.Args) > 1 {
		var err error
		src, err = utils.ReadSource(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Source:\n%s\n", src)

	// Lex
	tokens, err := kaleido.Lex(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lex error:", err)
		os.Exit(1)
	}

	fmt.Printf("Tokens (%d)\n", len(tokens))
	for _, tok := range tokens {
		fmt.Println(" ", tok)
	}
	fmt.Println()

	// Parse
	fns, err := kaleido.ParseProgram(src, kaleido.DefaultPrecedence())
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse error:", err)
		os.Exit(1)
	}

	fmt.Println("AST")
	for _, fn := range fns {
		fmt.Println(" ", fn)
	}
	fmt.Println()

	fmt.Println("Tree (folded)")
	for _, fn := range fns {
		fmt.Print(render.Text(render.Tree(kaleido.FoldFunction(fn)), "  "))
	}
	fmt.Println()

	fmt.Println("Calls")
	for _, fn := range fns {
		if fn.Body != nil {
			fmt.Printf("  %-20s -> %v\n", fn.Proto.Name, kaleido.Callees(fn))
		}
	}
	fmt.Println()

	// Run in a fresh session; the parse above already consumed one table.
	fmt.Println("Results")
	s, err := session.New(config.Config{}, nil, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "session error:", err)
		os.Exit(1)
	}
	results, err := s.ExecProgram(context.Background(), src, true)
	for _, res := range results {
		if res.Ran {
			fmt.Printf("  => %g\n", res.Value)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "run error:", err)
		os.Exit(1)
	}
	fmt.Println()

	fmt.Println("Functions")
	for _, name := range s.Functions() {
		fmt.Println(" ", name)
	}
	fmt.Printf("  (call depth limit %d)\n", eval.MaxCallDepth)
}
