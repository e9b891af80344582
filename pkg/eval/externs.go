package eval

import (
	"fmt"
	"io"
	"math"
	"strconv"
)

// Extern is a native function a program can reach through an extern
// declaration.
type Extern struct {
	Arity int
	Fn    func(out io.Writer, args []float64) float64
}

func math1(f func(float64) float64) Extern {
	return Extern{Arity: 1, Fn: func(_ io.Writer, args []float64) float64 { return f(args[0]) }}
}

func math2(f func(float64, float64) float64) Extern {
	return Extern{Arity: 2, Fn: func(_ io.Writer, args []float64) float64 { return f(args[0], args[1]) }}
}

// DefaultExterns returns the natives every Engine starts with.
func DefaultExterns() map[string]Extern {
	return map[string]Extern{
		"putchard": {Arity: 1, Fn: putchard},
		"printd":   {Arity: 1, Fn: printd},
		"sin":      math1(math.Sin),
		"cos":      math1(math.Cos),
		"tan":      math1(math.Tan),
		"atan2":    math2(math.Atan2),
		"sqrt":     math1(math.Sqrt),
		"exp":      math1(math.Exp),
		"log":      math1(math.Log),
		"pow":      math2(math.Pow),
		"fabs":     math1(math.Abs),
		"floor":    math1(math.Floor),
		"ceil":     math1(math.Ceil),
	}
}

// putchard writes its argument as a single byte-sized character and returns it.
func putchard(out io.Writer, args []float64) float64 {
	x := args[0]
	var b byte
	switch {
	case math.IsNaN(x) || x <= 0:
		b = 0
	case x >= 255:
		b = 255
	default:
		b = byte(x)
	}
	fmt.Fprintf(out, "%c", rune(b))
	return x
}

// printd writes its argument followed by a newline and returns it.
func printd(out io.Writer, args []float64) float64 {
	fmt.Fprintln(out, strconv.FormatFloat(args[0], 'f', -1, 64))
	return args[0]
}
