package kaleido

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a SyntaxError.
type ErrorKind int

const (
	// ErrInvalidNumber is a number literal that is not a valid float64. Lexing stops at it.
	ErrInvalidNumber ErrorKind = iota
	// ErrUnexpectedToken is a production finding a token it cannot accept.
	ErrUnexpectedToken
	// ErrUnknownExpression is a token that cannot start an expression.
	ErrUnknownExpression
	// ErrTrailingTokens is input left over after a complete top-level item.
	ErrTrailingTokens
	// ErrUnexpectedEOF is the token stream ending while a production still needs input.
	ErrUnexpectedEOF
)

var kindNames = [...]string{
	ErrInvalidNumber:     "invalid number",
	ErrUnexpectedToken:   "unexpected token",
	ErrUnknownExpression: "unknown expression",
	ErrTrailingTokens:    "trailing tokens",
	ErrUnexpectedEOF:     "unexpected end of file",
}

func (k ErrorKind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// SyntaxError is returned by the lexer and the parser. No partial AST accompanies it.
type SyntaxError struct {
	Kind    ErrorKind
	Msg     string
	Tok     Token // offending token; EOF for ErrUnexpectedEOF
	Line    int
	Col     int
	Snippet string // trimmed source line, when known
}

func (e *SyntaxError) Error() string {
	msg := fmt.Sprintf("line %d:%d: %s", e.Line, e.Col, e.Msg)
	if e.Snippet != "" {
		msg += "\n  |> " + e.Snippet
	}
	return msg
}

// KindOf returns the kind of the SyntaxError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}

// IsIncomplete reports whether err means the input ended too early, i.e. more
// text could still turn it into a valid item.
func IsIncomplete(err error) bool {
	k, ok := KindOf(err)
	return ok && k == ErrUnexpectedEOF
}

// snippetAt returns the trimmed text of the 1-based line of src.
func snippetAt(src string, line int) string {
	if line < 1 {
		return ""
	}
	lines := strings.Split(src, "\n")
	if line > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[line-1])
}
