package kaleido

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Delimiters
	LPAREN // (
	RPAREN // )
	COMMA  // ,

	COMMENT // # ... up to end of line

	// Literals
	NUMBER     // float64 literal
	IDENTIFIER // variable / function name

	// Keywords
	DEF    // "def"
	EXTERN // "extern"
	IF     // "if"
	THEN   // "then"
	ELSE   // "else"
	FOR    // "for"
	IN     // "in"
	VAR    // "var"
	UNARY  // "unary"
	BINARY // "binary"

	// Any other single character. User-defined operators enter the grammar here.
	OP
)

var tokenNames = [...]string{
	EOF:        "EOF",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	COMMA:      "COMMA",
	COMMENT:    "COMMENT",
	NUMBER:     "NUMBER",
	IDENTIFIER: "IDENTIFIER",
	DEF:        "DEF",
	EXTERN:     "EXTERN",
	IF:         "IF",
	THEN:       "THEN",
	ELSE:       "ELSE",
	FOR:        "FOR",
	IN:         "IN",
	VAR:        "VAR",
	UNARY:      "UNARY",
	BINARY:     "BINARY",
	OP:         "OP",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// keywords maps reserved words to their TokenType.
var keywords = map[string]TokenType{
	"def":    DEF,
	"extern": EXTERN,
	"if":     IF,
	"then":   THEN,
	"else":   ELSE,
	"for":    FOR,
	"in":     IN,
	"var":    VAR,
	"unary":  UNARY,
	"binary": BINARY,
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string  // the exact source text that was matched (comments exclude the newline)
	Value  float64 // set for NUMBER
	Line   int     // 1-based source line
	Col    int     // 1-based column, counted in runes
	Offset int     // byte offset of the first character
	End    int     // byte offset just past the last character
}

// Op returns the operator character of an OP token, or 0 for any other token.
func (t Token) Op() rune {
	if t.Type != OP {
		return 0
	}
	for _, r := range t.Lexeme {
		return r
	}
	return 0
}

// Is reports whether t is the single-character operator op.
func (t Token) Is(op rune) bool {
	return t.Type == OP && t.Op() == op
}

// describe renders the token the way it is quoted in diagnostics.
func (t Token) describe() string {
	switch t.Type {
	case EOF:
		return "end of file"
	case NUMBER, IDENTIFIER, OP:
		return fmt.Sprintf("%s %q", t.Type, t.Lexeme)
	default:
		return fmt.Sprintf("%q", t.Lexeme)
	}
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  line %d:%d", t.Type, t.Lexeme, t.Line, t.Col)
}
