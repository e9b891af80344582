package kaleido

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lexed is the part of a Token the table tests compare.
type lexed struct {
	Type   TokenType
	Lexeme string
	Value  float64
}

func project(tokens []Token) []lexed {
	out := make([]lexed, len(tokens))
	for i, tok := range tokens {
		out[i] = lexed{Type: tok.Type, Lexeme: tok.Lexeme, Value: tok.Value}
	}
	return out
}

func TestLex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []lexed
	}{
		{
			name:     "Empty",
			input:    "",
			expected: []lexed{{Type: EOF}},
		},
		{
			name:     "Only Whitespace",
			input:    " \t\n  ",
			expected: []lexed{{Type: EOF}},
		},
		{
			name:  "Delimiters",
			input: "( ) ,",
			expected: []lexed{
				{Type: LPAREN, Lexeme: "("},
				{Type: RPAREN, Lexeme: ")"},
				{Type: COMMA, Lexeme: ","},
				{Type: EOF},
			},
		},
		{
			name:  "Keywords and Identifiers",
			input: "def extern if then else for in var unary binary foo _bar x1",
			expected: []lexed{
				{Type: DEF, Lexeme: "def"},
				{Type: EXTERN, Lexeme: "extern"},
				{Type: IF, Lexeme: "if"},
				{Type: THEN, Lexeme: "then"},
				{Type: ELSE, Lexeme: "else"},
				{Type: FOR, Lexeme: "for"},
				{Type: IN, Lexeme: "in"},
				{Type: VAR, Lexeme: "var"},
				{Type: UNARY, Lexeme: "unary"},
				{Type: BINARY, Lexeme: "binary"},
				{Type: IDENTIFIER, Lexeme: "foo"},
				{Type: IDENTIFIER, Lexeme: "_bar"},
				{Type: IDENTIFIER, Lexeme: "x1"},
				{Type: EOF},
			},
		},
		{
			name:  "Keyword Prefix Is Identifier",
			input: "define ifx",
			expected: []lexed{
				{Type: IDENTIFIER, Lexeme: "define"},
				{Type: IDENTIFIER, Lexeme: "ifx"},
				{Type: EOF},
			},
		},
		{
			name:  "Numbers",
			input: "1 2.5 .5 10. 1e3",
			expected: []lexed{
				{Type: NUMBER, Lexeme: "1", Value: 1},
				{Type: NUMBER, Lexeme: "2.5", Value: 2.5},
				{Type: NUMBER, Lexeme: ".5", Value: 0.5},
				{Type: NUMBER, Lexeme: "10.", Value: 10},
				{Type: NUMBER, Lexeme: "1e3", Value: 1000},
				{Type: EOF},
			},
		},
		{
			name:  "Number Then Identifier",
			input: "0x1",
			expected: []lexed{
				{Type: NUMBER, Lexeme: "0", Value: 0},
				{Type: IDENTIFIER, Lexeme: "x1"},
				{Type: EOF},
			},
		},
		{
			name:  "Operators",
			input: "+-*/<=!|^:",
			expected: []lexed{
				{Type: OP, Lexeme: "+"},
				{Type: OP, Lexeme: "-"},
				{Type: OP, Lexeme: "*"},
				{Type: OP, Lexeme: "/"},
				{Type: OP, Lexeme: "<"},
				{Type: OP, Lexeme: "="},
				{Type: OP, Lexeme: "!"},
				{Type: OP, Lexeme: "|"},
				{Type: OP, Lexeme: "^"},
				{Type: OP, Lexeme: ":"},
				{Type: EOF},
			},
		},
		{
			name:  "Non ASCII Operator",
			input: "a ∘ b",
			expected: []lexed{
				{Type: IDENTIFIER, Lexeme: "a"},
				{Type: OP, Lexeme: "∘"},
				{Type: IDENTIFIER, Lexeme: "b"},
				{Type: EOF},
			},
		},
		{
			name:  "Comment Is A Token",
			input: "# hello\nx",
			expected: []lexed{
				{Type: COMMENT, Lexeme: "# hello"},
				{Type: IDENTIFIER, Lexeme: "x"},
				{Type: EOF},
			},
		},
		{
			name:  "Comment At End Of Input",
			input: "x # trailing",
			expected: []lexed{
				{Type: IDENTIFIER, Lexeme: "x"},
				{Type: COMMENT, Lexeme: "# trailing"},
				{Type: EOF},
			},
		},
		{
			name:  "Adjacent Tokens",
			input: "foo(x,y)+1",
			expected: []lexed{
				{Type: IDENTIFIER, Lexeme: "foo"},
				{Type: LPAREN, Lexeme: "("},
				{Type: IDENTIFIER, Lexeme: "x"},
				{Type: COMMA, Lexeme: ","},
				{Type: IDENTIFIER, Lexeme: "y"},
				{Type: RPAREN, Lexeme: ")"},
				{Type: OP, Lexeme: "+"},
				{Type: NUMBER, Lexeme: "1", Value: 1},
				{Type: EOF},
			},
		},
		{
			name:  "Custom Operator Declaration",
			input: "binary^ 60 (a b)",
			expected: []lexed{
				{Type: BINARY, Lexeme: "binary"},
				{Type: OP, Lexeme: "^"},
				{Type: NUMBER, Lexeme: "60", Value: 60},
				{Type: LPAREN, Lexeme: "("},
				{Type: IDENTIFIER, Lexeme: "a"},
				{Type: IDENTIFIER, Lexeme: "b"},
				{Type: RPAREN, Lexeme: ")"},
				{Type: EOF},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lex(tt.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.expected, project(got)); diff != "" {
				t.Errorf("Lex(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestLexTokenAtEndOfInput(t *testing.T) {
	// A number or identifier running into the end of input is still emitted.
	for _, input := range []string{"42", "abc", "x+42"} {
		tokens, err := Lex(input)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(tokens), 2, input)
		last := tokens[len(tokens)-2]
		assert.True(t, strings.HasSuffix(input, last.Lexeme), "input %q, last token %v", input, last)
		assert.Equal(t, EOF, tokens[len(tokens)-1].Type)
	}
}

func TestLexInvalidNumber(t *testing.T) {
	for _, input := range []string{"1.2.3", "12ab", ".", "1e"} {
		_, err := Lex(input)
		require.Error(t, err, input)
		kind, ok := KindOf(err)
		require.True(t, ok)
		assert.Equal(t, ErrInvalidNumber, kind, input)
	}
}

func TestLexPositions(t *testing.T) {
	tokens, err := Lex("def f(x)\n  x + 1")
	require.NoError(t, err)

	want := []struct {
		line, col, offset, end int
	}{
		{1, 1, 0, 3},   // def
		{1, 5, 4, 5},   // f
		{1, 6, 5, 6},   // (
		{1, 7, 6, 7},   // x
		{1, 8, 7, 8},   // )
		{2, 3, 11, 12}, // x
		{2, 5, 13, 14}, // +
		{2, 7, 15, 16}, // 1
		{2, 8, 16, 16}, // EOF
	}
	require.Len(t, tokens, len(want))
	for i, w := range want {
		tok := tokens[i]
		assert.Equal(t, w.line, tok.Line, "token %d line", i)
		assert.Equal(t, w.col, tok.Col, "token %d col", i)
		assert.Equal(t, w.offset, tok.Offset, "token %d offset", i)
		assert.Equal(t, w.end, tok.End, "token %d end", i)
	}
}

func TestLexerTokensSequence(t *testing.T) {
	l := NewLexer("a b c")

	var types []TokenType
	for tok, err := range l.Tokens() {
		require.NoError(t, err)
		types = append(types, tok.Type)
	}
	assert.Equal(t, []TokenType{IDENTIFIER, IDENTIFIER, IDENTIFIER, EOF}, types)

	// The sequence is single-use: a second range yields nothing.
	count := 0
	for range l.Tokens() {
		count++
	}
	assert.Zero(t, count)
}

func TestLexerTokensStopsAtError(t *testing.T) {
	var errs int
	var tokens int
	for _, err := range NewLexer("a 1a2 b").Tokens() {
		if err != nil {
			errs++
			continue
		}
		tokens++
	}
	assert.Equal(t, 1, errs)
	assert.Equal(t, 1, tokens)
}

// Re-lexing the tokens' source spans, joined by spaces, gives back the same
// token sequence.
func TestLexSpansRoundTrip(t *testing.T) {
	inputs := []string{
		"def fib(x) if x < 3 then 1 else fib(x-1)+fib(x-2)",
		"extern sin(a)",
		"var a = 1, b in for i = 1, i < 10, 2 in a = a * i",
		"binary| 5 (LHS RHS) if LHS then 1 else if RHS then 1 else 0",
		"!x+-.5*(y)",
	}
	for _, input := range inputs {
		tokens, err := Lex(input)
		require.NoError(t, err)

		spans := make([]string, 0, len(tokens))
		for _, tok := range tokens {
			if tok.Type == EOF {
				continue
			}
			spans = append(spans, input[tok.Offset:tok.End])
		}

		again, err := Lex(strings.Join(spans, " "))
		require.NoError(t, err)
		if diff := cmp.Diff(project(tokens), project(again)); diff != "" {
			t.Errorf("re-lex of %q mismatch (-want +got):\n%s", input, diff)
		}
	}
}

func TestTokenOp(t *testing.T) {
	tokens, err := Lex("^ x")
	require.NoError(t, err)
	assert.Equal(t, '^', tokens[0].Op())
	assert.True(t, tokens[0].Is('^'))
	assert.Equal(t, rune(0), tokens[1].Op())
	assert.False(t, tokens[1].Is('x'))
}
