package kaleido

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Lexer holds all mutable state for a single forward pass over src.
type Lexer struct {
	src  string
	pos  int // byte offset of the next rune to consume
	line int // current 1-based source line
	col  int // current 1-based column
	err  error
	done bool
}

// NewLexer returns a Lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return r
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// skipLineComment discards everything up to, but not including, the next
// newline. The opening '#' must already have been consumed.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// scanNumber collects a number literal. The first character ('.' or a digit)
// must already have been consumed. Hex digits are accepted while scanning and
// rejected by the float conversion.
func (l *Lexer) scanNumber(tok Token) (Token, error) {
	for l.pos < len(l.src) {
		r := l.peek()
		if r != '.' && !isHexDigit(r) {
			break
		}
		l.advance()
	}
	tok.Type = NUMBER
	tok.Lexeme = l.src[tok.Offset:l.pos]
	tok.End = l.pos

	v, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return tok, &SyntaxError{
			Kind:    ErrInvalidNumber,
			Msg:     fmt.Sprintf("invalid number literal %q", tok.Lexeme),
			Tok:     tok,
			Line:    tok.Line,
			Col:     tok.Col,
			Snippet: snippetAt(l.src, tok.Line),
		}
	}
	tok.Value = v
	return tok, nil
}

// scanIdent collects an identifier or keyword. The first character must
// already have been consumed.
func (l *Lexer) scanIdent(tok Token) Token {
	for l.pos < len(l.src) {
		r := l.peek()
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsNumber(r) {
			break
		}
		l.advance()
	}
	tok.Lexeme = l.src[tok.Offset:l.pos]
	tok.End = l.pos
	tok.Type = IDENTIFIER
	if kw, ok := keywords[tok.Lexeme]; ok {
		tok.Type = kw
	}
	return tok
}

// Next skips whitespace and returns the next Token. At end of input it
// returns an EOF token, repeatedly. After an error every call returns that
// same error.
func (l *Lexer) Next() (Token, error) {
	if l.err != nil {
		return Token{}, l.err
	}

	l.skipWhitespace()
	tok := Token{Line: l.line, Col: l.col, Offset: l.pos, End: l.pos}
	if l.pos >= len(l.src) {
		tok.Type = EOF
		return tok, nil
	}

	ch := l.advance()
	switch {
	case ch == '(':
		tok.Type = LPAREN
	case ch == ')':
		tok.Type = RPAREN
	case ch == ',':
		tok.Type = COMMA
	case ch == '#':
		l.skipLineComment()
		tok.Type = COMMENT
	case ch == '.' || isDigit(ch):
		var err error
		if tok, err = l.scanNumber(tok); err != nil {
			l.err = err
			return tok, err
		}
		return tok, nil
	case ch == '_' || isASCIILetter(ch):
		return l.scanIdent(tok), nil
	default:
		tok.Type = OP
	}

	tok.Lexeme = l.src[tok.Offset:l.pos]
	tok.End = l.pos
	return tok, nil
}

// Tokens returns a single-use, forward-only sequence over the remaining
// input. It ends after yielding the EOF token or the first error.
func (l *Lexer) Tokens() iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		for !l.done {
			tok, err := l.Next()
			if err != nil {
				l.done = true
				yield(tok, err)
				return
			}
			if tok.Type == EOF {
				l.done = true
			}
			if !yield(tok, nil) {
				return
			}
		}
	}
}

// Lex tokenises src and returns all tokens including the final EOF token.
// Comments are kept. It stops at the first invalid number literal.
func Lex(src string) ([]Token, error) {
	var tokens []Token
	for tok, err := range NewLexer(src).Tokens() {
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
