package kaleido

import (
	"fmt"
	"math"
)

// Parser consumes the token slice produced by the Lexer and builds one
// top-level item.
//
// Grammar:
//
//	toplevel   = definition | external | expression
//	definition = "def" prototype expression
//	external   = "extern" prototype
//	prototype  = (IDENTIFIER | "unary" OP | "binary" OP [NUMBER]) "(" [IDENTIFIER {[","] IDENTIFIER}] ")"
//	expression = unary {OP unary}                      (precedence climbing over the table)
//	unary      = OP unary | primary
//	primary    = IDENTIFIER ["(" [expression {"," expression}] ")"]
//	           | NUMBER
//	           | "(" expression ")"
//	           | "if" expression "then" expression "else" expression
//	           | "for" IDENTIFIER "=" expression "," expression ["," expression] "in" expression
//	           | "var" IDENTIFIER ["=" expression] {"," IDENTIFIER ["=" expression]} "in" expression
//
// Every production decides on the current token alone and never backtracks.
type Parser struct {
	tokens []Token // comment-free, always terminated by EOF
	pos    int
	prec   Precedence
	src    string

	// previous table entry of an operator declared by this input, put back
	// if the input is rejected
	declared *declaredOp
}

type declaredOp struct {
	op   rune
	prev int
	had  bool
}

// MaxOperatorPrecedence is the largest precedence a binary operator
// declaration may give.
const MaxOperatorPrecedence = math.MaxInt32

// NewParser lexes all of src up front and drops comment tokens. prec is the
// caller's precedence table; binary operator declarations write into it. A
// nil table is replaced by a private DefaultPrecedence.
func NewParser(src string, prec Precedence) (*Parser, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}

	filtered := tokens[:0]
	for _, tok := range tokens {
		if tok.Type != COMMENT {
			filtered = append(filtered, tok)
		}
	}

	if prec == nil {
		prec = DefaultPrecedence()
	}
	return &Parser{tokens: filtered, prec: prec, src: src}, nil
}

// Parse parses exactly one top-level item from src.
func Parse(src string, prec Precedence) (*Function, error) {
	p, err := NewParser(src, prec)
	if err != nil {
		return nil, err
	}
	return p.Parse()
}

// Parse dispatches on the first token and requires the whole input to be
// consumed by the chosen production.
func (p *Parser) Parse() (*Function, error) {
	var (
		fn  *Function
		err error
	)
	switch p.peek().Type {
	case DEF:
		fn, err = p.parseDefinition()
	case EXTERN:
		fn, err = p.parseExtern()
	default:
		fn, err = p.parseTopLevelExpr()
	}
	if err == nil && !p.atEnd() {
		tok := p.peek()
		err = p.fmtError(ErrTrailingTokens, tok, "unexpected token after parsed expression: %s", tok.describe())
	}
	if err != nil {
		p.undoDeclaration()
		return nil, err
	}
	return fn, nil
}

// declare writes prec for op into the table, remembering the old entry.
func (p *Parser) declare(op rune, prec int) {
	prev, had := p.prec[op]
	p.declared = &declaredOp{op: op, prev: prev, had: had}
	p.prec.Set(op, prec)
}

func (p *Parser) undoDeclaration() {
	d := p.declared
	if d == nil {
		return
	}
	if d.had {
		p.prec[d.op] = d.prev
	} else {
		delete(p.prec, d.op)
	}
	p.declared = nil
}

// fmtError builds a SyntaxError at tok. Running into EOF is always reported
// as ErrUnexpectedEOF, whichever production noticed it.
func (p *Parser) fmtError(kind ErrorKind, tok Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if tok.Type == EOF {
		kind = ErrUnexpectedEOF
		msg = "unexpected end of file"
	}
	return &SyntaxError{
		Kind:    kind,
		Msg:     msg,
		Tok:     tok,
		Line:    tok.Line,
		Col:     tok.Col,
		Snippet: snippetAt(p.src, tok.Line),
	}
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *Parser) atEnd() bool {
	return p.peek().Type == EOF
}

// advance moves past the current token. Advancing past EOF is an error.
func (p *Parser) advance() error {
	if p.atEnd() {
		return p.fmtError(ErrUnexpectedEOF, p.peek(), "")
	}
	p.pos++
	return nil
}

// expect consumes the current token if it has type tt.
func (p *Parser) expect(tt TokenType, what string) (Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return tok, p.fmtError(ErrUnexpectedToken, tok, "expected %s, got %s", what, tok.describe())
	}
	return tok, p.advance()
}

// expectOp consumes the current token if it is the operator op.
func (p *Parser) expectOp(op rune, what string) error {
	tok := p.peek()
	if !tok.Is(op) {
		return p.fmtError(ErrUnexpectedToken, tok, "expected %s, got %s", what, tok.describe())
	}
	return p.advance()
}

// tokPrecedence returns the binding power of the current token, or -1 when
// it is not an operator.
func (p *Parser) tokPrecedence() int {
	tok := p.peek()
	if tok.Type != OP {
		return -1
	}
	return p.prec.Lookup(tok.Op())
}

// parsePrototype handles plain names as well as unary/binary operator declarations.
func (p *Parser) parsePrototype() (*Prototype, error) {
	proto := &Prototype{}

	tok := p.peek()
	switch tok.Type {
	case IDENTIFIER:
		proto.Name = tok.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}

	case UNARY, BINARY:
		if err := p.advance(); err != nil {
			return nil, err
		}
		opTok := p.peek()
		if opTok.Type != OP {
			return nil, p.fmtError(ErrUnexpectedToken, opTok, "expected operator in custom operator declaration, got %s", opTok.describe())
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		proto.Name = tok.Lexeme + opTok.Lexeme
		proto.IsOp = true

		// An explicit precedence is registered immediately so the rest of
		// this input sees it. Parse takes it back if the input is rejected.
		if numTok := p.peek(); tok.Type == BINARY && numTok.Type == NUMBER {
			v := numTok.Value
			if math.IsNaN(v) || v < 0 || v > MaxOperatorPrecedence {
				return nil, p.fmtError(ErrUnexpectedToken, numTok, "invalid operator precedence %s: must be between 0 and %d", numTok.Lexeme, MaxOperatorPrecedence)
			}
			proto.Prec = int(v)
			p.declare(opTok.Op(), proto.Prec)
			if err := p.advance(); err != nil {
				return nil, err
			}
		}

	default:
		return nil, p.fmtError(ErrUnexpectedToken, tok, "expected function name in prototype, got %s", tok.describe())
	}

	if _, err := p.expect(LPAREN, "'(' in prototype"); err != nil {
		return nil, err
	}

	if p.peek().Type != RPAREN {
		for {
			argTok := p.peek()
			if argTok.Type != IDENTIFIER {
				return nil, p.fmtError(ErrUnexpectedToken, argTok, "expected parameter name in prototype, got %s", argTok.describe())
			}
			proto.Args = append(proto.Args, argTok.Lexeme)
			if err := p.advance(); err != nil {
				return nil, err
			}

			if p.peek().Type == RPAREN {
				break
			}
			// Parameters may be separated by commas or just whitespace.
			if p.peek().Type == COMMA {
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
		}
	}

	if _, err := p.expect(RPAREN, "')' in prototype"); err != nil {
		return nil, err
	}
	return proto, nil
}

// parseDefinition handles def prototype expression.
func (p *Parser) parseDefinition() (*Function, error) {
	if err := p.advance(); err != nil { // def
		return nil, err
	}
	proto, err := p.parsePrototype()
	if err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &Function{Proto: proto, Body: body}, nil
}

// parseExtern handles extern prototype.
func (p *Parser) parseExtern() (*Function, error) {
	if err := p.advance(); err != nil { // extern
		return nil, err
	}
	proto, err := p.parsePrototype()
	if err != nil {
		return nil, err
	}
	return &Function{Proto: proto}, nil
}

// parseTopLevelExpr wraps a bare expression in an anonymous function so it
// goes through the same pipeline as a definition.
func (p *Parser) parseTopLevelExpr() (*Function, error) {
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &Function{
		Proto:  &Prototype{Name: AnonymousFunctionName},
		Body:   body,
		IsAnon: true,
	}, nil
}

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.parseBinary(0, left)
}

// parseBinary folds operators of precedence >= minPrec into left. Equal
// precedence groups to the left; a tighter operator after the right operand
// is absorbed into it first.
func (p *Parser) parseBinary(minPrec int, left Expr) (Expr, error) {
	for {
		tokPrec := p.tokPrecedence()
		if tokPrec < minPrec {
			return left, nil
		}

		opTok := p.peek()
		if err := p.advance(); err != nil {
			return nil, err
		}

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		if nextPrec := p.tokPrecedence(); tokPrec < nextPrec {
			right, err = p.parseBinary(tokPrec+1, right)
			if err != nil {
				return nil, err
			}
		}

		left = &BinaryExpr{Op: opTok.Op(), Left: left, Right: right}
	}
}

// parseUnary turns a leading operator into a call of "unary<op>".
func (p *Parser) parseUnary() (Expr, error) {
	tok := p.peek()
	if tok.Type != OP {
		return p.parsePrimary()
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &CallExpr{Callee: "unary" + tok.Lexeme, Args: []Expr{operand}}, nil
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case IDENTIFIER:
		return p.parseIdentExpr()
	case NUMBER:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &NumberExpr{Value: tok.Value}, nil
	case LPAREN:
		return p.parseParenExpr()
	case IF:
		return p.parseConditional()
	case FOR:
		return p.parseFor()
	case VAR:
		return p.parseVarIn()
	default:
		return nil, p.fmtError(ErrUnknownExpression, tok, "unknown expression: %s", tok.describe())
	}
}

// parseIdentExpr handles a variable reference or a call name(args).
func (p *Parser) parseIdentExpr() (Expr, error) {
	name := p.peek().Lexeme
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.peek().Type != LPAREN {
		return &VariableExpr{Name: name}, nil
	}
	if err := p.advance(); err != nil { // (
		return nil, err
	}

	var args []Expr
	if p.peek().Type != RPAREN {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.peek().Type == RPAREN {
				break
			}
			if _, err := p.expect(COMMA, "',' or ')' in argument list"); err != nil {
				return nil, err
			}
		}
	}

	if err := p.advance(); err != nil { // )
		return nil, err
	}
	return &CallExpr{Callee: name, Args: args}, nil
}

// parseParenExpr handles ( expression ).
func (p *Parser) parseParenExpr() (Expr, error) {
	if err := p.advance(); err != nil { // (
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN, "')' at end of parenthesized expression"); err != nil {
		return nil, err
	}
	return expr, nil
}

// parseConditional handles if cond then a else b.
func (p *Parser) parseConditional() (Expr, error) {
	if err := p.advance(); err != nil { // if
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(THEN, "'then'"); err != nil {
		return nil, err
	}
	then, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(ELSE, "'else'"); err != nil {
		return nil, err
	}
	els, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &ConditionalExpr{Cond: cond, Then: then, Else: els}, nil
}

// parseFor handles for i = start, end[, step] in body.
func (p *Parser) parseFor() (Expr, error) {
	if err := p.advance(); err != nil { // for
		return nil, err
	}
	nameTok, err := p.expect(IDENTIFIER, "identifier after 'for'")
	if err != nil {
		return nil, err
	}
	if err := p.expectOp('=', "'=' in for loop"); err != nil {
		return nil, err
	}

	start, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(COMMA, "',' after for loop start value"); err != nil {
		return nil, err
	}
	end, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	var step Expr
	if p.peek().Type == COMMA {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if step, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(IN, "'in' in for loop"); err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &ForExpr{VarName: nameTok.Lexeme, Start: start, End: end, Step: step, Body: body}, nil
}

// parseVarIn handles var a = x, b in body.
func (p *Parser) parseVarIn() (Expr, error) {
	if err := p.advance(); err != nil { // var
		return nil, err
	}

	var vars []VarBinding
	for {
		nameTok, err := p.expect(IDENTIFIER, "identifier in var declaration")
		if err != nil {
			return nil, err
		}

		binding := VarBinding{Name: nameTok.Lexeme}
		if p.peek().Is('=') {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if binding.Init, err = p.parseExpression(); err != nil {
				return nil, err
			}
		}
		vars = append(vars, binding)

		tok := p.peek()
		if tok.Type == IN {
			if err := p.advance(); err != nil {
				return nil, err
			}
			break
		}
		if tok.Type != COMMA {
			return nil, p.fmtError(ErrUnexpectedToken, tok, "expected ',' or 'in' in var declaration, got %s", tok.describe())
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &VarInExpr{Vars: vars, Body: body}, nil
}
