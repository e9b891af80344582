package kaleido

// UnknownOperatorPrecedence is the binding power of an operator symbol that
// has no table entry. It is higher than every built-in, so an operator that
// is used before its declaration binds tightly instead of being rejected.
const UnknownOperatorPrecedence = 100

// Precedence maps a binary operator symbol to its binding power. The caller
// owns the table and passes the same one to every parse of a session, so an
// operator declared by one input is known to the next. It is not safe for
// concurrent use.
type Precedence map[rune]int

// DefaultPrecedence returns a fresh table holding the built-in operators.
func DefaultPrecedence() Precedence {
	return Precedence{
		'=': 2,
		'<': 10,
		'+': 20,
		'-': 20,
		'*': 40,
		'/': 40,
	}
}

// Lookup returns the precedence of op.
func (p Precedence) Lookup(op rune) int {
	if prec, ok := p[op]; ok {
		return prec
	}
	return UnknownOperatorPrecedence
}

// Set records prec for op, overwriting any earlier entry.
func (p Precedence) Set(op rune, prec int) {
	p[op] = prec
}

// Clone returns an independent copy of p.
func (p Precedence) Clone() Precedence {
	c := make(Precedence, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}
