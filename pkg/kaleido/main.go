// Package kaleido provides the lexer, AST and parser of a small untyped
// float64 expression language with user-defined unary and binary operators.
//
// Pipeline: source → Lex → Parse → *Function (definition, extern or
// anonymous expression), one top-level item per parse. Operator precedence
// lives in a caller-owned Precedence table that every parse of a session
// shares.
package kaleido
