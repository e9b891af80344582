package kaleido

import (
	"errors"
	"unicode"
)

// Chunk is one top-level item of a source file, as cut by SplitTopLevel.
type Chunk struct {
	Text string
	Line int // 1-based line of the chunk's first character in the file
	Col  int // 1-based column of the chunk's first character
}

// SplitTopLevel cuts src at every ';' that is not inside a '#' comment.
// Each chunk starts at its first non-blank character. Chunks holding nothing
// but whitespace and comments are dropped.
func SplitTopLevel(src string) []Chunk {
	var chunks []Chunk

	line, col := 1, 1
	start, startLine, startCol := 0, 1, 1
	started, hasCode, inComment := false, false, false

	flush := func(end int) {
		if hasCode {
			chunks = append(chunks, Chunk{Text: src[start:end], Line: startLine, Col: startCol})
		}
		started, hasCode = false, false
	}

	for i, r := range src {
		if !started && !inComment && r != ';' && !unicode.IsSpace(r) {
			start, startLine, startCol = i, line, col
			started = true
		}

		switch {
		case inComment:
			if r == '\n' {
				inComment = false
			}
		case r == '#':
			inComment = true
		case r == ';':
			flush(i)
		case !unicode.IsSpace(r):
			hasCode = true
		}

		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	flush(len(src))

	return chunks
}

// Relocate rewrites the position of a SyntaxError raised while parsing the
// chunk on its own so that it points into the whole file.
func (c Chunk) Relocate(err error) error {
	var se *SyntaxError
	if !errors.As(err, &se) {
		return err
	}
	moved := *se
	if moved.Line == 1 {
		moved.Col += c.Col - 1
	}
	moved.Line += c.Line - 1
	return &moved
}

// ParseProgram parses every top-level item of src in order, sharing prec
// between them. It stops at the first error.
func ParseProgram(src string, prec Precedence) ([]*Function, error) {
	if prec == nil {
		prec = DefaultPrecedence()
	}
	var fns []*Function
	for _, c := range SplitTopLevel(src) {
		fn, err := Parse(c.Text, prec)
		if err != nil {
			return fns, c.Relocate(err)
		}
		fns = append(fns, fn)
	}
	return fns, nil
}
