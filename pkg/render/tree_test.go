package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gokaleido/pkg/kaleido"
)

func TestText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Extern",
			input:    "extern sin(x)",
			expected: "extern sin(x)\n",
		},
		{
			name:  "Expression",
			input: "1 + f(x)",
			expected: `expr
  binary +
    1
    call f
      x
`,
		},
		{
			name:  "Operator Definition",
			input: "def binary| 5 (a b) if a then 1 else b",
			expected: `def binary|(a, b) prec 5
  if
    cond: a
    then: 1
    else: b
`,
		},
		{
			name:  "Loops And Bindings",
			input: "def f(n) var acc = 0, k in for i = 1, i < n, 2 in acc = acc + i",
			expected: `def f(n)
  var acc, k
    acc: 0
    body: for i
      start: 1
      end: binary <
        i
        n
      step: 2
      body: binary =
        acc
        binary +
          acc
          i
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := kaleido.Parse(tt.input, kaleido.DefaultPrecedence())
			require.NoError(t, err)
			if diff := cmp.Diff(tt.expected, Text(Tree(fn), "  ")); diff != "" {
				t.Errorf("Text(Tree(%q)) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestTreeKinds(t *testing.T) {
	fn, err := kaleido.Parse("if x then g(1) else 2", nil)
	require.NoError(t, err)

	var kinds []Kind
	for _, l := range Tree(fn) {
		kinds = append(kinds, l.Kind)
	}
	assert.Equal(t, []Kind{KindDecl, KindControl, KindVariable, KindCall, KindNumber, KindNumber}, kinds)
}
