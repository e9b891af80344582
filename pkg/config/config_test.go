package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`{
		// comments and unquoted keys are allowed
		precedence: { "|": 5, "^": 60 },
		fold: true,
		historyFile: "~/.hist",
		dumpAST: true,
	}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"|": 5, "^": 60}, cfg.Precedence)
	assert.True(t, cfg.Fold)
	assert.True(t, cfg.DumpAST)
	assert.False(t, cfg.DumpTokens)
	assert.Equal(t, "~/.hist", cfg.HistoryFile)

	prec, err := cfg.PrecedenceTable()
	require.NoError(t, err)
	assert.Equal(t, 5, prec['|'])
	assert.Equal(t, 60, prec['^'])
	assert.Equal(t, 20, prec['+'])
}

func TestParseOverridesBuiltin(t *testing.T) {
	cfg, err := Parse([]byte(`{precedence: {"+": 45}}`))
	require.NoError(t, err)
	prec, err := cfg.PrecedenceTable()
	require.NoError(t, err)
	assert.Equal(t, 45, prec['+'])
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse([]byte(`{}`))
	require.NoError(t, err)
	prec, err := cfg.PrecedenceTable()
	require.NoError(t, err)
	assert.Len(t, prec, 6)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"Unknown Key", `{fold: true, colour: "red"}`, "unknown keys: colour"},
		{"Multi Character Operator", `{precedence: {"||": 5}}`, "must be a single character"},
		{"Empty Operator", `{precedence: {"": 5}}`, "must be a single character"},
		{"Letter Operator", `{precedence: {"a": 5}}`, "not an operator character"},
		{"Paren Operator", `{precedence: {"(": 5}}`, "not an operator character"},
		{"Zero Precedence", `{precedence: {"|": 0}}`, "must be positive"},
		{"Wrong Type", `{fold: "yes"}`, "decoding"},
		{"Not JSON", `{fold: `, "decoding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kaleido.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{dumpTokens: true}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.DumpTokens)

	_, err = Load(filepath.Join(t.TempDir(), "nope.json5"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}
