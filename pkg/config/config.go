// Package config loads the optional JSON5 settings file shared by the REPL
// and the batch runner.
package config

import (
	"os"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/flynn/json5"
	"github.com/pkg/errors"

	"gokaleido/pkg/kaleido"
)

// Config is the contents of a settings file. Every field is optional.
//
//	{
//	  // extra or overridden binary operator precedences
//	  precedence: { "|": 5, "&": 6 },
//	  fold: true,
//	  historyFile: "~/.kaleido_history",
//	  dumpTokens: false,
//	  dumpAST: false,
//	}
type Config struct {
	Precedence  map[string]int `json:"precedence"`
	Fold        bool           `json:"fold"`
	HistoryFile string         `json:"historyFile"`
	DumpTokens  bool           `json:"dumpTokens"`
	DumpAST     bool           `json:"dumpAST"`
}

var knownKeys = map[string]bool{
	"precedence":  true,
	"fold":        true,
	"historyFile": true,
	"dumpTokens":  true,
	"dumpAST":     true,
}

// Load reads and validates the settings file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes and validates JSON5 settings. Unknown keys are errors.
func Parse(data []byte) (Config, error) {
	var raw map[string]interface{}
	if err := json5.Unmarshal(data, &raw); err != nil {
		return Config{}, errors.Wrap(err, "decoding")
	}
	var unknown []string
	for key := range raw {
		if !knownKeys[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Config{}, errors.Errorf("unknown keys: %s", strings.Join(unknown, ", "))
	}

	var cfg Config
	if err := json5.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "decoding")
	}
	if _, err := cfg.PrecedenceTable(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// PrecedenceTable returns the default table with the configured overrides
// applied.
func (c Config) PrecedenceTable() (kaleido.Precedence, error) {
	prec := kaleido.DefaultPrecedence()
	for key, value := range c.Precedence {
		op, err := operatorKey(key)
		if err != nil {
			return nil, err
		}
		if value <= 0 {
			return nil, errors.Errorf("precedence of %q must be positive, got %d", key, value)
		}
		prec.Set(op, value)
	}
	return prec, nil
}

// operatorKey accepts a key naming exactly one character the lexer reads as
// an operator.
func operatorKey(key string) (rune, error) {
	op, size := utf8.DecodeRuneInString(key)
	if key == "" || size != len(key) {
		return 0, errors.Errorf("precedence key %q must be a single character", key)
	}
	switch {
	case unicode.IsSpace(op), unicode.IsLetter(op), unicode.IsDigit(op),
		op == '_', op == '.', op == '(', op == ')', op == ',', op == '#', op == ';':
		return 0, errors.Errorf("precedence key %q is not an operator character", key)
	}
	return op, nil
}
