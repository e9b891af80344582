//go:build !js

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gokaleido/pkg/config"
	"gokaleido/pkg/session"
	"gokaleido/pkg/utils"
)

// runApp runs a program from _kapps and returns what it printed.
func runApp(t *testing.T, name string, cfg config.Config) (string, []session.Result) {
	t.Helper()
	src, err := utils.ReadSource("_kapps/" + name)
	require.NoError(t, err)

	var out bytes.Buffer
	s, err := session.New(cfg, nil, &out)
	require.NoError(t, err)

	results, err := s.ExecProgram(context.Background(), src, false)
	require.NoError(t, err, "output so far:\n%s", out.String())
	return out.String(), results
}

func TestFibApp(t *testing.T) {
	out, results := runApp(t, "fib.ks", config.Config{})
	assert.Equal(t, "55\n55\n", out)

	last := results[len(results)-1]
	assert.True(t, last.Ran)
	assert.Equal(t, 55.0, last.Value)
}

func TestOperatorsApp(t *testing.T) {
	out, results := runApp(t, "operators.ks", config.Config{})
	assert.Equal(t, "2\n1\n1\n1\n*****\n", out)
	assert.Equal(t, 10.0, results[len(results)-1].Value)
}

func TestDensityApp(t *testing.T) {
	for _, fold := range []bool{false, true} {
		out, _ := runApp(t, "density.ks", config.Config{Fold: fold})
		rows := strings.Split(strings.TrimRight(out, "\n"), "\n")
		require.Greater(t, len(rows), 30)
		require.GreaterOrEqual(t, len(rows[0]), 78)
		for _, row := range rows {
			assert.Len(t, row, len(rows[0]), "row %q", row)
		}
		assert.Contains(t, out, "*")
		assert.Contains(t, out, ".")
	}
}
