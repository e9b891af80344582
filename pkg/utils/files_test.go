package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPathInfo(t *testing.T) {
	full, dir, err := GetPathInfo("testdata/../prog.ks")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(full))
	assert.Equal(t, "prog.ks", filepath.Base(full))
	assert.Equal(t, filepath.Dir(full), dir)
}

func TestReadSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fib.ks")
	require.NoError(t, os.WriteFile(path, []byte("def fib(n) n;"), 0o644))

	src, err := ReadSource(path)
	require.NoError(t, err)
	assert.Equal(t, "def fib(n) n;", src)

	_, err = ReadSource(filepath.Join(t.TempDir(), "missing.ks"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.ks")
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/kal")

	got, err := ExpandHome("~/hist")
	require.NoError(t, err)
	assert.Equal(t, "/home/kal/hist", got)

	got, err = ExpandHome("/tmp/hist")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/hist", got)
}

func TestHistoryPath(t *testing.T) {
	t.Setenv("HOME", "/home/kal")
	assert.Equal(t, "/home/kal/"+HistoryFileName, HistoryPath(""))
	assert.Equal(t, "/home/kal/h", HistoryPath("~/h"))
	assert.Equal(t, "rel/h", HistoryPath("rel/h"))
}
