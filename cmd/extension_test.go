package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// installExtension writes a cts-<name> shell script in a folder put first in the PATH.
func installExtension(t *testing.T, name, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("extensions are shell scripts in this test")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cts-"+name), []byte("#!/bin/sh\n"+script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return dir
}

func TestRunExtension(t *testing.T) {
	dir := installExtension(t, "hello", `echo "$CTS_PORTFOLIO $CTS_INSTRUMENT $1" > "$OUT"`)
	out := filepath.Join(dir, "out.txt")
	t.Setenv("OUT", out)
	t.Setenv(EnvPortfolio, "broker")

	found, code := RunExtension("hello", []string{"world"})
	assert.True(t, found)
	assert.Equal(t, 0, code)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "broker FCI world", strings.TrimSpace(string(b)))
}

func TestRunExtension_ExitCode(t *testing.T) {
	installExtension(t, "fail", "exit 3\n")
	found, code := RunExtension("fail", nil)
	assert.True(t, found)
	assert.Equal(t, 3, code)
}

func TestRunExtension_NotFound(t *testing.T) {
	found, _ := RunExtension("does-not-exist-anywhere", nil)
	assert.False(t, found)
}
