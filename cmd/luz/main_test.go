package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// luz runs the CLI in-process and returns the exit code and both streams.
func luz(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeProgram(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestUsage(t *testing.T) {
	code, _, stderr := luz(t, "")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "usage: luz <command>")

	code, _, stderr = luz(t, "", "frobnicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Unknown command: frobnicate")

	code, _, stderr = luz(t, "", "run")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "usage: luz run")

	code, _, _ = luz(t, "", "run", "--jobs", "0", "x.luz")
	assert.Equal(t, 1, code)

	code, _, _ = luz(t, "", "run", "--no-such-flag", "x.luz")
	assert.Equal(t, 1, code)
}

func TestFlagsAfterFile(t *testing.T) {
	path := writeProgram(t, "p.luz", "imprimir(1 / 0);")
	code, _, stderr := luz(t, "", "run", path, "--pretty")
	assert.Equal(t, 4, code)
	assert.Contains(t, stderr, "error[E_EVAL]: division by zero")
	assert.Contains(t, stderr, path+":1:10")
}

func TestRunBatchKeepsFirstFailureCode(t *testing.T) {
	ok := writeProgram(t, "ok.luz", `imprimir("ok");`)
	bad := writeProgram(t, "bad.luz", "imprimir(")
	loop := writeProgram(t, "loop.luz", "mientrasQue (verdadero) { }")

	code, stdout, stderr := luz(t, "", "run", "-j", "3", "--max-iterations", "3", ok, bad, loop)
	assert.Equal(t, 2, code)
	assert.Equal(t, "ok\n", stdout)
	assert.Contains(t, stderr, "E_SYNTAX")
	assert.Contains(t, stderr, "E_BUDGET")
	assert.Less(t, strings.Index(stderr, "E_SYNTAX"), strings.Index(stderr, "E_BUDGET"))
}

func TestCheckPretty(t *testing.T) {
	path := writeProgram(t, "c.luz", "var a = 1; imprimir(a);")
	code, stdout, _ := luz(t, "", "check", "--pretty", path)
	assert.Equal(t, 0, code)
	assert.Equal(t, "No errors found.\n", stdout)

	bad := writeProgram(t, "bad.luz", "b = 2;\nimprimir(c);")
	code, _, stderr := luz(t, "", "check", "--pretty", bad)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "error[E_UNBOUND]: assignment to undeclared variable 'b'")
	assert.Contains(t, stderr, "error[E_UNBOUND]: unbound variable 'c'")
}

func TestFmtWrite(t *testing.T) {
	path := writeProgram(t, "f.luz", "var x=1;imprimir(x)")
	code, stdout, _ := luz(t, "", "fmt", "--write", path)
	require.Equal(t, 0, code)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "var x = 1;\nimprimir(x);\n", string(data))

	bad := writeProgram(t, "bad.luz", "si (x) {")
	code, _, stderr := luz(t, "", "fmt", bad)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "unbalanced braces")
}

func TestTokensText(t *testing.T) {
	code, stdout, _ := luz(t, `imprimir("a   b");`, "tokens", "-")
	assert.Equal(t, 0, code)
	assert.Equal(t, "imprimir\n(\n\"a b\"\n)\n;\n", stdout)

	code, stdout, _ = luz(t, "", "tokens", "--json", "-")
	assert.Equal(t, 0, code)
	assert.Equal(t, "[]\n", stdout)
}

func TestLogLevelDebug(t *testing.T) {
	path := writeProgram(t, "d.luz", "var i = 0; mientrasQue (i < 2) { i = i + 1; }")
	code, _, stderr := luz(t, "", "run", "--log-level", "debug", path)
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "config loaded")
	assert.Contains(t, stderr, "loop end")
	assert.Contains(t, stderr, "iterations=2")
}

func TestBadDialectFlag(t *testing.T) {
	path := writeProgram(t, "e.luz", "imprimir(1);")
	code, _, stderr := luz(t, "", "run", "--dialect", "latin", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "E_CONFIG")
}

func TestReplEnglishExitWord(t *testing.T) {
	code, stdout, _ := luz(t, "print(1)\nexit\n", "repl", "--dialect", "english")
	assert.Equal(t, 0, code)
	assert.Equal(t, ">>> 1\n>>> ", stdout)

	// end of input also ends the session
	code, stdout, _ = luz(t, "var a = 2", "repl")
	assert.Equal(t, 0, code)
	assert.Equal(t, ">>> => 2\n>>> \n", stdout)
}

func TestHelp(t *testing.T) {
	code, stdout, _ := luz(t, "", "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "LuzScript v0.2")

	code, stdout, _ = luz(t, "", "help", "keywords")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "mientrasQue")

	code, _, stderr := luz(t, "", "help", "nope")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown help topic")
}
