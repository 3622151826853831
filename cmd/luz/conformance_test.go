package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/thomasrohde/luzscript/internal/testutil"
	"github.com/thomasrohde/luzscript/pkg/diagnostics"
)

func TestConformance(t *testing.T) {
	dirs, err := testutil.ListScenarios(testutil.ScenariosDir)
	if err != nil {
		t.Fatalf("failed to list scenarios: %v", err)
	}
	if len(dirs) == 0 {
		t.Fatal("no scenarios found")
	}
	// Keep user and project config files out of the scenarios.
	t.Setenv("HOME", t.TempDir())

	for _, dir := range dirs {
		t.Run(filepath.Base(dir), func(t *testing.T) {
			scenario, err := testutil.LoadScenario(dir)
			if err != nil {
				t.Fatalf("failed to load scenario: %v", err)
			}

			var stdout, stderr bytes.Buffer
			args := testutil.ResolveArgs(dir, scenario.Cmd)
			code := run(context.Background(), args, strings.NewReader(scenario.Stdin), &stdout, &stderr)

			exp := scenario.Expect
			if code != exp.ExitCode {
				t.Errorf("exit code: got %d, want %d\nstderr: %s", code, exp.ExitCode, stderr.String())
			}
			if exp.Stdout != nil {
				if diff := cmp.Diff(*exp.Stdout, stdout.String()); diff != "" {
					t.Errorf("stdout mismatch (-want +got):\n%s", diff)
				}
			}
			if exp.StdoutContains != "" && !strings.Contains(stdout.String(), exp.StdoutContains) {
				t.Errorf("stdout %q does not contain %q", stdout.String(), exp.StdoutContains)
			}
			if exp.Stderr != nil {
				if diff := cmp.Diff(*exp.Stderr, stderr.String()); diff != "" {
					t.Errorf("stderr mismatch (-want +got):\n%s", diff)
				}
			}
			if exp.StderrContains != "" && !strings.Contains(stderr.String(), exp.StderrContains) {
				t.Errorf("stderr %q does not contain %q", stderr.String(), exp.StderrContains)
			}
			if exp.StderrCode != "" {
				checkStderrCode(t, stderr.String(), exp.StderrCode)
			}
		})
	}
}

// checkStderrCode decodes the JSON diagnostics on the first stderr line and
// compares the code of the first one.
func checkStderrCode(t *testing.T, stderr, want string) {
	t.Helper()
	line, _, _ := strings.Cut(stderr, "\n")
	var diags []diagnostics.Diagnostic
	if err := json.Unmarshal([]byte(line), &diags); err != nil {
		t.Fatalf("stderr is not a JSON diagnostic list: %v\n%s", err, stderr)
	}
	if len(diags) == 0 {
		t.Fatalf("no diagnostics on stderr")
	}
	if diags[0].Code != want {
		t.Errorf("diagnostic code: got %s, want %s (%s)", diags[0].Code, want, diags[0].Message)
	}
}
