// Package testutil provides shared test helpers for LuzScript Go tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScenariosDir is the relative path from cmd/luz to the shared scenarios.
const ScenariosDir = "../../testdata/scenarios"

// Scenario represents a CLI scenario loaded from a scenario.yaml file.
type Scenario struct {
	Cmd    []string       `yaml:"cmd"`
	Stdin  string         `yaml:"stdin,omitempty"`
	Meta   *ScenarioMeta  `yaml:"meta,omitempty"`
	Expect ExpectedResult `yaml:"expect"`
}

// ScenarioMeta holds optional scenario metadata.
type ScenarioMeta struct {
	Description string   `yaml:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
}

// ExpectedResult describes the expected outcome of running a scenario.
// Nil pointers and empty strings are not checked.
type ExpectedResult struct {
	ExitCode       int     `yaml:"exitCode"`
	Stdout         *string `yaml:"stdout,omitempty"`
	StdoutContains string  `yaml:"stdoutContains,omitempty"`
	Stderr         *string `yaml:"stderr,omitempty"`
	StderrContains string  `yaml:"stderrContains,omitempty"`
	// StderrCode is the code of the first JSON diagnostic on stderr.
	StderrCode string `yaml:"stderrCode,omitempty"`
}

// LoadScenario loads a scenario from a directory containing scenario.yaml.
func LoadScenario(dir string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Join(dir, "scenario.yaml"))
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListScenarios returns all scenario directories under the given root.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			scenarioPath := filepath.Join(root, e.Name(), "scenario.yaml")
			if _, err := os.Stat(scenarioPath); err == nil {
				dirs = append(dirs, filepath.Join(root, e.Name()))
			}
		}
	}
	return dirs, nil
}

// ResolveArgs rewrites arguments naming files inside the scenario directory
// to paths usable from the test's working directory. Flags and other
// arguments are returned unchanged.
func ResolveArgs(scenarioDir string, cmd []string) []string {
	out := make([]string, len(cmd))
	for i, arg := range cmd {
		out[i] = arg
		if arg == "" || arg == "-" || strings.HasPrefix(arg, "-") {
			continue
		}
		path := filepath.Join(scenarioDir, arg)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			out[i] = path
		}
	}
	return out
}
