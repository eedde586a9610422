package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// writeConfig writes a config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".sitescope")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// runCLI executes the root command with an isolated config and env file.
func runCLI(t *testing.T, configContent string, args ...string) (string, string, error) {
	t.Helper()
	base := []string{
		"--config", writeConfig(t, configContent),
		"--env-file", filepath.Join(t.TempDir(), "missing.env"),
	}

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args[:1:1], append(base, args[1:]...)...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
