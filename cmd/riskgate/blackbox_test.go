//go:build blackbox

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

var riskgateBin string

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "riskgate-blackbox-*")
	if err != nil {
		panic(err)
	}

	riskgateBin = filepath.Join(tmp, "riskgate")

	// Build the binary once for all tests.
	cmd := exec.Command("go", "build", "-o", riskgateBin, ".")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic(err)
	}

	code := m.Run()
	os.RemoveAll(tmp)
	os.Exit(code)
}

func run(t *testing.T, args ...string) string {
	t.Helper()

	cmd := exec.Command(riskgateBin, args...)
	cmd.Env = append(os.Environ(), "CAPITAL_USD=")
	out, err := cmd.CombinedOutput()
	if err != nil {
		// CombinedOutput merges stdout/stderr; still useful in failures.
		t.Fatalf("command failed: %v\nargs: %v\noutput:\n%s", err, args, string(out))
	}
	return string(out)
}
