//go:build blackbox

package main

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

func contains(s, sub string) bool { return strings.Contains(s, sub) }

// writeTradesCSV writes n outcomes one minute apart for strategy.
func writeTradesCSV(t *testing.T, path, strategy string, n int, profitFn func(i int) float64) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	_, _ = f.WriteString("time,strategy,base_size,profit\n")
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	for i := 0; i < n; i++ {
		ts := start.Add(time.Minute * time.Duration(i)).Format(time.RFC3339)
		_, _ = fmt.Fprintf(f, "%s,%s,,%.2f\n", ts, strategy, profitFn(i))
	}
}

func writeConfig(t *testing.T, dir, dbPath string) string {
	t.Helper()
	path := dir + "/riskgate.yaml"
	run(t, "config", "init", "-o", path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data = []byte(strings.Replace(string(data), "./riskgate.sqlite", dbPath, 1))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
