package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/YuminosukeSato/tourney/pkg/log"
)

const weatherPath = "../../dataset/testdata/weather.arff"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(log.ResetWarnings)
	var out bytes.Buffer
	err := newApp(&out, io.Discard).Run(append([]string{"tourney"}, args...))
	return out.String(), err
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tourney.yaml")
	if err := os.WriteFile(cfgPath, []byte("folds: 3\nmlp:\n  epochs: 20\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	chart := filepath.Join(dir, "acc.svg")

	out, err := run(t, "-c", cfgPath, "--log-level", "error", "run",
		"--parallel", "2", "--chart", chart,
		"--value", "overcast", "--value", "83", "--value", "86", "--value", "FALSE",
		weatherPath)
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	for _, want := range []string{
		"Rows: 14", "Class Attribute: play", "TOURNAMENT RESULTS", "WINNER: ",
		"=== Confusion Matrix ===", "<-- classified as", "= yes", "= no",
		"=== Detailed Accuracy By Class ===", "PRECISION", "MACRO AVG.",
		"Predicted Class: ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if _, err := os.Stat(chart); err != nil {
		t.Errorf("chart not written: %v", err)
	}
}

func TestAttributes(t *testing.T) {
	out, err := run(t, "--log-level", "error", "attributes", weatherPath)
	if err != nil {
		t.Fatalf("attributes failed: %v", err)
	}
	want := "outlook\tnominal {sunny, overcast, rainy}\ntemperature\tnumeric\nhumidity\tnumeric\nwindy\tnominal {TRUE, FALSE}\nclass: play\n"
	if out != want {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestErrors(t *testing.T) {
	if _, err := run(t, "--log-level", "error", "run"); err == nil {
		t.Error("expected an error without a dataset argument")
	}
	if _, err := run(t, "--log-level", "loud", "attributes", weatherPath); err == nil {
		t.Error("expected an error for an invalid log level")
	}
	if _, err := run(t, "--log-level", "error", "run", "--folds", "1", weatherPath); err == nil {
		t.Error("expected an error for a single fold")
	}
	if _, err := run(t, "--log-level", "error", "attributes", "missing.arff"); err == nil {
		t.Error("expected an error for a missing file")
	}
}
