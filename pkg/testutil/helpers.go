// Package testutil provides common utility functions for testing.
package testutil

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/iwvelando/emi-calculator/pkg/comparison"
)

// FindScenario finds a scenario by label in the results slice.
// Returns a pointer to the scenario if found, nil otherwise.
func FindScenario(results []comparison.ScenarioResult, label string) *comparison.ScenarioResult {
	for i := range results {
		if results[i].Label == label {
			return &results[i]
		}
	}
	return nil
}

// CaptureStdout runs fn and returns everything it wrote to os.Stdout.
func CaptureStdout(t *testing.T, fn func()) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.Bytes()
	}()

	fn()

	_ = w.Close()
	os.Stdout = oldStdout
	return string(<-done)
}
