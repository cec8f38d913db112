package support

import (
	"fmt"
	"os"
	"time"
)

// TestContext holds the state for integration tests.
type TestContext struct {
	// Command execution state
	LastArgs     []string
	LastOutput   string
	LastError    error
	LastDuration time.Duration

	// Parsed accuracy report from JSON runs
	LastReport map[string]any

	// Test environment
	TempDir string

	// Test artifacts
	CreatedFiles []string
}

// NewTestContext creates a new test context.
func NewTestContext() (*TestContext, error) {
	tempDir, err := os.MkdirTemp("", "qalam-integration-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &TestContext{TempDir: tempDir}, nil
}

// Cleanup removes all test artifacts.
func (testCtx *TestContext) Cleanup() error {
	for _, f := range testCtx.CreatedFiles {
		_ = os.Remove(f)
	}
	if testCtx.TempDir != "" {
		return os.RemoveAll(testCtx.TempDir)
	}
	return nil
}
