package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaultsToInfoLevel(t *testing.T) {
	logger, err := New("", false)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("logger enabled for Debug, want disabled when verbose=false")
	}
	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("logger disabled for Info, want enabled")
	}
}

func TestNewVerboseEnablesDebug(t *testing.T) {
	logger, err := New("", true)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("logger disabled for Debug, want enabled when verbose=true")
	}
}

func TestNewWritesToLogFile(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "run.log")

	logger, err := New(logPath, false)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("converged", "rounds", 3)

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(data) == 0 {
		t.Error("log file is empty, want a record")
	}
}

func TestNewInvalidLogPathErrors(t *testing.T) {
	_, err := New("/nonexistent/dir/run.log", false)
	if err == nil {
		t.Error("New() error = nil, want error for unwritable path")
	}
}
