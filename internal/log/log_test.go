package log

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInit_BadLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "nexvault.log")
	if err := Init("info", false, path); err == nil {
		t.Error("Init() with an uncreatable log file should fail")
	}
}

func TestInit_LogFileCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nexvault.log")
	if err := Init("debug", true, path); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	Info().Msg("started")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file is empty after writing an entry")
	}
}
