package hostappconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunLogPathCreatesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p, err := RunLogPath("1700000001")
	if err != nil {
		t.Fatalf("RunLogPath: %v", err)
	}
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("run log file not created: %v", err)
	}
	if filepath.Base(p) != "run-1700000001.log" {
		t.Errorf("unexpected run log name %q", filepath.Base(p))
	}
}

func TestRunLogPathReportsCreateFailure(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	// occupy the logs path with a plain file so MkdirAll fails
	cfgDir := filepath.Join(home, ".config", "shipit")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "logs"), nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := RunLogPath("1700000001"); err == nil {
		t.Fatal("expected an error when the logs directory cannot be created")
	}
}

func TestPruneRunLogsKeepsNewest(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	for _, id := range []string{"1700000001", "1700000002", "1700000003"} {
		if _, err := RunLogPath(id); err != nil {
			t.Fatalf("RunLogPath(%s): %v", id, err)
		}
	}

	if err := PruneRunLogs(2); err != nil {
		t.Fatalf("PruneRunLogs: %v", err)
	}

	entries, err := os.ReadDir(logsPath())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 run logs left, got %d", len(entries))
	}
	if entries[0].Name() != "run-1700000002.log" {
		t.Errorf("oldest surviving log = %s, want run-1700000002.log", entries[0].Name())
	}
}
