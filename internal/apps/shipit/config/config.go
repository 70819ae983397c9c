package hostappconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ensureFile ensures that the parent folder exists and the file exists.
// If the file already exists, it does nothing.
func ensureFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create/open file: %w", err)
	}
	defer f.Close()

	return nil
}

func ConfigBasePath() string {
	homedir, err := os.UserHomeDir()
	if err != nil {
		homedir = "/usr/local/config/shipit"
	}

	return filepath.Join(homedir, ".config", "shipit")
}

func StateDBFile() string {
	return filepath.Join(ConfigBasePath(), "state.db")
}

func logsPath() string {
	return filepath.Join(ConfigBasePath(), "logs")
}

func RunLogPath(runID string) (string, error) {
	p := filepath.Join(logsPath(), "run-"+runID+".log")
	if err := ensureFile(p); err != nil {
		return "", fmt.Errorf("run log %s: %w", p, err)
	}
	return p, nil
}

func RunLogPathOpen(runID string) (*os.File, error) {
	p, err := RunLogPath(runID)
	if err != nil {
		return nil, err
	}
	return os.OpenFile(p, os.O_CREATE|os.O_RDWR, 0o644)
}

// PruneRunLogs deletes the oldest run logs, keeping at most keep files.
// Run IDs are unix timestamps so lexical order is chronological order.
func PruneRunLogs(keep int) error {
	entries, err := os.ReadDir(logsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to list run logs: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), "run-") && strings.HasSuffix(e.Name(), ".log") {
			names = append(names, e.Name())
		}
	}
	if len(names) <= keep {
		return nil
	}

	sort.Strings(names)
	for _, name := range names[:len(names)-keep] {
		if err := os.Remove(filepath.Join(logsPath(), name)); err != nil {
			return fmt.Errorf("failed to prune run log %s: %w", name, err)
		}
	}
	return nil
}
