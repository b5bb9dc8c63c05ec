package shared

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const runLogLayout = "2006-01-02_15-04-05"

// RunLogPath returns the console mirror path for a run started at t.
func RunLogPath(dir string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("log_%s.txt", t.Format(runLogLayout)))
}

// OpenRunLog creates the directory and the timestamped console mirror file for a run.
//
// Callers treat an error as non-fatal and keep logging to the terminal only.
func OpenRunLog(dir string, t time.Time) (*os.File, error) {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.Create(RunLogPath(dir, t))
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	return f, nil
}
