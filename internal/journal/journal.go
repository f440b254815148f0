// Package journal persists the date of the last successfully completed
// sweep as a single plain-text file, so the catch-up coordinator can tell
// how many cycles were missed across restarts.
package journal

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const dateFormat = "2006-01-02"

type Journal struct {
	path string
}

func New(path string) *Journal {
	return &Journal{path: path}
}

// LastRun returns the recorded date of the last successful sweep, or nil
// when no run has ever been recorded. An unreadable or corrupt file
// surfaces an error; the catch-up coordinator logs it and falls back to
// yesterday, which at worst reprocesses one idempotent day.
func (j *Journal) LastRun() (*time.Time, error) {
	data, err := os.ReadFile(j.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	d, err := time.Parse(dateFormat, strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("parse journal date: %w", err)
	}
	return &d, nil
}

// Record writes the date of a completed sweep, replacing any prior value.
func (j *Journal) Record(date time.Time) error {
	if err := os.WriteFile(j.path, []byte(date.Format(dateFormat)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	return nil
}
