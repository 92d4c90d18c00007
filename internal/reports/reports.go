// Package reports saves payout runs as JSON files named after the run's
// start time. A run started in the same second replaces the earlier file.
package reports

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	defaultDir    = "reports"
	defaultPrefix = "report"
	stampLayout   = "20060102-150405"
)

// FileName is "{prefix}-{UTC stamp}.json".
func FileName(prefix string, startedAt time.Time) string {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return prefix + "-" + startedAt.UTC().Format(stampLayout) + ".json"
}

// WriteJSON encodes data into dir/FileName(prefix, startedAt), creating dir
// when needed, and returns the file path.
func WriteJSON(dir string, data any, prefix string, startedAt time.Time) (path string, err error) {
	if dir == "" {
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}

	path = filepath.Join(dir, FileName(prefix, startedAt))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create report %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close report %s: %w", path, cerr)
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	return path, nil
}
