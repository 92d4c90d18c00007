package reports

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	now := time.Date(2026, 10, 19, 8, 30, 5, 0, time.UTC)

	path, err := WriteJSON(dir, map[string]float64{"total": 10.5}, "payouts", now)
	if err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	want := filepath.Join(dir, "payouts-20261019-083005.json")
	if path != want {
		t.Errorf("path = %s, want %s", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var got map[string]float64
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	if got["total"] != 10.5 {
		t.Errorf("total = %v, want 10.5", got["total"])
	}
}

func TestWriteJSONDefaultPrefix(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteJSON(dir, struct{}{}, "", time.Unix(0, 0))
	if err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if filepath.Base(path) != "report-19700101-000000.json" {
		t.Errorf("unexpected file name %s", filepath.Base(path))
	}
}

func TestFileNameUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	startedAt := time.Date(2026, 10, 19, 10, 0, 0, 0, loc)

	if got, want := FileName("payouts", startedAt), "payouts-20261019-080000.json"; got != want {
		t.Errorf("FileName() = %s, want %s", got, want)
	}
}

func TestWriteJSONOverwritesSameStamp(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

	if _, err := WriteJSON(dir, map[string]string{"run": "first-and-longer"}, "payouts", now); err != nil {
		t.Fatalf("first WriteJSON() error = %v", err)
	}
	path, err := WriteJSON(dir, map[string]string{"run": "second"}, "payouts", now)
	if err != nil {
		t.Fatalf("second WriteJSON() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("report is not JSON after rewrite: %v", err)
	}
	if got["run"] != "second" {
		t.Errorf("run = %q, want second", got["run"])
	}
}
