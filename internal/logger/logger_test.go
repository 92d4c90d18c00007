package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Config{Level: "info"})

	log.Debug("hidden")
	log.Info("probe ok", slog.String("chain", "Development"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "probe ok", line["msg"])
	assert.Equal(t, "Development", line["chain"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewTextHandler(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Config{Level: "debug", HumanFriendly: true})

	log.Debug("fetching", slog.String("account", "abc"))

	assert.Contains(t, buf.String(), "msg=fetching")
	assert.Contains(t, buf.String(), "account=abc")
}
