package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEntries(t *testing.T, path string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestNew_ProductionJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "app.log")

	l, err := New(Config{Service: "focus-auth", Env: "production", Level: "warn", Encoding: "json", OutputPath: out})
	require.NoError(t, err)

	l.Info("dropped")
	l.Warn("kept")
	require.NoError(t, l.Sync())

	entries := readEntries(t, out)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "focus-auth", entry["logger"])
	assert.Equal(t, "focus-auth", entry["service"])
	assert.Equal(t, "production", entry["env"])
	assert.Contains(t, entry, "timestamp")
	assert.NotContains(t, entry, "caller")
}

func TestNew_DevelopmentAddsCaller(t *testing.T) {
	out := filepath.Join(t.TempDir(), "app.log")

	l, err := New(Config{Service: "focus-auth", Env: "development", Level: "debug", OutputPath: out})
	require.NoError(t, err)

	l.Named("AuthService").Debug("visible")
	require.NoError(t, l.Sync())

	entries := readEntries(t, out)
	require.Len(t, entries, 1)
	assert.Equal(t, "focus-auth.AuthService", entries[0]["logger"])
	assert.Equal(t, "development", entries[0]["env"])
	assert.Contains(t, entries[0]["caller"], "logger_test.go")
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	l, err := New(Config{Level: "chatty", Encoding: "yaml"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1)) // debug
	assert.True(t, l.Core().Enabled(0))   // info
}
