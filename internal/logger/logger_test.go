package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.Disabled, ParseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("bogus"))
}

func TestNewJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Out: &buf})

	l.Info().Msg("hidden")
	l.Warn().Str("key", "k").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "k", entry["key"])
}

func TestNewPretty(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "info", Pretty: true, Out: &buf})
	l.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, strings.HasPrefix(buf.String(), "{"))
}

func TestOpenFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, f, err := OpenFile(dir, "tui.log", "debug")
	require.NoError(t, err)
	l.Debug().Msg("written")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(filepath.Join(dir, "tui.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "written")
}
