package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConsoleOutput(t *testing.T) {
	var buf bytes.Buffer

	log, err := New("info", "", &buf)
	require.NoError(t, err)
	defer log.Close()

	log.Info().Str("path", "a/up.sql").Msg("appending migration")
	log.Debug().Msg("hidden")

	out := buf.String()
	assert.Contains(t, out, "appending migration")
	assert.Contains(t, out, "a/up.sql")
	assert.NotContains(t, out, "hidden")
	assert.NotContains(t, out, "\x1b[", "non-terminal output must not be colored")
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer

	log, err := New("loud", "", &buf)
	require.NoError(t, err)

	log.Debug().Msg("debug line")
	log.Info().Msg("info line")

	assert.NotContains(t, buf.String(), "debug line")
	assert.Contains(t, buf.String(), "info line")
}

func TestNew_FileOutput(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "logs", "dbsetup.log")

	// two runs append to the same file
	var runIDs []string
	for i := 0; i < 2; i++ {
		log, err := New("debug", logFile, &bytes.Buffer{})
		require.NoError(t, err)
		runIDs = append(runIDs, log.RunID)
		log.Debug().Msg("run")
		require.NoError(t, log.Close())
	}

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	ids := make(map[string]bool)
	var last string
	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, "run", entry["message"])
		assert.Equal(t, "debug", entry["level"])
		id, _ := entry["run_id"].(string)
		require.NotEmpty(t, id)
		ids[id] = true
		last = id
	}
	assert.Equal(t, runIDs[1], last)
	assert.Len(t, ids, 2, "each run gets its own run_id")
}

func TestNop(t *testing.T) {
	log := Nop()
	log.Error().Msg("nothing")
	assert.NoError(t, log.Close())
}
