package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "wiggles.log")

	for _, msg := range []string{"first", "second"} {
		logger, closer, err := Open(Options{Level: slog.LevelInfo, File: path})
		require.NoError(t, err)
		logger.Debug("hidden")
		logger.Info(msg, "game", "balloon-pop")
		require.NoError(t, closer.Close())
	}

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, "msg=first game=balloon-pop")
	assert.Contains(t, out, "msg=second")
	assert.NotContains(t, out, "hidden")
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, _, err := Open(Options{})
	assert.Error(t, err)
}

func TestStderrSink(t *testing.T) {
	logger, closer, err := Open(Options{File: "-"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.NoError(t, closer.Close())
}
