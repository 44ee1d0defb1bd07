package log_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/deevus/maintenance-tui/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitLog_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "console.log")

	logger, err := log.InitLog(log.ParseLevel("debug"), path)
	require.NoError(t, err)
	logger.Named("stream").Sugar().Infow("connected", "url", "ws://x/ws")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "info")
	assert.Contains(t, string(data), "stream")
	assert.Contains(t, string(data), "connected")
}

func TestInitLog_RespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")

	logger, err := log.InitLog(log.ParseLevel("warn"), path)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, log.ParseLevel("debug").Level())
	assert.Equal(t, zapcore.InfoLevel, log.ParseLevel("nonsense").Level())
	assert.Equal(t, zapcore.InfoLevel, log.ParseLevel("").Level())
}
