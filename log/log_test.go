package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevelFor(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, LevelFor(true))
	assert.Equal(t, zapcore.InfoLevel, LevelFor(false))
}

func TestSetupWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobcrawler.log")
	logger, closer := Setup(false, path)
	logger.Debug("hidden")
	logger.Info("run started")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"run started"`)
	assert.Contains(t, string(b), `"level":"INFO"`)
	assert.NotContains(t, string(b), "hidden")
}

func TestSetupWithoutFile(t *testing.T) {
	logger, closer := Setup(true, "")
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.NoError(t, closer.Close())
}
