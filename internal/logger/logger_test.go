package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("creates logger with defaults", func(t *testing.T) {
		log, err := New(DefaultConfig())
		require.NoError(t, err)
		defer log.Close()

		assert.NotNil(t, log)
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		log, err := New(Config{Level: "nope", Console: true})
		require.NoError(t, err)
		defer log.Close()

		assert.Equal(t, "info", log.GetZerolog().GetLevel().String())
	})

	t.Run("writes to log file", func(t *testing.T) {
		tmpDir := t.TempDir()
		logFile := filepath.Join(tmpDir, "logs", "tanya.log")

		log, err := New(Config{Level: "info", File: logFile})
		require.NoError(t, err)

		zl := log.GetZerolog()
		zl.Info().Str("key", "value").Msg("test message")
		require.NoError(t, log.Close())

		data, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), "test message")
	})

	t.Run("redaction masks secrets in output", func(t *testing.T) {
		tmpDir := t.TempDir()
		logFile := filepath.Join(tmpDir, "tanya.log")

		log, err := New(Config{Level: "info", File: logFile, Redaction: true})
		require.NoError(t, err)

		zl := log.GetZerolog()
		zl.Info().Msg("key is sk-ant-REDACTED")
		require.NoError(t, log.Close())

		data, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), "[REDACTED]")
		assert.NotContains(t, string(data), "sk-ant-REDACTED")
	})
}
