package logging

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitLogger(t *testing.T) {
	err := InitLogger()
	require.NoError(t, err)
	require.NotNil(t, Logger)
	assert.NotNil(t, Logger.logger)
}

func TestInitLogger_WithLogLevel(t *testing.T) {
	os.Setenv("LOG_LEVEL", "debug")
	defer os.Unsetenv("LOG_LEVEL")

	err := InitLogger()
	require.NoError(t, err)
	assert.True(t, Logger.Unwrap().Core().Enabled(zap.DebugLevel), "debug level should be enabled")
}

func TestInitLogger_WithInvalidLogLevel(t *testing.T) {
	os.Setenv("LOG_LEVEL", "shouting")
	defer os.Unsetenv("LOG_LEVEL")

	err := InitLogger()
	require.NoError(t, err)
	assert.False(t, Logger.Unwrap().Core().Enabled(zap.DebugLevel), "invalid level falls back to info")
}

func TestSafeLogger_NilInner(t *testing.T) {
	logger := &SafeLogger{logger: nil}

	logger.Info("test")
	logger.Warn("test")
	logger.Debug("test")
	logger.Error("test")
	assert.NoError(t, logger.Sync())
	assert.Equal(t, logger, logger.With(zap.String("key", "value")))
}

func TestSafeLogger_NilReceiver(t *testing.T) {
	var logger *SafeLogger

	logger.Info("test")
	logger.Error("test", zap.Int("count", 1))
	assert.Nil(t, logger.With(zap.String("key", "value")))
	assert.NotNil(t, logger.Unwrap(), "unwrap always yields a usable logger")
}

func TestSafeLogger_With(t *testing.T) {
	logger := NewSafeLogger(zap.NewNop())

	child := logger.With(zap.String("policy_id", "7")).With(zap.String("step", "cast"))

	require.NotNil(t, child)
	assert.NotNil(t, child.logger)
	child.Info("vote cast")
}

func TestSafeLogger_Unwrap(t *testing.T) {
	zapLogger := zap.NewNop()
	logger := NewSafeLogger(zapLogger)

	assert.Equal(t, zapLogger, logger.Unwrap())
}
