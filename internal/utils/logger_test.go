package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitLogger(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	require.NoError(t, InitLogger("release"))
	assert.False(t, Logger.Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, InitLogger("debug"))
	assert.True(t, Logger.Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, SetLevel("warn"))
	assert.False(t, Logger.Core().Enabled(zapcore.InfoLevel))

	assert.Error(t, SetLevel("loud"))
}
