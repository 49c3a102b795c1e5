package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		log, err := New("debug", format)
		require.NoError(t, err, format)
		assert.True(t, log.Core().Enabled(zapcore.DebugLevel), format)
	}

	log, err := New("warn", "json")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("chatty", "json")
	assert.Error(t, err)
}
