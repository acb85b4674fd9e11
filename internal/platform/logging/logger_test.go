package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_WritesKeyValueFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core))

	logger.With("component", "week").Info("week calculated", "week", 3, "error", errors.New("boom"), "dangling")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "week", fields["component"])
	assert.EqualValues(t, 3, fields["week"])
	assert.Equal(t, "boom", fields["error"])
	assert.Contains(t, fields, "dangling")
}

func TestLogger_RespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := FromZap(zap.New(core))

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	assert.Equal(t, 1, logs.Len())
}

func TestLogger_NilReceiverFallsBack(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() {
		logger.Info("no receiver")
		_ = logger.Sync()
	})
}
