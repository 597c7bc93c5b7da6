package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("info"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestZapAdapter_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.With(map[string]interface{}{"taskType": "rank-vehicles"}).
		Info("processing job", map[string]interface{}{"jobKey": int64(42), "err": errors.New("boom")})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "processing job", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, "rank-vehicles", fields["taskType"])
	assert.Equal(t, int64(42), fields["jobKey"])
	assert.Equal(t, "boom", fields["err"])
}

func TestZapAdapter_WithError(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapAdapter(zap.New(core))

	log.WithError(errors.New("catalog unavailable")).Error("ranking failed", nil)
	log.Debug("dropped below level", nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "catalog unavailable", logs.All()[0].ContextMap()["error"])
}

func TestNoOpAndTestLoggers(t *testing.T) {
	NewNoOpLogger().Info("ignored", map[string]interface{}{"k": "v"})
	NewTestLogger(t).Warn("visible in -v output", nil)
	assert.NotNil(t, New("debug", "json"))
}
