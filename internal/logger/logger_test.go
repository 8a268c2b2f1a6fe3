package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	previous := log
	log = zap.New(core)
	t.Cleanup(func() { log = previous })
	return logs
}

func TestInitialize_Levels(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		enabled zapcore.Level
		dropped zapcore.Level
	}{
		{name: "default", cfg: Config{}, enabled: zapcore.InfoLevel, dropped: zapcore.DebugLevel},
		{name: "debug", cfg: Config{Debug: true}, enabled: zapcore.DebugLevel, dropped: zapcore.InvalidLevel},
		{name: "quiet", cfg: Config{Quiet: true}, enabled: zapcore.WarnLevel, dropped: zapcore.InfoLevel},
		{name: "debug wins over quiet", cfg: Config{Debug: true, Quiet: true}, enabled: zapcore.DebugLevel, dropped: zapcore.InvalidLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, Initialize(tt.cfg))
			assert.True(t, Default().Core().Enabled(tt.enabled))
			if tt.dropped != zapcore.InvalidLevel {
				assert.False(t, Default().Core().Enabled(tt.dropped))
			}
		})
	}
}

func TestInitialize_InvalidSentryDSN(t *testing.T) {
	err := Initialize(Config{SentryDSN: "not a dsn"})
	assert.Error(t, err)
}

func TestWithFields(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	ctx := WithFields(context.Background(), zap.Int64("coin_id", 4))
	ctx = WithFields(ctx, zap.String("side", "buy"))
	ctx = WithFields(ctx)

	InfoCtx(ctx, "Sent buy tx", zap.String("tx_hash", "0x01"))
	Info("no context fields")

	entries := logs.All()
	require.Len(t, entries, 2)

	fields := entries[0].ContextMap()
	assert.Equal(t, int64(4), fields["coin_id"])
	assert.Equal(t, "buy", fields["side"])
	assert.Equal(t, "0x01", fields["tx_hash"])

	assert.NotContains(t, entries[1].ContextMap(), "coin_id")
}

func TestWithFields_DoesNotLeakIntoParent(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	parent := WithFields(context.Background(), zap.Int64("coin_id", 4))
	_ = WithFields(parent, zap.String("side", "sell"))

	WarnCtx(parent, "parent")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].ContextMap(), "side")
}

func TestError_NilError(t *testing.T) {
	logs := observe(t, zapcore.DebugLevel)

	Error(nil)
	ErrorCtx(context.Background(), errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "error occurred", entries[0].Message)
	assert.Equal(t, "boom", entries[1].Message)
}
