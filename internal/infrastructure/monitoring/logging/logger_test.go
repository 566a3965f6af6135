package logging_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/logging"
)

func newObserved(level zapcore.Level) (logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return logging.NewLoggerFromCore(core), logs
}

func TestLogger_EmitsTypedFields(t *testing.T) {
	log, logs := newObserved(zapcore.DebugLevel)

	log.Info("collapsed patent group",
		logging.String("patent_number", "US1000"),
		logging.Int("raw_rows", 2),
		logging.Bool("derived", true),
		logging.Duration("elapsed", 5*time.Millisecond),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "collapsed patent group", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "US1000", fields["patent_number"])
	assert.Equal(t, int64(2), fields["raw_rows"])
	assert.Equal(t, true, fields["derived"])
}

func TestLogger_ErrField(t *testing.T) {
	log, logs := newObserved(zapcore.DebugLevel)

	log.Error("derivation failed", logging.Err(errors.New("boom")))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
}

func TestLogger_WithAddsPersistentFields(t *testing.T) {
	log, logs := newObserved(zapcore.DebugLevel)

	child := log.With(logging.String("component", "resolver"))
	child.Info("resolved client")
	child.Info("resolved jurisdiction")

	for _, e := range logs.All() {
		assert.Equal(t, "resolver", e.ContextMap()["component"])
	}
	require.Equal(t, 2, logs.Len())
}

func TestLogger_LevelFiltering(t *testing.T) {
	log, logs := newObserved(zapcore.WarnLevel)

	log.Debug("dropped")
	log.Info("dropped")
	log.Warn("kept")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}

func TestNewLogger_DefaultsApply(t *testing.T) {
	log, err := logging.NewLogger(logging.LogConfig{})
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestNopLogger_DiscardsEverything(t *testing.T) {
	log := logging.NewNopLogger()
	// Must not panic and With/Named must return usable loggers.
	log.With(logging.String("k", "v")).Named("x").Info("ignored")
}
