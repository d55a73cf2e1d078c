package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"prod", "production", "development", ""} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		require.NotNil(t, l.SugaredLogger)
	}
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("component", "import").Warn("feature skipped", "index", 3)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "feature skipped", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "import", fields["component"])
	assert.EqualValues(t, 3, fields["index"])
}

func TestNopDoesNotPanic(t *testing.T) {
	l := Nop()
	l.Info("ignored", "k", "v")
	l.Sync()
}
