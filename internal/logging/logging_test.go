package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLevels(t *testing.T) {
	quiet, err := New(false)
	require.NoError(t, err)
	assert.False(t, quiet.Desugar().Core().Enabled(zap.InfoLevel))
	assert.True(t, quiet.Desugar().Core().Enabled(zap.WarnLevel))

	verbose, err := New(true)
	require.NoError(t, err)
	assert.True(t, verbose.Desugar().Core().Enabled(zap.DebugLevel))
}

func TestQuiet(t *testing.T) {
	base, err := New(false)
	require.NoError(t, err)

	l := Quiet(base)
	assert.False(t, l.Desugar().Core().Enabled(zap.WarnLevel))
	assert.True(t, l.Desugar().Core().Enabled(zap.ErrorLevel))
	assert.True(t, base.Desugar().Core().Enabled(zap.WarnLevel))
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Infow("discarded", "key", "value")
	assert.False(t, l.Desugar().Core().Enabled(zap.ErrorLevel))
}
