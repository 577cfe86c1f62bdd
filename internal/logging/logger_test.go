package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ValidLevels(t *testing.T) {
	t.Parallel()

	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := New(level, "console")
		require.NoError(t, err, "level %s", level)
		require.NotNil(t, logger)
	}
}

func TestNew_Formats(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"console", "json", ""} {
		logger, err := New("info", format)
		require.NoError(t, err, "format %q", format)
		require.NotNil(t, logger)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	_, err := New("verbose", "console")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verbose")
}

func TestNew_InvalidFormat(t *testing.T) {
	t.Parallel()

	_, err := New("info", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestNop(t *testing.T) {
	t.Parallel()

	logger := Nop()
	require.NotNil(t, logger)
	logger.Info("discarded")
}
