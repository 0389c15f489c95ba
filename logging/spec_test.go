package logging_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frobware/go-offload/logging"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		component string
		want      logging.Level
	}{
		{"empty spec defaults to info", "", "manager", logging.LevelInfo},
		{"bare level sets default", "debug", "manager", logging.LevelDebug},
		{"component override", "info,topology=trace", "topology", logging.LevelTrace},
		{"unnamed component uses default", "warn,topology=debug", "journal", logging.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := logging.ParseSpec(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, spec.LevelFor(tt.component))
		})
	}
}

func TestParseSpecRejectsUnknownLevel(t *testing.T) {
	_, err := logging.ParseSpec("verbose")
	require.Error(t, err)

	_, err = logging.ParseSpec("info,topology=loud")
	require.Error(t, err)
}

func TestFilteringByComponent(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{
		Spec:   "error,chatty=debug",
		Format: logging.FormatText,
		Output: &buf,
	})
	require.NoError(t, err)

	quiet := logger.With("component", "quiet")
	chatty := logger.With("component", "chatty")

	quiet.Info("suppressed")
	chatty.Debug("emitted")

	out := buf.String()
	assert.NotContains(t, out, "suppressed")
	assert.Contains(t, out, "emitted")
}

func TestParseFormat(t *testing.T) {
	format, err := logging.ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, logging.FormatJSON, format)

	format, err = logging.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, logging.FormatText, format)

	_, err = logging.ParseFormat("yaml")
	require.Error(t, err)
}

func TestLevelRoundTrip(t *testing.T) {
	for _, level := range []logging.Level{
		logging.LevelTrace,
		logging.LevelDebug,
		logging.LevelInfo,
		logging.LevelWarn,
		logging.LevelError,
	} {
		parsed, err := logging.ParseLevel(level.String())
		require.NoError(t, err)
		assert.Equal(t, level, parsed)
	}
}

func TestTraceBelowSlogDebug(t *testing.T) {
	assert.Less(t, logging.LevelTrace.ToSlog(), slog.LevelDebug)
}
