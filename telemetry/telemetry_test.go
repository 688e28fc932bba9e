package telemetry

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTelemetry_New(t *testing.T) {
	tel := New(nil, nil, Options{})
	defer tel.Stop()

	require.NotNil(t, tel.GetLogger())
	require.NotNil(t, tel.LogCapture)
	require.NotNil(t, tel.GetStatsCollector())
}

func TestTelemetry_LoggerWritesToCapture(t *testing.T) {
	var console bytes.Buffer
	tel := New(nil, nil, Options{Level: slog.LevelInfo, Console: &console, NoColor: true})
	defer tel.Stop()

	logger := tel.GetLogger()
	logger.Debug("hidden")
	logger.Info("note saved", "user", "alice")

	logs := tel.LogCapture.GetAllLogs()
	require.Len(t, logs, 1)
	require.Contains(t, logs[0].Message, "note saved")
	require.Contains(t, logs[0].Message, "user=alice")
	require.NotContains(t, logs[0].Message, "\x1b[")

	require.Contains(t, console.String(), "note saved")
	require.NotContains(t, console.String(), "hidden")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
