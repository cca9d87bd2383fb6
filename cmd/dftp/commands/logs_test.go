package commands

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTimestamp(t *testing.T) {
	want := time.Date(2024, 1, 15, 10, 30, 45, 0, time.Local)

	tests := []struct {
		name string
		line string
		want time.Time
	}{
		{name: "text handler", line: "[2024-01-15 10:30:45] [INFO] Server listening address=127.0.0.1:2121", want: want},
		{name: "json handler", line: `{"time":"2024-01-15T10:30:45Z","level":"INFO","msg":"Server listening"}`, want: time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC)},
		{name: "no timestamp", line: "dittoftp - two-channel file transfer server", want: time.Time{}},
		{name: "short bracket", line: "[x]", want: time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(extractTimestamp(tt.line)), "got %v", extractTimestamp(tt.line))
		})
	}
}

func TestTailLines(t *testing.T) {
	log := strings.Join([]string{
		"[2024-01-15 10:00:00] [INFO] one",
		"[2024-01-15 10:00:01] [INFO] two",
		"banner without time",
		"[2024-01-15 10:00:03] [INFO] four",
		"[2024-01-15 10:00:04] [INFO] five",
	}, "\n")

	t.Run("last n", func(t *testing.T) {
		lines, err := tailLines(strings.NewReader(log), 2, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, []string{"[2024-01-15 10:00:03] [INFO] four", "[2024-01-15 10:00:04] [INFO] five"}, lines)
	})

	t.Run("more than available", func(t *testing.T) {
		lines, err := tailLines(strings.NewReader(log), 10, time.Time{})
		require.NoError(t, err)
		assert.Len(t, lines, 5)
		assert.Equal(t, "[2024-01-15 10:00:00] [INFO] one", lines[0])
	})

	t.Run("since", func(t *testing.T) {
		since := time.Date(2024, 1, 15, 10, 0, 3, 0, time.Local)
		lines, err := tailLines(strings.NewReader(log), 10, since)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"banner without time",
			"[2024-01-15 10:00:03] [INFO] four",
			"[2024-01-15 10:00:04] [INFO] five",
		}, lines)
	})

	t.Run("zero lines", func(t *testing.T) {
		lines, err := tailLines(strings.NewReader(log), 0, time.Time{})
		require.NoError(t, err)
		assert.Empty(t, lines)
	})
}
