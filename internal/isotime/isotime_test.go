package isotime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01T05", time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC)},
		{"2024-01-01T00:30", time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC)},
		{"2024-01-01T01:00:00", time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)},
		{"2024-01-01 01:00:00", time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)},
		{"2024-01-01T01:00:00.250", time.Date(2024, 1, 1, 1, 0, 0, 250e6, time.UTC)},
		{"2024-01-01T01:00:00Z", time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)},
		{"2024-01-01T03:00:00+02:00", time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)},
		{"2024-01-01T03:00:00+0200", time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)},
		{"2024-01-01T03:00+02:00", time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)},
		{"  2024-01-01T01:00:00  ", time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			require.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
			require.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "not-a-date", "2024-13-01", "2024-01-01T25:00", "01/02/2024", "2024-01-01T00:00:00 junk"} {
		_, err := Parse(in)
		require.Error(t, err, in)
	}
}

func TestFormat(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	require.Equal(t, "2024-01-01T05:00:00Z", Format(time.Date(2024, 1, 1, 0, 0, 0, 0, loc)))
	require.Equal(t, "2024-01-01T00:00:00.5Z", Format(time.Date(2024, 1, 1, 0, 0, 0, 5e8, time.UTC)))

	ts, err := Parse(Format(time.Date(2024, 3, 9, 12, 15, 0, 0, time.UTC)))
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 9, 12, 15, 0, 0, time.UTC), ts)
}
