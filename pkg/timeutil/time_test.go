package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNow_AlwaysUTC(t *testing.T) {
	assert.Equal(t, time.UTC, Now().Location())
}

func TestFormatISO8601(t *testing.T) {
	bogota := time.FixedZone("COT", -5*60*60)

	tests := []struct {
		name  string
		input time.Time
		want  string
	}{
		{
			name:  "utc",
			input: time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC),
			want:  "2023-12-31T23:59:59Z",
		},
		{
			name:  "converted from local zone",
			input: time.Date(2023, 12, 31, 18, 59, 59, 0, bogota),
			want:  "2023-12-31T23:59:59Z",
		},
		{
			name:  "sub-second precision dropped",
			input: time.Date(2024, 1, 2, 3, 4, 5, 999_000_000, time.UTC),
			want:  "2024-01-02T03:04:05Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatISO8601(tt.input))
		})
	}
}

func TestParseISO8601(t *testing.T) {
	got, err := ParseISO8601("2023-12-31T18:59:59-05:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC), got)

	_, err = ParseISO8601("31/12/2023")
	assert.Error(t, err)
}

func TestFromUnix(t *testing.T) {
	assert.Equal(t, time.Date(2018, 6, 29, 16, 56, 51, 0, time.UTC), FromUnix(1530291411))
}
