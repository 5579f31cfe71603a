package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"15/08/2023", "2023-08-15"},
		{"15-08-2023", "2023-08-15"},
		{"2023-08-15", "2023-08-15"},
		{" 01/02/2024 ", "2024-02-01"},
		{"31-13-2023", "2023-13-31"},
		{"1/2", "1/2"},
		{"garbage", "garbage"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDate(tt.input), "input %q", tt.input)
	}
}

func TestTimestamp(t *testing.T) {
	now := time.Date(2024, 3, 9, 8, 7, 6, 0, time.UTC)

	for _, d := range []string{"15/08/2023", "15-08-2023", "2023-08-15"} {
		assert.Equal(t, "2023-08-15 13:45:00", Timestamp(d, "13:45:00", now))
		assert.Equal(t, "2023-08-15 00:00:00", Timestamp(d, "", now))
		assert.Equal(t, "2023-08-15 09:30:00", Timestamp(d, "09:30", now))
	}

	assert.Equal(t, "2024-03-09 08:07:06", Timestamp("", "13:45:00", now), "blank date falls back to now")
	assert.Equal(t, "2024-03-09 08:07:06", Timestamp("  ", "", now))
}
