package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseISODuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"PT30M", 30 * time.Minute},
		{"P1D", 24 * time.Hour},
		{"P1DT12H", 36 * time.Hour},
		{"PT1H30M", 90 * time.Minute},
		{"P1W", 7 * 24 * time.Hour},
		{"PT45S", 45 * time.Second},
	}
	for _, tc := range cases {
		got, err := ParseISODuration(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseISODuration_Invalid(t *testing.T) {
	for _, in := range []string{"", "1D", "PX", "P1X", "P0D"} {
		_, err := ParseISODuration(in)
		assert.Error(t, err, in)
	}
}
