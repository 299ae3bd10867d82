package hms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration(t *testing.T) {
	d, err := Duration(1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, time.Hour+2*time.Minute+3*time.Second, d)

	d, err = Duration(24, 59, 59)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour+59*time.Minute+59*time.Second, d)

	d, err = Duration(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), d)
}

func TestDuration_OutOfRange(t *testing.T) {
	tests := []struct {
		h, m, s int
	}{
		{25, 0, 0},
		{-1, 0, 0},
		{0, 60, 0},
		{0, -1, 0},
		{0, 0, 60},
		{0, 0, -5},
	}
	for _, tt := range tests {
		_, err := Duration(tt.h, tt.m, tt.s)
		assert.ErrorIs(t, err, ErrOutOfRange, "%d:%d:%d", tt.h, tt.m, tt.s)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "00:00:00", Format(0))
	assert.Equal(t, "00:00:00", Format(500*time.Millisecond))
	assert.Equal(t, "00:00:01", Format(1999*time.Millisecond))
	assert.Equal(t, "01:02:03", Format(time.Hour+2*time.Minute+3*time.Second))
	assert.Equal(t, "24:59:59", Format(24*time.Hour+59*time.Minute+59*time.Second))
	assert.Equal(t, "00:00:00", Format(-time.Minute))
}

func TestSplit(t *testing.T) {
	h, m, s := Split(3*time.Hour + 25*time.Minute + 7*time.Second)
	assert.Equal(t, 3, h)
	assert.Equal(t, 25, m)
	assert.Equal(t, 7, s)
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"90s", 90 * time.Second},
		{"1h2m3s", time.Hour + 2*time.Minute + 3*time.Second},
		{"45", 45 * time.Second},
		{"05:00", 5 * time.Minute},
		{"1:00:30", time.Hour + 30*time.Second},
		{" 10 ", 10 * time.Second},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "abc", "1:2:3:4", "00:75", "-5m", "1x", "25:00:00"} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
}
