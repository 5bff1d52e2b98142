package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		input string
		want  int
	}{
		{"00:00", 0},
		{"07:58", 7*60 + 58},
		{"17:05", 17*60 + 5},
		{"23:59", 23*60 + 59},
		{"08:22:41", 8*60 + 22},
	}
	for _, c := range cases {
		got, err := ParseClock(c.input)
		require.NoError(t, err, c.input)
		assert.Equal(t, c.want, got, c.input)
	}
}

func TestParseClock_Invalid(t *testing.T) {
	invalid := []string{"", "24:00", "12:60", "noon", "12-30", "1230"}
	for _, s := range invalid {
		_, err := ParseClock(s)
		assert.Error(t, err, "ParseClock(%q) should fail", s)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "07:58", FormatClock(7*60+58))
	assert.Equal(t, "17:05", FormatClock(17*60+5))

	assert.Nil(t, FormatClockPtr(nil))
	m := 8 * 60
	require.NotNil(t, FormatClockPtr(&m))
	assert.Equal(t, "08:00", *FormatClockPtr(&m))
}

func TestMeanClock(t *testing.T) {
	assert.Equal(t, 0, MeanClock(nil))
	assert.Equal(t, 480, MeanClock([]int{470, 490}))
	// 480.5 rounds up
	assert.Equal(t, 481, MeanClock([]int{480, 481}))
	assert.Equal(t, 480, MeanClock([]int{480, 480, 481}))
}
