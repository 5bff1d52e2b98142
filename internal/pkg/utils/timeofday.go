package utils

import (
	"fmt"
	"math"
	"time"
)

// MinutesPerDay is the number of minutes in a reporting day.
const MinutesPerDay = 24 * 60

// ParseClock converts a time of day ("HH:MM" or "HH:MM:SS") into minutes since midnight.
// Seconds are dropped.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		t, err = time.Parse("15:04:05", s)
		if err != nil {
			return 0, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
		}
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatClockPtr is FormatClock for optional values.
func FormatClockPtr(minutes *int) *string {
	if minutes == nil {
		return nil
	}
	s := FormatClock(*minutes)
	return &s
}

// MeanClock averages a set of minutes-of-day values, rounding half up.
// Returns 0 (midnight) for an empty set.
func MeanClock(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return int(math.Floor(float64(sum)/float64(len(values)) + 0.5))
}
