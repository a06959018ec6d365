package booking

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeOfDay is a wall-clock time within a day, counted in seconds from
// midnight. It carries no date or zone information.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS" values.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("booking: invalid time of day %q", value)
	}

	numbers := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("booking: invalid time of day %q", value)
		}
		numbers[i] = n
	}

	hour, minute, second := numbers[0], numbers[1], numbers[2]
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return 0, fmt.Errorf("booking: invalid time of day %q", value)
	}

	return TimeOfDay(hour*3600 + minute*60 + second), nil
}

// MustTimeOfDay parses a time of day and panics on failure. Intended for
// fixtures and literals.
func MustTimeOfDay(value string) TimeOfDay {
	tod, err := ParseTimeOfDay(value)
	if err != nil {
		panic(err)
	}
	return tod
}

// String renders the value as "HH:MM:SS".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(t)/3600, int(t)%3600/60, int(t)%60)
}
