package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// parseClock converts an "HH:MM" string to minutes since midnight.
func parseClock(raw string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid time %q: bad hour", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time %q: bad minute", raw)
	}
	return hour*60 + minute, nil
}

// formatClock renders minutes since midnight as "HH:MM", wrapping past 24h.
func formatClock(minutes int) string {
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// hourInWindow reports whether an hour of day falls inside [startHour,
// endHour). A start after the end denotes a window crossing midnight, so
// for 22-6 both 23 and 2 test true.
func hourInWindow(hour, startHour, endHour int) bool {
	if startHour == endHour {
		return false
	}
	if startHour < endHour {
		return hour >= startHour && hour < endHour
	}
	return hour >= startHour || hour < endHour
}

// weekdayIndex maps a date to 0=Monday through 6=Sunday.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// weekKey buckets a date by ISO week, e.g. "2024-W02". Weekly hour caps
// reset at these boundaries.
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// dateKey renders a date the way special-day overrides are keyed.
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
