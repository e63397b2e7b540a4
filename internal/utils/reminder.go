package utils

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/glowfit-dev/glowfit/internal/models"
)

// NextOccurrence computes the first reminder instant strictly after the
// given time. clock is "HH:MM" in the local zone; weekdays uses
// time.Weekday numbering (0 = Sunday) and only matters for WEEKLY;
// interval is in days and only matters for CUSTOM.
func NextOccurrence(frequency models.ReminderFrequency, interval int, clock string, weekdays []int, after time.Time) (time.Time, error) {
	var hour, minute int

	if _, err := fmt.Sscanf(clock, "%d:%d", &hour, &minute); err != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, errors.New("invalid reminder time, expected HH:MM")
	}

	candidate := time.Date(after.Year(), after.Month(), after.Day(), hour, minute, 0, 0, after.Location())

	switch frequency {
	case models.FrequencyDaily:
		if !candidate.After(after) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		return candidate, nil

	case models.FrequencyWeekly:
		if len(weekdays) == 0 {
			return time.Time{}, errors.New("weekly reminder requires weekdays")
		}
		allowed := make(map[int]bool, len(weekdays))
		for _, d := range weekdays {
			if d < 0 || d > 6 {
				return time.Time{}, errors.New("weekday out of range")
			}
			allowed[d] = true
		}
		for i := 0; i < 8; i++ {
			next := candidate.AddDate(0, 0, i)
			if allowed[int(next.Weekday())] && next.After(after) {
				return next, nil
			}
		}
		return time.Time{}, errors.New("no weekday matched")

	case models.FrequencyCustom:
		if interval < 1 {
			return time.Time{}, errors.New("custom reminder requires a positive interval")
		}
		for !candidate.After(after) {
			candidate = candidate.AddDate(0, 0, interval)
		}
		return candidate, nil

	default:
		return time.Time{}, errors.New("unknown reminder frequency")
	}
}

// NormalizeWeekdays deduplicates and sorts a weekday list.
func NormalizeWeekdays(weekdays []int) []int {
	seen := make(map[int]bool, len(weekdays))
	out := make([]int, 0, len(weekdays))

	for _, d := range weekdays {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}

	sort.Ints(out)
	return out
}
