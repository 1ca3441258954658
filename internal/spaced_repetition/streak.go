package spaced_repetition

import (
	"sort"
	"time"
)

// Streak counts consecutive study days walking backwards from today.
// days must be distinct calendar days, most recent first. The run may start
// yesterday so that a streak is not lost before today's session.
func Streak(days []time.Time, today time.Time) int {
	expected := startOfDay(today, today.Location())

	// Ignore anything dated after today
	for len(days) > 0 && startOfDay(days[0], today.Location()).After(expected) {
		days = days[1:]
	}
	if len(days) == 0 {
		return 0
	}

	if startOfDay(days[0], today.Location()).Before(expected) {
		expected = expected.AddDate(0, 0, -1)
	}

	streak := 0
	for _, d := range days {
		if !startOfDay(d, today.Location()).Equal(expected) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}

	return streak
}

// DistinctDays collapses timestamps into distinct calendar days in loc,
// most recent first.
func DistinctDays(times []time.Time, loc *time.Location) []time.Time {
	seen := make(map[time.Time]struct{}, len(times))
	days := make([]time.Time, 0, len(times))
	for _, t := range times {
		day := startOfDay(t, loc)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].After(days[j])
	})

	return days
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
