package history

import (
	"time"

	"github.com/claude/simplestrength/internal/models"
)

// Streak counts consecutive calendar days with at least one completed
// workout, ending today or yesterday. Days are local calendar days in loc
// at year-month-day granularity. A streak survives until a full day passes
// without training: no workout today or yesterday means 0.
func Streak(workouts []models.Workout, now time.Time, loc *time.Location) int {
	days := make(map[string]bool)
	for _, w := range workouts {
		if w.EndTime == nil {
			continue
		}
		days[dayKey(w.EndTime.In(loc))] = true
	}

	today := now.In(loc)
	yesterday := today.AddDate(0, 0, -1)

	var anchor time.Time
	switch {
	case days[dayKey(today)]:
		anchor = today
	case days[dayKey(yesterday)]:
		anchor = yesterday
	default:
		return 0
	}

	streak := 0
	for day := anchor; days[dayKey(day)]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// CompletedThisWeek counts completed workouts in the seven calendar days
// ending today, the home screen's weekly activity aggregate.
func CompletedThisWeek(workouts []models.Workout, now time.Time, loc *time.Location) int {
	today := now.In(loc)
	cutoff := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -6)

	count := 0
	for _, w := range workouts {
		if w.EndTime == nil {
			continue
		}
		end := w.EndTime.In(loc)
		if !end.Before(cutoff) && !end.After(now.In(loc)) {
			count++
		}
	}
	return count
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
