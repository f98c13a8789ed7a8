// Package history derives progress series and personal records from a
// user's completed workouts. Everything here is a pure full scan over the
// input collection; there is no shared intermediate state, so each record
// category is computed independently.
package history

import (
	"fmt"
	"sort"
	"time"

	"github.com/claude/simplestrength/internal/metrics"
	"github.com/claude/simplestrength/internal/models"
)

// ProgressPoint is one completed workout's contribution to an exercise's
// trend chart.
type ProgressPoint struct {
	Date      time.Time `json:"date"`
	Volume    float64   `json:"volume"`
	OneRepMax float64   `json:"one_rep_max"`
}

// BuildProgress turns completed workouts into a date-ascending series of
// volume and best-1RM points for one exercise. A workout contributes a
// point only when it produced a positive volume or 1RM for the exercise.
// Ascending date order is a correctness requirement for charting.
func BuildProgress(workouts []models.WorkoutWithSets, ex models.Exercise) []ProgressPoint {
	var series []ProgressPoint

	for _, w := range workouts {
		volume, orm := workoutTotals(w, ex)
		if volume > 0 || orm > 0 {
			series = append(series, ProgressPoint{
				Date:      pointDate(w.Workout),
				Volume:    volume,
				OneRepMax: orm,
			})
		}
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	return series
}

// Records computes the personal records for one exercise across all
// completed workouts. Categories with no qualifying data are simply absent.
// Ties keep the first value encountered in iteration order; only a strictly
// greater value replaces the current best.
func Records(workouts []models.WorkoutWithSets, ex models.Exercise) []models.PersonalRecord {
	var records []models.PersonalRecord

	if ex.Tracking.Weight {
		if r, ok := heaviestWeight(workouts, ex); ok {
			records = append(records, r)
		}
		if r, ok := best1RM(workouts, ex); ok {
			records = append(records, r)
		}
	}
	if ex.Tracking.Reps {
		if r, ok := mostReps(workouts, ex); ok {
			records = append(records, r)
		}
	}
	if r, ok := highestVolume(workouts, ex); ok {
		records = append(records, r)
	}

	return records
}

func heaviestWeight(workouts []models.WorkoutWithSets, ex models.Exercise) (models.PersonalRecord, bool) {
	var best models.PersonalRecord
	for _, w := range workouts {
		for _, set := range matchingSets(w, ex) {
			weight, ok := weightOf(set)
			if !ok || weight <= best.Value {
				continue
			}
			reps := 0
			if r, ok := repsOf(set); ok {
				reps = r
			}
			best = models.PersonalRecord{
				Kind:    models.RecordHeaviestWeight,
				Value:   weight,
				Date:    pointDate(w.Workout),
				Details: fmt.Sprintf("%d reps", reps),
			}
		}
	}
	return best, best.Value > 0
}

// best1RM is an independent maximum from heaviestWeight: the set that
// maximizes the Epley estimate need not be the heaviest-weight set.
func best1RM(workouts []models.WorkoutWithSets, ex models.Exercise) (models.PersonalRecord, bool) {
	var best models.PersonalRecord
	for _, w := range workouts {
		for _, set := range matchingSets(w, ex) {
			weight, wok := weightOf(set)
			reps, rok := repsOf(set)
			if !wok || !rok {
				continue
			}
			orm := metrics.OneRepMax(weight, reps)
			if orm > best.Value {
				best = models.PersonalRecord{
					Kind:  models.RecordBest1RM,
					Value: orm,
					Date:  pointDate(w.Workout),
				}
			}
		}
	}
	return best, best.Value > 0
}

func mostReps(workouts []models.WorkoutWithSets, ex models.Exercise) (models.PersonalRecord, bool) {
	var best models.PersonalRecord
	for _, w := range workouts {
		for _, set := range matchingSets(w, ex) {
			reps, ok := repsOf(set)
			if !ok || float64(reps) <= best.Value {
				continue
			}
			details := ""
			if weight, ok := weightOf(set); ok {
				details = metrics.FormatWeight(weight)
			}
			best = models.PersonalRecord{
				Kind:    models.RecordMostReps,
				Value:   float64(reps),
				Date:    pointDate(w.Workout),
				Details: details,
			}
		}
	}
	return best, best.Value > 0
}

// highestVolume is a workout-level aggregate: the same exercise-aware
// volume rule as the progress series, maximized across workouts.
func highestVolume(workouts []models.WorkoutWithSets, ex models.Exercise) (models.PersonalRecord, bool) {
	var best models.PersonalRecord
	for _, w := range workouts {
		volume, _ := workoutTotals(w, ex)
		if volume > best.Value {
			best = models.PersonalRecord{
				Kind:  models.RecordHighestVolume,
				Value: volume,
				Date:  pointDate(w.Workout),
			}
		}
	}
	return best, best.Value > 0
}

// workoutTotals sums volume and tracks the best 1RM for one workout's sets
// of the given exercise. Volume counts weight×reps when both are present;
// when the exercise does not track weight at all, a rep-only set counts its
// raw reps instead — this exercise-aware override takes precedence over the
// generic per-set volume formula.
func workoutTotals(w models.WorkoutWithSets, ex models.Exercise) (volume, bestORM float64) {
	for _, set := range matchingSets(w, ex) {
		weight, wok := weightOf(set)
		reps, rok := repsOf(set)
		switch {
		case wok && rok:
			volume += weight * float64(reps)
			if orm := metrics.OneRepMax(weight, reps); orm > bestORM {
				bestORM = orm
			}
		case rok && !ex.Tracking.Weight:
			volume += float64(reps)
		}
	}
	return volume, bestORM
}

func matchingSets(w models.WorkoutWithSets, ex models.Exercise) []models.Set {
	var out []models.Set
	for _, set := range w.Sets {
		if set.ExerciseID.Equal(ex.ID) {
			out = append(out, set)
		}
	}
	return out
}

// pointDate keys a workout by its end time, falling back to the start time
// for workouts recorded without one.
func pointDate(w models.Workout) time.Time {
	if w.EndTime != nil {
		return *w.EndTime
	}
	return w.StartTime
}

// weightOf and repsOf treat both nil and zero as absent, matching the
// truthiness semantics the record and volume rules were defined with.
func weightOf(s models.Set) (float64, bool) {
	if s.Weight == nil || *s.Weight == 0 {
		return 0, false
	}
	return *s.Weight, true
}

func repsOf(s models.Set) (int, bool) {
	if s.Reps == nil || *s.Reps == 0 {
		return 0, false
	}
	return *s.Reps, true
}
