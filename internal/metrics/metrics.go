// Package metrics holds the pure calculation and formatting functions that
// turn raw set data into training-load numbers and display strings. All
// functions are total: no errors, no panics on well-typed input. Validation
// of negative or non-finite values belongs to the input layer.
package metrics

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/claude/simplestrength/internal/models"
)

// Volume is the training-load proxy for a single set: weight × reps, with a
// missing weight or reps defaulting to 1 so bodyweight exercises still count
// their reps. A set tracking neither degrades to 1 — degenerate but not an
// error; VolumeKnown lets callers detect that case explicitly.
func Volume(s models.Set) float64 {
	weight := 1.0
	if s.Weight != nil {
		weight = *s.Weight
	}
	reps := 1
	if s.Reps != nil {
		reps = *s.Reps
	}
	return weight * float64(reps)
}

// VolumeKnown reports whether a set carries at least one of the fields the
// volume formula is defined over.
func VolumeKnown(s models.Set) bool {
	return s.Weight != nil || s.Reps != nil
}

// OneRepMax estimates the one-rep max from a weight/reps pair using the
// Epley formula, rounded half-up to the nearest integer. A single rep needs
// no extrapolation and returns the weight unchanged.
func OneRepMax(weight float64, reps int) float64 {
	if reps == 1 {
		return weight
	}
	return math.Floor(weight*(1+float64(reps)/30) + 0.5)
}

// FormatTime renders seconds as zero-padded MM:SS. The minutes component is
// not wrapped at 60: 3661 seconds renders as "61:01".
func FormatTime(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatDistance renders meters below 1000 as "{m} m" and everything from
// 1000 up as kilometers with one decimal.
func FormatDistance(meters float64) string {
	if meters >= 1000 {
		return fmt.Sprintf("%.1f km", meters/1000)
	}
	return formatNumber(meters) + " m"
}

// FormatWeight renders a weight as "{weight} kg" in its natural string form.
func FormatWeight(weight float64) string {
	return formatNumber(weight) + " kg"
}

// WorkoutDuration is the elapsed whole seconds between start and end, or 0
// while the workout has no end time.
func WorkoutDuration(start time.Time, end *time.Time) int {
	if end == nil {
		return 0
	}
	return int(end.Sub(start) / time.Second)
}

// FormatSet builds the display string for a set: the present components in
// fixed order weight, reps, time, distance, joined by " × ". A value of
// exactly zero counts as absent, matching the product's original behavior.
func FormatSet(s models.Set) string {
	var parts []string
	if s.Weight != nil && *s.Weight != 0 {
		parts = append(parts, FormatWeight(*s.Weight))
	}
	if s.Reps != nil && *s.Reps != 0 {
		parts = append(parts, strconv.Itoa(*s.Reps)+" Wdh")
	}
	if s.Time != nil && *s.Time != 0 {
		parts = append(parts, FormatTime(*s.Time))
	}
	if s.Distance != nil && *s.Distance != 0 {
		parts = append(parts, FormatDistance(*s.Distance))
	}
	return strings.Join(parts, " × ")
}

// IsNewRecord reports whether current beats the previous record. No previous
// record (or a zero one) always yields true; equal values never do.
func IsNewRecord(current float64, previous *float64) bool {
	return previous == nil || *previous == 0 || current > *previous
}

// formatNumber renders a float in its shortest exact decimal form, so whole
// numbers display without a trailing ".0".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
