package variance

import (
	"errors"
	"math"
)

// DefaultThresholdPercent applies when a site has no variance threshold configured.
const DefaultThresholdPercent = 5.0

// ErrNoExpectedHours is returned when there are no expected hours to compare against.
var ErrNoExpectedHours = errors.New("expected hours must be greater than zero")

// Result describes how far actual hours deviate from expected hours.
type Result struct {
	ExpectedHours      float64 `json:"expected_hours"`
	ActualHours        float64 `json:"actual_hours"`
	VariancePercentage float64 `json:"variance_percentage"`
	ThresholdUsed      float64 `json:"threshold_used"`
	ExceedsThreshold   bool    `json:"exceeds_threshold"`
}

// Compute returns the signed percentage deviation of actual from expected hours.
// Negative values mean under-worked. The threshold is compared against the exact
// ratio; the reported percentage is rounded to two decimals.
func Compute(expectedHours, actualHours, thresholdPercent float64) (Result, error) {
	if expectedHours <= 0 || math.IsNaN(expectedHours) {
		return Result{}, ErrNoExpectedHours
	}

	raw := (actualHours - expectedHours) / expectedHours * 100

	return Result{
		ExpectedHours:      expectedHours,
		ActualHours:        actualHours,
		VariancePercentage: roundTo(raw, 2),
		ThresholdUsed:      thresholdPercent,
		ExceedsThreshold:   math.Abs(raw) >= thresholdPercent,
	}, nil
}

// HoursBetween converts a duration in minutes to fractional hours, rounded to two decimals.
func HoursBetween(minutes float64) float64 {
	return roundTo(minutes/60, 2)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
