package variance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	cases := []struct {
		name      string
		expected  float64
		actual    float64
		threshold float64
		wantPct   float64
		wantAlert bool
	}{
		{"under worked", 8, 7.2, 5, -10, true},
		{"exact", 8, 8, 5, 0, false},
		{"over worked", 8, 10, 5, 25, true},
		{"at threshold", 8, 8.4, 5, 5, true},
		{"just below threshold", 8, 8.3, 5, 3.75, false},
		{"nothing worked", 8, 0, 5, -100, true},
		{"zero threshold", 7.5, 7.5, 0, 0, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Compute(c.expected, c.actual, c.threshold)
			require.NoError(t, err)
			assert.Equal(t, c.wantPct, got.VariancePercentage)
			assert.Equal(t, c.wantAlert, got.ExceedsThreshold)
			assert.Equal(t, c.threshold, got.ThresholdUsed)
		})
	}
}

func TestCompute_ThresholdUsesUnroundedRatio(t *testing.T) {
	// 0.39964h over 8h is 4.9955%, reported as 5 but still under a 5% threshold.
	got, err := Compute(8, 8.39964, 5)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.VariancePercentage)
	assert.False(t, got.ExceedsThreshold)

	got, err = Compute(8, 7.60036, 5)
	require.NoError(t, err)
	assert.Equal(t, -5.0, got.VariancePercentage)
	assert.False(t, got.ExceedsThreshold)
}

func TestCompute_NoExpectedHours(t *testing.T) {
	_, err := Compute(0, 6, 5)
	assert.ErrorIs(t, err, ErrNoExpectedHours)

	_, err = Compute(-1, 6, 5)
	assert.ErrorIs(t, err, ErrNoExpectedHours)
}

func TestHoursBetween(t *testing.T) {
	assert.Equal(t, 8.0, HoursBetween(480))
	assert.Equal(t, 7.25, HoursBetween(435))
	assert.Equal(t, 0.33, HoursBetween(20))
}
