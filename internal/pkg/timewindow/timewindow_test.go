package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		input string
		want  Clock
		ok    bool
	}{
		{"00:00", 0, true},
		{"09:00", 540, true},
		{"17:30", 1050, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"9:00", 0, false},
		{"09-00", 0, false},
		{"ab:cd", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, err := ParseClock(c.input)
		if !c.ok {
			assert.ErrorIs(t, err, ErrInvalidClock, "input %q", c.input)
			continue
		}
		require.NoError(t, err, "input %q", c.input)
		assert.Equal(t, c.want, got, "input %q", c.input)
		assert.Equal(t, c.input, got.String())
	}
}

func TestIsWithinWindow_Inclusive(t *testing.T) {
	assert.True(t, IsWithinWindow("09:00", "09:00", "17:00"))
	assert.True(t, IsWithinWindow("17:00", "09:00", "17:00"))
	assert.True(t, IsWithinWindow("12:15", "09:00", "17:00"))
	assert.False(t, IsWithinWindow("08:59", "09:00", "17:00"))
	assert.False(t, IsWithinWindow("17:01", "09:00", "17:00"))
	assert.False(t, IsWithinWindow("18:00", "09:00", "17:00"))
}

func TestIsWithinWindow_Malformed(t *testing.T) {
	assert.False(t, IsWithinWindow("9:00", "09:00", "17:00"))
	assert.False(t, IsWithinWindow("10:00", "nine", "17:00"))
	assert.False(t, IsWithinWindow("10:00", "09:00", ""))
}

func TestIsWithinWindow_MatchesStringComparison(t *testing.T) {
	windows := [][2]string{{"09:00", "17:00"}, {"00:00", "23:59"}, {"06:30", "06:30"}}
	for _, w := range windows {
		for m := 0; m < minutesPerDay; m += 7 {
			current := Clock(m).String()
			want := w[0] <= current && current <= w[1]
			assert.Equal(t, want, IsWithinWindow(current, w[0], w[1]), "%s in %v", current, w)
		}
	}
}

func TestWindow_SpansMidnight(t *testing.T) {
	w, err := ParseWindow("22:00", "06:00")
	require.NoError(t, err)

	assert.True(t, w.SpansMidnight())
	assert.True(t, w.Contains(mustClock(t, "22:00")))
	assert.True(t, w.Contains(mustClock(t, "23:45")))
	assert.True(t, w.Contains(mustClock(t, "00:00")))
	assert.True(t, w.Contains(mustClock(t, "06:00")))
	assert.False(t, w.Contains(mustClock(t, "06:01")))
	assert.False(t, w.Contains(mustClock(t, "12:00")))
	assert.Equal(t, 8*time.Hour, w.Duration())
}

func TestWindow_ContainsWindow(t *testing.T) {
	day, _ := ParseWindow("08:00", "18:00")
	night, _ := ParseWindow("22:00", "06:00")

	inner, _ := ParseWindow("09:00", "17:00")
	assert.True(t, day.ContainsWindow(inner))

	early, _ := ParseWindow("07:00", "17:00")
	assert.False(t, day.ContainsWindow(early))

	reversed, _ := ParseWindow("17:00", "09:00")
	assert.False(t, day.ContainsWindow(reversed))

	shift, _ := ParseWindow("23:00", "05:00")
	assert.True(t, night.ContainsWindow(shift))

	late, _ := ParseWindow("23:00", "07:00")
	assert.False(t, night.ContainsWindow(late))
}

func TestClockOf(t *testing.T) {
	loc := time.FixedZone("EDT", -4*60*60)

	ts := time.Date(2025, 3, 10, 18, 5, 0, 0, time.UTC).In(loc)
	assert.Equal(t, "14:05", ClockOf(ts).String())
}

func mustClock(t *testing.T, s string) Clock {
	t.Helper()
	c, err := ParseClock(s)
	require.NoError(t, err)
	return c
}
