package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timeguard/timeguard-api/internal/domain/variance"
)

type fakeEntries struct {
	calls int
	n     int
	err   error
}

func (f *fakeEntries) InvalidateStale(context.Context) (int, error) {
	f.calls++
	return f.n, f.err
}

type fakeVariance struct {
	dates []time.Time
}

func (f *fakeVariance) GenerateForDate(_ context.Context, date time.Time) (variance.GenerateResponse, error) {
	f.dates = append(f.dates, date)
	return variance.GenerateResponse{Date: date.Format("2006-01-02")}, nil
}

func TestGenerateDailyVariance_OnlyAtRunHour(t *testing.T) {
	gen := &fakeVariance{}
	jobs := NewAttendanceJobs(&fakeEntries{}, gen, 2)

	jobs.now = func() time.Time { return time.Date(2026, 3, 10, 1, 59, 0, 0, time.UTC) }
	require.NoError(t, jobs.GenerateDailyVariance(context.Background()))
	assert.Empty(t, gen.dates)

	jobs.now = func() time.Time { return time.Date(2026, 3, 10, 2, 5, 0, 0, time.UTC) }
	require.NoError(t, jobs.GenerateDailyVariance(context.Background()))
	assert.Equal(t, []time.Time{
		time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
	}, gen.dates)
}

func TestGenerateDailyVariance_MonthBoundary(t *testing.T) {
	gen := &fakeVariance{}
	jobs := NewAttendanceJobs(&fakeEntries{}, gen, 0)
	jobs.now = func() time.Time { return time.Date(2026, 3, 1, 0, 30, 0, 0, time.UTC) }

	require.NoError(t, jobs.GenerateDailyVariance(context.Background()))

	assert.Equal(t, []time.Time{
		time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
	}, gen.dates)
}

func TestInvalidateStaleEntries(t *testing.T) {
	entries := &fakeEntries{n: 2}
	jobs := NewAttendanceJobs(entries, &fakeVariance{}, 0)

	assert.NoError(t, jobs.InvalidateStaleEntries(context.Background()))

	entries.err = errors.New("db down")
	assert.Error(t, jobs.InvalidateStaleEntries(context.Background()))
	assert.Equal(t, 2, entries.calls)
}

func TestScheduler_RunOnce(t *testing.T) {
	entries := &fakeEntries{}
	s := NewScheduler()
	NewAttendanceJobs(entries, &fakeVariance{}, 0).RegisterJobs(s, time.Minute, time.Hour)

	s.RunOnce(context.Background())

	assert.Equal(t, 1, entries.calls)
}
