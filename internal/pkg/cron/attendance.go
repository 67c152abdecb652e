package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/timeguard/timeguard-api/internal/domain/timeentry"
	"github.com/timeguard/timeguard-api/internal/domain/variance"
)

// StaleEntryInvalidator closes sessions left open too long.
type StaleEntryInvalidator interface {
	InvalidateStale(ctx context.Context) (int, error)
}

// VarianceGenerator evaluates a finished day.
type VarianceGenerator interface {
	GenerateForDate(ctx context.Context, date time.Time) (variance.GenerateResponse, error)
}

var (
	_ StaleEntryInvalidator = (timeentry.TimeEntryService)(nil)
	_ VarianceGenerator     = (variance.VarianceService)(nil)
)

type AttendanceJobs struct {
	entries    StaleEntryInvalidator
	variance   VarianceGenerator
	runHourUTC int
	now        func() time.Time
}

func NewAttendanceJobs(entries StaleEntryInvalidator, varianceGen VarianceGenerator, runHourUTC int) *AttendanceJobs {
	return &AttendanceJobs{
		entries:    entries,
		variance:   varianceGen,
		runHourUTC: runHourUTC,
		now:        time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, staleInterval, varianceInterval time.Duration) {
	scheduler.AddJob("invalidate_stale_time_entries", staleInterval, j.InvalidateStaleEntries)
	scheduler.AddJob("generate_variance_alerts", varianceInterval, j.GenerateDailyVariance)
}

func (j *AttendanceJobs) InvalidateStaleEntries(ctx context.Context) error {
	n, err := j.entries.InvalidateStale(ctx)
	if err != nil {
		return fmt.Errorf("failed to invalidate stale entries: %w", err)
	}
	if n > 0 {
		slog.Info("Cron: Stale time entries invalidated", "count", n)
	}
	return nil
}

// GenerateDailyVariance evaluates the two most recent UTC dates once the configured hour
// is reached. Sites west of UTC finish a day up to twelve hours late, so each date gets a
// second pass the next night. Reruns are harmless since alerts are upserted.
func (j *AttendanceJobs) GenerateDailyVariance(ctx context.Context) error {
	now := j.now().UTC()
	if now.Hour() != j.runHourUTC {
		return nil
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for _, date := range []time.Time{today.AddDate(0, 0, -2), today.AddDate(0, 0, -1)} {
		slog.Info("Cron: Starting variance alert generation", "date", date.Format("2006-01-02"))

		resp, err := j.variance.GenerateForDate(ctx, date)
		if err != nil {
			return fmt.Errorf("failed to generate variance alerts for %s: %w", date.Format("2006-01-02"), err)
		}

		slog.Info("Cron: Variance alert generation completed", "date", resp.Date, "alerts", resp.Alerts,
			"created", resp.Created, "pending", resp.Pending)
	}
	return nil
}
