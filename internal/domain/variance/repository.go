package variance

import (
	"context"
	"time"
)

type AlertRepository interface {
	// DailyTotals aggregates completed entries whose clock-in falls on date in the
	// site's local time zone, grouped by employee and site.
	DailyTotals(ctx context.Context, date time.Time) ([]DailyTotal, error)

	// Upsert inserts or refreshes the alert for (employee, site, date). created is
	// false when an existing alert was updated.
	Upsert(ctx context.Context, a Alert) (alert Alert, created bool, err error)

	GetByID(ctx context.Context, id string) (Alert, error)
	Acknowledge(ctx context.Context, id string, at time.Time) (Alert, error)
	List(ctx context.Context, filter AlertFilter) ([]Alert, int64, error)
}
