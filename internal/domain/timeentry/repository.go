package timeentry

import (
	"context"
	"time"
)

type TimeEntryRepository interface {
	// CreateActive inserts an active entry. It fails with ErrActiveEntryExists when the
	// employee already has one; the store enforces this, not the caller.
	CreateActive(ctx context.Context, entry TimeEntry) (TimeEntry, error)

	GetByID(ctx context.Context, id string) (TimeEntry, error)
	GetActive(ctx context.Context, employeeID string) (TimeEntry, error)

	// GetByClockInKey and GetByClockOutKey look up an entry by the idempotency key
	// of the request that created or closed it.
	GetByClockInKey(ctx context.Context, employeeID, key string) (TimeEntry, error)
	GetByClockOutKey(ctx context.Context, employeeID, key string) (TimeEntry, error)

	// Complete closes the active entry identified by entry.ID. It fails with
	// ErrNoActiveEntry if the entry is no longer active.
	Complete(ctx context.Context, entry TimeEntry) (TimeEntry, error)

	// InvalidateStale marks active entries clocked in before cutoff as invalid.
	InvalidateStale(ctx context.Context, cutoff time.Time) ([]TimeEntry, error)

	List(ctx context.Context, filter TimeEntryFilter) ([]TimeEntry, int64, error)
}
