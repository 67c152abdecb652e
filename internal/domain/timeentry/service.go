package timeentry

import (
	"context"

	"github.com/timeguard/timeguard-api/internal/pkg/session"
)

type TimeEntryService interface {
	ClockIn(ctx context.Context, sess session.Session, req ClockInRequest) (ClockInResponse, error)
	ClockOut(ctx context.Context, sess session.Session, req ClockOutRequest) (TimeEntryResponse, error)
	GetActive(ctx context.Context, sess session.Session) (TimeEntryResponse, error)

	// RecordLocation evaluates a continuous-watch sample against the active entry's
	// site and publishes it to the activity stream. Nothing is persisted.
	RecordLocation(ctx context.Context, sess session.Session, req LocationSampleRequest) (LocationStatusResponse, error)

	ListMine(ctx context.Context, sess session.Session, filter TimeEntryFilter) (ListTimeEntryResponse, error)
	List(ctx context.Context, sess session.Session, filter TimeEntryFilter) (ListTimeEntryResponse, error)

	// InvalidateStale closes sessions left open past the configured limit.
	InvalidateStale(ctx context.Context) (int, error)
}
