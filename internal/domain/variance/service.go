package variance

import (
	"context"
	"time"

	"github.com/timeguard/timeguard-api/internal/pkg/session"
)

type VarianceService interface {
	// Generate evaluates a past day on demand (manager/admin).
	Generate(ctx context.Context, sess session.Session, req GenerateRequest) (GenerateResponse, error)

	// GenerateForDate is the unattended form used by the nightly job.
	GenerateForDate(ctx context.Context, date time.Time) (GenerateResponse, error)

	List(ctx context.Context, sess session.Session, filter AlertFilter) (ListAlertResponse, error)
	Acknowledge(ctx context.Context, sess session.Session, id string) (AlertResponse, error)
}
