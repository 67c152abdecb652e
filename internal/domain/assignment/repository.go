package assignment

import (
	"context"
	"time"
)

type AssignmentRepository interface {
	Create(ctx context.Context, a Assignment) (Assignment, error)
	DeleteByEmployee(ctx context.Context, employeeID string) error
	ListByEmployee(ctx context.Context, employeeID string) ([]Assignment, error)
	ListBySite(ctx context.Context, siteID string) ([]Assignment, error)

	// IsAssigned reports whether employeeID has an assignment to siteID covering date.
	IsAssigned(ctx context.Context, employeeID, siteID string, date time.Time) (bool, error)
}
