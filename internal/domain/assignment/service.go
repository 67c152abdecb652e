package assignment

import (
	"context"

	"github.com/timeguard/timeguard-api/internal/pkg/session"
)

type AssignmentService interface {
	// Replace deletes the employee's assignments and recreates them in one transaction.
	// Sites whose allowed hours do not cover the window fail with *HoursConflictError
	// unless req.Confirm is set.
	Replace(ctx context.Context, sess session.Session, req ReplaceRequest) (ReplaceResponse, error)

	ListMine(ctx context.Context, sess session.Session) ([]AssignmentResponse, error)

	// CalendarFeed renders the caller's assignments as an iCalendar feed with one
	// daily recurring event per assignment, in the site's time zone.
	CalendarFeed(ctx context.Context, sess session.Session) ([]byte, error)
	List(ctx context.Context, sess session.Session, filter AssignmentFilter) ([]AssignmentResponse, error)
}
