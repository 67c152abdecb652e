package timeentry

import (
	"errors"
	"fmt"

	"github.com/timeguard/timeguard-api/internal/domain/assignment"
)

var (
	ErrLocationUnavailable = errors.New("unable to get your location")
	ErrSiteRequired        = errors.New("please select a work site")
	ErrOutsideGeofence     = errors.New("outside site geofence")
	ErrScheduleConflict    = errors.New("clock-in outside allowed site hours")
	ErrActiveEntryExists   = errors.New("you already have an active time entry")
	ErrNoActiveEntry       = errors.New("no active time entry to clock out")
	ErrTimeEntryNotFound   = errors.New("time entry not found")

	// ErrSiteNotAssigned is shared with the assignment domain.
	ErrSiteNotAssigned = assignment.ErrSiteNotAssigned
)

// GeofenceError reports how far the caller was from the site.
type GeofenceError struct {
	Distance     int
	RadiusMeters int
}

func (e *GeofenceError) Error() string {
	return fmt.Sprintf("you are %dm away from the site, must be within %dm to clock in", e.Distance, e.RadiusMeters)
}

func (e *GeofenceError) Unwrap() error {
	return ErrOutsideGeofence
}

// ScheduleConflictError is a soft failure: the clock-in may be retried with
// the conflict acknowledged, which logs a Conflict record.
type ScheduleConflictError struct {
	ConflictType string
	CurrentTime  string
	AllowedStart string
	AllowedEnd   string
}

func (e *ScheduleConflictError) Error() string {
	return fmt.Sprintf("you are clocking in outside allowed site hours (%s-%s)", e.AllowedStart, e.AllowedEnd)
}

func (e *ScheduleConflictError) Unwrap() error {
	return ErrScheduleConflict
}

// Details is the audit text stored with an acknowledged conflict.
func (e *ScheduleConflictError) Details() string {
	return fmt.Sprintf("Current time: %s. This will be logged as a schedule conflict.", e.CurrentTime)
}
