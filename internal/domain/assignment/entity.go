package assignment

import (
	"time"

	"github.com/timeguard/timeguard-api/internal/pkg/timewindow"
)

// Assignment links an employee to a site for a bounded or open-ended period.
type Assignment struct {
	ID          string
	EmployeeID  string
	SiteID      string
	StartDate   *time.Time
	EndDate     *time.Time
	ArrivalTime string
	EndTime     string
	CreatedAt   time.Time

	// Join
	EmployeeName *string
	SiteName     *string
}

// ActiveOn reports whether the assignment covers the calendar date of day.
// Bounds are inclusive and compared by date only.
func (a *Assignment) ActiveOn(day time.Time) bool {
	d := dateOnly(day)
	if a.StartDate != nil && d.Before(dateOnly(*a.StartDate)) {
		return false
	}
	if a.EndDate != nil && d.After(dateOnly(*a.EndDate)) {
		return false
	}
	return true
}

// Window returns the daily arrival/end window of the assignment.
func (a *Assignment) Window() (timewindow.Window, error) {
	return timewindow.ParseWindow(a.ArrivalTime, a.EndTime)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
