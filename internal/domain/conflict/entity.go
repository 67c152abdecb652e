package conflict

import "time"

// TypeOutsideHours is logged when an employee clocks in outside the site's allowed hours.
const TypeOutsideHours = "outside_hours"

type Conflict struct {
	ID             string
	EmployeeID     string
	SiteID         string
	TimeEntryID    *string
	ConflictType   string
	ConflictTime   time.Time
	Acknowledged   bool
	AcknowledgedAt *time.Time
	Details        string
	CreatedAt      time.Time

	// Join
	EmployeeName *string
	SiteName     *string
}
