package variance

import "time"

// Alert records a day where actual hours deviated from expected hours by at least
// the site's threshold. It is only mutated to acknowledge it.
type Alert struct {
	ID                 string
	EmployeeID         string
	SiteID             string
	ManagerID          *string
	Date               time.Time
	ExpectedHours      float64
	ActualHours        float64
	VariancePercentage float64
	ThresholdUsed      float64
	Acknowledged       bool
	AcknowledgedAt     *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Join
	EmployeeName *string
	SiteName     *string
}

// DailyTotal is the sum of completed hours for one employee at one site on one
// site-local calendar day, together with the inputs needed to evaluate it.
type DailyTotal struct {
	EmployeeID       string
	EmployeeName     string
	SiteID           string
	SiteName         string
	SiteTimezone     string
	ManagerID        *string
	ManagerEmail     *string
	Date             time.Time
	ActualHours      float64
	ExpectedHours    float64
	ThresholdPercent float64
}
