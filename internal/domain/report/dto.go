package report

import (
	"time"

	"github.com/timeguard/timeguard-api/internal/pkg/validator"
)

const maxRangeDays = 366

type TimesheetFilter struct {
	StartDate  string  `json:"start_date"` // YYYY-MM-DD
	EndDate    string  `json:"end_date"`   // YYYY-MM-DD
	SiteID     *string `json:"site_id,omitempty"`
	EmployeeID *string `json:"employee_id,omitempty"`

	// Restricts rows to sites managed by this profile. Set by the service for managers.
	ManagerID *string `json:"-"`

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (f *TimesheetFilter) Validate() error {
	var errs validator.ValidationErrors

	start, okStart := validator.IsValidDate(f.StartDate)
	if !okStart {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	end, okEnd := validator.IsValidDate(f.EndDate)
	if !okEnd {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if okStart && okEnd {
		if end.Before(start) {
			errs.Add("end_date", ErrInvalidDateRange.Error())
		} else if end.Sub(start) > maxRangeDays*24*time.Hour {
			errs.Add("end_date", ErrRangeTooLarge.Error())
		}
		f.Start, f.End = start, end
	}
	if f.SiteID != nil && !validator.IsValidUUID(*f.SiteID) {
		errs.Add("site_id", "site_id must be a valid UUID")
	}
	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}

	return errs.Err()
}

type TimesheetRow struct {
	Date         string     `json:"date"`
	EmployeeID   string     `json:"employee_id"`
	EmployeeName string     `json:"employee_name"`
	SiteID       string     `json:"site_id"`
	SiteName     string     `json:"site_name"`
	ClockIn      time.Time  `json:"clock_in"`
	ClockOut     *time.Time `json:"clock_out"`
	Hours        float64    `json:"hours"`
	Status       string     `json:"status"`
}

type HoursTotal struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
}

type TimesheetReport struct {
	StartDate   string         `json:"start_date"`
	EndDate     string         `json:"end_date"`
	GeneratedAt string         `json:"generated_at"`
	TotalHours  float64        `json:"total_hours"`
	Rows        []TimesheetRow `json:"rows"`
	ByEmployee  []HoursTotal   `json:"by_employee"`
	BySite      []HoursTotal   `json:"by_site"`
}
