package variance

import (
	"strings"

	"github.com/timeguard/timeguard-api/internal/pkg/validator"
)

type GenerateRequest struct {
	Date string `json:"date"` // YYYY-MM-DD
}

func (r *GenerateRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs.Add("date", "date must be in YYYY-MM-DD format")
	}

	return errs.Err()
}

type GenerateResponse struct {
	Date      string `json:"date"`
	Evaluated int    `json:"evaluated"`
	Alerts    int    `json:"alerts"`
	Created   int    `json:"created"`
	Skipped   int    `json:"skipped"`
	// Pending counts sites whose local day has not ended yet.
	Pending int `json:"pending"`
}

type AlertFilter struct {
	SiteID       *string `json:"site_id,omitempty"`
	EmployeeID   *string `json:"employee_id,omitempty"`
	ManagerID    *string `json:"-"`
	Acknowledged *bool   `json:"acknowledged,omitempty"`
	StartDate    *string `json:"start_date,omitempty"`
	EndDate      *string `json:"end_date,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"` // date, variance, employee, site
	SortOrder string `json:"sort_order"`
}

func (f *AlertFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}

	if f.SiteID != nil && !validator.IsValidUUID(*f.SiteID) {
		errs.Add("site_id", "site_id must be a valid UUID")
	}
	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if f.StartDate != nil {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if f.EndDate != nil {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}

	if f.SortBy == "" {
		f.SortBy = "date"
	} else if !validator.IsInSlice(f.SortBy, []string{"date", "variance", "employee", "site"}) {
		errs.Add("sort_by", "sort_by must be one of: date, variance, employee, site")
	}
	if f.SortOrder == "" {
		f.SortOrder = "desc"
	} else {
		f.SortOrder = strings.ToLower(f.SortOrder)
		if !validator.IsInSlice(f.SortOrder, []string{"asc", "desc"}) {
			errs.Add("sort_order", "sort_order must be one of: asc, desc")
		}
	}

	return errs.Err()
}

type AlertResponse struct {
	ID                 string  `json:"id"`
	EmployeeID         string  `json:"employee_id"`
	EmployeeName       *string `json:"employee_name,omitempty"`
	SiteID             string  `json:"site_id"`
	SiteName           *string `json:"site_name,omitempty"`
	ManagerID          *string `json:"manager_id"`
	Date               string  `json:"date"`
	ExpectedHours      float64 `json:"expected_hours"`
	ActualHours        float64 `json:"actual_hours"`
	VariancePercentage float64 `json:"variance_percentage"`
	ThresholdUsed      float64 `json:"threshold_used"`
	Acknowledged       bool    `json:"acknowledged"`
	AcknowledgedAt     *string `json:"acknowledged_at,omitempty"`
}

type ListAlertResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
	Alerts     []AlertResponse `json:"alerts"`
}

func ToResponse(a Alert) AlertResponse {
	resp := AlertResponse{
		ID:                 a.ID,
		EmployeeID:         a.EmployeeID,
		EmployeeName:       a.EmployeeName,
		SiteID:             a.SiteID,
		SiteName:           a.SiteName,
		ManagerID:          a.ManagerID,
		Date:               a.Date.Format("2006-01-02"),
		ExpectedHours:      a.ExpectedHours,
		ActualHours:        a.ActualHours,
		VariancePercentage: a.VariancePercentage,
		ThresholdUsed:      a.ThresholdUsed,
		Acknowledged:       a.Acknowledged,
	}
	if a.AcknowledgedAt != nil {
		at := a.AcknowledgedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.AcknowledgedAt = &at
	}
	return resp
}
