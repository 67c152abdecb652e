package conflict

import (
	"github.com/timeguard/timeguard-api/internal/pkg/validator"
)

type ConflictFilter struct {
	EmployeeID   *string `json:"employee_id,omitempty"`
	SiteID       *string `json:"site_id,omitempty"`
	ConflictType *string `json:"conflict_type,omitempty"`
	StartDate    *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate      *string `json:"end_date,omitempty"`   // YYYY-MM-DD

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *ConflictFilter) Validate() error {
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
	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if f.SiteID != nil && !validator.IsValidUUID(*f.SiteID) {
		errs.Add("site_id", "site_id must be a valid UUID")
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

	return errs.Err()
}

type ConflictResponse struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"employee_id"`
	EmployeeName   *string `json:"employee_name,omitempty"`
	SiteID         string  `json:"site_id"`
	SiteName       *string `json:"site_name,omitempty"`
	TimeEntryID    *string `json:"time_entry_id,omitempty"`
	ConflictType   string  `json:"conflict_type"`
	ConflictTime   string  `json:"conflict_time"`
	Acknowledged   bool    `json:"acknowledged"`
	AcknowledgedAt *string `json:"acknowledged_at,omitempty"`
	Details        string  `json:"details"`
}

type ListConflictResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Conflicts  []ConflictResponse `json:"conflicts"`
}

func ToResponse(c Conflict) ConflictResponse {
	resp := ConflictResponse{
		ID:           c.ID,
		EmployeeID:   c.EmployeeID,
		EmployeeName: c.EmployeeName,
		SiteID:       c.SiteID,
		SiteName:     c.SiteName,
		TimeEntryID:  c.TimeEntryID,
		ConflictType: c.ConflictType,
		ConflictTime: c.ConflictTime.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Acknowledged: c.Acknowledged,
		Details:      c.Details,
	}
	if c.AcknowledgedAt != nil {
		at := c.AcknowledgedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		resp.AcknowledgedAt = &at
	}
	return resp
}
