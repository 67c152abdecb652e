package assignment

import (
	"github.com/timeguard/timeguard-api/internal/pkg/validator"
)

type ReplaceRequest struct {
	EmployeeID  string   `json:"-"`
	SiteIDs     []string `json:"site_ids"`
	StartDate   *string  `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate     *string  `json:"end_date,omitempty"`   // YYYY-MM-DD
	ArrivalTime string   `json:"arrival_time"`         // HH:MM
	EndTime     string   `json:"end_time"`             // HH:MM
	Confirm     bool     `json:"confirm"`
}

func (r *ReplaceRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}

	seen := make(map[string]bool, len(r.SiteIDs))
	for _, id := range r.SiteIDs {
		if !validator.IsValidUUID(id) {
			errs.Add("site_ids", "site_ids must contain valid UUIDs")
			break
		}
		if seen[id] {
			errs.Add("site_ids", "site_ids must not contain duplicates")
			break
		}
		seen[id] = true
	}

	if len(r.SiteIDs) > 0 {
		if !validator.IsValidClock(r.ArrivalTime) {
			errs.Add("arrival_time", "arrival_time must be in HH:MM format")
		}
		if !validator.IsValidClock(r.EndTime) {
			errs.Add("end_time", "end_time must be in HH:MM format")
		}
	}

	var start, end validator.Date
	var hasStart, hasEnd bool
	if r.StartDate != nil && *r.StartDate != "" {
		d, err := validator.ParseDate(*r.StartDate)
		if err != nil {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
		start, hasStart = d, err == nil
	}
	if r.EndDate != nil && *r.EndDate != "" {
		d, err := validator.ParseDate(*r.EndDate)
		if err != nil {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
		end, hasEnd = d, err == nil
	}
	if hasStart && hasEnd && end.Before(start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}

	return errs.Err()
}

type AssignmentFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	SiteID     *string `json:"site_id,omitempty"`
}

func (f *AssignmentFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.EmployeeID == nil && f.SiteID == nil {
		errs.Add("employee_id", "employee_id or site_id is required")
	}
	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if f.SiteID != nil && !validator.IsValidUUID(*f.SiteID) {
		errs.Add("site_id", "site_id must be a valid UUID")
	}

	return errs.Err()
}

// HoursWarning describes a site whose allowed hours do not contain the assignment window.
type HoursWarning struct {
	SiteID       string `json:"site_id"`
	SiteName     string `json:"site_name"`
	AllowedHours string `json:"allowed_hours"`
	Message      string `json:"message"`
}

type AssignmentResponse struct {
	ID           string  `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName *string `json:"employee_name,omitempty"`
	SiteID       string  `json:"site_id"`
	SiteName     *string `json:"site_name,omitempty"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	ArrivalTime  string  `json:"arrival_time"`
	EndTime      string  `json:"end_time"`
}

type ReplaceResponse struct {
	Assignments []AssignmentResponse `json:"assignments"`
	Warnings    []HoursWarning       `json:"warnings,omitempty"`
}

func ToResponse(a Assignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:           a.ID,
		EmployeeID:   a.EmployeeID,
		EmployeeName: a.EmployeeName,
		SiteID:       a.SiteID,
		SiteName:     a.SiteName,
		ArrivalTime:  a.ArrivalTime,
		EndTime:      a.EndTime,
	}
	if a.StartDate != nil {
		s := a.StartDate.Format("2006-01-02")
		resp.StartDate = &s
	}
	if a.EndDate != nil {
		s := a.EndDate.Format("2006-01-02")
		resp.EndDate = &s
	}
	return resp
}
