package timeentry

import (
	"strings"

	"github.com/timeguard/timeguard-api/internal/domain/conflict"
	"github.com/timeguard/timeguard-api/internal/pkg/geo"
	"github.com/timeguard/timeguard-api/internal/pkg/validator"
)

// ========================================
// CLOCK DTOs
// ========================================

type ClockInRequest struct {
	SiteID              string    `json:"site_id"`
	Position            *Position `json:"position,omitempty"`
	AcknowledgeConflict bool      `json:"acknowledge_conflict"`
	IdempotencyKey      string    `json:"-"`
}

func (r *ClockInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.SiteID) {
		errs.Add("site_id", ErrSiteRequired.Error())
	} else if !validator.IsValidUUID(r.SiteID) {
		errs.Add("site_id", "site_id must be a valid UUID")
	}
	validatePosition(&errs, r.Position)
	validateKey(&errs, r.IdempotencyKey)

	return errs.Err()
}

type ClockOutRequest struct {
	Position       *Position `json:"position,omitempty"`
	IdempotencyKey string    `json:"-"`
}

func (r *ClockOutRequest) Validate() error {
	var errs validator.ValidationErrors

	validatePosition(&errs, r.Position)
	validateKey(&errs, r.IdempotencyKey)

	return errs.Err()
}

type LocationSampleRequest struct {
	Position *Position `json:"position"`
}

func (r *LocationSampleRequest) Validate() error {
	var errs validator.ValidationErrors

	validatePosition(&errs, r.Position)

	return errs.Err()
}

// validatePosition only checks ranges; a missing position is a protocol error
// reported by the service, not a validation error.
func validatePosition(errs *validator.ValidationErrors, p *Position) {
	if p == nil {
		return
	}
	if !validator.IsValidLatitude(p.Latitude) {
		errs.Add("position.latitude", "latitude must be between -90 and 90")
	}
	if !validator.IsValidLongitude(p.Longitude) {
		errs.Add("position.longitude", "longitude must be between -180 and 180")
	}
	if p.Accuracy < 0 {
		errs.Add("position.accuracy", "accuracy must not be negative")
	}
}

func validateKey(errs *validator.ValidationErrors, key string) {
	if len(key) > 255 {
		errs.Add("idempotency_key", "Idempotency-Key must not exceed 255 characters")
	}
}

// ========================================
// LIST DTOs
// ========================================

type TimeEntryFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	SiteID     *string `json:"site_id,omitempty"`
	Status     *string `json:"status,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // clock_in_time, employee_name, site_name, status
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *TimeEntryFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}
	if f.Limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
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

	if f.Status != nil {
		validStatuses := []string{string(StatusActive), string(StatusCompleted), string(StatusInvalid)}
		if !validator.IsInSlice(*f.Status, validStatuses) {
			errs.Add("status", "status must be one of: active, completed, invalid")
		}
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}

	if f.SortBy != "" {
		validSortFields := []string{"clock_in_time", "employee_name", "site_name", "status"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs.Add("sort_by", "sort_by must be one of: clock_in_time, employee_name, site_name, status")
		}
	} else {
		f.SortBy = "clock_in_time"
	}

	if f.SortOrder != "" {
		f.SortOrder = strings.ToLower(f.SortOrder)
		if !validator.IsInSlice(f.SortOrder, []string{"asc", "desc"}) {
			errs.Add("sort_order", "sort_order must be one of: asc, desc")
		}
	} else {
		f.SortOrder = "desc" // newest first
	}

	return errs.Err()
}

// ========================================
// RESPONSES
// ========================================

type TimeEntryResponse struct {
	ID           string   `json:"id"`
	EmployeeID   string   `json:"employee_id"`
	EmployeeName *string  `json:"employee_name,omitempty"`
	SiteID       string   `json:"site_id"`
	SiteName     *string  `json:"site_name,omitempty"`
	ClockInTime  string   `json:"clock_in_time"`
	ClockInLat   float64  `json:"clock_in_lat"`
	ClockInLon   float64  `json:"clock_in_lon"`
	ClockOutTime *string  `json:"clock_out_time"`
	ClockOutLat  *float64 `json:"clock_out_lat"`
	ClockOutLon  *float64 `json:"clock_out_lon"`
	Hours        *float64 `json:"hours,omitempty"`
	Status       string   `json:"status"`
}

type ClockInResponse struct {
	Entry    TimeEntryResponse          `json:"entry"`
	Geofence geo.Result                 `json:"geofence"`
	Conflict *conflict.ConflictResponse `json:"conflict,omitempty"`
	Replayed bool                       `json:"replayed,omitempty"`
}

type LocationStatusResponse struct {
	EntryID  string     `json:"entry_id"`
	SiteID   string     `json:"site_id"`
	Geofence geo.Result `json:"geofence"`
}

type ListTimeEntryResponse struct {
	TotalCount int64               `json:"total_count"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
	Entries    []TimeEntryResponse `json:"entries"`
}

const timestampLayout = "2006-01-02T15:04:05Z07:00"

func ToResponse(e TimeEntry) TimeEntryResponse {
	resp := TimeEntryResponse{
		ID:           e.ID,
		EmployeeID:   e.EmployeeID,
		EmployeeName: e.EmployeeName,
		SiteID:       e.SiteID,
		SiteName:     e.SiteName,
		ClockInTime:  e.ClockInTime.UTC().Format(timestampLayout),
		ClockInLat:   e.ClockInLat,
		ClockInLon:   e.ClockInLon,
		ClockOutLat:  e.ClockOutLat,
		ClockOutLon:  e.ClockOutLon,
		Status:       string(e.Status),
	}
	if e.ClockOutTime != nil {
		out := e.ClockOutTime.UTC().Format(timestampLayout)
		resp.ClockOutTime = &out
		hours := e.WorkedHours()
		resp.Hours = &hours
	}
	return resp
}
