package profile

import (
	"strings"

	"github.com/timeguard/timeguard-api/internal/pkg/session"
	"github.com/timeguard/timeguard-api/internal/pkg/validator"
)

type UpdateMeRequest struct {
	PhoneNumber        *string `json:"phone_number,omitempty"`
	MailingAddress     *string `json:"mailing_address,omitempty"`
	GPSTrackingEnabled *bool   `json:"gps_tracking_enabled,omitempty"`
}

func (r *UpdateMeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.PhoneNumber != nil && *r.PhoneNumber != "" && !validator.IsValidPhoneNumber(*r.PhoneNumber) {
		errs.Add("phone_number", "phone_number must contain 7 to 15 digits")
	}
	if r.MailingAddress != nil && len(*r.MailingAddress) > 500 {
		errs.Add("mailing_address", "mailing_address must not exceed 500 characters")
	}

	return errs.Err()
}

type UpdateProfileRequest struct {
	ID        string   `json:"-"`
	FirstName *string  `json:"first_name,omitempty"`
	LastName  *string  `json:"last_name,omitempty"`
	Role      *string  `json:"role,omitempty"`
	WorkHours *float64 `json:"work_hours,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}
	if r.FirstName != nil && validator.IsEmpty(*r.FirstName) {
		errs.Add("first_name", "first_name must not be empty")
	}
	if r.LastName != nil && validator.IsEmpty(*r.LastName) {
		errs.Add("last_name", "last_name must not be empty")
	}
	if r.Role != nil && !session.ValidRole(*r.Role) {
		errs.Add("role", "role must be one of: admin, manager, employee")
	}
	if r.WorkHours != nil && (*r.WorkHours <= 0 || *r.WorkHours > 24) {
		errs.Add("work_hours", "work_hours must be greater than 0 and at most 24")
	}

	return errs.Err()
}

type ProfileFilter struct {
	Role   *string `json:"role,omitempty"`
	Status *string `json:"status,omitempty"`
	Search *string `json:"search,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *ProfileFilter) Validate() error {
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

	if f.Role != nil && !session.ValidRole(*f.Role) {
		errs.Add("role", "role must be one of: admin, manager, employee")
	}
	if f.Status != nil {
		statuses := []string{string(StatusPending), string(StatusApproved), string(StatusRejected)}
		if !validator.IsInSlice(*f.Status, statuses) {
			errs.Add("status", "status must be one of: "+strings.Join(statuses, ", "))
		}
	}

	return errs.Err()
}

type ProfileResponse struct {
	ID                 string  `json:"id"`
	Email              string  `json:"email"`
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	FullName           string  `json:"full_name"`
	PhoneNumber        *string `json:"phone_number,omitempty"`
	MailingAddress     *string `json:"mailing_address,omitempty"`
	Role               string  `json:"role"`
	WorkHours          float64 `json:"work_hours"`
	RegistrationStatus string  `json:"registration_status"`
	GPSTrackingEnabled bool    `json:"gps_tracking_enabled"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

type ListProfileResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Profiles   []ProfileResponse `json:"profiles"`
}

func ToResponse(p Profile) ProfileResponse {
	return ProfileResponse{
		ID:                 p.ID,
		Email:              p.Email,
		FirstName:          p.FirstName,
		LastName:           p.LastName,
		FullName:           p.FullName(),
		PhoneNumber:        p.PhoneNumber,
		MailingAddress:     p.MailingAddress,
		Role:               string(p.Role),
		WorkHours:          p.WorkHours,
		RegistrationStatus: string(p.RegistrationStatus),
		GPSTrackingEnabled: p.GPSTrackingEnabled,
		CreatedAt:          p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:          p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
