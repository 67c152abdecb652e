package onsite

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/timeguard/timeguard-api/internal/pkg/validator"
)

const MaxPhotoSize = 10 << 20

type UploadPhotoRequest struct {
	SiteID    string
	Caption   string
	Filename  string
	Size      int64
	File      io.Reader
	Latitude  *float64
	Longitude *float64
}

func (r *UploadPhotoRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.SiteID) {
		errs.Add("site_id", "site_id must be a valid UUID")
	}
	if r.File == nil {
		errs.Add("photo", "photo is required")
	} else {
		ext := strings.ToLower(filepath.Ext(r.Filename))
		if !validator.IsInSlice(ext, []string{".jpg", ".jpeg", ".png"}) {
			errs.Add("photo", ErrInvalidPhoto.Error())
		}
		if r.Size > MaxPhotoSize {
			errs.Add("photo", ErrPhotoTooLarge.Error())
		}
	}
	if len(r.Caption) > 500 {
		errs.Add("caption", "caption must not exceed 500 characters")
	}
	if (r.Latitude == nil) != (r.Longitude == nil) {
		errs.Add("latitude", "latitude and longitude must be provided together")
	}
	if r.Latitude != nil && !validator.IsValidLatitude(*r.Latitude) {
		errs.Add("latitude", "latitude must be between -90 and 90")
	}
	if r.Longitude != nil && !validator.IsValidLongitude(*r.Longitude) {
		errs.Add("longitude", "longitude must be between -180 and 180")
	}

	return errs.Err()
}

type SendMessageRequest struct {
	SiteID  string `json:"-"`
	Message string `json:"message"`
}

func (r *SendMessageRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.SiteID) {
		errs.Add("site_id", "site_id must be a valid UUID")
	}
	if validator.IsEmpty(r.Message) {
		errs.Add("message", "message is required")
	} else if len(r.Message) > 2000 {
		errs.Add("message", "message must not exceed 2000 characters")
	}

	return errs.Err()
}

type MessageFilter struct {
	SiteID    *string `json:"site_id,omitempty"`
	Status    *string `json:"status,omitempty"`
	ManagerID *string `json:"-"`
}

func (f *MessageFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.SiteID != nil && !validator.IsValidUUID(*f.SiteID) {
		errs.Add("site_id", "site_id must be a valid UUID")
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, []string{string(MessagePending), string(MessageResolved)}) {
		errs.Add("status", "status must be one of: pending, resolved")
	}

	return errs.Err()
}

type PhotoResponse struct {
	ID           string   `json:"id"`
	SiteID       string   `json:"site_id"`
	EmployeeID   string   `json:"employee_id"`
	EmployeeName *string  `json:"employee_name,omitempty"`
	PhotoURL     string   `json:"photo_url"`
	Caption      string   `json:"caption"`
	UploadDate   string   `json:"upload_date"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

type MessageResponse struct {
	ID           string  `json:"id"`
	SiteID       string  `json:"site_id"`
	SiteName     *string `json:"site_name,omitempty"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName *string `json:"employee_name,omitempty"`
	ManagerID    string  `json:"manager_id"`
	Message      string  `json:"message"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
	ResolvedAt   *string `json:"resolved_at"`
}

const timestampLayout = "2006-01-02T15:04:05Z07:00"

func ToPhotoResponse(p SitePhoto, url string) PhotoResponse {
	return PhotoResponse{
		ID:           p.ID,
		SiteID:       p.SiteID,
		EmployeeID:   p.EmployeeID,
		EmployeeName: p.EmployeeName,
		PhotoURL:     url,
		Caption:      p.Caption,
		UploadDate:   p.UploadDate.UTC().Format(timestampLayout),
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
	}
}

func ToMessageResponse(m SiteMessage) MessageResponse {
	resp := MessageResponse{
		ID:           m.ID,
		SiteID:       m.SiteID,
		SiteName:     m.SiteName,
		EmployeeID:   m.EmployeeID,
		EmployeeName: m.EmployeeName,
		ManagerID:    m.ManagerID,
		Message:      m.Message,
		Status:       string(m.Status),
		CreatedAt:    m.CreatedAt.UTC().Format(timestampLayout),
	}
	if m.ResolvedAt != nil {
		at := m.ResolvedAt.UTC().Format(timestampLayout)
		resp.ResolvedAt = &at
	}
	return resp
}
