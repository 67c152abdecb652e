package site

import (
	"github.com/timeguard/timeguard-api/internal/pkg/validator"
)

type CreateSiteRequest struct {
	Name                     string   `json:"name"`
	Address                  string   `json:"address"`
	Latitude                 *float64 `json:"latitude,omitempty"`
	Longitude                *float64 `json:"longitude,omitempty"`
	GeofenceRadius           *int     `json:"geofence_radius,omitempty"`
	AllowedHoursStart        *string  `json:"allowed_hours_start,omitempty"`
	AllowedHoursEnd          *string  `json:"allowed_hours_end,omitempty"`
	VarianceThresholdPercent *float64 `json:"variance_threshold_percent,omitempty"`
	ManagerID                *string  `json:"manager_id,omitempty"`
	IsActive                 *bool    `json:"is_active,omitempty"`
	Timezone                 *string  `json:"timezone,omitempty"`
}

func (r *CreateSiteRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 255 {
		errs.Add("name", "name must not exceed 255 characters")
	}
	if validator.IsEmpty(r.Address) {
		errs.Add("address", "address is required")
	}

	validateSiteFields(&errs, r.Latitude, r.Longitude, r.GeofenceRadius,
		r.AllowedHoursStart, r.AllowedHoursEnd, r.VarianceThresholdPercent, r.ManagerID, r.Timezone)

	return errs.Err()
}

type UpdateSiteRequest struct {
	ID                       string   `json:"-"`
	Name                     *string  `json:"name,omitempty"`
	Address                  *string  `json:"address,omitempty"`
	Latitude                 *float64 `json:"latitude,omitempty"`
	Longitude                *float64 `json:"longitude,omitempty"`
	GeofenceRadius           *int     `json:"geofence_radius,omitempty"`
	AllowedHoursStart        *string  `json:"allowed_hours_start,omitempty"`
	AllowedHoursEnd          *string  `json:"allowed_hours_end,omitempty"`
	VarianceThresholdPercent *float64 `json:"variance_threshold_percent,omitempty"`
	ManagerID                *string  `json:"manager_id,omitempty"`
	IsActive                 *bool    `json:"is_active,omitempty"`
	Timezone                 *string  `json:"timezone,omitempty"`
}

func (r *UpdateSiteRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.ID) {
		errs.Add("id", "id must be a valid UUID")
	}
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}
	if r.Address != nil && validator.IsEmpty(*r.Address) {
		errs.Add("address", "address must not be empty")
	}

	validateSiteFields(&errs, r.Latitude, r.Longitude, r.GeofenceRadius,
		r.AllowedHoursStart, r.AllowedHoursEnd, r.VarianceThresholdPercent, r.ManagerID, r.Timezone)

	return errs.Err()
}

func validateSiteFields(errs *validator.ValidationErrors, lat, lon *float64, radius *int, start, end *string, threshold *float64, managerID, tz *string) {
	if (lat == nil) != (lon == nil) {
		errs.Add("latitude", "latitude and longitude must be provided together")
	}
	if lat != nil && !validator.IsValidLatitude(*lat) {
		errs.Add("latitude", "latitude must be between -90 and 90")
	}
	if lon != nil && !validator.IsValidLongitude(*lon) {
		errs.Add("longitude", "longitude must be between -180 and 180")
	}
	if radius != nil && *radius <= 0 {
		errs.Add("geofence_radius", "geofence_radius must be greater than 0")
	}
	if (start == nil) != (end == nil) {
		errs.Add("allowed_hours", "allowed_hours_start and allowed_hours_end must be provided together")
	}
	if start != nil && *start != "" && !validator.IsValidClock(*start) {
		errs.Add("allowed_hours_start", "allowed_hours_start must be in HH:MM format")
	}
	if end != nil && *end != "" && !validator.IsValidClock(*end) {
		errs.Add("allowed_hours_end", "allowed_hours_end must be in HH:MM format")
	}
	if threshold != nil && (*threshold < 0 || *threshold > 100) {
		errs.Add("variance_threshold_percent", "variance_threshold_percent must be between 0 and 100")
	}
	if managerID != nil && *managerID != "" && !validator.IsValidUUID(*managerID) {
		errs.Add("manager_id", "manager_id must be a valid UUID")
	}
	if tz != nil && !validator.IsValidTimezone(*tz) {
		errs.Add("timezone", "timezone must be a valid IANA time zone")
	}
}

type SiteFilter struct {
	IsActive  *bool   `json:"is_active,omitempty"`
	ManagerID *string `json:"manager_id,omitempty"`
	Search    *string `json:"search,omitempty"`
}

type GeocodeRequest struct {
	Address string `json:"address"`
}

func (r *GeocodeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Address) {
		errs.Add("address", "address is required")
	} else if len(r.Address) > 500 {
		errs.Add("address", "address must not exceed 500 characters")
	}

	return errs.Err()
}

type GeocodeResponse struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type SiteResponse struct {
	ID                       string   `json:"id"`
	Name                     string   `json:"name"`
	Address                  string   `json:"address"`
	Latitude                 *float64 `json:"latitude"`
	Longitude                *float64 `json:"longitude"`
	GeofenceRadius           int      `json:"geofence_radius"`
	AllowedHoursStart        *string  `json:"allowed_hours_start"`
	AllowedHoursEnd          *string  `json:"allowed_hours_end"`
	VarianceThresholdPercent float64  `json:"variance_threshold_percent"`
	ManagerID                *string  `json:"manager_id"`
	ManagerName              *string  `json:"manager_name,omitempty"`
	IsActive                 bool     `json:"is_active"`
	Timezone                 string   `json:"timezone"`
	CreatedAt                string   `json:"created_at"`
	UpdatedAt                string   `json:"updated_at"`
}

func ToResponse(s Site) SiteResponse {
	return SiteResponse{
		ID:                       s.ID,
		Name:                     s.Name,
		Address:                  s.Address,
		Latitude:                 s.Latitude,
		Longitude:                s.Longitude,
		GeofenceRadius:           s.Radius(),
		AllowedHoursStart:        s.AllowedHoursStart,
		AllowedHoursEnd:          s.AllowedHoursEnd,
		VarianceThresholdPercent: s.VarianceThresholdPercent,
		ManagerID:                s.ManagerID,
		ManagerName:              s.ManagerName,
		IsActive:                 s.IsActive,
		Timezone:                 s.Timezone,
		CreatedAt:                s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:                s.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
