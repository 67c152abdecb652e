package site

import (
	"time"

	"github.com/timeguard/timeguard-api/internal/pkg/geo"
	"github.com/timeguard/timeguard-api/internal/pkg/timewindow"
	"github.com/timeguard/timeguard-api/internal/pkg/variance"
)

const (
	DefaultAllowedHoursStart = "09:00"
	DefaultAllowedHoursEnd   = "17:00"
)

type Site struct {
	ID                       string
	Name                     string
	Address                  string
	Latitude                 *float64
	Longitude                *float64
	GeofenceRadius           int
	AllowedHoursStart        *string
	AllowedHoursEnd          *string
	VarianceThresholdPercent float64
	ManagerID                *string
	IsActive                 bool
	Timezone                 string
	CreatedAt                time.Time
	UpdatedAt                time.Time

	// Join
	ManagerName *string
}

// IsGeocoded reports whether the site has coordinates to evaluate a geofence against.
func (s *Site) IsGeocoded() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// Radius returns the configured geofence radius, or the default when unset.
func (s *Site) Radius() int {
	if s.GeofenceRadius <= 0 {
		return geo.DefaultRadiusMeters
	}
	return s.GeofenceRadius
}

// Threshold returns the variance threshold, or the default when unset.
func (s *Site) Threshold() float64 {
	if s.VarianceThresholdPercent < 0 {
		return variance.DefaultThresholdPercent
	}
	return s.VarianceThresholdPercent
}

// AllowedWindow returns the site's allowed hours. ok is false when the site
// does not restrict hours.
func (s *Site) AllowedWindow() (w timewindow.Window, ok bool, err error) {
	if s.AllowedHoursStart == nil || s.AllowedHoursEnd == nil {
		return timewindow.Window{}, false, nil
	}
	if *s.AllowedHoursStart == "" || *s.AllowedHoursEnd == "" {
		return timewindow.Window{}, false, nil
	}
	w, err = timewindow.ParseWindow(*s.AllowedHoursStart, *s.AllowedHoursEnd)
	if err != nil {
		return timewindow.Window{}, false, err
	}
	return w, true, nil
}

// Location returns the site's time zone, falling back to UTC.
func (s *Site) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
