package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/domain/site"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
	"github.com/timeguard/timeguard-api/internal/pkg/variance"
)

// Defaults fill in fields a create request leaves out.
type Defaults struct {
	RadiusMeters int
	Timezone     string
}

type SiteServiceImpl struct {
	sites    site.SiteRepository
	profiles profile.ProfileRepository
	geocoder site.Geocoder // nil when geocoding is not configured
	defaults Defaults
	now      func() time.Time
}

func NewSiteService(siteRepo site.SiteRepository, profileRepo profile.ProfileRepository, geocoder site.Geocoder, defaults Defaults) site.SiteService {
	if defaults.Timezone == "" {
		defaults.Timezone = "UTC"
	}
	return &SiteServiceImpl{
		sites:    siteRepo,
		profiles: profileRepo,
		geocoder: geocoder,
		defaults: defaults,
		now:      time.Now,
	}
}

// Create implements site.SiteService.
func (s *SiteServiceImpl) Create(ctx context.Context, sess session.Session, req site.CreateSiteRequest) (site.SiteResponse, error) {
	if !sess.IsAdmin() {
		return site.SiteResponse{}, profile.ErrAdminAccessRequired
	}
	if err := req.Validate(); err != nil {
		return site.SiteResponse{}, err
	}

	newSite := site.Site{
		Name:                     strings.TrimSpace(req.Name),
		Address:                  strings.TrimSpace(req.Address),
		Latitude:                 req.Latitude,
		Longitude:                req.Longitude,
		GeofenceRadius:           s.defaults.RadiusMeters,
		AllowedHoursStart:        req.AllowedHoursStart,
		AllowedHoursEnd:          req.AllowedHoursEnd,
		VarianceThresholdPercent: variance.DefaultThresholdPercent,
		IsActive:                 true,
		Timezone:                 s.defaults.Timezone,
	}
	if req.GeofenceRadius != nil {
		newSite.GeofenceRadius = *req.GeofenceRadius
	}
	if req.VarianceThresholdPercent != nil {
		newSite.VarianceThresholdPercent = *req.VarianceThresholdPercent
	}
	if req.IsActive != nil {
		newSite.IsActive = *req.IsActive
	}
	if req.Timezone != nil {
		newSite.Timezone = *req.Timezone
	}
	if req.ManagerID != nil && *req.ManagerID != "" {
		if err := s.checkManager(ctx, *req.ManagerID); err != nil {
			return site.SiteResponse{}, err
		}
		newSite.ManagerID = req.ManagerID
	}
	if !newSite.IsGeocoded() {
		s.tryGeocode(ctx, &newSite)
	}

	created, err := s.sites.Create(ctx, newSite)
	if err != nil {
		return site.SiteResponse{}, err
	}
	slog.Info("Site created", "site_id", created.ID, "geocoded", created.IsGeocoded())
	return site.ToResponse(created), nil
}

// Update implements site.SiteService.
func (s *SiteServiceImpl) Update(ctx context.Context, sess session.Session, req site.UpdateSiteRequest) (site.SiteResponse, error) {
	if !sess.IsAdmin() {
		return site.SiteResponse{}, profile.ErrAdminAccessRequired
	}
	if err := req.Validate(); err != nil {
		return site.SiteResponse{}, err
	}

	existing, err := s.sites.GetByID(ctx, req.ID)
	if err != nil {
		return site.SiteResponse{}, err
	}

	addressChanged := false
	if req.Name != nil {
		existing.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil && strings.TrimSpace(*req.Address) != existing.Address {
		existing.Address = strings.TrimSpace(*req.Address)
		addressChanged = true
	}
	if req.Latitude != nil && req.Longitude != nil {
		existing.Latitude, existing.Longitude = req.Latitude, req.Longitude
	} else if addressChanged {
		existing.Latitude, existing.Longitude = nil, nil
		s.tryGeocode(ctx, &existing)
	}
	if req.GeofenceRadius != nil {
		existing.GeofenceRadius = *req.GeofenceRadius
	}
	if req.AllowedHoursStart != nil && req.AllowedHoursEnd != nil {
		// an empty pair lifts the restriction
		if *req.AllowedHoursStart == "" || *req.AllowedHoursEnd == "" {
			existing.AllowedHoursStart, existing.AllowedHoursEnd = nil, nil
		} else {
			existing.AllowedHoursStart, existing.AllowedHoursEnd = req.AllowedHoursStart, req.AllowedHoursEnd
		}
	}
	if req.VarianceThresholdPercent != nil {
		existing.VarianceThresholdPercent = *req.VarianceThresholdPercent
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	if req.Timezone != nil {
		existing.Timezone = *req.Timezone
	}
	if req.ManagerID != nil {
		if *req.ManagerID == "" {
			existing.ManagerID = nil
		} else {
			if err := s.checkManager(ctx, *req.ManagerID); err != nil {
				return site.SiteResponse{}, err
			}
			existing.ManagerID = req.ManagerID
		}
	}

	updated, err := s.sites.Update(ctx, existing)
	if err != nil {
		return site.SiteResponse{}, err
	}
	return site.ToResponse(updated), nil
}

// Get implements site.SiteService.
func (s *SiteServiceImpl) Get(ctx context.Context, sess session.Session, id string) (site.SiteResponse, error) {
	if !sess.IsManager() {
		assigned, err := s.sites.ListAssigned(ctx, sess.UserID, s.now())
		if err != nil {
			return site.SiteResponse{}, fmt.Errorf("failed to list assigned sites: %w", err)
		}
		for _, a := range assigned {
			if a.ID == id {
				return site.ToResponse(a), nil
			}
		}
		return site.SiteResponse{}, site.ErrSiteNotFound
	}

	found, err := s.sites.GetByID(ctx, id)
	if err != nil {
		return site.SiteResponse{}, err
	}
	return site.ToResponse(found), nil
}

// List implements site.SiteService.
func (s *SiteServiceImpl) List(ctx context.Context, sess session.Session, filter site.SiteFilter) ([]site.SiteResponse, error) {
	var sites []site.Site
	var err error
	if sess.IsManager() {
		sites, err = s.sites.List(ctx, filter)
	} else {
		sites, err = s.sites.ListAssigned(ctx, sess.UserID, s.now())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}

	resp := make([]site.SiteResponse, 0, len(sites))
	for _, st := range sites {
		if !sess.IsManager() && !st.IsActive {
			continue
		}
		resp = append(resp, site.ToResponse(st))
	}
	return resp, nil
}

// Delete implements site.SiteService.
func (s *SiteServiceImpl) Delete(ctx context.Context, sess session.Session, id string) error {
	if !sess.IsAdmin() {
		return profile.ErrAdminAccessRequired
	}
	return s.sites.Delete(ctx, id)
}

// Geocode implements site.SiteService.
func (s *SiteServiceImpl) Geocode(ctx context.Context, sess session.Session, req site.GeocodeRequest) (site.GeocodeResponse, error) {
	if !sess.IsManager() {
		return site.GeocodeResponse{}, profile.ErrManagerAccessRequired
	}
	if err := req.Validate(); err != nil {
		return site.GeocodeResponse{}, err
	}
	if s.geocoder == nil {
		return site.GeocodeResponse{}, site.ErrGeocoderDisabled
	}

	lat, lon, err := s.geocoder.Geocode(ctx, req.Address)
	if err != nil {
		slog.Warn("Geocoding failed", "address", req.Address, "error", err)
		return site.GeocodeResponse{}, fmt.Errorf("%w: %v", site.ErrGeocodeFailed, err)
	}
	return site.GeocodeResponse{Address: req.Address, Latitude: lat, Longitude: lon}, nil
}

// tryGeocode fills coordinates from the address. Failures leave the site
// without coordinates; clock-in then reports it as not configured.
func (s *SiteServiceImpl) tryGeocode(ctx context.Context, st *site.Site) {
	if s.geocoder == nil || st.Address == "" {
		return
	}
	lat, lon, err := s.geocoder.Geocode(ctx, st.Address)
	if err != nil {
		slog.Warn("Site address could not be geocoded", "address", st.Address, "error", err)
		return
	}
	st.Latitude, st.Longitude = &lat, &lon
}

func (s *SiteServiceImpl) checkManager(ctx context.Context, managerID string) error {
	m, err := s.profiles.GetByID(ctx, managerID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return site.ErrInvalidManager
		}
		return fmt.Errorf("failed to get manager: %w", err)
	}
	if !m.IsManager() || !m.IsApproved() {
		return site.ErrInvalidManager
	}
	return nil
}
