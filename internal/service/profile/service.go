package profile

import (
	"context"
	"fmt"
	"math"

	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
)

type ProfileServiceImpl struct {
	profile.ProfileRepository
}

func NewProfileService(profileRepository profile.ProfileRepository) profile.ProfileService {
	return &ProfileServiceImpl{ProfileRepository: profileRepository}
}

// GetMe implements profile.ProfileService.
func (s *ProfileServiceImpl) GetMe(ctx context.Context, sess session.Session) (profile.ProfileResponse, error) {
	p, err := s.ProfileRepository.GetByID(ctx, sess.UserID)
	if err != nil {
		return profile.ProfileResponse{}, err
	}
	return profile.ToResponse(p), nil
}

// UpdateMe implements profile.ProfileService.
func (s *ProfileServiceImpl) UpdateMe(ctx context.Context, sess session.Session, req profile.UpdateMeRequest) (profile.ProfileResponse, error) {
	if err := req.Validate(); err != nil {
		return profile.ProfileResponse{}, err
	}

	p, err := s.ProfileRepository.GetByID(ctx, sess.UserID)
	if err != nil {
		return profile.ProfileResponse{}, err
	}

	if req.PhoneNumber != nil {
		p.PhoneNumber = emptyToNil(*req.PhoneNumber)
	}
	if req.MailingAddress != nil {
		p.MailingAddress = emptyToNil(*req.MailingAddress)
	}
	if req.GPSTrackingEnabled != nil {
		p.GPSTrackingEnabled = *req.GPSTrackingEnabled
	}

	updated, err := s.ProfileRepository.Update(ctx, p)
	if err != nil {
		return profile.ProfileResponse{}, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile.ToResponse(updated), nil
}

// List implements profile.ProfileService.
func (s *ProfileServiceImpl) List(ctx context.Context, sess session.Session, filter profile.ProfileFilter) (profile.ListProfileResponse, error) {
	if !sess.IsManager() {
		return profile.ListProfileResponse{}, profile.ErrManagerAccessRequired
	}
	if err := filter.Validate(); err != nil {
		return profile.ListProfileResponse{}, err
	}

	profiles, total, err := s.ProfileRepository.List(ctx, filter)
	if err != nil {
		return profile.ListProfileResponse{}, fmt.Errorf("failed to list profiles: %w", err)
	}

	resp := profile.ListProfileResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Profiles:   make([]profile.ProfileResponse, 0, len(profiles)),
	}
	for _, p := range profiles {
		resp.Profiles = append(resp.Profiles, profile.ToResponse(p))
	}
	return resp, nil
}

// Update implements profile.ProfileService.
func (s *ProfileServiceImpl) Update(ctx context.Context, sess session.Session, req profile.UpdateProfileRequest) (profile.ProfileResponse, error) {
	if !sess.IsAdmin() {
		return profile.ProfileResponse{}, profile.ErrAdminAccessRequired
	}
	if err := req.Validate(); err != nil {
		return profile.ProfileResponse{}, err
	}
	if req.ID == sess.UserID && req.Role != nil && session.Role(*req.Role) != sess.Role {
		return profile.ProfileResponse{}, profile.ErrCannotModifySelf
	}

	p, err := s.ProfileRepository.GetByID(ctx, req.ID)
	if err != nil {
		return profile.ProfileResponse{}, err
	}

	if req.FirstName != nil {
		p.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		p.LastName = *req.LastName
	}
	if req.Role != nil {
		p.Role = session.Role(*req.Role)
	}
	if req.WorkHours != nil {
		p.WorkHours = *req.WorkHours
	}

	updated, err := s.ProfileRepository.Update(ctx, p)
	if err != nil {
		return profile.ProfileResponse{}, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile.ToResponse(updated), nil
}

// Delete implements profile.ProfileService.
func (s *ProfileServiceImpl) Delete(ctx context.Context, sess session.Session, id string) error {
	if !sess.IsAdmin() {
		return profile.ErrAdminAccessRequired
	}
	if id == sess.UserID {
		return profile.ErrCannotModifySelf
	}
	return s.ProfileRepository.Delete(ctx, id)
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
