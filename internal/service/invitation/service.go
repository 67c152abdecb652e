package invitation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/timeguard/timeguard-api/internal/config"
	"github.com/timeguard/timeguard-api/internal/domain/invitation"
	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/pkg/database"
	"github.com/timeguard/timeguard-api/internal/pkg/email"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
	"golang.org/x/crypto/bcrypt"
)

type InvitationServiceImpl struct {
	tx          database.Transactor
	invitations invitation.InvitationRepository
	profiles    profile.ProfileRepository
	email       email.EmailService
	cfg         config.InvitationConfig
	loginURL    string
	now         func() time.Time
}

func NewInvitationService(
	tx database.Transactor,
	invitationRepo invitation.InvitationRepository,
	profileRepo profile.ProfileRepository,
	emailService email.EmailService,
	cfg config.InvitationConfig,
	loginURL string,
) invitation.InvitationService {
	if cfg.ExpiryDays <= 0 {
		cfg.ExpiryDays = invitation.DefaultExpiryDays
	}
	return &InvitationServiceImpl{
		tx:          tx,
		invitations: invitationRepo,
		profiles:    profileRepo,
		email:       emailService,
		cfg:         cfg,
		loginURL:    loginURL,
		now:         time.Now,
	}
}

// Invite implements invitation.InvitationService.
func (s *InvitationServiceImpl) Invite(ctx context.Context, sess session.Session, req invitation.CreateRequest) (invitation.InvitationResponse, error) {
	if !sess.IsAdmin() {
		return invitation.InvitationResponse{}, profile.ErrAdminAccessRequired
	}
	if err := req.Validate(); err != nil {
		return invitation.InvitationResponse{}, err
	}
	if err := s.ensureNotRegistered(ctx, req.Email); err != nil {
		return invitation.InvitationResponse{}, err
	}

	inv := invitation.Invitation{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      session.Role(req.Role),
		InvitedBy: sess.UserID,
	}
	return s.issue(ctx, sess, inv)
}

// Resend implements invitation.InvitationService.
func (s *InvitationServiceImpl) Resend(ctx context.Context, sess session.Session, req invitation.ResendRequest) (invitation.InvitationResponse, error) {
	if !sess.IsAdmin() {
		return invitation.InvitationResponse{}, profile.ErrAdminAccessRequired
	}
	if err := req.Validate(); err != nil {
		return invitation.InvitationResponse{}, err
	}

	prev, err := s.invitations.GetLatestPendingByEmail(ctx, req.Email)
	if err != nil {
		return invitation.InvitationResponse{}, err
	}

	inv := invitation.Invitation{
		Email:     prev.Email,
		FirstName: prev.FirstName,
		LastName:  prev.LastName,
		Role:      prev.Role,
		InvitedBy: sess.UserID,
	}
	return s.issue(ctx, sess, inv)
}

// issue revokes any pending invitation for the email, stores a fresh one and mails it.
func (s *InvitationServiceImpl) issue(ctx context.Context, sess session.Session, inv invitation.Invitation) (invitation.InvitationResponse, error) {
	inv.Token = uuid.New().String()
	inv.Status = invitation.StatusPending
	inv.ExpiresAt = s.now().UTC().AddDate(0, 0, s.cfg.ExpiryDays)

	var created invitation.Invitation
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		revoked, err := s.invitations.RevokePendingByEmail(txCtx, inv.Email)
		if err != nil {
			return fmt.Errorf("failed to revoke pending invitations: %w", err)
		}
		if revoked > 0 {
			slog.Info("Revoked pending invitations", "email", inv.Email, "count", revoked)
		}

		created, err = s.invitations.Create(txCtx, inv)
		if err != nil {
			return fmt.Errorf("failed to create invitation: %w", err)
		}
		return nil
	})
	if err != nil {
		return invitation.InvitationResponse{}, err
	}

	inviterName := "Admin"
	if inviter, err := s.profiles.GetByID(ctx, sess.UserID); err == nil && inviter.FullName() != "" {
		inviterName = inviter.FullName()
	}

	// The invitation stays valid when mail delivery fails; it can be resent.
	if err := s.email.SendInvitation(ctx, email.InvitationEmail{
		To:             created.Email,
		FirstName:      created.FirstName,
		InviterName:    inviterName,
		Role:           string(created.Role),
		InvitationLink: s.invitationLink(created),
		ExpiresAt:      created.ExpiresAt.Format("January 2, 2006"),
	}); err != nil {
		slog.Warn("Failed to send invitation email", "invitation_id", created.ID, "error", err)
	}

	return invitation.ToResponse(created), nil
}

func (s *InvitationServiceImpl) invitationLink(inv invitation.Invitation) string {
	q := url.Values{}
	q.Set("token", inv.Token)
	q.Set("email", inv.Email)
	return s.cfg.BaseURL + "?" + q.Encode()
}

// Validate implements invitation.InvitationService.
func (s *InvitationServiceImpl) Validate(ctx context.Context, req invitation.ValidateRequest) (invitation.InvitationResponse, error) {
	if err := req.Validate(); err != nil {
		return invitation.InvitationResponse{}, err
	}
	inv, err := s.usableInvitation(ctx, req.Token, req.Email)
	if err != nil {
		return invitation.InvitationResponse{}, err
	}
	return invitation.ToResponse(inv), nil
}

func (s *InvitationServiceImpl) usableInvitation(ctx context.Context, token, emailAddr string) (invitation.Invitation, error) {
	inv, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		return invitation.Invitation{}, err
	}
	if inv.Email != emailAddr {
		return invitation.Invitation{}, invitation.ErrEmailMismatch
	}
	switch inv.Status {
	case invitation.StatusAccepted:
		return invitation.Invitation{}, invitation.ErrInvitationAlreadyUsed
	case invitation.StatusRevoked:
		return invitation.Invitation{}, invitation.ErrInvitationRevoked
	}
	if inv.IsExpired(s.now()) {
		return invitation.Invitation{}, invitation.ErrInvitationExpired
	}
	return inv, nil
}

// Enroll implements invitation.InvitationService.
func (s *InvitationServiceImpl) Enroll(ctx context.Context, req invitation.EnrollRequest) (invitation.EnrollmentResponse, error) {
	if err := req.Validate(); err != nil {
		return invitation.EnrollmentResponse{}, err
	}

	inv, err := s.usableInvitation(ctx, req.Token, req.Email)
	if err != nil {
		return invitation.EnrollmentResponse{}, err
	}
	if err := s.ensureNotRegistered(ctx, inv.Email); err != nil {
		return invitation.EnrollmentResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return invitation.EnrollmentResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}
	hashed := string(hash)

	var created profile.Profile
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.invitations.MarkAccepted(txCtx, inv.ID); err != nil {
			return err
		}

		created, err = s.profiles.Create(txCtx, profile.Profile{
			Email:              inv.Email,
			FirstName:          inv.FirstName,
			LastName:           inv.LastName,
			PhoneNumber:        req.PhoneNumber,
			MailingAddress:     req.MailingAddress,
			Role:               inv.Role,
			WorkHours:          profile.DefaultWorkHours,
			RegistrationStatus: profile.StatusPending,
			PasswordHash:       &hashed,
		})
		if err != nil {
			if errors.Is(err, profile.ErrEmailExists) {
				return invitation.ErrEmailAlreadyRegistered
			}
			return fmt.Errorf("failed to create profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return invitation.EnrollmentResponse{}, err
	}

	slog.Info("Enrollment submitted", "profile_id", created.ID, "invitation_id", inv.ID)
	return toEnrollment(created), nil
}

// ListPendingEnrollments implements invitation.InvitationService.
func (s *InvitationServiceImpl) ListPendingEnrollments(ctx context.Context, sess session.Session) ([]invitation.EnrollmentResponse, error) {
	if !sess.IsAdmin() {
		return nil, profile.ErrAdminAccessRequired
	}

	status := string(profile.StatusPending)
	profiles, _, err := s.profiles.List(ctx, profile.ProfileFilter{Status: &status, Page: 1, Limit: 100})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending enrollments: %w", err)
	}

	resp := make([]invitation.EnrollmentResponse, 0, len(profiles))
	for _, p := range profiles {
		resp = append(resp, toEnrollment(p))
	}
	return resp, nil
}

// ApproveEnrollment implements invitation.InvitationService.
func (s *InvitationServiceImpl) ApproveEnrollment(ctx context.Context, sess session.Session, profileID string) (invitation.EnrollmentResponse, error) {
	p, err := s.decide(ctx, sess, profileID, profile.StatusApproved)
	if err != nil {
		return invitation.EnrollmentResponse{}, err
	}

	if err := s.email.SendEnrollmentApproved(ctx, email.EnrollmentApprovedEmail{
		To:        p.Email,
		FirstName: p.FirstName,
		LoginLink: s.loginURL,
	}); err != nil {
		slog.Warn("Failed to send approval email", "profile_id", p.ID, "error", err)
	}

	return toEnrollment(p), nil
}

// RejectEnrollment implements invitation.InvitationService.
func (s *InvitationServiceImpl) RejectEnrollment(ctx context.Context, sess session.Session, profileID string) (invitation.EnrollmentResponse, error) {
	p, err := s.decide(ctx, sess, profileID, profile.StatusRejected)
	if err != nil {
		return invitation.EnrollmentResponse{}, err
	}
	return toEnrollment(p), nil
}

func (s *InvitationServiceImpl) decide(ctx context.Context, sess session.Session, profileID string, status profile.RegistrationStatus) (profile.Profile, error) {
	if !sess.IsAdmin() {
		return profile.Profile{}, profile.ErrAdminAccessRequired
	}

	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return profile.Profile{}, err
	}
	if p.RegistrationStatus != profile.StatusPending {
		return profile.Profile{}, profile.ErrProfileNotPending
	}

	updated, err := s.profiles.UpdateStatus(ctx, profileID, status)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("failed to update registration status: %w", err)
	}
	slog.Info("Enrollment decided", "profile_id", profileID, "status", status, "by", sess.UserID)
	return updated, nil
}

func (s *InvitationServiceImpl) ensureNotRegistered(ctx context.Context, emailAddr string) error {
	_, err := s.profiles.GetByEmail(ctx, emailAddr)
	if err == nil {
		return invitation.ErrEmailAlreadyRegistered
	}
	if errors.Is(err, profile.ErrProfileNotFound) {
		return nil
	}
	return fmt.Errorf("failed to check email: %w", err)
}

func toEnrollment(p profile.Profile) invitation.EnrollmentResponse {
	return invitation.EnrollmentResponse{
		ProfileID:          p.ID,
		Email:              p.Email,
		FullName:           p.FullName(),
		Role:               string(p.Role),
		RegistrationStatus: string(p.RegistrationStatus),
		CreatedAt:          p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
