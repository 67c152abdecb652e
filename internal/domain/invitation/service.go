package invitation

import (
	"context"

	"github.com/timeguard/timeguard-api/internal/pkg/session"
)

type InvitationService interface {
	// Invite creates an invitation and emails the enrollment link.
	Invite(ctx context.Context, sess session.Session, req CreateRequest) (InvitationResponse, error)

	// Resend revokes older pending invitations for the email and sends a fresh token.
	Resend(ctx context.Context, sess session.Session, req ResendRequest) (InvitationResponse, error)

	// Validate checks a token/email pair from the enrollment link (public).
	Validate(ctx context.Context, req ValidateRequest) (InvitationResponse, error)

	// Enroll creates a pending profile for an invitation (public).
	Enroll(ctx context.Context, req EnrollRequest) (EnrollmentResponse, error)

	ListPendingEnrollments(ctx context.Context, sess session.Session) ([]EnrollmentResponse, error)
	ApproveEnrollment(ctx context.Context, sess session.Session, profileID string) (EnrollmentResponse, error)
	RejectEnrollment(ctx context.Context, sess session.Session, profileID string) (EnrollmentResponse, error)
}
