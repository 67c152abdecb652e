package invitation

import (
	"context"
)

type InvitationRepository interface {
	Create(ctx context.Context, inv Invitation) (Invitation, error)
	GetByToken(ctx context.Context, token string) (Invitation, error)

	// GetLatestPendingByEmail returns the newest pending invitation for email.
	GetLatestPendingByEmail(ctx context.Context, email string) (Invitation, error)

	// RevokePendingByEmail revokes every pending invitation for email and returns how many were revoked.
	RevokePendingByEmail(ctx context.Context, email string) (int64, error)

	MarkAccepted(ctx context.Context, id string) error
}
