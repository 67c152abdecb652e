package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/timeguard/timeguard-api/internal/domain/invitation"
	"github.com/timeguard/timeguard-api/internal/pkg/database"
)

const invitationColumns = `
	id, email, first_name, last_name, role, token, status, expires_at, invited_by,
	accepted_at, created_at, updated_at
`

type invitationRepositoryImpl struct {
	db *database.DB
}

// NewInvitationRepository creates a new invitation repository instance
func NewInvitationRepository(db *database.DB) invitation.InvitationRepository {
	return &invitationRepositoryImpl{db: db}
}

func scanInvitation(row pgx.Row) (invitation.Invitation, error) {
	var inv invitation.Invitation
	err := row.Scan(
		&inv.ID, &inv.Email, &inv.FirstName, &inv.LastName, &inv.Role, &inv.Token, &inv.Status,
		&inv.ExpiresAt, &inv.InvitedBy, &inv.AcceptedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	return inv, err
}

// Create implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) Create(ctx context.Context, inv invitation.Invitation) (invitation.Invitation, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID(inv.ID)
	if err != nil {
		return invitation.Invitation{}, err
	}

	query := `
		INSERT INTO invitations (id, email, first_name, last_name, role, token, status, expires_at, invited_by)
		VALUES ($1, LOWER($2), $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + invitationColumns

	created, err := scanInvitation(q.QueryRow(ctx, query,
		id, inv.Email, inv.FirstName, inv.LastName, inv.Role, inv.Token, inv.Status, inv.ExpiresAt, inv.InvitedBy,
	))
	if err != nil {
		return invitation.Invitation{}, fmt.Errorf("failed to create invitation: %w", err)
	}

	return created, nil
}

// GetByToken implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) GetByToken(ctx context.Context, token string) (invitation.Invitation, error) {
	q := GetQuerier(ctx, r.db)

	inv, err := scanInvitation(q.QueryRow(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE token = $1`, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return inv, invitation.ErrInvitationNotFound
		}
		return inv, fmt.Errorf("failed to get invitation by token: %w", err)
	}
	return inv, nil
}

// GetLatestPendingByEmail implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) GetLatestPendingByEmail(ctx context.Context, email string) (invitation.Invitation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE LOWER(email) = LOWER($1) AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1
	`

	inv, err := scanInvitation(q.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return inv, invitation.ErrNoPendingInvitation
		}
		return inv, fmt.Errorf("failed to get pending invitation: %w", err)
	}
	return inv, nil
}

// RevokePendingByEmail implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) RevokePendingByEmail(ctx context.Context, email string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE invitations SET status = 'revoked', updated_at = NOW()
		WHERE LOWER(email) = LOWER($1) AND status = 'pending'
	`, email)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke invitations: %w", err)
	}
	return tag.RowsAffected(), nil
}

// MarkAccepted implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) MarkAccepted(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE invitations SET status = 'accepted', accepted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`, id)
	if err != nil {
		return fmt.Errorf("failed to accept invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return invitation.ErrInvitationAlreadyUsed
	}
	return nil
}
