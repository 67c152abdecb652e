package invitation

import (
	"time"

	"github.com/timeguard/timeguard-api/internal/pkg/session"
)

// Status represents the status of an invitation
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRevoked  Status = "revoked"
)

// DefaultExpiryDays is how long an invitation link stays valid.
const DefaultExpiryDays = 7

type Invitation struct {
	ID         string
	Email      string
	FirstName  string
	LastName   string
	Role       session.Role
	Token      string
	Status     Status
	ExpiresAt  time.Time
	InvitedBy  string
	AcceptedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsExpired checks if the invitation has expired at now.
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// CanBeAccepted checks if the invitation can be accepted
func (i *Invitation) CanBeAccepted(now time.Time) bool {
	return i.Status == StatusPending && !i.IsExpired(now)
}
