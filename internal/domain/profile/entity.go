package profile

import (
	"strings"
	"time"

	"github.com/timeguard/timeguard-api/internal/pkg/session"
)

type RegistrationStatus string

const (
	StatusPending  RegistrationStatus = "pending"  // Enrolled, waiting for admin approval
	StatusApproved RegistrationStatus = "approved" // May log in
	StatusRejected RegistrationStatus = "rejected"
)

// DefaultWorkHours is the expected daily hours for new profiles.
const DefaultWorkHours = 8.0

type Profile struct {
	ID                 string
	Email              string
	FirstName          string
	LastName           string
	PhoneNumber        *string
	MailingAddress     *string
	Role               session.Role
	WorkHours          float64
	RegistrationStatus RegistrationStatus
	PasswordHash       *string
	GoogleID           *string
	GPSTrackingEnabled bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (p *Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p *Profile) IsApproved() bool {
	return p.RegistrationStatus == StatusApproved
}

// IsManager checks if profile is manager or admin
func (p *Profile) IsManager() bool {
	return p.Role == session.RoleManager || p.Role == session.RoleAdmin
}

// Session builds the authenticated identity for this profile.
func (p *Profile) Session() session.Session {
	return session.Session{UserID: p.ID, Email: p.Email, Role: p.Role}
}
