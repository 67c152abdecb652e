package invitation

import "errors"

var (
	ErrInvitationNotFound     = errors.New("invitation not found")
	ErrInvitationExpired      = errors.New("invitation has expired")
	ErrInvitationAlreadyUsed  = errors.New("invitation has already been used")
	ErrInvitationRevoked      = errors.New("invitation has been revoked")
	ErrEmailMismatch          = errors.New("your email does not match the invitation email")
	ErrEmailAlreadyRegistered = errors.New("email is already registered")
	ErrNoPendingInvitation    = errors.New("no pending invitation found for this email")
)
