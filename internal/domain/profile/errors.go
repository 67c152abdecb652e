package profile

import "errors"

var (
	ErrProfileNotFound         = errors.New("profile not found")
	ErrEmailExists             = errors.New("email already registered")
	ErrAdminAccessRequired     = errors.New("admin access required")
	ErrManagerAccessRequired   = errors.New("manager access required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrCannotModifySelf        = errors.New("admins cannot change their own role or delete themselves")
	ErrProfileNotPending       = errors.New("profile is not pending approval")
)
