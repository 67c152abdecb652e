// Package session carries the authenticated caller through handlers and services.
package session

import (
	"context"
	"errors"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

var ErrNoSession = errors.New("no authenticated session in context")

// Session is the identity of the caller of a request. Services receive it as an
// explicit argument instead of reading claims themselves.
type Session struct {
	UserID string
	Email  string
	Role   Role
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// IsManager reports whether the caller can review team data (manager or admin).
func (s Session) IsManager() bool {
	return s.Role == RoleManager || s.Role == RoleAdmin
}

type contextKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (Session, error) {
	s, ok := ctx.Value(contextKey{}).(Session)
	if !ok || s.UserID == "" {
		return Session{}, ErrNoSession
	}
	return s, nil
}

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	switch Role(r) {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}
