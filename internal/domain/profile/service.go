package profile

import (
	"context"

	"github.com/timeguard/timeguard-api/internal/pkg/session"
)

type ProfileService interface {
	GetMe(ctx context.Context, sess session.Session) (ProfileResponse, error)
	UpdateMe(ctx context.Context, sess session.Session, req UpdateMeRequest) (ProfileResponse, error)

	// List, Update and Delete are admin operations; managers may List.
	List(ctx context.Context, sess session.Session, filter ProfileFilter) (ListProfileResponse, error)
	Update(ctx context.Context, sess session.Session, req UpdateProfileRequest) (ProfileResponse, error)
	Delete(ctx context.Context, sess session.Session, id string) error
}
