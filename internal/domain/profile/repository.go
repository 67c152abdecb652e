package profile

import "context"

type ProfileRepository interface {
	Create(ctx context.Context, p Profile) (Profile, error)
	GetByID(ctx context.Context, id string) (Profile, error)
	GetByEmail(ctx context.Context, email string) (Profile, error)

	// Update persists every mutable column of p.
	Update(ctx context.Context, p Profile) (Profile, error)
	UpdateStatus(ctx context.Context, id string, status RegistrationStatus) (Profile, error)
	LinkGoogleID(ctx context.Context, id string, googleID string) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filter ProfileFilter) ([]Profile, int64, error)
}
