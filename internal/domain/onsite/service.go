package onsite

import (
	"context"

	"github.com/timeguard/timeguard-api/internal/pkg/session"
)

type OnsiteService interface {
	UploadPhoto(ctx context.Context, sess session.Session, req UploadPhotoRequest) (PhotoResponse, error)
	ListPhotos(ctx context.Context, sess session.Session, siteID string) ([]PhotoResponse, error)

	// SendMessage fails with ErrNoSiteManager when the site has no manager.
	SendMessage(ctx context.Context, sess session.Session, req SendMessageRequest) (MessageResponse, error)
	ListMessages(ctx context.Context, sess session.Session, filter MessageFilter) ([]MessageResponse, error)
	ResolveMessage(ctx context.Context, sess session.Session, id string) (MessageResponse, error)
}
