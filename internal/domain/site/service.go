package site

import (
	"context"

	"github.com/timeguard/timeguard-api/internal/pkg/session"
)

type SiteService interface {
	Create(ctx context.Context, sess session.Session, req CreateSiteRequest) (SiteResponse, error)
	Update(ctx context.Context, sess session.Session, req UpdateSiteRequest) (SiteResponse, error)
	Get(ctx context.Context, sess session.Session, id string) (SiteResponse, error)

	// List returns all sites for managers and admins and only assigned sites for employees.
	List(ctx context.Context, sess session.Session, filter SiteFilter) ([]SiteResponse, error)
	Delete(ctx context.Context, sess session.Session, id string) error

	Geocode(ctx context.Context, sess session.Session, req GeocodeRequest) (GeocodeResponse, error)
}
