package onsite

import "context"

type PhotoRepository interface {
	Create(ctx context.Context, p SitePhoto) (SitePhoto, error)
	ListBySite(ctx context.Context, siteID string) ([]SitePhoto, error)
}

type MessageRepository interface {
	Create(ctx context.Context, m SiteMessage) (SiteMessage, error)
	GetByID(ctx context.Context, id string) (SiteMessage, error)
	List(ctx context.Context, filter MessageFilter) ([]SiteMessage, error)
	Resolve(ctx context.Context, m SiteMessage) (SiteMessage, error)
}
