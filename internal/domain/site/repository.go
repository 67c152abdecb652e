package site

import (
	"context"
	"time"
)

type SiteRepository interface {
	Create(ctx context.Context, s Site) (Site, error)
	GetByID(ctx context.Context, id string) (Site, error)
	Update(ctx context.Context, s Site) (Site, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter SiteFilter) ([]Site, error)

	// ListAssigned returns sites the employee is assigned to on date.
	ListAssigned(ctx context.Context, employeeID string, date time.Time) ([]Site, error)
}

// Geocoder resolves a free-form address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat float64, lon float64, err error)
}
