package site

import "errors"

var (
	ErrSiteNotFound     = errors.New("site not found")
	ErrSiteInactive     = errors.New("site is not active")
	ErrSiteNotGeocoded  = errors.New("site location not configured")
	ErrSiteNameExists   = errors.New("a site with this name already exists")
	ErrInvalidManager   = errors.New("site manager must be an approved manager or admin")
	ErrGeocodeFailed    = errors.New("unable to geocode address")
	ErrGeocoderDisabled = errors.New("geocoding is not configured")
)
