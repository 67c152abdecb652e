package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/timeguard/timeguard-api/internal/domain/site"
	"github.com/timeguard/timeguard-api/internal/pkg/database"
)

const siteSelect = `
	SELECT
		s.id, s.name, s.address, s.latitude, s.longitude, s.geofence_radius,
		s.allowed_hours_start, s.allowed_hours_end, s.variance_threshold_percent,
		s.manager_id, s.is_active, s.timezone, s.created_at, s.updated_at,
		NULLIF(TRIM(m.first_name || ' ' || m.last_name), '') AS manager_name
	FROM sites s
	LEFT JOIN profiles m ON m.id = s.manager_id
`

type siteRepositoryImpl struct {
	db *database.DB
}

// NewSiteRepository creates a new site repository instance
func NewSiteRepository(db *database.DB) site.SiteRepository {
	return &siteRepositoryImpl{db: db}
}

func scanSite(row pgx.Row) (site.Site, error) {
	var s site.Site
	err := row.Scan(
		&s.ID, &s.Name, &s.Address, &s.Latitude, &s.Longitude, &s.GeofenceRadius,
		&s.AllowedHoursStart, &s.AllowedHoursEnd, &s.VarianceThresholdPercent,
		&s.ManagerID, &s.IsActive, &s.Timezone, &s.CreatedAt, &s.UpdatedAt,
		&s.ManagerName,
	)
	return s, err
}

func collectSites(rows pgx.Rows) ([]site.Site, error) {
	defer rows.Close()

	var sites []site.Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, s)
	}
	return sites, rows.Err()
}

// Create implements site.SiteRepository.
func (r *siteRepositoryImpl) Create(ctx context.Context, s site.Site) (site.Site, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID(s.ID)
	if err != nil {
		return site.Site{}, err
	}

	_, err = q.Exec(ctx, `
		INSERT INTO sites (
			id, name, address, latitude, longitude, geofence_radius, allowed_hours_start,
			allowed_hours_end, variance_threshold_percent, manager_id, is_active, timezone
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		id, s.Name, s.Address, s.Latitude, s.Longitude, s.Radius(), s.AllowedHoursStart,
		s.AllowedHoursEnd, s.VarianceThresholdPercent, s.ManagerID, s.IsActive, s.Timezone,
	)
	if err != nil {
		if isUniqueViolation(err, "sites_name_key") {
			return site.Site{}, site.ErrSiteNameExists
		}
		return site.Site{}, fmt.Errorf("failed to create site: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID implements site.SiteRepository.
func (r *siteRepositoryImpl) GetByID(ctx context.Context, id string) (site.Site, error) {
	q := GetQuerier(ctx, r.db)

	s, err := scanSite(q.QueryRow(ctx, siteSelect+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return site.Site{}, site.ErrSiteNotFound
		}
		return site.Site{}, fmt.Errorf("failed to get site by id: %w", err)
	}
	return s, nil
}

// Update implements site.SiteRepository.
func (r *siteRepositoryImpl) Update(ctx context.Context, s site.Site) (site.Site, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE sites SET
			name = $2, address = $3, latitude = $4, longitude = $5, geofence_radius = $6,
			allowed_hours_start = $7, allowed_hours_end = $8, variance_threshold_percent = $9,
			manager_id = $10, is_active = $11, timezone = $12, updated_at = NOW()
		WHERE id = $1
	`,
		s.ID, s.Name, s.Address, s.Latitude, s.Longitude, s.Radius(), s.AllowedHoursStart,
		s.AllowedHoursEnd, s.VarianceThresholdPercent, s.ManagerID, s.IsActive, s.Timezone,
	)
	if err != nil {
		if isUniqueViolation(err, "sites_name_key") {
			return site.Site{}, site.ErrSiteNameExists
		}
		return site.Site{}, fmt.Errorf("failed to update site: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return site.Site{}, site.ErrSiteNotFound
	}

	return r.GetByID(ctx, s.ID)
}

// Delete implements site.SiteRepository.
func (r *siteRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM sites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return site.ErrSiteNotFound
	}
	return nil
}

// List implements site.SiteRepository.
func (r *siteRepositoryImpl) List(ctx context.Context, filter site.SiteFilter) ([]site.Site, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("s.is_active = $%d", argIdx))
		args = append(args, *filter.IsActive)
		argIdx++
	}
	if filter.ManagerID != nil && *filter.ManagerID != "" {
		conditions = append(conditions, fmt.Sprintf("s.manager_id = $%d", argIdx))
		args = append(args, *filter.ManagerID)
		argIdx++
	}
	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(s.name ILIKE $%d OR s.address ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+*filter.Search+"%")
	}

	query := siteSelect + " WHERE " + strings.Join(conditions, " AND ") + " ORDER BY s.name ASC"
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	return collectSites(rows)
}

// ListAssigned implements site.SiteRepository.
func (r *siteRepositoryImpl) ListAssigned(ctx context.Context, employeeID string, date time.Time) ([]site.Site, error) {
	q := GetQuerier(ctx, r.db)

	query := siteSelect + `
		JOIN employee_sites es ON es.site_id = s.id
		WHERE es.employee_id = $1
		  AND (es.start_date IS NULL OR es.start_date <= $2::date)
		  AND (es.end_date IS NULL OR es.end_date >= $2::date)
		ORDER BY s.name ASC
	`
	rows, err := q.Query(ctx, query, employeeID, date.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned sites: %w", err)
	}
	return collectSites(rows)
}
