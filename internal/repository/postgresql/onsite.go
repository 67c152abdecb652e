package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/timeguard/timeguard-api/internal/domain/onsite"
	"github.com/timeguard/timeguard-api/internal/pkg/database"
)

type photoRepositoryImpl struct {
	db *database.DB
}

// NewPhotoRepository creates a new site photo repository instance
func NewPhotoRepository(db *database.DB) onsite.PhotoRepository {
	return &photoRepositoryImpl{db: db}
}

// Create implements onsite.PhotoRepository. PhotoURL holds the storage path.
func (r *photoRepositoryImpl) Create(ctx context.Context, p onsite.SitePhoto) (onsite.SitePhoto, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID(p.ID)
	if err != nil {
		return onsite.SitePhoto{}, err
	}

	query := `
		INSERT INTO site_photos (id, site_id, employee_id, photo_path, caption, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, site_id, employee_id, photo_path, caption, upload_date, latitude, longitude
	`

	var created onsite.SitePhoto
	err = q.QueryRow(ctx, query, id, p.SiteID, p.EmployeeID, p.PhotoURL, p.Caption, p.Latitude, p.Longitude).Scan(
		&created.ID, &created.SiteID, &created.EmployeeID, &created.PhotoURL, &created.Caption,
		&created.UploadDate, &created.Latitude, &created.Longitude,
	)
	if err != nil {
		return onsite.SitePhoto{}, fmt.Errorf("failed to create site photo: %w", err)
	}
	return created, nil
}

// ListBySite implements onsite.PhotoRepository.
func (r *photoRepositoryImpl) ListBySite(ctx context.Context, siteID string) ([]onsite.SitePhoto, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ph.id, ph.site_id, ph.employee_id, ph.photo_path, ph.caption, ph.upload_date,
			ph.latitude, ph.longitude, TRIM(p.first_name || ' ' || p.last_name)
		FROM site_photos ph
		JOIN profiles p ON p.id = ph.employee_id
		WHERE ph.site_id = $1
		ORDER BY ph.upload_date DESC
	`
	rows, err := q.Query(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list site photos: %w", err)
	}
	defer rows.Close()

	var photos []onsite.SitePhoto
	for rows.Next() {
		var p onsite.SitePhoto
		err := rows.Scan(
			&p.ID, &p.SiteID, &p.EmployeeID, &p.PhotoURL, &p.Caption, &p.UploadDate,
			&p.Latitude, &p.Longitude, &p.EmployeeName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site photo: %w", err)
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

const messageSelect = `
	SELECT
		m.id, m.site_id, m.employee_id, m.manager_id, m.message, m.status, m.created_at, m.resolved_at,
		TRIM(p.first_name || ' ' || p.last_name) AS employee_name,
		s.name AS site_name
	FROM site_messages m
	JOIN profiles p ON p.id = m.employee_id
	JOIN sites s ON s.id = m.site_id
`

type messageRepositoryImpl struct {
	db *database.DB
}

// NewMessageRepository creates a new site message repository instance
func NewMessageRepository(db *database.DB) onsite.MessageRepository {
	return &messageRepositoryImpl{db: db}
}

func scanMessage(row pgx.Row) (onsite.SiteMessage, error) {
	var m onsite.SiteMessage
	err := row.Scan(
		&m.ID, &m.SiteID, &m.EmployeeID, &m.ManagerID, &m.Message, &m.Status, &m.CreatedAt, &m.ResolvedAt,
		&m.EmployeeName, &m.SiteName,
	)
	return m, err
}

// Create implements onsite.MessageRepository.
func (r *messageRepositoryImpl) Create(ctx context.Context, m onsite.SiteMessage) (onsite.SiteMessage, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID(m.ID)
	if err != nil {
		return onsite.SiteMessage{}, err
	}

	_, err = q.Exec(ctx, `
		INSERT INTO site_messages (id, site_id, employee_id, manager_id, message, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
	`, id, m.SiteID, m.EmployeeID, m.ManagerID, m.Message)
	if err != nil {
		return onsite.SiteMessage{}, fmt.Errorf("failed to create site message: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID implements onsite.MessageRepository.
func (r *messageRepositoryImpl) GetByID(ctx context.Context, id string) (onsite.SiteMessage, error) {
	q := GetQuerier(ctx, r.db)

	m, err := scanMessage(q.QueryRow(ctx, messageSelect+` WHERE m.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return onsite.SiteMessage{}, onsite.ErrMessageNotFound
		}
		return onsite.SiteMessage{}, fmt.Errorf("failed to get site message: %w", err)
	}
	return m, nil
}

// List implements onsite.MessageRepository.
func (r *messageRepositoryImpl) List(ctx context.Context, filter onsite.MessageFilter) ([]onsite.SiteMessage, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter.SiteID != nil && *filter.SiteID != "" {
		conditions = append(conditions, fmt.Sprintf("m.site_id = $%d", argIdx))
		args = append(args, *filter.SiteID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("m.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.ManagerID != nil && *filter.ManagerID != "" {
		conditions = append(conditions, fmt.Sprintf("m.manager_id = $%d", argIdx))
		args = append(args, *filter.ManagerID)
	}

	query := messageSelect + " WHERE " + strings.Join(conditions, " AND ") + " ORDER BY m.created_at DESC"
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list site messages: %w", err)
	}
	defer rows.Close()

	var messages []onsite.SiteMessage
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Resolve implements onsite.MessageRepository.
func (r *messageRepositoryImpl) Resolve(ctx context.Context, m onsite.SiteMessage) (onsite.SiteMessage, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE site_messages SET status = 'resolved', resolved_at = $2
		WHERE id = $1 AND status = 'pending'
	`, m.ID, m.ResolvedAt)
	if err != nil {
		return onsite.SiteMessage{}, fmt.Errorf("failed to resolve site message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return onsite.SiteMessage{}, onsite.ErrMessageAlreadyResolved
	}
	return r.GetByID(ctx, m.ID)
}
