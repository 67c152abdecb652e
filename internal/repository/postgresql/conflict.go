package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/timeguard/timeguard-api/internal/domain/conflict"
	"github.com/timeguard/timeguard-api/internal/pkg/database"
)

type conflictRepositoryImpl struct {
	db *database.DB
}

// NewConflictRepository creates a new conflict repository instance
func NewConflictRepository(db *database.DB) conflict.ConflictRepository {
	return &conflictRepositoryImpl{db: db}
}

// Create implements conflict.ConflictRepository.
func (r *conflictRepositoryImpl) Create(ctx context.Context, c conflict.Conflict) (conflict.Conflict, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID(c.ID)
	if err != nil {
		return conflict.Conflict{}, err
	}

	query := `
		INSERT INTO conflicts (
			id, employee_id, site_id, time_entry_id, conflict_type, conflict_time,
			acknowledged, acknowledged_at, details
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, employee_id, site_id, time_entry_id, conflict_type, conflict_time,
			acknowledged, acknowledged_at, details, created_at
	`

	var created conflict.Conflict
	err = q.QueryRow(ctx, query,
		id, c.EmployeeID, c.SiteID, c.TimeEntryID, c.ConflictType, c.ConflictTime.UTC(),
		c.Acknowledged, c.AcknowledgedAt, c.Details,
	).Scan(
		&created.ID, &created.EmployeeID, &created.SiteID, &created.TimeEntryID, &created.ConflictType,
		&created.ConflictTime, &created.Acknowledged, &created.AcknowledgedAt, &created.Details, &created.CreatedAt,
	)
	if err != nil {
		return conflict.Conflict{}, fmt.Errorf("failed to create conflict: %w", err)
	}

	return created, nil
}

// List implements conflict.ConflictRepository.
func (r *conflictRepositoryImpl) List(ctx context.Context, filter conflict.ConflictFilter) ([]conflict.Conflict, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("c.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.SiteID != nil && *filter.SiteID != "" {
		conditions = append(conditions, fmt.Sprintf("c.site_id = $%d", argIdx))
		args = append(args, *filter.SiteID)
		argIdx++
	}
	if filter.ConflictType != nil && *filter.ConflictType != "" {
		conditions = append(conditions, fmt.Sprintf("c.conflict_type = $%d", argIdx))
		args = append(args, *filter.ConflictType)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("c.conflict_time >= $%d::date", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("c.conflict_time < ($%d::date + INTERVAL '1 day')", argIdx))
		args = append(args, *filter.EndDate)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM conflicts c WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count conflicts: %w", err)
	}

	limit, offset := paginate(filter.Page, filter.Limit)
	query := fmt.Sprintf(`
		SELECT
			c.id, c.employee_id, c.site_id, c.time_entry_id, c.conflict_type, c.conflict_time,
			c.acknowledged, c.acknowledged_at, c.details, c.created_at,
			TRIM(p.first_name || ' ' || p.last_name) AS employee_name,
			s.name AS site_name
		FROM conflicts c
		JOIN profiles p ON p.id = c.employee_id
		JOIN sites s ON s.id = c.site_id
		WHERE %s
		ORDER BY c.conflict_time DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list conflicts: %w", err)
	}
	defer rows.Close()

	var conflicts []conflict.Conflict
	for rows.Next() {
		var c conflict.Conflict
		err := rows.Scan(
			&c.ID, &c.EmployeeID, &c.SiteID, &c.TimeEntryID, &c.ConflictType, &c.ConflictTime,
			&c.Acknowledged, &c.AcknowledgedAt, &c.Details, &c.CreatedAt,
			&c.EmployeeName, &c.SiteName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan conflict: %w", err)
		}
		conflicts = append(conflicts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate conflicts: %w", err)
	}

	return conflicts, total, nil
}
