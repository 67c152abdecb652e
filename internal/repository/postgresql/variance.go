package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/timeguard/timeguard-api/internal/domain/variance"
	"github.com/timeguard/timeguard-api/internal/pkg/database"
)

const alertColumns = `
	a.id, a.employee_id, a.site_id, a.manager_id, a.date, a.expected_hours::float8,
	a.actual_hours::float8, a.variance_percentage::float8, a.threshold_used::float8,
	a.acknowledged, a.acknowledged_at, a.created_at, a.updated_at
`

const alertSelect = `
	SELECT ` + alertColumns + `,
		TRIM(p.first_name || ' ' || p.last_name) AS employee_name,
		s.name AS site_name
	FROM variance_alerts a
	JOIN profiles p ON p.id = a.employee_id
	JOIN sites s ON s.id = a.site_id
`

type alertRepositoryImpl struct {
	db *database.DB
}

// NewAlertRepository creates a new variance alert repository instance
func NewAlertRepository(db *database.DB) variance.AlertRepository {
	return &alertRepositoryImpl{db: db}
}

func scanAlert(row pgx.Row, withNames bool) (variance.Alert, error) {
	var a variance.Alert
	dest := []interface{}{
		&a.ID, &a.EmployeeID, &a.SiteID, &a.ManagerID, &a.Date, &a.ExpectedHours,
		&a.ActualHours, &a.VariancePercentage, &a.ThresholdUsed,
		&a.Acknowledged, &a.AcknowledgedAt, &a.CreatedAt, &a.UpdatedAt,
	}
	if withNames {
		dest = append(dest, &a.EmployeeName, &a.SiteName)
	}
	err := row.Scan(dest...)
	return a, err
}

// DailyTotals implements variance.AlertRepository.
func (r *alertRepositoryImpl) DailyTotals(ctx context.Context, date time.Time) ([]variance.DailyTotal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			t.employee_id, TRIM(p.first_name || ' ' || p.last_name), t.site_id, s.name, s.timezone,
			s.manager_id, m.email,
			SUM(EXTRACT(EPOCH FROM (t.clock_out_time - t.clock_in_time)))::float8 / 3600.0 AS actual_hours,
			p.work_hours::float8, s.variance_threshold_percent::float8
		FROM time_entries t
		JOIN profiles p ON p.id = t.employee_id
		JOIN sites s ON s.id = t.site_id
		LEFT JOIN profiles m ON m.id = s.manager_id
		WHERE t.status = 'completed'
		  AND t.clock_out_time IS NOT NULL
		  AND (t.clock_in_time AT TIME ZONE s.timezone)::date = $1::date
		GROUP BY t.employee_id, p.first_name, p.last_name, p.work_hours,
			t.site_id, s.name, s.timezone, s.manager_id, m.email, s.variance_threshold_percent
		ORDER BY s.name, p.last_name
	`

	day := date.Format("2006-01-02")
	rows, err := q.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily totals: %w", err)
	}
	defer rows.Close()

	var totals []variance.DailyTotal
	for rows.Next() {
		var d variance.DailyTotal
		err := rows.Scan(
			&d.EmployeeID, &d.EmployeeName, &d.SiteID, &d.SiteName, &d.SiteTimezone,
			&d.ManagerID, &d.ManagerEmail, &d.ActualHours, &d.ExpectedHours, &d.ThresholdPercent,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily total: %w", err)
		}
		d.Date = date
		totals = append(totals, d)
	}
	return totals, rows.Err()
}

// Upsert implements variance.AlertRepository. An existing alert keeps its
// acknowledgement; only the computed figures are refreshed.
func (r *alertRepositoryImpl) Upsert(ctx context.Context, a variance.Alert) (variance.Alert, bool, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID(a.ID)
	if err != nil {
		return variance.Alert{}, false, err
	}

	query := `
		INSERT INTO variance_alerts AS a (
			id, employee_id, site_id, manager_id, date, expected_hours, actual_hours,
			variance_percentage, threshold_used
		) VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9)
		ON CONFLICT ON CONSTRAINT variance_alerts_employee_site_date_key DO UPDATE SET
			manager_id = EXCLUDED.manager_id,
			expected_hours = EXCLUDED.expected_hours,
			actual_hours = EXCLUDED.actual_hours,
			variance_percentage = EXCLUDED.variance_percentage,
			threshold_used = EXCLUDED.threshold_used,
			updated_at = NOW()
		RETURNING ` + alertColumns + `, (xmax = 0) AS inserted
	`

	var out variance.Alert
	var inserted bool
	err = q.QueryRow(ctx, query,
		id, a.EmployeeID, a.SiteID, a.ManagerID, a.Date.Format("2006-01-02"),
		a.ExpectedHours, a.ActualHours, a.VariancePercentage, a.ThresholdUsed,
	).Scan(
		&out.ID, &out.EmployeeID, &out.SiteID, &out.ManagerID, &out.Date, &out.ExpectedHours,
		&out.ActualHours, &out.VariancePercentage, &out.ThresholdUsed,
		&out.Acknowledged, &out.AcknowledgedAt, &out.CreatedAt, &out.UpdatedAt, &inserted,
	)
	if err != nil {
		return variance.Alert{}, false, fmt.Errorf("failed to upsert variance alert: %w", err)
	}
	out.EmployeeName = a.EmployeeName
	out.SiteName = a.SiteName

	return out, inserted, nil
}

// GetByID implements variance.AlertRepository.
func (r *alertRepositoryImpl) GetByID(ctx context.Context, id string) (variance.Alert, error) {
	q := GetQuerier(ctx, r.db)

	a, err := scanAlert(q.QueryRow(ctx, alertSelect+` WHERE a.id = $1`, id), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return variance.Alert{}, variance.ErrAlertNotFound
		}
		return variance.Alert{}, fmt.Errorf("failed to get variance alert: %w", err)
	}
	return a, nil
}

// Acknowledge implements variance.AlertRepository.
func (r *alertRepositoryImpl) Acknowledge(ctx context.Context, id string, at time.Time) (variance.Alert, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE variance_alerts SET acknowledged = TRUE, acknowledged_at = $2, updated_at = NOW()
		WHERE id = $1 AND acknowledged = FALSE
	`, id, at.UTC())
	if err != nil {
		return variance.Alert{}, fmt.Errorf("failed to acknowledge variance alert: %w", err)
	}

	a, err := r.GetByID(ctx, id)
	if err != nil {
		return variance.Alert{}, err
	}
	if tag.RowsAffected() == 0 {
		return a, variance.ErrAlertAlreadyAcknowledged
	}
	return a, nil
}

// List implements variance.AlertRepository.
func (r *alertRepositoryImpl) List(ctx context.Context, filter variance.AlertFilter) ([]variance.Alert, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter.SiteID != nil && *filter.SiteID != "" {
		conditions = append(conditions, fmt.Sprintf("a.site_id = $%d", argIdx))
		args = append(args, *filter.SiteID)
		argIdx++
	}
	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("a.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.ManagerID != nil && *filter.ManagerID != "" {
		conditions = append(conditions, fmt.Sprintf("s.manager_id = $%d", argIdx))
		args = append(args, *filter.ManagerID)
		argIdx++
	}
	if filter.Acknowledged != nil {
		conditions = append(conditions, fmt.Sprintf("a.acknowledged = $%d", argIdx))
		args = append(args, *filter.Acknowledged)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d::date", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d::date", argIdx))
		args = append(args, *filter.EndDate)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM variance_alerts a JOIN sites s ON s.id = a.site_id WHERE " + whereClause
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count variance alerts: %w", err)
	}

	validSortColumns := map[string]string{
		"date":     "a.date",
		"variance": "ABS(a.variance_percentage)",
		"employee": "employee_name",
		"site":     "s.name",
	}
	sortColumn, ok := validSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "a.date"
	}

	limit, offset := paginate(filter.Page, filter.Limit)
	query := fmt.Sprintf(`%s WHERE %s ORDER BY %s %s, a.id LIMIT $%d OFFSET $%d`,
		alertSelect, whereClause, sortColumn, orderDirection(filter.SortOrder), argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list variance alerts: %w", err)
	}
	defer rows.Close()

	var alerts []variance.Alert
	for rows.Next() {
		a, err := scanAlert(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan variance alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate variance alerts: %w", err)
	}

	return alerts, total, nil
}
