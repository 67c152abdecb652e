package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/timeguard/timeguard-api/internal/domain/timeentry"
	"github.com/timeguard/timeguard-api/internal/pkg/database"
)

const timeEntryColumns = `
	t.id, t.employee_id, t.site_id, t.clock_in_time, t.clock_in_lat, t.clock_in_lon,
	t.clock_out_time, t.clock_out_lat, t.clock_out_lon, t.status, t.clock_in_key,
	t.clock_out_key, t.created_at, t.updated_at
`

const timeEntrySelect = `
	SELECT ` + timeEntryColumns + `,
		TRIM(p.first_name || ' ' || p.last_name) AS employee_name,
		s.name AS site_name
	FROM time_entries t
	JOIN profiles p ON p.id = t.employee_id
	JOIN sites s ON s.id = t.site_id
`

type timeEntryRepositoryImpl struct {
	db *database.DB
}

// NewTimeEntryRepository creates a new time entry repository instance
func NewTimeEntryRepository(db *database.DB) timeentry.TimeEntryRepository {
	return &timeEntryRepositoryImpl{db: db}
}

func scanTimeEntry(row pgx.Row, withNames bool) (timeentry.TimeEntry, error) {
	var e timeentry.TimeEntry
	dest := []interface{}{
		&e.ID, &e.EmployeeID, &e.SiteID, &e.ClockInTime, &e.ClockInLat, &e.ClockInLon,
		&e.ClockOutTime, &e.ClockOutLat, &e.ClockOutLon, &e.Status, &e.ClockInKey,
		&e.ClockOutKey, &e.CreatedAt, &e.UpdatedAt,
	}
	if withNames {
		dest = append(dest, &e.EmployeeName, &e.SiteName)
	}
	err := row.Scan(dest...)
	return e, err
}

// CreateActive implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) CreateActive(ctx context.Context, entry timeentry.TimeEntry) (timeentry.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID(entry.ID)
	if err != nil {
		return timeentry.TimeEntry{}, err
	}

	query := `
		INSERT INTO time_entries AS t (
			id, employee_id, site_id, clock_in_time, clock_in_lat, clock_in_lon, status, clock_in_key
		) VALUES ($1, $2, $3, $4, $5, $6, 'active', $7)
		RETURNING ` + timeEntryColumns

	created, err := scanTimeEntry(q.QueryRow(ctx, query,
		id, entry.EmployeeID, entry.SiteID, entry.ClockInTime.UTC(), entry.ClockInLat, entry.ClockInLon, entry.ClockInKey,
	), false)
	if err != nil {
		// Either the one-active-entry index or a concurrent request with the same key.
		if isUniqueViolation(err, "") {
			return timeentry.TimeEntry{}, timeentry.ErrActiveEntryExists
		}
		return timeentry.TimeEntry{}, fmt.Errorf("failed to create time entry: %w", err)
	}

	return created, nil
}

func (r *timeEntryRepositoryImpl) getOne(ctx context.Context, where string, args ...interface{}) (timeentry.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanTimeEntry(q.QueryRow(ctx, timeEntrySelect+" WHERE "+where, args...), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timeentry.TimeEntry{}, timeentry.ErrTimeEntryNotFound
		}
		return timeentry.TimeEntry{}, fmt.Errorf("failed to get time entry: %w", err)
	}
	return e, nil
}

// GetByID implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) GetByID(ctx context.Context, id string) (timeentry.TimeEntry, error) {
	return r.getOne(ctx, "t.id = $1", id)
}

// GetActive implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) GetActive(ctx context.Context, employeeID string) (timeentry.TimeEntry, error) {
	e, err := r.getOne(ctx, "t.employee_id = $1 AND t.status = 'active'", employeeID)
	if errors.Is(err, timeentry.ErrTimeEntryNotFound) {
		return timeentry.TimeEntry{}, timeentry.ErrNoActiveEntry
	}
	return e, err
}

// GetByClockInKey implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) GetByClockInKey(ctx context.Context, employeeID, key string) (timeentry.TimeEntry, error) {
	return r.getOne(ctx, "t.employee_id = $1 AND t.clock_in_key = $2", employeeID, key)
}

// GetByClockOutKey implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) GetByClockOutKey(ctx context.Context, employeeID, key string) (timeentry.TimeEntry, error) {
	return r.getOne(ctx, "t.employee_id = $1 AND t.clock_out_key = $2", employeeID, key)
}

// Complete implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) Complete(ctx context.Context, entry timeentry.TimeEntry) (timeentry.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	var clockOut *time.Time
	if entry.ClockOutTime != nil {
		t := entry.ClockOutTime.UTC()
		clockOut = &t
	}

	query := `
		UPDATE time_entries AS t SET
			clock_out_time = $2, clock_out_lat = $3, clock_out_lon = $4,
			clock_out_key = $5, status = 'completed', updated_at = NOW()
		WHERE t.id = $1 AND t.status = 'active'
		RETURNING ` + timeEntryColumns

	updated, err := scanTimeEntry(q.QueryRow(ctx, query,
		entry.ID, clockOut, entry.ClockOutLat, entry.ClockOutLon, entry.ClockOutKey,
	), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timeentry.TimeEntry{}, timeentry.ErrNoActiveEntry
		}
		return timeentry.TimeEntry{}, fmt.Errorf("failed to complete time entry: %w", err)
	}
	updated.EmployeeName = entry.EmployeeName
	updated.SiteName = entry.SiteName

	return updated, nil
}

// InvalidateStale implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) InvalidateStale(ctx context.Context, cutoff time.Time) ([]timeentry.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_entries AS t SET status = 'invalid', updated_at = NOW()
		WHERE t.status = 'active' AND t.clock_in_time < $1
		RETURNING ` + timeEntryColumns

	rows, err := q.Query(ctx, query, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to invalidate stale entries: %w", err)
	}
	defer rows.Close()

	var entries []timeentry.TimeEntry
	for rows.Next() {
		e, err := scanTimeEntry(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// List implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) List(ctx context.Context, filter timeentry.TimeEntryFilter) ([]timeentry.TimeEntry, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("t.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.SiteID != nil && *filter.SiteID != "" {
		conditions = append(conditions, fmt.Sprintf("t.site_id = $%d", argIdx))
		args = append(args, *filter.SiteID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("t.clock_in_time >= $%d::date", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("t.clock_in_time < ($%d::date + INTERVAL '1 day')", argIdx))
		args = append(args, *filter.EndDate)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM time_entries t WHERE " + whereClause
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count time entries: %w", err)
	}

	validSortColumns := map[string]string{
		"clock_in_time": "t.clock_in_time",
		"employee_name": "employee_name",
		"site_name":     "s.name",
		"status":        "t.status",
	}
	sortColumn, ok := validSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "t.clock_in_time"
	}

	limit, offset := paginate(filter.Page, filter.Limit)
	query := fmt.Sprintf(`%s WHERE %s ORDER BY %s %s, t.id LIMIT $%d OFFSET $%d`,
		timeEntrySelect, whereClause, sortColumn, orderDirection(filter.SortOrder), argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list time entries: %w", err)
	}
	defer rows.Close()

	var entries []timeentry.TimeEntry
	for rows.Next() {
		e, err := scanTimeEntry(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate time entries: %w", err)
	}

	return entries, total, nil
}
