package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/timeguard/timeguard-api/internal/domain/assignment"
	"github.com/timeguard/timeguard-api/internal/pkg/database"
)

const assignmentSelect = `
	SELECT
		es.id, es.employee_id, es.site_id, es.start_date, es.end_date,
		es.arrival_time, es.end_time, es.created_at,
		TRIM(p.first_name || ' ' || p.last_name) AS employee_name,
		s.name AS site_name
	FROM employee_sites es
	JOIN profiles p ON p.id = es.employee_id
	JOIN sites s ON s.id = es.site_id
`

type assignmentRepositoryImpl struct {
	db *database.DB
}

// NewAssignmentRepository creates a new employee-site assignment repository instance
func NewAssignmentRepository(db *database.DB) assignment.AssignmentRepository {
	return &assignmentRepositoryImpl{db: db}
}

func collectAssignments(rows pgx.Rows) ([]assignment.Assignment, error) {
	defer rows.Close()

	var out []assignment.Assignment
	for rows.Next() {
		var a assignment.Assignment
		err := rows.Scan(
			&a.ID, &a.EmployeeID, &a.SiteID, &a.StartDate, &a.EndDate,
			&a.ArrivalTime, &a.EndTime, &a.CreatedAt, &a.EmployeeName, &a.SiteName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create implements assignment.AssignmentRepository.
func (r *assignmentRepositoryImpl) Create(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID(a.ID)
	if err != nil {
		return assignment.Assignment{}, err
	}

	query := `
		INSERT INTO employee_sites (id, employee_id, site_id, start_date, end_date, arrival_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, employee_id, site_id, start_date, end_date, arrival_time, end_time, created_at
	`

	var created assignment.Assignment
	err = q.QueryRow(ctx, query, id, a.EmployeeID, a.SiteID, a.StartDate, a.EndDate, a.ArrivalTime, a.EndTime).Scan(
		&created.ID, &created.EmployeeID, &created.SiteID, &created.StartDate, &created.EndDate,
		&created.ArrivalTime, &created.EndTime, &created.CreatedAt,
	)
	if err != nil {
		return assignment.Assignment{}, fmt.Errorf("failed to create assignment: %w", err)
	}
	created.EmployeeName = a.EmployeeName
	created.SiteName = a.SiteName

	return created, nil
}

// DeleteByEmployee implements assignment.AssignmentRepository.
func (r *assignmentRepositoryImpl) DeleteByEmployee(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM employee_sites WHERE employee_id = $1`, employeeID); err != nil {
		return fmt.Errorf("failed to delete assignments: %w", err)
	}
	return nil
}

// ListByEmployee implements assignment.AssignmentRepository.
func (r *assignmentRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]assignment.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, assignmentSelect+` WHERE es.employee_id = $1 ORDER BY s.name ASC`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments by employee: %w", err)
	}
	return collectAssignments(rows)
}

// ListBySite implements assignment.AssignmentRepository.
func (r *assignmentRepositoryImpl) ListBySite(ctx context.Context, siteID string) ([]assignment.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, assignmentSelect+` WHERE es.site_id = $1 ORDER BY p.last_name ASC, p.first_name ASC`, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments by site: %w", err)
	}
	return collectAssignments(rows)
}

// IsAssigned implements assignment.AssignmentRepository.
func (r *assignmentRepositoryImpl) IsAssigned(ctx context.Context, employeeID, siteID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM employee_sites
			WHERE employee_id = $1 AND site_id = $2
			  AND (start_date IS NULL OR start_date <= $3::date)
			  AND (end_date IS NULL OR end_date >= $3::date)
		)
	`

	var ok bool
	if err := q.QueryRow(ctx, query, employeeID, siteID, date.Format("2006-01-02")).Scan(&ok); err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}
	return ok, nil
}
