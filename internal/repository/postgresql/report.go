package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/timeguard/timeguard-api/internal/domain/report"
	"github.com/timeguard/timeguard-api/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

// NewReportRepository creates a new report repository instance
func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// Timesheet implements report.ReportRepository. Dates are the site-local
// calendar day of the clock-in.
func (r *reportRepositoryImpl) Timesheet(ctx context.Context, filter report.TimesheetFilter) ([]report.TimesheetRow, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{
		"(t.clock_in_time AT TIME ZONE s.timezone)::date BETWEEN $1::date AND $2::date",
	}
	args := []interface{}{filter.Start.Format("2006-01-02"), filter.End.Format("2006-01-02")}
	argIdx := 3

	if filter.SiteID != nil && *filter.SiteID != "" {
		conditions = append(conditions, fmt.Sprintf("t.site_id = $%d", argIdx))
		args = append(args, *filter.SiteID)
		argIdx++
	}
	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("t.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.ManagerID != nil && *filter.ManagerID != "" {
		conditions = append(conditions, fmt.Sprintf("s.manager_id = $%d", argIdx))
		args = append(args, *filter.ManagerID)
	}

	query := `
		SELECT
			TO_CHAR((t.clock_in_time AT TIME ZONE s.timezone)::date, 'YYYY-MM-DD') AS work_date,
			t.employee_id, TRIM(p.first_name || ' ' || p.last_name), t.site_id, s.name,
			t.clock_in_time, t.clock_out_time, t.status
		FROM time_entries t
		JOIN profiles p ON p.id = t.employee_id
		JOIN sites s ON s.id = t.site_id
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY work_date ASC, p.last_name ASC, t.clock_in_time ASC
	`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query timesheet: %w", err)
	}
	defer rows.Close()

	var out []report.TimesheetRow
	for rows.Next() {
		var row report.TimesheetRow
		err := rows.Scan(
			&row.Date, &row.EmployeeID, &row.EmployeeName, &row.SiteID, &row.SiteName,
			&row.ClockIn, &row.ClockOut, &row.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timesheet row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
