package report

import "context"

type ReportRepository interface {
	// Timesheet returns one row per time entry whose clock-in falls inside the filter range.
	Timesheet(ctx context.Context, filter TimesheetFilter) ([]TimesheetRow, error)
}
