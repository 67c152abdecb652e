package report

import (
	"context"
	"io"

	"github.com/timeguard/timeguard-api/internal/pkg/session"
)

type ReportService interface {
	Timesheet(ctx context.Context, sess session.Session, filter TimesheetFilter) (TimesheetReport, error)

	// ExportTimesheet writes the report as an XLSX workbook.
	ExportTimesheet(ctx context.Context, sess session.Session, filter TimesheetFilter, w io.Writer) error
}
