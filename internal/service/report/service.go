package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/domain/report"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
	"github.com/xuri/excelize/v2"
)

type ReportServiceImpl struct {
	reportRepo report.ReportRepository
	now        func() time.Time
}

func NewReportService(reportRepo report.ReportRepository) report.ReportService {
	return &ReportServiceImpl{
		reportRepo: reportRepo,
		now:        time.Now,
	}
}

// Timesheet implements report.ReportService.
func (s *ReportServiceImpl) Timesheet(ctx context.Context, sess session.Session, filter report.TimesheetFilter) (report.TimesheetReport, error) {
	if !profile.HasPermission(sess.Role, profile.PermissionReportsView) {
		return report.TimesheetReport{}, profile.ErrManagerAccessRequired
	}
	if err := filter.Validate(); err != nil {
		return report.TimesheetReport{}, err
	}
	// Managers report on the sites they manage
	if !sess.IsAdmin() {
		filter.ManagerID = &sess.UserID
	}

	rows, err := s.reportRepo.Timesheet(ctx, filter)
	if err != nil {
		return report.TimesheetReport{}, fmt.Errorf("failed to get timesheet data: %w", err)
	}

	byEmployee := make(map[string]*report.HoursTotal)
	bySite := make(map[string]*report.HoursTotal)
	var total float64
	for _, row := range rows {
		total += row.Hours
		addHours(byEmployee, row.EmployeeID, row.EmployeeName, row.Hours)
		addHours(bySite, row.SiteID, row.SiteName, row.Hours)
	}
	if rows == nil {
		rows = []report.TimesheetRow{}
	}

	return report.TimesheetReport{
		StartDate:   filter.StartDate,
		EndDate:     filter.EndDate,
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
		TotalHours:  round2(total),
		Rows:        rows,
		ByEmployee:  sortedTotals(byEmployee),
		BySite:      sortedTotals(bySite),
	}, nil
}

func addHours(totals map[string]*report.HoursTotal, id, name string, hours float64) {
	t, ok := totals[id]
	if !ok {
		t = &report.HoursTotal{ID: id, Name: name}
		totals[id] = t
	}
	t.Hours += hours
}

// sortedTotals orders by hours descending, then name.
func sortedTotals(totals map[string]*report.HoursTotal) []report.HoursTotal {
	out := make([]report.HoursTotal, 0, len(totals))
	for _, t := range totals {
		t.Hours = round2(t.Hours)
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hours != out[j].Hours {
			return out[i].Hours > out[j].Hours
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

const (
	sheetTimesheet = "Timesheet"
	sheetEmployees = "By Employee"
	sheetSites     = "By Site"
)

// ExportTimesheet implements report.ReportService.
func (s *ReportServiceImpl) ExportTimesheet(ctx context.Context, sess session.Session, filter report.TimesheetFilter, w io.Writer) error {
	rep, err := s.Timesheet(ctx, sess, filter)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetTimesheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []interface{}{"Date", "Employee", "Site", "Clock In", "Clock Out", "Hours", "Status"}
	if err := f.SetSheetRow(sheetTimesheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range rep.Rows {
		clockOut := ""
		if row.ClockOut != nil {
			clockOut = row.ClockOut.UTC().Format(time.RFC3339)
		}
		values := []interface{}{
			row.Date, row.EmployeeName, row.SiteName,
			row.ClockIn.UTC().Format(time.RFC3339), clockOut, row.Hours, row.Status,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetTimesheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	totalCell, _ := excelize.CoordinatesToCellName(5, len(rep.Rows)+2)
	totalRow := []interface{}{"Total", rep.TotalHours}
	if err := f.SetSheetRow(sheetTimesheet, totalCell, &totalRow); err != nil {
		return fmt.Errorf("failed to write total: %w", err)
	}

	if err := writeTotals(f, sheetEmployees, "Employee", rep.ByEmployee); err != nil {
		return err
	}
	if err := writeTotals(f, sheetSites, "Site", rep.BySite); err != nil {
		return err
	}

	if err := f.SetColWidth(sheetTimesheet, "A", "G", 20); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeTotals(f *excelize.File, sheet, label string, totals []report.HoursTotal) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	header := []interface{}{label, "Hours"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	for i, t := range totals {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{t.Name, t.Hours}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row: %w", sheet, err)
		}
	}
	return nil
}
