package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/domain/report"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
	"github.com/timeguard/timeguard-api/internal/service/servicetest"
	"github.com/xuri/excelize/v2"
)

const managerID = "0190a0b0-0000-7000-8000-000000000201"

func fixtureRows() []report.TimesheetRow {
	in := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	out := in.Add(8 * time.Hour)
	return []report.TimesheetRow{
		{Date: "2026-03-09", EmployeeID: "e1", EmployeeName: "Ann", SiteID: "s1", SiteName: "Warehouse", ClockIn: in, ClockOut: &out, Hours: 8, Status: "completed"},
		{Date: "2026-03-10", EmployeeID: "e1", EmployeeName: "Ann", SiteID: "s2", SiteName: "Yard", ClockIn: in.AddDate(0, 0, 1), ClockOut: &out, Hours: 4.25, Status: "completed"},
		{Date: "2026-03-10", EmployeeID: "e2", EmployeeName: "Bob", SiteID: "s1", SiteName: "Warehouse", ClockIn: in.AddDate(0, 0, 1), Hours: 0, Status: "active"},
	}
}

func newService(repo *servicetest.Reports) *ReportServiceImpl {
	svc := NewReportService(repo).(*ReportServiceImpl)
	svc.now = func() time.Time { return time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC) }
	return svc
}

func TestTimesheet_Totals(t *testing.T) {
	repo := &servicetest.Reports{Rows: fixtureRows()}
	svc := newService(repo)

	rep, err := svc.Timesheet(context.Background(), session.Session{Role: session.RoleAdmin}, report.TimesheetFilter{StartDate: "2026-03-01", EndDate: "2026-03-31"})

	require.NoError(t, err)
	assert.Equal(t, 12.25, rep.TotalHours)
	assert.Len(t, rep.Rows, 3)
	assert.Equal(t, []report.HoursTotal{{ID: "e1", Name: "Ann", Hours: 12.25}, {ID: "e2", Name: "Bob", Hours: 0}}, rep.ByEmployee)
	assert.Equal(t, []report.HoursTotal{{ID: "s1", Name: "Warehouse", Hours: 8}, {ID: "s2", Name: "Yard", Hours: 4.25}}, rep.BySite)
	assert.Equal(t, "2026-03-11T08:00:00Z", rep.GeneratedAt)
	assert.Nil(t, repo.LastFilter.ManagerID)
}

func TestTimesheet_ManagerScoped(t *testing.T) {
	repo := &servicetest.Reports{}
	svc := newService(repo)

	rep, err := svc.Timesheet(context.Background(), session.Session{UserID: managerID, Role: session.RoleManager},
		report.TimesheetFilter{StartDate: "2026-03-01", EndDate: "2026-03-31"})

	require.NoError(t, err)
	require.NotNil(t, repo.LastFilter.ManagerID)
	assert.Equal(t, managerID, *repo.LastFilter.ManagerID)
	assert.NotNil(t, rep.Rows)
}

func TestTimesheet_Errors(t *testing.T) {
	svc := newService(&servicetest.Reports{})

	_, err := svc.Timesheet(context.Background(), session.Session{Role: session.RoleEmployee}, report.TimesheetFilter{StartDate: "2026-03-01", EndDate: "2026-03-31"})
	assert.ErrorIs(t, err, profile.ErrManagerAccessRequired)

	_, err = svc.Timesheet(context.Background(), session.Session{Role: session.RoleAdmin}, report.TimesheetFilter{StartDate: "2026-03-31", EndDate: "2026-03-01"})
	assert.Error(t, err)
}

func TestExportTimesheet_Workbook(t *testing.T) {
	svc := newService(&servicetest.Reports{Rows: fixtureRows()})
	buf := new(bytes.Buffer)

	err := svc.ExportTimesheet(context.Background(), session.Session{Role: session.RoleAdmin},
		report.TimesheetFilter{StartDate: "2026-03-01", EndDate: "2026-03-31"}, buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetTimesheet, sheetEmployees, sheetSites}, f.GetSheetList())

	rows, err := f.GetRows(sheetTimesheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "Employee", rows[0][1])
	assert.Equal(t, "Ann", rows[1][1])
	assert.Equal(t, "2026-03-09T17:00:00Z", rows[1][4])
	assert.Equal(t, "Total", rows[4][4])
	assert.Equal(t, "12.25", rows[4][5])

	sites, err := f.GetRows(sheetSites)
	require.NoError(t, err)
	assert.Equal(t, []string{"Warehouse", "8"}, sites[1])
}
