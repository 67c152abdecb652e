package variance

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/domain/variance"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
	"github.com/timeguard/timeguard-api/internal/pkg/sse"
	"github.com/timeguard/timeguard-api/internal/service/servicetest"
)

const (
	managerID  = "0190a0b0-0000-7000-8000-0000000000f1"
	otherMgrID = "0190a0b0-0000-7000-8000-0000000000f2"
	employeeID = "0190a0b0-0000-7000-8000-0000000000f3"
	siteA      = "0190a0b0-0000-7000-8000-0000000000f4"
	siteB      = "0190a0b0-0000-7000-8000-0000000000f5"
)

var (
	adminSess   = session.Session{UserID: "0190a0b0-0000-7000-8000-0000000000f0", Role: session.RoleAdmin}
	managerSess = session.Session{UserID: managerID, Role: session.RoleManager}
	day         = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc    *VarianceServiceImpl
	alerts *servicetest.Alerts
	mailer *servicetest.Mailer
	hub    *sse.Hub
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mgr, mgrEmail := managerID, "m@example.com"

	alerts := servicetest.NewAlerts()
	alerts.Totals["2026-03-09"] = []variance.DailyTotal{
		// 6h against 8h: -25%, over the 5% threshold
		{EmployeeID: employeeID, EmployeeName: "Eve Worker", SiteID: siteA, SiteName: "Warehouse",
			ManagerID: &mgr, ManagerEmail: &mgrEmail, Date: day, ActualHours: 6, ExpectedHours: 8, ThresholdPercent: 5},
		// 8.2h against 8h: 2.5%, under threshold
		{EmployeeID: employeeID, EmployeeName: "Eve Worker", SiteID: siteB, SiteName: "Yard",
			Date: day, ActualHours: 8.2, ExpectedHours: 8, ThresholdPercent: 5},
		// no expected hours
		{EmployeeID: otherMgrID, EmployeeName: "No Hours", SiteID: siteB, SiteName: "Yard",
			Date: day, ActualHours: 4, ExpectedHours: 0, ThresholdPercent: 5},
	}
	profiles := servicetest.NewProfiles(profile.Profile{ID: managerID, FirstName: "Mona", Email: mgrEmail, Role: session.RoleManager})
	mailer := &servicetest.Mailer{}
	hub := sse.NewHub()

	svc := NewVarianceService(alerts, profiles, mailer, hub).(*VarianceServiceImpl)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC) }
	return fixture{svc: svc, alerts: alerts, mailer: mailer, hub: hub}
}

func TestGenerateForDate(t *testing.T) {
	f := newFixture(t)
	ch, cleanup := f.hub.Subscribe(managerID, session.RoleManager)
	defer cleanup()

	resp, err := f.svc.GenerateForDate(context.Background(), day)

	require.NoError(t, err)
	assert.Equal(t, variance.GenerateResponse{Date: "2026-03-09", Evaluated: 3, Alerts: 1, Created: 1, Skipped: 1}, resp)

	saved := f.alerts.All()
	require.Len(t, saved, 1)
	assert.Equal(t, -25.0, saved[0].VariancePercentage)
	assert.Equal(t, 5.0, saved[0].ThresholdUsed)

	require.Len(t, f.mailer.Variance, 1)
	assert.Equal(t, "m@example.com", f.mailer.Variance[0].To)
	assert.Equal(t, "Mona", f.mailer.Variance[0].ManagerName)
	assert.Equal(t, "March 9, 2026", f.mailer.Variance[0].Date)

	select {
	case ev := <-ch:
		assert.Equal(t, sse.EventVarianceAlert, ev.Event)
	default:
		t.Fatal("expected a variance event for the site manager")
	}
}

func TestGenerateForDate_RerunDoesNotDuplicate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GenerateForDate(context.Background(), day)
	require.NoError(t, err)
	resp, err := f.svc.GenerateForDate(context.Background(), day)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Alerts)
	assert.Zero(t, resp.Created)
	assert.Len(t, f.alerts.All(), 1)
	assert.Len(t, f.mailer.Variance, 1)
}

func TestGenerate_RejectsTodayAndFuture(t *testing.T) {
	f := newFixture(t)

	for _, date := range []string{"2026-03-10", "2026-04-01"} {
		_, err := f.svc.Generate(context.Background(), managerSess, variance.GenerateRequest{Date: date})
		assert.ErrorIs(t, err, variance.ErrFutureDate, date)
	}
}

func TestGenerate_SiteDayBoundaries(t *testing.T) {
	f := newFixture(t)
	// 15:00 UTC is already March 11 in Brisbane but still March 10 in Los Angeles.
	f.svc.now = func() time.Time { return time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC) }
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	f.alerts.Totals["2026-03-10"] = []variance.DailyTotal{
		{EmployeeID: employeeID, EmployeeName: "Eve Worker", SiteID: siteA, SiteName: "Brisbane Depot", SiteTimezone: "Australia/Brisbane",
			Date: date, ActualHours: 6, ExpectedHours: 8, ThresholdPercent: 5},
		{EmployeeID: employeeID, EmployeeName: "Eve Worker", SiteID: siteB, SiteName: "LA Yard", SiteTimezone: "America/Los_Angeles",
			Date: date, ActualHours: 2, ExpectedHours: 8, ThresholdPercent: 5},
	}

	resp, err := f.svc.Generate(context.Background(), managerSess, variance.GenerateRequest{Date: "2026-03-10"})

	require.NoError(t, err)
	assert.Equal(t, variance.GenerateResponse{Date: "2026-03-10", Evaluated: 1, Alerts: 1, Created: 1, Pending: 1}, resp)
	saved := f.alerts.All()
	require.Len(t, saved, 1)
	assert.Equal(t, siteA, saved[0].SiteID)

	// Once Los Angeles reaches March 11 the pending site is evaluated.
	f.svc.now = func() time.Time { return time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC) }
	resp, err = f.svc.GenerateForDate(context.Background(), date)

	require.NoError(t, err)
	assert.Equal(t, variance.GenerateResponse{Date: "2026-03-10", Evaluated: 2, Alerts: 2, Created: 1}, resp)
}

func TestGenerate_UnknownTimezoneFallsBackToUTC(t *testing.T) {
	f := newFixture(t)
	f.alerts.Totals["2026-03-09"][0].SiteTimezone = "Mars/Olympus_Mons"

	resp, err := f.svc.GenerateForDate(context.Background(), day)

	require.NoError(t, err)
	assert.Equal(t, 3, resp.Evaluated)
	assert.Zero(t, resp.Pending)
}

func TestGenerate_RequiresManager(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Generate(context.Background(), session.Session{Role: session.RoleEmployee}, variance.GenerateRequest{Date: "2026-03-09"})

	assert.ErrorIs(t, err, profile.ErrManagerAccessRequired)
}

func TestList_ManagerScopedToOwnSites(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GenerateForDate(context.Background(), day)
	require.NoError(t, err)

	own, err := f.svc.List(context.Background(), managerSess, variance.AlertFilter{})
	require.NoError(t, err)
	assert.Len(t, own.Alerts, 1)

	other, err := f.svc.List(context.Background(), session.Session{UserID: otherMgrID, Role: session.RoleManager}, variance.AlertFilter{})
	require.NoError(t, err)
	assert.Empty(t, other.Alerts)

	all, err := f.svc.List(context.Background(), adminSess, variance.AlertFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Alerts, 1)
}

func TestAcknowledge(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GenerateForDate(context.Background(), day)
	require.NoError(t, err)
	id := f.alerts.All()[0].ID

	_, err = f.svc.Acknowledge(context.Background(), session.Session{UserID: otherMgrID, Role: session.RoleManager}, id)
	assert.ErrorIs(t, err, profile.ErrInsufficientPermissions)

	resp, err := f.svc.Acknowledge(context.Background(), managerSess, id)
	require.NoError(t, err)
	assert.True(t, resp.Acknowledged)
	require.NotNil(t, resp.AcknowledgedAt)

	_, err = f.svc.Acknowledge(context.Background(), adminSess, id)
	assert.ErrorIs(t, err, variance.ErrAlertAlreadyAcknowledged)

	_, err = f.svc.Acknowledge(context.Background(), adminSess, "0190a0b0-0000-7000-8000-0000000000ff")
	assert.ErrorIs(t, err, variance.ErrAlertNotFound)
}
