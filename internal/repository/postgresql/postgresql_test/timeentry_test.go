package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/domain/site"
	"github.com/timeguard/timeguard-api/internal/domain/timeentry"
	"github.com/timeguard/timeguard-api/internal/domain/variance"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
	"github.com/timeguard/timeguard-api/internal/repository/postgresql"
)

func createTestEmployee(t *testing.T, ctx context.Context, setup *TestDatabaseSetup, email string) profile.Profile {
	repo := postgresql.NewProfileRepository(setup.DB)
	p, err := repo.Create(ctx, profile.Profile{
		Email:              email,
		FirstName:          "Test",
		LastName:           "Employee",
		Role:               session.RoleEmployee,
		WorkHours:          8,
		RegistrationStatus: profile.StatusApproved,
	})
	require.NoError(t, err)
	return p
}

func createTestSite(t *testing.T, ctx context.Context, setup *TestDatabaseSetup, name string) site.Site {
	lat, lon := 40.7128, -74.0060
	repo := postgresql.NewSiteRepository(setup.DB)
	s, err := repo.Create(ctx, site.Site{
		Name:                     name,
		Address:                  "1 Main St",
		Latitude:                 &lat,
		Longitude:                &lon,
		GeofenceRadius:           100,
		VarianceThresholdPercent: 5,
		IsActive:                 true,
		Timezone:                 "UTC",
	})
	require.NoError(t, err)
	return s
}

func TestProfileRepository_DuplicateEmail(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()

	createTestEmployee(t, ctx, setup, "dup@example.com")

	repo := postgresql.NewProfileRepository(setup.DB)
	_, err := repo.Create(ctx, profile.Profile{
		Email:              "DUP@example.com",
		Role:               session.RoleEmployee,
		RegistrationStatus: profile.StatusPending,
	})
	assert.ErrorIs(t, err, profile.ErrEmailExists)
}

func TestTimeEntryRepository_SingleActiveEntry(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()

	emp := createTestEmployee(t, ctx, setup, "active@example.com")
	s := createTestSite(t, ctx, setup, "Warehouse")
	repo := postgresql.NewTimeEntryRepository(setup.DB)

	first, err := repo.CreateActive(ctx, timeentry.TimeEntry{
		EmployeeID:  emp.ID,
		SiteID:      s.ID,
		ClockInTime: time.Now(),
		ClockInLat:  40.7128,
		ClockInLon:  -74.0060,
	})
	require.NoError(t, err)
	assert.Equal(t, timeentry.StatusActive, first.Status)

	_, err = repo.CreateActive(ctx, timeentry.TimeEntry{
		EmployeeID:  emp.ID,
		SiteID:      s.ID,
		ClockInTime: time.Now(),
	})
	assert.ErrorIs(t, err, timeentry.ErrActiveEntryExists)

	active, err := repo.GetActive(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)
	require.NotNil(t, active.SiteName)
	assert.Equal(t, "Warehouse", *active.SiteName)

	out := time.Now()
	active.ClockOutTime = &out
	completed, err := repo.Complete(ctx, active)
	require.NoError(t, err)
	assert.Equal(t, timeentry.StatusCompleted, completed.Status)

	_, err = repo.Complete(ctx, active)
	assert.ErrorIs(t, err, timeentry.ErrNoActiveEntry)

	_, err = repo.GetActive(ctx, emp.ID)
	assert.ErrorIs(t, err, timeentry.ErrNoActiveEntry)
}

func TestTimeEntryRepository_InvalidateStale(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()

	emp := createTestEmployee(t, ctx, setup, "stale@example.com")
	s := createTestSite(t, ctx, setup, "Depot")
	repo := postgresql.NewTimeEntryRepository(setup.DB)

	_, err := repo.CreateActive(ctx, timeentry.TimeEntry{
		EmployeeID:  emp.ID,
		SiteID:      s.ID,
		ClockInTime: time.Now().Add(-20 * time.Hour),
	})
	require.NoError(t, err)

	stale, err := repo.InvalidateStale(ctx, time.Now().Add(-16*time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, timeentry.StatusInvalid, stale[0].Status)
}

func TestAlertRepository_UpsertIsIdempotent(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()

	emp := createTestEmployee(t, ctx, setup, "variance@example.com")
	s := createTestSite(t, ctx, setup, "Yard")
	repo := postgresql.NewAlertRepository(setup.DB)

	alert := variance.Alert{
		EmployeeID:         emp.ID,
		SiteID:             s.ID,
		Date:               time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		ExpectedHours:      8,
		ActualHours:        6,
		VariancePercentage: -25,
		ThresholdUsed:      5,
	}

	first, created, err := repo.Upsert(ctx, alert)
	require.NoError(t, err)
	assert.True(t, created)

	alert.ActualHours = 5
	alert.VariancePercentage = -37.5
	second, created, err := repo.Upsert(ctx, alert)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, -37.5, second.VariancePercentage)

	_, total, err := repo.List(ctx, variance.AlertFilter{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
