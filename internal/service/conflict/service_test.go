package conflict

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timeguard/timeguard-api/internal/domain/conflict"
	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
	"github.com/timeguard/timeguard-api/internal/pkg/validator"
	"github.com/timeguard/timeguard-api/internal/service/servicetest"
)

const (
	employeeA = "0190a0b0-0000-7000-8000-0000000000e1"
	employeeB = "0190a0b0-0000-7000-8000-0000000000e2"
	siteID    = "0190a0b0-0000-7000-8000-0000000000e3"
)

func seeded(t *testing.T) *servicetest.Conflicts {
	t.Helper()
	repo := servicetest.NewConflicts()
	for _, emp := range []string{employeeA, employeeA, employeeB} {
		_, err := repo.Create(context.Background(), conflict.Conflict{
			EmployeeID: emp, SiteID: siteID, ConflictType: conflict.TypeOutsideHours,
			ConflictTime: time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC), Acknowledged: true,
		})
		require.NoError(t, err)
	}
	return repo
}

func TestList_FiltersByEmployee(t *testing.T) {
	svc := NewConflictService(seeded(t))
	emp := employeeA

	resp, err := svc.List(context.Background(), session.Session{Role: session.RoleManager}, conflict.ConflictFilter{EmployeeID: &emp})

	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.TotalCount)
	assert.Len(t, resp.Conflicts, 2)
	assert.Equal(t, "outside_hours", resp.Conflicts[0].ConflictType)
	assert.Equal(t, "2026-03-10T18:00:00Z", resp.Conflicts[0].ConflictTime)
}

func TestList_EmployeeForbidden(t *testing.T) {
	svc := NewConflictService(seeded(t))

	_, err := svc.List(context.Background(), session.Session{Role: session.RoleEmployee}, conflict.ConflictFilter{})

	assert.ErrorIs(t, err, profile.ErrManagerAccessRequired)
}

func TestList_InvalidFilter(t *testing.T) {
	svc := NewConflictService(seeded(t))

	_, err := svc.List(context.Background(), session.Session{Role: session.RoleAdmin}, conflict.ConflictFilter{Limit: 500})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "limit")
}
