// Package servicetest provides in-memory repositories and collaborators for
// service tests. Nothing here talks to PostgreSQL or the network.
package servicetest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/timeguard/timeguard-api/internal/domain/assignment"
	"github.com/timeguard/timeguard-api/internal/domain/auth"
	"github.com/timeguard/timeguard-api/internal/domain/conflict"
	"github.com/timeguard/timeguard-api/internal/domain/invitation"
	"github.com/timeguard/timeguard-api/internal/domain/onsite"
	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/domain/report"
	"github.com/timeguard/timeguard-api/internal/domain/site"
	"github.com/timeguard/timeguard-api/internal/domain/timeentry"
	"github.com/timeguard/timeguard-api/internal/domain/variance"
)

var (
	idMu  sync.Mutex
	idSeq int
)

// NewID returns a unique UUIDv7-shaped id.
func NewID() string {
	idMu.Lock()
	defer idMu.Unlock()
	idSeq++
	return fmt.Sprintf("0190a0b0-0000-7000-9000-%012d", idSeq)
}

func orNewID(id string) string {
	if id != "" {
		return id
	}
	return NewID()
}

// ========================================
// PROFILES
// ========================================

type Profiles struct {
	mu   sync.Mutex
	byID map[string]profile.Profile
}

func NewProfiles(profiles ...profile.Profile) *Profiles {
	r := &Profiles{byID: make(map[string]profile.Profile)}
	for _, p := range profiles {
		r.byID[p.ID] = p
	}
	return r
}

func (r *Profiles) Create(_ context.Context, p profile.Profile) (profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if strings.EqualFold(existing.Email, p.Email) {
			return profile.Profile{}, profile.ErrEmailExists
		}
	}
	p.ID = orNewID(p.ID)
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	r.byID[p.ID] = p
	return p, nil
}

func (r *Profiles) GetByID(_ context.Context, id string) (profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return profile.Profile{}, profile.ErrProfileNotFound
	}
	return p, nil
}

func (r *Profiles) GetByEmail(_ context.Context, email string) (profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}
	return profile.Profile{}, profile.ErrProfileNotFound
}

func (r *Profiles) Update(_ context.Context, p profile.Profile) (profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; !ok {
		return profile.Profile{}, profile.ErrProfileNotFound
	}
	p.UpdatedAt = time.Now()
	r.byID[p.ID] = p
	return p, nil
}

func (r *Profiles) UpdateStatus(_ context.Context, id string, status profile.RegistrationStatus) (profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return profile.Profile{}, profile.ErrProfileNotFound
	}
	p.RegistrationStatus = status
	r.byID[id] = p
	return p, nil
}

func (r *Profiles) LinkGoogleID(_ context.Context, id string, googleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return profile.ErrProfileNotFound
	}
	p.GoogleID = &googleID
	r.byID[id] = p
	return nil
}

func (r *Profiles) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return profile.ErrProfileNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *Profiles) List(_ context.Context, filter profile.ProfileFilter) ([]profile.Profile, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []profile.Profile
	for _, p := range r.byID {
		if filter.Role != nil && string(p.Role) != *filter.Role {
			continue
		}
		if filter.Status != nil && string(p.RegistrationStatus) != *filter.Status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// ========================================
// REFRESH TOKENS
// ========================================

type Tokens struct {
	mu      sync.Mutex
	tokens  map[string]string
	revoked map[string]bool
}

func NewTokens() *Tokens {
	return &Tokens{tokens: make(map[string]string), revoked: make(map[string]bool)}
}

func (r *Tokens) CreateRefreshToken(_ context.Context, userID string, token string, _ int64, _ auth.SessionTrackingRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = userID
	return nil
}

func (r *Tokens) IsRefreshTokenRevoked(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token]; !ok {
		return true, nil
	}
	return r.revoked[token], nil
}

func (r *Tokens) RevokeRefreshToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[token] = true
	return nil
}

func (r *Tokens) RevokeAllForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, owner := range r.tokens {
		if owner == userID {
			r.revoked[token] = true
		}
	}
	return nil
}

// ========================================
// INVITATIONS
// ========================================

type Invitations struct {
	mu   sync.Mutex
	byID map[string]invitation.Invitation
}

func NewInvitations() *Invitations {
	return &Invitations{byID: make(map[string]invitation.Invitation)}
}

func (r *Invitations) Create(_ context.Context, inv invitation.Invitation) (invitation.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv.ID = orNewID(inv.ID)
	if inv.Status == "" {
		inv.Status = invitation.StatusPending
	}
	inv.CreatedAt = time.Now()
	r.byID[inv.ID] = inv
	return inv, nil
}

func (r *Invitations) GetByToken(_ context.Context, token string) (invitation.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.byID {
		if inv.Token == token {
			return inv, nil
		}
	}
	return invitation.Invitation{}, invitation.ErrInvitationNotFound
}

func (r *Invitations) GetLatestPendingByEmail(_ context.Context, email string) (invitation.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *invitation.Invitation
	for _, inv := range r.byID {
		if inv.Email != email || inv.Status != invitation.StatusPending {
			continue
		}
		if latest == nil || inv.CreatedAt.After(latest.CreatedAt) {
			inv := inv
			latest = &inv
		}
	}
	if latest == nil {
		return invitation.Invitation{}, invitation.ErrNoPendingInvitation
	}
	return *latest, nil
}

func (r *Invitations) RevokePendingByEmail(_ context.Context, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, inv := range r.byID {
		if inv.Email == email && inv.Status == invitation.StatusPending {
			inv.Status = invitation.StatusRevoked
			r.byID[id] = inv
			n++
		}
	}
	return n, nil
}

func (r *Invitations) MarkAccepted(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.byID[id]
	if !ok || inv.Status != invitation.StatusPending {
		return invitation.ErrInvitationAlreadyUsed
	}
	now := time.Now()
	inv.Status = invitation.StatusAccepted
	inv.AcceptedAt = &now
	r.byID[id] = inv
	return nil
}

// Get returns an invitation by id for assertions.
func (r *Invitations) Get(id string) invitation.Invitation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id]
}

// ========================================
// SITES
// ========================================

type Sites struct {
	mu          sync.Mutex
	byID        map[string]site.Site
	assignments *Assignments
}

// NewSites links to assignments so ListAssigned reflects them.
func NewSites(assignments *Assignments, sites ...site.Site) *Sites {
	r := &Sites{byID: make(map[string]site.Site), assignments: assignments}
	for _, s := range sites {
		r.byID[s.ID] = s
	}
	return r
}

func (r *Sites) Create(_ context.Context, s site.Site) (site.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if strings.EqualFold(existing.Name, s.Name) {
			return site.Site{}, site.ErrSiteNameExists
		}
	}
	s.ID = orNewID(s.ID)
	s.CreatedAt, s.UpdatedAt = time.Now(), time.Now()
	r.byID[s.ID] = s
	return s, nil
}

func (r *Sites) GetByID(_ context.Context, id string) (site.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return site.Site{}, site.ErrSiteNotFound
	}
	return s, nil
}

func (r *Sites) Update(_ context.Context, s site.Site) (site.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[s.ID]; !ok {
		return site.Site{}, site.ErrSiteNotFound
	}
	for _, existing := range r.byID {
		if existing.ID != s.ID && strings.EqualFold(existing.Name, s.Name) {
			return site.Site{}, site.ErrSiteNameExists
		}
	}
	s.UpdatedAt = time.Now()
	r.byID[s.ID] = s
	return s, nil
}

func (r *Sites) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return site.ErrSiteNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *Sites) List(_ context.Context, filter site.SiteFilter) ([]site.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []site.Site
	for _, s := range r.byID {
		if filter.IsActive != nil && s.IsActive != *filter.IsActive {
			continue
		}
		if filter.ManagerID != nil && (s.ManagerID == nil || *s.ManagerID != *filter.ManagerID) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Sites) ListAssigned(ctx context.Context, employeeID string, date time.Time) ([]site.Site, error) {
	list, _ := r.assignments.ListByEmployee(ctx, employeeID)
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []site.Site
	for _, a := range list {
		if !a.ActiveOn(date) {
			continue
		}
		if s, ok := r.byID[a.SiteID]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// ========================================
// ASSIGNMENTS
// ========================================

type Assignments struct {
	mu   sync.Mutex
	list []assignment.Assignment
}

func NewAssignments(list ...assignment.Assignment) *Assignments {
	return &Assignments{list: list}
}

func (r *Assignments) Create(_ context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = orNewID(a.ID)
	a.CreatedAt = time.Now()
	r.list = append(r.list, a)
	return a, nil
}

func (r *Assignments) DeleteByEmployee(_ context.Context, employeeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.list[:0]
	for _, a := range r.list {
		if a.EmployeeID != employeeID {
			kept = append(kept, a)
		}
	}
	r.list = kept
	return nil
}

func (r *Assignments) ListByEmployee(_ context.Context, employeeID string) ([]assignment.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []assignment.Assignment
	for _, a := range r.list {
		if a.EmployeeID == employeeID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *Assignments) ListBySite(_ context.Context, siteID string) ([]assignment.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []assignment.Assignment
	for _, a := range r.list {
		if a.SiteID == siteID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *Assignments) IsAssigned(_ context.Context, employeeID, siteID string, date time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.list {
		if a.EmployeeID == employeeID && a.SiteID == siteID && a.ActiveOn(date) {
			return true, nil
		}
	}
	return false, nil
}

// ========================================
// TIME ENTRIES
// ========================================

// TimeEntries enforces one active entry per employee the way the partial
// unique index does.
type TimeEntries struct {
	mu      sync.Mutex
	entries []timeentry.TimeEntry
}

func NewTimeEntries(entries ...timeentry.TimeEntry) *TimeEntries {
	return &TimeEntries{entries: entries}
}

func (r *TimeEntries) CreateActive(_ context.Context, e timeentry.TimeEntry) (timeentry.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.entries {
		if existing.EmployeeID == e.EmployeeID && existing.Status == timeentry.StatusActive {
			return timeentry.TimeEntry{}, timeentry.ErrActiveEntryExists
		}
		if e.ClockInKey != nil && existing.EmployeeID == e.EmployeeID &&
			existing.ClockInKey != nil && *existing.ClockInKey == *e.ClockInKey {
			return timeentry.TimeEntry{}, timeentry.ErrActiveEntryExists
		}
	}
	e.ID = orNewID(e.ID)
	e.Status = timeentry.StatusActive
	e.CreatedAt, e.UpdatedAt = time.Now(), time.Now()
	r.entries = append(r.entries, e)
	return e, nil
}

func (r *TimeEntries) find(match func(timeentry.TimeEntry) bool, notFound error) (timeentry.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if match(e) {
			return e, nil
		}
	}
	return timeentry.TimeEntry{}, notFound
}

func (r *TimeEntries) GetByID(_ context.Context, id string) (timeentry.TimeEntry, error) {
	return r.find(func(e timeentry.TimeEntry) bool { return e.ID == id }, timeentry.ErrTimeEntryNotFound)
}

func (r *TimeEntries) GetActive(_ context.Context, employeeID string) (timeentry.TimeEntry, error) {
	return r.find(func(e timeentry.TimeEntry) bool {
		return e.EmployeeID == employeeID && e.Status == timeentry.StatusActive
	}, timeentry.ErrNoActiveEntry)
}

func (r *TimeEntries) GetByClockInKey(_ context.Context, employeeID, key string) (timeentry.TimeEntry, error) {
	return r.find(func(e timeentry.TimeEntry) bool {
		return e.EmployeeID == employeeID && e.ClockInKey != nil && *e.ClockInKey == key
	}, timeentry.ErrTimeEntryNotFound)
}

func (r *TimeEntries) GetByClockOutKey(_ context.Context, employeeID, key string) (timeentry.TimeEntry, error) {
	return r.find(func(e timeentry.TimeEntry) bool {
		return e.EmployeeID == employeeID && e.ClockOutKey != nil && *e.ClockOutKey == key
	}, timeentry.ErrTimeEntryNotFound)
}

func (r *TimeEntries) Complete(_ context.Context, entry timeentry.TimeEntry) (timeentry.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.ID != entry.ID {
			continue
		}
		if e.Status != timeentry.StatusActive {
			return timeentry.TimeEntry{}, timeentry.ErrNoActiveEntry
		}
		e.ClockOutTime = entry.ClockOutTime
		e.ClockOutLat = entry.ClockOutLat
		e.ClockOutLon = entry.ClockOutLon
		e.ClockOutKey = entry.ClockOutKey
		e.Status = timeentry.StatusCompleted
		e.UpdatedAt = time.Now()
		r.entries[i] = e
		return e, nil
	}
	return timeentry.TimeEntry{}, timeentry.ErrNoActiveEntry
}

func (r *TimeEntries) InvalidateStale(_ context.Context, cutoff time.Time) ([]timeentry.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []timeentry.TimeEntry
	for i, e := range r.entries {
		if e.Status == timeentry.StatusActive && e.ClockInTime.Before(cutoff) {
			e.Status = timeentry.StatusInvalid
			r.entries[i] = e
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *TimeEntries) List(_ context.Context, filter timeentry.TimeEntryFilter) ([]timeentry.TimeEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []timeentry.TimeEntry
	for _, e := range r.entries {
		if filter.EmployeeID != nil && e.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.SiteID != nil && e.SiteID != *filter.SiteID {
			continue
		}
		if filter.Status != nil && string(e.Status) != *filter.Status {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

// All returns a snapshot of every stored entry.
func (r *TimeEntries) All() []timeentry.TimeEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]timeentry.TimeEntry(nil), r.entries...)
}

// ========================================
// CONFLICTS
// ========================================

type Conflicts struct {
	mu   sync.Mutex
	list []conflict.Conflict
}

func NewConflicts() *Conflicts {
	return &Conflicts{}
}

func (r *Conflicts) Create(_ context.Context, c conflict.Conflict) (conflict.Conflict, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = orNewID(c.ID)
	c.CreatedAt = time.Now()
	r.list = append(r.list, c)
	return c, nil
}

func (r *Conflicts) List(_ context.Context, filter conflict.ConflictFilter) ([]conflict.Conflict, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []conflict.Conflict
	for _, c := range r.list {
		if filter.EmployeeID != nil && c.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.SiteID != nil && c.SiteID != *filter.SiteID {
			continue
		}
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

// All returns a snapshot of every stored conflict.
func (r *Conflicts) All() []conflict.Conflict {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]conflict.Conflict(nil), r.list...)
}

// ========================================
// VARIANCE ALERTS
// ========================================

type Alerts struct {
	mu     sync.Mutex
	Totals map[string][]variance.DailyTotal // keyed by YYYY-MM-DD
	list   []variance.Alert
}

func NewAlerts() *Alerts {
	return &Alerts{Totals: make(map[string][]variance.DailyTotal)}
}

func (r *Alerts) DailyTotals(_ context.Context, date time.Time) ([]variance.DailyTotal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Totals[date.Format("2006-01-02")], nil
}

func (r *Alerts) Upsert(_ context.Context, a variance.Alert) (variance.Alert, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.list {
		if existing.EmployeeID == a.EmployeeID && existing.SiteID == a.SiteID && existing.Date.Equal(a.Date) {
			existing.ExpectedHours = a.ExpectedHours
			existing.ActualHours = a.ActualHours
			existing.VariancePercentage = a.VariancePercentage
			existing.ThresholdUsed = a.ThresholdUsed
			existing.UpdatedAt = time.Now()
			r.list[i] = existing
			return existing, false, nil
		}
	}
	a.ID = orNewID(a.ID)
	a.CreatedAt, a.UpdatedAt = time.Now(), time.Now()
	r.list = append(r.list, a)
	return a, true, nil
}

func (r *Alerts) GetByID(_ context.Context, id string) (variance.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.list {
		if a.ID == id {
			return a, nil
		}
	}
	return variance.Alert{}, variance.ErrAlertNotFound
}

func (r *Alerts) Acknowledge(_ context.Context, id string, at time.Time) (variance.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.list {
		if a.ID != id {
			continue
		}
		if a.Acknowledged {
			return a, variance.ErrAlertAlreadyAcknowledged
		}
		a.Acknowledged = true
		a.AcknowledgedAt = &at
		r.list[i] = a
		return a, nil
	}
	return variance.Alert{}, variance.ErrAlertNotFound
}

func (r *Alerts) List(_ context.Context, filter variance.AlertFilter) ([]variance.Alert, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []variance.Alert
	for _, a := range r.list {
		if filter.ManagerID != nil && (a.ManagerID == nil || *a.ManagerID != *filter.ManagerID) {
			continue
		}
		if filter.Acknowledged != nil && a.Acknowledged != *filter.Acknowledged {
			continue
		}
		out = append(out, a)
	}
	return out, int64(len(out)), nil
}

// All returns a snapshot of every stored alert.
func (r *Alerts) All() []variance.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]variance.Alert(nil), r.list...)
}

// ========================================
// ONSITE
// ========================================

type Photos struct {
	mu   sync.Mutex
	list []onsite.SitePhoto
}

func NewPhotos() *Photos {
	return &Photos{}
}

func (r *Photos) Create(_ context.Context, p onsite.SitePhoto) (onsite.SitePhoto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = orNewID(p.ID)
	r.list = append(r.list, p)
	return p, nil
}

func (r *Photos) ListBySite(_ context.Context, siteID string) ([]onsite.SitePhoto, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []onsite.SitePhoto
	for _, p := range r.list {
		if p.SiteID == siteID {
			out = append(out, p)
		}
	}
	return out, nil
}

type Messages struct {
	mu   sync.Mutex
	list []onsite.SiteMessage
}

func NewMessages() *Messages {
	return &Messages{}
}

func (r *Messages) Create(_ context.Context, m onsite.SiteMessage) (onsite.SiteMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = orNewID(m.ID)
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	r.list = append(r.list, m)
	return m, nil
}

func (r *Messages) GetByID(_ context.Context, id string) (onsite.SiteMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.list {
		if m.ID == id {
			return m, nil
		}
	}
	return onsite.SiteMessage{}, onsite.ErrMessageNotFound
}

func (r *Messages) List(_ context.Context, filter onsite.MessageFilter) ([]onsite.SiteMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []onsite.SiteMessage
	for _, m := range r.list {
		if filter.ManagerID != nil && m.ManagerID != *filter.ManagerID {
			continue
		}
		if filter.SiteID != nil && m.SiteID != *filter.SiteID {
			continue
		}
		if filter.Status != nil && string(m.Status) != *filter.Status {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *Messages) Resolve(_ context.Context, m onsite.SiteMessage) (onsite.SiteMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.list {
		if existing.ID != m.ID {
			continue
		}
		if existing.Status == onsite.MessageResolved {
			return existing, onsite.ErrMessageAlreadyResolved
		}
		existing.Status = onsite.MessageResolved
		existing.ResolvedAt = m.ResolvedAt
		r.list[i] = existing
		return existing, nil
	}
	return onsite.SiteMessage{}, onsite.ErrMessageNotFound
}

// ========================================
// REPORTS
// ========================================

type Reports struct {
	Rows       []report.TimesheetRow
	LastFilter report.TimesheetFilter
}

func (r *Reports) Timesheet(_ context.Context, filter report.TimesheetFilter) ([]report.TimesheetRow, error) {
	r.LastFilter = filter
	var out []report.TimesheetRow
	for _, row := range r.Rows {
		if filter.SiteID != nil && row.SiteID != *filter.SiteID {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}
