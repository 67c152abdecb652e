package timeentry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/timeguard/timeguard-api/internal/config"
	"github.com/timeguard/timeguard-api/internal/domain/assignment"
	"github.com/timeguard/timeguard-api/internal/domain/conflict"
	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/domain/site"
	"github.com/timeguard/timeguard-api/internal/domain/timeentry"
	"github.com/timeguard/timeguard-api/internal/pkg/database"
	"github.com/timeguard/timeguard-api/internal/pkg/geo"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
	"github.com/timeguard/timeguard-api/internal/pkg/sse"
	"github.com/timeguard/timeguard-api/internal/pkg/timewindow"
)

type TimeEntryServiceImpl struct {
	tx          database.Transactor
	entries     timeentry.TimeEntryRepository
	sites       site.SiteRepository
	assignments assignment.AssignmentRepository
	conflicts   conflict.ConflictRepository
	profiles    profile.ProfileRepository
	hub         *sse.Hub
	cfg         config.AttendanceConfig
	now         func() time.Time
}

func NewTimeEntryService(
	tx database.Transactor,
	entryRepo timeentry.TimeEntryRepository,
	siteRepo site.SiteRepository,
	assignmentRepo assignment.AssignmentRepository,
	conflictRepo conflict.ConflictRepository,
	profileRepo profile.ProfileRepository,
	hub *sse.Hub,
	cfg config.AttendanceConfig,
) timeentry.TimeEntryService {
	return &TimeEntryServiceImpl{
		tx:          tx,
		entries:     entryRepo,
		sites:       siteRepo,
		assignments: assignmentRepo,
		conflicts:   conflictRepo,
		profiles:    profileRepo,
		hub:         hub,
		cfg:         cfg,
		now:         time.Now,
	}
}

// activity is the payload of live activity stream events.
type activity struct {
	EntryID    string      `json:"entry_id,omitempty"`
	EmployeeID string      `json:"employee_id"`
	SiteID     string      `json:"site_id"`
	Latitude   *float64    `json:"latitude,omitempty"`
	Longitude  *float64    `json:"longitude,omitempty"`
	Accuracy   *float64    `json:"accuracy,omitempty"`
	Geofence   *geo.Result `json:"geofence,omitempty"`
	Details    string      `json:"details,omitempty"`
	At         time.Time   `json:"at"`
}

// ClockIn implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) ClockIn(ctx context.Context, sess session.Session, req timeentry.ClockInRequest) (timeentry.ClockInResponse, error) {
	if err := req.Validate(); err != nil {
		return timeentry.ClockInResponse{}, err
	}

	if req.IdempotencyKey != "" {
		if resp, ok, err := s.replayClockIn(ctx, sess, req.IdempotencyKey); err != nil || ok {
			return resp, err
		}
	}

	now := s.now().UTC()

	// 1. A fresh position is required
	if req.Position == nil || !req.Position.FreshAt(now, s.cfg.LocationMaxAge) {
		return timeentry.ClockInResponse{}, timeentry.ErrLocationUnavailable
	}

	// 2. Site must exist, be active and be assigned today
	st, err := s.sites.GetByID(ctx, req.SiteID)
	if err != nil {
		return timeentry.ClockInResponse{}, err
	}
	if !st.IsActive {
		return timeentry.ClockInResponse{}, site.ErrSiteInactive
	}
	local := now.In(st.Location())
	assigned, err := s.assignments.IsAssigned(ctx, sess.UserID, st.ID, local)
	if err != nil {
		return timeentry.ClockInResponse{}, fmt.Errorf("failed to check assignment: %w", err)
	}
	if !assigned {
		return timeentry.ClockInResponse{}, timeentry.ErrSiteNotAssigned
	}

	// 3. The geofence needs coordinates
	if !st.IsGeocoded() {
		return timeentry.ClockInResponse{}, site.ErrSiteNotGeocoded
	}

	// 4. Geofence
	fence := geo.EvaluateGeofence(req.Position.Latitude, req.Position.Longitude, *st.Latitude, *st.Longitude, st.Radius())
	if !fence.IsWithin {
		slog.Info("Clock-in rejected outside geofence", "employee_id", sess.UserID, "site_id", st.ID, "distance", fence.Distance, "radius", fence.RadiusMeters)
		return timeentry.ClockInResponse{}, &timeentry.GeofenceError{Distance: fence.Distance, RadiusMeters: fence.RadiusMeters}
	}

	// 5. Allowed hours, in the site's time zone
	var scheduleErr *timeentry.ScheduleConflictError
	window, restricted, err := st.AllowedWindow()
	if err != nil {
		slog.Warn("Site has malformed allowed hours, skipping check", "site_id", st.ID, "error", err)
	}
	if restricted && !window.Contains(timewindow.ClockOf(local)) {
		scheduleErr = &timeentry.ScheduleConflictError{
			ConflictType: conflict.TypeOutsideHours,
			CurrentTime:  timewindow.ClockOf(local).String(),
			AllowedStart: window.Start.String(),
			AllowedEnd:   window.End.String(),
		}
		if !req.AcknowledgeConflict {
			return timeentry.ClockInResponse{}, scheduleErr
		}
	}

	// 6. Create the entry, and the acknowledged conflict with it
	entry := timeentry.TimeEntry{
		EmployeeID:  sess.UserID,
		SiteID:      st.ID,
		ClockInTime: now,
		ClockInLat:  req.Position.Latitude,
		ClockInLon:  req.Position.Longitude,
		Status:      timeentry.StatusActive,
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		entry.ClockInKey = &key
	}

	var created timeentry.TimeEntry
	var logged *conflict.Conflict
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.entries.CreateActive(txCtx, entry)
		if err != nil {
			return err
		}
		if scheduleErr == nil {
			return nil
		}

		entryID := created.ID
		c, err := s.conflicts.Create(txCtx, conflict.Conflict{
			EmployeeID:     sess.UserID,
			SiteID:         st.ID,
			TimeEntryID:    &entryID,
			ConflictType:   scheduleErr.ConflictType,
			ConflictTime:   now,
			Acknowledged:   true,
			AcknowledgedAt: &now,
			Details:        scheduleErr.Details(),
		})
		if err != nil {
			return fmt.Errorf("failed to log schedule conflict: %w", err)
		}
		logged = &c
		return nil
	})
	if err != nil {
		// A concurrent request with the same key may have won the insert
		if errors.Is(err, timeentry.ErrActiveEntryExists) && req.IdempotencyKey != "" {
			if resp, ok, replayErr := s.replayClockIn(ctx, sess, req.IdempotencyKey); replayErr == nil && ok {
				return resp, nil
			}
		}
		return timeentry.ClockInResponse{}, err
	}

	slog.Info("Clock-in recorded", "entry_id", created.ID, "employee_id", sess.UserID, "site_id", st.ID, "distance", fence.Distance, "conflict", logged != nil)

	lat, lon := created.ClockInLat, created.ClockInLon
	s.hub.PublishActivity(st.ManagerID, sse.Event{Event: sse.EventClockIn, Data: activity{
		EntryID: created.ID, EmployeeID: sess.UserID, SiteID: st.ID,
		Latitude: &lat, Longitude: &lon, Geofence: &fence, At: now,
	}})

	created.SiteName = &st.Name
	resp := timeentry.ClockInResponse{Entry: timeentry.ToResponse(created), Geofence: fence}
	if logged != nil {
		cr := conflict.ToResponse(*logged)
		resp.Conflict = &cr
		s.hub.PublishActivity(st.ManagerID, sse.Event{Event: sse.EventScheduleConflict, Data: activity{
			EntryID: created.ID, EmployeeID: sess.UserID, SiteID: st.ID, Details: logged.Details, At: now,
		}})
	}
	return resp, nil
}

// replayClockIn returns the entry a previous request with key created.
func (s *TimeEntryServiceImpl) replayClockIn(ctx context.Context, sess session.Session, key string) (timeentry.ClockInResponse, bool, error) {
	prev, err := s.entries.GetByClockInKey(ctx, sess.UserID, key)
	if errors.Is(err, timeentry.ErrTimeEntryNotFound) {
		return timeentry.ClockInResponse{}, false, nil
	}
	if err != nil {
		return timeentry.ClockInResponse{}, false, fmt.Errorf("failed to look up idempotency key: %w", err)
	}

	resp := timeentry.ClockInResponse{Entry: timeentry.ToResponse(prev), Replayed: true}
	if st, err := s.sites.GetByID(ctx, prev.SiteID); err == nil && st.IsGeocoded() {
		resp.Geofence = geo.EvaluateGeofence(prev.ClockInLat, prev.ClockInLon, *st.Latitude, *st.Longitude, st.Radius())
	}
	return resp, true, nil
}

// ClockOut implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) ClockOut(ctx context.Context, sess session.Session, req timeentry.ClockOutRequest) (timeentry.TimeEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return timeentry.TimeEntryResponse{}, err
	}

	if req.IdempotencyKey != "" {
		prev, err := s.entries.GetByClockOutKey(ctx, sess.UserID, req.IdempotencyKey)
		if err == nil {
			return timeentry.ToResponse(prev), nil
		}
		if !errors.Is(err, timeentry.ErrTimeEntryNotFound) {
			return timeentry.TimeEntryResponse{}, fmt.Errorf("failed to look up idempotency key: %w", err)
		}
	}

	active, err := s.entries.GetActive(ctx, sess.UserID)
	if err != nil {
		return timeentry.TimeEntryResponse{}, err
	}

	now := s.now().UTC()
	active.ClockOutTime = &now
	// Position is optional; a stale one is dropped rather than recorded
	if req.Position != nil && req.Position.FreshAt(now, s.cfg.LocationMaxAge) {
		lat, lon := req.Position.Latitude, req.Position.Longitude
		active.ClockOutLat, active.ClockOutLon = &lat, &lon
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		active.ClockOutKey = &key
	}

	completed, err := s.entries.Complete(ctx, active)
	if err != nil {
		return timeentry.TimeEntryResponse{}, err
	}

	slog.Info("Clock-out recorded", "entry_id", completed.ID, "employee_id", sess.UserID, "hours", completed.WorkedHours())

	var managerID *string
	if st, err := s.sites.GetByID(ctx, completed.SiteID); err == nil {
		managerID = st.ManagerID
		completed.SiteName = &st.Name
	}
	s.hub.PublishActivity(managerID, sse.Event{Event: sse.EventClockOut, Data: activity{
		EntryID: completed.ID, EmployeeID: sess.UserID, SiteID: completed.SiteID,
		Latitude: completed.ClockOutLat, Longitude: completed.ClockOutLon, At: now,
	}})

	return timeentry.ToResponse(completed), nil
}

// GetActive implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) GetActive(ctx context.Context, sess session.Session) (timeentry.TimeEntryResponse, error) {
	active, err := s.entries.GetActive(ctx, sess.UserID)
	if err != nil {
		return timeentry.TimeEntryResponse{}, err
	}
	return timeentry.ToResponse(active), nil
}

// RecordLocation implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) RecordLocation(ctx context.Context, sess session.Session, req timeentry.LocationSampleRequest) (timeentry.LocationStatusResponse, error) {
	if err := req.Validate(); err != nil {
		return timeentry.LocationStatusResponse{}, err
	}
	now := s.now().UTC()
	if req.Position == nil || !req.Position.FreshAt(now, s.cfg.LocationMaxAge) {
		return timeentry.LocationStatusResponse{}, timeentry.ErrLocationUnavailable
	}

	active, err := s.entries.GetActive(ctx, sess.UserID)
	if err != nil {
		return timeentry.LocationStatusResponse{}, err
	}
	st, err := s.sites.GetByID(ctx, active.SiteID)
	if err != nil {
		return timeentry.LocationStatusResponse{}, err
	}
	if !st.IsGeocoded() {
		return timeentry.LocationStatusResponse{}, site.ErrSiteNotGeocoded
	}

	fence := geo.EvaluateGeofence(req.Position.Latitude, req.Position.Longitude, *st.Latitude, *st.Longitude, st.Radius())

	// Employees who turned tracking off still get their status, but nobody else sees the sample
	p, err := s.profiles.GetByID(ctx, sess.UserID)
	if err == nil && p.GPSTrackingEnabled {
		lat, lon, acc := req.Position.Latitude, req.Position.Longitude, req.Position.Accuracy
		s.hub.PublishActivity(st.ManagerID, sse.Event{Event: sse.EventLocation, Data: activity{
			EntryID: active.ID, EmployeeID: sess.UserID, SiteID: st.ID,
			Latitude: &lat, Longitude: &lon, Accuracy: &acc, Geofence: &fence, At: now,
		}})
	}

	return timeentry.LocationStatusResponse{EntryID: active.ID, SiteID: st.ID, Geofence: fence}, nil
}

// ListMine implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) ListMine(ctx context.Context, sess session.Session, filter timeentry.TimeEntryFilter) (timeentry.ListTimeEntryResponse, error) {
	filter.EmployeeID = &sess.UserID
	return s.list(ctx, filter)
}

// List implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) List(ctx context.Context, sess session.Session, filter timeentry.TimeEntryFilter) (timeentry.ListTimeEntryResponse, error) {
	if !profile.HasPermission(sess.Role, profile.PermissionTimeEntryViewAll) {
		return timeentry.ListTimeEntryResponse{}, profile.ErrManagerAccessRequired
	}
	return s.list(ctx, filter)
}

func (s *TimeEntryServiceImpl) list(ctx context.Context, filter timeentry.TimeEntryFilter) (timeentry.ListTimeEntryResponse, error) {
	if err := filter.Validate(); err != nil {
		return timeentry.ListTimeEntryResponse{}, err
	}

	entries, total, err := s.entries.List(ctx, filter)
	if err != nil {
		return timeentry.ListTimeEntryResponse{}, fmt.Errorf("failed to list time entries: %w", err)
	}

	resp := timeentry.ListTimeEntryResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Entries:    make([]timeentry.TimeEntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, timeentry.ToResponse(e))
	}
	return resp, nil
}

// InvalidateStale implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) InvalidateStale(ctx context.Context) (int, error) {
	cutoff := s.now().UTC().Add(-s.cfg.StaleAfter)

	stale, err := s.entries.InvalidateStale(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate stale entries: %w", err)
	}

	for _, e := range stale {
		slog.Warn("Stale time entry invalidated", "entry_id", e.ID, "employee_id", e.EmployeeID, "clock_in_time", e.ClockInTime)
		ev := sse.Event{Event: sse.EventStaleEntry, Data: activity{EntryID: e.ID, EmployeeID: e.EmployeeID, SiteID: e.SiteID, At: cutoff}}
		s.hub.Publish(e.EmployeeID, ev)

		var managerID *string
		if st, err := s.sites.GetByID(ctx, e.SiteID); err == nil {
			managerID = st.ManagerID
		}
		s.hub.PublishActivity(managerID, ev)
	}
	return len(stale), nil
}
