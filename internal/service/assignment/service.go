package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/timeguard/timeguard-api/internal/domain/assignment"
	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/domain/site"
	"github.com/timeguard/timeguard-api/internal/pkg/database"
	"github.com/timeguard/timeguard-api/internal/pkg/ical"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
	"github.com/timeguard/timeguard-api/internal/pkg/timewindow"
)

type AssignmentServiceImpl struct {
	tx          database.Transactor
	assignments assignment.AssignmentRepository
	sites       site.SiteRepository
	profiles    profile.ProfileRepository

	now func() time.Time
}

func NewAssignmentService(tx database.Transactor, assignmentRepo assignment.AssignmentRepository, siteRepo site.SiteRepository, profileRepo profile.ProfileRepository) assignment.AssignmentService {
	return &AssignmentServiceImpl{
		tx:          tx,
		assignments: assignmentRepo,
		sites:       siteRepo,
		profiles:    profileRepo,
		now:         time.Now,
	}
}

// Replace implements assignment.AssignmentService.
func (s *AssignmentServiceImpl) Replace(ctx context.Context, sess session.Session, req assignment.ReplaceRequest) (assignment.ReplaceResponse, error) {
	if !profile.HasPermission(sess.Role, profile.PermissionAssignmentManage) {
		return assignment.ReplaceResponse{}, profile.ErrManagerAccessRequired
	}
	if err := req.Validate(); err != nil {
		return assignment.ReplaceResponse{}, err
	}

	if _, err := s.profiles.GetByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return assignment.ReplaceResponse{}, assignment.ErrEmployeeNotFound
		}
		return assignment.ReplaceResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		return assignment.ReplaceResponse{}, err
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return assignment.ReplaceResponse{}, err
	}

	var window timewindow.Window
	if len(req.SiteIDs) > 0 {
		window, err = timewindow.ParseWindow(req.ArrivalTime, req.EndTime)
		if err != nil {
			return assignment.ReplaceResponse{}, err
		}
	}

	// Check every site before touching anything
	var warnings []assignment.HoursWarning
	for _, siteID := range req.SiteIDs {
		st, err := s.sites.GetByID(ctx, siteID)
		if err != nil {
			return assignment.ReplaceResponse{}, err
		}
		if w, ok := hoursWarning(st, window); ok {
			warnings = append(warnings, w)
		}
	}
	if len(warnings) > 0 && !req.Confirm {
		return assignment.ReplaceResponse{}, &assignment.HoursConflictError{Warnings: warnings}
	}

	created := make([]assignment.Assignment, 0, len(req.SiteIDs))
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.assignments.DeleteByEmployee(txCtx, req.EmployeeID); err != nil {
			return fmt.Errorf("failed to delete assignments: %w", err)
		}
		for _, siteID := range req.SiteIDs {
			a, err := s.assignments.Create(txCtx, assignment.Assignment{
				EmployeeID:  req.EmployeeID,
				SiteID:      siteID,
				StartDate:   startDate,
				EndDate:     endDate,
				ArrivalTime: window.Start.String(),
				EndTime:     window.End.String(),
			})
			if err != nil {
				return fmt.Errorf("failed to create assignment: %w", err)
			}
			created = append(created, a)
		}
		return nil
	})
	if err != nil {
		return assignment.ReplaceResponse{}, err
	}

	slog.Info("Assignments replaced", "employee_id", req.EmployeeID, "sites", len(created), "warnings", len(warnings), "by", sess.UserID)

	resp := assignment.ReplaceResponse{
		Assignments: make([]assignment.AssignmentResponse, 0, len(created)),
		Warnings:    warnings,
	}
	for _, a := range created {
		resp.Assignments = append(resp.Assignments, assignment.ToResponse(a))
	}
	return resp, nil
}

// ListMine implements assignment.AssignmentService.
func (s *AssignmentServiceImpl) ListMine(ctx context.Context, sess session.Session) ([]assignment.AssignmentResponse, error) {
	list, err := s.assignments.ListByEmployee(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return toResponses(list), nil
}

// CalendarFeed implements assignment.AssignmentService.
func (s *AssignmentServiceImpl) CalendarFeed(ctx context.Context, sess session.Session) ([]byte, error) {
	list, err := s.assignments.ListByEmployee(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	now := s.now()
	sites := make(map[string]site.Site)
	cal := ical.Calendar{ProdID: calendarProdID, Name: "TimeGuard shifts", Events: make([]ical.Event, 0, len(list))}
	for _, a := range list {
		st, ok := sites[a.SiteID]
		if !ok {
			st, err = s.sites.GetByID(ctx, a.SiteID)
			if errors.Is(err, site.ErrSiteNotFound) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to get site: %w", err)
			}
			sites[a.SiteID] = st
		}

		event, err := shiftEvent(a, st, now)
		if err != nil {
			slog.Warn("Skipping assignment in calendar feed", "assignment_id", a.ID, "error", err)
			continue
		}
		cal.Events = append(cal.Events, event)
	}

	return cal.Encode(), nil
}

const calendarProdID = "-//TimeGuard//Assignments//EN"

// shiftEvent repeats the assignment window daily from its first day through its
// end date, as wall-clock times of the site.
func shiftEvent(a assignment.Assignment, st site.Site, now time.Time) (ical.Event, error) {
	window, err := a.Window()
	if err != nil {
		return ical.Event{}, err
	}
	loc := st.Location()

	first := a.CreatedAt.In(loc)
	if a.StartDate != nil {
		first = *a.StartDate
	}
	at := func(day time.Time, c timewindow.Clock) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), int(c)/60, int(c)%60, 0, 0, loc)
	}

	start := at(first, window.Start)
	end := at(first, window.End)
	if window.SpansMidnight() {
		end = at(first.AddDate(0, 0, 1), window.End)
	}

	event := ical.Event{
		UID:         a.ID + "@timeguard",
		Stamp:       now,
		Start:       start,
		End:         end,
		TZID:        loc.String(),
		Daily:       true,
		Summary:     "Shift at " + st.Name,
		Location:    st.Address,
		Description: "Assigned hours " + window.String(),
	}
	if a.EndDate != nil {
		until := at(*a.EndDate, window.Start)
		event.Until = &until
	}
	return event, nil
}

// List implements assignment.AssignmentService.
func (s *AssignmentServiceImpl) List(ctx context.Context, sess session.Session, filter assignment.AssignmentFilter) ([]assignment.AssignmentResponse, error) {
	if !sess.IsManager() {
		return nil, profile.ErrManagerAccessRequired
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var list []assignment.Assignment
	var err error
	if filter.EmployeeID != nil {
		list, err = s.assignments.ListByEmployee(ctx, *filter.EmployeeID)
	} else {
		list, err = s.assignments.ListBySite(ctx, *filter.SiteID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	if filter.EmployeeID != nil && filter.SiteID != nil {
		kept := list[:0]
		for _, a := range list {
			if a.SiteID == *filter.SiteID {
				kept = append(kept, a)
			}
		}
		list = kept
	}
	return toResponses(list), nil
}

// hoursWarning reports a site whose allowed hours do not contain the window.
func hoursWarning(st site.Site, window timewindow.Window) (assignment.HoursWarning, bool) {
	allowed, ok, err := st.AllowedWindow()
	if err != nil || !ok {
		return assignment.HoursWarning{}, false
	}
	if allowed.ContainsWindow(window) {
		return assignment.HoursWarning{}, false
	}
	return assignment.HoursWarning{
		SiteID:       st.ID,
		SiteName:     st.Name,
		AllowedHours: allowed.String(),
		Message:      fmt.Sprintf("%s allows %s but the assignment is %s", st.Name, allowed, window),
	}, true
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toResponses(list []assignment.Assignment) []assignment.AssignmentResponse {
	resp := make([]assignment.AssignmentResponse, 0, len(list))
	for _, a := range list {
		resp = append(resp, assignment.ToResponse(a))
	}
	return resp
}
