package variance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/domain/variance"
	"github.com/timeguard/timeguard-api/internal/pkg/email"
	"github.com/timeguard/timeguard-api/internal/pkg/session"
	"github.com/timeguard/timeguard-api/internal/pkg/sse"
	calc "github.com/timeguard/timeguard-api/internal/pkg/variance"
)

type VarianceServiceImpl struct {
	alerts   variance.AlertRepository
	profiles profile.ProfileRepository
	email    email.EmailService
	hub      *sse.Hub
	now      func() time.Time
}

func NewVarianceService(alertRepo variance.AlertRepository, profileRepo profile.ProfileRepository, emailSvc email.EmailService, hub *sse.Hub) variance.VarianceService {
	return &VarianceServiceImpl{
		alerts:   alertRepo,
		profiles: profileRepo,
		email:    emailSvc,
		hub:      hub,
		now:      time.Now,
	}
}

// Generate implements variance.VarianceService.
func (s *VarianceServiceImpl) Generate(ctx context.Context, sess session.Session, req variance.GenerateRequest) (variance.GenerateResponse, error) {
	if !profile.HasPermission(sess.Role, profile.PermissionVarianceGenerate) {
		return variance.GenerateResponse{}, profile.ErrManagerAccessRequired
	}
	if err := req.Validate(); err != nil {
		return variance.GenerateResponse{}, err
	}

	// Sites bucket entries by their local date, so a date can be generated as soon as
	// it has ended in the easternmost zone. Sites still inside it are reported as pending.
	date, _ := time.Parse("2006-01-02", req.Date)
	if !date.Before(localDate(s.now(), easternmostZone)) {
		return variance.GenerateResponse{}, variance.ErrFutureDate
	}

	slog.Info("Variance generation requested", "date", req.Date, "user_id", sess.UserID)
	return s.GenerateForDate(ctx, date)
}

// GenerateForDate implements variance.VarianceService.
func (s *VarianceServiceImpl) GenerateForDate(ctx context.Context, date time.Time) (variance.GenerateResponse, error) {
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	resp := variance.GenerateResponse{Date: date.Format("2006-01-02")}

	totals, err := s.alerts.DailyTotals(ctx, date)
	if err != nil {
		return resp, fmt.Errorf("failed to aggregate daily totals: %w", err)
	}

	now := s.now()
	for _, total := range totals {
		if !dayEnded(date, total.SiteTimezone, now) {
			resp.Pending++
			continue
		}
		resp.Evaluated++

		result, err := calc.Compute(total.ExpectedHours, total.ActualHours, total.ThresholdPercent)
		if errors.Is(err, calc.ErrNoExpectedHours) {
			resp.Skipped++
			continue
		}
		if err != nil {
			return resp, err
		}
		if !result.ExceedsThreshold {
			continue
		}

		alert, created, err := s.alerts.Upsert(ctx, variance.Alert{
			EmployeeID:         total.EmployeeID,
			SiteID:             total.SiteID,
			ManagerID:          total.ManagerID,
			Date:               date,
			ExpectedHours:      result.ExpectedHours,
			ActualHours:        result.ActualHours,
			VariancePercentage: result.VariancePercentage,
			ThresholdUsed:      result.ThresholdUsed,
		})
		if err != nil {
			return resp, fmt.Errorf("failed to save variance alert: %w", err)
		}
		resp.Alerts++
		if !created {
			continue
		}
		resp.Created++

		alert.EmployeeName = &total.EmployeeName
		alert.SiteName = &total.SiteName
		s.notify(ctx, total, alert)
	}

	slog.Info("Variance alerts generated", "date", resp.Date, "evaluated", resp.Evaluated, "alerts", resp.Alerts,
		"created", resp.Created, "skipped", resp.Skipped, "pending", resp.Pending)
	return resp, nil
}

// easternmostZone is the first zone to finish any calendar day (UTC+14).
var easternmostZone = time.FixedZone("UTC+14", 14*60*60)

// localDate is the calendar date of t in loc, as midnight UTC.
func localDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dayEnded reports whether date is over in the site's time zone. An unknown zone
// falls back to UTC.
func dayEnded(date time.Time, tz string, now time.Time) bool {
	loc := time.UTC
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	return date.Before(localDate(now, loc))
}

// notify tells the site manager about a new alert. Admins always see it on the stream.
func (s *VarianceServiceImpl) notify(ctx context.Context, total variance.DailyTotal, alert variance.Alert) {
	s.hub.PublishActivity(total.ManagerID, sse.Event{Event: sse.EventVarianceAlert, Data: variance.ToResponse(alert)})

	if total.ManagerID == nil || total.ManagerEmail == nil {
		return
	}

	managerName := "Manager"
	if m, err := s.profiles.GetByID(ctx, *total.ManagerID); err == nil && m.FirstName != "" {
		managerName = m.FirstName
	}

	err := s.email.SendVarianceAlert(ctx, email.VarianceAlertEmail{
		To:                 *total.ManagerEmail,
		ManagerName:        managerName,
		EmployeeName:       total.EmployeeName,
		SiteName:           total.SiteName,
		Date:               alert.Date.Format("January 2, 2006"),
		ExpectedHours:      alert.ExpectedHours,
		ActualHours:        alert.ActualHours,
		VariancePercentage: alert.VariancePercentage,
		Threshold:          alert.ThresholdUsed,
	})
	if err != nil {
		slog.Error("Failed to send variance alert email", "alert_id", alert.ID, "to", *total.ManagerEmail, "error", err)
	}
}

// List implements variance.VarianceService.
func (s *VarianceServiceImpl) List(ctx context.Context, sess session.Session, filter variance.AlertFilter) (variance.ListAlertResponse, error) {
	if !profile.HasPermission(sess.Role, profile.PermissionVarianceView) {
		return variance.ListAlertResponse{}, profile.ErrManagerAccessRequired
	}
	if err := filter.Validate(); err != nil {
		return variance.ListAlertResponse{}, err
	}
	// Managers only see alerts for the sites they manage
	if !sess.IsAdmin() {
		filter.ManagerID = &sess.UserID
	}

	alerts, total, err := s.alerts.List(ctx, filter)
	if err != nil {
		return variance.ListAlertResponse{}, fmt.Errorf("failed to list variance alerts: %w", err)
	}

	resp := variance.ListAlertResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Alerts:     make([]variance.AlertResponse, 0, len(alerts)),
	}
	for _, a := range alerts {
		resp.Alerts = append(resp.Alerts, variance.ToResponse(a))
	}
	return resp, nil
}

// Acknowledge implements variance.VarianceService.
func (s *VarianceServiceImpl) Acknowledge(ctx context.Context, sess session.Session, id string) (variance.AlertResponse, error) {
	if !profile.HasPermission(sess.Role, profile.PermissionVarianceView) {
		return variance.AlertResponse{}, profile.ErrManagerAccessRequired
	}

	alert, err := s.alerts.GetByID(ctx, id)
	if err != nil {
		return variance.AlertResponse{}, err
	}
	if !sess.IsAdmin() && (alert.ManagerID == nil || *alert.ManagerID != sess.UserID) {
		return variance.AlertResponse{}, profile.ErrInsufficientPermissions
	}

	acked, err := s.alerts.Acknowledge(ctx, id, s.now().UTC())
	if err != nil {
		return variance.AlertResponse{}, err
	}

	slog.Info("Variance alert acknowledged", "alert_id", id, "user_id", sess.UserID)
	return variance.ToResponse(acked), nil
}
