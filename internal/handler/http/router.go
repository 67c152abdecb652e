package http

import (
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/handler/http/middleware"
	"github.com/timeguard/timeguard-api/internal/pkg/idempotency"
	"github.com/timeguard/timeguard-api/internal/pkg/jwt"
	"golang.org/x/time/rate"
)

// Handlers groups every HTTP handler mounted by NewRouter.
type Handlers struct {
	Auth       AuthHandler
	Profile    ProfileHandler
	Invitation InvitationHandler
	Site       SiteHandler
	Assignment AssignmentHandler
	TimeEntry  TimeEntryHandler
	Conflict   ConflictHandler
	Variance   VarianceHandler
	Onsite     OnsiteHandler
	Report     ReportHandler
	Activity   ActivityHandler
}

type RouterOptions struct {
	Env         string
	FrontendURL string
	LogLevel    slog.Level

	// ClockRatePerMinute and ClockRateBurst bound clock-in/out/location calls per user.
	ClockRatePerMinute int
	ClockRateBurst     int

	// Idempotency is nil when Redis is not configured.
	Idempotency *idempotency.Store
}

func NewRouter(JWTService jwt.Service, h Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "timeguard-api"),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{opts.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", middleware.IdempotencyHeader},
		ExposedHeaders:   []string{"Link", "Content-Disposition", "Idempotent-Replayed"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	clockLimit := rate.Inf
	if opts.ClockRatePerMinute > 0 {
		clockLimit = rate.Every(time.Minute / time.Duration(opts.ClockRatePerMinute))
	}
	clockLimiter := middleware.NewUserRateLimiter(clockLimit, opts.ClockRateBurst)
	clockGuard := chi.Chain(
		clockLimiter.Limit,
		middleware.RequirePermission(profile.PermissionTimeEntryCreate),
		middleware.Idempotency(opts.Idempotency),
	)

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
			r.Route("/oauth/callback", func(r chi.Router) {
				r.Get("/google", h.Auth.OAuthCallbackGoogle)
			})

			r.Route("/login", func(r chi.Router) {
				r.Post("/", h.Auth.Login)
				r.Route("/oauth", func(r chi.Router) {
					r.Get("/google", h.Auth.LoginWithGoogle)
				})
			})
		})

		// Enrollment link
		r.Route("/invitations", func(r chi.Router) {
			r.Get("/validate", h.Invitation.Validate)
			r.Post("/enroll", h.Invitation.Enroll)
		})

		// The stream authenticates with a short-lived query token.
		r.Get("/activity/stream", h.Activity.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/me", func(r chi.Router) {
				r.Get("/", h.Profile.GetMe)
				r.Put("/", h.Profile.UpdateMe)
			})

			r.Get("/activity/token", h.Activity.GetToken)

			r.Route("/sites", func(r chi.Router) {
				r.Get("/", h.Site.List)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(profile.PermissionSiteManage))
					r.Post("/", h.Site.Create)
					r.Post("/geocode", h.Site.Geocode)
				})

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Site.Get)
					r.With(middleware.RequirePermission(profile.PermissionSiteManage)).Put("/", h.Site.Update)
					r.With(middleware.RequirePermission(profile.PermissionSiteManage)).Delete("/", h.Site.Delete)

					r.Route("/photos", func(r chi.Router) {
						r.Get("/", h.Onsite.ListPhotos)
						r.Post("/", h.Onsite.UploadPhoto)
					})
					r.Post("/messages", h.Onsite.SendMessage)
				})
			})

			r.Route("/assignments", func(r chi.Router) {
				r.Get("/me", h.Assignment.ListMine)
				r.Get("/me/calendar.ics", h.Assignment.CalendarFeed)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManager)
					r.Get("/", h.Assignment.List)
					r.Put("/employees/{id}", h.Assignment.Replace)
				})
			})

			r.Route("/time-entries", func(r chi.Router) {
				r.With(clockGuard...).Post("/clock-in", h.TimeEntry.ClockIn)
				r.With(clockGuard...).Post("/clock-out", h.TimeEntry.ClockOut)
				r.Get("/active", h.TimeEntry.GetActive)
				r.With(clockLimiter.Limit).Post("/active/location", h.TimeEntry.RecordLocation)
				r.Get("/me", h.TimeEntry.ListMine)
				r.With(middleware.RequireManager).Get("/", h.TimeEntry.List)
			})

			// Manager or admin
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)

				r.Get("/conflicts", h.Conflict.List)

				r.Route("/variance-alerts", func(r chi.Router) {
					r.Get("/", h.Variance.List)
					r.Post("/generate", h.Variance.Generate)
					r.Post("/{id}/acknowledge", h.Variance.Acknowledge)
				})

				r.Route("/messages", func(r chi.Router) {
					r.Get("/", h.Onsite.ListMessages)
					r.Post("/{id}/resolve", h.Onsite.ResolveMessage)
				})

				r.Route("/reports", func(r chi.Router) {
					r.Get("/timesheet", h.Report.Timesheet)
					r.Get("/timesheet/export", h.Report.ExportTimesheet)
				})
			})

			r.Route("/users", func(r chi.Router) {
				// Managers need the roster for assignments.
				r.With(middleware.RequireManager).Get("/", h.Profile.List)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Put("/{id}", h.Profile.Update)
					r.Delete("/{id}", h.Profile.Delete)

					r.Post("/invitations", h.Invitation.Invite)
					r.Post("/invitations/resend", h.Invitation.Resend)

					r.Get("/enrollments", h.Invitation.ListPendingEnrollments)
					r.Post("/enrollments/{id}/approve", h.Invitation.ApproveEnrollment)
					r.Post("/enrollments/{id}/reject", h.Invitation.RejectEnrollment)
				})
			})
		})
	})
	return r
}
