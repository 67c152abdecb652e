package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/redis/go-redis/v9"
	"github.com/timeguard/timeguard-api/internal/config"
	"github.com/timeguard/timeguard-api/internal/domain/site"
	appHTTP "github.com/timeguard/timeguard-api/internal/handler/http"
	"github.com/timeguard/timeguard-api/internal/pkg/cron"
	"github.com/timeguard/timeguard-api/internal/pkg/database"
	"github.com/timeguard/timeguard-api/internal/pkg/email"
	"github.com/timeguard/timeguard-api/internal/pkg/geocode"
	"github.com/timeguard/timeguard-api/internal/pkg/idempotency"
	"github.com/timeguard/timeguard-api/internal/pkg/jwt"
	"github.com/timeguard/timeguard-api/internal/pkg/oauth"
	"github.com/timeguard/timeguard-api/internal/pkg/sse"
	"github.com/timeguard/timeguard-api/internal/pkg/storage"
	"github.com/timeguard/timeguard-api/internal/repository/postgresql"
	serviceAssignment "github.com/timeguard/timeguard-api/internal/service/assignment"
	serviceAuth "github.com/timeguard/timeguard-api/internal/service/auth"
	serviceConflict "github.com/timeguard/timeguard-api/internal/service/conflict"
	serviceInvitation "github.com/timeguard/timeguard-api/internal/service/invitation"
	serviceOnsite "github.com/timeguard/timeguard-api/internal/service/onsite"
	serviceProfile "github.com/timeguard/timeguard-api/internal/service/profile"
	serviceReport "github.com/timeguard/timeguard-api/internal/service/report"
	serviceSite "github.com/timeguard/timeguard-api/internal/service/site"
	serviceTimeEntry "github.com/timeguard/timeguard-api/internal/service/timeentry"
	serviceVariance "github.com/timeguard/timeguard-api/internal/service/variance"
)

const (
	staleCheckInterval = 15 * time.Minute
	shutdownTimeout    = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})).
		With(slog.String("app", "timeguard-api"), slog.String("env", cfg.App.Env)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := postgresql.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	// Optional Redis: idempotency cache and geocode cache
	var rdb *redis.Client
	var idempotencyStore *idempotency.Store
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		idempotencyStore = idempotency.NewStore(rdb, cfg.Redis.IdempotencyTTL)
		slog.Info("Redis connected", "addr", cfg.Redis.Addr)
	} else {
		slog.Warn("REDIS_ADDR not set, idempotency cache disabled")
	}

	fileStorage, err := newFileStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	emailService, err := newEmailService(ctx, cfg)
	if err != nil {
		return err
	}

	// A typed nil would defeat the service's nil check, so the interface stays nil when disabled.
	var geocoder site.Geocoder
	if cfg.Geocoder.APIKey != "" {
		g, err := geocode.New(ctx, cfg.Geocoder.APIKey, cfg.Geocoder.Model, cfg.Geocoder.Timeout, rdb)
		if err != nil {
			return fmt.Errorf("init geocoder: %w", err)
		}
		geocoder = g
	} else {
		slog.Warn("GEOCODER_API_KEY not set, address geocoding disabled")
	}

	var googleService oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		googleService = oauth.NewGoogleService(cfg.OAuth2Google)
	}

	secureCookie := cfg.App.Env == "production"
	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration, secureCookie)
	if err != nil {
		return fmt.Errorf("init jwt: %w", err)
	}

	hub := sse.NewHub()
	tx := postgresql.NewTransactor(db)

	// Repositories
	profileRepo := postgresql.NewProfileRepository(db)
	tokenRepo := postgresql.NewTokenRepository(db)
	invitationRepo := postgresql.NewInvitationRepository(db)
	siteRepo := postgresql.NewSiteRepository(db)
	assignmentRepo := postgresql.NewAssignmentRepository(db)
	entryRepo := postgresql.NewTimeEntryRepository(db)
	conflictRepo := postgresql.NewConflictRepository(db)
	alertRepo := postgresql.NewAlertRepository(db)
	photoRepo := postgresql.NewPhotoRepository(db)
	messageRepo := postgresql.NewMessageRepository(db)
	reportRepo := postgresql.NewReportRepository(db)

	// Services
	authService := serviceAuth.NewAuthService(tx, profileRepo, JWTService, tokenRepo)
	profileService := serviceProfile.NewProfileService(profileRepo)
	invitationService := serviceInvitation.NewInvitationService(tx, invitationRepo, profileRepo, emailService, cfg.Invitation, cfg.App.FrontendURL+"/login")
	siteService := serviceSite.NewSiteService(siteRepo, profileRepo, geocoder, serviceSite.Defaults{
		RadiusMeters: cfg.Attendance.DefaultRadiusMeters,
		Timezone:     cfg.App.Timezone,
	})
	assignmentService := serviceAssignment.NewAssignmentService(tx, assignmentRepo, siteRepo, profileRepo)
	timeEntryService := serviceTimeEntry.NewTimeEntryService(tx, entryRepo, siteRepo, assignmentRepo, conflictRepo, profileRepo, hub, cfg.Attendance)
	conflictService := serviceConflict.NewConflictService(conflictRepo)
	varianceService := serviceVariance.NewVarianceService(alertRepo, profileRepo, emailService, hub)
	onsiteService := serviceOnsite.NewOnsiteService(photoRepo, messageRepo, siteRepo, assignmentRepo, fileStorage, hub)
	reportService := serviceReport.NewReportService(reportRepo)

	// Background jobs
	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(timeEntryService, varianceService, cfg.Variance.RunHourUTC).
		RegisterJobs(scheduler, staleCheckInterval, cfg.Variance.JobInterval)
	scheduler.Start()
	defer scheduler.Stop()

	handlers := appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(JWTService, authService, googleService, cfg.App.FrontendURL, secureCookie),
		Profile:    appHTTP.NewProfileHandler(profileService),
		Invitation: appHTTP.NewInvitationHandler(invitationService),
		Site:       appHTTP.NewSiteHandler(siteService),
		Assignment: appHTTP.NewAssignmentHandler(assignmentService),
		TimeEntry:  appHTTP.NewTimeEntryHandler(timeEntryService),
		Conflict:   appHTTP.NewConflictHandler(conflictService),
		Variance:   appHTTP.NewVarianceHandler(varianceService),
		Onsite:     appHTTP.NewOnsiteHandler(onsiteService),
		Report:     appHTTP.NewReportHandler(reportService),
		Activity:   appHTTP.NewActivityHandler(hub, JWTService),
	}
	router := appHTTP.NewRouter(JWTService, handlers, appHTTP.RouterOptions{
		Env:                cfg.App.Env,
		FrontendURL:        cfg.App.FrontendURL,
		LogLevel:           cfg.SlogLevel(),
		ClockRatePerMinute: cfg.Attendance.ClockRatePerMinute,
		ClockRateBurst:     cfg.Attendance.ClockRateBurst,
		Idempotency:        idempotencyStore,
	})

	// Local uploads are served by the API itself.
	if local, ok := fileStorage.(*storage.LocalStorage); ok {
		router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(local.BasePath()))))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newFileStorage(ctx context.Context, cfg config.StorageConfig) (storage.FileStorage, error) {
	switch cfg.Type {
	case "local":
		s, err := storage.NewLocalStorage(cfg.BasePath, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("init local storage: %w", err)
		}
		return s, nil
	case "s3":
		s, err := storage.NewS3Storage(ctx, cfg.S3Bucket, cfg.S3Region)
		if err != nil {
			return nil, fmt.Errorf("init s3 storage: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
	}
}

func newEmailService(ctx context.Context, cfg *config.Config) (email.EmailService, error) {
	var sender email.Sender
	switch cfg.Email.Driver {
	case "ses":
		s, err := email.NewSESSender(ctx, cfg.SES.Region)
		if err != nil {
			return nil, fmt.Errorf("init ses sender: %w", err)
		}
		sender = s
	case "smtp", "":
		sender = email.NewSMTPSender(cfg.SMTP)
	default:
		return nil, fmt.Errorf("unsupported email driver %q", cfg.Email.Driver)
	}

	svc, err := email.NewEmailService(sender, cfg.Email.From, cfg.Email.FromName)
	if err != nil {
		return nil, fmt.Errorf("init email service: %w", err)
	}
	return svc, nil
}
