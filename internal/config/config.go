package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	OAuth2Google OAuth2GoogleConfig
	Email        EmailConfig
	SMTP         SMTPConfig
	SES          SESConfig
	Storage      StorageConfig
	Redis        RedisConfig
	Geocoder     GeocoderConfig
	Invitation   InvitationConfig
	Attendance   AttendanceConfig
	Variance     VarianceConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
	Timezone    string
}

type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Enabled reports whether Google login is configured.
func (c OAuth2GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// EmailConfig selects the outgoing mail driver: "smtp" or "ses".
type EmailConfig struct {
	Driver   string
	From     string
	FromName string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type SESConfig struct {
	Region string
}

// StorageConfig selects the file storage driver: "local" or "s3".
type StorageConfig struct {
	Type     string
	BasePath string
	BaseURL  string
	S3Bucket string
	S3Region string
}

type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	IdempotencyTTL time.Duration
}

// Enabled reports whether a Redis address is configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type GeocoderConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type InvitationConfig struct {
	BaseURL    string
	ExpiryDays int
}

type AttendanceConfig struct {
	DefaultRadiusMeters int
	LocationMaxAge      time.Duration
	StaleAfter          time.Duration
	ClockRatePerMinute  int
	ClockRateBurst      int
}

type VarianceConfig struct {
	JobInterval time.Duration
	RunHourUTC  int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, reading configuration from environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "timeguard"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		Timezone:    getEnv("APP_DEFAULT_TIMEZONE", "UTC"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// OAuth2 Google Configuration
	config.OAuth2Google = OAuth2GoogleConfig{
		ClientID:     getEnv("CLIENT_ID", ""),
		ClientSecret: getEnv("CLIENT_SECRET", ""),
		RedirectURL:  getEnv("REDIRECT_URL", ""),
		Scopes:       getEnvSlice("SCOPES"),
	}

	// Email configuration
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	config.Email = EmailConfig{
		Driver:   getEnv("EMAIL_DRIVER", "smtp"),
		From:     getEnv("EMAIL_FROM", "no-reply@timeguard.local"),
		FromName: getEnv("EMAIL_FROM_NAME", "TimeGuard"),
	}
	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     config.Email.From,
		FromName: config.Email.FromName,
	}
	config.SES = SESConfig{
		Region: getEnv("SES_REGION", "us-east-1"),
	}

	// Storage configuration
	config.Storage = StorageConfig{
		Type:     getEnv("STORAGE_TYPE", "local"),
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/uploads"),
		S3Bucket: getEnv("S3_BUCKET", ""),
		S3Region: getEnv("S3_REGION", "us-east-1"),
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	idempotencyTTL, err := getEnvDuration("IDEMPOTENCY_TTL", "24h")
	if err != nil {
		return nil, err
	}
	config.Redis = RedisConfig{
		Addr:           getEnv("REDIS_ADDR", ""),
		Password:       getEnv("REDIS_PASSWORD", ""),
		DB:             redisDB,
		IdempotencyTTL: idempotencyTTL,
	}

	// Geocoder configuration
	geocodeTimeout, err := getEnvDuration("GEOCODER_TIMEOUT", "20s")
	if err != nil {
		return nil, err
	}
	config.Geocoder = GeocoderConfig{
		APIKey:  getEnv("GEMINI_API_KEY", ""),
		Model:   getEnv("GEOCODER_MODEL", "gemini-2.5-flash"),
		Timeout: geocodeTimeout,
	}

	// Invitation configuration
	expiryDays, err := strconv.Atoi(getEnv("INVITATION_EXPIRY_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid INVITATION_EXPIRY_DAYS: %w", err)
	}
	config.Invitation = InvitationConfig{
		BaseURL:    getEnv("INVITATION_BASE_URL", config.App.FrontendURL+"/enroll"),
		ExpiryDays: expiryDays,
	}

	// Attendance configuration
	radius, err := strconv.Atoi(getEnv("ATTENDANCE_DEFAULT_RADIUS_METERS", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_DEFAULT_RADIUS_METERS: %w", err)
	}
	maxAge, err := getEnvDuration("ATTENDANCE_LOCATION_MAX_AGE", "2m")
	if err != nil {
		return nil, err
	}
	staleAfter, err := getEnvDuration("ATTENDANCE_STALE_AFTER", "16h")
	if err != nil {
		return nil, err
	}
	ratePerMinute, err := strconv.Atoi(getEnv("ATTENDANCE_CLOCK_RATE_PER_MINUTE", "6"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_CLOCK_RATE_PER_MINUTE: %w", err)
	}
	rateBurst, err := strconv.Atoi(getEnv("ATTENDANCE_CLOCK_RATE_BURST", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_CLOCK_RATE_BURST: %w", err)
	}
	config.Attendance = AttendanceConfig{
		DefaultRadiusMeters: radius,
		LocationMaxAge:      maxAge,
		StaleAfter:          staleAfter,
		ClockRatePerMinute:  ratePerMinute,
		ClockRateBurst:      rateBurst,
	}

	// Variance job configuration
	jobInterval, err := getEnvDuration("VARIANCE_JOB_INTERVAL", "1h")
	if err != nil {
		return nil, err
	}
	runHour, err := strconv.Atoi(getEnv("VARIANCE_RUN_HOUR_UTC", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid VARIANCE_RUN_HOUR_UTC: %w", err)
	}
	config.Variance = VarianceConfig{
		JobInterval: jobInterval,
		RunHourUTC:  runHour,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.OAuth2Google.ClientID != "" && c.OAuth2Google.RedirectURL == "" {
		return fmt.Errorf("REDIRECT_URL is required when CLIENT_ID is set")
	}
	switch c.Email.Driver {
	case "smtp", "ses":
	default:
		return fmt.Errorf("EMAIL_DRIVER must be smtp or ses, got %q", c.Email.Driver)
	}
	switch c.Storage.Type {
	case "local":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_TYPE=s3")
		}
	default:
		return fmt.Errorf("STORAGE_TYPE must be local or s3, got %q", c.Storage.Type)
	}
	if c.Attendance.DefaultRadiusMeters <= 0 {
		return fmt.Errorf("ATTENDANCE_DEFAULT_RADIUS_METERS must be positive")
	}
	if c.Attendance.ClockRatePerMinute <= 0 || c.Attendance.ClockRateBurst <= 0 {
		return fmt.Errorf("ATTENDANCE_CLOCK_RATE_PER_MINUTE and ATTENDANCE_CLOCK_RATE_BURST must be positive")
	}
	if c.Variance.RunHourUTC < 0 || c.Variance.RunHourUTC > 23 {
		return fmt.Errorf("VARIANCE_RUN_HOUR_UTC must be between 0 and 23")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_DEFAULT_TIMEZONE: %w", err)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string = strings.Split(value, ",")
	return result
}

func getEnvDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
