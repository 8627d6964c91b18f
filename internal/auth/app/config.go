package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/notify"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
)

// Database drivers accepted by AUTH_DATABASE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrInvalidConfig wraps every configuration problem reported by LoadConfig.
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	JWTSecret    []byte        // Required: AUTH_JWT_SECRET or the contents of AUTH_JWT_SECRET_FILE
	JWTAlgorithm string        // Optional: HS256, HS384 or HS512 (default: HS256)
	Issuer       string        // Required: iss claim of access tokens
	Audience     string        // Required: aud claim of access tokens
	AccessTTL    time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL   time.Duration // Optional: refresh token lifetime (default: 168h)
	ResetTTL     time.Duration // Optional: password reset lifetime (default: 15m)

	ResetLinkBaseURL string // Optional: storefront page receiving reset links

	DatabaseDriver string // Optional: sqlite or postgres (default: sqlite)
	DatabaseFile   string // Optional: path to SQLite database file (default: ./auth.db)
	DatabaseURL    string // Required for postgres: connection URL
	PepperFile     string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	Notifier     string // Optional: log, smtp or kafka (default: log)
	SMTP         notify.SMTPConfig
	KafkaBrokers []string
	KafkaTopic   string

	BootstrapAdminEmail    string // Optional: first admin created on an empty database
	BootstrapAdminPassword string

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	StrictLimit   httpx.RateLimitConfig
	ModerateLimit httpx.RateLimitConfig
}

// LoadConfig reads the configuration from the environment. All problems are
// reported together.
func LoadConfig() (Config, error) {
	cfg := Config{
		JWTAlgorithm:     getEnvOrDefault("AUTH_JWT_ALGORITHM", "HS256"),
		Issuer:           os.Getenv("AUTH_ISSUER"),
		Audience:         os.Getenv("AUTH_AUDIENCE"),
		AccessTTL:        getEnvDurationOrDefault("AUTH_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:       getEnvDurationOrDefault("AUTH_REFRESH_TTL", 7*24*time.Hour),
		ResetTTL:         getEnvDurationOrDefault("AUTH_RESET_TTL", 15*time.Minute),
		ResetLinkBaseURL: os.Getenv("AUTH_RESET_LINK_BASE_URL"),
		DatabaseDriver:   strings.ToLower(getEnvOrDefault("AUTH_DATABASE_DRIVER", DriverSQLite)),
		DatabaseFile:     getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		DatabaseURL:      os.Getenv("AUTH_DATABASE_URL"),
		PepperFile:       getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		SMTP: notify.SMTPConfig{
			Addr:     os.Getenv("SMTP_ADDR"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
			TLS:      getEnvBoolOrDefault("SMTP_TLS", false),
			Timeout:  getEnvDurationOrDefault("SMTP_TIMEOUT", 10*time.Second),
		},
		KafkaBrokers:           splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:             getEnvOrDefault("KAFKA_TOPIC", "storefront.auth.password-reset"),
		BootstrapAdminEmail:    os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),
		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		Env:                    getEnvOrDefault("ENV", "dev"),
		LogLevel:               getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:              getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                   getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:    getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		StrictLimit:            httpx.RateLimitConfigFromEnv("STRICT", httpx.StrictLimit),
		ModerateLimit:          httpx.RateLimitConfigFromEnv("MODERATE", httpx.ModerateLimit),
	}

	var errs []error

	secret, err := loadSecret(os.Getenv("AUTH_JWT_SECRET"), os.Getenv("AUTH_JWT_SECRET_FILE"))
	if err != nil {
		errs = append(errs, err)
	}
	cfg.JWTSecret = secret

	notifier, err := notify.ParseKind(os.Getenv("AUTH_NOTIFIER"))
	if err != nil {
		errs = append(errs, err)
	}
	cfg.Notifier = notifier

	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return cfg, nil
}

func (c Config) validate() []error {
	var errs []error
	switch {
	case len(c.JWTSecret) == 0:
		errs = append(errs, fmt.Errorf("AUTH_JWT_SECRET: %w", jwtx.ErrMissingSecret))
	case len(c.JWTSecret) < jwtx.MinSecretLength:
		errs = append(errs, fmt.Errorf("AUTH_JWT_SECRET: %w", jwtx.ErrWeakSecret))
	}
	if c.Issuer == "" {
		errs = append(errs, fmt.Errorf("AUTH_ISSUER: %w", jwtx.ErrMissingIssuer))
	}
	if c.Audience == "" {
		errs = append(errs, fmt.Errorf("AUTH_AUDIENCE: %w", jwtx.ErrMissingAudience))
	}

	for name, ttl := range map[string]time.Duration{
		"AUTH_ACCESS_TTL":  c.AccessTTL,
		"AUTH_REFRESH_TTL": c.RefreshTTL,
		"AUTH_RESET_TTL":   c.ResetTTL,
	} {
		if ttl <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be positive, got %s", name, ttl))
		}
	}

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_FILE: required for sqlite"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("AUTH_DATABASE_URL: required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_DATABASE_DRIVER: unknown driver %q", c.DatabaseDriver))
	}

	switch c.Notifier {
	case notify.KindSMTP:
		if c.SMTP.Addr == "" || c.SMTP.From == "" {
			errs = append(errs, errors.New("SMTP_ADDR and SMTP_FROM: required for the smtp notifier"))
		}
	case notify.KindKafka:
		if len(c.KafkaBrokers) == 0 || c.KafkaTopic == "" {
			errs = append(errs, errors.New("KAFKA_BROKERS and KAFKA_TOPIC: required for the kafka notifier"))
		}
	}

	if (c.BootstrapAdminEmail == "") != (c.BootstrapAdminPassword == "") {
		errs = append(errs, errors.New("BOOTSTRAP_ADMIN_EMAIL and BOOTSTRAP_ADMIN_PASSWORD: set both or neither"))
	}
	return errs
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
