package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/notify"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// baseEnv sets the minimum valid environment and clears everything else
// LoadConfig reads.
func baseEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"AUTH_JWT_SECRET_FILE", "AUTH_JWT_ALGORITHM", "AUTH_ACCESS_TTL",
		"AUTH_REFRESH_TTL", "AUTH_RESET_TTL", "AUTH_RESET_LINK_BASE_URL",
		"AUTH_DATABASE_DRIVER", "AUTH_DATABASE_FILE", "AUTH_DATABASE_URL",
		"AUTH_NOTIFIER", "SMTP_ADDR", "SMTP_FROM", "SMTP_TLS",
		"KAFKA_BROKERS", "KAFKA_TOPIC", "BOOTSTRAP_ADMIN_EMAIL",
		"BOOTSTRAP_ADMIN_PASSWORD", "PORT", "RATELIMIT_STRICT_REQUESTS",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("AUTH_JWT_SECRET", testSecret)
	t.Setenv("AUTH_ISSUER", "storefront-auth")
	t.Setenv("AUTH_AUDIENCE", "storefront")
}

func TestLoadConfigDefaults(t *testing.T) {
	baseEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, []byte(testSecret), cfg.JWTSecret)
	require.Equal(t, "HS256", cfg.JWTAlgorithm)
	require.Equal(t, 15*time.Minute, cfg.AccessTTL)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	require.Equal(t, 15*time.Minute, cfg.ResetTTL)
	require.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	require.Equal(t, "auth.db", cfg.DatabaseFile)
	require.Equal(t, notify.KindLog, cfg.Notifier)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, httpx.StrictLimit, cfg.StrictLimit)
	require.Equal(t, httpx.ModerateLimit, cfg.ModerateLimit)
}

func TestLoadConfigOverrides(t *testing.T) {
	baseEnv(t)
	t.Setenv("AUTH_ACCESS_TTL", "5m")
	t.Setenv("AUTH_RESET_TTL", "30") // bare integers are minutes
	t.Setenv("AUTH_DATABASE_DRIVER", "Postgres")
	t.Setenv("AUTH_DATABASE_URL", "postgres://auth@localhost/auth")
	t.Setenv("AUTH_NOTIFIER", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("PORT", "9090")
	t.Setenv("RATELIMIT_STRICT_REQUESTS", "50")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, 5*time.Minute, cfg.AccessTTL)
	require.Equal(t, 30*time.Minute, cfg.ResetTTL)
	require.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	require.Equal(t, notify.KindKafka, cfg.Notifier)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, 50, cfg.StrictLimit.RequestsPerWindow)
}

func TestLoadConfigSecretFile(t *testing.T) {
	baseEnv(t)
	t.Setenv("AUTH_JWT_SECRET", "")

	path := filepath.Join(t.TempDir(), "secret")
	require.NoError(t, os.WriteFile(path, []byte(testSecret+"\n"), 0o600))
	t.Setenv("AUTH_JWT_SECRET_FILE", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, []byte(testSecret), cfg.JWTSecret)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		isErr error
		msg   string
	}{
		{
			name:  "missing secret",
			env:   map[string]string{"AUTH_JWT_SECRET": ""},
			isErr: jwtx.ErrMissingSecret,
		},
		{
			name:  "short secret",
			env:   map[string]string{"AUTH_JWT_SECRET": "too-short"},
			isErr: jwtx.ErrWeakSecret,
		},
		{
			name:  "unreadable secret file",
			env:   map[string]string{"AUTH_JWT_SECRET": "", "AUTH_JWT_SECRET_FILE": "/nonexistent/secret"},
			isErr: os.ErrNotExist,
		},
		{
			name:  "missing issuer",
			env:   map[string]string{"AUTH_ISSUER": ""},
			isErr: jwtx.ErrMissingIssuer,
		},
		{
			name:  "missing audience",
			env:   map[string]string{"AUTH_AUDIENCE": ""},
			isErr: jwtx.ErrMissingAudience,
		},
		{
			name: "non-positive ttl",
			env:  map[string]string{"AUTH_REFRESH_TTL": "-1h"},
			msg:  "AUTH_REFRESH_TTL",
		},
		{
			name: "zero ttl",
			env:  map[string]string{"AUTH_ACCESS_TTL": "0s"},
			msg:  "AUTH_ACCESS_TTL",
		},
		{
			name: "unknown driver",
			env:  map[string]string{"AUTH_DATABASE_DRIVER": "mysql"},
			msg:  "AUTH_DATABASE_DRIVER",
		},
		{
			name: "postgres without url",
			env:  map[string]string{"AUTH_DATABASE_DRIVER": "postgres"},
			msg:  "AUTH_DATABASE_URL",
		},
		{
			name:  "unknown notifier",
			env:   map[string]string{"AUTH_NOTIFIER": "pigeon"},
			isErr: notify.ErrUnknownKind,
		},
		{
			name: "smtp without address",
			env:  map[string]string{"AUTH_NOTIFIER": "smtp"},
			msg:  "SMTP_ADDR",
		},
		{
			name: "half a bootstrap admin",
			env:  map[string]string{"BOOTSTRAP_ADMIN_EMAIL": "admin@example.com"},
			msg:  "BOOTSTRAP_ADMIN_PASSWORD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			baseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			require.ErrorIs(t, err, ErrInvalidConfig)
			if tt.isErr != nil {
				require.ErrorIs(t, err, tt.isErr)
			}
			if tt.msg != "" {
				require.True(t, strings.Contains(err.Error(), tt.msg), err.Error())
			}
		})
	}
}

func TestLoadConfigReportsAllProblems(t *testing.T) {
	baseEnv(t)
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("AUTH_ISSUER", "")
	t.Setenv("AUTH_AUDIENCE", "")

	_, err := LoadConfig()
	require.ErrorIs(t, err, jwtx.ErrMissingSecret)
	require.ErrorIs(t, err, jwtx.ErrMissingIssuer)
	require.ErrorIs(t, err, jwtx.ErrMissingAudience)
}
