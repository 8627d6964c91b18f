package service_test

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/metrics"
	"github.com/aussiebroadwan/storefront/internal/auth/service"
	"github.com/aussiebroadwan/storefront/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	customerEmail    = "user@example.com"
	customerPassword = "orig1nal-pass"
	adminEmail       = "admin@example.com"
	adminPassword    = "adm1n-pass-word"
)

var t0 = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type sentReset struct {
	to, code, link string
}

type captureNotifier struct {
	mu   sync.Mutex
	sent []sentReset
	err  error
}

func (n *captureNotifier) SendPasswordReset(_ context.Context, to, code, link string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentReset{to: to, code: code, link: link})
	return nil
}

func (n *captureNotifier) last(t *testing.T) sentReset {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent, "no reset was sent")
	return n.sent[len(n.sent)-1]
}

// linkToken pulls the token query parameter out of a sent reset link.
func (r sentReset) linkToken(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(r.link)
	require.NoError(t, err)
	tok := u.Query().Get("token")
	require.NotEmpty(t, tok)
	return tok
}

type env struct {
	store    *sqlite.Store
	clock    *clock
	codec    *jwtx.Codec
	metrics  *metrics.Metrics
	notifier *captureNotifier
	sessions *service.SessionService
	recovery *service.RecoveryService
	users    *service.UserService

	customerID int64
	adminID    int64
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	clk := &clock{t: t0}
	codec, err := jwtx.NewCodec(jwtx.CodecOptions{
		Secret:   []byte("service-test-secret-0123456789abcdef"),
		Issuer:   "storefront-auth",
		Audience: "storefront-api",
		Now:      clk.Now,
	})
	require.NoError(t, err)

	m := metrics.New()
	n := &captureNotifier{}
	e := &env{
		store:    st,
		clock:    clk,
		codec:    codec,
		metrics:  m,
		notifier: n,
		sessions: &service.SessionService{
			Store:      st,
			Issuer:     codec,
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 24 * time.Hour,
			Metrics:    m,
			Now:        clk.Now,
		},
		recovery: &service.RecoveryService{
			Store:       st,
			Notifier:    n,
			ResetTTL:    15 * time.Minute,
			LinkBaseURL: "https://shop.example.com/reset-password",
			Metrics:     m,
			Now:         clk.Now,
		},
		users: &service.UserService{Store: st},
	}

	boot := &service.BootstrapService{Store: st, Now: clk.Now}
	require.NoError(t, boot.Run(ctx, service.BootstrapAdmin{Email: adminEmail, Password: adminPassword}))

	admin, err := st.Users().GetUserByEmail(ctx, adminEmail)
	require.NoError(t, err)
	e.adminID = admin.ID

	e.customerID, err = e.users.CreateCustomer(ctx, "Ana", "Pérez", customerEmail, customerPassword, t0)
	require.NoError(t, err)
	return e
}
