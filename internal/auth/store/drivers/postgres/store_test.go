package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
	"github.com/aussiebroadwan/storefront/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// postgres keeps microseconds
var t0 = time.Date(2026, 4, 1, 9, 30, 0, 123456000, time.UTC)

func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "storefront",
				"POSTGRES_PASSWORD": "storefront",
				"POSTGRES_DB":       "storefront",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://storefront:storefront@%s:%s/storefront?sslmode=disable", host, port.Port())
}

func newStore(t *testing.T) *postgres.Store {
	t.Helper()
	s, err := postgres.NewStore(context.Background(), postgres.Config{
		URL:          startPostgres(t),
		MaxConns:     8,
		QueryTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.ApplyMigrations(), "second run is a no-op")
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s store.Store, email string) domain.User {
	t.Helper()
	ctx := context.Background()

	role, err := s.Roles().GetRoleByName(ctx, domain.RoleCustomer)
	if errors.Is(err, store.ErrNotFound) {
		role, err = s.Roles().CreateRole(ctx, domain.RoleCustomer, t0)
	}
	require.NoError(t, err)

	id, err := s.Users().CreateUser(ctx, domain.User{
		FirstName:    "Ana",
		LastName:     "Pérez",
		Email:        email,
		PasswordHash: "$argon2id$placeholder",
		RoleID:       role.ID,
		Active:       true,
		CreatedAt:    t0,
	})
	require.NoError(t, err)

	u, err := s.Users().GetUserByID(ctx, id)
	require.NoError(t, err)
	return u
}

// One container serves every subtest; each subtest uses its own email.
func TestPostgresStore(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	t.Run("users", func(t *testing.T) {
		u := seedUser(t, s, "Ana.Perez@Example.com")
		require.Equal(t, "ana.perez@example.com", u.Email)
		require.True(t, u.CreatedAt.Equal(t0))

		byEmail, err := s.Users().GetUserByEmail(ctx, "ANA.PEREZ@EXAMPLE.COM")
		require.NoError(t, err)
		require.Equal(t, u.ID, byEmail.ID)

		_, err = s.Users().CreateUser(ctx, domain.User{
			Email: "ana.perez@example.com", PasswordHash: "x", RoleID: u.RoleID, CreatedAt: t0,
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		require.NoError(t, s.Users().UpdatePasswordHash(ctx, u.ID, "new-hash", t0.Add(time.Minute)))
		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, "new-hash", got.PasswordHash)

		require.ErrorIs(t, s.Users().UpdatePasswordHash(ctx, 1<<40, "x", t0), store.ErrNotFound)
		_, err = s.Users().GetUserByID(ctx, 1<<40)
		require.ErrorIs(t, err, store.ErrNotFound)

		empty, err := s.Users().IsEmpty(ctx)
		require.NoError(t, err)
		require.False(t, empty)
	})

	t.Run("refresh tokens compare and swap", func(t *testing.T) {
		u := seedUser(t, s, "cas@example.com")
		tok := domain.RefreshToken{
			ID:        idx.New().String(),
			UserID:    u.ID,
			TokenHash: "hash-cas",
			CreatedAt: t0,
			ExpiresAt: t0.Add(time.Hour),
		}
		require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, tok))

		const racers = 8
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			wins     int
			conflict int
		)
		for range racers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := s.WithTx(ctx, func(tx store.Tx) error {
					return tx.RefreshTokens().MarkRefreshTokenUsed(ctx, "hash-cas", "next", t0.Add(time.Second))
				})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					wins++
				case errors.Is(err, store.ErrConflict):
					conflict++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()
		require.Equal(t, 1, wins)
		require.Equal(t, racers-1, conflict)

		got, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-cas")
		require.NoError(t, err)
		require.True(t, got.Used)
		require.Equal(t, "next", got.ReplacedBy)
	})

	t.Run("revoke keeps first reason", func(t *testing.T) {
		u := seedUser(t, s, "revoke@example.com")
		require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
			ID: idx.New().String(), UserID: u.ID, TokenHash: "hash-rv", CreatedAt: t0, ExpiresAt: t0.Add(time.Hour),
		}))
		require.NoError(t, s.RefreshTokens().RevokeRefreshToken(ctx, "hash-rv", domain.RevokeReasonLogout, t0))
		require.NoError(t, s.RefreshTokens().RevokeRefreshToken(ctx, "hash-rv", domain.RevokeReasonAdmin, t0))

		got, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-rv")
		require.NoError(t, err)
		require.True(t, got.Revoked)
		require.Equal(t, domain.RevokeReasonLogout, got.RevokedReason)

		require.ErrorIs(t, s.RefreshTokens().RevokeRefreshToken(ctx, "missing", "x", t0), store.ErrNotFound)
	})

	t.Run("revoke leaves rotated token alone", func(t *testing.T) {
		u := seedUser(t, s, "rotated@example.com")
		require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
			ID: idx.New().String(), UserID: u.ID, TokenHash: "hash-rot", CreatedAt: t0, ExpiresAt: t0.Add(time.Hour),
		}))
		require.NoError(t, s.RefreshTokens().MarkRefreshTokenUsed(ctx, "hash-rot", "hash-rot-next", t0))
		before, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-rot")
		require.NoError(t, err)

		require.NoError(t, s.RefreshTokens().RevokeRefreshToken(ctx, "hash-rot", domain.RevokeReasonLogout, t0.Add(time.Minute)))

		after, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-rot")
		require.NoError(t, err)
		require.Equal(t, before, after)
		require.False(t, after.Revoked)
	})

	t.Run("revoke all active", func(t *testing.T) {
		u := seedUser(t, s, "all@example.com")
		for i, ttl := range []time.Duration{time.Hour, time.Hour, -time.Minute} {
			require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
				ID:        idx.New().String(),
				UserID:    u.ID,
				TokenHash: fmt.Sprintf("hash-all-%d", i),
				CreatedAt: t0.Add(-2 * time.Minute),
				ExpiresAt: t0.Add(ttl),
			}))
		}
		n, err := s.RefreshTokens().RevokeAllActiveUserRefreshTokens(ctx, u.ID, domain.RevokeReasonPasswordReset, t0)
		require.NoError(t, err)
		require.EqualValues(t, 2, n)
	})

	t.Run("password resets", func(t *testing.T) {
		u := seedUser(t, s, "reset@example.com")
		first := domain.PasswordResetToken{
			ID: idx.NewAt(t0).String(), UserID: u.ID, CodeHash: "c1", LinkHash: "l1",
			CreatedAt: t0, ExpiresAt: t0.Add(15 * time.Minute),
		}
		second := first
		second.ID = idx.NewAt(t0).String()
		second.CodeHash, second.LinkHash = "c2", "l2"
		require.NoError(t, s.PasswordResets().CreatePasswordReset(ctx, first))
		require.NoError(t, s.PasswordResets().CreatePasswordReset(ctx, second))

		latest, err := s.PasswordResets().GetLatestPasswordResetForEmail(ctx, "RESET@example.com")
		require.NoError(t, err)
		require.Equal(t, second.ID, latest.ID, "same instant falls back to id order")

		byLink, err := s.PasswordResets().GetPasswordResetByLinkHash(ctx, "l1")
		require.NoError(t, err)
		require.Equal(t, first.ID, byLink.ID)
		require.Nil(t, byLink.UsedAt)

		require.NoError(t, s.PasswordResets().MarkPasswordResetUsed(ctx, second.ID, t0.Add(time.Minute)))
		require.ErrorIs(t, s.PasswordResets().MarkPasswordResetUsed(ctx, second.ID, t0), store.ErrConflict)

		n, err := s.PasswordResets().InvalidateOutstandingPasswordResets(ctx, u.ID, t0)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		byLink, err = s.PasswordResets().GetPasswordResetByLinkHash(ctx, "l1")
		require.NoError(t, err)
		require.True(t, byLink.Used)
		require.NotNil(t, byLink.UsedAt)
	})

	t.Run("with tx rolls back", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.WithTx(ctx, func(tx store.Tx) error {
			_, err := tx.Roles().CreateRole(ctx, "ghost", t0)
			require.NoError(t, err)
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = s.Roles().GetRoleByName(ctx, "ghost")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
