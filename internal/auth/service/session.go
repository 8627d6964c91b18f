package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/metrics"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/aussiebroadwan/storefront/pkg/validx"
)

// TokenIssuer signs access tokens. *jwtx.Codec implements it.
type TokenIssuer interface {
	Issue(userID int64, role string, ttl time.Duration) (string, error)
}

type SessionService struct {
	Store      store.Store
	Issuer     TokenIssuer
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Metrics    *metrics.Metrics

	// Now defaults to time.Now.
	Now func() time.Time
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// timingHash returns a valid hash to verify against when the account does
// not exist, so the response time does not reveal whether it does.
func timingHash() string {
	dummyHashOnce.Do(func() {
		h, err := cryptox.HashPassword("storefront-timing-equaliser")
		if err == nil {
			dummyHash = h
		}
	})
	return dummyHash
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Login authenticates email and password and opens a new session.
//
// Unknown emails, disabled accounts and wrong passwords all yield
// ErrInvalidCredentials after the same amount of hashing work.
func (s *SessionService) Login(
	ctx context.Context,
	email, password string,
	meta domain.ClientMeta,
) (*domain.TokenPair, error) {
	email = validx.NormalizeEmail(email)
	l := slogx.FromContext(ctx).With(slog.String("email", email))

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.Metrics.Login(metrics.OutcomeError)
			return nil, fmt.Errorf("login: lookup user: %w", err)
		}
		_ = cryptox.VerifyPassword(password, timingHash())
		l.Info("login failed", slog.String("kind", "invalid_credentials"), slog.String("cause", "unknown_email"))
		s.Metrics.Login(metrics.OutcomeFailure)
		return nil, ErrInvalidCredentials
	}

	l = l.With(slog.Int64("user_id", user.ID))

	verifyErr := cryptox.VerifyPassword(password, user.PasswordHash)
	if !user.Active {
		l.Info("login failed", slog.String("kind", "invalid_credentials"), slog.String("cause", "inactive"))
		s.Metrics.Login(metrics.OutcomeFailure)
		return nil, ErrInvalidCredentials
	}
	if verifyErr != nil {
		if errors.Is(verifyErr, cryptox.ErrInvalidHash) {
			l.Error("stored password hash is unreadable", slog.Any("err", verifyErr))
		} else {
			l.Info("login failed", slog.String("kind", "invalid_credentials"), slog.String("cause", "password"))
		}
		s.Metrics.Login(metrics.OutcomeFailure)
		return nil, ErrInvalidCredentials
	}

	role, err := s.Store.Roles().GetRoleByID(ctx, user.RoleID)
	if err != nil {
		s.Metrics.Login(metrics.OutcomeError)
		return nil, fmt.Errorf("login: lookup role: %w", err)
	}

	now := s.now()
	if cryptox.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, l, user.ID, password, now)
	}

	pair, refresh, err := s.newPair(user.ID, role.Name, meta, now)
	if err != nil {
		s.Metrics.Login(metrics.OutcomeError)
		return nil, err
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, refresh); err != nil {
		s.Metrics.Login(metrics.OutcomeError)
		return nil, fmt.Errorf("login: store refresh token: %w", err)
	}

	l.Info("login succeeded", slog.String("role", role.Name))
	s.Metrics.Login(metrics.OutcomeSuccess)
	return pair, nil
}

// upgradeHash replaces a legacy hash after a successful login. Failure only
// costs another upgrade attempt next time.
func (s *SessionService) upgradeHash(ctx context.Context, l *slog.Logger, userID int64, password string, now time.Time) {
	hash, err := cryptox.HashPassword(password)
	if err == nil {
		err = s.Store.Users().UpdatePasswordHash(ctx, userID, hash, now)
	}
	if err != nil {
		l.Warn("password hash upgrade failed", slog.Any("err", err))
		return
	}
	l.Info("password hash upgraded")
}

// Refresh exchanges a refresh token for a new pair. Every token is single
// use: presenting a used or revoked token revokes all of the owner's active
// tokens and fails with ErrReuseDetected.
func (s *SessionService) Refresh(
	ctx context.Context,
	value string,
	meta domain.ClientMeta,
) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	value = strings.TrimSpace(value)
	if value == "" {
		s.Metrics.Refresh(metrics.OutcomeNotFound)
		return nil, ErrRefreshNotFound
	}
	hash := cryptox.FingerprintToken(value)
	now := s.now()

	var (
		pair    *domain.TokenPair
		ownerID int64
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRefreshNotFound
			}
			return err
		}
		ownerID = current.UserID

		if current.Used || current.Revoked {
			return ErrReuseDetected
		}
		if current.Expired(now) {
			return ErrRefreshExpired
		}

		user, err := tx.Users().GetUserByID(ctx, current.UserID)
		if err != nil {
			return err
		}
		if !user.Active {
			return ErrInvalidCredentials
		}
		role, err := tx.Roles().GetRoleByID(ctx, user.RoleID)
		if err != nil {
			return err
		}

		next, refresh, err := s.newPair(user.ID, role.Name, meta, now)
		if err != nil {
			return err
		}

		if err := tx.RefreshTokens().MarkRefreshTokenUsed(ctx, hash, refresh.TokenHash, now); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrReuseDetected
			}
			return err
		}
		if err := tx.RefreshTokens().CreateRefreshToken(ctx, refresh); err != nil {
			return err
		}

		pair = next
		return nil
	})

	l = l.With(slog.Int64("user_id", ownerID))
	switch {
	case err == nil:
		l.Info("refresh token rotated")
		s.Metrics.Refresh(metrics.OutcomeSuccess)
		return pair, nil

	case errors.Is(err, ErrReuseDetected):
		// Runs after the failed transaction released its connection.
		n, rerr := s.Store.RefreshTokens().RevokeAllActiveUserRefreshTokens(
			ctx, ownerID, domain.RevokeReasonReuseDetected, now)
		if rerr != nil {
			l.Error("revoking sessions after refresh token reuse failed", slog.Any("err", rerr))
			s.Metrics.Refresh(metrics.OutcomeError)
			return nil, fmt.Errorf("refresh: revoke after reuse: %w", errors.Join(ErrReuseDetected, rerr))
		}
		l.Warn("refresh token reuse detected", slog.String("kind", "reuse_detected"), slog.Int64("revoked", n))
		s.Metrics.Revoked(domain.RevokeReasonReuseDetected, n)
		s.Metrics.Refresh(metrics.OutcomeReuse)
		return nil, ErrReuseDetected

	case errors.Is(err, ErrRefreshNotFound):
		l.Info("refresh failed", slog.String("kind", "not_found"))
		s.Metrics.Refresh(metrics.OutcomeNotFound)
		return nil, err

	case errors.Is(err, ErrRefreshExpired):
		l.Info("refresh failed", slog.String("kind", "expired"))
		s.Metrics.Refresh(metrics.OutcomeExpired)
		return nil, err

	case errors.Is(err, ErrInvalidCredentials):
		l.Info("refresh failed", slog.String("kind", "invalid_credentials"), slog.String("cause", "inactive"))
		s.Metrics.Refresh(metrics.OutcomeFailure)
		return nil, err

	default:
		l.Error("refresh failed", slog.String("kind", "internal"), slog.Any("err", err))
		s.Metrics.Refresh(metrics.OutcomeError)
		return nil, fmt.Errorf("refresh: %w", err)
	}
}

// Revoke marks a refresh token revoked. A token that was already spent or
// revoked is left as it is and the call still succeeds.
func (s *SessionService) Revoke(ctx context.Context, value, reason string) error {
	l := slogx.FromContext(ctx)
	if reason == "" {
		reason = domain.RevokeReasonLogout
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return ErrRefreshNotFound
	}

	err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, cryptox.FingerprintToken(value), reason, s.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("revoke failed", slog.String("kind", "not_found"))
			return ErrRefreshNotFound
		}
		l.Error("revoke failed", slog.String("kind", "internal"), slog.Any("err", err))
		return fmt.Errorf("revoke: %w", err)
	}

	l.Info("refresh token revoked", slog.String("reason", reason))
	s.Metrics.Revoked(reason, 1)
	return nil
}

// RevokeAll ends every active session of userID.
func (s *SessionService) RevokeAll(ctx context.Context, userID int64, reason string) (int64, error) {
	l := slogx.FromContext(ctx).With(slog.Int64("user_id", userID))
	if reason == "" {
		reason = domain.RevokeReasonAdmin
	}

	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("revoke all: lookup user: %w", err)
	}

	n, err := s.Store.RefreshTokens().RevokeAllActiveUserRefreshTokens(ctx, userID, reason, s.now())
	if err != nil {
		l.Error("revoke all failed", slog.String("kind", "internal"), slog.Any("err", err))
		return 0, fmt.Errorf("revoke all: %w", err)
	}

	l.Info("sessions revoked", slog.String("reason", reason), slog.Int64("revoked", n))
	s.Metrics.Revoked(reason, n)
	return n, nil
}

func (s *SessionService) newPair(
	userID int64,
	role string,
	meta domain.ClientMeta,
	now time.Time,
) (*domain.TokenPair, domain.RefreshToken, error) {
	access, err := s.Issuer.Issue(userID, role, s.AccessTTL)
	if err != nil {
		return nil, domain.RefreshToken{}, fmt.Errorf("issue access token: %w", err)
	}

	value, fingerprint, err := cryptox.GenerateOpaqueToken()
	if err != nil {
		return nil, domain.RefreshToken{}, fmt.Errorf("generate refresh token: %w", err)
	}

	refresh := domain.RefreshToken{
		ID:        idx.NewAt(now).String(),
		UserID:    userID,
		TokenHash: fingerprint,
		CreatedAt: now,
		ExpiresAt: now.Add(s.RefreshTTL),
		ClientIP:  meta.IP,
		UserAgent: meta.UserAgent,
		UpdatedAt: now,
	}

	return &domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     value,
		TokenType:        "Bearer",
		ExpiresIn:        s.AccessTTL,
		RefreshExpiresAt: refresh.ExpiresAt,
		UserID:           userID,
		Role:             role,
	}, refresh, nil
}

var _ TokenIssuer = (*jwtx.Codec)(nil)
