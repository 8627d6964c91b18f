package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/metrics"
	"github.com/aussiebroadwan/storefront/internal/auth/notify"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/aussiebroadwan/storefront/pkg/validx"
)

// Labels for the password reset redemption method.
const (
	resetMethodCode = "code"
	resetMethodLink = "link"
)

type RecoveryService struct {
	Store    store.Store
	Notifier notify.Notifier
	ResetTTL time.Duration

	// LinkBaseURL is the storefront page that accepts a reset link. The link
	// token and email are appended as query parameters. When empty the bare
	// link token is sent instead.
	LinkBaseURL string

	Metrics *metrics.Metrics

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *RecoveryService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// RequestReset issues a reset code and link for email. It returns nil for
// unknown and disabled accounts so callers cannot probe which emails exist.
// Issuing a new reset invalidates every outstanding one of the same user.
// A failed notification is logged and counted but not returned.
func (s *RecoveryService) RequestReset(ctx context.Context, email string, meta domain.ClientMeta) error {
	email = validx.NormalizeEmail(email)
	l := slogx.FromContext(ctx).With(slog.String("email", email))

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("password reset requested for unknown email")
			s.Metrics.ResetRequested(metrics.OutcomeNotFound)
			return nil
		}
		s.Metrics.ResetRequested(metrics.OutcomeError)
		return fmt.Errorf("request reset: lookup user: %w", err)
	}
	l = l.With(slog.Int64("user_id", user.ID))
	if !user.Active {
		l.Info("password reset requested for inactive user")
		s.Metrics.ResetRequested(metrics.OutcomeFailure)
		return nil
	}

	code, err := cryptox.GenerateResetCode()
	if err != nil {
		s.Metrics.ResetRequested(metrics.OutcomeError)
		return fmt.Errorf("request reset: %w", err)
	}
	linkToken, linkHash, err := cryptox.GenerateOpaqueToken()
	if err != nil {
		s.Metrics.ResetRequested(metrics.OutcomeError)
		return fmt.Errorf("request reset: %w", err)
	}

	now := s.now()
	reset := domain.PasswordResetToken{
		ID:        idx.NewAt(now).String(),
		UserID:    user.ID,
		CodeHash:  cryptox.FingerprintToken(code),
		LinkHash:  linkHash,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ResetTTL),
		ClientIP:  meta.IP,
		UserAgent: meta.UserAgent,
	}

	var superseded int64
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		n, err := tx.PasswordResets().InvalidateOutstandingPasswordResets(ctx, user.ID, now)
		if err != nil {
			return err
		}
		superseded = n
		return tx.PasswordResets().CreatePasswordReset(ctx, reset)
	})
	if err != nil {
		l.Error("password reset not stored", slog.String("kind", "internal"), slog.Any("err", err))
		s.Metrics.ResetRequested(metrics.OutcomeError)
		return fmt.Errorf("request reset: store: %w", err)
	}

	if err := s.Notifier.SendPasswordReset(ctx, user.Email, code, s.resetLink(linkToken, user.Email)); err != nil {
		l.Error("password reset notification failed", slog.String("kind", "internal"), slog.Any("err", err))
		s.Metrics.ResetRequested(metrics.OutcomeError)
		return nil
	}

	l.Info("password reset issued",
		slog.String("reset_id", reset.ID),
		slog.Int64("superseded", superseded),
	)
	s.Metrics.ResetRequested(metrics.OutcomeSuccess)
	return nil
}

func (s *RecoveryService) resetLink(token, email string) string {
	if s.LinkBaseURL == "" {
		return token
	}
	u, err := url.Parse(s.LinkBaseURL)
	if err != nil {
		return token
	}
	q := u.Query()
	q.Set("token", token)
	q.Set("email", email)
	u.RawQuery = q.Encode()
	return u.String()
}

// VerifyCode checks code against the latest reset of email without using it
// up.
func (s *RecoveryService) VerifyCode(ctx context.Context, email, code string) error {
	email = validx.NormalizeEmail(email)
	l := slogx.FromContext(ctx).With(slog.String("email", email))

	reset, err := s.Store.PasswordResets().GetLatestPasswordResetForEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("reset code rejected", slog.String("kind", "invalid_or_expired"), slog.String("cause", "none"))
			return ErrInvalidOrExpired
		}
		return fmt.Errorf("verify code: %w", err)
	}

	if cause := checkReset(reset, code, s.now()); cause != "" {
		l.Info("reset code rejected",
			slog.String("kind", "invalid_or_expired"),
			slog.String("cause", cause),
			slog.Int64("user_id", reset.UserID),
		)
		return ErrInvalidOrExpired
	}
	return nil
}

// checkReset returns why reset cannot be redeemed with code, or "" when it
// can. The code comparison runs even for unusable rows.
func checkReset(reset domain.PasswordResetToken, code string, now time.Time) string {
	match := cryptox.EqualFingerprints(reset.CodeHash, cryptox.FingerprintToken(code))
	switch {
	case reset.Used:
		return "used"
	case reset.Expired(now):
		return "expired"
	case !match:
		return "mismatch"
	}
	return ""
}

// ResetByCode sets a new password for the owner of email if code matches
// their latest unused, unexpired reset. Using the reset, storing the new
// hash and ending every active session happen in one transaction.
func (s *RecoveryService) ResetByCode(ctx context.Context, email, code, newPassword string) error {
	email = validx.NormalizeEmail(email)
	l := slogx.FromContext(ctx).With(slog.String("email", email))

	hash, err := hashNewPassword(newPassword)
	if err != nil {
		s.Metrics.PasswordReset(resetMethodCode, metrics.OutcomeFailure)
		return err
	}

	now := s.now()
	var (
		userID  int64
		revoked int64
		cause   string
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		reset, err := tx.PasswordResets().GetLatestPasswordResetForEmail(ctx, email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				cause = "none"
				return ErrInvalidOrExpired
			}
			return err
		}
		userID = reset.UserID

		if cause = checkReset(reset, code, now); cause != "" {
			return ErrInvalidOrExpired
		}

		revoked, cause, err = redeem(ctx, tx, reset, hash, now)
		return err
	})

	return s.finishReset(l, resetMethodCode, userID, revoked, cause, err)
}

// ResetByLink is ResetByCode keyed on the link token. The reset must belong
// to email.
func (s *RecoveryService) ResetByLink(ctx context.Context, token, email, newPassword string) error {
	email = validx.NormalizeEmail(email)
	l := slogx.FromContext(ctx).With(slog.String("email", email))

	token = strings.TrimSpace(token)
	if token == "" {
		l.Info("reset link rejected", slog.String("kind", "invalid_or_expired"), slog.String("cause", "empty"))
		s.Metrics.PasswordReset(resetMethodLink, metrics.OutcomeFailure)
		return ErrInvalidOrExpired
	}

	hash, err := hashNewPassword(newPassword)
	if err != nil {
		s.Metrics.PasswordReset(resetMethodLink, metrics.OutcomeFailure)
		return err
	}

	now := s.now()
	var (
		userID  int64
		revoked int64
		cause   string
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		reset, err := tx.PasswordResets().GetPasswordResetByLinkHash(ctx, cryptox.FingerprintToken(token))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				cause = "none"
				return ErrInvalidOrExpired
			}
			return err
		}
		userID = reset.UserID

		owner, err := tx.Users().GetUserByID(ctx, reset.UserID)
		if err != nil {
			return err
		}
		switch {
		case owner.Email != email:
			cause = "email"
		case reset.Used:
			cause = "used"
		case reset.Expired(now):
			cause = "expired"
		}
		if cause != "" {
			return ErrInvalidOrExpired
		}

		revoked, cause, err = redeem(ctx, tx, reset, hash, now)
		return err
	})

	return s.finishReset(l, resetMethodLink, userID, revoked, cause, err)
}

// redeem uses up reset and applies hash to its owner. A lost race on the
// used flag reports ErrInvalidOrExpired.
func redeem(
	ctx context.Context,
	tx store.Tx,
	reset domain.PasswordResetToken,
	hash string,
	now time.Time,
) (revoked int64, cause string, err error) {
	owner, err := tx.Users().GetUserByID(ctx, reset.UserID)
	if err != nil {
		return 0, "", err
	}
	if !owner.Active {
		return 0, "inactive", ErrInvalidOrExpired
	}

	if err := tx.PasswordResets().MarkPasswordResetUsed(ctx, reset.ID, now); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return 0, "used", ErrInvalidOrExpired
		}
		return 0, "", err
	}
	if err := tx.Users().UpdatePasswordHash(ctx, reset.UserID, hash, now); err != nil {
		return 0, "", err
	}
	revoked, err = tx.RefreshTokens().RevokeAllActiveUserRefreshTokens(
		ctx, reset.UserID, domain.RevokeReasonPasswordReset, now)
	if err != nil {
		return 0, "", err
	}
	return revoked, "", nil
}

func (s *RecoveryService) finishReset(
	l *slog.Logger,
	method string,
	userID, revoked int64,
	cause string,
	err error,
) error {
	if userID != 0 {
		l = l.With(slog.Int64("user_id", userID))
	}
	switch {
	case err == nil:
		l.Info("password reset completed", slog.String("method", method), slog.Int64("revoked", revoked))
		s.Metrics.PasswordReset(method, metrics.OutcomeSuccess)
		s.Metrics.Revoked(domain.RevokeReasonPasswordReset, revoked)
		return nil
	case errors.Is(err, ErrInvalidOrExpired):
		l.Info("password reset rejected",
			slog.String("method", method),
			slog.String("kind", "invalid_or_expired"),
			slog.String("cause", cause),
		)
		s.Metrics.PasswordReset(method, metrics.OutcomeFailure)
		return ErrInvalidOrExpired
	default:
		l.Error("password reset failed", slog.String("method", method), slog.String("kind", "internal"), slog.Any("err", err))
		s.Metrics.PasswordReset(method, metrics.OutcomeError)
		return fmt.Errorf("reset password: %w", err)
	}
}

// ChangePassword replaces the password of an authenticated user after
// checking the current one. Active sessions are revoked; reset rows are left
// alone.
func (s *RecoveryService) ChangePassword(ctx context.Context, userID int64, current, newPassword string) error {
	l := slogx.FromContext(ctx).With(slog.Int64("user_id", userID))

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("change password: lookup user: %w", err)
	}

	if err := cryptox.VerifyPassword(current, user.PasswordHash); err != nil {
		l.Info("password change rejected", slog.String("kind", "wrong_current_password"))
		return ErrWrongCurrentPassword
	}

	hash, err := hashNewPassword(newPassword)
	if err != nil {
		return err
	}

	now := s.now()
	var revoked int64
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, hash, now); err != nil {
			return err
		}
		revoked, err = tx.RefreshTokens().RevokeAllActiveUserRefreshTokens(
			ctx, userID, domain.RevokeReasonPasswordChange, now)
		return err
	})
	if err != nil {
		l.Error("password change failed", slog.String("kind", "internal"), slog.Any("err", err))
		return fmt.Errorf("change password: %w", err)
	}

	l.Info("password changed", slog.Int64("revoked", revoked))
	s.Metrics.Revoked(domain.RevokeReasonPasswordChange, revoked)
	return nil
}

// hashNewPassword enforces the password policy and hashes outside any
// transaction; argon2 is slow and the sqlite store has a single connection.
func hashNewPassword(password string) (string, error) {
	if res := validx.Password("password", password); !res.Valid {
		return "", fmt.Errorf("%w: %s", ErrWeakPassword, res.Problems["password"])
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}
