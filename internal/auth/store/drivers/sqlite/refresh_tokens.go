package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
)

type refreshTokensRepo struct {
	q querier
}

const refreshTokenColumns = `id, user_id, token_hash, created_at, expires_at, used, revoked,
	replaced_by, revoked_reason, client_ip, user_agent, updated_at`

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token_hash, created_at, expires_at, client_ip, user_agent, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.UserID,
		t.TokenHash,
		formatTime(t.CreatedAt),
		formatTime(t.ExpiresAt),
		t.ClientIP,
		t.UserAgent,
		formatTime(t.CreatedAt),
	)
	return mapUnique(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	var (
		t            domain.RefreshToken
		replacedBy   sql.NullString
		revokeReason sql.NullString
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT `+refreshTokenColumns+` FROM refresh_tokens WHERE token_hash = ?`, hash,
	).Scan(
		&t.ID,
		&t.UserID,
		&t.TokenHash,
		scanTime{&t.CreatedAt},
		scanTime{&t.ExpiresAt},
		&t.Used,
		&t.Revoked,
		&replacedBy,
		&revokeReason,
		&t.ClientIP,
		&t.UserAgent,
		scanTime{&t.UpdatedAt},
	)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	t.ReplacedBy = mapNullString(replacedBy)
	t.RevokedReason = mapNullString(revokeReason)
	return t, nil
}

func (r *refreshTokensRepo) MarkRefreshTokenUsed(ctx context.Context, hash, replacedBy string, at time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE refresh_tokens
		SET used = 1, replaced_by = ?, updated_at = ?
		WHERE token_hash = ? AND used = 0 AND revoked = 0`,
		mapStringNull(replacedBy), formatTime(at), hash)
	if err != nil {
		return err
	}
	return requireRow(res, store.ErrConflict)
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash, reason string, at time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE refresh_tokens
		SET revoked_reason = CASE WHEN used = 1 OR revoked = 1 THEN revoked_reason ELSE ? END,
		    updated_at     = CASE WHEN used = 1 OR revoked = 1 THEN updated_at ELSE ? END,
		    revoked        = CASE WHEN used = 1 THEN revoked ELSE 1 END
		WHERE token_hash = ?`,
		reason, formatTime(at), hash)
	if err != nil {
		return err
	}
	return requireRow(res, store.ErrNotFound)
}

func (r *refreshTokensRepo) RevokeAllActiveUserRefreshTokens(
	ctx context.Context,
	userID int64,
	reason string,
	at time.Time,
) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE refresh_tokens
		SET revoked = 1, revoked_reason = ?, updated_at = ?
		WHERE user_id = ? AND used = 0 AND revoked = 0 AND expires_at >= ?`,
		reason, formatTime(at), userID, formatTime(at))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
