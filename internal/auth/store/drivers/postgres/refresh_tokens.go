package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
)

type refreshTokensRepo struct {
	c conn
}

const refreshTokenColumns = `id, user_id, token_hash, created_at, expires_at, used, revoked,
	replaced_by, revoked_reason, client_ip, user_agent, updated_at`

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	_, err := r.c.q.Exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token_hash, created_at, expires_at, client_ip, user_agent, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $4)`,
		t.ID,
		t.UserID,
		t.TokenHash,
		t.CreatedAt.UTC(),
		t.ExpiresAt.UTC(),
		t.ClientIP,
		t.UserAgent,
	)
	return mapUnique(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	var (
		t            domain.RefreshToken
		replacedBy   *string
		revokeReason *string
	)
	err := r.c.q.QueryRow(ctx,
		`SELECT `+refreshTokenColumns+` FROM refresh_tokens WHERE token_hash = $1`, hash,
	).Scan(
		&t.ID,
		&t.UserID,
		&t.TokenHash,
		&t.CreatedAt,
		&t.ExpiresAt,
		&t.Used,
		&t.Revoked,
		&replacedBy,
		&revokeReason,
		&t.ClientIP,
		&t.UserAgent,
		&t.UpdatedAt,
	)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	t.ReplacedBy = derefString(replacedBy)
	t.RevokedReason = derefString(revokeReason)
	t.CreatedAt = t.CreatedAt.UTC()
	t.ExpiresAt = t.ExpiresAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

// MarkRefreshTokenUsed relies on the row lock taken by UPDATE: a concurrent
// caller blocks, re-evaluates the WHERE clause after the first commits and
// matches zero rows.
func (r *refreshTokensRepo) MarkRefreshTokenUsed(ctx context.Context, hash, replacedBy string, at time.Time) error {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	tag, err := r.c.q.Exec(ctx, `
		UPDATE refresh_tokens
		SET used = TRUE, replaced_by = $1, updated_at = $2
		WHERE token_hash = $3 AND NOT used AND NOT revoked`,
		optionalString(replacedBy), at.UTC(), hash)
	if err != nil {
		return err
	}
	return requireRow(tag, store.ErrConflict)
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash, reason string, at time.Time) error {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	tag, err := r.c.q.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked_reason = CASE WHEN used OR revoked THEN revoked_reason ELSE $1 END,
		    updated_at     = CASE WHEN used OR revoked THEN updated_at ELSE $2 END,
		    revoked        = CASE WHEN used THEN revoked ELSE TRUE END
		WHERE token_hash = $3`,
		reason, at.UTC(), hash)
	if err != nil {
		return err
	}
	return requireRow(tag, store.ErrNotFound)
}

func (r *refreshTokensRepo) RevokeAllActiveUserRefreshTokens(
	ctx context.Context,
	userID int64,
	reason string,
	at time.Time,
) (int64, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	tag, err := r.c.q.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked = TRUE, revoked_reason = $1, updated_at = $2
		WHERE user_id = $3 AND NOT used AND NOT revoked AND expires_at >= $2`,
		reason, at.UTC(), userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
