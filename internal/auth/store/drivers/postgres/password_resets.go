package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
	"github.com/jackc/pgx/v5"
)

type passwordResetsRepo struct {
	c conn
}

const passwordResetColumns = `pr.id, pr.user_id, pr.code_hash, pr.link_hash, pr.created_at, pr.expires_at,
	pr.used, pr.used_at, pr.client_ip, pr.user_agent`

func scanPasswordReset(row pgx.Row) (domain.PasswordResetToken, error) {
	var p domain.PasswordResetToken
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.CodeHash,
		&p.LinkHash,
		&p.CreatedAt,
		&p.ExpiresAt,
		&p.Used,
		&p.UsedAt,
		&p.ClientIP,
		&p.UserAgent,
	)
	if err != nil {
		return domain.PasswordResetToken{}, mapNotFound(err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.ExpiresAt = p.ExpiresAt.UTC()
	if p.UsedAt != nil {
		usedAt := p.UsedAt.UTC()
		p.UsedAt = &usedAt
	}
	return p, nil
}

func (r *passwordResetsRepo) CreatePasswordReset(ctx context.Context, p domain.PasswordResetToken) error {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	_, err := r.c.q.Exec(ctx, `
		INSERT INTO password_resets (id, user_id, code_hash, link_hash, created_at, expires_at, used, used_at, client_ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID,
		p.UserID,
		p.CodeHash,
		p.LinkHash,
		p.CreatedAt.UTC(),
		p.ExpiresAt.UTC(),
		p.Used,
		p.UsedAt,
		p.ClientIP,
		p.UserAgent,
	)
	return mapUnique(err)
}

func (r *passwordResetsRepo) GetLatestPasswordResetForEmail(
	ctx context.Context,
	email string,
) (domain.PasswordResetToken, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	return scanPasswordReset(r.c.q.QueryRow(ctx, `
		SELECT `+passwordResetColumns+`
		FROM password_resets pr
		JOIN users u ON u.id = pr.user_id
		WHERE lower(u.email) = $1
		ORDER BY pr.created_at DESC, pr.id DESC
		LIMIT 1`,
		normalizeEmail(email)))
}

func (r *passwordResetsRepo) GetPasswordResetByLinkHash(
	ctx context.Context,
	hash string,
) (domain.PasswordResetToken, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	return scanPasswordReset(r.c.q.QueryRow(ctx,
		`SELECT `+passwordResetColumns+` FROM password_resets pr WHERE pr.link_hash = $1`, hash))
}

func (r *passwordResetsRepo) MarkPasswordResetUsed(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	tag, err := r.c.q.Exec(ctx,
		`UPDATE password_resets SET used = TRUE, used_at = $1 WHERE id = $2 AND NOT used`,
		at.UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(tag, store.ErrConflict)
}

func (r *passwordResetsRepo) InvalidateOutstandingPasswordResets(
	ctx context.Context,
	userID int64,
	at time.Time,
) (int64, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	tag, err := r.c.q.Exec(ctx,
		`UPDATE password_resets SET used = TRUE, used_at = $1 WHERE user_id = $2 AND NOT used`,
		at.UTC(), userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
