package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
)

type passwordResetsRepo struct {
	q querier
}

const passwordResetColumns = `pr.id, pr.user_id, pr.code_hash, pr.link_hash, pr.created_at, pr.expires_at,
	pr.used, pr.used_at, pr.client_ip, pr.user_agent`

func scanPasswordReset(row interface{ Scan(...any) error }) (domain.PasswordResetToken, error) {
	var p domain.PasswordResetToken
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.CodeHash,
		&p.LinkHash,
		scanTime{&p.CreatedAt},
		scanTime{&p.ExpiresAt},
		&p.Used,
		scanNullTime{&p.UsedAt},
		&p.ClientIP,
		&p.UserAgent,
	)
	if err != nil {
		return domain.PasswordResetToken{}, mapNotFound(err)
	}
	return p, nil
}

func (r *passwordResetsRepo) CreatePasswordReset(ctx context.Context, p domain.PasswordResetToken) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO password_resets (id, user_id, code_hash, link_hash, created_at, expires_at, used, used_at, client_ip, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.UserID,
		p.CodeHash,
		p.LinkHash,
		formatTime(p.CreatedAt),
		formatTime(p.ExpiresAt),
		p.Used,
		formatNullTime(p.UsedAt),
		p.ClientIP,
		p.UserAgent,
	)
	return mapUnique(err)
}

func (r *passwordResetsRepo) GetLatestPasswordResetForEmail(
	ctx context.Context,
	email string,
) (domain.PasswordResetToken, error) {
	return scanPasswordReset(r.q.QueryRowContext(ctx, `
		SELECT `+passwordResetColumns+`
		FROM password_resets pr
		JOIN users u ON u.id = pr.user_id
		WHERE u.email = ?
		ORDER BY pr.created_at DESC, pr.id DESC
		LIMIT 1`,
		normalizeEmail(email)))
}

func (r *passwordResetsRepo) GetPasswordResetByLinkHash(
	ctx context.Context,
	hash string,
) (domain.PasswordResetToken, error) {
	return scanPasswordReset(r.q.QueryRowContext(ctx,
		`SELECT `+passwordResetColumns+` FROM password_resets pr WHERE pr.link_hash = ?`, hash))
}

func (r *passwordResetsRepo) MarkPasswordResetUsed(ctx context.Context, id string, at time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE password_resets SET used = 1, used_at = ? WHERE id = ? AND used = 0`,
		formatTime(at), id)
	if err != nil {
		return err
	}
	return requireRow(res, store.ErrConflict)
}

func (r *passwordResetsRepo) InvalidateOutstandingPasswordResets(
	ctx context.Context,
	userID int64,
	at time.Time,
) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE password_resets SET used = 1, used_at = ? WHERE user_id = ? AND used = 0`,
		formatTime(at), userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
