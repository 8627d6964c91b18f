package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
)

type usersRepo struct {
	c conn
}

const userColumns = `id, first_name, last_name, email, password_hash, role_id, active, created_at, updated_at`

func (r *usersRepo) getUser(ctx context.Context, where string, arg any) (domain.User, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	var u domain.User
	err := r.c.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg).Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.PasswordHash,
		&u.RoleID,
		&u.Active,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return r.getUser(ctx, `id = $1`, id)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getUser(ctx, `lower(email) = $1`, normalizeEmail(email))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	var id int64
	err := r.c.q.QueryRow(ctx, `
		INSERT INTO users (first_name, last_name, email, password_hash, role_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id`,
		u.FirstName,
		u.LastName,
		normalizeEmail(u.Email),
		u.PasswordHash,
		u.RoleID,
		u.Active,
		u.CreatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, mapUnique(err)
	}
	return id, nil
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID int64, hash string, at time.Time) error {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	tag, err := r.c.q.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		hash, at.UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(tag, store.ErrNotFound)
}

func (r *usersRepo) SetUserActive(ctx context.Context, userID int64, active bool, at time.Time) error {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	tag, err := r.c.q.Exec(ctx,
		`UPDATE users SET active = $1, updated_at = $2 WHERE id = $3`,
		active, at.UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(tag, store.ErrNotFound)
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	var exists bool
	if err := r.c.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users)`).Scan(&exists); err != nil {
		return false, err
	}
	return !exists, nil
}
