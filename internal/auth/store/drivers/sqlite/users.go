package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
)

type usersRepo struct {
	q querier
}

const userColumns = `id, first_name, last_name, email, password_hash, role_id, active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.PasswordHash,
		&u.RoleID,
		&u.Active,
		scanTime{&u.CreatedAt},
		scanTime{&u.UpdatedAt},
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return scanUser(r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, normalizeEmail(email)))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO users (first_name, last_name, email, password_hash, role_id, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.FirstName,
		u.LastName,
		normalizeEmail(u.Email),
		u.PasswordHash,
		u.RoleID,
		u.Active,
		formatTime(u.CreatedAt),
		formatTime(u.CreatedAt),
	)
	if err != nil {
		return 0, mapUnique(err)
	}
	return res.LastInsertId()
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID int64, hash string, at time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, formatTime(at), userID)
	if err != nil {
		return err
	}
	return requireRow(res, store.ErrNotFound)
}

func (r *usersRepo) SetUserActive(ctx context.Context, userID int64, active bool, at time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET active = ?, updated_at = ? WHERE id = ?`,
		active, formatTime(at), userID)
	if err != nil {
		return err
	}
	return requireRow(res, store.ErrNotFound)
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}
