package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
)

type rolesRepo struct {
	q querier
}

func scanRole(row interface{ Scan(...any) error }) (domain.Role, error) {
	var r domain.Role
	if err := row.Scan(&r.ID, &r.Name, scanTime{&r.CreatedAt}); err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return r, nil
}

func (r *rolesRepo) GetRoleByID(ctx context.Context, id int64) (domain.Role, error) {
	return scanRole(r.q.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM roles WHERE id = ?`, id))
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	return scanRole(r.q.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM roles WHERE name = ?`, name))
}

func (r *rolesRepo) CreateRole(ctx context.Context, name string, at time.Time) (domain.Role, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO roles (name, created_at) VALUES (?, ?)`, name, formatTime(at))
	if err != nil {
		return domain.Role{}, mapUnique(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Role{}, err
	}
	return domain.Role{ID: id, Name: name, CreatedAt: at.UTC()}, nil
}
