package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
)

type rolesRepo struct {
	c conn
}

func (r *rolesRepo) getRole(ctx context.Context, where string, arg any) (domain.Role, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	var role domain.Role
	err := r.c.q.QueryRow(ctx, `SELECT id, name, created_at FROM roles WHERE `+where, arg).
		Scan(&role.ID, &role.Name, &role.CreatedAt)
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	role.CreatedAt = role.CreatedAt.UTC()
	return role, nil
}

func (r *rolesRepo) GetRoleByID(ctx context.Context, id int64) (domain.Role, error) {
	return r.getRole(ctx, `id = $1`, id)
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	return r.getRole(ctx, `name = $1`, name)
}

func (r *rolesRepo) CreateRole(ctx context.Context, name string, at time.Time) (domain.Role, error) {
	ctx, cancel := r.c.ctx(ctx)
	defer cancel()

	role := domain.Role{Name: name}
	err := r.c.q.QueryRow(ctx,
		`INSERT INTO roles (name, created_at) VALUES ($1, $2) RETURNING id, created_at`,
		name, at.UTC(),
	).Scan(&role.ID, &role.CreatedAt)
	if err != nil {
		return domain.Role{}, mapUnique(err)
	}
	role.CreatedAt = role.CreatedAt.UTC()
	return role, nil
}
