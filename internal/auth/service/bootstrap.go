package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
	"github.com/aussiebroadwan/storefront/pkg/cryptox"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/aussiebroadwan/storefront/pkg/validx"
)

// BootstrapService seeds the roles every deployment needs and, on an empty
// user table, the first admin account.
type BootstrapService struct {
	Store store.Store

	// Now defaults to time.Now.
	Now func() time.Time
}

// BootstrapAdmin describes the optional first admin account.
type BootstrapAdmin struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Run ensures the admin and customer roles exist and creates admin when the
// user table is empty. It is safe to call on every start.
func (s *BootstrapService) Run(ctx context.Context, admin BootstrapAdmin) error {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	var hash string
	if admin.Email != "" {
		res := validx.Merge(
			validx.Email("email", admin.Email),
			validx.Password("password", admin.Password),
		)
		if !res.Valid {
			return fmt.Errorf("bootstrap admin: %v", res.Problems)
		}
		var err error
		if hash, err = cryptox.HashPassword(admin.Password); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		roles := make(map[string]domain.Role, 2)
		for _, name := range []string{domain.RoleAdmin, domain.RoleCustomer} {
			role, err := ensureRole(ctx, tx, name, now)
			if err != nil {
				return err
			}
			roles[name] = role
		}

		if hash == "" {
			return nil
		}

		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			l.Debug("users present, skipping bootstrap admin")
			return nil
		}

		id, err := tx.Users().CreateUser(ctx, domain.User{
			FirstName:    admin.FirstName,
			LastName:     admin.LastName,
			Email:        admin.Email,
			PasswordHash: hash,
			RoleID:       roles[domain.RoleAdmin].ID,
			Active:       true,
			CreatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		l.Info("bootstrap admin created", slog.Int64("user_id", id), slog.String("email", validx.NormalizeEmail(admin.Email)))
		return nil
	})
}

func ensureRole(ctx context.Context, tx store.Tx, name string, now time.Time) (domain.Role, error) {
	role, err := tx.Roles().GetRoleByName(ctx, name)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Role{}, err
	}
	role, err = tx.Roles().CreateRole(ctx, name, now)
	if err != nil {
		return domain.Role{}, fmt.Errorf("create role %q: %w", name, err)
	}
	slogx.FromContext(ctx).Info("role created", slog.String("role", name))
	return role, nil
}
