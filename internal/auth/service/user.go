package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
	"github.com/aussiebroadwan/storefront/pkg/validx"
)

type UserService struct {
	Store store.Store
}

// Profile is a user together with its role name.
type Profile struct {
	User domain.User
	Role string
}

// GetProfile fetches a user and resolves its role.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (Profile, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Profile{}, ErrUserNotFound
		}
		return Profile{}, err
	}
	role, err := s.Store.Roles().GetRoleByID(ctx, user.RoleID)
	if err != nil {
		return Profile{}, fmt.Errorf("lookup role: %w", err)
	}
	return Profile{User: user, Role: role.Name}, nil
}

// CreateCustomer registers an active account with the customer role. A
// taken email yields store.ErrAlreadyExists.
func (s *UserService) CreateCustomer(ctx context.Context, firstName, lastName, email, password string, now time.Time) (int64, error) {
	if res := validx.Email("email", email); !res.Valid {
		return 0, fmt.Errorf("create customer: email %s", res.Problems["email"])
	}
	hash, err := hashNewPassword(password)
	if err != nil {
		return 0, err
	}

	role, err := s.Store.Roles().GetRoleByName(ctx, domain.RoleCustomer)
	if err != nil {
		return 0, fmt.Errorf("create customer: lookup role: %w", err)
	}
	return s.Store.Users().CreateUser(ctx, domain.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
		RoleID:       role.ID,
		Active:       true,
		CreatedAt:    now.UTC(),
	})
}

// SetActive enables or disables an account. Disabling also ends every
// session of the account.
func (s *UserService) SetActive(ctx context.Context, userID int64, active bool, now time.Time) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().SetUserActive(ctx, userID, active, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if active {
			return nil
		}
		_, err := tx.RefreshTokens().RevokeAllActiveUserRefreshTokens(ctx, userID, domain.RevokeReasonAdmin, now)
		return err
	})
}
