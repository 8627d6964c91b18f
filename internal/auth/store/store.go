package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict is returned by compare-and-swap updates whose precondition
	// no longer holds, i.e. another caller got there first.
	ErrConflict = errors.New("store: conflict")

	// ErrNestedTx is returned by Tx and WithTx called on a transaction.
	ErrNestedTx = errors.New("store: nested transactions are not supported")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement it and expose sub-repositories so that callers cannot start a
// transaction from inside another one.
type Store interface {
	Users() Users
	Roles() Roles
	RefreshTokens() RefreshTokens
	PasswordResets() PasswordResets

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise. Inside fn only the tx repositories may be used;
	// the sqlite driver holds a single connection and would block.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts u and returns the assigned id. A duplicate email
	// yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) (int64, error)

	// UpdatePasswordHash replaces the stored hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID int64, hash string, at time.Time) error

	// SetUserActive enables or disables an account.
	SetUserActive(ctx context.Context, userID int64, active bool, at time.Time) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Roles interface {
	GetRoleByID(ctx context.Context, id int64) (domain.Role, error)
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// CreateRole inserts a role and returns it with its assigned id.
	CreateRole(ctx context.Context, name string, at time.Time) (domain.Role, error)
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash looks a token up by the fingerprint of its value.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// MarkRefreshTokenUsed flips used=true and records replacedBy, but only
	// while the token is neither used nor revoked. Otherwise it returns
	// ErrConflict and changes nothing.
	MarkRefreshTokenUsed(ctx context.Context, hash, replacedBy string, at time.Time) error

	// RevokeRefreshToken marks an active token revoked. A token that is
	// already used or revoked is left untouched and the call still succeeds.
	// Unknown hashes yield ErrNotFound.
	RevokeRefreshToken(ctx context.Context, hash, reason string, at time.Time) error

	// RevokeAllActiveUserRefreshTokens revokes every token of userID that is
	// active at at, returning how many were revoked.
	RevokeAllActiveUserRefreshTokens(ctx context.Context, userID int64, reason string, at time.Time) (int64, error)
}

type PasswordResets interface {
	CreatePasswordReset(ctx context.Context, p domain.PasswordResetToken) error

	// GetLatestPasswordResetForEmail returns the most recently created reset
	// of the user owning email, ties broken by id.
	GetLatestPasswordResetForEmail(ctx context.Context, email string) (domain.PasswordResetToken, error)

	GetPasswordResetByLinkHash(ctx context.Context, hash string) (domain.PasswordResetToken, error)

	// MarkPasswordResetUsed flips used=true while it is still false, returning
	// ErrConflict otherwise.
	MarkPasswordResetUsed(ctx context.Context, id string, at time.Time) error

	// InvalidateOutstandingPasswordResets marks every unused reset of userID
	// as used.
	InvalidateOutstandingPasswordResets(ctx context.Context, userID int64, at time.Time) (int64, error)
}
