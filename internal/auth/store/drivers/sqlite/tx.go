package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/storefront/internal/auth/store"
)

// txStore runs every repository on one *sql.Tx. Because the pool holds a
// single connection, a transaction excludes all other statements until it
// ends.
type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error                   { return nil } // the outer DB stays open
func (t *txStore) Ping(ctx context.Context) error { return nil }
func (t *txStore) ApplyMigrations() error         { return nil } // migrations run before any tx

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, store.ErrNestedTx }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return store.ErrNestedTx
}

func (t *txStore) Users() store.Users                   { return &usersRepo{q: t.tx} }
func (t *txStore) Roles() store.Roles                   { return &rolesRepo{q: t.tx} }
func (t *txStore) RefreshTokens() store.RefreshTokens   { return &refreshTokensRepo{q: t.tx} }
func (t *txStore) PasswordResets() store.PasswordResets { return &passwordResetsRepo{q: t.tx} }
