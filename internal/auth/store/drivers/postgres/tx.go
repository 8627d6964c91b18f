package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/store"
	"github.com/jackc/pgx/v5"
)

type txStore struct {
	ctx     context.Context
	tx      pgx.Tx
	timeout time.Duration
}

func (t *txStore) Commit() error { return t.tx.Commit(t.ctx) }

func (t *txStore) Rollback() error {
	err := t.tx.Rollback(t.ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }
func (t *txStore) ApplyMigrations() error         { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, store.ErrNestedTx }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return store.ErrNestedTx
}

func (t *txStore) conn() conn { return conn{q: t.tx, timeout: t.timeout} }

func (t *txStore) Users() store.Users                   { return &usersRepo{c: t.conn()} }
func (t *txStore) Roles() store.Roles                   { return &rolesRepo{c: t.conn()} }
func (t *txStore) RefreshTokens() store.RefreshTokens   { return &refreshTokensRepo{c: t.conn()} }
func (t *txStore) PasswordResets() store.PasswordResets { return &passwordResetsRepo{c: t.conn()} }
