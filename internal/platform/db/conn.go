package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const txKey contextKey = "db_tx"

// Queryable is the subset of pgx operations repositories need. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so repository methods run the same
// whether or not a transaction is in flight.
type Queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// WithTx runs fn inside a transaction stashed in the context. Repositories
// that resolve their connection through FromContext participate
// automatically. The transaction is rolled back if fn returns an error.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, txKey, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// FromContext returns the in-flight transaction if one was opened with
// WithTx, or the fallback otherwise.
func FromContext(ctx context.Context, fallback Queryable) Queryable {
	if tx, ok := ctx.Value(txKey).(pgx.Tx); ok {
		return tx
	}
	return fallback
}
