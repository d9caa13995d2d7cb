package postgres

import (
	"context"
	"time"

	"github.com/itsatony/rahub/internal/database"
	"github.com/itsatony/rahub/internal/errors"
	"github.com/jmoiron/sqlx"
)

// PostgresBaseRepo holds what every repository needs. Statements are written
// with '?' placeholders and rebound for the connected driver.
type PostgresBaseRepo struct {
	db    database.DB
	clock func() time.Time
}

func newBaseRepo(db database.DB) PostgresBaseRepo {
	return PostgresBaseRepo{db: db, clock: time.Now}
}

// SetClock replaces the time source used for server-side timestamps.
func (r *PostgresBaseRepo) SetClock(clock func() time.Time) {
	r.clock = clock
}

func (r *PostgresBaseRepo) now() time.Time {
	return r.clock().UTC()
}

func (r *PostgresBaseRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	tx, err := r.db.GetDB().BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to begin transaction", err)
	}
	return tx, nil
}

// withTx runs fn in a transaction, committing only when fn succeeds.
func (r *PostgresBaseRepo) withTx(ctx context.Context, fn func(tx database.Transaction) error) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback() // Will be ignored if transaction is committed

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.NewDatabaseError("failed to commit transaction", err)
	}
	return nil
}

func (r *PostgresBaseRepo) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return errors.NewDatabaseError("failed to ping database", err)
	}
	return nil
}

func get(ctx context.Context, ex database.Executor, dest interface{}, query string, args ...interface{}) error {
	return sqlx.GetContext(ctx, ex, dest, ex.Rebind(query), args...)
}

func selectAll(ctx context.Context, ex database.Executor, dest interface{}, query string, args ...interface{}) error {
	return sqlx.SelectContext(ctx, ex, dest, ex.Rebind(query), args...)
}

func exec(ctx context.Context, ex database.Executor, query string, args ...interface{}) (int64, error) {
	result, err := ex.ExecContext(ctx, ex.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// insert runs an INSERT ... RETURNING id statement.
func insert(ctx context.Context, ex database.Executor, query string, args ...interface{}) (int64, error) {
	var id int64
	if err := ex.QueryRowxContext(ctx, ex.Rebind(query), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
