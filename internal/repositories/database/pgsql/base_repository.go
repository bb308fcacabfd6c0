package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the subset of pgx shared by the pool and a transaction, so
// every repository runs unchanged inside or outside a unit of work.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

var (
	_ querier = (*pgxpool.Pool)(nil)
	_ querier = (pgx.Tx)(nil)
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db querier
}

// UnitOfWork runs service callbacks in a single PostgreSQL transaction.
type UnitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork creates a unit of work over the pool.
func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

var _ portsrepo.UnitOfWork = (*UnitOfWork)(nil)

// Repositories returns repositories that run each statement on its own.
func (u *UnitOfWork) Repositories() portsrepo.RepositoryProvider {
	return NewRepositoryProvider(u.pool)
}

// WithinTx commits when fn returns nil and rolls back otherwise. Errors from
// fn are returned as they are.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn portsrepo.TxFunc) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // no-op once committed

	repos := NewRepositoryProvider(tx)
	repos.Hooks = &portsrepo.CommitHooks{}
	if err := fn(ctx, repos); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	repos.Hooks.Run()
	return nil
}

// notFound translates pgx.ErrNoRows into apperrors.ErrNotFound.
func notFound(err error, kind, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFoundError(kind, id)
	}
	return fmt.Errorf("failed to find %s %s: %w", kind, id, err)
}

// saveErr translates unique violations into apperrors.ErrDuplicate.
func saveErr(err error, kind, id string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s %s already exists", apperrors.ErrDuplicate, kind, id)
	}
	return fmt.Errorf("failed to save %s %s: %w", kind, id, err)
}

// expectOne fails with ErrNotFound when an update touched no rows.
func expectOne(tag pgconn.CommandTag, kind, id string) error {
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(kind, id)
	}
	return nil
}
