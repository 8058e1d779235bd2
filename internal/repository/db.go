// Package repository holds the PostgreSQL stores. Every method takes the
// request context, maps driver errors to the model sentinels and traces the
// statement it runs.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lajospolya/popular-vote/internal/models"
	"github.com/lajospolya/popular-vote/internal/observability"
	"github.com/lajospolya/popular-vote/internal/utils"
)

// Postgres error codes the stores translate
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// DBTX is the subset of pgx shared by *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is a DBTX that can open transactions. *pgxpool.Pool satisfies it.
type DB interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WithTx begins a transaction, runs fn with it, and then commits on success
// or rolls back on error or panic. Panics are rethrown.
func WithTx(ctx context.Context, db DB, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		err = tx.Commit(ctx)
	}()

	err = fn(ctx, tx)
	return err
}

// mapError converts driver errors to model sentinels, keeping the original
// error in the chain.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", models.ErrNotFound, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", models.ErrAlreadyExists, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", models.ErrNotFound, pgErr.ConstraintName)
		}
	}
	return err
}

// track opens a span for one store operation and counts it. The returned
// finisher takes the operation's error and returns it mapped.
func track(ctx context.Context, operation, table string) (context.Context, func(error) error) {
	ctx, span, cleanup := utils.TraceDatabaseOperation(ctx, operation, table)
	return ctx, func(err error) error {
		defer cleanup()
		status := "success"
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			status = "error"
			utils.RecordErrorInSpan(span, err, map[string]interface{}{"db.sql.table": table})
		}
		observability.DatabaseOperations.WithLabelValues(table+"."+operation, status).Inc()
		return mapError(err)
	}
}

// paged runs a count and a page query. The page query gets LIMIT and
// OFFSET appended to its arguments, so pageSQL must end with those two
// placeholders.
func paged[T any](ctx context.Context, db DBTX, countSQL string, countArgs []any, pageSQL string, pageArgs []any, req models.PageRequest, scan func(pgx.Row) (T, error)) (models.Page[T], error) {
	var total int64
	if err := db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return models.Page[T]{}, err
	}

	content := []T{}
	if req.Offset() < total {
		args := append(append([]any{}, pageArgs...), req.Size, req.Offset())
		rows, err := db.Query(ctx, pageSQL, args...)
		if err != nil {
			return models.Page[T]{}, err
		}
		content, err = collect(rows, scan)
		if err != nil {
			return models.Page[T]{}, err
		}
	}
	return models.NewPage(content, total, req), nil
}

// limitOffset renders the trailing pagination clause for a query that
// already binds n arguments.
func limitOffset(n int) string {
	return fmt.Sprintf(` LIMIT $%d OFFSET $%d`, n+1, n+2)
}

// collect drains rows through a scan function shared with QueryRow callers
func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) {
		return scan(row)
	})
}

// placeholder numbers the next positional argument
func placeholder(args []any) string {
	return fmt.Sprintf("$%d", len(args)+1)
}
