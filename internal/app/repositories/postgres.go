package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/abroadcrm/internal/app/models"
	"github.com/yigit/abroadcrm/internal/pkg/dberrors"
	"github.com/yigit/abroadcrm/internal/pkg/logger"
)

// scanner is satisfied by pgx.Row and pgx.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// displayName renders a user's full name with the username fallback, for joined reads
func displayName(table string) string {
	return fmt.Sprintf("COALESCE(NULLIF(TRIM(%[1]s.first_name || ' ' || %[1]s.last_name), ''), %[1]s.username)", table)
}

// collect runs a built select and scans each row
func collect[T any](ctx context.Context, db *pgxpool.Pool, query squirrel.SelectBuilder, scan func(scanner) (*T, error)) ([]*T, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing select query: %w", err)
	}
	defer rows.Close()

	items := make([]*T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return items, nil
}

// count runs a built COUNT(*) select
func count(ctx context.Context, db *pgxpool.Pool, query squirrel.SelectBuilder) (int64, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("error counting rows: %w", err)
	}
	return total, nil
}

func paginate(query squirrel.SelectBuilder, page models.Page) squirrel.SelectBuilder {
	if page.Size <= 0 {
		return query
	}
	return query.Limit(uint64(page.Size)).Offset(uint64(page.Offset()))
}

// execAffecting runs a write and reports notFound when no row matched
func execAffecting(ctx context.Context, db *pgxpool.Pool, query squirrel.Sqlizer, notFound error) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		if translated := dberrors.Translate(err); translated != err {
			return translated
		}
		logger.Error().Err(err).Msg("Error executing write query")
		return fmt.Errorf("error executing query: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}

// insertReturning runs an INSERT ... RETURNING and scans the returned columns into dest
func insertReturning(ctx context.Context, db *pgxpool.Pool, query squirrel.InsertBuilder, dest ...interface{}) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := db.QueryRow(ctx, sql, args...).Scan(dest...); err != nil {
		if translated := dberrors.Translate(err); translated != err {
			return translated
		}
		logger.Error().Err(err).Msg("Error executing insert query")
		return fmt.Errorf("error inserting row: %w", err)
	}
	return nil
}

// queryOne runs a built select expected to return one row
func queryOne[T any](ctx context.Context, db *pgxpool.Pool, query squirrel.SelectBuilder, scan func(scanner) (*T, error), notFound error) (*T, error) {
	sql, args, err := query.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	item, err := scan(db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, fmt.Errorf("error retrieving row: %w", err)
	}
	return item, nil
}
