package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/schoolcore/internal/pkg/dberrors"
	"github.com/yigit/schoolcore/internal/pkg/logger"
)

// Store implements every store interface of the services package over a
// pgx pool. Lookups that match nothing return dberrors.ErrNotFound and
// constraint violations come back as *dberrors.ConstraintError.
type Store struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStore creates a new Postgres backed store
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// toSQL builds the statement and logs build failures the same way everywhere.
func toSQL(b squirrel.Sqlizer, what string) (string, []interface{}, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("query", what).Msg("Error building SQL")
		return "", nil, fmt.Errorf("failed to build %s query: %w", what, err)
	}
	return sql, args, nil
}

func (s *Store) queryRow(ctx context.Context, b squirrel.Sqlizer, what string, dest ...any) error {
	sql, args, err := toSQL(b, what)
	if err != nil {
		return err
	}
	if err := s.db.QueryRow(ctx, sql, args...).Scan(dest...); err != nil {
		return dberrors.Translate(err)
	}
	return nil
}

func (s *Store) exec(ctx context.Context, b squirrel.Sqlizer, what string) (int64, error) {
	sql, args, err := toSQL(b, what)
	if err != nil {
		return 0, err
	}
	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, dberrors.Translate(err)
	}
	return tag.RowsAffected(), nil
}

// collect runs a select and scans every row with scan.
func collect[T any](ctx context.Context, s *Store, b squirrel.Sqlizer, what string, scan func(pgx.Row) (T, error)) ([]T, error) {
	sql, args, err := toSQL(b, what)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("query", what).Msg("Error executing query")
		return nil, dberrors.Translate(err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning %s row: %w", what, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, dberrors.Translate(err)
	}
	return out, nil
}

func toInt32s(in []int) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = int32(v)
	}
	return out
}

func toInts(in []int32) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
