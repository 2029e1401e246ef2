// Package postgres stores documents as JSONB rows of a single documents table
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/flashclass/internal/docstore"
	"github.com/yigit/flashclass/internal/pkg/dberrors"
)

const (
	table = "documents"
	// maxInsertAttempts bounds retries on generated id collisions
	maxInsertAttempts = 3
)

// Store is a docstore backed by PostgreSQL
type Store struct {
	pool *pgxpool.Pool
	sb   squirrel.StatementBuilderType
	now  func() time.Time
}

// New creates a Store on an open pool. The store owns the pool from then on.
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
		sb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		now:  time.Now,
	}
}

func (s *Store) All(ctx context.Context, collection string) ([]docstore.Document, error) {
	query := s.sb.Select("id", "data").
		From(table).
		Where(squirrel.Eq{"collection": collection}).
		OrderBy("created_at", "id")
	return s.query(ctx, "all", collection, query)
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	sql, args, err := s.sb.Select("data").
		From(table).
		Where(squirrel.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return docstore.Document{}, fmt.Errorf("error building SQL: %w", err)
	}

	var data []byte
	if err := s.pool.QueryRow(ctx, sql, args...).Scan(&data); err != nil {
		if dberrors.IsNoRows(err) {
			return docstore.Document{}, docstore.ErrNotFound
		}
		return docstore.Document{}, docstore.Unavailable("get", collection, id, err)
	}
	return docstore.Document{ID: id, Data: data}, nil
}

// Find uses JSONB containment for both operators, which the GIN index on data serves
func (s *Store) Find(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	var probe map[string]any
	switch q.Op {
	case docstore.OpEqual:
		probe = map[string]any{q.Field: q.Value}
	case docstore.OpArrayContains:
		probe = map[string]any{q.Field: []any{q.Value}}
	default:
		return nil, fmt.Errorf("unsupported operator %s", q.Op)
	}
	b, err := json.Marshal(probe)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	query := s.sb.Select("id", "data").
		From(table).
		Where(squirrel.Eq{"collection": collection}).
		Where(squirrel.Expr("data @> ?::jsonb", string(b))).
		OrderBy("created_at", "id")
	return s.query(ctx, "find", collection, query)
}

func (s *Store) Insert(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	data, err := docstore.Encode(fields, s.now())
	if err != nil {
		return "", err
	}

	for attempt := 1; ; attempt++ {
		id, err := docstore.NewID()
		if err != nil {
			return "", docstore.Unavailable("insert", collection, "", err)
		}

		sql, args, err := s.sb.Insert(table).
			Columns("collection", "id", "data").
			Values(collection, id, string(data)).
			ToSql()
		if err != nil {
			return "", fmt.Errorf("error building SQL: %w", err)
		}

		_, err = s.pool.Exec(ctx, sql, args...)
		if err == nil {
			return id, nil
		}
		if dberrors.IsUniqueViolation(err) && attempt < maxInsertAttempts {
			continue
		}
		return "", docstore.Unavailable("insert", collection, id, err)
	}
}

func (s *Store) Set(ctx context.Context, collection, id string, fields docstore.Fields) error {
	data, err := docstore.Encode(fields, s.now())
	if err != nil {
		return err
	}

	sql, args, err := s.sb.Insert(table).
		Columns("collection", "id", "data").
		Values(collection, id, string(data)).
		Suffix("ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return docstore.Unavailable("set", collection, id, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	data, err := docstore.Encode(fields, s.now())
	if err != nil {
		return err
	}

	sql, args, err := s.sb.Update(table).
		Set("data", squirrel.Expr("data || ?::jsonb", string(data))).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return docstore.Unavailable("update", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	sql, args, err := s.sb.Delete(table).
		Where(squirrel.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return docstore.Unavailable("delete", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

// Close closes the underlying pool
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) query(ctx context.Context, op, collection string, query squirrel.SelectBuilder) ([]docstore.Document, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, docstore.Unavailable(op, collection, "", err)
	}
	defer rows.Close()

	docs := make([]docstore.Document, 0)
	for rows.Next() {
		var doc docstore.Document
		var data []byte
		if err := rows.Scan(&doc.ID, &data); err != nil {
			return nil, docstore.Unavailable(op, collection, "", err)
		}
		doc.Data = data
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, docstore.Unavailable(op, collection, "", err)
	}
	return docs, nil
}
