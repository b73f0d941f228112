package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"cascade/internal/domain"
)

// Filter retrieves tasks matching the given filter, newest first.
// Substring matching uses strpos, so it is case-sensitive and needs no
// LIKE-pattern escaping. The tag filter requires every pair to match
// (jsonb containment); an absent filter imposes no constraint.
func (s *Store) Filter(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	qb := psql.Select(taskColumns...).From("tasks")

	if filter.Status != nil {
		qb = qb.Where(sq.Eq{"status": string(*filter.Status)})
	}

	if filter.Search != "" {
		qb = qb.Where(sq.Or{
			sq.Expr("strpos(name, ?) > 0", filter.Search),
			sq.Expr("strpos(description, ?) > 0", filter.Search),
		})
	}

	if len(filter.Tags) > 0 {
		tags, err := json.Marshal(filter.Tags)
		if err != nil {
			return nil, fmt.Errorf("encode tag filter: %w", err)
		}
		qb = qb.Where(sq.Expr("tags @> ?::jsonb", tags))
	}

	query, args, err := qb.OrderBy("created_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Filter query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	return scanTasks(rows)
}
