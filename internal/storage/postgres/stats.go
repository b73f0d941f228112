package postgres

import (
	"context"
	"fmt"

	"cascade/internal/domain"
)

// Stats returns aggregate task counts grouped by status.
func (s *Store) Stats(ctx context.Context) (*domain.TaskStats, error) {
	query, args, err := psql.
		Select("status", "COUNT(*)").
		From("tasks").
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Stats query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := &domain.TaskStats{ByStatus: make(map[domain.TaskStatus]int, 4)}
	for _, status := range domain.Statuses() {
		stats.ByStatus[status] = 0
	}

	for rows.Next() {
		var (
			statusRaw string
			count     int
		)
		if err := rows.Scan(&statusRaw, &count); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		status, err := domain.ParseStatus(statusRaw)
		if err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats rows: %w", err)
	}
	return stats, nil
}
