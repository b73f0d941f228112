package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cascade/internal/domain"
)

// taskColumns is the shared list of columns for task queries.
var taskColumns = []string{
	"id", "name", "description", "tags", "status", "dependencies",
	"created_at", "updated_at",
}

// Store implements storage.Store on top of PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new PostgreSQL-backed Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// scanTask scans a single row into a Task struct.
func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		task      domain.Task
		tagsRaw   []byte
		statusRaw string
	)
	err := row.Scan(
		&task.ID,
		&task.Name,
		&task.Description,
		&tagsRaw,
		&statusRaw,
		&task.Dependencies,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	task.Tags = decodeTags(task.ID, tagsRaw)
	task.Status, err = domain.ParseStatus(statusRaw)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", task.ID, err)
	}
	if task.Dependencies == nil {
		task.Dependencies = []string{}
	}
	return &task, nil
}

// decodeTags unmarshals the tags column. A corrupt value yields an empty map
// instead of failing the read, so one bad row cannot break full-table scans.
func decodeTags(taskID string, raw []byte) map[string]string {
	tags := map[string]string{}
	if len(raw) == 0 {
		return tags
	}
	if err := json.Unmarshal(raw, &tags); err != nil {
		slog.Warn("discarding malformed task tags", "task_id", taskID, "error", err)
		return map[string]string{}
	}
	return tags
}

// scanTasks scans multiple rows into a slice of Task structs.
func scanTasks(rows pgx.Rows) ([]*domain.Task, error) {
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return tasks, nil
}

// Create inserts a new task row.
func (s *Store) Create(ctx context.Context, task *domain.Task) error {
	tags, err := json.Marshal(task.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	query, args, err := psql.
		Insert("tasks").
		Columns(taskColumns...).
		Values(
			task.ID,
			task.Name,
			task.Description,
			tags,
			string(task.Status),
			task.Dependencies,
			task.CreatedAt,
			task.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Create query for task: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// Get retrieves a task by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Get query for task: %w", err)
	}

	return scanTask(s.pool.QueryRow(ctx, query, args...))
}

// List retrieves all tasks, newest first.
func (s *Store) List(ctx context.Context) ([]*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build List query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	return scanTasks(rows)
}

// Update persists all mutable fields of the task.
func (s *Store) Update(ctx context.Context, task *domain.Task) error {
	tags, err := json.Marshal(task.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	query, args, err := psql.
		Update("tasks").
		Set("name", task.Name).
		Set("description", task.Description).
		Set("tags", tags).
		Set("status", string(task.Status)).
		Set("dependencies", task.Dependencies).
		Set("updated_at", task.UpdatedAt).
		Where(sq.Eq{"id": task.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Update query for task %s: %w", task.ID, err)
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// Delete removes a task by ID and reports whether a row was removed.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	query, args, err := psql.
		Delete("tasks").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build Delete query for task %s: %w", id, err)
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
