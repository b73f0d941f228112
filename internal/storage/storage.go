// Package storage defines the record store contract the task engine runs
// against. Two implementations exist: a PostgreSQL store for the server and
// an in-memory store for the embedded mode and tests.
package storage

import (
	"context"

	"cascade/internal/domain"
)

// Store is the durable record store for tasks.
//
// Get returns domain.ErrTaskNotFound for an absent id. List and Filter return
// tasks ordered by creation time, newest first, so traversal order is stable.
type Store interface {
	Create(ctx context.Context, task *domain.Task) error
	Get(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context) ([]*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) (bool, error)
	Filter(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error)
	Stats(ctx context.Context) (*domain.TaskStats, error)
	Ping(ctx context.Context) error
}
