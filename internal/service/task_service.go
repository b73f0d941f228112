// Package service implements the task operations and the status consistency
// engine: a task with dependencies may be pending only when every dependency
// is completed, and status changes cascade to transitively dependent tasks.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"cascade/internal/domain"
	"cascade/internal/storage"
)

// TaskService coordinates task operations and status propagation.
//
// A single mutex serializes every operation, including whole cascades, so the
// engine always reads a consistent view of the graph. The workload is a
// single interactive client; a concurrent server deployment would need to
// move this serialization into the store as a transactional unit.
type TaskService struct {
	store storage.Store
	mu    sync.Mutex
}

// NewTaskService creates a new TaskService on top of the given store.
func NewTaskService(store storage.Store) *TaskService {
	return &TaskService{store: store}
}

// CreateTaskParams holds the caller-supplied fields for task creation.
// The initial status is always derived from the dependencies, never supplied.
type CreateTaskParams struct {
	Name         string
	Description  string
	Tags         map[string]string
	Dependencies []string
}

// UpdateTaskParams holds a partial update. Nil fields are left unchanged.
type UpdateTaskParams struct {
	Name         *string
	Description  *string
	Tags         map[string]string
	Status       *domain.TaskStatus
	Dependencies []string
}

// CreateTask creates a task with a fresh id and a derived initial status.
func (s *TaskService) CreateTask(ctx context.Context, params CreateTaskParams) (*domain.Task, error) {
	if params.Name == "" {
		return nil, domain.ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	task := &domain.Task{
		ID:           uuid.NewString(),
		Name:         params.Name,
		Description:  params.Description,
		Tags:         params.Tags,
		CreatedAt:    now,
		UpdatedAt:    now,
		Dependencies: params.Dependencies,
	}
	if task.Tags == nil {
		task.Tags = map[string]string{}
	}
	if task.Dependencies == nil {
		task.Dependencies = []string{}
	}

	status, err := s.deriveStatus(ctx, task)
	if err != nil {
		return nil, err
	}
	task.Status = status

	if err := s.store.Create(ctx, task); err != nil {
		return nil, err
	}

	slog.Info("task created",
		"task_id", task.ID,
		"status", task.Status,
		"dependency_count", len(task.Dependencies),
	)

	return task, nil
}

// GetTask retrieves a task by id.
func (s *TaskService) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get(ctx, taskID)
}

// ListTasks retrieves all tasks, newest first.
func (s *TaskService) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.List(ctx)
}

// FilterTasks retrieves tasks matching the filter, newest first.
func (s *TaskService) FilterTasks(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Filter(ctx, filter)
}

// UpdateTaskFields applies a partial update to the task's mutable fields.
// The returned task reflects the persisted field changes before any cascade:
// when the update includes a status different from the current one, the
// cascade runs afterwards and may touch further tasks.
func (s *TaskService) UpdateTaskFields(ctx context.Context, taskID string, params UpdateTaskParams) (*domain.Task, error) {
	if params.Status != nil && !params.Status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}
	if params.Name != nil && *params.Name == "" {
		return nil, domain.ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.store.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	oldStatus := task.Status
	if params.Name != nil {
		task.Name = *params.Name
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.Tags != nil {
		task.Tags = params.Tags
	}
	if params.Status != nil {
		task.Status = *params.Status
	}
	if params.Dependencies != nil {
		task.Dependencies = params.Dependencies
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.store.Update(ctx, task); err != nil {
		return nil, err
	}

	if task.Status != oldStatus {
		if _, err := s.applyStatusChange(ctx, task.ID, task.Status); err != nil {
			return nil, err
		}
	}

	return task, nil
}

// DeleteTask removes a task and reports whether it existed. Deletion never
// cascades: dependents keep the now-dangling id, which derivation treats as
// an unsatisfied dependency on their next re-evaluation.
func (s *TaskService) DeleteTask(ctx context.Context, taskID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted, err := s.store.Delete(ctx, taskID)
	if err != nil {
		return false, err
	}
	if deleted {
		slog.Info("task deleted", "task_id", taskID)
	}
	return deleted, nil
}

// Dependencies resolves each dependency id of the task to a task. Dangling
// ids resolve to nothing and are skipped; a missing root id is an error.
func (s *TaskService) Dependencies(ctx context.Context, taskID string) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.store.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	deps := make([]*domain.Task, 0, len(task.Dependencies))
	for _, depID := range task.Dependencies {
		dep, err := s.store.Get(ctx, depID)
		if err != nil {
			if errors.Is(err, domain.ErrTaskNotFound) {
				continue
			}
			return nil, err
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

// Dependents returns every task whose dependency list contains the given id,
// in store listing order.
func (s *TaskService) Dependents(ctx context.Context, taskID string) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	dependents := make([]*domain.Task, 0)
	for _, task := range all {
		if task.DependsOn(taskID) {
			dependents = append(dependents, task)
		}
	}
	return dependents, nil
}

// Stats returns aggregate task counts.
func (s *TaskService) Stats(ctx context.Context) (*domain.TaskStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Stats(ctx)
}

// Ping checks that the backing store is reachable.
func (s *TaskService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
