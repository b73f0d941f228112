package service

import (
	"context"
	"errors"
	"fmt"

	"cascade/internal/domain"
)

// deriveStatus computes the status a task should have given the current
// persisted statuses of its dependencies. It is read-only and returns only
// pending or blocked; in_progress and completed are reachable solely through
// an explicit status change.
//
// A task with no dependencies is pending. A dependency that is missing or
// not completed blocks the task; duplicate ids are examined like any other.
func (s *TaskService) deriveStatus(ctx context.Context, task *domain.Task) (domain.TaskStatus, error) {
	if len(task.Dependencies) == 0 {
		return domain.StatusPending, nil
	}

	for _, depID := range task.Dependencies {
		dep, err := s.store.Get(ctx, depID)
		if err != nil {
			if errors.Is(err, domain.ErrTaskNotFound) {
				return domain.StatusBlocked, nil
			}
			return "", fmt.Errorf("get dependency %s: %w", depID, err)
		}
		if dep.Status != domain.StatusCompleted {
			return domain.StatusBlocked, nil
		}
	}

	return domain.StatusPending, nil
}
