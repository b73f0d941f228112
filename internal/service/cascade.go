package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cascade/internal/domain"
)

// statusChange is one unit of cascade work: apply status to the task with id.
type statusChange struct {
	id     string
	status domain.TaskStatus
}

// ChangeTaskStatus applies an explicit status change to one task, persists
// it, then re-stabilizes every task that transitively depends on it. The
// returned slice holds every task that was updated, in application order,
// starting with the target itself.
//
// The new status is applied as-is; transitions are not validated against the
// current derived eligibility. A missing id is an error.
func (s *TaskService) ChangeTaskStatus(ctx context.Context, taskID string, newStatus domain.TaskStatus) ([]*domain.Task, error) {
	if !newStatus.IsValid() {
		return nil, domain.ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.applyStatusChange(ctx, taskID, newStatus)
}

// applyStatusChange runs the cascade with an explicit worklist and a
// per-invocation visited set, bounding the work to O(nodes+edges) even when
// the dependency graph contains cycles. Callers must hold s.mu.
//
// Each step commits before the next is examined, so a store failure midway
// leaves a partially updated but individually consistent graph. Only
// dependents currently blocked are re-derived; a dependent that is already
// pending, in progress or completed is never re-examined here.
func (s *TaskService) applyStatusChange(ctx context.Context, rootID string, rootStatus domain.TaskStatus) ([]*domain.Task, error) {
	updated := make([]*domain.Task, 0, 1)
	visited := make(map[string]bool)
	queue := []statusChange{{id: rootID, status: rootStatus}}

	for len(queue) > 0 {
		change := queue[0]
		queue = queue[1:]

		if visited[change.id] {
			slog.Warn("cascade revisited task, dependency cycle suspected",
				"task_id", change.id,
				"root_id", rootID,
			)
			continue
		}
		visited[change.id] = true

		task, err := s.store.Get(ctx, change.id)
		if err != nil {
			// A dependent vanishing mid-cascade is skipped; the root
			// must exist.
			if change.id != rootID && errors.Is(err, domain.ErrTaskNotFound) {
				continue
			}
			return nil, err
		}

		task.Status = change.status
		task.UpdatedAt = time.Now().UTC()
		if err := s.store.Update(ctx, task); err != nil {
			return nil, err
		}
		updated = append(updated, task)

		slog.Debug("task status applied",
			"task_id", task.ID,
			"status", task.Status,
			"root_id", rootID,
		)

		// Re-derive every blocked task that depends on the one just
		// changed, reading the latest persisted state each time.
		all, err := s.store.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, dependent := range all {
			if dependent.Status != domain.StatusBlocked || !dependent.DependsOn(change.id) {
				continue
			}
			derived, err := s.deriveStatus(ctx, dependent)
			if err != nil {
				return nil, err
			}
			if derived != dependent.Status {
				queue = append(queue, statusChange{id: dependent.ID, status: derived})
			}
		}
	}

	slog.Info("cascade completed",
		"root_id", rootID,
		"status", rootStatus,
		"updated_count", len(updated),
	)

	return updated, nil
}
