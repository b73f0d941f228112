package domain

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// TaskStatus represents the lifecycle status of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusBlocked    TaskStatus = "blocked"
)

// Statuses returns all statuses in a stable order.
func Statuses() []TaskStatus {
	return []TaskStatus{StatusPending, StatusInProgress, StatusCompleted, StatusBlocked}
}

// IsValid checks if the status is one of the allowed values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusBlocked:
		return true
	default:
		return false
	}
}

// ParseStatus converts a persisted or client-supplied string into a TaskStatus.
// Unknown encodings are an error, never silently defaulted.
func ParseStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// Task represents a unit of work whose status is kept consistent with the
// completion state of the tasks it depends on.
type Task struct {
	ID           string
	Name         string
	Description  string
	Tags         map[string]string
	Status       TaskStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Dependencies []string
}

// DependsOn reports whether the task lists the given id as a dependency.
func (t *Task) DependsOn(id string) bool {
	return slices.Contains(t.Dependencies, id)
}

// Clone returns a deep copy so stored tasks never alias caller-held ones.
func (t *Task) Clone() *Task {
	clone := *t
	clone.Tags = maps.Clone(t.Tags)
	clone.Dependencies = slices.Clone(t.Dependencies)
	return &clone
}

// TaskFilter holds the supported listing filters. Zero-valued fields impose
// no constraint.
type TaskFilter struct {
	Status *TaskStatus       // exact status match
	Search string            // case-sensitive substring over name or description
	Tags   map[string]string // every pair must match exactly
}

// TaskStats holds aggregate task counts.
type TaskStats struct {
	Total    int
	ByStatus map[TaskStatus]int
}
