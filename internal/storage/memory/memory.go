// Package memory provides an in-memory storage.Store behind a single lock.
// It backs the embedded serve mode and the test suites; semantics mirror the
// PostgreSQL store, including the newest-first listing order.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"cascade/internal/domain"
)

// Store is an in-memory task store. Tasks are deep-copied on the way in and
// out, so callers never share memory with the store.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task
	seq   map[string]int // insertion order, breaks created_at ties
	next  int
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		tasks: make(map[string]*domain.Task),
		seq:   make(map[string]int),
	}
}

// Create inserts a new task.
func (s *Store) Create(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; ok {
		return fmt.Errorf("create task: duplicate id %s", task.ID)
	}
	s.tasks[task.ID] = task.Clone()
	s.seq[task.ID] = s.next
	s.next++
	return nil
}

// Get retrieves a task by ID.
func (s *Store) Get(_ context.Context, id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return task.Clone(), nil
}

// List retrieves all tasks, newest first.
func (s *Store) List(_ context.Context) ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(*domain.Task) bool { return true }), nil
}

// Update persists all mutable fields of the task.
func (s *Store) Update(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tasks[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	clone := task.Clone()
	clone.CreatedAt = stored.CreatedAt
	s.tasks[task.ID] = clone
	return nil
}

// Delete removes a task by ID and reports whether it existed.
func (s *Store) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return false, nil
	}
	delete(s.tasks, id)
	delete(s.seq, id)
	return true, nil
}

// Filter retrieves tasks matching the given filter, newest first.
func (s *Store) Filter(_ context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(task *domain.Task) bool { return matches(task, filter) }), nil
}

// Stats returns aggregate task counts grouped by status.
func (s *Store) Stats(_ context.Context) (*domain.TaskStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.TaskStats{ByStatus: make(map[domain.TaskStatus]int, 4)}
	for _, status := range domain.Statuses() {
		stats.ByStatus[status] = 0
	}
	for _, task := range s.tasks {
		stats.ByStatus[task.Status]++
		stats.Total++
	}
	return stats, nil
}

// Ping always succeeds; there is no backing connection.
func (s *Store) Ping(context.Context) error {
	return nil
}

// snapshot clones all tasks passing the predicate, sorted newest first.
// Callers must hold at least the read lock.
func (s *Store) snapshot(keep func(*domain.Task) bool) []*domain.Task {
	tasks := make([]*domain.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if keep(task) {
			tasks = append(tasks, task.Clone())
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return s.seq[tasks[i].ID] > s.seq[tasks[j].ID]
	})
	return tasks
}

// matches applies TaskFilter semantics: status equality, case-sensitive
// substring over name or description, and all-pairs exact tag match.
func matches(task *domain.Task, filter domain.TaskFilter) bool {
	if filter.Status != nil && task.Status != *filter.Status {
		return false
	}
	if filter.Search != "" &&
		!strings.Contains(task.Name, filter.Search) &&
		!strings.Contains(task.Description, filter.Search) {
		return false
	}
	for key, want := range filter.Tags {
		if got, ok := task.Tags[key]; !ok || got != want {
			return false
		}
	}
	return true
}
