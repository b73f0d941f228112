package dto

import (
	"time"

	"cascade/internal/domain"
)

// TaskResponse represents a task in API responses.
type TaskResponse struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Tags         map[string]string `json:"tags"`
	Status       string            `json:"status"`
	Dependencies []string          `json:"dependencies"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// TasksListResponse represents the response for GET /tasks and the
// dependency/dependent listings.
type TasksListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}

// CascadeResponse represents the response for PATCH /tasks/{id}/status:
// every task the cascade updated, in application order. The same id may
// appear at most once per cascade.
type CascadeResponse struct {
	Updated []TaskResponse `json:"updated"`
	Total   int            `json:"total"`
}

// DeleteTaskResponse represents the response for DELETE /tasks/{id}.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
}

// StatsResponse represents aggregate task counts.
type StatsResponse struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

// ToTaskResponse converts a domain.Task to its API shape.
func ToTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:           task.ID,
		Name:         task.Name,
		Description:  task.Description,
		Tags:         task.Tags,
		Status:       string(task.Status),
		Dependencies: task.Dependencies,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
}

// ToTasksListResponse converts a task slice to the list response shape.
func ToTasksListResponse(tasks []*domain.Task) TasksListResponse {
	out := make([]TaskResponse, len(tasks))
	for i, task := range tasks {
		out[i] = ToTaskResponse(task)
	}
	return TasksListResponse{Tasks: out, Total: len(out)}
}

// ToCascadeResponse converts the cascade result to its API shape.
func ToCascadeResponse(updated []*domain.Task) CascadeResponse {
	out := make([]TaskResponse, len(updated))
	for i, task := range updated {
		out[i] = ToTaskResponse(task)
	}
	return CascadeResponse{Updated: out, Total: len(out)}
}

// ToStatsResponse converts domain.TaskStats to its API shape.
func ToStatsResponse(stats *domain.TaskStats) StatsResponse {
	byStatus := make(map[string]int, len(stats.ByStatus))
	for status, count := range stats.ByStatus {
		byStatus[string(status)] = count
	}
	return StatsResponse{Total: stats.Total, ByStatus: byStatus}
}
