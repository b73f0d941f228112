package dto

// CreateTaskRequest represents the request body for POST /tasks.
// Status is intentionally absent: the initial status is always derived
// from the dependencies.
type CreateTaskRequest struct {
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	Tags         map[string]string `json:"tags,omitempty"`
	Dependencies []string          `json:"dependencies,omitempty"`
}

// UpdateTaskRequest represents the request body for PATCH /tasks/{id}.
// Absent fields keep their prior values; tags and dependencies are replaced
// wholesale when present.
type UpdateTaskRequest struct {
	Name         *string           `json:"name,omitempty"`
	Description  *string           `json:"description,omitempty"`
	Tags         map[string]string `json:"tags,omitempty"`
	Status       *string           `json:"status,omitempty"`
	Dependencies []string          `json:"dependencies,omitempty"`
}

// ChangeStatusRequest represents the request body for PATCH /tasks/{id}/status.
type ChangeStatusRequest struct {
	Status string `json:"status"`
}
