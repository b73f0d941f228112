package domain

import "errors"

// Domain-specific errors for business logic validation.
var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrInvalidStatus = errors.New("invalid task status")
	ErrEmptyName     = errors.New("task name is required")
)
