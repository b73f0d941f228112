package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"cascade/internal/domain"
	"cascade/internal/handler/dto"
	"cascade/internal/service"
)

// handleCreateTask creates a new task.
// @Summary Create a new task
// @Description Creates a task. The initial status is derived from the dependencies; it cannot be supplied.
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body dto.CreateTaskRequest true "Task creation request"
// @Success 201 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /tasks [post]
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name is required")
		return
	}
	if len(req.Name) > 200 {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name must be at most 200 characters")
		return
	}

	task, err := h.taskService.CreateTask(ctx, service.CreateTaskParams{
		Name:         req.Name,
		Description:  req.Description,
		Tags:         req.Tags,
		Dependencies: req.Dependencies,
	})
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToTaskResponse(task))
}

// handleGetTask retrieves a single task.
// @Summary Get a task
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /tasks/{id} [get]
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(ctx, taskID)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// handleListTasks returns tasks, optionally filtered.
// @Summary List tasks
// @Description Without query parameters returns all tasks, newest first. With parameters applies status equality, case-sensitive substring search over name or description, and exact-match tag pairs.
// @Tags tasks
// @Produce json
// @Param status query string false "Status: pending, in_progress, completed or blocked"
// @Param search query string false "Case-sensitive substring over name or description"
// @Param tag query []string false "Tag pair as key:value; repeatable, all pairs must match"
// @Success 200 {object} dto.TasksListResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /tasks [get]
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	var filter domain.TaskFilter
	filtered := false

	if statusParam := query.Get("status"); statusParam != "" {
		status, err := domain.ParseStatus(statusParam)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid status filter")
			return
		}
		filter.Status = &status
		filtered = true
	}

	if searchParam := query.Get("search"); searchParam != "" {
		filter.Search = searchParam
		filtered = true
	}

	if tagParams := query["tag"]; len(tagParams) > 0 {
		filter.Tags = make(map[string]string, len(tagParams))
		for _, pair := range tagParams {
			key, value, ok := strings.Cut(pair, ":")
			if !ok || key == "" {
				respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "tag filter must be key:value")
				return
			}
			filter.Tags[key] = value
		}
		filtered = true
	}

	var (
		tasks []*domain.Task
		err   error
	)
	if filtered {
		tasks, err = h.taskService.FilterTasks(ctx, filter)
	} else {
		tasks, err = h.taskService.ListTasks(ctx)
	}
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTasksListResponse(tasks))
}

// handleUpdateTask applies a partial update to a task's fields.
// @Summary Update task fields
// @Description Updates only the supplied fields. A changed status triggers the cascade after the field update is persisted; the response reflects the task before any cascade side effects.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.UpdateTaskRequest true "Partial update"
// @Success 200 {object} dto.TaskResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /tasks/{id} [patch]
func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	params := service.UpdateTaskParams{
		Name:         req.Name,
		Description:  req.Description,
		Tags:         req.Tags,
		Dependencies: req.Dependencies,
	}
	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid status")
			return
		}
		params.Status = &status
	}

	task, err := h.taskService.UpdateTaskFields(ctx, taskID, params)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// handleChangeStatus applies an explicit status change and cascades it.
// @Summary Change task status
// @Description Applies the status as-is, then re-derives every blocked task that transitively depends on the target. Returns all updated tasks in application order.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.ChangeStatusRequest true "Status change request"
// @Success 200 {object} dto.CascadeResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /tasks/{id}/status [patch]
func (h *Handler) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	var req dto.ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid status")
		return
	}

	updated, err := h.taskService.ChangeTaskStatus(ctx, taskID, status)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToCascadeResponse(updated))
}

// handleDeleteTask removes a task.
// @Summary Delete a task
// @Description Removes the task without cascading. Tasks that depended on it keep the dangling dependency id.
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.DeleteTaskResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /tasks/{id} [delete]
func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	deleted, err := h.taskService.DeleteTask(ctx, taskID)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "TASK_NOT_FOUND", "task not found")
		return
	}

	respondJSON(w, http.StatusOK, dto.DeleteTaskResponse{Deleted: true})
}

// handleGetDependencies resolves the task's dependency ids to tasks.
// @Summary Get task dependencies
// @Description Resolves each dependency id to a task; dangling ids are omitted. 404 if the task itself is absent.
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TasksListResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /tasks/{id}/dependencies [get]
func (h *Handler) handleGetDependencies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	deps, err := h.taskService.Dependencies(ctx, taskID)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTasksListResponse(deps))
}

// handleGetDependents lists tasks that depend on the given id.
// @Summary Get task dependents
// @Description Returns every task whose dependency list contains the given id.
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TasksListResponse
// @Router /tasks/{id}/dependents [get]
func (h *Handler) handleGetDependents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := extractTaskID(w, r)
	if !ok {
		return
	}

	dependents, err := h.taskService.Dependents(ctx, taskID)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTasksListResponse(dependents))
}
