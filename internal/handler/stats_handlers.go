package handler

import (
	"net/http"

	"cascade/internal/handler/dto"
)

// handleGetStats returns aggregate task counts.
// @Summary Get task statistics
// @Description Returns the total task count and a per-status breakdown.
// @Tags stats
// @Produce json
// @Success 200 {object} dto.StatsResponse
// @Router /stats [get]
func (h *Handler) handleGetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.taskService.Stats(ctx)
	if err != nil {
		status, code, message := dto.MapDomainError(err)
		respondError(w, status, code, message)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToStatsResponse(stats))
}
