package handler

import (
	"errors"
	"net/http"

	"github.com/loopdesk/loopdesk-api/internal/auth"
	"github.com/loopdesk/loopdesk-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// Snapshot godoc
// @Summary Consolidated dashboard fetch
// @Description Returns every collection the user owns plus derived analytics (total hours, income per hour, customer scores) in one response. Clients use this to bootstrap with a single round trip.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DashboardSnapshot
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /dashboard [get]
func (h *DashboardHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	snapshot, err := h.dashboardService.Snapshot(r.Context(), userCtx.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("failed to build dashboard snapshot", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}
