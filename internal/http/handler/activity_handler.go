package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/loopdesk/loopdesk-api/internal/auth"
	"github.com/loopdesk/loopdesk-api/internal/domain"
	"github.com/loopdesk/loopdesk-api/internal/service"
	"go.uber.org/zap"
)

type ActivityHandler struct {
	activityService *service.ActivityService
	logger          *zap.Logger
}

func NewActivityHandler(activityService *service.ActivityService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		logger:          logger,
	}
}

// List godoc
// @Summary List activity feed
// @Tags Activities
// @Produce json
// @Param limit query int false "Maximum entries (max 500)" default(100)
// @Success 200 {array} domain.ActivityDTO
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /activities [get]
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	activities, err := h.activityService.List(r.Context(), userCtx.UserID, limit)
	if err != nil {
		h.logger.Error("failed to list activities", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list activities")
		return
	}

	respondJSON(w, http.StatusOK, activities)
}

// Append godoc
// @Summary Append an activity event
// @Description Ingest a client-side event into the append-only activity feed. An identical event from the same actor within one second is deduplicated and the existing record is returned.
// @Tags Activities
// @Accept json
// @Produce json
// @Param request body domain.CreateActivityRequest true "Event data"
// @Success 201 {object} domain.ActivityDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /events [post]
func (h *ActivityHandler) Append(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	var req domain.CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	activity, err := h.activityService.Append(r.Context(), userCtx.UserID, &req)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			respondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		h.logger.Error("failed to append activity", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to append activity")
		return
	}

	respondJSON(w, http.StatusCreated, activity)
}
