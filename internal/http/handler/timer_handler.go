package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/loopdesk/loopdesk-api/internal/auth"
	"github.com/loopdesk/loopdesk-api/internal/domain"
	"github.com/loopdesk/loopdesk-api/internal/service"
	"go.uber.org/zap"
)

type TimerHandler struct {
	timerService *service.TimerService
	logger       *zap.Logger
}

func NewTimerHandler(timerService *service.TimerService, logger *zap.Logger) *TimerHandler {
	return &TimerHandler{
		timerService: timerService,
		logger:       logger,
	}
}

// GetActive godoc
// @Summary Get the running timer
// @Description Returns the user's running timer, or 204 when none is running
// @Tags Timer
// @Produce json
// @Success 200 {object} domain.ActiveTimerDTO
// @Success 204 "No running timer"
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /timer [get]
func (h *TimerHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	timer, err := h.timerService.GetActive(r.Context(), userCtx.UserID)
	if err != nil {
		h.logger.Error("failed to get active timer", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get timer")
		return
	}

	if timer == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respondJSON(w, http.StatusOK, timer)
}

// Start godoc
// @Summary Start the timer
// @Description Start the single timer slot. Fails with 409 when a timer is already running.
// @Tags Timer
// @Accept json
// @Produce json
// @Param request body domain.StartTimerRequest true "Timer target"
// @Success 201 {object} domain.ActiveTimerDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Timer already running"
// @Security BearerAuth
// @Router /timer/start [post]
func (h *TimerHandler) Start(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	var req domain.StartTimerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	timer, err := h.timerService.Start(r.Context(), userCtx.UserID, &req)
	if err != nil {
		if errors.Is(err, service.ErrTimerAlreadyRunning) {
			respondWithError(w, http.StatusConflict, "A timer is already running")
			return
		}
		h.logger.Error("failed to start timer", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to start timer")
		return
	}

	respondJSON(w, http.StatusCreated, timer)
}

// Stop godoc
// @Summary Stop the timer
// @Description Stop the running timer and convert it into a time entry
// @Tags Timer
// @Produce json
// @Success 200 {object} domain.TimeEntryDTO
// @Failure 404 {object} domain.ErrorResponse "No running timer"
// @Security BearerAuth
// @Router /timer/stop [post]
func (h *TimerHandler) Stop(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	entry, err := h.timerService.Stop(r.Context(), userCtx.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveTimer) {
			respondWithError(w, http.StatusNotFound, "No timer is running")
			return
		}
		h.logger.Error("failed to stop timer", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to stop timer")
		return
	}

	respondJSON(w, http.StatusOK, entry)
}
