package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/loopdesk/loopdesk-api/internal/auth"
	"github.com/loopdesk/loopdesk-api/internal/domain"
	"github.com/loopdesk/loopdesk-api/internal/service"
	"go.uber.org/zap"
)

type TimeEntryHandler struct {
	timeEntryService *service.TimeEntryService
	logger           *zap.Logger
}

func NewTimeEntryHandler(timeEntryService *service.TimeEntryService, logger *zap.Logger) *TimeEntryHandler {
	return &TimeEntryHandler{
		timeEntryService: timeEntryService,
		logger:           logger,
	}
}

// List godoc
// @Summary List time entries
// @Tags TimeEntries
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.TimeEntryDTO}
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /time-entries [get]
func (h *TimeEntryHandler) List(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	result, err := h.timeEntryService.List(r.Context(), userCtx.UserID, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list time entries", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list time entries")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create time entry
// @Description Record a manual time entry. Duration and income are derived from the interval and rate.
// @Tags TimeEntries
// @Accept json
// @Produce json
// @Param request body domain.CreateTimeEntryRequest true "Time entry data"
// @Success 201 {object} domain.TimeEntryDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /time-entries [post]
func (h *TimeEntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	var req domain.CreateTimeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	entry, err := h.timeEntryService.Create(r.Context(), userCtx.UserID, &req)
	if err != nil {
		h.logger.Error("failed to create time entry", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create time entry")
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

// GetByID godoc
// @Summary Get time entry by ID
// @Tags TimeEntries
// @Produce json
// @Param id path string true "Time entry ID" format(uuid)
// @Success 200 {object} domain.TimeEntryDTO
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /time-entries/{id} [get]
func (h *TimeEntryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid time entry ID format")
		return
	}

	entry, err := h.timeEntryService.GetByID(r.Context(), userCtx.UserID, id)
	if err != nil {
		h.respondEntryError(w, err, "Failed to get time entry")
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// Update godoc
// @Summary Update time entry
// @Tags TimeEntries
// @Accept json
// @Produce json
// @Param id path string true "Time entry ID" format(uuid)
// @Param request body domain.CreateTimeEntryRequest true "Time entry data"
// @Success 200 {object} domain.TimeEntryDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /time-entries/{id} [put]
func (h *TimeEntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid time entry ID format")
		return
	}

	var req domain.CreateTimeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	entry, err := h.timeEntryService.Update(r.Context(), userCtx.UserID, id, &req)
	if err != nil {
		h.respondEntryError(w, err, "Failed to update time entry")
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// Delete godoc
// @Summary Delete time entry
// @Tags TimeEntries
// @Param id path string true "Time entry ID" format(uuid)
// @Success 204 "No Content"
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /time-entries/{id} [delete]
func (h *TimeEntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid time entry ID format")
		return
	}

	if err := h.timeEntryService.Delete(r.Context(), userCtx.UserID, id); err != nil {
		h.respondEntryError(w, err, "Failed to delete time entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TimeEntryHandler) respondEntryError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Time entry not found")
	case errors.Is(err, service.ErrPermissionDenied):
		respondWithError(w, http.StatusForbidden, "You do not own this time entry")
	default:
		h.logger.Error(fallback, zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, fallback)
	}
}
