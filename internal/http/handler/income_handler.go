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

type IncomeHandler struct {
	incomeService *service.IncomeService
	logger        *zap.Logger
}

func NewIncomeHandler(incomeService *service.IncomeService, logger *zap.Logger) *IncomeHandler {
	return &IncomeHandler{
		incomeService: incomeService,
		logger:        logger,
	}
}

// List godoc
// @Summary List income records
// @Tags Incomes
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.IncomeDTO}
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /incomes [get]
func (h *IncomeHandler) List(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	result, err := h.incomeService.List(r.Context(), userCtx.UserID, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list incomes", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list incomes")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create income record
// @Description Record an income. VAT amount and final amount are derived from the pre-VAT amount and rate.
// @Tags Incomes
// @Accept json
// @Produce json
// @Param request body domain.CreateIncomeRequest true "Income data"
// @Success 201 {object} domain.IncomeDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /incomes [post]
func (h *IncomeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	var req domain.CreateIncomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	income, err := h.incomeService.Create(r.Context(), userCtx.UserID, &req)
	if err != nil {
		h.logger.Error("failed to create income", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create income")
		return
	}

	respondJSON(w, http.StatusCreated, income)
}

// GetByID godoc
// @Summary Get income record by ID
// @Tags Incomes
// @Produce json
// @Param id path string true "Income ID" format(uuid)
// @Success 200 {object} domain.IncomeDTO
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /incomes/{id} [get]
func (h *IncomeHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid income ID format")
		return
	}

	income, err := h.incomeService.GetByID(r.Context(), userCtx.UserID, id)
	if err != nil {
		h.respondIncomeError(w, err, "Failed to get income")
		return
	}

	respondJSON(w, http.StatusOK, income)
}

// Update godoc
// @Summary Update income record
// @Tags Incomes
// @Accept json
// @Produce json
// @Param id path string true "Income ID" format(uuid)
// @Param request body domain.CreateIncomeRequest true "Income data"
// @Success 200 {object} domain.IncomeDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /incomes/{id} [put]
func (h *IncomeHandler) Update(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid income ID format")
		return
	}

	var req domain.CreateIncomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	income, err := h.incomeService.Update(r.Context(), userCtx.UserID, id, &req)
	if err != nil {
		h.respondIncomeError(w, err, "Failed to update income")
		return
	}

	respondJSON(w, http.StatusOK, income)
}

// Delete godoc
// @Summary Delete income record
// @Tags Incomes
// @Param id path string true "Income ID" format(uuid)
// @Success 204 "No Content"
// @Failure 403 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /incomes/{id} [delete]
func (h *IncomeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid income ID format")
		return
	}

	if err := h.incomeService.Delete(r.Context(), userCtx.UserID, id); err != nil {
		h.respondIncomeError(w, err, "Failed to delete income")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *IncomeHandler) respondIncomeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Income not found")
	case errors.Is(err, service.ErrPermissionDenied):
		respondWithError(w, http.StatusForbidden, "You do not own this income record")
	default:
		h.logger.Error(fallback, zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, fallback)
	}
}
