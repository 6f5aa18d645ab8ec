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

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
	logger              *zap.Logger
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		logger:              logger,
	}
}

// Get godoc
// @Summary Get own subscription
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} domain.SubscriptionDTO
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /subscriptions [get]
func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	subscription, err := h.subscriptionService.GetForUser(r.Context(), userCtx.UserID)
	if err != nil {
		if errors.Is(err, service.ErrSubscriptionNotFound) {
			respondWithError(w, http.StatusNotFound, "Subscription not found")
			return
		}
		h.logger.Error("failed to get subscription", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get subscription")
		return
	}

	respondJSON(w, http.StatusOK, subscription)
}

// ChangePlan godoc
// @Summary Change subscription plan
// @Description Switch to a paid plan. Activation is confirmed asynchronously by the payment processor webhook.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param request body domain.ChangePlanRequest true "Target plan"
// @Success 200 {object} domain.SubscriptionDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /subscriptions/plan [put]
func (h *SubscriptionHandler) ChangePlan(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	var req domain.ChangePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	subscription, err := h.subscriptionService.ChangePlan(r.Context(), userCtx.UserID, domain.SubscriptionPlan(req.Plan))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubscriptionNotFound):
			respondWithError(w, http.StatusNotFound, "Subscription not found")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, "Invalid plan")
		default:
			h.logger.Error("failed to change plan", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to change plan")
		}
		return
	}

	respondJSON(w, http.StatusOK, subscription)
}

// Cancel godoc
// @Summary Cancel subscription
// @Tags Subscriptions
// @Produce json
// @Success 200 {object} domain.SubscriptionDTO
// @Failure 401 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /subscriptions [delete]
func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userCtx := auth.MustFromContext(r.Context())

	subscription, err := h.subscriptionService.Cancel(r.Context(), userCtx.UserID)
	if err != nil {
		if errors.Is(err, service.ErrSubscriptionNotFound) {
			respondWithError(w, http.StatusNotFound, "Subscription not found")
			return
		}
		h.logger.Error("failed to cancel subscription", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to cancel subscription")
		return
	}

	respondJSON(w, http.StatusOK, subscription)
}
