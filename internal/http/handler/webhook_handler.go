package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/loopdesk/loopdesk-api/internal/billing"
	"github.com/loopdesk/loopdesk-api/internal/service"
	"go.uber.org/zap"
)

// Webhook bodies are small JSON documents
const maxWebhookBodySize = 1 << 20

type WebhookHandler struct {
	verifier            *billing.Verifier
	subscriptionService *service.SubscriptionService
	logger              *zap.Logger
}

func NewWebhookHandler(verifier *billing.Verifier, subscriptionService *service.SubscriptionService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier:            verifier,
		subscriptionService: subscriptionService,
		logger:              logger,
	}
}

// webhookEvent is the processor's delivery envelope
type webhookEvent struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		ID string `json:"id"`
	} `json:"resource"`
}

// Receive godoc
// @Summary Payment processor webhook
// @Description Verify the delivery signature and apply the event to the matching subscription. Replayed event ids are acknowledged without effect.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 "Event applied"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 401 {object} domain.ErrorResponse "Signature verification failed"
// @Router /payments/webhook [post]
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	headers := billing.HeadersFromRequest(r)
	if err := h.verifier.Verify(r.Context(), headers, body); err != nil {
		h.logger.Warn("webhook signature rejected",
			zap.String("transmission_id", headers.TransmissionID),
			zap.Error(err),
		)
		respondWithError(w, http.StatusUnauthorized, "Signature verification failed")
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid event payload")
		return
	}
	if event.ID == "" || event.EventType == "" {
		respondWithError(w, http.StatusBadRequest, "Event id and type are required")
		return
	}

	if err := h.subscriptionService.ApplyWebhookEvent(r.Context(), event.ID, event.EventType, event.Resource.ID, string(body)); err != nil {
		if errors.Is(err, service.ErrSubscriptionNotFound) {
			// Acknowledge so the processor stops retrying an event we can never match
			h.logger.Warn("webhook event for unknown subscription",
				zap.String("event_id", event.ID),
				zap.String("processor_sub_id", event.Resource.ID),
			)
			w.WriteHeader(http.StatusOK)
			return
		}
		h.logger.Error("failed to apply webhook event",
			zap.String("event_id", event.ID),
			zap.Error(err),
		)
		respondWithError(w, http.StatusInternalServerError, "Failed to apply event")
		return
	}

	w.WriteHeader(http.StatusOK)
}
