package handler

import (
	"io"
	"net/http"

	"eventbook/internal/payments/service"
	apperrors "eventbook/pkg/errors"
	httputil "eventbook/pkg/http"
	"eventbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

// WebhookHandler is registered behind the signature verification chain,
// so by the time it runs the body is authenticated.
type WebhookHandler struct {
	service service.PaymentService
	log     *logger.Logger
}

func NewWebhookHandler(service service.PaymentService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		log:     log,
	}
}

func (h *WebhookHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/payments/webhook", h.Receive)
}

func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Failed to read webhook body")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Receive", "error", writeErr)
		}
		return
	}

	result, err := h.service.ProcessWebhook(r.Context(), rawBody)
	if err != nil {
		// A delivery for a booking we cannot resolve is acked so the
		// provider stops retrying something that will never match.
		if appErr := apperrors.AsAppError(err); appErr.Code == apperrors.CodeNotFound {
			h.log.Warn("Webhook booking not resolved, acking", "error", err)
			if writeErr := httputil.WriteSuccess(w, map[string]any{"handled": false}); writeErr != nil {
				h.log.Error("failed to write success response", "handler", "Receive", "error", writeErr)
			}
			return
		}

		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Receive", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Receive", "error", err)
	}
}
