package handler

import (
	"encoding/json"
	"net/http"

	"eventbook/internal/payments/provider"
	"eventbook/internal/payments/service"
	httputil "eventbook/pkg/http"
	"eventbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type PaymentHandler struct {
	service service.PaymentService
	log     *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log,
	}
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/payments/create-order", h.CreateOrder)
	router.POST("/api/payments/create-payment-link", h.CreatePaymentLink)
}

type createOrderRequest struct {
	BookingID string `json:"bookingId"`
}

type createPaymentLinkRequest struct {
	BookingID string            `json:"bookingId"`
	Customer  provider.Customer `json:"customer"`
	Address   provider.Address  `json:"address"`
}

func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreateOrder", "error", writeErr)
		}
		return
	}

	result, err := h.service.CreateOrder(r.Context(), req.BookingID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreateOrder", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "CreateOrder", "error", err)
	}
}

func (h *PaymentHandler) CreatePaymentLink(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createPaymentLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "CreatePaymentLink", "error", writeErr)
		}
		return
	}

	result, err := h.service.CreatePaymentLink(r.Context(), req.BookingID, req.Customer, req.Address)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CreatePaymentLink", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "CreatePaymentLink", "error", err)
	}
}
