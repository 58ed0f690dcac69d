package handler

import (
	"encoding/json"
	"net/http"

	"eventbook/internal/otp/service"
	httputil "eventbook/pkg/http"
	"eventbook/pkg/logger"
	"eventbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type OTPHandler struct {
	service service.OTPService
	log     *logger.Logger
}

func NewOTPHandler(service service.OTPService, log *logger.Logger) *OTPHandler {
	return &OTPHandler{
		service: service,
		log:     log,
	}
}

func (h *OTPHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/otp/send", h.Send)
	router.POST("/api/otp/verify", h.Verify)
}

type sendRequest struct {
	Email        string             `json:"email"`
	EventDetails model.EventDetails `json:"eventDetails"`
}

type verifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type verifyResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Send", "error", writeErr)
		}
		return
	}

	result, err := h.service.Send(r.Context(), req.Email, req.EventDetails)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Send", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Send", "error", err)
	}
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Verify", "error", writeErr)
		}
		return
	}

	booking, err := h.service.Verify(r.Context(), req.Email, req.OTP)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Verify", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, verifyResponse{
		ID:       booking.ID,
		Amount:   booking.Amount,
		Currency: booking.Currency,
		Status:   booking.Status,
	}); err != nil {
		h.log.Error("failed to write created response", "handler", "Verify", "error", err)
	}
}
