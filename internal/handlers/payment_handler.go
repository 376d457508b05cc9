package handlers

import (
	"encoding/json"
	"net/http"

	"classifiedsBack/internal/services"
)

type PaymentHandler struct {
	Service *services.PaymentService
	Orders  *services.OrderService
}

func NewPaymentHandler(s *services.PaymentService, orders *services.OrderService) *PaymentHandler {
	return &PaymentHandler{Service: s, Orders: orders}
}

type verifyPaymentRequest struct {
	PaymentID string `json:"paymentId"`
	OrderID   int    `json:"orderId"`
}

func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil || h.Orders == nil {
		writeError(w, http.StatusInternalServerError, "Payments are not configured", nil)
		return
	}
	userID, role, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req verifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.OrderID > 0 {
		if _, err := h.Orders.Get(r.Context(), req.OrderID, userID, role); err != nil {
			writeError(w, errorStatus(err), "Payment verification failed", err)
			return
		}
	}

	res, err := h.Service.VerifyPayment(r.Context(), req.PaymentID, req.OrderID)
	if err != nil {
		writeError(w, errorStatus(err), "Payment verification failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Payment verified and advertisement boosted",
		"orderId":      res.OrderID,
		"status":       res.Status,
		"boostedUntil": res.BoostedUntil,
	})
}
