package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"classifiedsBack/internal/models"
	"classifiedsBack/internal/services"
)

type InvoiceHandler struct {
	Service *services.InvoiceService
	Orders  *services.OrderService
}

func NewInvoiceHandler(s *services.InvoiceService, orders *services.OrderService) *InvoiceHandler {
	return &InvoiceHandler{Service: s, Orders: orders}
}

// GenerateInvoice sends the invoice of the order named in the body.
func (h *InvoiceHandler) GenerateInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID int `json:"orderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorObject(w, http.StatusBadRequest, "Invalid request body", fmt.Errorf("%w: %v", models.ErrValidation, err))
		return
	}
	h.send(w, r, req.OrderID)
}

// SendInvoice sends the invoice of the order in the path.
func (h *InvoiceHandler) SendInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := getIDParam(r, "id")
	if err != nil {
		writeErrorObject(w, http.StatusBadRequest, "Invalid order id", err)
		return
	}
	h.send(w, r, id)
}

func (h *InvoiceHandler) send(w http.ResponseWriter, r *http.Request, orderID int) {
	if h == nil || h.Service == nil || h.Orders == nil {
		writeErrorObject(w, http.StatusInternalServerError, "Invoices are not configured", nil)
		return
	}
	userID, role, ok := currentUser(r)
	if !ok {
		writeErrorObject(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	if _, err := h.Orders.Get(r.Context(), orderID, userID, role); err != nil {
		writeErrorObject(w, errorStatus(err), "Failed to send invoice", err)
		return
	}

	res, err := h.Service.SendInvoice(r.Context(), orderID)
	if err != nil {
		writeErrorObject(w, errorStatus(err), "Failed to send invoice", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Invoice sent successfully",
		"messageId": res.MessageID,
		"to":        res.To,
	})
}

// GetInvoice renders the invoice as an HTML page.
func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil || h.Orders == nil {
		writeErrorObject(w, http.StatusInternalServerError, "Invoices are not configured", nil)
		return
	}
	userID, role, ok := currentUser(r)
	if !ok {
		writeErrorObject(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	id, err := getIDParam(r, "id")
	if err != nil {
		writeErrorObject(w, http.StatusBadRequest, "Invalid order id", err)
		return
	}

	order, err := h.Orders.Get(r.Context(), id, userID, role)
	if err != nil {
		writeErrorObject(w, errorStatus(err), "Failed to load invoice", err)
		return
	}
	inv, err := h.Service.RenderInvoice(order)
	if err != nil {
		writeErrorObject(w, http.StatusInternalServerError, "Failed to render invoice", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(inv.HTML))
}
