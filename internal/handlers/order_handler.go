package handlers

import (
	"net/http"

	"classifiedsBack/internal/services"
)

type OrderHandler struct {
	Service *services.OrderService
}

func NewOrderHandler(s *services.OrderService) *OrderHandler {
	return &OrderHandler{Service: s}
}

func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	orders, err := h.Service.ListForUser(r.Context(), userID)
	if err != nil {
		writeError(w, errorStatus(err), "Failed to list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}
	id, err := getIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid order id", err)
		return
	}
	order, err := h.Service.Get(r.Context(), id, userID, role)
	if err != nil {
		writeError(w, errorStatus(err), "Failed to get order", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
