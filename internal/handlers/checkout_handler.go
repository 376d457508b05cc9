package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"classifiedsBack/internal/models"
	"classifiedsBack/internal/services"
)

type CheckoutHandler struct {
	Service *services.CheckoutService
}

func NewCheckoutHandler(s *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{Service: s}
}

type checkoutRequest struct {
	models.BuyerContact
	PackageID       int             `json:"packageId"`
	PackageName     string          `json:"packageName"`
	AdvertisementID int             `json:"advertisementId"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency,omitempty"`
}

func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		writeError(w, http.StatusInternalServerError, "Checkout is not configured", nil)
		return
	}
	userID, _, ok := currentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := h.Service.Checkout(r.Context(), services.CheckoutRequest{
		UserID:          userID,
		PackageID:       req.PackageID,
		PackageName:     req.PackageName,
		AdvertisementID: req.AdvertisementID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Buyer:           req.BuyerContact,
	})
	if err != nil {
		writeError(w, errorStatus(err), "Checkout failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":      "Order created successfully",
		"orderId":      res.OrderID,
		"clientSecret": res.ClientSecret,
	})
}

type paymentIntentRequest struct {
	Amount   decimal.Decimal   `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
}

func (h *CheckoutHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Service == nil {
		writeError(w, http.StatusInternalServerError, "Payments are not configured", nil)
		return
	}
	if _, _, ok := currentUser(r); !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	var req paymentIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	intent, err := h.Service.CreatePaymentIntent(r.Context(), req.Amount, req.Currency, req.Metadata)
	if err != nil {
		writeError(w, errorStatus(err), "Failed to create payment intent", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"clientSecret":    intent.ClientSecret,
		"paymentIntentId": intent.ID,
	})
}
