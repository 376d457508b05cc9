package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// BuyerContact is the billing snapshot captured at checkout.
type BuyerContact struct {
	Name         string `json:"name"`
	Company      string `json:"company,omitempty"`
	Country      string `json:"country"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zip          string `json:"zip"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
}

type Order struct {
	ID              int             `json:"id"`
	UserID          int             `json:"userId"`
	PackageID       int             `json:"packageId"`
	PackageName     string          `json:"packageName"`
	AdvertisementID int             `json:"advertisementId"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	PaymentStatus   string          `json:"paymentStatus"`
	PaymentMethod   string          `json:"paymentMethod,omitempty"`
	PaymentIntentID string          `json:"paymentIntentId"`
	PaymentID       string          `json:"paymentId,omitempty"`
	Buyer           BuyerContact    `json:"buyer"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// CanTransition reports whether the payment status may move from one value to
// another. A succeeded order is final.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	switch from {
	case PaymentStatusPending:
		return to == PaymentStatusSucceeded || to == PaymentStatusFailed
	case PaymentStatusFailed:
		return to == PaymentStatusSucceeded
	}
	return false
}

// AddressLines joins the buyer address for display, skipping empty parts.
func (c BuyerContact) AddressLines() []string {
	var lines []string
	for _, l := range []string{c.AddressLine1, c.AddressLine2} {
		if s := strings.TrimSpace(l); s != "" {
			lines = append(lines, s)
		}
	}
	locality := strings.TrimSpace(strings.Join(nonEmpty(c.City, c.State, c.Zip), ", "))
	if locality != "" {
		lines = append(lines, locality)
	}
	if s := strings.TrimSpace(c.Country); s != "" {
		lines = append(lines, s)
	}
	return lines
}

func (c BuyerContact) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !strings.Contains(c.Email, "@") {
		return fmt.Errorf("%w: invalid email %q", ErrValidation, c.Email)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	return nil
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
