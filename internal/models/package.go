package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Package is a purchasable boost product.
type Package struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Duration  int             `json:"duration"`
	Features  []string        `json:"features"`
	IsActive  bool            `json:"isActive"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (p Package) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: package name is required", ErrValidation)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: package price must not be negative", ErrValidation)
	}
	if p.Duration <= 0 {
		return fmt.Errorf("%w: package duration must be positive, got %d", ErrValidation, p.Duration)
	}
	return nil
}
