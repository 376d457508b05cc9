package services

import (
	"context"
	"fmt"

	"classifiedsBack/internal/models"
)

type OrderService struct {
	Orders OrderStore
}

func NewOrderService(orders OrderStore) *OrderService {
	return &OrderService{Orders: orders}
}

func (s *OrderService) ListForUser(ctx context.Context, userID int) ([]models.Order, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id is required", models.ErrValidation)
	}
	return s.Orders.ListByUser(ctx, userID)
}

// Get returns the order when the caller owns it or is an admin.
func (s *OrderService) Get(ctx context.Context, id, userID int, role string) (models.Order, error) {
	if id <= 0 {
		return models.Order{}, fmt.Errorf("%w: invalid order id", models.ErrValidation)
	}
	order, err := s.Orders.GetByID(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if role != models.RoleAdmin && order.UserID != userID {
		return models.Order{}, models.ErrForbidden
	}
	return order, nil
}
