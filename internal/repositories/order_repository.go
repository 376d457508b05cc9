package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"classifiedsBack/internal/models"
)

type OrderRepository struct {
	DB *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository { return &OrderRepository{DB: db} }

const orderColumns = `id, user_id, package_id, package_name, advertisement_id, amount, currency,
	payment_status, payment_method, payment_intent_id, payment_id,
	buyer_name, buyer_company, buyer_country, buyer_address_line1, buyer_address_line2,
	buyer_city, buyer_state, buyer_zip, buyer_phone, buyer_email, created_at, updated_at`

func (r *OrderRepository) Create(ctx context.Context, order models.Order) (models.Order, error) {
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	if order.PaymentStatus == "" {
		order.PaymentStatus = models.PaymentStatusPending
	}

	const q = `
		INSERT INTO orders (user_id, package_id, package_name, advertisement_id, amount, currency,
			payment_status, payment_method, payment_intent_id, payment_id,
			buyer_name, buyer_company, buyer_country, buyer_address_line1, buyer_address_line2,
			buyer_city, buyer_state, buyer_zip, buyer_phone, buyer_email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	b := order.Buyer
	res, err := r.DB.ExecContext(ctx, q,
		order.UserID, order.PackageID, order.PackageName, order.AdvertisementID, order.Amount, order.Currency,
		order.PaymentStatus, order.PaymentMethod, order.PaymentIntentID, order.PaymentID,
		b.Name, b.Company, b.Country, b.AddressLine1, b.AddressLine2,
		b.City, b.State, b.Zip, b.Phone, b.Email, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return models.Order{}, fmt.Errorf("%w: insert order: %v", models.ErrPersistence, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Order{}, fmt.Errorf("%w: order id: %v", models.ErrPersistence, err)
	}
	order.ID = int(id)
	return order, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int) (models.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	order, err := scanOrder(r.DB.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, models.ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("%w: get order %d: %v", models.ErrPersistence, id, err)
	}
	return order, nil
}

// MarkSucceeded records a confirmed payment. Repeated calls rewrite the same state.
func (r *OrderRepository) MarkSucceeded(ctx context.Context, id int, paymentID, method string) error {
	const q = `UPDATE orders SET payment_status = ?, payment_id = ?, payment_method = ?, updated_at = ? WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, q, models.PaymentStatusSucceeded, paymentID, method, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("%w: mark order %d succeeded: %v", models.ErrPersistence, id, err)
	}
	return expectAffected(res, models.ErrOrderNotFound)
}

// FindFirstByAdvertisement returns the oldest order that targeted the advertisement.
func (r *OrderRepository) FindFirstByAdvertisement(ctx context.Context, advertisementID int) (models.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE advertisement_id = ? ORDER BY id ASC LIMIT 1`
	order, err := scanOrder(r.DB.QueryRowContext(ctx, q, advertisementID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, models.ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("%w: order for advertisement %d: %v", models.ErrPersistence, advertisementID, err)
	}
	return order, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID int) ([]models.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %v", models.ErrPersistence, err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan order: %v", models.ErrPersistence, err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list orders: %v", models.ErrPersistence, err)
	}
	return orders, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (models.Order, error) {
	var (
		o         models.Order
		method    sql.NullString
		paymentID sql.NullString
		company   sql.NullString
		line2     sql.NullString
	)
	err := row.Scan(
		&o.ID, &o.UserID, &o.PackageID, &o.PackageName, &o.AdvertisementID, &o.Amount, &o.Currency,
		&o.PaymentStatus, &method, &o.PaymentIntentID, &paymentID,
		&o.Buyer.Name, &company, &o.Buyer.Country, &o.Buyer.AddressLine1, &line2,
		&o.Buyer.City, &o.Buyer.State, &o.Buyer.Zip, &o.Buyer.Phone, &o.Buyer.Email,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return models.Order{}, err
	}
	o.PaymentMethod = method.String
	o.PaymentID = paymentID.String
	o.Buyer.Company = company.String
	o.Buyer.AddressLine2 = line2.String
	return o, nil
}

func expectAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", models.ErrPersistence, err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
