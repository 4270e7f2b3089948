package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"coffee-loyalty/db"
	"coffee-loyalty/logger"
	"coffee-loyalty/models"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// ValidStatusTransition reports whether an order may move from one status
// to another. Orders move forward only; cancellation is possible until
// the barista starts preparing.
func ValidStatusTransition(from, to string) bool {
	switch from {
	case OrderStatusPending:
		return to == OrderStatusConfirmed || to == OrderStatusCancelled
	case OrderStatusConfirmed:
		return to == OrderStatusPreparing || to == OrderStatusCancelled
	case OrderStatusPreparing:
		return to == OrderStatusReady
	case OrderStatusReady:
		return to == OrderStatusCompleted
	}
	return false
}

// OrderTotal sums price * quantity over the line items.
func OrderTotal(items []models.OrderItem) int64 {
	var total int64
	for _, it := range items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

// CreateOrder inserts a confirmed order. Line items are stored as a JSONB
// snapshot; the total is computed here, not trusted from the caller.
func CreateOrder(ctx context.Context, userID int64, userName string, items []models.OrderItem, pickupTime string) (*models.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("order must have at least one item")
	}

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal order items: %w", err)
	}
	total := OrderTotal(items)

	o := models.Order{
		UserID:     userID,
		UserName:   userName,
		Items:      items,
		Total:      total,
		PickupTime: pickupTime,
		Status:     OrderStatusConfirmed,
	}
	err = db.Pool.QueryRow(ctx, `
		INSERT INTO orders (user_id, user_name, items, total, pickup_time, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		userID, userName, itemsJSON, total, pickupTime, OrderStatusConfirmed,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"order_id": o.ID, "user_id": userID, "items_count": len(items),
	}).Debug("order_created")
	return &o, nil
}

func GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, user_id, user_name, items, total, pickup_time, status, created_at
		FROM orders WHERE id = $1`,
		orderID,
	)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrOrderNotFound, orderID)
	}
	return o, err
}

// ActiveOrders returns orders the barista still has to handle, oldest
// first.
func ActiveOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, user_name, items, total, pickup_time, status, created_at
		FROM orders
		WHERE status NOT IN ($1, $2)
		ORDER BY created_at ASC`,
		OrderStatusCompleted, OrderStatusCancelled,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// UpdateOrderStatus moves an order along the status flow, rejecting
// invalid transitions. Returns the updated order.
func UpdateOrderStatus(ctx context.Context, orderID int64, newStatus string) (*models.Order, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var fromStatus string
	err = tx.QueryRow(ctx, `
		SELECT status FROM orders WHERE id = $1 FOR UPDATE`,
		orderID,
	).Scan(&fromStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}

	if !ValidStatusTransition(fromStatus, newStatus) {
		return nil, fmt.Errorf("invalid status transition from %q to %q", fromStatus, newStatus)
	}

	row := tx.QueryRow(ctx, `
		UPDATE orders SET status = $2 WHERE id = $1
		RETURNING id, user_id, user_name, items, total, pickup_time, status, created_at`,
		orderID, newStatus,
	)
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"order_id": orderID, "from": fromStatus, "to": newStatus,
	}).Debug("order_status_updated")
	return o, nil
}

// UserOrders returns one page of the user's orders, newest first, plus
// the total count for pagination.
func UserOrders(ctx context.Context, userID int64, limit, offset int) ([]models.Order, int, error) {
	if limit <= 0 {
		limit = 5
	}

	var total int
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM orders WHERE user_id = $1`,
		userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, user_name, items, total, pickup_time, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// CancelOrderByClient cancels the client's own order. Ownership and
// status are checked under a row lock so a barista picking the order up
// at the same time cannot race the cancellation. An order that does not
// exist or belongs to someone else reports ErrOrderNotFound (ownership
// is not leaked); an order already being prepared reports
// ErrOrderNotCancellable.
func CancelOrderByClient(ctx context.Context, orderID, userID int64) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var ownerID int64
	var status string
	err = tx.QueryRow(ctx, `
		SELECT user_id, status FROM orders WHERE id = $1 FOR UPDATE`,
		orderID,
	).Scan(&ownerID, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: id %d", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return err
	}
	if ownerID != userID {
		logger.Log.WithFields(logrus.Fields{
			"order_id": orderID, "user_id": userID, "owner_id": ownerID,
		}).Warn("cancel_order_access_denied")
		return fmt.Errorf("%w: id %d", ErrOrderNotFound, orderID)
	}
	if status != OrderStatusPending && status != OrderStatusConfirmed {
		return fmt.Errorf("%w: status %q", ErrOrderNotCancellable, status)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status = $2 WHERE id = $1`,
		orderID, OrderStatusCancelled,
	); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	logger.Log.WithFields(logrus.Fields{
		"order_id": orderID, "user_id": userID, "old_status": status,
	}).Info("order_cancelled_by_client")
	return nil
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	var itemsJSON []byte
	err := row.Scan(&o.ID, &o.UserID, &o.UserName, &itemsJSON, &o.Total, &o.PickupTime, &o.Status, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal order items: %w", err)
		}
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}
