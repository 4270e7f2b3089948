package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"coffee-loyalty/db"
	"coffee-loyalty/logger"
	"coffee-loyalty/models"
)

// RecordOrderItemModifiers stores which modifiers were chosen for one
// line item of an order. Policy: replace — calling again for the same
// (order, item index) discards the previous selection and writes the new
// one, in a single transaction. Idempotent for identical input,
// last-write-wins otherwise.
func RecordOrderItemModifiers(ctx context.Context, orderID int64, itemIndex int, modifierIDs []int64) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		DELETE FROM order_item_modifiers
		WHERE order_id = $1 AND item_index = $2`,
		orderID, itemIndex,
	); err != nil {
		return err
	}

	for _, modifierID := range modifierIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_item_modifiers (order_id, item_index, modifier_id)
			VALUES ($1, $2, $3)`,
			orderID, itemIndex, modifierID,
		); err != nil {
			return classifyPgError(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	logger.Log.WithFields(logrus.Fields{
		"order_id": orderID, "item_index": itemIndex, "modifiers": len(modifierIDs),
	}).Debug("order_item_modifiers_recorded")
	return nil
}

// OrderItemModifiers returns the chosen modifiers for every line item of
// an order, keyed by item index.
func OrderItemModifiers(ctx context.Context, orderID int64) (map[int][]models.Modifier, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT oim.item_index, m.id, m.name, m.category, m.price, m.is_available, m.sort_order
		FROM order_item_modifiers oim
		JOIN modifiers m ON m.id = oim.modifier_id
		WHERE oim.order_id = $1
		ORDER BY oim.item_index, m.category, m.sort_order, m.name`,
		orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byItem := make(map[int][]models.Modifier)
	for rows.Next() {
		var idx int
		var m models.Modifier
		if err := rows.Scan(&idx, &m.ID, &m.Name, &m.Category, &m.Price, &m.IsAvailable, &m.SortOrder); err != nil {
			return nil, err
		}
		byItem[idx] = append(byItem[idx], m)
	}
	return byItem, rows.Err()
}
