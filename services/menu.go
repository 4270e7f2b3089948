package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"coffee-loyalty/db"
	"coffee-loyalty/models"
)

func ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	return queryMenuItems(ctx, `
		SELECT id, name, price, available FROM menu_items
		WHERE available
		ORDER BY id`)
}

// ListAllMenu returns every item including unavailable ones (admin view).
func ListAllMenu(ctx context.Context) ([]models.MenuItem, error) {
	return queryMenuItems(ctx, `
		SELECT id, name, price, available FROM menu_items
		ORDER BY id`)
}

func queryMenuItems(ctx context.Context, sql string, args ...any) ([]models.MenuItem, error) {
	rows, err := db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		var m models.MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Price, &m.Available); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	var m models.MenuItem
	err := db.Pool.QueryRow(ctx, `
		SELECT id, name, price, available FROM menu_items WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.Name, &m.Price, &m.Available)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrMenuItemNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func AddMenuItem(ctx context.Context, name string, price int64) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("name is required")
	}
	if price < 0 {
		return 0, fmt.Errorf("price must be >= 0")
	}

	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO menu_items (name, price) VALUES ($1, $2)
		RETURNING id`,
		name, price,
	).Scan(&id)
	return id, err
}

// ToggleMenuItemAvailability flips available and returns the updated item.
func ToggleMenuItemAvailability(ctx context.Context, id int64) (*models.MenuItem, error) {
	var m models.MenuItem
	err := db.Pool.QueryRow(ctx, `
		UPDATE menu_items SET available = NOT available
		WHERE id = $1
		RETURNING id, name, price, available`,
		id,
	).Scan(&m.ID, &m.Name, &m.Price, &m.Available)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrMenuItemNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListSizesForItem returns the item's available sizes, cheapest first.
func ListSizesForItem(ctx context.Context, menuItemID int64) ([]models.MenuItemSize, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, menu_item_id, size, size_name, price_diff, available
		FROM menu_item_sizes
		WHERE menu_item_id = $1 AND available
		ORDER BY price_diff ASC`,
		menuItemID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sizes []models.MenuItemSize
	for rows.Next() {
		var s models.MenuItemSize
		if err := rows.Scan(&s.ID, &s.MenuItemID, &s.Size, &s.SizeName, &s.PriceDiff, &s.Available); err != nil {
			return nil, err
		}
		sizes = append(sizes, s)
	}
	return sizes, rows.Err()
}

// ListModifiersForItem returns the available modifiers the item is
// eligible for, ordered for display.
func ListModifiersForItem(ctx context.Context, menuItemID int64) ([]models.Modifier, error) {
	return queryModifiers(ctx, `
		SELECT m.id, m.name, m.category, m.price, m.is_available, m.sort_order
		FROM modifiers m
		JOIN menu_item_modifiers mim ON m.id = mim.modifier_id
		WHERE mim.menu_item_id = $1 AND m.is_available
		ORDER BY m.category, m.sort_order, m.name`,
		menuItemID)
}

// ListModifiers returns available modifiers, optionally filtered by
// category ("" = all).
func ListModifiers(ctx context.Context, category string) ([]models.Modifier, error) {
	if category != "" {
		return queryModifiers(ctx, `
			SELECT id, name, category, price, is_available, sort_order
			FROM modifiers
			WHERE is_available AND category = $1
			ORDER BY sort_order, name`,
			category)
	}
	return queryModifiers(ctx, `
		SELECT id, name, category, price, is_available, sort_order
		FROM modifiers
		WHERE is_available
		ORDER BY category, sort_order, name`)
}

func ModifiersByIDs(ctx context.Context, ids []int64) ([]models.Modifier, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return queryModifiers(ctx, `
		SELECT id, name, category, price, is_available, sort_order
		FROM modifiers
		WHERE id = ANY($1)
		ORDER BY category, name`,
		ids)
}

func queryModifiers(ctx context.Context, sql string, args ...any) ([]models.Modifier, error) {
	rows, err := db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mods []models.Modifier
	for rows.Next() {
		var m models.Modifier
		if err := rows.Scan(&m.ID, &m.Name, &m.Category, &m.Price, &m.IsAvailable, &m.SortOrder); err != nil {
			return nil, err
		}
		mods = append(mods, m)
	}
	return mods, rows.Err()
}

// AddModifier creates an add-on; an existing (name, category) pair keeps
// its row and gets its price and sort order refreshed.
func AddModifier(ctx context.Context, name, category string, price int64, sortOrder int) (int64, error) {
	if name == "" || category == "" {
		return 0, fmt.Errorf("name and category are required")
	}

	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO modifiers (name, category, price, sort_order)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name, category) DO UPDATE SET price = $3, sort_order = $4
		RETURNING id`,
		name, category, price, sortOrder,
	).Scan(&id)
	return id, err
}

// SetModifierAvailability hides or restores a modifier without losing its
// order history references.
func SetModifierAvailability(ctx context.Context, id int64, available bool) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE modifiers SET is_available = $2 WHERE id = $1`,
		id, available,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("modifier %d not found", id)
	}
	return nil
}

// AddMenuItemSize defines (or re-prices) one serving size of a menu item.
func AddMenuItemSize(ctx context.Context, menuItemID int64, size, sizeName string, priceDiff int64) error {
	if size == "" || sizeName == "" {
		return fmt.Errorf("size and size_name are required")
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO menu_item_sizes (menu_item_id, size, size_name, price_diff)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (menu_item_id, size) DO UPDATE SET size_name = $3, price_diff = $4`,
		menuItemID, size, sizeName, priceDiff,
	)
	return classifyPgError(err)
}

// AttachModifier makes a modifier selectable for a menu item. Attaching
// an already-attached pair is a no-op.
func AttachModifier(ctx context.Context, menuItemID, modifierID int64) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO menu_item_modifiers (menu_item_id, modifier_id)
		VALUES ($1, $2)
		ON CONFLICT (menu_item_id, modifier_id) DO NOTHING`,
		menuItemID, modifierID,
	)
	return classifyPgError(err)
}

// DetachModifier removes the eligibility; absent pair is a no-op.
func DetachModifier(ctx context.Context, menuItemID, modifierID int64) error {
	_, err := db.Pool.Exec(ctx, `
		DELETE FROM menu_item_modifiers
		WHERE menu_item_id = $1 AND modifier_id = $2`,
		menuItemID, modifierID,
	)
	return err
}
