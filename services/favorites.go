package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"coffee-loyalty/db"
	"coffee-loyalty/logger"
	"coffee-loyalty/models"
)

// AddFavorite marks a menu item as the user's favorite. Returns true if
// the row was created, false if the pair already existed (not an error).
func AddFavorite(ctx context.Context, userID, menuItemID int64) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `
		INSERT INTO favorites (user_id, menu_item_id) VALUES ($1, $2)
		ON CONFLICT (user_id, menu_item_id) DO NOTHING`,
		userID, menuItemID,
	)
	if err != nil {
		return false, classifyPgError(err)
	}
	created := tag.RowsAffected() > 0
	if created {
		logger.Log.WithFields(logrus.Fields{
			"user_id": userID, "menu_item_id": menuItemID,
		}).Debug("favorite_added")
	}
	return created, nil
}

// RemoveFavorite deletes the pair if present. Absent pair is not an
// error; returns whether a row was removed.
func RemoveFavorite(ctx context.Context, userID, menuItemID int64) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM favorites WHERE user_id = $1 AND menu_item_id = $2`,
		userID, menuItemID,
	)
	if err != nil {
		return false, err
	}
	removed := tag.RowsAffected() > 0
	if removed {
		logger.Log.WithFields(logrus.Fields{
			"user_id": userID, "menu_item_id": menuItemID,
		}).Debug("favorite_removed")
	}
	return removed, nil
}

// ListFavorites returns the user's favorite menu items (available only),
// most recently favorited first.
func ListFavorites(ctx context.Context, userID int64) ([]models.MenuItem, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT m.id, m.name, m.price, m.available
		FROM favorites f
		JOIN menu_items m ON f.menu_item_id = m.id
		WHERE f.user_id = $1 AND m.available
		ORDER BY f.created_at DESC`,
		userID,
	)
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

func IsFavorite(ctx context.Context, userID, menuItemID int64) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM favorites WHERE user_id = $1 AND menu_item_id = $2
		)`,
		userID, menuItemID,
	).Scan(&exists)
	return exists, err
}

// FavoriteIDs returns the set of favorited menu item ids for quick
// lookups when rendering a menu.
func FavoriteIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT menu_item_id FROM favorites WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}
