package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"coffee-loyalty/db"
	"coffee-loyalty/logger"
)

type menuFile struct {
	Items []struct {
		Name  string `json:"name"`
		Price int64  `json:"price"`
	} `json:"items"`
}

type modifiersFile struct {
	Modifiers []struct {
		Name     string `json:"name"`
		Category string `json:"category"`
		Price    int64  `json:"price"`
	} `json:"modifiers"`
	Sizes struct {
		Default []struct {
			Size      string `json:"size"`
			SizeName  string `json:"size_name"`
			PriceDiff int64  `json:"price_diff"`
		} `json:"default"`
	} `json:"sizes"`
}

func loadMenuFile(path string) (*menuFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f menuFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

func loadModifiersFile(path string) (*modifiersFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f modifiersFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

// SeedMenu loads menu items from a JSON fixture. Items are inserted only
// when the table is empty, so re-running never duplicates the menu.
// Returns the number of rows inserted.
func SeedMenu(ctx context.Context, path string) (int, error) {
	f, err := loadMenuFile(path)
	if err != nil {
		return 0, err
	}

	var count int
	if err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM menu_items`).Scan(&count); err != nil {
		return 0, err
	}
	if count > 0 {
		logger.Log.Debug("menu_already_seeded")
		return 0, nil
	}

	inserted := 0
	for _, item := range f.Items {
		if _, err := db.Pool.Exec(ctx, `
			INSERT INTO menu_items (name, price) VALUES ($1, $2)`,
			item.Name, item.Price,
		); err != nil {
			return inserted, err
		}
		inserted++
	}

	logger.Log.WithFields(logrus.Fields{"inserted": inserted}).Info("menu_seeded")
	return inserted, nil
}

// SeedModifiers loads modifiers and default sizes from a JSON fixture,
// links every modifier to every menu item, and applies the default sizes
// to every item. Every statement is an ON CONFLICT DO NOTHING upsert, so
// the whole pass is idempotent.
func SeedModifiers(ctx context.Context, path string) error {
	f, err := loadModifiersFile(path)
	if err != nil {
		return err
	}

	for _, mod := range f.Modifiers {
		if _, err := db.Pool.Exec(ctx, `
			INSERT INTO modifiers (name, category, price)
			VALUES ($1, $2, $3)
			ON CONFLICT (name, category) DO NOTHING`,
			mod.Name, mod.Category, mod.Price,
		); err != nil {
			return err
		}
	}

	if _, err := db.Pool.Exec(ctx, `
		INSERT INTO menu_item_modifiers (menu_item_id, modifier_id)
		SELECT mi.id, m.id FROM menu_items mi CROSS JOIN modifiers m
		ON CONFLICT (menu_item_id, modifier_id) DO NOTHING`,
	); err != nil {
		return err
	}

	for _, size := range f.Sizes.Default {
		if _, err := db.Pool.Exec(ctx, `
			INSERT INTO menu_item_sizes (menu_item_id, size, size_name, price_diff)
			SELECT id, $1, $2, $3 FROM menu_items
			ON CONFLICT (menu_item_id, size) DO NOTHING`,
			size.Size, size.SizeName, size.PriceDiff,
		); err != nil {
			return err
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"modifiers": len(f.Modifiers), "sizes": len(f.Sizes.Default),
	}).Info("modifiers_seeded")
	return nil
}
