package services

import (
	"context"
	"os"
	"testing"
	"time"

	"coffee-loyalty/config"
	"coffee-loyalty/db"
)

// TestMain wires the pool for integration tests. Without a reachable
// (and migrated) database, db.Pool stays nil and those tests skip.
func TestMain(m *testing.M) {
	if cfg, err := config.Load(); err == nil {
		if err := db.Init(cfg.DB); err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := db.Pool.Ping(ctx); err != nil {
				db.Close()
				db.Pool = nil
			}
			cancel()
		}
	}

	code := m.Run()
	db.Close()
	os.Exit(code)
}

func skipWithoutDB(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if db.Pool == nil {
		t.Skip("skipping integration test: no DB pool")
	}
}
