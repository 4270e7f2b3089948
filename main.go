package main

import (
	"context"
	"fmt"
	"os"

	"coffee-loyalty/config"
	"coffee-loyalty/db"
	"coffee-loyalty/logger"
	"coffee-loyalty/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	if err := db.Init(cfg.DB); err != nil {
		fmt.Fprintln(os.Stderr, "db:", err)
		os.Exit(1)
	}
	defer db.Close()

	services.SetLoyaltyRules(
		cfg.Loyalty.PointsPer100,
		cfg.Loyalty.MaxRedeemPercent,
		cfg.Loyalty.StampsForFreeDrink,
	)

	ctx := context.Background()
	switch os.Args[1] {
	case "migrate":
		if err := applyMigrations(ctx, true); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
	case "seed":
		runSeed(ctx)
	case "verify":
		runVerify(ctx)
	default:
		usage()
		os.Exit(2)
	}
}

func runSeed(ctx context.Context) {
	inserted, err := services.SeedMenu(ctx, "data/menu.json")
	if err != nil {
		fmt.Fprintln(os.Stderr, "seed menu:", err)
		os.Exit(1)
	}
	fmt.Println("Menu items inserted:", inserted)

	if err := services.SeedModifiers(ctx, "data/modifiers.json"); err != nil {
		fmt.Fprintln(os.Stderr, "seed modifiers:", err)
		os.Exit(1)
	}
	fmt.Println("Modifiers and sizes seeded.")
}

func runVerify(ctx context.Context) {
	mismatches, err := services.VerifyLedger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "verify:", err)
		os.Exit(1)
	}
	if len(mismatches) == 0 {
		fmt.Println("Ledger consistent: points match history for all users.")
		return
	}
	for _, m := range mismatches {
		fmt.Printf("user %d: points=%d history_sum=%d\n", m.UserID, m.Points, m.HistorySum)
	}
	os.Exit(1)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: coffee-loyalty <command>

commands:
  migrate   apply pending migrations
  seed      load menu and modifiers from data/*.json
  verify    check that every ledger balance matches its history`)
}
