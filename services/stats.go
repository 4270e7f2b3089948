package services

import (
	"context"

	"coffee-loyalty/db"
	"coffee-loyalty/models"
)

// GetDailyStats aggregates the day's orders. Revenue counts completed
// orders only. date is "YYYY-MM-DD".
func GetDailyStats(ctx context.Context, date string) (*models.DailyStats, error) {
	s := models.DailyStats{Date: date}
	err := db.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*)::int,
			COUNT(*) FILTER (WHERE status = $2)::int,
			COUNT(*) FILTER (WHERE status = $3)::int,
			COALESCE(SUM(total) FILTER (WHERE status = $2), 0)::bigint
		FROM orders
		WHERE created_at::date = $1::date`,
		date, OrderStatusCompleted, OrderStatusCancelled,
	).Scan(&s.TotalOrders, &s.CompletedOrders, &s.CancelledOrders, &s.TotalRevenue)
	if err != nil {
		return nil, err
	}
	if s.CompletedOrders > 0 {
		s.AvgOrderValue = s.TotalRevenue / int64(s.CompletedOrders)
	}

	s.PopularItems, err = popularItems(ctx, date)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// popularItems unrolls the JSONB line items of the day's orders and
// counts quantities per item name, top 5.
func popularItems(ctx context.Context, date string) ([]models.ItemCount, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT item->>'name', SUM((item->>'quantity')::int)::int AS qty
		FROM orders, jsonb_array_elements(items) AS item
		WHERE created_at::date = $1::date AND status = $2
		GROUP BY 1
		ORDER BY qty DESC, 1
		LIMIT 5`,
		date, OrderStatusCompleted,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.ItemCount
	for rows.Next() {
		var ic models.ItemCount
		if err := rows.Scan(&ic.Name, &ic.Count); err != nil {
			return nil, err
		}
		items = append(items, ic)
	}
	return items, rows.Err()
}

// GetWeeklyStats aggregates completed orders for the 7 days starting at
// startDate ("YYYY-MM-DD").
func GetWeeklyStats(ctx context.Context, startDate string) (*models.WeeklyStats, error) {
	s := models.WeeklyStats{
		StartDate:   startDate,
		DailyOrders: make(map[string]int),
	}

	err := db.Pool.QueryRow(ctx, `
		SELECT
			($1::date + 6)::text,
			COUNT(*)::int,
			COALESCE(SUM(total), 0)::bigint
		FROM orders
		WHERE status = $2
		  AND created_at::date >= $1::date
		  AND created_at::date < $1::date + 7`,
		startDate, OrderStatusCompleted,
	).Scan(&s.EndDate, &s.TotalOrders, &s.TotalRevenue)
	if err != nil {
		return nil, err
	}
	if s.TotalOrders > 0 {
		s.AvgOrderValue = s.TotalRevenue / int64(s.TotalOrders)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT created_at::date::text, COUNT(*)::int
		FROM orders
		WHERE status = $2
		  AND created_at::date >= $1::date
		  AND created_at::date < $1::date + 7
		GROUP BY 1`,
		startDate, OrderStatusCompleted,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var day string
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		s.DailyOrders[day] = count
	}
	return &s, rows.Err()
}
