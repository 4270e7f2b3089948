package services

import (
	"context"
	"testing"
)

func TestDailyStatsEmptyDay(t *testing.T) {
	skipWithoutDB(t)
	ctx := context.Background()

	// nobody ordered coffee in 1999
	s, err := GetDailyStats(ctx, "1999-01-01")
	if err != nil {
		t.Fatalf("GetDailyStats: %v", err)
	}
	if s.TotalOrders != 0 || s.TotalRevenue != 0 || s.AvgOrderValue != 0 {
		t.Errorf("empty day stats = %+v, want zeros", s)
	}
	if len(s.PopularItems) != 0 {
		t.Errorf("popular items on empty day = %+v", s.PopularItems)
	}
}

func TestWeeklyStatsEmptyWeek(t *testing.T) {
	skipWithoutDB(t)
	ctx := context.Background()

	s, err := GetWeeklyStats(ctx, "1999-01-01")
	if err != nil {
		t.Fatalf("GetWeeklyStats: %v", err)
	}
	if s.TotalOrders != 0 || s.TotalRevenue != 0 {
		t.Errorf("empty week stats = %+v, want zeros", s)
	}
	if s.EndDate != "1999-01-07" {
		t.Errorf("end date = %s, want 1999-01-07", s.EndDate)
	}
	if len(s.DailyOrders) != 0 {
		t.Errorf("daily orders on empty week = %v", s.DailyOrders)
	}
}
