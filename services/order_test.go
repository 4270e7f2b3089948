package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"coffee-loyalty/models"
)

func TestValidStatusTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusReady, false},
		{OrderStatusConfirmed, OrderStatusPreparing, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusCompleted, false},
		{OrderStatusPreparing, OrderStatusReady, true},
		{OrderStatusPreparing, OrderStatusCancelled, false},
		{OrderStatusReady, OrderStatusCompleted, true},
		{OrderStatusReady, OrderStatusPreparing, false},
		{OrderStatusCompleted, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusConfirmed, false},
		{"", OrderStatusPending, false},
		{OrderStatusPending, "", false},
	}
	for _, tt := range tests {
		got := ValidStatusTransition(tt.from, tt.to)
		if got != tt.want {
			t.Errorf("ValidStatusTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestOrderTotal(t *testing.T) {
	items := []models.OrderItem{
		{Name: "Latte", Price: 240, Quantity: 2},
		{Name: "Espresso", Price: 150, Quantity: 1},
	}
	if got := OrderTotal(items); got != 630 {
		t.Errorf("OrderTotal = %d, want 630", got)
	}
	if got := OrderTotal(nil); got != 0 {
		t.Errorf("OrderTotal(nil) = %d, want 0", got)
	}
}

func TestOrderLifecycle(t *testing.T) {
	skipWithoutDB(t)
	ctx := context.Background()
	userID := time.Now().UnixNano()

	items := []models.OrderItem{{MenuItemID: 1, Name: "Latte", Price: 240, Quantity: 2}}
	o, err := CreateOrder(ctx, userID, "Order Tester", items, "10:15")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if o.Status != OrderStatusConfirmed {
		t.Errorf("new order status = %s, want confirmed", o.Status)
	}
	if o.Total != 480 {
		t.Errorf("total = %d, want 480", o.Total)
	}

	got, err := GetOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Name != "Latte" {
		t.Errorf("round-tripped items = %+v", got.Items)
	}

	if _, err := UpdateOrderStatus(ctx, o.ID, OrderStatusCompleted); err == nil {
		t.Error("confirmed -> completed should be rejected")
	}

	upd, err := UpdateOrderStatus(ctx, o.ID, OrderStatusPreparing)
	if err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	if upd.Status != OrderStatusPreparing {
		t.Errorf("status = %s, want preparing", upd.Status)
	}

	orders, total, err := UserOrders(ctx, userID, 5, 0)
	if err != nil {
		t.Fatalf("UserOrders: %v", err)
	}
	if total != 1 || len(orders) != 1 {
		t.Errorf("UserOrders = %d rows / total %d, want 1 / 1", len(orders), total)
	}
}

func TestCancelOrderByClient(t *testing.T) {
	skipWithoutDB(t)
	ctx := context.Background()
	userID := time.Now().UnixNano()

	o, err := CreateOrder(ctx, userID, "Cancel Tester", []models.OrderItem{
		{MenuItemID: 1, Name: "Espresso", Price: 150, Quantity: 1},
	}, "09:00")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	// someone else's order looks like a missing order
	if err := CancelOrderByClient(ctx, o.ID, userID+1); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("cancel foreign order = %v, want ErrOrderNotFound", err)
	}

	if err := CancelOrderByClient(ctx, o.ID, userID); err != nil {
		t.Fatalf("CancelOrderByClient: %v", err)
	}
	got, _ := GetOrder(ctx, o.ID)
	if got.Status != OrderStatusCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}

	if err := CancelOrderByClient(ctx, o.ID, userID); !errors.Is(err, ErrOrderNotCancellable) {
		t.Errorf("cancel cancelled order = %v, want ErrOrderNotCancellable", err)
	}

	if err := CancelOrderByClient(ctx, -1, userID); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("cancel missing order = %v, want ErrOrderNotFound", err)
	}
}
