package models

import "time"

// OrderItem is one line item, stored inside the orders.items JSONB column.
// Size and modifiers are snapshots taken at order time.
type OrderItem struct {
	MenuItemID     int64    `json:"menu_item_id"`
	Name           string   `json:"name"`
	Price          int64    `json:"price"`
	Quantity       int      `json:"quantity"`
	Size           *string  `json:"size,omitempty"`
	SizeName       *string  `json:"size_name,omitempty"`
	ModifierIDs    []int64  `json:"modifier_ids,omitempty"`
	ModifierNames  []string `json:"modifier_names,omitempty"`
	ModifiersPrice int64    `json:"modifiers_price,omitempty"`
}

// Order is a row from the orders table.
type Order struct {
	ID         int64
	UserID     int64
	UserName   string
	Items      []OrderItem
	Total      int64
	PickupTime string
	Status     string
	CreatedAt  time.Time
}

// OrderItemModifier records one modifier chosen for one line item of an
// order. ItemIndex is the position of the line item within the order.
type OrderItemModifier struct {
	ID         int64
	OrderID    int64
	ItemIndex  int
	ModifierID int64
}

type DailyStats struct {
	Date            string
	TotalOrders     int
	CompletedOrders int
	CancelledOrders int
	TotalRevenue    int64
	AvgOrderValue   int64
	PopularItems    []ItemCount
}

type WeeklyStats struct {
	StartDate     string
	EndDate       string
	TotalOrders   int
	TotalRevenue  int64
	AvgOrderValue int64
	DailyOrders   map[string]int // date -> orders count
}

type ItemCount struct {
	Name  string
	Count int
}
