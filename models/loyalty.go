package models

import "time"

// Loyalty is the per-user ledger row: current point/stamp balance plus
// aggregate order stats.
type Loyalty struct {
	UserID      int64
	Points      int64
	Stamps      int
	TotalOrders int
	TotalSpent  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PointsHistoryEntry is one immutable row of points_history. Amount is
// positive for accruals and refunds, negative for redemptions.
type PointsHistoryEntry struct {
	ID          int64
	UserID      int64
	Amount      int64
	Operation   string
	OrderID     *int64
	Description string
	CreatedAt   time.Time
}

// Values of the points_history.operation column. Stored as TEXT so new
// operations can be added without a schema change.
const (
	OpAccrual    = "accrual"
	OpRedemption = "redemption"
	OpRefund     = "refund"
)

// Favorite links a user to a menu item. At most one row per
// (user_id, menu_item_id) pair.
type Favorite struct {
	ID         int64
	UserID     int64
	MenuItemID int64
	CreatedAt  time.Time
}
