package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"coffee-loyalty/db"
	"coffee-loyalty/logger"
	"coffee-loyalty/models"
)

// Loyalty program defaults; overridden from config via SetLoyaltyRules.
const (
	defaultPointsPer100       = 5  // 5 points per 100 spent
	defaultMaxRedeemPercent   = 30 // at most 30% of an order paid with points
	defaultStampsForFreeDrink = 6  // 6 stamps = free drink
)

var (
	pointsPer100       = defaultPointsPer100
	maxRedeemPercent   = defaultMaxRedeemPercent
	stampsForFreeDrink = defaultStampsForFreeDrink
)

func SetLoyaltyRules(per100, maxRedeemPct, stampsFree int) {
	if per100 > 0 {
		pointsPer100 = per100
	}
	if maxRedeemPct > 0 {
		maxRedeemPercent = maxRedeemPct
	}
	if stampsFree > 0 {
		stampsForFreeDrink = stampsFree
	}
}

// PointsForOrderTotal returns the points earned for a paid order:
// orderTotal/100 (rounded down) times the per-100 rate.
func PointsForOrderTotal(orderTotal int64) int64 {
	if orderTotal <= 0 {
		return 0
	}
	return orderTotal / 100 * int64(pointsPer100)
}

// CalculateMaxRedeem returns how many points the user may spend on an
// order: min(userPoints, orderTotal * maxRedeemPercent / 100).
func CalculateMaxRedeem(orderTotal, userPoints int64) int64 {
	maxByPercent := orderTotal * int64(maxRedeemPercent) / 100
	if userPoints < maxByPercent {
		return userPoints
	}
	return maxByPercent
}

// GetOrCreateLoyalty returns the user's ledger row, creating a zero row
// on first touch.
func GetOrCreateLoyalty(ctx context.Context, userID int64) (*models.Loyalty, error) {
	tag, err := db.Pool.Exec(ctx, `
		INSERT INTO loyalty (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() > 0 {
		logger.Log.WithFields(logrus.Fields{"user_id": userID}).Debug("loyalty_created")
	}

	var l models.Loyalty
	err = db.Pool.QueryRow(ctx, `
		SELECT user_id, points, stamps, total_orders, total_spent, created_at, updated_at
		FROM loyalty WHERE user_id = $1`,
		userID,
	).Scan(&l.UserID, &l.Points, &l.Stamps, &l.TotalOrders, &l.TotalSpent, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// AccruePoints credits points for a paid order and bumps the order/spend
// counters. The ledger update and the history row commit together; the
// ledger row is locked so concurrent mutations for one user serialize.
// Returns the points credited (0 when the order is below 100).
func AccruePoints(ctx context.Context, userID, orderTotal, orderID int64) (int64, error) {
	if orderTotal <= 0 {
		return 0, ErrInvalidAmount
	}
	earned := PointsForOrderTotal(orderTotal)
	if earned <= 0 {
		return 0, nil
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO loyalty (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`,
		userID,
	); err != nil {
		return 0, err
	}

	var points int64
	if err := tx.QueryRow(ctx, `
		SELECT points FROM loyalty WHERE user_id = $1 FOR UPDATE`,
		userID,
	).Scan(&points); err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE loyalty SET
			points = points + $2,
			total_orders = total_orders + 1,
			total_spent = total_spent + $3,
			updated_at = now()
		WHERE user_id = $1`,
		userID, earned, orderTotal,
	); err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO points_history (user_id, amount, operation, order_id, description)
		VALUES ($1, $2, $3, $4, $5)`,
		userID, earned, models.OpAccrual, nullableID(orderID), accrualNote(orderID),
	); err != nil {
		return 0, classifyPgError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id": userID, "points": earned, "order_id": orderID,
	}).Debug("points_accrued")
	return earned, nil
}

// RedeemPoints spends points on an order. Fails with
// ErrInsufficientPoints before writing anything if the balance would go
// negative; otherwise the decrement and the negative history row commit
// together.
func RedeemPoints(ctx context.Context, userID, amount, orderID int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var points int64
	err = tx.QueryRow(ctx, `
		SELECT points FROM loyalty WHERE user_id = $1 FOR UPDATE`,
		userID,
	).Scan(&points)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: user %d has no loyalty account", ErrInsufficientPoints, userID)
	}
	if err != nil {
		return err
	}
	if points < amount {
		logger.Log.WithFields(logrus.Fields{
			"user_id": userID, "requested": amount, "available": points,
		}).Warn("redeem_insufficient_points")
		return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientPoints, amount, points)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE loyalty SET points = points - $2, updated_at = now()
		WHERE user_id = $1`,
		userID, amount,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO points_history (user_id, amount, operation, order_id, description)
		VALUES ($1, $2, $3, $4, $5)`,
		userID, -amount, models.OpRedemption, nullableID(orderID), redemptionNote(orderID),
	); err != nil {
		return classifyPgError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id": userID, "amount": amount, "order_id": orderID,
	}).Debug("points_redeemed")
	return nil
}

// RefundPoints returns the points redeemed against a cancelled order.
// The amount is taken from the redemption logged for that order; if the
// order had no redemption, nothing is written and 0 is returned.
func RefundPoints(ctx context.Context, userID, orderID int64) (int64, error) {
	var redeemed int64
	err := db.Pool.QueryRow(ctx, `
		SELECT amount FROM points_history
		WHERE user_id = $1 AND order_id = $2 AND operation = $3`,
		userID, orderID, models.OpRedemption,
	).Scan(&redeemed)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	// Redemptions are stored negative.
	amount := -redeemed
	if amount <= 0 {
		return 0, nil
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var points int64
	if err := tx.QueryRow(ctx, `
		SELECT points FROM loyalty WHERE user_id = $1 FOR UPDATE`,
		userID,
	).Scan(&points); err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE loyalty SET points = points + $2, updated_at = now()
		WHERE user_id = $1`,
		userID, amount,
	); err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO points_history (user_id, amount, operation, order_id, description)
		VALUES ($1, $2, $3, $4, $5)`,
		userID, amount, models.OpRefund, orderID,
		fmt.Sprintf("Refund for cancelled order #%d", orderID),
	); err != nil {
		return 0, classifyPgError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id": userID, "amount": amount, "order_id": orderID,
	}).Debug("points_refunded")
	return amount, nil
}

// IncrementStamps adds one stamp for a completed order. Stamps are not
// reset here; the free drink is claimed via UseFreeDrink. Returns the new
// stamp count and whether the free-drink threshold is reached.
func IncrementStamps(ctx context.Context, userID int64) (int, bool, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO loyalty (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING`,
		userID,
	); err != nil {
		return 0, false, err
	}

	var stamps int
	if err := tx.QueryRow(ctx, `
		SELECT stamps FROM loyalty WHERE user_id = $1 FOR UPDATE`,
		userID,
	).Scan(&stamps); err != nil {
		return 0, false, err
	}

	stamps++
	if _, err := tx.Exec(ctx, `
		UPDATE loyalty SET stamps = $2, updated_at = now()
		WHERE user_id = $1`,
		userID, stamps,
	); err != nil {
		return 0, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, false, err
	}

	earnedFreeDrink := stamps >= stampsForFreeDrink
	logger.Log.WithFields(logrus.Fields{
		"user_id": userID, "stamps": stamps, "free_drink": earnedFreeDrink,
	}).Debug("stamps_updated")
	return stamps, earnedFreeDrink, nil
}

// UseFreeDrink claims the free drink, resetting stamps to zero. Fails
// with ErrInsufficientStamps below the threshold.
func UseFreeDrink(ctx context.Context, userID int64) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var stamps int
	err = tx.QueryRow(ctx, `
		SELECT stamps FROM loyalty WHERE user_id = $1 FOR UPDATE`,
		userID,
	).Scan(&stamps)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: user %d has no loyalty account", ErrInsufficientStamps, userID)
	}
	if err != nil {
		return err
	}
	if stamps < stampsForFreeDrink {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientStamps, stamps, stampsForFreeDrink)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE loyalty SET stamps = 0, updated_at = now()
		WHERE user_id = $1`,
		userID,
	); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id": userID, "stamps_before": stamps,
	}).Debug("free_drink_used")
	return nil
}

// GetPointsHistory returns the user's balance-changing events, newest
// first.
func GetPointsHistory(ctx context.Context, userID int64, limit int) ([]models.PointsHistoryEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, amount, operation, order_id, COALESCE(description, ''), created_at
		FROM points_history
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.PointsHistoryEntry
	for rows.Next() {
		var e models.PointsHistoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Operation, &e.OrderID, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LedgerMismatch is one user whose ledger balance disagrees with the sum
// of their history amounts.
type LedgerMismatch struct {
	UserID     int64
	Points     int64
	HistorySum int64
}

// VerifyLedger checks the core consistency property: for every user,
// loyalty.points equals SUM(points_history.amount).
func VerifyLedger(ctx context.Context) ([]LedgerMismatch, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT l.user_id, l.points, COALESCE(SUM(h.amount), 0)
		FROM loyalty l
		LEFT JOIN points_history h ON h.user_id = l.user_id
		GROUP BY l.user_id, l.points
		HAVING l.points <> COALESCE(SUM(h.amount), 0)
		ORDER BY l.user_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mismatches []LedgerMismatch
	for rows.Next() {
		var m LedgerMismatch
		if err := rows.Scan(&m.UserID, &m.Points, &m.HistorySum); err != nil {
			return nil, err
		}
		mismatches = append(mismatches, m)
	}
	return mismatches, rows.Err()
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func accrualNote(orderID int64) string {
	if orderID == 0 {
		return "Accrual"
	}
	return fmt.Sprintf("Accrual for order #%d", orderID)
}

func redemptionNote(orderID int64) string {
	if orderID == 0 {
		return "Redemption"
	}
	return fmt.Sprintf("Redemption for order #%d", orderID)
}
