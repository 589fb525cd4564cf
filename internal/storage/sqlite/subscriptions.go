package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/swisscoin/internal/ledger"
	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/money"
	"github.com/mmynk/swisscoin/internal/storage"
)

const subscriptionColumns = `id, name, amount, cycle, payer_id, next_due_date, anchor_date, active, created_at`

// CreateSubscription persists a new subscription template and its members.
func (s *SQLiteStore) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.CreatedAt == 0 {
		sub.CreatedAt = time.Now().Unix()
	}
	if sub.AnchorDate.IsZero() {
		sub.AnchorDate = sub.NextDueDate
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO subscriptions (`+subscriptionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Name, int64(sub.Amount), string(sub.Cycle), sub.PayerID,
		sub.NextDueDate.Unix(), sub.AnchorDate.Unix(), sub.Active, sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert subscription: %w", err)
	}
	if err := insertSubscriptionMembers(ctx, tx, sub.ID, sub.Members); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSubscription retrieves a subscription template by ID.
func (s *SQLiteStore) GetSubscription(ctx context.Context, subscriptionID string) (*models.Subscription, error) {
	subs, err := querySubscriptions(ctx, s.db, "id = ?", subscriptionID)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, fmt.Errorf("%w: subscription %s", storage.ErrNotFound, subscriptionID)
	}
	return subs[0], nil
}

// SetSubscriptionActive pauses or resumes a subscription. Only the active
// flag is written, so a charge committed concurrently keeps its due date.
func (s *SQLiteStore) SetSubscriptionActive(ctx context.Context, subscriptionID string, active bool) (*models.Subscription, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "UPDATE subscriptions SET active = ? WHERE id = ?", active, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: subscription %s", storage.ErrNotFound, subscriptionID)
	}
	subs, err := querySubscriptions(ctx, tx, "id = ?", subscriptionID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return subs[0], nil
}

// ListDueSubscriptions returns active subscriptions due at or before now,
// oldest due date first.
func (s *SQLiteStore) ListDueSubscriptions(ctx context.Context, now time.Time) ([]*models.Subscription, error) {
	return querySubscriptions(ctx, s.db, "active = 1 AND next_due_date <= ?", now.Unix())
}

// CreateRecurringPayment stores the period's payment and moves the
// subscription's due date to nextDue atomically. The subscription must
// still be active and due at the payment's period start.
func (s *SQLiteStore) CreateRecurringPayment(ctx context.Context, payment *models.Expense, nextDue time.Time) error {
	if payment.Period == nil || payment.SubscriptionID == "" {
		return fmt.Errorf("recurring payment must carry a subscription and period")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := queryExpenses(ctx, tx, "subscription_id = ?", payment.SubscriptionID)
	if err != nil {
		return err
	}
	if err := ledger.CheckPeriodFree(existing, payment.SubscriptionID, *payment.Period); err != nil {
		return err
	}

	if err := insertExpense(ctx, tx, payment); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: subscription %s period %s", ledger.ErrDuplicatePeriod,
				payment.SubscriptionID, payment.Period.Start.Format(time.DateOnly))
		}
		return err
	}
	if err := advanceSubscription(ctx, tx, payment.SubscriptionID, payment.Period.Start, nextDue); err != nil {
		return err
	}
	if err := bumpRevision(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// advanceSubscription moves next_due_date from due to nextDue, provided the
// row still holds due and is active.
func advanceSubscription(ctx context.Context, tx *sql.Tx, subscriptionID string, due, nextDue time.Time) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE subscriptions SET next_due_date = ? WHERE id = ? AND next_due_date = ? AND active = 1",
		nextDue.Unix(), subscriptionID, due.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to advance subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	subs, err := querySubscriptions(ctx, tx, "id = ?", subscriptionID)
	if err != nil {
		return err
	}
	var current *models.Subscription
	if len(subs) > 0 {
		current = subs[0]
	}
	return storage.AdvanceConflict(current, subscriptionID, due)
}

func insertSubscriptionMembers(ctx context.Context, tx *sql.Tx, subscriptionID string, members []string) error {
	for i, partyID := range members {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO subscription_members (subscription_id, party_id, position) VALUES (?, ?, ?)",
			subscriptionID, partyID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert subscription member: %w", err)
		}
	}
	return nil
}

func querySubscriptions(ctx context.Context, q queryer, where string, args ...interface{}) ([]*models.Subscription, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE `+where+` ORDER BY next_due_date, id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}

	var subs []*models.Subscription
	byID := make(map[string]*models.Subscription)
	for rows.Next() {
		sub := &models.Subscription{}
		var amount, nextDue, anchor int64
		var cycle string
		if err := rows.Scan(&sub.ID, &sub.Name, &amount, &cycle, &sub.PayerID, &nextDue, &anchor, &sub.Active, &sub.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		sub.Amount = money.Amount(amount)
		sub.Cycle = models.Cycle(cycle)
		sub.NextDueDate = time.Unix(nextDue, 0).UTC()
		sub.AnchorDate = time.Unix(anchor, 0).UTC()
		subs = append(subs, sub)
		byID[sub.ID] = sub
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil, nil
	}

	memberRows, err := q.QueryContext(ctx,
		`SELECT subscription_id, party_id FROM subscription_members
		 WHERE subscription_id IN (SELECT id FROM subscriptions WHERE `+where+`)
		 ORDER BY subscription_id, position`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscription members: %w", err)
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var subID, partyID string
		if err := memberRows.Scan(&subID, &partyID); err != nil {
			return nil, fmt.Errorf("failed to scan subscription member: %w", err)
		}
		if sub, ok := byID[subID]; ok {
			sub.Members = append(sub.Members, partyID)
		}
	}
	if err := memberRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscription members: %w", err)
	}
	return subs, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
