// Package billing turns due subscriptions into recurring payments.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/swisscoin/internal/ledger"
	"github.com/mmynk/swisscoin/internal/metrics"
	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/storage"
)

// Store is the part of storage.Store billing needs.
type Store interface {
	GetSubscription(ctx context.Context, subscriptionID string) (*models.Subscription, error)
	ListDueSubscriptions(ctx context.Context, now time.Time) ([]*models.Subscription, error)
	CreateRecurringPayment(ctx context.Context, payment *models.Expense, nextDue time.Time) error
}

var _ Store = (storage.Store)(nil)

type Biller struct {
	store    Store
	interval time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
}

// New returns a Biller that checks for due subscriptions every interval.
func New(store Store, interval time.Duration, m *metrics.Metrics) *Biller {
	return &Biller{store: store, interval: interval, metrics: m, now: time.Now}
}

// Charge records the payment for the subscription's current period and
// advances its due date. It fails with ledger.ErrInactive for a paused
// subscription and ledger.ErrDuplicatePeriod if the period was already
// charged. A pause committed between the read and the write fails it with
// storage.ErrConflict and nothing is recorded. A subscription that is not
// yet due at now is charged anyway; callers that only want due periods use
// ChargeDue.
func (b *Biller) Charge(ctx context.Context, subscriptionID string, now time.Time) (*models.Expense, error) {
	sub, err := b.store.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	payment, err := b.charge(ctx, *sub, now)
	b.metrics.Charge(outcome(err))
	return payment, err
}

func (b *Biller) charge(ctx context.Context, sub models.Subscription, now time.Time) (*models.Expense, error) {
	payment, err := ledger.PeriodPayment(sub)
	if err != nil {
		return nil, err
	}
	payment.CreatedBy = sub.PayerID
	payment.CreatedAt = now.Unix()

	next := sub.Advance()
	if err := b.store.CreateRecurringPayment(ctx, payment, next.NextDueDate); err != nil {
		return nil, err
	}

	slog.Info("Subscription charged",
		"subscription_id", sub.ID,
		"period_start", payment.Period.Start.Format(time.DateOnly),
		"period_end", payment.Period.End.Format(time.DateOnly),
		"amount", payment.Amount.String(),
		"next_due", next.NextDueDate.Format(time.DateOnly),
	)
	return payment, nil
}

// ChargeDue charges every subscription due at now, catching up one period
// at a time until each is current. It returns how many payments were made.
func (b *Biller) ChargeDue(ctx context.Context, now time.Time) (int, error) {
	charged := 0
	for {
		due, err := b.store.ListDueSubscriptions(ctx, now)
		if err != nil {
			return charged, fmt.Errorf("failed to list due subscriptions: %w", err)
		}
		if len(due) == 0 {
			return charged, nil
		}

		progressed := false
		for _, sub := range due {
			_, err := b.charge(ctx, *sub, now)
			b.metrics.Charge(outcome(err))
			if err != nil {
				slog.Error("Failed to charge subscription", "subscription_id", sub.ID, "error", err)
				continue
			}
			charged++
			progressed = true
		}
		if !progressed {
			return charged, errors.New("no due subscription could be charged")
		}
	}
}

// Run charges due subscriptions on every tick until ctx is done.
func (b *Biller) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	slog.Info("Billing loop started", "interval", b.interval.String())
	for {
		if n, err := b.ChargeDue(ctx, b.now()); err != nil {
			slog.Warn("Billing run incomplete", "charged", n, "error", err)
		} else if n > 0 {
			slog.Info("Billing run complete", "charged", n)
		}

		select {
		case <-ctx.Done():
			slog.Info("Billing loop stopped")
			return
		case <-ticker.C:
		}
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ledger.ErrDuplicatePeriod):
		return "duplicate_period"
	case errors.Is(err, ledger.ErrInactive):
		return "inactive"
	case errors.Is(err, storage.ErrNotFound):
		return "not_found"
	case errors.Is(err, storage.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
