package ledger

import (
	"strings"
	"time"

	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/money"
)

// NewSubscription builds an active subscription template.
func NewSubscription(name string, amount money.Amount, cycle models.Cycle, payerID string, members []string, firstDue time.Time) (*models.Subscription, error) {
	sub := &models.Subscription{
		Name:        strings.TrimSpace(name),
		Amount:      amount,
		Cycle:       cycle,
		PayerID:     payerID,
		Members:     append([]string(nil), members...),
		NextDueDate: firstDue,
		AnchorDate:  firstDue,
		Active:      true,
	}
	if err := ValidateSubscription(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// ValidateSubscription checks the template invariants.
func ValidateSubscription(sub *models.Subscription) error {
	if sub.Name == "" {
		return invalid(ErrMissingField, "name", "required")
	}
	if sub.Amount <= 0 {
		return invalid(ErrInvalidAmount, "amount", "must be positive, got %s", sub.Amount)
	}
	if _, err := models.ParseCycle(string(sub.Cycle)); err != nil {
		return invalid(ErrMissingField, "cycle", "%v", err)
	}
	if sub.PayerID == "" {
		return invalid(ErrMissingField, "payer_id", "required")
	}
	if len(sub.Members) == 0 {
		return invalid(ErrMissingField, "members", "at least one member is required")
	}
	seen := make(map[string]bool, len(sub.Members))
	for _, m := range sub.Members {
		if m == "" || seen[m] {
			return invalid(ErrMissingField, "members", "member ids must be non-empty and unique")
		}
		seen[m] = true
	}
	if sub.NextDueDate.IsZero() {
		return invalid(ErrMissingField, "next_due_date", "required")
	}
	return nil
}

// PeriodPayment builds the recurring payment for the subscription's
// current period: the payer covers the full amount and members share it
// equally.
func PeriodPayment(sub models.Subscription) (*models.Expense, error) {
	if !sub.Active {
		return nil, invalid(ErrInactive, "active", "subscription %s is paused", sub.ID)
	}
	splits, err := EqualSplits(sub.Amount, sub.Members)
	if err != nil {
		return nil, err
	}
	return NewRecurringPayment(sub, sub.NextDueDate, PaidBy(sub.PayerID, sub.Amount), splits)
}

// CheckPeriodFree returns ErrDuplicatePeriod when an existing recurring
// payment of the same subscription overlaps period.
func CheckPeriodFree(existing []*models.Expense, subscriptionID string, period models.Period) error {
	for _, e := range existing {
		if e.SubscriptionID != subscriptionID || e.Period == nil {
			continue
		}
		if e.Period.Overlaps(period) {
			return invalid(ErrDuplicatePeriod, "period",
				"%s to %s already covered by expense %s",
				period.Start.Format(time.DateOnly), period.End.Format(time.DateOnly), e.ID)
		}
	}
	return nil
}
