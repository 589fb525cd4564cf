package ledger

import (
	"time"

	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/money"
)

// NewExpense builds an expense after checking that amount is positive and
// that both payments and splits add up to it exactly.
func NewExpense(amount money.Amount, payments, splits []models.Contribution) (*models.Expense, error) {
	e := &models.Expense{
		Amount:   amount,
		Payments: cloneContributions(payments),
		Splits:   cloneContributions(splits),
	}
	if err := Revalidate(e); err != nil {
		return nil, err
	}
	return e, nil
}

// NewRecurringPayment builds the expense for one billing period of sub,
// the period starting at periodStart.
func NewRecurringPayment(sub models.Subscription, periodStart time.Time, payments, splits []models.Contribution) (*models.Expense, error) {
	if sub.ID == "" {
		return nil, invalid(ErrMissingField, "subscription_id", "required")
	}
	if periodStart.IsZero() {
		return nil, invalid(ErrMissingField, "period_start", "required")
	}
	e, err := NewExpense(sub.Amount, payments, splits)
	if err != nil {
		return nil, err
	}
	e.SubscriptionID = sub.ID
	e.Description = sub.Name
	period := sub.PeriodStarting(periodStart)
	e.Period = &period
	return e, nil
}

// Revalidate checks the expense invariants. It runs on construction and
// on every replacement of an existing expense.
func Revalidate(e *models.Expense) error {
	if e.Amount <= 0 {
		return invalid(ErrInvalidAmount, "amount", "must be positive, got %s", e.Amount)
	}
	if err := checkContributions("payments", e.Payments, e.Amount); err != nil {
		return err
	}
	if err := checkContributions("splits", e.Splits, e.Amount); err != nil {
		return err
	}
	if e.Period != nil && !e.Period.Start.Before(e.Period.End) {
		return invalid(ErrMissingField, "period", "end must be after start")
	}
	return nil
}

func checkContributions(field string, list []models.Contribution, amount money.Amount) error {
	if len(list) == 0 {
		return invalid(ErrMissingField, field, "at least one entry is required")
	}

	seen := make(map[string]bool, len(list))
	amounts := make([]money.Amount, 0, len(list))
	for _, c := range list {
		if c.PartyID == "" {
			return invalid(ErrMissingField, field, "party id is required")
		}
		if seen[c.PartyID] {
			return invalid(ErrMissingField, field, "party %s listed twice", c.PartyID)
		}
		seen[c.PartyID] = true
		if c.Amount <= 0 {
			return invalid(ErrInvalidAmount, field, "amount for %s must be positive, got %s", c.PartyID, c.Amount)
		}
		amounts = append(amounts, c.Amount)
	}

	sum, err := money.Sum(amounts...)
	if err != nil {
		return invalid(ErrInvalidAmount, field, "total out of range")
	}
	if sum != amount {
		return invalid(ErrSplitMismatch, field, "sum %s does not equal amount %s", sum, amount)
	}
	return nil
}

func cloneContributions(list []models.Contribution) []models.Contribution {
	return append([]models.Contribution(nil), list...)
}

// EqualSplits divides total equally among parties. Leftover cents go one
// each to the first parties in the order given.
func EqualSplits(total money.Amount, parties []string) ([]models.Contribution, error) {
	shares, err := money.SplitEqually(total, len(parties))
	if err != nil {
		return nil, invalid(ErrMissingField, "splits", "%v", err)
	}
	return contributions(parties, shares), nil
}

// WeightedSplits divides total proportionally to weights.
func WeightedSplits(total money.Amount, parties []string, weights []int64) ([]models.Contribution, error) {
	if len(parties) != len(weights) {
		return nil, invalid(ErrMissingField, "weights", "got %d weights for %d parties", len(weights), len(parties))
	}
	shares, err := money.SplitByWeights(total, weights)
	if err != nil {
		return nil, invalid(ErrInvalidAmount, "weights", "%v", err)
	}
	return contributions(parties, shares), nil
}

// contributions pairs parties with shares and drops zero shares, which
// arise when there are fewer cents than parties.
func contributions(parties []string, shares []money.Amount) []models.Contribution {
	out := make([]models.Contribution, 0, len(parties))
	for i, p := range parties {
		if shares[i] == 0 {
			continue
		}
		out = append(out, models.Contribution{PartyID: p, Amount: shares[i]})
	}
	return out
}

// PaidBy is shorthand for a single payer covering the whole amount.
func PaidBy(partyID string, amount money.Amount) []models.Contribution {
	return []models.Contribution{{PartyID: partyID, Amount: amount}}
}
