package models

import (
	"time"

	"github.com/mmynk/swisscoin/internal/money"
)

// Contribution is one party's part of an expense: an amount paid or an
// amount owed.
type Contribution struct {
	PartyID string
	Amount  money.Amount
}

// Period is a half-open billing period [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Overlaps reports whether two periods share any instant.
func (p Period) Overlaps(other Period) bool {
	return p.Start.Before(other.End) && other.Start.Before(p.End)
}

// Expense represents one shared cost.
//
// The sum of Payments and the sum of Splits both equal Amount. An expense
// generated from a subscription carries the SubscriptionID and the billing
// Period it covers; for balance purposes it is an ordinary expense.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to, if any.
	GroupID string

	// SubscriptionID links a recurring payment to its subscription.
	SubscriptionID string

	// Description is the human-readable name (e.g., "Dinner", "Netflix").
	Description string

	// Amount is the total of the expense.
	Amount money.Amount

	// Payments lists who paid how much.
	Payments []Contribution

	// Splits lists who owes how much.
	Splits []Contribution

	// Period is the billing period covered by a recurring payment.
	// Nil for ad hoc expenses.
	Period *Period

	// CreatedAt is the Unix timestamp when the expense was created.
	CreatedAt int64

	// CreatedBy is the party ID who recorded this expense.
	CreatedBy string
}

// IsRecurring reports whether the expense was generated from a subscription.
func (e *Expense) IsRecurring() bool {
	return e.SubscriptionID != "" && e.Period != nil
}

// PaidBy returns the amount partyID paid towards the expense.
func (e *Expense) PaidBy(partyID string) money.Amount {
	return amountFor(e.Payments, partyID)
}

// OwedBy returns the amount partyID owes for the expense.
func (e *Expense) OwedBy(partyID string) money.Amount {
	return amountFor(e.Splits, partyID)
}

// Parties returns every party that paid or owes, payers first, without duplicates.
func (e *Expense) Parties() []string {
	seen := make(map[string]bool)
	var parties []string
	for _, list := range [][]Contribution{e.Payments, e.Splits} {
		for _, c := range list {
			if !seen[c.PartyID] {
				seen[c.PartyID] = true
				parties = append(parties, c.PartyID)
			}
		}
	}
	return parties
}

func amountFor(list []Contribution, partyID string) money.Amount {
	var total money.Amount
	for _, c := range list {
		if c.PartyID == partyID {
			total += c.Amount
		}
	}
	return total
}

// Item is a single line item used to build itemized splits.
type Item struct {
	Description string
	Amount      money.Amount
	// AssignedTo lists the parties sharing this item. Shared items are
	// split equally among them.
	AssignedTo []string
}
