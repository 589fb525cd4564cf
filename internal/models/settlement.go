package models

import "github.com/mmynk/swisscoin/internal/money"

// Settlement represents a payment between two parties to clear debts.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to, if any.
	GroupID string

	// SubscriptionID is the subscription this settlement belongs to, if any.
	SubscriptionID string

	// FromPartyID is the party who paid.
	FromPartyID string

	// ToPartyID is the party who received the payment.
	ToPartyID string

	// Amount is the payment amount. Always positive.
	Amount money.Amount

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64

	// CreatedBy is the party ID who recorded this settlement.
	CreatedBy string

	// Note is an optional description for the settlement.
	Note string
}

// Involves reports whether the settlement is between a and b, in either direction.
func (s *Settlement) Involves(a, b string) bool {
	return (s.FromPartyID == a && s.ToPartyID == b) || (s.FromPartyID == b && s.ToPartyID == a)
}
