// Package calculator implements the balance engine and split calculations.
//
// Everything here is pure computation over a models.Facts snapshot. The
// party a balance is computed for is always passed in explicitly.
package calculator

import (
	"sort"

	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/money"
)

// Balance returns the signed net balance between self and other.
// Positive means other owes self; negative means self owes other.
//
// For each expense, other owes self their split weighted by self's share of
// the payments, and vice versa. With a single payer that is exactly the
// debtor's split. Settlements count by direction only: self paying other
// adds the amount, other paying self subtracts it. Nothing is clamped, so
// Balance(a, b) == -Balance(b, a) for any facts.
func Balance(self, other string, facts models.Facts) money.Amount {
	if self == other {
		return 0
	}

	var total money.Amount
	for _, e := range facts.Expenses {
		total += ExpenseDelta(e, self, other)
	}
	for _, s := range facts.Settlements {
		total += SettlementDelta(s, self, other)
	}
	return total
}

// ExpenseDelta is how much one expense moves the balance between self and other.
func ExpenseDelta(e *models.Expense, self, other string) money.Amount {
	if e.Amount <= 0 {
		return 0
	}
	otherOwesSelf := money.MulDivRound(e.OwedBy(other), e.PaidBy(self), e.Amount)
	selfOwesOther := money.MulDivRound(e.OwedBy(self), e.PaidBy(other), e.Amount)
	return otherOwesSelf - selfOwesOther
}

// SettlementDelta is how much one settlement moves the balance between
// self and other. The sign comes from the settlement's direction relative
// to (self, other) and never from who recorded it.
func SettlementDelta(s *models.Settlement, self, other string) money.Amount {
	switch {
	case s.FromPartyID == self && s.ToPartyID == other:
		return s.Amount
	case s.FromPartyID == other && s.ToPartyID == self:
		return -s.Amount
	default:
		return 0
	}
}

// Net returns self's position against everyone else in facts:
// what self paid minus what self owes, with settlements sent counting as
// paid and settlements received counting as owed.
func Net(self string, facts models.Facts) money.Amount {
	var total money.Amount
	for _, e := range facts.Expenses {
		total += e.PaidBy(self) - e.OwedBy(self)
	}
	for _, s := range facts.Settlements {
		switch self {
		case s.FromPartyID:
			total += s.Amount
		case s.ToPartyID:
			total -= s.Amount
		}
	}
	return total
}

// GroupShare returns self's balance against the rest of the group.
// Positive means the group owes self.
func GroupShare(self, groupID string, facts models.Facts) money.Amount {
	return Net(self, facts.InGroup(groupID))
}

// SubscriptionShare returns self's balance against the other members of a
// subscription.
func SubscriptionShare(self, subscriptionID string, facts models.Facts) money.Amount {
	return Net(self, facts.ForSubscription(subscriptionID))
}

// PairBalance is self's balance with one counterparty.
type PairBalance struct {
	PartyID string
	Balance money.Amount
}

// Overview returns self's outstanding balance with every counterparty that
// appears in facts, largest magnitude first. Settled pairs are left out.
func Overview(self string, facts models.Facts) []PairBalance {
	others := make(map[string]bool)
	for _, e := range facts.Expenses {
		for _, p := range e.Parties() {
			others[p] = true
		}
	}
	for _, s := range facts.Settlements {
		others[s.FromPartyID] = true
		others[s.ToPartyID] = true
	}
	delete(others, self)

	var out []PairBalance
	for other := range others {
		b := Balance(self, other, facts)
		if money.IsSettled(b) {
			continue
		}
		out = append(out, PairBalance{PartyID: other, Balance: b})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Balance.Abs() != out[j].Balance.Abs() {
			return out[i].Balance.Abs() > out[j].Balance.Abs()
		}
		return out[i].PartyID < out[j].PartyID
	})
	return out
}
