package calculator

import (
	"sort"

	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/money"
)

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	PartyID    string
	NetBalance money.Amount // Positive = owed money, Negative = owes money
	TotalPaid  money.Amount // Paid towards expenses plus settlements sent
	TotalOwed  money.Amount // Owed for expenses plus settlements received
}

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount money.Amount
}

// CalculateGroupBalances computes member balances across the given facts
// and a simplified list of payments that would settle everyone up.
//
// Algorithm:
// - For each expense: payers contributed what they paid, each party owes their split
// - For each settlement: payer's balance improves, receiver's balance decreases
// - Aggregate: net_balance = total_paid - total_owed
// - Debt matrix: simplified using greedy matching, largest amounts first
func CalculateGroupBalances(facts models.Facts) ([]MemberBalance, []DebtEdge) {
	balances := make(map[string]*MemberBalance)
	get := func(id string) *MemberBalance {
		if _, exists := balances[id]; !exists {
			balances[id] = &MemberBalance{PartyID: id}
		}
		return balances[id]
	}

	for _, e := range facts.Expenses {
		for _, p := range e.Payments {
			get(p.PartyID).TotalPaid += p.Amount
		}
		for _, s := range e.Splits {
			get(s.PartyID).TotalOwed += s.Amount
		}
	}

	for _, s := range facts.Settlements {
		get(s.FromPartyID).TotalPaid += s.Amount
		get(s.ToPartyID).TotalOwed += s.Amount
	}

	memberBalances := make([]MemberBalance, 0, len(balances))
	for _, bal := range balances {
		bal.NetBalance = bal.TotalPaid - bal.TotalOwed
		memberBalances = append(memberBalances, *bal)
	}
	sort.Slice(memberBalances, func(i, j int) bool {
		return memberBalances[i].PartyID < memberBalances[j].PartyID
	})

	return memberBalances, SimplifyDebts(memberBalances)
}

// SimplifyDebts matches debtors with creditors to minimize the number of
// payments. Ties are broken by party ID so the result is deterministic.
func SimplifyDebts(members []MemberBalance) []DebtEdge {
	type position struct {
		id     string
		amount money.Amount
	}

	var creditors, debtors []position
	for _, m := range members {
		switch {
		case m.NetBalance > money.Epsilon:
			creditors = append(creditors, position{m.PartyID, m.NetBalance})
		case m.NetBalance < -money.Epsilon:
			debtors = append(debtors, position{m.PartyID, -m.NetBalance})
		}
	}
	byAmount := func(list []position) func(i, j int) bool {
		return func(i, j int) bool {
			if list[i].amount != list[j].amount {
				return list[i].amount > list[j].amount
			}
			return list[i].id < list[j].id
		}
	}
	sort.Slice(creditors, byAmount(creditors))
	sort.Slice(debtors, byAmount(debtors))

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := money.Min(debtors[i].amount, creditors[j].amount)
		if amount > money.Epsilon {
			edges = append(edges, DebtEdge{
				From:   debtors[i].id,
				To:     creditors[j].id,
				Amount: amount,
			})
		}

		debtors[i].amount -= amount
		creditors[j].amount -= amount

		// Move to next debtor/creditor if fully settled
		if money.IsSettled(debtors[i].amount) {
			i++
		}
		if money.IsSettled(creditors[j].amount) {
			j++
		}
	}

	return edges
}
