package models

// Facts is a consistent snapshot of ledger facts, the input of every
// balance computation.
type Facts struct {
	Expenses    []*Expense
	Settlements []*Settlement
}

// InGroup returns the facts tagged with groupID.
func (f Facts) InGroup(groupID string) Facts {
	return f.filter(
		func(e *Expense) bool { return e.GroupID == groupID },
		func(s *Settlement) bool { return s.GroupID == groupID },
	)
}

// ForSubscription returns the facts tagged with subscriptionID.
func (f Facts) ForSubscription(subscriptionID string) Facts {
	return f.filter(
		func(e *Expense) bool { return e.SubscriptionID == subscriptionID },
		func(s *Settlement) bool { return s.SubscriptionID == subscriptionID },
	)
}

// Between returns the facts both a and b take part in.
func (f Facts) Between(a, b string) Facts {
	return f.filter(
		func(e *Expense) bool { return involves(e, a) && involves(e, b) },
		func(s *Settlement) bool { return s.Involves(a, b) },
	)
}

// WithSettlement returns a new snapshot with s appended. The receiver is
// left untouched.
func (f Facts) WithSettlement(s *Settlement) Facts {
	settlements := make([]*Settlement, 0, len(f.Settlements)+1)
	settlements = append(settlements, f.Settlements...)
	settlements = append(settlements, s)
	return Facts{Expenses: f.Expenses, Settlements: settlements}
}

func (f Facts) filter(keepExpense func(*Expense) bool, keepSettlement func(*Settlement) bool) Facts {
	var out Facts
	for _, e := range f.Expenses {
		if keepExpense(e) {
			out.Expenses = append(out.Expenses, e)
		}
	}
	for _, s := range f.Settlements {
		if keepSettlement(s) {
			out.Settlements = append(out.Settlements, s)
		}
	}
	return out
}

func involves(e *Expense, partyID string) bool {
	for _, p := range e.Parties() {
		if p == partyID {
			return true
		}
	}
	return false
}
