package calculator

import (
	"fmt"

	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/money"
)

// PersonItem represents an item's share for one person.
type PersonItem struct {
	Description string
	Amount      money.Amount // This person's share of the item
}

// PersonSplit represents the calculated split for one person
type PersonSplit struct {
	Subtotal money.Amount
	Tax      money.Amount
	Total    money.Amount
	Items    []PersonItem
}

// CalculateSplit computes how much each person owes including proportional tax.
//
// Shared items are split equally among their assignees and items with no
// assignees are shared by every participant. Tax (billTotal - subtotal) is
// distributed in proportion to each person's subtotal. Leftover cents go to
// the earliest people in participant order, so the totals always add up to
// billTotal exactly.
func CalculateSplit(items []models.Item, billTotal money.Amount, participants []string) (map[string]*PersonSplit, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}
	if billTotal <= 0 {
		return nil, fmt.Errorf("bill total must be positive")
	}

	splits := make(map[string]*PersonSplit, len(participants))
	for _, p := range participants {
		if _, dup := splits[p]; dup {
			return nil, fmt.Errorf("participant %s listed twice", p)
		}
		splits[p] = &PersonSplit{}
	}

	// If no items, split total equally among all participants
	if len(items) == 0 {
		shares, err := money.SplitEqually(billTotal, len(participants))
		if err != nil {
			return nil, err
		}
		for i, p := range participants {
			splits[p].Subtotal = shares[i]
			splits[p].Total = shares[i]
		}
		return splits, nil
	}

	var subtotal money.Amount
	for _, item := range items {
		if item.Amount <= 0 {
			return nil, fmt.Errorf("item %q must have a positive amount", item.Description)
		}
		subtotal += item.Amount

		assigned := item.AssignedTo
		if len(assigned) == 0 {
			assigned = participants
		}
		shares, err := money.SplitEqually(item.Amount, len(assigned))
		if err != nil {
			return nil, err
		}
		for i, person := range assigned {
			split, exists := splits[person]
			if !exists {
				return nil, fmt.Errorf("item %q assigned to non-participant %s", item.Description, person)
			}
			split.Subtotal += shares[i]
			split.Items = append(split.Items, PersonItem{Description: item.Description, Amount: shares[i]})
		}
	}

	tax := billTotal - subtotal
	if tax < 0 {
		return nil, fmt.Errorf("bill total %s is less than item subtotal %s", billTotal, subtotal)
	}

	// Apply proportional tax over everyone with a non-zero subtotal
	var taxed []string
	var weights []int64
	for _, p := range participants {
		if splits[p].Subtotal > 0 {
			taxed = append(taxed, p)
			weights = append(weights, int64(splits[p].Subtotal))
		}
	}
	taxShares, err := money.SplitByWeights(tax, weights)
	if err != nil {
		return nil, err
	}
	for i, p := range taxed {
		splits[p].Tax = taxShares[i]
	}

	for _, split := range splits {
		split.Total = split.Subtotal + split.Tax
	}

	return splits, nil
}

// SplitContributions flattens a split result into expense splits in
// participant order, skipping people who owe nothing.
func SplitContributions(splits map[string]*PersonSplit, participants []string) []models.Contribution {
	out := make([]models.Contribution, 0, len(participants))
	for _, p := range participants {
		if s, ok := splits[p]; ok && s.Total > 0 {
			out = append(out, models.Contribution{PartyID: p, Amount: s.Total})
		}
	}
	return out
}
