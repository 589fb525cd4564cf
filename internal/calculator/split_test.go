package calculator

import (
	"testing"

	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/money"
)

func TestCalculateSplit(t *testing.T) {
	tests := []struct {
		name         string
		items        []models.Item
		billTotal    money.Amount
		participants []string
		wantErr      bool
		validateFunc func(t *testing.T, splits map[string]*PersonSplit)
	}{
		{
			name: "simple two-person split with tax",
			items: []models.Item{
				{Description: "Pizza", Amount: 2000, AssignedTo: []string{"Alice", "Bob"}},
				{Description: "Salad", Amount: 1000, AssignedTo: []string{"Alice"}},
			},
			billTotal:    3300,
			participants: []string{"Alice", "Bob"},
			validateFunc: func(t *testing.T, splits map[string]*PersonSplit) {
				// Alice: subtotal = 10 + 10 = 20, tax = 20 * (3/30) = 2, total = 22
				// Bob: subtotal = 10, tax = 10 * (3/30) = 1, total = 11
				alice := splits["Alice"]
				if alice.Subtotal != 2000 {
					t.Errorf("Alice subtotal = %s, want 20.00", alice.Subtotal)
				}
				if alice.Tax != 200 {
					t.Errorf("Alice tax = %s, want 2.00", alice.Tax)
				}
				if alice.Total != 2200 {
					t.Errorf("Alice total = %s, want 22.00", alice.Total)
				}
				if len(alice.Items) != 2 {
					t.Errorf("Alice items = %d, want 2", len(alice.Items))
				}

				bob := splits["Bob"]
				if bob.Subtotal != 1000 {
					t.Errorf("Bob subtotal = %s, want 10.00", bob.Subtotal)
				}
				if bob.Total != 1100 {
					t.Errorf("Bob total = %s, want 11.00", bob.Total)
				}
			},
		},
		{
			name:         "no participants should error",
			items:        []models.Item{{Description: "Item", Amount: 1000, AssignedTo: []string{"Alice"}}},
			billTotal:    1000,
			participants: []string{},
			wantErr:      true,
		},
		{
			name:         "total below subtotal should error",
			items:        []models.Item{{Description: "Item", Amount: 1000, AssignedTo: []string{"Alice"}}},
			billTotal:    900,
			participants: []string{"Alice"},
			wantErr:      true,
		},
		{
			name:         "item assigned to stranger should error",
			items:        []models.Item{{Description: "Item", Amount: 1000, AssignedTo: []string{"Mallory"}}},
			billTotal:    1000,
			participants: []string{"Alice"},
			wantErr:      true,
		},
		{
			name:         "no items - split equally among participants",
			billTotal:    3300,
			participants: []string{"Alice", "Bob"},
			validateFunc: func(t *testing.T, splits map[string]*PersonSplit) {
				for _, person := range []string{"Alice", "Bob"} {
					if splits[person].Total != 1650 {
						t.Errorf("%s total = %s, want 16.50", person, splits[person].Total)
					}
				}
			},
		},
		{
			name:         "no items - three people with leftover cent",
			billTotal:    1001,
			participants: []string{"Alice", "Bob", "Charlie"},
			validateFunc: func(t *testing.T, splits map[string]*PersonSplit) {
				want := map[string]money.Amount{"Alice": 334, "Bob": 334, "Charlie": 333}
				for person, w := range want {
					if splits[person].Total != w {
						t.Errorf("%s total = %s, want %s", person, splits[person].Total, w)
					}
				}
			},
		},
		{
			name: "unassigned item shared by everyone",
			items: []models.Item{
				{Description: "Bread", Amount: 300},
			},
			billTotal:    300,
			participants: []string{"Alice", "Bob", "Charlie"},
			validateFunc: func(t *testing.T, splits map[string]*PersonSplit) {
				for _, person := range []string{"Alice", "Bob", "Charlie"} {
					if splits[person].Total != 100 {
						t.Errorf("%s total = %s, want 1.00", person, splits[person].Total)
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := CalculateSplit(tt.items, tt.billTotal, tt.participants)
			if (err != nil) != tt.wantErr {
				t.Errorf("CalculateSplit() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}

			var sum money.Amount
			for _, s := range splits {
				sum += s.Total
			}
			if sum != tt.billTotal {
				t.Errorf("split totals sum to %s, want %s", sum, tt.billTotal)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, splits)
			}
		})
	}
}

func TestCalculateSplitTaxRemainder(t *testing.T) {
	// 3 equal subtotals and 1.00 of tax: 34/33/33 cents in participant order.
	items := []models.Item{
		{Description: "A", Amount: 500, AssignedTo: []string{"Alice"}},
		{Description: "B", Amount: 500, AssignedTo: []string{"Bob"}},
		{Description: "C", Amount: 500, AssignedTo: []string{"Charlie"}},
	}
	splits, err := CalculateSplit(items, 1600, []string{"Alice", "Bob", "Charlie"})
	if err != nil {
		t.Fatalf("CalculateSplit failed: %v", err)
	}
	if splits["Alice"].Tax != 34 || splits["Bob"].Tax != 33 || splits["Charlie"].Tax != 33 {
		t.Errorf("tax = %s/%s/%s, want 0.34/0.33/0.33",
			splits["Alice"].Tax, splits["Bob"].Tax, splits["Charlie"].Tax)
	}

	contribs := SplitContributions(splits, []string{"Alice", "Bob", "Charlie"})
	if len(contribs) != 3 || contribs[0].Amount != 534 {
		t.Errorf("SplitContributions = %v", contribs)
	}
}
