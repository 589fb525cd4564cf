package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/money"
)

func TestNewExpense(t *testing.T) {
	tests := []struct {
		name     string
		amount   money.Amount
		payments []models.Contribution
		splits   []models.Contribution
		wantErr  error
	}{
		{
			name:     "single payer equal split",
			amount:   10000,
			payments: PaidBy("alice", 10000),
			splits:   []models.Contribution{{PartyID: "alice", Amount: 5000}, {PartyID: "bob", Amount: 5000}},
		},
		{
			name:     "two payers",
			amount:   9000,
			payments: []models.Contribution{{PartyID: "alice", Amount: 6000}, {PartyID: "bob", Amount: 3000}},
			splits:   []models.Contribution{{PartyID: "alice", Amount: 3000}, {PartyID: "bob", Amount: 3000}, {PartyID: "carol", Amount: 3000}},
		},
		{
			name:     "payments short by one cent",
			amount:   10000,
			payments: PaidBy("alice", 9999),
			splits:   []models.Contribution{{PartyID: "alice", Amount: 5000}, {PartyID: "bob", Amount: 5000}},
			wantErr:  ErrSplitMismatch,
		},
		{
			name:     "splits over by one cent",
			amount:   10000,
			payments: PaidBy("alice", 10000),
			splits:   []models.Contribution{{PartyID: "alice", Amount: 5001}, {PartyID: "bob", Amount: 5000}},
			wantErr:  ErrSplitMismatch,
		},
		{
			name:     "zero amount",
			amount:   0,
			payments: PaidBy("alice", 0),
			splits:   PaidBy("alice", 0),
			wantErr:  ErrInvalidAmount,
		},
		{
			name:     "negative amount",
			amount:   -100,
			payments: PaidBy("alice", -100),
			splits:   PaidBy("bob", -100),
			wantErr:  ErrInvalidAmount,
		},
		{
			name:     "negative split entry",
			amount:   100,
			payments: PaidBy("alice", 100),
			splits:   []models.Contribution{{PartyID: "alice", Amount: 200}, {PartyID: "bob", Amount: -100}},
			wantErr:  ErrInvalidAmount,
		},
		{
			name:     "missing party id",
			amount:   100,
			payments: PaidBy("", 100),
			splits:   PaidBy("bob", 100),
			wantErr:  ErrMissingField,
		},
		{
			name:     "duplicate split party",
			amount:   100,
			payments: PaidBy("alice", 100),
			splits:   []models.Contribution{{PartyID: "bob", Amount: 50}, {PartyID: "bob", Amount: 50}},
			wantErr:  ErrMissingField,
		},
		{
			name:     "no splits",
			amount:   100,
			payments: PaidBy("alice", 100),
			wantErr:  ErrMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewExpense(tt.amount, tt.payments, tt.splits)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewExpense() error = %v, want %v", err, tt.wantErr)
				}
				if e != nil {
					t.Error("expected no expense on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewExpense() unexpected error: %v", err)
			}
			if e.Amount != tt.amount {
				t.Errorf("Amount = %s, want %s", e.Amount, tt.amount)
			}
		})
	}
}

func TestNewExpenseCopiesInput(t *testing.T) {
	splits := []models.Contribution{{PartyID: "alice", Amount: 50}, {PartyID: "bob", Amount: 50}}
	e, err := NewExpense(100, PaidBy("alice", 100), splits)
	if err != nil {
		t.Fatalf("NewExpense failed: %v", err)
	}

	splits[0].Amount = 99
	if e.Splits[0].Amount != 50 {
		t.Errorf("expense split changed through caller slice: %s", e.Splits[0].Amount)
	}
}

func TestRevalidateAfterReplacement(t *testing.T) {
	e, err := NewExpense(100, PaidBy("alice", 100), PaidBy("bob", 100))
	if err != nil {
		t.Fatalf("NewExpense failed: %v", err)
	}

	replaced := *e
	replaced.Amount = 120
	if err := Revalidate(&replaced); !errors.Is(err, ErrSplitMismatch) {
		t.Errorf("Revalidate() error = %v, want ErrSplitMismatch", err)
	}
}

func TestEqualSplits(t *testing.T) {
	// $10.01 three ways
	splits, err := EqualSplits(1001, []string{"alice", "bob", "carol"})
	if err != nil {
		t.Fatalf("EqualSplits failed: %v", err)
	}
	want := []money.Amount{334, 334, 333}
	for i, s := range splits {
		if s.Amount != want[i] {
			t.Errorf("split %d (%s) = %s, want %s", i, s.PartyID, s.Amount, want[i])
		}
	}

	e, err := NewExpense(1001, PaidBy("alice", 1001), splits)
	if err != nil {
		t.Fatalf("equal splits rejected by NewExpense: %v", err)
	}
	if len(e.Splits) != 3 {
		t.Errorf("expected 3 splits, got %d", len(e.Splits))
	}
}

func TestEqualSplitsDropsZeroShares(t *testing.T) {
	splits, err := EqualSplits(2, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EqualSplits failed: %v", err)
	}
	if len(splits) != 2 {
		t.Fatalf("expected 2 non-zero splits, got %d", len(splits))
	}
	if _, err := NewExpense(2, PaidBy("a", 2), splits); err != nil {
		t.Errorf("NewExpense rejected splits: %v", err)
	}
}

func TestWeightedSplits(t *testing.T) {
	splits, err := WeightedSplits(3000, []string{"alice", "bob"}, []int64{2, 1})
	if err != nil {
		t.Fatalf("WeightedSplits failed: %v", err)
	}
	if splits[0].Amount != 2000 || splits[1].Amount != 1000 {
		t.Errorf("WeightedSplits = %v, want [2000 1000]", splits)
	}

	if _, err := WeightedSplits(3000, []string{"alice"}, []int64{1, 2}); !errors.Is(err, ErrMissingField) {
		t.Errorf("mismatched weights error = %v, want ErrMissingField", err)
	}
}

func TestNewRecurringPayment(t *testing.T) {
	due := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)
	sub, err := NewSubscription("Netflix", 1599, models.CycleMonthly, "alice", []string{"alice", "bob"}, due)
	if err != nil {
		t.Fatalf("NewSubscription failed: %v", err)
	}
	sub.ID = "sub-1"

	e, err := PeriodPayment(*sub)
	if err != nil {
		t.Fatalf("PeriodPayment failed: %v", err)
	}
	if e.SubscriptionID != "sub-1" {
		t.Errorf("SubscriptionID = %q, want sub-1", e.SubscriptionID)
	}
	if e.Period == nil {
		t.Fatal("expected billing period to be populated")
	}
	if !e.Period.Start.Equal(due) {
		t.Errorf("PeriodStart = %v, want %v", e.Period.Start, due)
	}
	wantEnd := time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC)
	if !e.Period.End.Equal(wantEnd) {
		t.Errorf("PeriodEnd = %v, want %v", e.Period.End, wantEnd)
	}
	if e.OwedBy("alice") != 800 || e.OwedBy("bob") != 799 {
		t.Errorf("splits = %v, want alice 800 bob 799", e.Splits)
	}

	if _, err := PeriodPayment(sub.Pause()); !errors.Is(err, ErrInactive) {
		t.Errorf("paused subscription error = %v, want ErrInactive", err)
	}
}

func TestCheckPeriodFree(t *testing.T) {
	jan := models.Period{
		Start: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
	}
	feb := models.Period{Start: jan.End, End: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)}
	existing := []*models.Expense{{ID: "e1", SubscriptionID: "sub-1", Period: &jan}}

	if err := CheckPeriodFree(existing, "sub-1", jan); !errors.Is(err, ErrDuplicatePeriod) {
		t.Errorf("same period error = %v, want ErrDuplicatePeriod", err)
	}
	if err := CheckPeriodFree(existing, "sub-1", feb); err != nil {
		t.Errorf("adjacent period rejected: %v", err)
	}
	if err := CheckPeriodFree(existing, "sub-2", jan); err != nil {
		t.Errorf("other subscription rejected: %v", err)
	}
}
