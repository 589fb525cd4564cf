package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmynk/swisscoin/internal/ledger"
	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/money"
	"github.com/mmynk/swisscoin/internal/storage"
)

func TestLoadFactsReturnsCopies(t *testing.T) {
	store := New()
	ctx := context.Background()

	e, err := ledger.NewExpense(money.Cents(300), ledger.PaidBy("alice", money.Cents(300)),
		[]models.Contribution{{PartyID: "alice", Amount: 100}, {PartyID: "bob", Amount: 200}})
	if err != nil {
		t.Fatalf("NewExpense failed: %v", err)
	}
	if err := store.CreateExpense(ctx, e); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	facts, rev, err := store.LoadFacts(ctx, storage.FactFilter{PartyIDs: []string{"bob"}})
	if err != nil {
		t.Fatalf("LoadFacts failed: %v", err)
	}
	if rev != 1 {
		t.Errorf("Expected revision 1, got %d", rev)
	}
	if len(facts.Expenses) != 1 {
		t.Fatalf("Expected 1 expense, got %d", len(facts.Expenses))
	}

	facts.Expenses[0].Splits[0].Amount = 999
	again, _, _ := store.LoadFacts(ctx, storage.FactFilter{})
	if again.Expenses[0].Splits[0].Amount != 100 {
		t.Error("Mutating a snapshot changed the store")
	}

	none, _, _ := store.LoadFacts(ctx, storage.FactFilter{PartyIDs: []string{"carol"}})
	if len(none.Expenses) != 0 {
		t.Errorf("Expected no expenses for carol, got %d", len(none.Expenses))
	}
}

func TestExpenseLifecycle(t *testing.T) {
	store := New()
	ctx := context.Background()

	e, _ := ledger.NewExpense(money.Cents(10), ledger.PaidBy("alice", money.Cents(10)), ledger.PaidBy("bob", money.Cents(10)))
	e.CreatedBy = "alice"
	if err := store.CreateExpense(ctx, e); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	replacement, _ := ledger.NewExpense(money.Cents(20), ledger.PaidBy("alice", money.Cents(20)), ledger.PaidBy("bob", money.Cents(20)))
	replacement.ID = e.ID
	if err := store.ReplaceExpense(ctx, replacement); err != nil {
		t.Fatalf("ReplaceExpense failed: %v", err)
	}
	got, err := store.GetExpense(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if got.Amount != money.Cents(20) || got.CreatedBy != "alice" {
		t.Errorf("Unexpected replacement: %+v", got)
	}

	if err := store.DeleteExpense(ctx, e.ID); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}
	if _, err := store.GetExpense(ctx, e.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if rev, _ := store.Revision(ctx); rev != 3 {
		t.Errorf("Expected revision 3, got %d", rev)
	}
}

func TestRecurringPaymentRejectsDuplicatePeriod(t *testing.T) {
	store := New()
	ctx := context.Background()

	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sub, err := ledger.NewSubscription("Spotify", money.Cents(1200), models.CycleMonthly, "alice", []string{"alice", "bob"}, due)
	if err != nil {
		t.Fatalf("NewSubscription failed: %v", err)
	}
	if err := store.CreateSubscription(ctx, sub); err != nil {
		t.Fatalf("CreateSubscription failed: %v", err)
	}

	payment, err := ledger.PeriodPayment(*sub)
	if err != nil {
		t.Fatalf("PeriodPayment failed: %v", err)
	}
	next := sub.Advance()
	if err := store.CreateRecurringPayment(ctx, payment, next.NextDueDate); err != nil {
		t.Fatalf("CreateRecurringPayment failed: %v", err)
	}

	dup, _ := ledger.PeriodPayment(*sub)
	if err := store.CreateRecurringPayment(ctx, dup, next.NextDueDate); !errors.Is(err, ledger.ErrDuplicatePeriod) {
		t.Errorf("Expected ErrDuplicatePeriod, got %v", err)
	}

	due2, err := store.ListDueSubscriptions(ctx, due.AddDate(0, 0, 15))
	if err != nil {
		t.Fatalf("ListDueSubscriptions failed: %v", err)
	}
	if len(due2) != 0 {
		t.Errorf("Expected advanced subscription to not be due, got %d", len(due2))
	}
}

func TestAppendSettlementAtRevision(t *testing.T) {
	store := New()
	ctx := context.Background()

	rev, _ := store.Revision(ctx)
	first, _ := ledger.NewSettlement("bob", "alice", money.Cents(500), "")
	if err := store.CreateSettlement(ctx, first); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}

	stale, _ := ledger.NewSettlement("bob", "alice", money.Cents(500), "")
	if err := store.AppendSettlement(ctx, stale, rev); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("Expected ErrConflict, got %v", err)
	}
	if err := store.AppendSettlement(ctx, stale, rev+1); err != nil {
		t.Fatalf("AppendSettlement failed: %v", err)
	}
	facts, _, _ := store.LoadFacts(ctx, storage.FactFilter{})
	if len(facts.Settlements) != 2 {
		t.Errorf("Expected 2 settlements, got %d", len(facts.Settlements))
	}
}

func TestChargeAfterPauseConflicts(t *testing.T) {
	store := New()
	ctx := context.Background()

	due := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	sub, err := ledger.NewSubscription("Spotify", money.Cents(1200), models.CycleMonthly, "alice", []string{"alice", "bob"}, due)
	if err != nil {
		t.Fatalf("NewSubscription failed: %v", err)
	}
	if err := store.CreateSubscription(ctx, sub); err != nil {
		t.Fatalf("CreateSubscription failed: %v", err)
	}

	payment, _ := ledger.PeriodPayment(*sub)
	if _, err := store.SetSubscriptionActive(ctx, sub.ID, false); err != nil {
		t.Fatalf("SetSubscriptionActive failed: %v", err)
	}
	if err := store.CreateRecurringPayment(ctx, payment, sub.Advance().NextDueDate); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("Expected ErrConflict, got %v", err)
	}

	got, _ := store.GetSubscription(ctx, sub.ID)
	if got.Active || !got.NextDueDate.Equal(due) {
		t.Errorf("Expected paused subscription still due %v, got %+v", due, got)
	}
	facts, _, _ := store.LoadFacts(ctx, storage.FactFilter{})
	if len(facts.Expenses) != 0 {
		t.Errorf("Expected no payment recorded, got %d", len(facts.Expenses))
	}
}

func TestCreateUserRegistersParty(t *testing.T) {
	store := New()
	ctx := context.Background()

	user := models.NewUser("alice@example.com", "Alice", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := store.CreateUser(ctx, models.NewUser("alice@example.com", "Other", "hash")); err == nil {
		t.Error("Expected duplicate email to fail")
	}

	party, err := store.GetParty(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetParty failed: %v", err)
	}
	if party.Name != "Alice" {
		t.Errorf("Expected party name Alice, got %s", party.Name)
	}

	missing, err := store.GetUserByEmail(ctx, "nobody@example.com")
	if err != nil || missing != nil {
		t.Errorf("Expected nil, nil for unknown email, got %v, %v", missing, err)
	}
}
