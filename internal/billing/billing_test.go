package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmynk/swisscoin/internal/calculator"
	"github.com/mmynk/swisscoin/internal/ledger"
	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/money"
	"github.com/mmynk/swisscoin/internal/storage"
	"github.com/mmynk/swisscoin/internal/storage/memory"
)

var jan1 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newSubscription(t *testing.T, store *memory.Store, amount money.Amount) *models.Subscription {
	t.Helper()
	sub, err := ledger.NewSubscription("Netflix", amount, models.CycleMonthly, "alice",
		[]string{"alice", "bob", "carol"}, jan1)
	if err != nil {
		t.Fatalf("NewSubscription failed: %v", err)
	}
	if err := store.CreateSubscription(context.Background(), sub); err != nil {
		t.Fatalf("CreateSubscription failed: %v", err)
	}
	return sub
}

func TestCharge(t *testing.T) {
	store := memory.New()
	sub := newSubscription(t, store, money.Cents(1000))
	b := New(store, time.Hour, nil)
	ctx := context.Background()

	payment, err := b.Charge(ctx, sub.ID, jan1)
	if err != nil {
		t.Fatalf("Charge failed: %v", err)
	}
	if payment.SubscriptionID != sub.ID || payment.Period == nil {
		t.Fatalf("Expected recurring payment, got %+v", payment)
	}
	if !payment.Period.Start.Equal(jan1) || !payment.Period.End.Equal(jan1.AddDate(0, 1, 0)) {
		t.Errorf("Unexpected period %v - %v", payment.Period.Start, payment.Period.End)
	}
	wantSplits := []money.Amount{334, 333, 333}
	for i, s := range payment.Splits {
		if s.Amount != wantSplits[i] {
			t.Errorf("Split %d: expected %s, got %s", i, wantSplits[i], s.Amount)
		}
	}

	updated, _ := store.GetSubscription(ctx, sub.ID)
	if !updated.NextDueDate.Equal(jan1.AddDate(0, 1, 0)) {
		t.Errorf("Expected due date advanced to Feb 1, got %v", updated.NextDueDate)
	}

	facts, _, _ := store.LoadFacts(ctx, storage.FactFilter{SubscriptionID: sub.ID})
	if got := calculator.SubscriptionShare("alice", sub.ID, facts); got != money.Cents(666) {
		t.Errorf("Expected alice to be owed 6.66, got %s", got)
	}
	if got := calculator.Balance("alice", "bob", facts); got != money.Cents(333) {
		t.Errorf("Expected bob to owe alice 3.33, got %s", got)
	}
}

func TestChargeRejectsDuplicatePeriod(t *testing.T) {
	store := memory.New()
	sub := newSubscription(t, store, money.Cents(900))
	b := New(store, time.Hour, nil)
	ctx := context.Background()

	if _, err := b.charge(ctx, *sub, jan1); err != nil {
		t.Fatalf("first charge failed: %v", err)
	}
	// A stale copy of the template still points at January.
	if _, err := b.charge(ctx, *sub, jan1); !errors.Is(err, ledger.ErrDuplicatePeriod) {
		t.Errorf("Expected ErrDuplicatePeriod, got %v", err)
	}
}

func TestChargePaused(t *testing.T) {
	store := memory.New()
	sub := newSubscription(t, store, money.Cents(900))
	if _, err := store.SetSubscriptionActive(context.Background(), sub.ID, false); err != nil {
		t.Fatalf("SetSubscriptionActive failed: %v", err)
	}

	_, err := New(store, time.Hour, nil).Charge(context.Background(), sub.ID, jan1)
	if !errors.Is(err, ledger.ErrInactive) {
		t.Errorf("Expected ErrInactive, got %v", err)
	}
}

func TestChargeDueCatchesUp(t *testing.T) {
	store := memory.New()
	sub := newSubscription(t, store, money.Cents(900))
	b := New(store, time.Hour, nil)
	ctx := context.Background()

	n, err := b.ChargeDue(ctx, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ChargeDue failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected Jan, Feb and Mar to be charged, got %d", n)
	}

	updated, _ := store.GetSubscription(ctx, sub.ID)
	if want := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC); !updated.NextDueDate.Equal(want) {
		t.Errorf("Expected next due %v, got %v", want, updated.NextDueDate)
	}

	n, err = b.ChargeDue(ctx, time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC))
	if err != nil || n != 0 {
		t.Errorf("Expected nothing left to charge, got %d, %v", n, err)
	}
}

func TestPauseAroundChargeKeepsBilling(t *testing.T) {
	store := memory.New()
	sub := newSubscription(t, store, money.Cents(900))
	b := New(store, time.Hour, nil)
	ctx := context.Background()

	// The pause was requested while January's charge was in flight.
	if _, err := b.Charge(ctx, sub.ID, jan1); err != nil {
		t.Fatalf("Charge failed: %v", err)
	}
	if _, err := store.SetSubscriptionActive(ctx, sub.ID, false); err != nil {
		t.Fatalf("SetSubscriptionActive failed: %v", err)
	}
	if _, err := store.SetSubscriptionActive(ctx, sub.ID, true); err != nil {
		t.Fatalf("SetSubscriptionActive failed: %v", err)
	}

	n, err := b.ChargeDue(ctx, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ChargeDue failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected Feb and Mar to be charged, got %d", n)
	}
	updated, _ := store.GetSubscription(ctx, sub.ID)
	if want := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC); !updated.NextDueDate.Equal(want) {
		t.Errorf("Expected next due %v, got %v", want, updated.NextDueDate)
	}
}

func TestChargeReadBeforePause(t *testing.T) {
	store := memory.New()
	sub := newSubscription(t, store, money.Cents(900))
	b := New(store, time.Hour, nil)
	ctx := context.Background()

	stale, _ := store.GetSubscription(ctx, sub.ID)
	if _, err := store.SetSubscriptionActive(ctx, sub.ID, false); err != nil {
		t.Fatalf("SetSubscriptionActive failed: %v", err)
	}
	if _, err := b.charge(ctx, *stale, jan1); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("Expected ErrConflict, got %v", err)
	}

	updated, _ := store.GetSubscription(ctx, sub.ID)
	if updated.Active {
		t.Error("Expected the pause to stick")
	}
	facts, _, _ := store.LoadFacts(ctx, storage.FactFilter{})
	if len(facts.Expenses) != 0 {
		t.Errorf("Expected no payment, got %d", len(facts.Expenses))
	}
}

func TestMonthEndAnchorIsKept(t *testing.T) {
	store := memory.New()
	jan31 := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	sub, err := ledger.NewSubscription("Rent", money.Cents(90000), models.CycleMonthly, "alice",
		[]string{"alice", "bob"}, jan31)
	if err != nil {
		t.Fatalf("NewSubscription failed: %v", err)
	}
	ctx := context.Background()
	if err := store.CreateSubscription(ctx, sub); err != nil {
		t.Fatalf("CreateSubscription failed: %v", err)
	}

	n, err := New(store, time.Hour, nil).ChargeDue(ctx, time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ChargeDue failed: %v", err)
	}
	if n != 5 {
		t.Errorf("Expected Jan through May to be charged, got %d", n)
	}

	facts, _, _ := store.LoadFacts(ctx, storage.FactFilter{SubscriptionID: sub.ID})
	wantStarts := []time.Time{
		jan31,
		time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
	}
	if len(facts.Expenses) != len(wantStarts) {
		t.Fatalf("Expected %d payments, got %d", len(wantStarts), len(facts.Expenses))
	}
	for i, e := range facts.Expenses {
		if !e.Period.Start.Equal(wantStarts[i]) {
			t.Errorf("Payment %d: expected period start %v, got %v", i, wantStarts[i], e.Period.Start)
		}
	}

	updated, _ := store.GetSubscription(ctx, sub.ID)
	if want := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC); !updated.NextDueDate.Equal(want) {
		t.Errorf("Expected next due %v, got %v", want, updated.NextDueDate)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	store := memory.New()
	newSubscription(t, store, money.Cents(900))
	b := New(store, time.Millisecond, nil)
	b.now = func() time.Time { return jan1 }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		facts, _, _ := store.LoadFacts(context.Background(), storage.FactFilter{})
		if len(facts.Expenses) == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("Run never charged the due subscription")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
