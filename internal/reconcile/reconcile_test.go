package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mmynk/swisscoin/internal/calculator"
	"github.com/mmynk/swisscoin/internal/ledger"
	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/money"
	"github.com/mmynk/swisscoin/internal/storage"
	"github.com/mmynk/swisscoin/internal/storage/memory"
)

const (
	self  = "self"
	other = "other"
)

// owes records an expense where creditor paid amount and debtor's split is half of it.
func owes(t *testing.T, store *memory.Store, debtor, creditor string, amount money.Amount) {
	t.Helper()
	splits, err := ledger.EqualSplits(amount, []string{creditor, debtor})
	if err != nil {
		t.Fatalf("EqualSplits failed: %v", err)
	}
	e, err := ledger.NewExpense(amount, ledger.PaidBy(creditor, amount), splits)
	if err != nil {
		t.Fatalf("NewExpense failed: %v", err)
	}
	if err := store.CreateExpense(context.Background(), e); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
}

func balance(t *testing.T, store storage.FactStore, a, b string) money.Amount {
	t.Helper()
	facts, _, err := store.LoadFacts(context.Background(), storage.FactFilter{})
	if err != nil {
		t.Fatalf("LoadFacts failed: %v", err)
	}
	return calculator.Balance(a, b, facts)
}

func TestOtherPaysSelf(t *testing.T) {
	store := memory.New()
	owes(t, store, other, self, money.Cents(10000))
	if got := balance(t, store, self, other); got != money.Cents(5000) {
		t.Fatalf("Expected +50.00 before payment, got %s", got)
	}

	r := New(store)
	s, err := r.RecordPayment(context.Background(), self, other, money.Cents(5000), "thanks")
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if s.FromPartyID != other || s.ToPartyID != self {
		t.Errorf("Expected other -> self, got %s -> %s", s.FromPartyID, s.ToPartyID)
	}
	if s.CreatedBy != self {
		t.Errorf("Expected CreatedBy %s, got %s", self, s.CreatedBy)
	}
	if got := balance(t, store, self, other); got != 0 {
		t.Errorf("Expected 0.00 after payment, got %s", got)
	}
}

func TestSelfPaysOther(t *testing.T) {
	store := memory.New()
	owes(t, store, self, other, money.Cents(6000))
	if got := balance(t, store, self, other); got != money.Cents(-3000) {
		t.Fatalf("Expected -30.00 before payment, got %s", got)
	}

	r := New(store)
	receipt, err := r.Record(context.Background(), PaymentRequest{Self: self, Counterparty: other, Amount: money.Cents(3000)})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if receipt.Settlement.FromPartyID != self || receipt.Settlement.ToPartyID != other {
		t.Errorf("Expected self -> other, got %s -> %s", receipt.Settlement.FromPartyID, receipt.Settlement.ToPartyID)
	}
	if receipt.Before != money.Cents(-3000) || receipt.After != 0 {
		t.Errorf("Expected -30.00 -> 0.00, got %s -> %s", receipt.Before, receipt.After)
	}
	if got := balance(t, store, self, other); got != 0 {
		t.Errorf("Expected 0.00, not %s", got)
	}
}

func TestPartialPaymentsMoveTowardZero(t *testing.T) {
	for _, tc := range []struct {
		name   string
		debtor string
	}{
		{"counterparty owes", other},
		{"self owes", self},
	} {
		t.Run(tc.name, func(t *testing.T) {
			store := memory.New()
			creditor := self
			if tc.debtor == self {
				creditor = other
			}
			owes(t, store, tc.debtor, creditor, money.Cents(2000))

			r := New(store)
			prev := balance(t, store, self, other).Abs()
			for i := 0; i < 4; i++ {
				if _, err := r.RecordPayment(context.Background(), self, other, money.Cents(250), ""); err != nil {
					t.Fatalf("payment %d failed: %v", i, err)
				}
				cur := balance(t, store, self, other).Abs()
				if cur >= prev {
					t.Fatalf("payment %d: |balance| went from %s to %s", i, prev, cur)
				}
				prev = cur
			}
			if prev != 0 {
				t.Errorf("Expected settled after four payments, got %s", prev)
			}
		})
	}
}

func TestOverSettlement(t *testing.T) {
	store := memory.New()
	owes(t, store, other, self, money.Cents(1000))
	r := New(store)
	ctx := context.Background()

	_, err := r.RecordPayment(ctx, self, other, money.Cents(502), "")
	if !errors.Is(err, ledger.ErrOverSettlement) {
		t.Fatalf("Expected ErrOverSettlement, got %v", err)
	}

	// One cent over is within tolerance.
	if _, err := r.RecordPayment(ctx, self, other, money.Cents(501), ""); err != nil {
		t.Fatalf("Expected payment within epsilon to succeed, got %v", err)
	}
	if got := balance(t, store, self, other); got != money.Cents(-1) {
		t.Errorf("Expected -0.01, got %s", got)
	}
}

func TestOverpaymentOptIn(t *testing.T) {
	store := memory.New()
	owes(t, store, other, self, money.Cents(1000))
	ctx := context.Background()

	receipt, err := New(store).Record(ctx, PaymentRequest{
		Self: self, Counterparty: other, Amount: money.Cents(800), AllowOverpayment: true,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if receipt.After != money.Cents(-300) {
		t.Errorf("Expected -3.00 after overpayment, got %s", receipt.After)
	}

	store = memory.New()
	owes(t, store, other, self, money.Cents(1000))
	if _, err := New(store, WithOverpayment(true)).RecordPayment(ctx, self, other, money.Cents(800), ""); err != nil {
		t.Errorf("Expected policy default to allow overpayment, got %v", err)
	}
}

func TestNothingOutstanding(t *testing.T) {
	store := memory.New()
	_, err := New(store).RecordPayment(context.Background(), self, other, money.Cents(100), "")
	if !errors.Is(err, ledger.ErrOverSettlement) {
		t.Errorf("Expected ErrOverSettlement on settled pair, got %v", err)
	}
	if rev, _ := store.Revision(context.Background()); rev != 0 {
		t.Errorf("Expected nothing written, revision %d", rev)
	}
}

func TestInvalidRequests(t *testing.T) {
	store := memory.New()
	owes(t, store, other, self, money.Cents(1000))
	r := New(store)

	tests := []struct {
		name string
		req  PaymentRequest
		want error
	}{
		{"zero amount", PaymentRequest{Self: self, Counterparty: other}, ledger.ErrInvalidAmount},
		{"negative amount", PaymentRequest{Self: self, Counterparty: other, Amount: -5}, ledger.ErrInvalidAmount},
		{"same party", PaymentRequest{Self: self, Counterparty: self, Amount: 5}, ledger.ErrSameParty},
		{"missing counterparty", PaymentRequest{Self: self, Amount: 5}, ledger.ErrMissingField},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Record(context.Background(), tc.req)
			if !errors.Is(err, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestGroupScope(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	owes(t, store, other, self, money.Cents(1000))
	inGroup, _ := ledger.NewExpense(money.Cents(400), ledger.PaidBy(self, money.Cents(400)),
		[]models.Contribution{{PartyID: self, Amount: 200}, {PartyID: other, Amount: 200}})
	inGroup.GroupID = "g1"
	if err := store.CreateExpense(ctx, inGroup); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	r := New(store)
	_, err := r.Record(ctx, PaymentRequest{Self: self, Counterparty: other, Amount: money.Cents(500), GroupID: "g1"})
	if !errors.Is(err, ledger.ErrOverSettlement) {
		t.Fatalf("Expected group-scoped cap of 2.00, got %v", err)
	}

	receipt, err := r.Record(ctx, PaymentRequest{Self: self, Counterparty: other, Amount: money.Cents(200), GroupID: "g1"})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if receipt.Settlement.GroupID != "g1" {
		t.Errorf("Expected settlement tagged with g1, got %q", receipt.Settlement.GroupID)
	}
	if got := balance(t, store, self, other); got != money.Cents(500) {
		t.Errorf("Expected overall balance 5.00, got %s", got)
	}
}

type failingStore struct {
	storage.FactStore
}

func (failingStore) AppendSettlement(context.Context, *models.Settlement, int64) error {
	return errors.New("disk full")
}

func TestStoreFailureWritesNothing(t *testing.T) {
	store := memory.New()
	owes(t, store, other, self, money.Cents(1000))

	_, err := New(failingStore{store}).RecordPayment(context.Background(), self, other, money.Cents(100), "")
	if err == nil {
		t.Fatal("Expected error from failing store")
	}
	if got := balance(t, store, self, other); got != money.Cents(500) {
		t.Errorf("Expected balance untouched at 5.00, got %s", got)
	}
}

// racingStore runs write right after LoadFacts, for the first writes loads,
// like a concurrent RPC landing between the reconciler's read and its append.
type racingStore struct {
	*memory.Store
	writes int
	write  func(ctx context.Context) error
}

func (s *racingStore) LoadFacts(ctx context.Context, filter storage.FactFilter) (models.Facts, int64, error) {
	facts, rev, err := s.Store.LoadFacts(ctx, filter)
	if err == nil && s.writes > 0 {
		s.writes--
		if werr := s.write(ctx); werr != nil {
			return models.Facts{}, 0, werr
		}
	}
	return facts, rev, err
}

func TestWriteBetweenLoadAndAppend(t *testing.T) {
	store := memory.New()
	owes(t, store, other, self, money.Cents(1000))

	// other pays self directly, clearing the 5.00 the reconciler just read.
	racing := &racingStore{Store: store, writes: 1, write: func(ctx context.Context) error {
		s, err := ledger.NewSettlement(other, self, money.Cents(500), "cash")
		if err != nil {
			return err
		}
		return store.CreateSettlement(ctx, s)
	}}

	_, err := New(racing).RecordPayment(context.Background(), self, other, money.Cents(500), "")
	if !errors.Is(err, ledger.ErrOverSettlement) {
		t.Fatalf("Expected ErrOverSettlement after reload, got %v", err)
	}
	if got := balance(t, store, self, other); got != 0 {
		t.Errorf("Expected balance settled at 0.00, got %s", got)
	}
}

func TestUnrelatedWriteIsRetried(t *testing.T) {
	store := memory.New()
	owes(t, store, other, self, money.Cents(1000))

	racing := &racingStore{Store: store, writes: 1, write: func(ctx context.Context) error {
		owes(t, store, "carol", "dave", money.Cents(300))
		return nil
	}}

	receipt, err := New(racing).Record(context.Background(), PaymentRequest{Self: self, Counterparty: other, Amount: money.Cents(200)})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if receipt.Before != money.Cents(500) || receipt.After != money.Cents(300) {
		t.Errorf("Expected 5.00 -> 3.00, got %s -> %s", receipt.Before, receipt.After)
	}
	if got := balance(t, store, self, other); got != money.Cents(300) {
		t.Errorf("Expected 3.00 left, got %s", got)
	}
}

func TestLedgerThatKeepsMovingIsRejected(t *testing.T) {
	store := memory.New()
	owes(t, store, other, self, money.Cents(1000))

	racing := &racingStore{Store: store, writes: maxAttempts, write: func(ctx context.Context) error {
		owes(t, store, "carol", "dave", money.Cents(300))
		return nil
	}}

	_, err := New(racing).RecordPayment(context.Background(), self, other, money.Cents(200), "")
	if !errors.Is(err, ledger.ErrDirectionInconsistent) {
		t.Fatalf("Expected ErrDirectionInconsistent, got %v", err)
	}
	if got := balance(t, store, self, other); got != money.Cents(500) {
		t.Errorf("Expected balance untouched at 5.00, got %s", got)
	}
}

func TestConcurrentPaymentsNeverOverSettle(t *testing.T) {
	store := memory.New()
	owes(t, store, other, self, money.Cents(1000))
	r := New(store)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.RecordPayment(context.Background(), self, other, money.Cents(200), ""); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// 5.00 outstanding: two payments of 2.00 fit, a third would over-settle.
	if succeeded != 2 {
		t.Errorf("Expected 2 payments to succeed, got %d", succeeded)
	}
	if got := balance(t, store, self, other); got != money.Cents(100) {
		t.Errorf("Expected 1.00 left, got %s", got)
	}
}

func TestPairLocksRelease(t *testing.T) {
	p := newPairLocks()
	unlock := p.lock("a", "b")
	if len(p.locks) != 1 {
		t.Fatalf("Expected one lock entry, got %d", len(p.locks))
	}
	if pairKey("a", "b") != pairKey("b", "a") {
		t.Error("Expected pair key to ignore order")
	}
	unlock()
	if len(p.locks) != 0 {
		t.Errorf("Expected lock entry to be dropped, got %d", len(p.locks))
	}
}
