// Package reconcile records payments between two parties in the direction
// their balance dictates.
//
// A caller only says who it is paying or being paid by and how much. The
// reconciler reads the current balance, orients the settlement so the
// debtor pays the creditor, and refuses anything that would not move the
// balance toward zero.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/swisscoin/internal/calculator"
	"github.com/mmynk/swisscoin/internal/ledger"
	"github.com/mmynk/swisscoin/internal/metrics"
	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/money"
	"github.com/mmynk/swisscoin/internal/storage"
)

// PaymentRequest describes a payment between Self and Counterparty.
type PaymentRequest struct {
	Self         string
	Counterparty string
	Amount       money.Amount
	Note         string

	// GroupID and SubscriptionID scope the balance and tag the settlement.
	GroupID        string
	SubscriptionID string

	// AllowOverpayment lets Amount exceed the outstanding balance, flipping
	// who owes whom.
	AllowOverpayment bool

	// CreatedBy defaults to Self.
	CreatedBy string
}

// Receipt is the outcome of a recorded payment.
type Receipt struct {
	Settlement *models.Settlement

	// Before and After are Self's balance with Counterparty around the
	// settlement.
	Before money.Amount
	After  money.Amount
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithOverpayment sets whether requests may over-pay by default.
func WithOverpayment(allow bool) Option {
	return func(r *Reconciler) { r.allowOverpayment = allow }
}

// WithMetrics records reconciliation outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reconciler) { r.metrics = m }
}

type Reconciler struct {
	store            storage.FactStore
	locks            *pairLocks
	allowOverpayment bool
	metrics          *metrics.Metrics
}

func New(store storage.FactStore, opts ...Option) *Reconciler {
	r := &Reconciler{store: store, locks: newPairLocks()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RecordPayment settles amount between self and counterparty across all
// facts, in whichever direction the balance points.
func (r *Reconciler) RecordPayment(ctx context.Context, self, counterparty string, amount money.Amount, note string) (*models.Settlement, error) {
	receipt, err := r.Record(ctx, PaymentRequest{
		Self:         self,
		Counterparty: counterparty,
		Amount:       amount,
		Note:         note,
	})
	if err != nil {
		return nil, err
	}
	return receipt.Settlement, nil
}

// Record validates and appends one settlement. Calls for the same pair are
// serialized, and the append only lands if no other write reached the
// ledger since the balance was read; on any error nothing is written.
func (r *Reconciler) Record(ctx context.Context, req PaymentRequest) (*Receipt, error) {
	receipt, err := r.record(ctx, req)
	r.metrics.Settlement(outcome(err))
	return receipt, err
}

// maxAttempts bounds how often record reloads after another writer moved
// the ledger between its snapshot and its append.
const maxAttempts = 3

func (r *Reconciler) record(ctx context.Context, req PaymentRequest) (*Receipt, error) {
	// Oriented as if the counterparty owes; flipped below when it's the other way.
	settlement, err := ledger.NewSettlement(req.Counterparty, req.Self, req.Amount, req.Note)
	if err != nil {
		return nil, err
	}
	settlement.GroupID = req.GroupID
	settlement.SubscriptionID = req.SubscriptionID
	settlement.CreatedBy = req.CreatedBy
	if settlement.CreatedBy == "" {
		settlement.CreatedBy = req.Self
	}

	unlock := r.locks.lock(req.Self, req.Counterparty)
	defer unlock()

	for attempt := 1; ; attempt++ {
		receipt, err := r.attempt(ctx, req, *settlement)
		if !errors.Is(err, storage.ErrConflict) {
			return receipt, err
		}
		slog.Debug("Ledger moved during reconciliation, reloading",
			"self", req.Self,
			"counterparty", req.Counterparty,
			"attempt", attempt,
		)
		if attempt == maxAttempts {
			return nil, &ledger.ValidationError{
				Kind:    ledger.ErrDirectionInconsistent,
				Field:   "amount",
				Message: fmt.Sprintf("balance kept changing after %d attempts: %v", attempt, err),
			}
		}
	}
}

// attempt validates settlement against one snapshot and appends it only if
// the ledger is still at that snapshot's revision.
func (r *Reconciler) attempt(ctx context.Context, req PaymentRequest, settlement models.Settlement) (*Receipt, error) {
	facts, rev, err := r.store.LoadFacts(ctx, storage.FactFilter{
		GroupID:        req.GroupID,
		SubscriptionID: req.SubscriptionID,
		PartyIDs:       []string{req.Self, req.Counterparty},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load facts: %w", err)
	}

	before := calculator.Balance(req.Self, req.Counterparty, facts)
	if money.IsSettled(before) {
		return nil, &ledger.ValidationError{
			Kind:    ledger.ErrOverSettlement,
			Field:   "amount",
			Message: fmt.Sprintf("nothing outstanding between %s and %s", req.Self, req.Counterparty),
		}
	}
	if before < 0 {
		settlement.FromPartyID, settlement.ToPartyID = req.Self, req.Counterparty
	}

	overpaying := req.Amount > before.Abs()+money.Epsilon
	if overpaying && !(req.AllowOverpayment || r.allowOverpayment) {
		return nil, &ledger.ValidationError{
			Kind:    ledger.ErrOverSettlement,
			Field:   "amount",
			Message: fmt.Sprintf("%s exceeds outstanding %s", req.Amount, before.Abs()),
		}
	}

	after := calculator.Balance(req.Self, req.Counterparty, facts.WithSettlement(&settlement))
	want := before - money.Amount(before.Sign())*req.Amount
	if after != want || (!overpaying && after.Abs() >= before.Abs()) {
		return nil, &ledger.ValidationError{
			Kind:    ledger.ErrDirectionInconsistent,
			Field:   "amount",
			Message: fmt.Sprintf("balance would move from %s to %s", before, after),
		}
	}

	if err := r.store.AppendSettlement(ctx, &settlement, rev); err != nil {
		return nil, fmt.Errorf("failed to store settlement: %w", err)
	}

	slog.Debug("Settlement reconciled",
		"settlement_id", settlement.ID,
		"from", settlement.FromPartyID,
		"to", settlement.ToPartyID,
		"amount", settlement.Amount.String(),
		"before", before.String(),
		"after", after.String(),
		"revision", rev,
	)
	return &Receipt{Settlement: &settlement, Before: before, After: after}, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ledger.ErrOverSettlement):
		return "over_settlement"
	case errors.Is(err, ledger.ErrDirectionInconsistent):
		return "direction_inconsistent"
	case ledger.IsValidation(err):
		return "invalid"
	default:
		return "error"
	}
}
