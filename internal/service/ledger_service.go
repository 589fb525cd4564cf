package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/mmynk/swisscoin/internal/balance"
	"github.com/mmynk/swisscoin/internal/calculator"
	"github.com/mmynk/swisscoin/internal/ledger"
	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/money"
	"github.com/mmynk/swisscoin/internal/reconcile"
	"github.com/mmynk/swisscoin/internal/storage"
	"github.com/mmynk/swisscoin/pkg/api"
	"github.com/mmynk/swisscoin/pkg/api/apiconnect"
)

var (
	errNoSplits        = errors.New("either splits or split_among is required")
	errAmbiguousSplits = errors.New("splits cannot be combined with split_among or items")
	errRecurringEdit   = errors.New("recurring payments cannot be edited; delete and charge again")
)

// LedgerService implements the Connect LedgerService.
type LedgerService struct {
	apiconnect.UnimplementedLedgerServiceHandler
	store      storage.Store
	balances   *balance.Service
	reconciler *reconcile.Reconciler
}

// NewLedgerService creates a LedgerService over the given store.
func NewLedgerService(store storage.Store, balances *balance.Service, reconciler *reconcile.Reconciler) *LedgerService {
	return &LedgerService{
		store:      store,
		balances:   balances,
		reconciler: reconciler,
	}
}

// CreateExpense records a new shared expense.
func (s *LedgerService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateExpense request received",
		"party_id", self,
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount,
	)
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	expense, err := s.buildExpense(ctx, self, req.Msg.ExpenseInput)
	if err != nil {
		return nil, fail("CreateExpense", err, "party_id", self)
	}
	expense.CreatedBy = self

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, fail("CreateExpense", err, "party_id", self)
	}
	if err := s.addToGroup(ctx, expense); err != nil {
		// The expense is stored; membership catches up on the next write.
		slog.Warn("Failed to add participants to group", "group_id", expense.GroupID, "error", err)
	}

	slog.Info("Expense created", "expense_id", expense.ID, "amount", expense.Amount.String())
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// GetExpense retrieves an expense the caller can see.
func (s *LedgerService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetExpense request received", "expense_id", req.Msg.ExpenseID)
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	expense, err := s.visibleExpense(ctx, self, req.Msg.ExpenseID)
	if err != nil {
		return nil, fail("GetExpense", err, "expense_id", req.Msg.ExpenseID)
	}
	return connect.NewResponse(&api.GetExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// ReplaceExpense swaps an expense for a corrected version. Balances are
// recomputed from the new contributions.
func (s *LedgerService) ReplaceExpense(ctx context.Context, req *connect.Request[api.ReplaceExpenseRequest]) (*connect.Response[api.ReplaceExpenseResponse], error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ReplaceExpense request received", "expense_id", req.Msg.ExpenseID, "party_id", self)
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	existing, err := s.visibleExpense(ctx, self, req.Msg.ExpenseID)
	if err != nil {
		return nil, fail("ReplaceExpense", err, "expense_id", req.Msg.ExpenseID)
	}
	if existing.IsRecurring() {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errRecurringEdit)
	}

	expense, err := s.buildExpense(ctx, self, req.Msg.ExpenseInput)
	if err != nil {
		return nil, fail("ReplaceExpense", err, "expense_id", existing.ID)
	}
	expense.ID = existing.ID
	expense.CreatedAt = existing.CreatedAt
	expense.CreatedBy = existing.CreatedBy
	if err := ledger.Revalidate(expense); err != nil {
		return nil, fail("ReplaceExpense", err, "expense_id", existing.ID)
	}

	if err := s.store.ReplaceExpense(ctx, expense); err != nil {
		return nil, fail("ReplaceExpense", err, "expense_id", existing.ID)
	}
	if err := s.addToGroup(ctx, expense); err != nil {
		slog.Warn("Failed to add participants to group", "group_id", expense.GroupID, "error", err)
	}

	slog.Info("Expense replaced", "expense_id", expense.ID)
	return connect.NewResponse(&api.ReplaceExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// DeleteExpense removes an expense and its effect on balances.
func (s *LedgerService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID, "party_id", self)
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	if _, err := s.visibleExpense(ctx, self, req.Msg.ExpenseID); err != nil {
		return nil, fail("DeleteExpense", err, "expense_id", req.Msg.ExpenseID)
	}
	if err := s.store.DeleteExpense(ctx, req.Msg.ExpenseID); err != nil {
		return nil, fail("DeleteExpense", err, "expense_id", req.Msg.ExpenseID)
	}

	slog.Info("Expense deleted", "expense_id", req.Msg.ExpenseID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// CreateSettlement records a settlement with an explicit direction. It is
// not checked against the balance; use RecordPayment for that.
func (s *LedgerService) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateSettlement request received",
		"from", req.Msg.FromPartyID,
		"to", req.Msg.ToPartyID,
		"amount", req.Msg.Amount,
	)
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	amount, err := money.Parse(req.Msg.Amount)
	if err != nil {
		return nil, fail("CreateSettlement", err)
	}
	settlement, err := ledger.NewSettlement(req.Msg.FromPartyID, req.Msg.ToPartyID, amount, req.Msg.Note)
	if err != nil {
		return nil, fail("CreateSettlement", err)
	}
	if self != settlement.FromPartyID && self != settlement.ToPartyID {
		return nil, permissionDenied(errNotInvolved)
	}
	if err := checkParties(ctx, s.store, settlement.FromPartyID, settlement.ToPartyID); err != nil {
		return nil, fail("CreateSettlement", err)
	}
	if req.Msg.GroupID != "" {
		if _, err := s.memberGroup(ctx, self, req.Msg.GroupID); err != nil {
			return nil, fail("CreateSettlement", err, "group_id", req.Msg.GroupID)
		}
	}
	settlement.GroupID = req.Msg.GroupID
	settlement.CreatedBy = self

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, fail("CreateSettlement", err)
	}

	slog.Info("Settlement created", "settlement_id", settlement.ID)
	return connect.NewResponse(&api.CreateSettlementResponse{Settlement: toAPISettlement(settlement)}), nil
}

// RecordPayment records a payment between the caller and a counterparty,
// directed by their current balance.
func (s *LedgerService) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RecordPayment request received",
		"party_id", self,
		"counterparty_id", req.Msg.CounterpartyID,
		"amount", req.Msg.Amount,
	)
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	amount, err := money.Parse(req.Msg.Amount)
	if err != nil {
		return nil, fail("RecordPayment", err)
	}
	if err := checkParties(ctx, s.store, req.Msg.CounterpartyID); err != nil {
		return nil, fail("RecordPayment", err)
	}
	scope := balance.Scope{GroupID: req.Msg.GroupID, SubscriptionID: req.Msg.SubscriptionID}
	if err := s.checkScope(ctx, self, scope); err != nil {
		return nil, fail("RecordPayment", err, "scope", scope.String())
	}

	receipt, err := s.reconciler.Record(ctx, reconcile.PaymentRequest{
		Self:             self,
		Counterparty:     req.Msg.CounterpartyID,
		Amount:           amount,
		Note:             req.Msg.Note,
		GroupID:          scope.GroupID,
		SubscriptionID:   scope.SubscriptionID,
		AllowOverpayment: req.Msg.AllowOverpayment,
	})
	if err != nil {
		return nil, fail("RecordPayment", err, "party_id", self, "counterparty_id", req.Msg.CounterpartyID)
	}

	return connect.NewResponse(&api.RecordPaymentResponse{
		Settlement:    toAPISettlement(receipt.Settlement),
		BalanceBefore: receipt.Before.String(),
		BalanceAfter:  receipt.After.String(),
	}), nil
}

// DeleteSettlement removes a settlement the caller is party to.
func (s *LedgerService) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteSettlement request received", "settlement_id", req.Msg.SettlementID)
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		return nil, fail("DeleteSettlement", err, "settlement_id", req.Msg.SettlementID)
	}
	if self != settlement.FromPartyID && self != settlement.ToPartyID {
		return nil, permissionDenied(errNotInvolved)
	}
	if err := s.store.DeleteSettlement(ctx, settlement.ID); err != nil {
		return nil, fail("DeleteSettlement", err, "settlement_id", settlement.ID)
	}

	slog.Info("Settlement deleted", "settlement_id", settlement.ID)
	return connect.NewResponse(&api.DeleteSettlementResponse{}), nil
}

// GetBalance returns the caller's balance with one counterparty, or with
// every counterparty they have an open balance with.
func (s *LedgerService) GetBalance(ctx context.Context, req *connect.Request[api.GetBalanceRequest]) (*connect.Response[api.GetBalanceResponse], error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	scope := balance.Scope{GroupID: req.Msg.GroupID, SubscriptionID: req.Msg.SubscriptionID}
	slog.Info("GetBalance request received",
		"party_id", self,
		"counterparty_id", req.Msg.CounterpartyID,
		"scope", scope.String(),
	)
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}
	if err := s.checkScope(ctx, self, scope); err != nil {
		return nil, fail("GetBalance", err, "scope", scope.String())
	}

	if req.Msg.CounterpartyID != "" {
		b, err := s.balances.Compute(ctx, self, req.Msg.CounterpartyID, scope)
		if err != nil {
			return nil, fail("GetBalance", err)
		}
		return connect.NewResponse(&api.GetBalanceResponse{Balance: b.String()}), nil
	}

	list, err := s.balances.Overview(ctx, self, scope)
	if err != nil {
		return nil, fail("GetBalance", err)
	}
	return connect.NewResponse(&api.GetBalanceResponse{Balances: toAPIPairBalances(list)}), nil
}

// GetGroupShare returns the caller's net position in a group.
func (s *LedgerService) GetGroupShare(ctx context.Context, req *connect.Request[api.GetGroupShareRequest]) (*connect.Response[api.GetGroupShareResponse], error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroupShare request received", "group_id", req.Msg.GroupID, "party_id", self)
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}
	if _, err := s.memberGroup(ctx, self, req.Msg.GroupID); err != nil {
		return nil, fail("GetGroupShare", err, "group_id", req.Msg.GroupID)
	}

	share, err := s.balances.GroupShare(ctx, self, req.Msg.GroupID)
	if err != nil {
		return nil, fail("GetGroupShare", err, "group_id", req.Msg.GroupID)
	}
	return connect.NewResponse(&api.GetGroupShareResponse{Share: share.String()}), nil
}

// GetGroupBalances returns every member's net balance in a group and a
// simplified settle-up plan.
func (s *LedgerService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroupBalances request received", "group_id", req.Msg.GroupID)
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}
	if _, err := s.memberGroup(ctx, self, req.Msg.GroupID); err != nil {
		return nil, fail("GetGroupBalances", err, "group_id", req.Msg.GroupID)
	}

	members, debts, err := s.balances.GroupBalances(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, fail("GetGroupBalances", err, "group_id", req.Msg.GroupID)
	}

	slog.Info("GetGroupBalances successful", "group_id", req.Msg.GroupID, "members", len(members), "debts", len(debts))
	return connect.NewResponse(&api.GetGroupBalancesResponse{
		Members: toAPIMemberBalances(members),
		Debts:   toAPIDebts(debts),
	}), nil
}

// ListSettlements lists the caller's settlements, newest first. With a
// group, every settlement in that group is listed.
func (s *LedgerService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListSettlements request received", "party_id", self, "group_id", req.Msg.GroupID)

	filter := storage.SettlementFilter{PartyID: self}
	if req.Msg.GroupID != "" {
		if _, err := s.memberGroup(ctx, self, req.Msg.GroupID); err != nil {
			return nil, fail("ListSettlements", err, "group_id", req.Msg.GroupID)
		}
		filter = storage.SettlementFilter{GroupID: req.Msg.GroupID}
	}

	settlements, err := s.store.ListSettlements(ctx, filter)
	if err != nil {
		return nil, fail("ListSettlements", err)
	}
	out := make([]*api.Settlement, len(settlements))
	for i, st := range settlements {
		out[i] = toAPISettlement(st)
	}
	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: out}), nil
}

// buildExpense turns request input into a validated expense.
func (s *LedgerService) buildExpense(ctx context.Context, self string, in api.ExpenseInput) (*models.Expense, error) {
	amount, err := money.Parse(in.Amount)
	if err != nil {
		return nil, err
	}

	payments := ledger.PaidBy(self, amount)
	if len(in.Payments) > 0 {
		if payments, err = fromAPIContributions("payments", in.Payments); err != nil {
			return nil, err
		}
	}

	var splits []models.Contribution
	switch {
	case len(in.Splits) > 0 && (len(in.SplitAmong) > 0 || len(in.Items) > 0):
		return nil, connect.NewError(connect.CodeInvalidArgument, errAmbiguousSplits)
	case len(in.Splits) > 0:
		if splits, err = fromAPIContributions("splits", in.Splits); err != nil {
			return nil, err
		}
	case len(in.SplitAmong) > 0 && len(in.Items) > 0:
		items, err := fromAPIItems(in.Items)
		if err != nil {
			return nil, err
		}
		perPerson, err := calculator.CalculateSplit(items, amount, in.SplitAmong)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		splits = calculator.SplitContributions(perPerson, in.SplitAmong)
	case len(in.SplitAmong) > 0:
		if splits, err = ledger.EqualSplits(amount, in.SplitAmong); err != nil {
			return nil, err
		}
	default:
		return nil, connect.NewError(connect.CodeInvalidArgument, errNoSplits)
	}

	expense, err := ledger.NewExpense(amount, payments, splits)
	if err != nil {
		return nil, err
	}
	expense.Description = in.Description
	expense.GroupID = in.GroupID

	if err := checkParties(ctx, s.store, expense.Parties()...); err != nil {
		return nil, err
	}
	if expense.GroupID != "" {
		if _, err := s.memberGroup(ctx, self, expense.GroupID); err != nil {
			return nil, err
		}
	} else if !involved(expense, self) {
		return nil, permissionDenied(errNotInvolved)
	}
	return expense, nil
}

// visibleExpense loads an expense the caller takes part in or whose group
// they belong to.
func (s *LedgerService) visibleExpense(ctx context.Context, self, expenseID string) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if involved(expense, self) {
		return expense, nil
	}
	if expense.GroupID != "" {
		if _, err := s.memberGroup(ctx, self, expense.GroupID); err == nil {
			return expense, nil
		}
	}
	return nil, permissionDenied(errNotInvolved)
}

// memberGroup loads a group the caller belongs to.
func (s *LedgerService) memberGroup(ctx context.Context, self, groupID string) (*models.Group, error) {
	return memberGroup(ctx, s.store, self, groupID)
}

// checkScope makes sure the caller may see the scope they asked for.
func (s *LedgerService) checkScope(ctx context.Context, self string, scope balance.Scope) error {
	if scope.GroupID != "" {
		if _, err := s.memberGroup(ctx, self, scope.GroupID); err != nil {
			return err
		}
	}
	if scope.SubscriptionID != "" {
		if _, err := memberSubscription(ctx, s.store, self, scope.SubscriptionID); err != nil {
			return err
		}
	}
	return nil
}

// checkParties rejects references to parties that do not exist.
func checkParties(ctx context.Context, store storage.Store, partyIDs ...string) error {
	for _, id := range partyIDs {
		if _, err := store.GetParty(ctx, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown party %s", id))
			}
			return err
		}
	}
	return nil
}

// addToGroup adds expense participants who are not group members yet.
func (s *LedgerService) addToGroup(ctx context.Context, expense *models.Expense) error {
	if expense.GroupID == "" {
		return nil
	}
	group, err := s.store.GetGroup(ctx, expense.GroupID)
	if err != nil {
		return err
	}

	var missing []string
	for _, p := range expense.Parties() {
		if !group.HasMember(p) {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	slog.Info("Adding participants to group", "group_id", group.ID, "new_members", missing)
	return s.store.AddGroupMembers(ctx, group.ID, missing)
}

func involved(e *models.Expense, partyID string) bool {
	for _, p := range e.Parties() {
		if p == partyID {
			return true
		}
	}
	return false
}

// memberGroup loads a group and checks the caller belongs to it.
func memberGroup(ctx context.Context, store storage.Store, self, groupID string) (*models.Group, error) {
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(self) {
		return nil, permissionDenied(fmt.Errorf("not a member of group %s", groupID))
	}
	return group, nil
}

// memberSubscription loads a subscription the caller pays for or shares.
func memberSubscription(ctx context.Context, store storage.Store, self, subscriptionID string) (*models.Subscription, error) {
	sub, err := store.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if !takesPart(sub, self) {
		return nil, permissionDenied(fmt.Errorf("not a member of subscription %s", subscriptionID))
	}
	return sub, nil
}
