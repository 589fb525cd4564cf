package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/mmynk/swisscoin/internal/balance"
	"github.com/mmynk/swisscoin/internal/billing"
	"github.com/mmynk/swisscoin/internal/ledger"
	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/money"
	"github.com/mmynk/swisscoin/internal/storage"
	"github.com/mmynk/swisscoin/pkg/api"
	"github.com/mmynk/swisscoin/pkg/api/apiconnect"
)

// SubscriptionService implements the Connect SubscriptionService.
type SubscriptionService struct {
	apiconnect.UnimplementedSubscriptionServiceHandler
	store    storage.Store
	biller   *billing.Biller
	balances *balance.Service
	now      func() time.Time
}

// NewSubscriptionService creates a SubscriptionService. Manual charges go
// through biller so they share its duplicate-period checks.
func NewSubscriptionService(store storage.Store, biller *billing.Biller, balances *balance.Service) *SubscriptionService {
	return &SubscriptionService{
		store:    store,
		biller:   biller,
		balances: balances,
		now:      time.Now,
	}
}

// CreateSubscription creates a recurring expense template.
func (s *SubscriptionService) CreateSubscription(ctx context.Context, req *connect.Request[api.CreateSubscriptionRequest]) (*connect.Response[api.CreateSubscriptionResponse], error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateSubscription request received",
		"name", req.Msg.Name,
		"amount", req.Msg.Amount,
		"cycle", req.Msg.Cycle,
		"members_count", len(req.Msg.MemberIDs),
	)
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	amount, err := money.Parse(req.Msg.Amount)
	if err != nil {
		return nil, fail("CreateSubscription", err)
	}
	cycle, err := models.ParseCycle(req.Msg.Cycle)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	firstDue, err := time.Parse(time.DateOnly, req.Msg.FirstDueDate)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	payer := req.Msg.PayerID
	if payer == "" {
		payer = self
	}

	sub, err := ledger.NewSubscription(req.Msg.Name, amount, cycle, payer, req.Msg.MemberIDs, firstDue)
	if err != nil {
		return nil, fail("CreateSubscription", err)
	}
	if !takesPart(sub, self) {
		return nil, permissionDenied(errNotInvolved)
	}
	if err := checkParties(ctx, s.store, append([]string{sub.PayerID}, sub.Members...)...); err != nil {
		return nil, fail("CreateSubscription", err)
	}

	if err := s.store.CreateSubscription(ctx, sub); err != nil {
		return nil, fail("CreateSubscription", err)
	}

	slog.Info("Subscription created", "subscription_id", sub.ID, "next_due", sub.NextDueDate.Format(time.DateOnly))
	return connect.NewResponse(&api.CreateSubscriptionResponse{Subscription: toAPISubscription(sub)}), nil
}

// GetSubscription returns a subscription and the caller's share in it.
func (s *SubscriptionService) GetSubscription(ctx context.Context, req *connect.Request[api.GetSubscriptionRequest]) (*connect.Response[api.GetSubscriptionResponse], error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetSubscription request received", "subscription_id", req.Msg.SubscriptionID)
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	sub, err := memberSubscription(ctx, s.store, self, req.Msg.SubscriptionID)
	if err != nil {
		return nil, fail("GetSubscription", err, "subscription_id", req.Msg.SubscriptionID)
	}
	share, err := s.balances.SubscriptionShare(ctx, self, sub.ID)
	if err != nil {
		return nil, fail("GetSubscription", err, "subscription_id", sub.ID)
	}

	return connect.NewResponse(&api.GetSubscriptionResponse{
		Subscription: toAPISubscription(sub),
		Share:        share.String(),
	}), nil
}

// PauseSubscription stops billing until the subscription is resumed.
func (s *SubscriptionService) PauseSubscription(ctx context.Context, req *connect.Request[api.PauseSubscriptionRequest]) (*connect.Response[api.PauseSubscriptionResponse], error) {
	slog.Info("PauseSubscription request received", "subscription_id", req.Msg.SubscriptionID)
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	sub, err := s.setActive(ctx, req.Msg.SubscriptionID, false)
	if err != nil {
		return nil, fail("PauseSubscription", err, "subscription_id", req.Msg.SubscriptionID)
	}

	slog.Info("Subscription paused", "subscription_id", sub.ID)
	return connect.NewResponse(&api.PauseSubscriptionResponse{Subscription: toAPISubscription(sub)}), nil
}

// ResumeSubscription restarts billing from the next unpaid period.
func (s *SubscriptionService) ResumeSubscription(ctx context.Context, req *connect.Request[api.ResumeSubscriptionRequest]) (*connect.Response[api.ResumeSubscriptionResponse], error) {
	slog.Info("ResumeSubscription request received", "subscription_id", req.Msg.SubscriptionID)
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	sub, err := s.setActive(ctx, req.Msg.SubscriptionID, true)
	if err != nil {
		return nil, fail("ResumeSubscription", err, "subscription_id", req.Msg.SubscriptionID)
	}

	slog.Info("Subscription resumed", "subscription_id", sub.ID)
	return connect.NewResponse(&api.ResumeSubscriptionResponse{Subscription: toAPISubscription(sub)}), nil
}

// ChargeSubscription records the current period's payment immediately.
func (s *SubscriptionService) ChargeSubscription(ctx context.Context, req *connect.Request[api.ChargeSubscriptionRequest]) (*connect.Response[api.ChargeSubscriptionResponse], error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ChargeSubscription request received", "subscription_id", req.Msg.SubscriptionID)
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	if _, err := memberSubscription(ctx, s.store, self, req.Msg.SubscriptionID); err != nil {
		return nil, fail("ChargeSubscription", err, "subscription_id", req.Msg.SubscriptionID)
	}
	payment, err := s.biller.Charge(ctx, req.Msg.SubscriptionID, s.now())
	if err != nil {
		return nil, fail("ChargeSubscription", err, "subscription_id", req.Msg.SubscriptionID)
	}
	sub, err := s.store.GetSubscription(ctx, req.Msg.SubscriptionID)
	if err != nil {
		return nil, fail("ChargeSubscription", err, "subscription_id", req.Msg.SubscriptionID)
	}

	return connect.NewResponse(&api.ChargeSubscriptionResponse{
		Payment:      toAPIExpense(payment),
		Subscription: toAPISubscription(sub),
	}), nil
}

// setActive pauses or resumes a subscription the caller takes part in.
func (s *SubscriptionService) setActive(ctx context.Context, subscriptionID string, active bool) (*models.Subscription, error) {
	self, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := memberSubscription(ctx, s.store, self, subscriptionID); err != nil {
		return nil, err
	}
	return s.store.SetSubscriptionActive(ctx, subscriptionID, active)
}

func takesPart(sub *models.Subscription, partyID string) bool {
	if sub.PayerID == partyID {
		return true
	}
	for _, m := range sub.Members {
		if m == partyID {
			return true
		}
	}
	return false
}
