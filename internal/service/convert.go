package service

import (
	"fmt"
	"time"

	"github.com/mmynk/swisscoin/internal/calculator"
	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/money"
	"github.com/mmynk/swisscoin/pkg/api"
)

func toAPIParty(p *models.Party) *api.Party {
	return &api.Party{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt}
}

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIGroup(g *models.Group) *api.Group {
	return &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		Members:   g.Members,
		CreatedAt: g.CreatedAt,
	}
}

func toAPIContributions(list []models.Contribution) []api.Contribution {
	out := make([]api.Contribution, len(list))
	for i, c := range list {
		out[i] = api.Contribution{PartyID: c.PartyID, Amount: c.Amount.String()}
	}
	return out
}

func toAPIExpense(e *models.Expense) *api.Expense {
	out := &api.Expense{
		ID:             e.ID,
		GroupID:        e.GroupID,
		SubscriptionID: e.SubscriptionID,
		Description:    e.Description,
		Amount:         e.Amount.String(),
		Payments:       toAPIContributions(e.Payments),
		Splits:         toAPIContributions(e.Splits),
		CreatedAt:      e.CreatedAt,
		CreatedBy:      e.CreatedBy,
	}
	if e.Period != nil {
		out.PeriodStart = e.Period.Start.Format(time.DateOnly)
		out.PeriodEnd = e.Period.End.Format(time.DateOnly)
	}
	return out
}

func toAPISettlement(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:             s.ID,
		GroupID:        s.GroupID,
		SubscriptionID: s.SubscriptionID,
		FromPartyID:    s.FromPartyID,
		ToPartyID:      s.ToPartyID,
		Amount:         s.Amount.String(),
		Note:           s.Note,
		CreatedAt:      s.CreatedAt,
		CreatedBy:      s.CreatedBy,
	}
}

func toAPISubscription(s *models.Subscription) *api.Subscription {
	return &api.Subscription{
		ID:          s.ID,
		Name:        s.Name,
		Amount:      s.Amount.String(),
		Cycle:       string(s.Cycle),
		PayerID:     s.PayerID,
		Members:     s.Members,
		NextDueDate: s.NextDueDate.Format(time.DateOnly),
		Active:      s.Active,
		CreatedAt:   s.CreatedAt,
	}
}

func toAPIPairBalances(list []calculator.PairBalance) []api.PairBalance {
	out := make([]api.PairBalance, len(list))
	for i, b := range list {
		out[i] = api.PairBalance{PartyID: b.PartyID, Balance: b.Balance.String()}
	}
	return out
}

func toAPIMemberBalances(list []calculator.MemberBalance) []api.MemberBalance {
	out := make([]api.MemberBalance, len(list))
	for i, b := range list {
		out[i] = api.MemberBalance{
			PartyID:    b.PartyID,
			NetBalance: b.NetBalance.String(),
			TotalPaid:  b.TotalPaid.String(),
			TotalOwed:  b.TotalOwed.String(),
		}
	}
	return out
}

func toAPIDebts(list []calculator.DebtEdge) []api.Debt {
	out := make([]api.Debt, len(list))
	for i, d := range list {
		out[i] = api.Debt{FromPartyID: d.From, ToPartyID: d.To, Amount: d.Amount.String()}
	}
	return out
}

func fromAPIContributions(field string, list []api.Contribution) ([]models.Contribution, error) {
	out := make([]models.Contribution, len(list))
	for i, c := range list {
		amount, err := money.Parse(c.Amount)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		out[i] = models.Contribution{PartyID: c.PartyID, Amount: amount}
	}
	return out, nil
}

func fromAPIItems(list []api.Item) ([]models.Item, error) {
	out := make([]models.Item, len(list))
	for i, item := range list {
		amount, err := money.Parse(item.Amount)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		out[i] = models.Item{
			Description: item.Description,
			Amount:      amount,
			AssignedTo:  item.AssignedTo,
		}
	}
	return out, nil
}
