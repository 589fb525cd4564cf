package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/storage"
)

// LoadFacts reads the expenses and settlements matching filter and the
// revision they were read at, all inside one transaction.
func (s *SQLiteStore) LoadFacts(ctx context.Context, filter storage.FactFilter) (models.Facts, int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Facts{}, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var rev int64
	if err := tx.QueryRowContext(ctx, "SELECT revision FROM ledger_revision WHERE id = 1").Scan(&rev); err != nil {
		return models.Facts{}, 0, fmt.Errorf("failed to read ledger revision: %w", err)
	}

	expenseWhere, expenseArgs := expenseConditions(filter)
	expenses, err := queryExpenses(ctx, tx, expenseWhere, expenseArgs...)
	if err != nil {
		return models.Facts{}, 0, err
	}

	settlementWhere, settlementArgs := settlementConditions(filter)
	settlements, err := querySettlements(ctx, tx, settlementWhere, settlementArgs...)
	if err != nil {
		return models.Facts{}, 0, err
	}

	if err := tx.Commit(); err != nil {
		return models.Facts{}, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return models.Facts{Expenses: expenses, Settlements: settlements}, rev, nil
}

func expenseConditions(filter storage.FactFilter) (string, []interface{}) {
	conds := []string{"1 = 1"}
	var args []interface{}
	if filter.GroupID != "" {
		conds = append(conds, "group_id = ?")
		args = append(args, filter.GroupID)
	}
	if filter.SubscriptionID != "" {
		conds = append(conds, "subscription_id = ?")
		args = append(args, filter.SubscriptionID)
	}
	if len(filter.PartyIDs) > 0 {
		conds = append(conds, "id IN (SELECT expense_id FROM expense_contributions WHERE party_id IN ("+placeholders(len(filter.PartyIDs))+"))")
		args = append(args, stringArgs(filter.PartyIDs)...)
	}
	return strings.Join(conds, " AND "), args
}

func settlementConditions(filter storage.FactFilter) (string, []interface{}) {
	conds := []string{"1 = 1"}
	var args []interface{}
	if filter.GroupID != "" {
		conds = append(conds, "group_id = ?")
		args = append(args, filter.GroupID)
	}
	if filter.SubscriptionID != "" {
		conds = append(conds, "subscription_id = ?")
		args = append(args, filter.SubscriptionID)
	}
	if n := len(filter.PartyIDs); n > 0 {
		ph := placeholders(n)
		conds = append(conds, "(from_party_id IN ("+ph+") OR to_party_id IN ("+ph+"))")
		args = append(args, stringArgs(filter.PartyIDs)...)
		args = append(args, stringArgs(filter.PartyIDs)...)
	}
	return strings.Join(conds, " AND "), args
}
