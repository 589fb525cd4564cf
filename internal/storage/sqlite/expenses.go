package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/money"
	"github.com/mmynk/swisscoin/internal/storage"
)

const (
	kindPayment = "payment"
	kindSplit   = "split"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// CreateExpense persists a new expense with its payments and splits.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertExpense(ctx, tx, expense); err != nil {
		return err
	}
	if err := bumpRevision(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including payments and splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expenses, err := queryExpenses(ctx, s.db, "id = ?", expenseID)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, fmt.Errorf("%w: expense %s", storage.ErrNotFound, expenseID)
	}
	return expenses[0], nil
}

// ReplaceExpense swaps an existing expense for a new version with the same ID.
func (s *SQLiteStore) ReplaceExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var createdAt int64
	var createdBy string
	err = tx.QueryRowContext(ctx, "SELECT created_at, created_by FROM expenses WHERE id = ?", expense.ID).Scan(&createdAt, &createdBy)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: expense %s", storage.ErrNotFound, expense.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to check expense existence: %w", err)
	}

	// Contributions cascade with the expense row
	if _, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to delete old expense: %w", err)
	}

	expense.CreatedAt = createdAt
	if expense.CreatedBy == "" {
		expense.CreatedBy = createdBy
	}
	if err := insertExpense(ctx, tx, expense); err != nil {
		return err
	}
	if err := bumpRevision(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense by ID.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: expense %s", storage.ErrNotFound, expenseID)
	}
	if err := bumpRevision(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertExpense(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	// Generate IDs if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	var periodStart, periodEnd interface{}
	if expense.Period != nil {
		periodStart = expense.Period.Start.Unix()
		periodEnd = expense.Period.End.Unix()
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, subscription_id, description, amount, period_start, period_end, created_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, nullable(expense.GroupID), nullable(expense.SubscriptionID), expense.Description,
		int64(expense.Amount), periodStart, periodEnd, expense.CreatedAt, expense.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for kind, list := range map[string][]models.Contribution{kindPayment: expense.Payments, kindSplit: expense.Splits} {
		for i, c := range list {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO expense_contributions (expense_id, kind, party_id, amount, position) VALUES (?, ?, ?, ?, ?)",
				expense.ID, kind, c.PartyID, int64(c.Amount), i,
			)
			if err != nil {
				return fmt.Errorf("failed to insert %s: %w", kind, err)
			}
		}
	}
	return nil
}

// queryExpenses loads the expenses matching where, then their
// contributions, ordered by creation time. Each result set is closed
// before the next query runs.
func queryExpenses(ctx context.Context, q queryer, where string, args ...interface{}) ([]*models.Expense, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, group_id, subscription_id, description, amount, period_start, period_end, created_at, created_by
		 FROM expenses WHERE `+where+` ORDER BY created_at, id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		e := &models.Expense{}
		var groupID, subID sql.NullString
		var amount int64
		var periodStart, periodEnd sql.NullInt64
		if err := rows.Scan(&e.ID, &groupID, &subID, &e.Description, &amount,
			&periodStart, &periodEnd, &e.CreatedAt, &e.CreatedBy); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.GroupID = groupID.String
		e.SubscriptionID = subID.String
		e.Amount = money.Amount(amount)
		if periodStart.Valid && periodEnd.Valid {
			e.Period = &models.Period{
				Start: time.Unix(periodStart.Int64, 0).UTC(),
				End:   time.Unix(periodEnd.Int64, 0).UTC(),
			}
		}
		expenses = append(expenses, e)
		byID[e.ID] = e
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	if len(expenses) == 0 {
		return nil, nil
	}

	contribRows, err := q.QueryContext(ctx,
		`SELECT expense_id, kind, party_id, amount FROM expense_contributions
		 WHERE expense_id IN (SELECT id FROM expenses WHERE `+where+`)
		 ORDER BY expense_id, kind, position`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query contributions: %w", err)
	}
	defer contribRows.Close()

	for contribRows.Next() {
		var expenseID, kind string
		var c models.Contribution
		var amount int64
		if err := contribRows.Scan(&expenseID, &kind, &c.PartyID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		c.Amount = money.Amount(amount)
		e, ok := byID[expenseID]
		if !ok {
			continue
		}
		if kind == kindPayment {
			e.Payments = append(e.Payments, c)
		} else {
			e.Splits = append(e.Splits, c)
		}
	}
	if err := contribRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contributions: %w", err)
	}
	return expenses, nil
}
