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

const settlementColumns = `id, group_id, subscription_id, from_party_id, to_party_id, amount, created_at, created_by, note`

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	return s.appendSettlement(ctx, settlement, anyRevision)
}

// AppendSettlement persists settlement only if the ledger is still at
// revision.
func (s *SQLiteStore) AppendSettlement(ctx context.Context, settlement *models.Settlement, revision int64) error {
	return s.appendSettlement(ctx, settlement, revision)
}

// anyRevision makes appendSettlement unconditional.
const anyRevision = -1

func (s *SQLiteStore) appendSettlement(ctx context.Context, settlement *models.Settlement, revision int64) error {
	// Generate ID if not set
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if revision != anyRevision {
		var current int64
		if err := tx.QueryRowContext(ctx, "SELECT revision FROM ledger_revision WHERE id = 1").Scan(&current); err != nil {
			return fmt.Errorf("failed to read ledger revision: %w", err)
		}
		if current != revision {
			return fmt.Errorf("%w: ledger at revision %d, expected %d", storage.ErrConflict, current, revision)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO settlements (`+settlementColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, nullable(settlement.GroupID), nullable(settlement.SubscriptionID),
		settlement.FromPartyID, settlement.ToPartyID, int64(settlement.Amount),
		settlement.CreatedAt, settlement.CreatedBy, nullable(settlement.Note),
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	if err := bumpRevision(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlements, err := querySettlements(ctx, s.db, "id = ?", settlementID)
	if err != nil {
		return nil, err
	}
	if len(settlements) == 0 {
		return nil, fmt.Errorf("%w: settlement %s", storage.ErrNotFound, settlementID)
	}
	return settlements[0], nil
}

// ListSettlements retrieves settlements matching filter, newest first.
func (s *SQLiteStore) ListSettlements(ctx context.Context, filter storage.SettlementFilter) ([]*models.Settlement, error) {
	where := "1 = 1"
	var args []interface{}
	if filter.GroupID != "" {
		where += " AND group_id = ?"
		args = append(args, filter.GroupID)
	}
	if filter.PartyID != "" {
		where += " AND (from_party_id = ? OR to_party_id = ?)"
		args = append(args, filter.PartyID, filter.PartyID)
	}

	settlements, err := querySettlements(ctx, s.db, where, args...)
	if err != nil {
		return nil, err
	}
	// Newest first for listing; fact snapshots keep insertion order.
	for i, j := 0, len(settlements)-1; i < j; i, j = i+1, j-1 {
		settlements[i], settlements[j] = settlements[j], settlements[i]
	}
	return settlements, nil
}

// DeleteSettlement removes a settlement by ID.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, settlementID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM settlements WHERE id = ?", settlementID)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: settlement %s", storage.ErrNotFound, settlementID)
	}
	if err := bumpRevision(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func querySettlements(ctx context.Context, q queryer, where string, args ...interface{}) ([]*models.Settlement, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE `+where+` ORDER BY created_at, rowid`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement := &models.Settlement{}
		var groupID, subID, note sql.NullString
		var amount int64

		if err := rows.Scan(&settlement.ID, &groupID, &subID, &settlement.FromPartyID, &settlement.ToPartyID,
			&amount, &settlement.CreatedAt, &settlement.CreatedBy, &note); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}

		settlement.GroupID = groupID.String
		settlement.SubscriptionID = subID.String
		settlement.Note = note.String
		settlement.Amount = money.Amount(amount)
		settlements = append(settlements, settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}
