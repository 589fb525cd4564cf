package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/storage"
)

// CreateParty persists a new party.
func (s *SQLiteStore) CreateParty(ctx context.Context, party *models.Party) error {
	if party.ID == "" {
		party.ID = uuid.New().String()
	}
	if party.CreatedAt == 0 {
		party.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO parties (id, name, created_at) VALUES (?, ?, ?)",
		party.ID, party.Name, party.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert party: %w", err)
	}
	return nil
}

// GetParty retrieves a party by ID.
func (s *SQLiteStore) GetParty(ctx context.Context, partyID string) (*models.Party, error) {
	party := &models.Party{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM parties WHERE id = ?", partyID,
	).Scan(&party.ID, &party.Name, &party.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: party %s", storage.ErrNotFound, partyID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get party: %w", err)
	}
	return party, nil
}

// ListParties retrieves all parties ordered by name.
func (s *SQLiteStore) ListParties(ctx context.Context) ([]*models.Party, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, created_at FROM parties ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list parties: %w", err)
	}
	defer rows.Close()

	var parties []*models.Party
	for rows.Next() {
		party := &models.Party{}
		if err := rows.Scan(&party.ID, &party.Name, &party.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan party: %w", err)
		}
		parties = append(parties, party)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate parties: %w", err)
	}
	return parties, nil
}
