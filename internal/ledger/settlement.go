package ledger

import (
	"strings"

	"github.com/mmynk/swisscoin/internal/models"
	"github.com/mmynk/swisscoin/internal/money"
)

// NewSettlement builds a settlement where from paid to the given amount.
func NewSettlement(from, to string, amount money.Amount, note string) (*models.Settlement, error) {
	s := &models.Settlement{
		FromPartyID: from,
		ToPartyID:   to,
		Amount:      amount,
		Note:        strings.TrimSpace(note),
	}
	if err := ValidateSettlement(s); err != nil {
		return nil, err
	}
	return s, nil
}

// ValidateSettlement checks the settlement invariants.
func ValidateSettlement(s *models.Settlement) error {
	if s.FromPartyID == "" {
		return invalid(ErrMissingField, "from_party_id", "required")
	}
	if s.ToPartyID == "" {
		return invalid(ErrMissingField, "to_party_id", "required")
	}
	if s.FromPartyID == s.ToPartyID {
		return invalid(ErrSameParty, "to_party_id", "cannot settle with yourself")
	}
	if s.Amount <= 0 {
		return invalid(ErrInvalidAmount, "amount", "must be positive, got %s", s.Amount)
	}
	return nil
}
