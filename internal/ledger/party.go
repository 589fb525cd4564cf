package ledger

import (
	"strings"

	"github.com/mmynk/swisscoin/internal/models"
)

// NewParty builds a party with a required display name.
func NewParty(name string) (*models.Party, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid(ErrMissingField, "name", "required")
	}
	return &models.Party{Name: name}, nil
}
