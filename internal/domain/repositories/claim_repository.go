package repositories

import (
	"context"

	"github.com/clinicore/claimgen/internal/domain/entities"
)

// ClaimRepository defines the interface for persisted claim audit records
type ClaimRepository interface {
	// Create persists a terminal claim record
	Create(ctx context.Context, record *entities.ClaimRecord) error

	// GetByID retrieves a claim record by ID
	GetByID(ctx context.Context, id string) (*entities.ClaimRecord, error)

	// List retrieves claim records, newest first
	List(ctx context.Context, filter ClaimFilter) ([]*entities.ClaimRecord, error)
}

// ClaimFilter defines filters for listing claim records
type ClaimFilter struct {
	RequiresModifier *bool
	Limit            int
	Offset           int
}
