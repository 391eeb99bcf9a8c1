package providers

import (
	"context"

	"github.com/clinicore/claimgen/internal/domain/entities"
)

// DenialRiskProvider defines the interface for the separately deployed
// denial-risk scoring service.
type DenialRiskProvider interface {
	// Score returns the denial probability for a flattened claim-feature
	// record.
	Score(ctx context.Context, features entities.ClaimFeatures) (*entities.DenialRiskScore, error)
}
