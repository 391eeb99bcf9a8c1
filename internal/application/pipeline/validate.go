package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/clinicore/claimgen/internal/domain/entities"
	"github.com/clinicore/claimgen/internal/domain/providers"
	apperrors "github.com/clinicore/claimgen/pkg/errors"
)

// bundlingDenialMarker is the NCCI bundling-denial reason code whose
// presence anywhere in a retrieved rule snippet triggers the modifier
// requirement. The match is a literal substring, not semantic.
const bundlingDenialMarker = "CO-197"

const bundlingJustification = "Modifier 25 required due to bundling rules (CO-197)"

// ValidationStage checks retrieved payer rules for a bundling condition
// on the candidate bundle. The payer identity is fixed per deployment.
type ValidationStage struct {
	knowledge providers.KnowledgeProvider
	payer     string
	topK      int
}

// NewValidationStage creates the payer-rule validation stage.
func NewValidationStage(knowledge providers.KnowledgeProvider, payer string, topK int) *ValidationStage {
	return &ValidationStage{knowledge: knowledge, payer: payer, topK: topK}
}

// Name returns the stage name.
func (s *ValidationStage) Name() string { return "validate" }

// Run populates the validation fields of state. The bundle and context
// pass through untouched.
func (s *ValidationStage) Run(ctx context.Context, state *entities.PipelineState) error {
	query := fmt.Sprintf("%s %s modifier %s",
		state.Bundle.CPT,
		strings.Join(state.Bundle.Procedures, " "),
		s.payer)

	snippets, err := s.knowledge.Query(ctx, query, s.topK)
	if err != nil {
		return apperrors.NewExternalError("payer-rule knowledge query failed", err)
	}

	requires := false
	for _, snippet := range snippets {
		if strings.Contains(snippet.Content, bundlingDenialMarker) {
			requires = true
			break
		}
	}

	state.RequiresModifier = requires
	state.Justification = ""
	if requires {
		state.Justification = bundlingJustification
	}
	state.Evidence = snippets
	return nil
}
