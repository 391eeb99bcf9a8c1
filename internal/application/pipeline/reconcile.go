package pipeline

import (
	"context"

	"github.com/clinicore/claimgen/internal/domain/entities"
	"github.com/clinicore/claimgen/internal/domain/providers"
	"github.com/clinicore/claimgen/internal/infrastructure/observability"
	apperrors "github.com/clinicore/claimgen/pkg/errors"
)

// ModifierStage asks the completion service for rule-driven modifier
// additions and merges them into the bundle with set semantics.
type ModifierStage struct {
	completion providers.CompletionProvider
}

// NewModifierStage creates the modifier reconciliation stage.
func NewModifierStage(completion providers.CompletionProvider) *ModifierStage {
	return &ModifierStage{completion: completion}
}

// Name returns the stage name.
func (s *ModifierStage) Name() string { return "reconcile" }

// Run merges suggested modifiers into state.Bundle. Suggestions are
// appended then reduced to a set; the resulting order is unspecified.
// Merging the same suggestion set twice yields the same final set.
func (s *ModifierStage) Run(ctx context.Context, state *entities.PipelineState) error {
	response, err := s.completion.Complete(ctx, buildModifierPrompt(state))
	if err != nil {
		return apperrors.NewExternalError("modifier completion failed", err)
	}

	var suggestion struct {
		Modifiers []string `json:"modifiers"`
	}
	if err := decodeModelJSON(response, &suggestion); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Str("stage", s.Name()).
			Err(err).
			Msg("unparseable modifier response; treating suggestion list as empty")
		suggestion.Modifiers = nil
	}

	combined := append(append([]string{}, state.Bundle.Modifiers...), suggestion.Modifiers...)
	set := make(map[string]struct{}, len(combined))
	for _, m := range combined {
		set[m] = struct{}{}
	}
	merged := make([]string, 0, len(set))
	for m := range set {
		merged = append(merged, m)
	}

	state.Bundle.Modifiers = merged
	return nil
}
