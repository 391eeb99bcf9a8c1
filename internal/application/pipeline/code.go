package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/clinicore/claimgen/internal/domain/entities"
	"github.com/clinicore/claimgen/internal/domain/providers"
	"github.com/clinicore/claimgen/internal/infrastructure/observability"
	apperrors "github.com/clinicore/claimgen/pkg/errors"
)

// CodingStage turns the encounter context into a candidate code bundle
// using retrieval-augmented completion with JSON recovery.
type CodingStage struct {
	completion providers.CompletionProvider
	knowledge  providers.KnowledgeProvider
	topK       int
}

// NewCodingStage creates the coding stage.
func NewCodingStage(completion providers.CompletionProvider, knowledge providers.KnowledgeProvider, topK int) *CodingStage {
	return &CodingStage{completion: completion, knowledge: knowledge, topK: topK}
}

// Name returns the stage name.
func (s *CodingStage) Name() string { return "code" }

// Run populates state.Bundle. Unparseable completion output degrades to
// an empty bundle; the run never halts on malformed model output.
func (s *CodingStage) Run(ctx context.Context, state *entities.PipelineState) error {
	cptQuery := fmt.Sprintf("CPT codes for %s %s", state.Context.VisitType, state.Context.Duration)
	icdQuery := fmt.Sprintf("ICD-10 codes for %s %s",
		strings.Join(state.Context.Diagnoses, ", "),
		strings.Join(state.Context.Symptoms, ", "))

	cptSnippets, err := s.knowledge.Query(ctx, cptQuery, s.topK)
	if err != nil {
		return apperrors.NewExternalError("procedure-code knowledge query failed", err)
	}
	icdSnippets, err := s.knowledge.Query(ctx, icdQuery, s.topK)
	if err != nil {
		return apperrors.NewExternalError("diagnosis-code knowledge query failed", err)
	}

	response, err := s.completion.Complete(ctx, buildCodingPrompt(state.Context, cptSnippets, icdSnippets))
	if err != nil {
		return apperrors.NewExternalError("coding completion failed", err)
	}

	var bundle entities.CodeBundle
	if err := decodeModelJSON(response, &bundle); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Str("stage", s.Name()).
			Err(err).
			Msg("unparseable coding response; continuing with empty bundle")
		bundle = entities.CodeBundle{}
	}
	bundle.Modifiers = dedupeKeepFirst(bundle.Modifiers)

	state.Bundle = bundle
	return nil
}

// dedupeKeepFirst removes duplicates, keeping first occurrence order.
func dedupeKeepFirst(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
