package pipeline

import (
	"context"

	"github.com/clinicore/claimgen/internal/domain/entities"
	"github.com/clinicore/claimgen/internal/domain/providers"
	"github.com/clinicore/claimgen/internal/infrastructure/observability"
	apperrors "github.com/clinicore/claimgen/pkg/errors"
)

// ExtractionStage turns the raw clinical note into a typed
// EncounterContext via a schema-constrained completion call. The note
// itself is the retrieval key; no structured fields exist yet.
type ExtractionStage struct {
	completion providers.CompletionProvider
	knowledge  providers.KnowledgeProvider
	topK       int
}

// NewExtractionStage creates the extraction stage.
func NewExtractionStage(completion providers.CompletionProvider, knowledge providers.KnowledgeProvider, topK int) *ExtractionStage {
	return &ExtractionStage{completion: completion, knowledge: knowledge, topK: topK}
}

// Name returns the stage name.
func (s *ExtractionStage) Name() string { return "extract" }

// Run populates state.Context. A response with no matching function
// invocation degrades to an all-empty context rather than failing the
// run; infrastructure errors surface.
func (s *ExtractionStage) Run(ctx context.Context, state *entities.PipelineState) error {
	snippets, err := s.knowledge.Query(ctx, state.Note, s.topK)
	if err != nil {
		return apperrors.NewExternalError("knowledge query for note context failed", err)
	}

	prompt := buildExtractionPrompt(state.Note, snippets)
	call, err := s.completion.CompleteStructured(ctx, prompt, encounterContextSchema())
	if err != nil {
		return apperrors.NewExternalError("structured extraction completion failed", err)
	}

	if call == nil || call.Name != extractFunctionName {
		observability.LoggerFromContext(ctx).Warn().
			Str("stage", s.Name()).
			Msg("no usable function invocation in completion response; continuing with empty encounter context")
		state.Context = entities.EncounterContext{}
		return nil
	}

	state.Context = entities.EncounterContext{
		VisitType:      call.StringArg("visit_type"),
		Duration:       call.StringArg("duration"),
		Diagnoses:      call.StringSliceArg("diagnosis"),
		Symptoms:       call.StringSliceArg("symptoms"),
		OrderedTests:   call.StringSliceArg("ordered_tests"),
		Provider:       call.StringArg("provider"),
		PlaceOfService: call.StringArg("pos"),
	}
	return nil
}
