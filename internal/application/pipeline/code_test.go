package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/clinicore/claimgen/internal/domain/entities"
	apperrors "github.com/clinicore/claimgen/pkg/errors"
)

func followUpContext() entities.EncounterContext {
	return entities.EncounterContext{
		VisitType:      "follow-up",
		Duration:       "25 minutes",
		Diagnoses:      []string{"hypertension"},
		Symptoms:       []string{"headache"},
		Provider:       "Dr. Smith",
		PlaceOfService: "office",
	}
}

func TestCodingStage_ParsesFencedResponse(t *testing.T) {
	completion := &fakeCompletion{
		completeResponse: "Sure, here is my suggestion:\n```json\n{\"cpt\": \"99213\", \"icd\": [\"I10\", \"R51\"], \"modifiers\": [], \"procedures\": []}\n```\nThese match the documented visit.",
	}
	knowledge := &fakeKnowledge{}

	stage := NewCodingStage(completion, knowledge, 3)
	state := &entities.PipelineState{Context: followUpContext()}

	if err := stage.Run(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Bundle.CPT != "99213" {
		t.Errorf("wrong cpt: %s", state.Bundle.CPT)
	}
	if len(state.Bundle.ICD) != 2 || state.Bundle.ICD[0] != "I10" {
		t.Errorf("wrong icd order: %v", state.Bundle.ICD)
	}
}

func TestCodingStage_IssuesBothRetrievalQueries(t *testing.T) {
	completion := &fakeCompletion{completeResponse: `{"cpt": "99213", "icd": ["I10"], "modifiers": [], "procedures": []}`}
	knowledge := &fakeKnowledge{}

	stage := NewCodingStage(completion, knowledge, 3)
	state := &entities.PipelineState{Context: followUpContext()}

	if err := stage.Run(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(knowledge.queries) != 2 {
		t.Fatalf("expected 2 retrieval queries, got %d: %v", len(knowledge.queries), knowledge.queries)
	}
	if !strings.Contains(knowledge.queries[0], "CPT codes for follow-up 25 minutes") {
		t.Errorf("unexpected procedure query: %s", knowledge.queries[0])
	}
	if !strings.Contains(knowledge.queries[1], "ICD-10 codes for hypertension headache") {
		t.Errorf("unexpected diagnosis query: %s", knowledge.queries[1])
	}
}

func TestCodingStage_PlainProse_DegradesToEmptyBundle(t *testing.T) {
	completion := &fakeCompletion{completeResponse: "I am unable to provide billing codes for this encounter."}
	stage := NewCodingStage(completion, &fakeKnowledge{}, 3)
	state := &entities.PipelineState{Context: followUpContext()}

	if err := stage.Run(context.Background(), state); err != nil {
		t.Fatalf("parse failure must not abort the run: %v", err)
	}
	if !state.Bundle.IsEmpty() {
		t.Errorf("expected empty bundle, got %+v", state.Bundle)
	}
}

func TestCodingStage_ContextPassedThroughUnchanged(t *testing.T) {
	completion := &fakeCompletion{completeResponse: `{"cpt": "99213", "icd": ["I10"]}`}
	stage := NewCodingStage(completion, &fakeKnowledge{}, 3)

	want := followUpContext()
	state := &entities.PipelineState{Context: followUpContext()}
	if err := stage.Run(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Context.VisitType != want.VisitType || state.Context.Provider != want.Provider {
		t.Errorf("context mutated by coding stage: %+v", state.Context)
	}
}

func TestCodingStage_DuplicateModifiersFromModel_Deduplicated(t *testing.T) {
	completion := &fakeCompletion{completeResponse: `{"cpt": "99213", "icd": ["I10"], "modifiers": ["25", "25", "59"], "procedures": []}`}
	stage := NewCodingStage(completion, &fakeKnowledge{}, 3)
	state := &entities.PipelineState{Context: followUpContext()}

	if err := stage.Run(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state.Bundle.Modifiers) != 2 {
		t.Errorf("expected deduplicated modifiers, got %v", state.Bundle.Modifiers)
	}
}

func TestCodingStage_EmptyContext_StillRuns(t *testing.T) {
	completion := &fakeCompletion{completeResponse: "not json"}
	knowledge := &fakeKnowledge{}
	stage := NewCodingStage(completion, knowledge, 3)
	state := &entities.PipelineState{}

	if err := stage.Run(context.Background(), state); err != nil {
		t.Fatalf("degenerate context must not crash the stage: %v", err)
	}
}

func TestCodingStage_IndexUnreachable_SurfacesExternalError(t *testing.T) {
	knowledge := &fakeKnowledge{err: errors.New("dial tcp: connection refused")}
	stage := NewCodingStage(&fakeCompletion{}, knowledge, 3)

	err := stage.Run(context.Background(), &entities.PipelineState{Context: followUpContext()})
	if !apperrors.IsExternal(err) {
		t.Errorf("expected external error, got %v", err)
	}
}
