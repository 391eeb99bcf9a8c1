package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/clinicore/claimgen/internal/domain/entities"
)

func TestValidationStage_MarkerPresent_RequiresModifier(t *testing.T) {
	knowledge := &fakeKnowledge{
		defaultSnippets: payerRuleSnippets(
			"Aetna allows 99213 with E/M services.",
			"Modifier 25 required (CO-197)",
		),
	}
	stage := NewValidationStage(knowledge, "Aetna", 3)
	state := &entities.PipelineState{
		Bundle: entities.CodeBundle{CPT: "99213", ICD: []string{"I10"}, Procedures: []string{"36415"}},
	}

	if err := stage.Run(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !state.RequiresModifier {
		t.Error("expected modifier requirement for snippet containing CO-197")
	}
	if state.Justification == "" {
		t.Error("expected non-empty justification when triggered")
	}
	if len(state.Evidence) != 2 {
		t.Errorf("expected raw snippet list as evidence, got %d", len(state.Evidence))
	}
}

func TestValidationStage_NoMarker_NoModifier(t *testing.T) {
	knowledge := &fakeKnowledge{
		defaultSnippets: payerRuleSnippets("99213 is billable without restrictions."),
	}
	stage := NewValidationStage(knowledge, "Aetna", 3)
	state := &entities.PipelineState{Bundle: entities.CodeBundle{CPT: "99213"}}

	if err := stage.Run(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.RequiresModifier {
		t.Error("expected no modifier requirement without the marker")
	}
	if state.Justification != "" {
		t.Errorf("expected empty justification, got %q", state.Justification)
	}
}

func TestValidationStage_EmptySnippetSet_NoModifier(t *testing.T) {
	stage := NewValidationStage(&fakeKnowledge{}, "Aetna", 3)
	state := &entities.PipelineState{Bundle: entities.CodeBundle{CPT: "99213"}}

	if err := stage.Run(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.RequiresModifier {
		t.Error("empty snippet set must not trigger the modifier requirement")
	}
}

func TestValidationStage_QueryCarriesBundleAndPayer(t *testing.T) {
	knowledge := &fakeKnowledge{}
	stage := NewValidationStage(knowledge, "Aetna", 3)
	state := &entities.PipelineState{
		Bundle: entities.CodeBundle{CPT: "99213", Procedures: []string{"36415", "93000"}},
	}

	if err := stage.Run(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(knowledge.queries) != 1 {
		t.Fatalf("expected a single retrieval query, got %d", len(knowledge.queries))
	}
	query := knowledge.queries[0]
	for _, part := range []string{"99213", "36415", "93000", "modifier", "Aetna"} {
		if !strings.Contains(query, part) {
			t.Errorf("query missing %q: %s", part, query)
		}
	}
}

func TestValidationStage_BundleAndContextUntouched(t *testing.T) {
	knowledge := &fakeKnowledge{defaultSnippets: payerRuleSnippets("some rule (CO-197)")}
	stage := NewValidationStage(knowledge, "Aetna", 3)
	state := &entities.PipelineState{
		Context: followUpContext(),
		Bundle:  entities.CodeBundle{CPT: "99213", ICD: []string{"I10"}, Modifiers: []string{"25"}},
	}

	if err := stage.Run(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Bundle.CPT != "99213" || len(state.Bundle.Modifiers) != 1 {
		t.Errorf("bundle mutated by validation: %+v", state.Bundle)
	}
	if state.Context.Provider != "Dr. Smith" {
		t.Errorf("context mutated by validation: %+v", state.Context)
	}
}

func TestValidationStage_EmptyBundle_StillQueries(t *testing.T) {
	knowledge := &fakeKnowledge{}
	stage := NewValidationStage(knowledge, "Aetna", 3)

	if err := stage.Run(context.Background(), &entities.PipelineState{}); err != nil {
		t.Fatalf("empty bundle must not crash validation: %v", err)
	}
	if len(knowledge.queries) != 1 {
		t.Errorf("expected a query even for an empty bundle, got %d", len(knowledge.queries))
	}
}
