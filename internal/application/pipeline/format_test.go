package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/clinicore/claimgen/internal/domain/entities"
	apperrors "github.com/clinicore/claimgen/pkg/errors"
)

func fixedClock() time.Time {
	return time.Date(2024, 7, 21, 12, 53, 0, 0, time.UTC)
}

func TestFormatterStage_EmitsTransaction(t *testing.T) {
	stage := NewFormatterStage(fixedClock)
	state := &entities.PipelineState{
		Context: followUpContext(),
		Bundle: entities.CodeBundle{
			CPT:       "99213",
			ICD:       []string{"I10", "R51"},
			Modifiers: []string{"25"},
		},
	}

	if err := stage.Run(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if state.EDI == "" {
		t.Fatal("expected non-empty transaction")
	}
	if !strings.Contains(state.EDI, "SV1*HC:99213") {
		t.Errorf("expected SV1*HC: immediately followed by the primary code:\n%s", state.EDI)
	}
	if !strings.Contains(state.EDI, "NM1*85*2*Dr. Smith") {
		t.Errorf("expected provider segment:\n%s", state.EDI)
	}
	if !strings.Contains(state.EDI, "HI*ABK:I10~") {
		t.Errorf("expected primary diagnosis segment:\n%s", state.EDI)
	}
	// Only the first diagnosis code is represented in the template.
	if strings.Contains(state.EDI, "R51") {
		t.Errorf("secondary diagnosis codes must not appear:\n%s", state.EDI)
	}
	if !strings.Contains(state.EDI, "*20240721*1253*") {
		t.Errorf("expected clock-driven date and time:\n%s", state.EDI)
	}
	if !strings.HasPrefix(state.EDI, "ISA*00*") || !strings.HasSuffix(state.EDI, "IEA*1*000000905~") {
		t.Errorf("expected fixed envelope segments:\n%s", state.EDI)
	}
}

func TestFormatterStage_ModifiersColonJoined(t *testing.T) {
	stage := NewFormatterStage(fixedClock)
	state := &entities.PipelineState{
		Bundle: entities.CodeBundle{CPT: "99213", ICD: []string{"I10"}, Modifiers: []string{"25", "59"}},
	}

	if err := stage.Run(context.Background(), state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Modifier order is unspecified; accept either rendering.
	if !strings.Contains(state.EDI, "SV1*HC:99213:25:59*") && !strings.Contains(state.EDI, "SV1*HC:99213:59:25*") {
		t.Errorf("expected colon-joined modifiers in the service line:\n%s", state.EDI)
	}
}

func TestFormatterStage_MissingPrimaryCode_ReportsValidationError(t *testing.T) {
	stage := NewFormatterStage(fixedClock)
	state := &entities.PipelineState{
		Bundle: entities.CodeBundle{ICD: []string{"I10"}},
	}

	err := stage.Run(context.Background(), state)
	if err == nil {
		t.Fatal("expected error for missing primary procedure code")
	}
	if apperrors.TypeOf(err) != apperrors.ErrorTypeValidation {
		t.Errorf("expected validation error, got %v", err)
	}
	if state.EDI != "" {
		t.Error("no transaction must be emitted on formatting failure")
	}
}

func TestFormatterStage_MissingDiagnosis_ReportsValidationError(t *testing.T) {
	stage := NewFormatterStage(fixedClock)
	state := &entities.PipelineState{
		Bundle: entities.CodeBundle{CPT: "99213"},
	}

	err := stage.Run(context.Background(), state)
	if apperrors.TypeOf(err) != apperrors.ErrorTypeValidation {
		t.Errorf("expected validation error for missing diagnosis, got %v", err)
	}
}

func TestFormatterStage_BlankProvider_Substituted(t *testing.T) {
	stage := NewFormatterStage(fixedClock)
	state := &entities.PipelineState{
		Bundle: entities.CodeBundle{CPT: "99213", ICD: []string{"I10"}},
	}

	if err := stage.Run(context.Background(), state); err != nil {
		t.Fatalf("blank provider is an acceptable segment value: %v", err)
	}
	if !strings.Contains(state.EDI, "NM1*85*2******XX*") {
		t.Errorf("expected blank provider segment:\n%s", state.EDI)
	}
}
