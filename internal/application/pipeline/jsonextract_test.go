package pipeline

import (
	"testing"

	"github.com/clinicore/claimgen/internal/domain/entities"
)

func TestExtractJSONPayload_FencedBlock(t *testing.T) {
	response := "Here are the suggested codes:\n```json\n{\"cpt\": \"99213\"}\n```\nLet me know if you need anything else."
	if got := extractJSONPayload(response); got != `{"cpt": "99213"}` {
		t.Errorf("unexpected payload: %q", got)
	}
}

func TestExtractJSONPayload_NoFence_WholeResponse(t *testing.T) {
	response := `  {"cpt": "99213"}  `
	if got := extractJSONPayload(response); got != `{"cpt": "99213"}` {
		t.Errorf("unexpected payload: %q", got)
	}
}

func TestExtractJSONPayload_PrefersFenceOverSurroundingProse(t *testing.T) {
	response := "{\"decoy\": true}\n```json\n{\"cpt\": \"93000\"}\n```"
	if got := extractJSONPayload(response); got != `{"cpt": "93000"}` {
		t.Errorf("expected fenced block to win, got %q", got)
	}
}

func TestDecodeModelJSON_ValidBundle(t *testing.T) {
	response := "```json\n{\"cpt\": \"99213\", \"icd\": [\"I10\"], \"modifiers\": [\"25\"], \"procedures\": [\"36415\"]}\n```"

	var bundle entities.CodeBundle
	if err := decodeModelJSON(response, &bundle); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bundle.CPT != "99213" {
		t.Errorf("wrong cpt: %s", bundle.CPT)
	}
	if len(bundle.ICD) != 1 || bundle.ICD[0] != "I10" {
		t.Errorf("wrong icd: %v", bundle.ICD)
	}
}

func TestDecodeModelJSON_PlainProse_Errors(t *testing.T) {
	var bundle entities.CodeBundle
	err := decodeModelJSON("I'm sorry, I cannot generate codes for this note.", &bundle)
	if err == nil {
		t.Fatal("expected parse error for plain prose")
	}
}

func TestDecodeModelJSON_MalformedFencedBlock_Errors(t *testing.T) {
	var bundle entities.CodeBundle
	err := decodeModelJSON("```json\n{\"cpt\": \"99213\",}\n```", &bundle)
	if err == nil {
		t.Fatal("expected parse error for malformed JSON in fence")
	}
}
