package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clinicore/claimgen/internal/domain/entities"
	"github.com/clinicore/claimgen/internal/domain/providers"
)

// extractFunctionName is the function the completion service must invoke
// for schema-constrained extraction. A response invoking anything else is
// treated as no extraction at all.
const extractFunctionName = "extract_encounter_context"

func encounterContextSchema() providers.FunctionSchema {
	return providers.FunctionSchema{
		Name:        extractFunctionName,
		Description: "Extracts structured encounter context from a clinical SOAP note.",
		Parameters: []providers.FunctionParam{
			{Name: "visit_type", Type: "string", Description: "The type of visit, e.g. 'follow-up', 'new patient'.", Required: true},
			{Name: "duration", Type: "string", Description: "The duration of the visit, e.g. '25 minutes'.", Required: true},
			{Name: "diagnosis", Type: "array", Description: "A list of diagnoses mentioned.", Required: true},
			{Name: "symptoms", Type: "array", Description: "A list of symptoms reported by the patient.", Required: true},
			{Name: "ordered_tests", Type: "array", Description: "A list of any tests that were ordered.", Required: true},
			{Name: "provider", Type: "string", Description: "The name of the healthcare provider.", Required: true},
			{Name: "pos", Type: "string", Description: "The place of service, e.g. 'office', 'outpatient hospital'.", Required: true},
		},
	}
}

func buildExtractionPrompt(note string, snippets []entities.KnowledgeSnippet) string {
	return fmt.Sprintf(`You are an expert medical billing AI.

Analyze the following SOAP note and EMR context, then use the available tool
to extract the required information.

SOAP Note:
%s

EMR Context:
%s`, note, strings.Join(entities.SnippetContents(snippets), "\n"))
}

func buildCodingPrompt(ctx entities.EncounterContext, cptSnippets, icdSnippets []entities.KnowledgeSnippet) string {
	return fmt.Sprintf(`You are a medical coder. Suggest CPT, ICD-10, and modifier codes based on the following patient encounter details and relevant medical codes:

Patient Encounter Details:
Visit type: %s
Duration: %s
Diagnoses: %s
Symptoms: %s
Ordered tests: %s

Relevant CPT Codes:
%s

Relevant ICD-10 Codes:
%s

Return as JSON:
{
  "cpt": "<primary CPT>",
  "icd": ["<ICD list>"],
  "modifiers": [],
  "procedures": ["<CPTs>"]
}`,
		ctx.VisitType,
		ctx.Duration,
		strings.Join(ctx.Diagnoses, ", "),
		strings.Join(ctx.Symptoms, ", "),
		strings.Join(ctx.OrderedTests, ", "),
		strings.Join(entities.SnippetContents(cptSnippets), "\n"),
		strings.Join(entities.SnippetContents(icdSnippets), "\n"),
	)
}

func buildModifierPrompt(state *entities.PipelineState) string {
	bundleJSON, err := json.MarshalIndent(state.Bundle, "", "  ")
	if err != nil {
		bundleJSON = []byte("{}")
	}

	evidence := make([]string, 0, len(state.Evidence)+1)
	if state.Justification != "" {
		evidence = append(evidence, state.Justification)
	}
	evidence = append(evidence, entities.SnippetContents(state.Evidence)...)

	return fmt.Sprintf(`You are a medical coding expert. Based on the following CPT/ICD bundle, patient context, and payer rules evidence, determine if any modifiers need to be applied to the CPT codes. If so, list them.

CPT/ICD Bundle:
%s

Patient Context:
Visit Type: %s
Duration: %s
Diagnoses: %s
Symptoms: %s
Ordered Tests: %s
Provider: %s
POS: %s

Payer Rules Evidence:
%s

Return only a JSON object with a single key 'modifiers' which is a list of strings. If no modifiers are needed, return an empty list.
Example: {"modifiers": ["25", "59"]}`,
		bundleJSON,
		state.Context.VisitType,
		state.Context.Duration,
		strings.Join(state.Context.Diagnoses, ", "),
		strings.Join(state.Context.Symptoms, ", "),
		strings.Join(state.Context.OrderedTests, ", "),
		state.Context.Provider,
		state.Context.PlaceOfService,
		strings.Join(evidence, "\n"),
	)
}
