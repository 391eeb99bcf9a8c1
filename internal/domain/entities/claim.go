package entities

import (
	"time"
)

// EncounterContext is the structured record extracted from a clinical note.
// All fields are extracted, never authored; the zero value is the legal
// degenerate result when extraction fails. Downstream stages must tolerate
// empty fields without crashing.
type EncounterContext struct {
	VisitType      string   `json:"visit_type"`
	Duration       string   `json:"duration"`
	Diagnoses      []string `json:"diagnosis"`
	Symptoms       []string `json:"symptoms"`
	OrderedTests   []string `json:"ordered_tests"`
	Provider       string   `json:"provider"`
	PlaceOfService string   `json:"pos"`
}

// IsEmpty reports whether no field was extracted.
func (c EncounterContext) IsEmpty() bool {
	return c.VisitType == "" && c.Duration == "" && len(c.Diagnoses) == 0 &&
		len(c.Symptoms) == 0 && len(c.OrderedTests) == 0 &&
		c.Provider == "" && c.PlaceOfService == ""
}

// CodeBundle is the candidate billing-code bundle for an encounter.
// ICD is ordered with the primary diagnosis first. Modifiers carry set
// semantics: no duplicates after any stage that writes to them, and no
// guaranteed order. The zero value is the legal result of an unparseable
// coding response.
type CodeBundle struct {
	CPT        string   `json:"cpt"`
	ICD        []string `json:"icd"`
	Modifiers  []string `json:"modifiers"`
	Procedures []string `json:"procedures"`
}

// IsEmpty reports whether the bundle carries no codes at all.
func (b CodeBundle) IsEmpty() bool {
	return b.CPT == "" && len(b.ICD) == 0 && len(b.Modifiers) == 0 && len(b.Procedures) == 0
}

// HasModifier reports membership in the modifier set.
func (b CodeBundle) HasModifier(code string) bool {
	for _, m := range b.Modifiers {
		if m == code {
			return true
		}
	}
	return false
}

// ValidationOutcome is the payer-rule check result, produced by the
// validation stage and consumed only by modifier reconciliation.
type ValidationOutcome struct {
	RequiresModifier bool               `json:"requires_modifier"`
	Justification    string             `json:"justification"`
	Evidence         []KnowledgeSnippet `json:"evidence"`
}

// PipelineState is the aggregate threaded through the claim pipeline.
// The orchestrator owns its lifecycle: created at invocation start, each
// stage writes only its own output fields, discarded once the caller reads
// the terminal record. Never shared across runs.
type PipelineState struct {
	Note             string             `json:"note"`
	Context          EncounterContext   `json:"context"`
	Bundle           CodeBundle         `json:"bundle"`
	RequiresModifier bool               `json:"requires_modifier"`
	Justification    string             `json:"justification"`
	Evidence         []KnowledgeSnippet `json:"evidence"`
	EDI              string             `json:"edi"`
}

// ClaimRecord is the persisted audit copy of a completed run. The pipeline
// state itself is never persisted; only this terminal record is, as input
// for downstream denial-model training.
type ClaimRecord struct {
	ID               string           `json:"id" db:"id"`
	Note             string           `json:"note" db:"note"`
	Context          EncounterContext `json:"context" db:"-"`
	Bundle           CodeBundle       `json:"bundle" db:"-"`
	RequiresModifier bool             `json:"requires_modifier" db:"requires_modifier"`
	Justification    string           `json:"justification" db:"justification"`
	EDI              string           `json:"edi" db:"edi"`
	RiskScore        *float64         `json:"risk_score,omitempty" db:"risk_score"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
}
