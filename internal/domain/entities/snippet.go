package entities

// SnippetCategory tags a knowledge snippet by the kind of reference
// material it came from.
type SnippetCategory string

const (
	SnippetCategoryDiagnosisCode SnippetCategory = "diagnosis_code"
	SnippetCategoryProcedureCode SnippetCategory = "procedure_code"
	SnippetCategoryPayerRule     SnippetCategory = "payer_rule"
)

// KnowledgeSnippet is a single retrieval result from the knowledge index.
// Snippets are produced fresh per query and never persisted by the
// pipeline; ordering is relevance-ranked as returned by the index, with
// only best-effort stability across repeated identical queries.
type KnowledgeSnippet struct {
	Content  string          `json:"content"`
	Category SnippetCategory `json:"category"`
}

// SnippetContents flattens snippets to their text, preserving rank order.
func SnippetContents(snippets []KnowledgeSnippet) []string {
	out := make([]string, 0, len(snippets))
	for _, s := range snippets {
		out = append(out, s.Content)
	}
	return out
}
