package pipeline

import (
	"context"
	"strings"

	"github.com/clinicore/claimgen/internal/domain/entities"
	"github.com/clinicore/claimgen/internal/domain/providers"
)

// fakeCompletion scripts the completion service. Prompts are recorded for
// assertions on prompt construction.
type fakeCompletion struct {
	completeResponse string
	completeQueue    []string
	completeErr      error
	structuredCall   *providers.FunctionCall
	structuredErr    error

	prompts           []string
	structuredPrompts []string
}

func (f *fakeCompletion) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.completeQueue) > 0 {
		next := f.completeQueue[0]
		f.completeQueue = f.completeQueue[1:]
		return next, f.completeErr
	}
	return f.completeResponse, f.completeErr
}

func (f *fakeCompletion) CompleteStructured(_ context.Context, prompt string, _ providers.FunctionSchema) (*providers.FunctionCall, error) {
	f.structuredPrompts = append(f.structuredPrompts, prompt)
	return f.structuredCall, f.structuredErr
}

// fakeKnowledge answers queries from a substring-keyed script, falling
// back to defaultSnippets. Queries are recorded in order.
type fakeKnowledge struct {
	bySubstring     map[string][]entities.KnowledgeSnippet
	defaultSnippets []entities.KnowledgeSnippet
	err             error

	queries []string
}

func (f *fakeKnowledge) Query(_ context.Context, text string, _ int) ([]entities.KnowledgeSnippet, error) {
	f.queries = append(f.queries, text)
	if f.err != nil {
		return nil, f.err
	}
	for key, snippets := range f.bySubstring {
		if strings.Contains(text, key) {
			return snippets, nil
		}
	}
	return f.defaultSnippets, nil
}

func payerRuleSnippets(contents ...string) []entities.KnowledgeSnippet {
	out := make([]entities.KnowledgeSnippet, 0, len(contents))
	for _, c := range contents {
		out = append(out, entities.KnowledgeSnippet{Content: c, Category: entities.SnippetCategoryPayerRule})
	}
	return out
}
