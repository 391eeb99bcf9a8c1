package providers

import (
	"context"

	"github.com/clinicore/claimgen/internal/domain/entities"
)

// KnowledgeProvider defines the interface for the payer-knowledge
// retrieval index. Read-only and idempotent from the pipeline's
// perspective; implementations must be safe for arbitrary concurrent use.
type KnowledgeProvider interface {
	// Query returns up to topK snippets ranked by relevance to text.
	Query(ctx context.Context, text string, topK int) ([]entities.KnowledgeSnippet, error)
}
