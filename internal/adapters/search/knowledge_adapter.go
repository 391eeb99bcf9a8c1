package search

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/clinicore/claimgen/internal/domain/entities"
	"github.com/clinicore/claimgen/internal/domain/providers"
	typesenseclient "github.com/clinicore/claimgen/internal/infrastructure/clients/typesense"
	apperrors "github.com/clinicore/claimgen/pkg/errors"
)

const collectionName = typesenseclient.KnowledgeCollection

// KnowledgeAdapter implements KnowledgeProvider backed by Typesense
type KnowledgeAdapter struct {
	client *typesenseclient.Client
}

// NewKnowledgeAdapter creates a new Typesense knowledge adapter
func NewKnowledgeAdapter(client *typesenseclient.Client) *KnowledgeAdapter {
	return &KnowledgeAdapter{
		client: client,
	}
}

// Query returns up to topK snippets ranked by relevance to text
func (a *KnowledgeAdapter) Query(ctx context.Context, text string, topK int) ([]entities.KnowledgeSnippet, error) {
	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(text),
		QueryBy: pointer.String("content"),
		PerPage: pointer.Int(topK),
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to query knowledge index", err)
	}

	snippets := []entities.KnowledgeSnippet{}
	if result.Hits == nil {
		return snippets, nil
	}
	for _, hit := range *result.Hits {
		doc := *hit.Document

		snippet := entities.KnowledgeSnippet{}
		if val, ok := doc["content"].(string); ok {
			snippet.Content = val
		}
		if val, ok := doc["category"].(string); ok {
			snippet.Category = entities.SnippetCategory(val)
		}

		snippets = append(snippets, snippet)
	}

	return snippets, nil
}

// Index upserts a knowledge snippet into the index
func (a *KnowledgeAdapter) Index(ctx context.Context, snippet entities.KnowledgeSnippet) error {
	document := map[string]interface{}{
		"id":         uuid.New().String(),
		"content":    snippet.Content,
		"category":   string(snippet.Category),
		"created_at": time.Now().Unix(),
	}

	if err := a.client.IndexSnippet(ctx, document); err != nil {
		return fmt.Errorf("failed to index snippet: %w", err)
	}
	return nil
}

// InitSchema ensures the knowledge collection exists
func (a *KnowledgeAdapter) InitSchema(ctx context.Context) error {
	return a.client.InitSchema(ctx)
}

var _ providers.KnowledgeProvider = (*KnowledgeAdapter)(nil)
