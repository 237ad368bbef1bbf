package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/QuirkyNerd/medical-rag-assistant/models"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
)

// Retriever finds reference snippets semantically relevant to a query.
// Results come back as a flat, typed slice; callers never see the store's
// raw result shape.
type Retriever interface {
	RetrieveSnippets(ctx context.Context, query string) ([]models.ReferenceSnippet, error)
}

// retrievalServiceImpl queries the Chroma reference collection.
type retrievalServiceImpl struct {
	collection chromago.Collection
	embedder   Embedder
	nResults   int
}

// NewRetrievalService creates a Retriever over the given collection.
func NewRetrievalService(collection chromago.Collection, embedder Embedder, nResults int) Retriever {
	return &retrievalServiceImpl{
		collection: collection,
		embedder:   embedder,
		nResults:   nResults,
	}
}

// RetrieveSnippets embeds the query and runs a similarity search over the
// reference collection, ranked by the store.
func (r *retrievalServiceImpl) RetrieveSnippets(ctx context.Context, query string) ([]models.ReferenceSnippet, error) {
	queryEmbedding, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query text: %w", err)
	}
	embedding := embeddings.NewEmbeddingFromFloat32(queryEmbedding)

	results, err := r.collection.Query(
		ctx,
		chromago.WithQueryEmbeddings(embedding),
		chromago.WithNResults(r.nResults),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chromadb: %w", err)
	}

	var snippets []models.ReferenceSnippet
	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()

	if len(documentGroups) > 0 {
		for i, doc := range documentGroups[0] {
			if doc.ContentString() == "" {
				continue
			}
			snippet := models.ReferenceSnippet{Text: doc.ContentString()}
			if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
				snippet.Source = sourceFromMetadata(metadataGroups[0][i])
			}
			snippets = append(snippets, snippet)
		}
	}

	log.Printf("SERVICE: Retrieved %d reference snippets", len(snippets))
	return snippets, nil
}

// sourceFromMetadata digs the source_file attribute out of a document's
// metadata. DocumentMetadata has no public accessor for arbitrary keys, so it
// goes through a JSON round-trip.
func sourceFromMetadata(metadata chromago.DocumentMetadata) string {
	if metadata == nil {
		return ""
	}
	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	var metadataMap map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &metadataMap); err != nil {
		return ""
	}
	source, _ := metadataMap["source_file"].(string)
	return source
}
