package pipeline

import (
	"context"
	"log/slog"

	"github.com/ragmesh/ragmesh/model"
	"golang.org/x/sync/semaphore"
)

// TextUnderstandingService extracts typed entities and a sentiment score
// from raw text. Implementations are expected to fail (connection refused,
// timeout, unparsable output); the pipeline recovers with the deterministic
// heuristic fallback and never aborts ingestion over a single document.
type TextUnderstandingService interface {
	Extract(ctx context.Context, text string) (*model.Extraction, error)
}

// EmbeddingService generates a fixed-dimension vector for a text.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ProcessedDocument is the per-document output of the ingestion pipeline.
// Embedding is nil when the embedding service failed for this document,
// which excludes it from semantic search but nothing else.
type ProcessedDocument struct {
	Document   *model.Document
	Extraction *model.Extraction
	Embedding  []float32
}

// Pipeline runs entity extraction and embedding over documents with a
// bounded worker pool. Extraction and embedding calls are independent and
// idempotent, so per-document failures never cancel sibling work.
type Pipeline struct {
	Understanding TextUnderstandingService // optional, heuristic fallback used when nil
	Embedding     EmbeddingService         // optional, documents get no vectors when nil

	workers int64
	log     *slog.Logger
}

// NewPipeline creates a new ingestion pipeline. Workers bounds the number of
// concurrent extraction/embedding calls to respect service rate limits.
func NewPipeline(understanding TextUnderstandingService, embedding EmbeddingService, workers int, logger *slog.Logger) *Pipeline {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		Understanding: understanding,
		Embedding:     embedding,
		workers:       int64(workers),
		log:           logger,
	}
}

// ProcessDocuments extracts entities/sentiment and embeds every document.
// The result slice preserves input order. A failing understanding call falls
// back to HeuristicExtraction, a failing embedding call leaves Embedding nil.
func (p *Pipeline) ProcessDocuments(ctx context.Context, documents []*model.Document) ([]*ProcessedDocument, error) {
	results := make([]*ProcessedDocument, len(documents))
	sem := semaphore.NewWeighted(p.workers)

	for i, doc := range documents {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}

		go func(i int, doc *model.Document) {
			defer sem.Release(1)
			results[i] = p.processDocument(ctx, doc)
		}(i, doc)
	}

	// Wait for all workers to finish
	if err := sem.Acquire(ctx, p.workers); err != nil {
		return nil, err
	}

	return results, nil
}

func (p *Pipeline) processDocument(ctx context.Context, doc *model.Document) *ProcessedDocument {
	text := doc.Content
	if doc.Title != "" {
		text = doc.Title + "\n" + doc.Content
	}

	extraction := p.extract(ctx, doc.ID, text)

	var embedding []float32
	if p.Embedding != nil {
		vector, err := p.Embedding.Embed(ctx, text)
		if err != nil {
			p.log.Warn("Embedding failed, document excluded from semantic search",
				slog.String("document_id", doc.ID), slog.String("error", err.Error()))
		} else {
			embedding = vector
		}
	}

	return &ProcessedDocument{
		Document:   doc,
		Extraction: extraction,
		Embedding:  embedding,
	}
}

func (p *Pipeline) extract(ctx context.Context, documentID string, text string) *model.Extraction {
	if p.Understanding != nil {
		extraction, err := p.Understanding.Extract(ctx, text)
		if err == nil && extraction != nil {
			return extraction
		}
		if err != nil {
			p.log.Warn("Entity extraction failed, using heuristic fallback",
				slog.String("document_id", documentID), slog.String("error", err.Error()))
		}
	}
	return HeuristicExtraction(text)
}
