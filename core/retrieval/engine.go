package retrieval

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/ragmesh/ragmesh/core/graph"
	"github.com/ragmesh/ragmesh/core/pipeline"
	"github.com/ragmesh/ragmesh/model"
)

// defaultLimit applies when a query does not specify a result limit.
const defaultLimit = 5

// DocumentSearcher provides keyword search over the document store. The
// engine treats it as optional; keyword retrieval is skipped without it.
type DocumentSearcher interface {
	SearchDocuments(ctx context.Context, query string, limit int) ([]*model.Document, error)
}

// Engine performs hybrid retrieval over a knowledge graph: keyword search,
// semantic similarity and graph-neighbor expansion, fused into a single
// ranked result list.
//
// Every stage degrades gracefully. A missing searcher, a failing embedder or
// an empty embedding index each skip their stage; the engine only returns an
// error for conditions that invalidate the whole query.
type Engine struct {
	graph    *graph.Graph
	index    *EmbeddingIndex
	searcher DocumentSearcher
	embedder pipeline.EmbeddingService
	config   *model.Config
	logger   *slog.Logger
}

// NewEngine creates a retrieval engine over a built graph. The embedding
// index is populated from the graph's vectors; searcher and embedder may be
// nil to disable their stages.
func NewEngine(g *graph.Graph, searcher DocumentSearcher, embedder pipeline.EmbeddingService, config *model.Config, logger *slog.Logger) (*Engine, error) {
	if config == nil {
		config = model.DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	index := NewEmbeddingIndex(g.EmbeddingDimension)
	ids := make([]string, 0, len(g.Embeddings))
	for id := range g.Embeddings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		err := index.Add(id, g.Embeddings[id])
		if err != nil {
			return nil, err
		}
	}

	return &Engine{
		graph:    g,
		index:    index,
		searcher: searcher,
		embedder: embedder,
		config:   config,
		logger:   logger,
	}, nil
}

// Retrieve runs all retrieval stages for the query and fuses their results.
//
// Each document keeps the highest score any stage assigned it; equal scores
// keep the earlier stage's method tag. The fused list is sorted by score
// descending with document id as tie-break and truncated to limit. A blank
// query returns no results.
func (e *Engine) Retrieve(ctx context.Context, query string, limit int) ([]*model.DocumentResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	candidates := make(map[string]*model.DocumentResult)

	e.keywordStage(ctx, query, limit, candidates)
	e.semanticStage(ctx, query, limit, candidates)
	e.graphStage(candidates)

	results := make([]*model.DocumentResult, 0, len(candidates))
	for _, result := range candidates {
		result.Entities = e.graph.EntitiesForDocument(result.Document.ID)
		result.Sentiment = e.graph.DocumentSentiment(result.Document.ID)
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.ID < results[j].Document.ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// keywordStage adds full-text search matches at the configured keyword
// weight.
func (e *Engine) keywordStage(ctx context.Context, query string, limit int, candidates map[string]*model.DocumentResult) {
	if e.searcher == nil {
		return
	}

	docs, err := e.searcher.SearchDocuments(ctx, query, limit)
	if err != nil {
		e.logger.Warn("keyword search failed, skipping stage", "error", err)
		return
	}

	for _, doc := range docs {
		// Prefer the graph's copy of the document so all stages hand out
		// identical pointers.
		if graphDoc := e.graph.Document(doc.ID); graphDoc != nil {
			doc = graphDoc
		}
		merge(candidates, &model.DocumentResult{
			Document: doc,
			Score:    e.config.KeywordWeight,
			Method:   model.RetrievalMethodKeyword,
		})
	}
}

// semanticStage embeds the query and adds nearest neighbors scored by
// cosine similarity. It over-fetches beyond limit so fusion has candidates
// to rerank.
func (e *Engine) semanticStage(ctx context.Context, query string, limit int, candidates map[string]*model.DocumentResult) {
	if e.embedder == nil || e.index.Len() == 0 {
		return
	}

	vector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		e.logger.Warn("query embedding failed, skipping semantic stage", "error", err)
		return
	}

	factor := e.config.SemanticCandidateFactor
	if factor <= 0 {
		factor = 1
	}
	neighbors, err := e.index.Nearest(vector, limit*factor)
	if err != nil {
		e.logger.Warn("similarity search failed, skipping semantic stage", "error", err)
		return
	}

	for _, neighbor := range neighbors {
		doc := e.graph.Document(neighbor.ID)
		if doc == nil {
			continue
		}
		merge(candidates, &model.DocumentResult{
			Document: doc,
			Score:    neighbor.Similarity,
			Method:   model.RetrievalMethodSemantic,
		})
	}
}

// graphStage expands the current candidates through the graph and adds
// connected documents at a discount of the originating score.
func (e *Engine) graphStage(candidates map[string]*model.DocumentResult) {
	depth := e.config.GraphTraversalDepth
	if depth <= 0 {
		return
	}

	// Snapshot the seeds in id order so expansion is deterministic.
	seeds := make([]*model.DocumentResult, 0, len(candidates))
	for _, candidate := range candidates {
		seeds = append(seeds, candidate)
	}
	sort.Slice(seeds, func(i, j int) bool {
		return seeds[i].Document.ID < seeds[j].Document.ID
	})

	for _, seed := range seeds {
		for _, neighbor := range e.graph.NeighborDocuments(seed.Document.ID, depth) {
			merge(candidates, &model.DocumentResult{
				Document: neighbor.Document,
				Score:    seed.Score * e.config.GraphDiscountWeight,
				Method:   model.RetrievalMethodGraphNeighbor,
			})
		}
	}
}

// merge fuses a stage result into the candidate set. The higher score wins;
// on equal scores the earlier stage's method tag is kept.
func merge(candidates map[string]*model.DocumentResult, result *model.DocumentResult) {
	existing, exists := candidates[result.Document.ID]
	if !exists {
		candidates[result.Document.ID] = result
		return
	}
	if result.Score > existing.Score {
		existing.Score = result.Score
		existing.Method = result.Method
		return
	}
	if result.Score == existing.Score && result.Method.StagePriority() < existing.Method.StagePriority() {
		existing.Method = result.Method
	}
}
