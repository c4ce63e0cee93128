package ragmesh

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ragmesh/ragmesh/core/graph"
	"github.com/ragmesh/ragmesh/core/pipeline"
	"github.com/ragmesh/ragmesh/core/retrieval"
	"github.com/ragmesh/ragmesh/database"
	"github.com/ragmesh/ragmesh/helper"
	"github.com/ragmesh/ragmesh/model"
	loadSql "github.com/ragmesh/ragmesh/sql"
)

// Ragmesh is the retrieval core behind a chat application: it ingests forum
// documents into a knowledge graph and serves hybrid retrieval over it.
//
// Ingestion runs once and produces the graph plus a persisted artifact; the
// query path is read-only and safe for concurrent callers.
type Ragmesh struct {
	DB        *helper.Database
	Documents *database.DocumentsDBHandler
	Graph     *graph.Graph
	Engine    *retrieval.Engine

	// External services, both optional. Extraction falls back to the
	// heuristic extractor, embedding to keyword-plus-graph retrieval.
	Understanding pipeline.TextUnderstandingService
	Embedding     pipeline.EmbeddingService

	Config *model.Config
	log    *slog.Logger
}

// NewRagmesh creates a Ragmesh instance without a document store. Keyword
// retrieval stays disabled until UseDatabase attaches one.
func NewRagmesh(config *model.Config) *Ragmesh {
	if config == nil {
		config = model.DefaultConfig()
	}

	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	return &Ragmesh{
		Config: config,
		log:    logger,
	}
}

// UseDatabase attaches a postgres document store. The store backs the
// keyword stage of retrieval and keeps the raw corpus queryable.
func (r *Ragmesh) UseDatabase(config *helper.DatabaseConfiguration) error {
	db := helper.NewDatabase("ragmesh", config, r.log)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return helper.NewError("initialize database extensions", err)
	}

	documents, err := database.NewDocumentsDBHandler(db, false)
	if err != nil {
		return helper.NewError("create documents handler", err)
	}

	r.DB = db
	r.Documents = documents
	return nil
}

// UseOllama wires an Ollama server as both the text-understanding and the
// embedding service, using the configured model names.
func (r *Ragmesh) UseOllama(baseURL string) error {
	service, err := pipeline.NewOllamaService(pipeline.OllamaServiceParams{
		BaseURL:         baseURL,
		ExtractionModel: r.Config.ExtractionModel,
		EmbeddingModel:  r.Config.EmbeddingModel,
	})
	if err != nil {
		return helper.NewError("create ollama service", err)
	}

	r.Understanding = service
	r.Embedding = service
	return nil
}

// UseLocalEmbedder wires the in-process all-MiniLM-L6-v2 embedder instead of
// a remote embedding service. The model produces 384-dimensional vectors, so
// the configured embedding dimension is adjusted to match.
func (r *Ragmesh) UseLocalEmbedder() error {
	embedder, err := pipeline.NewLocalEmbedder()
	if err != nil {
		return helper.NewError("create local embedder", err)
	}

	r.Embedding = embedder
	r.Config.EmbeddingDimension = 384
	return nil
}

// IngestDocuments runs the full ingestion pass: extraction and embedding per
// document, graph assembly and, when a store is attached, document
// persistence. The previous graph is replaced wholesale; there is no
// incremental update path.
func (r *Ragmesh) IngestDocuments(ctx context.Context, docs []*model.Document) error {
	p := pipeline.NewPipeline(r.Understanding, r.Embedding, r.Config.WorkerPoolSize, r.log)
	processed, err := p.ProcessDocuments(ctx, docs)
	if err != nil {
		return helper.NewError("process documents", err)
	}

	inputs := make([]*graph.DocumentInput, len(processed))
	for i, pd := range processed {
		inputs[i] = &graph.DocumentInput{
			Document:   pd.Document,
			Extraction: pd.Extraction,
			Embedding:  pd.Embedding,
		}
	}

	g, err := graph.Build(inputs, r.Config.EmbeddingDimension)
	if err != nil {
		return helper.NewError("build graph", err)
	}

	if r.Documents != nil {
		for _, pd := range processed {
			err := r.Documents.InsertDocument(pd.Document, pd.Embedding)
			if err != nil {
				return helper.NewError(fmt.Sprintf("insert document %s", pd.Document.ID), err)
			}
		}
	}

	r.log.Info("Ingested documents",
		slog.Int("documents", len(g.Documents)),
		slog.Int("entities", len(g.Entities)),
		slog.Int("edges", len(g.Edges)))

	return r.SetGraph(g)
}

// StoreIsPopulated reports whether the attached document store already holds
// documents, so callers can skip re-ingesting an unchanged corpus.
func (r *Ragmesh) StoreIsPopulated() (bool, error) {
	if r.Documents == nil {
		return false, nil
	}
	count, err := r.Documents.CountDocuments()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SetGraph swaps in a graph and rebuilds the retrieval engine over it.
func (r *Ragmesh) SetGraph(g *graph.Graph) error {
	var searcher retrieval.DocumentSearcher
	if r.Documents != nil {
		searcher = r.Documents
	}

	engine, err := retrieval.NewEngine(g, searcher, r.Embedding, r.Config, r.log)
	if err != nil {
		return helper.NewError("create retrieval engine", err)
	}

	r.Graph = g
	r.Engine = engine
	return nil
}

// SaveGraph writes the graph artifact to a file.
func (r *Ragmesh) SaveGraph(path string) error {
	if r.Graph == nil {
		return helper.NewError("save graph", fmt.Errorf("no graph ingested"))
	}
	return r.Graph.SaveFile(path)
}

// LoadGraph loads a graph artifact from a file and serves queries from it.
func (r *Ragmesh) LoadGraph(path string) error {
	g, err := graph.LoadFile(path)
	if err != nil {
		return err
	}
	return r.SetGraph(g)
}

// Query returns the ranked, deduplicated documents for a query.
func (r *Ragmesh) Query(ctx context.Context, query string, limit int) ([]*model.DocumentResult, error) {
	if r.Engine == nil {
		return nil, helper.NewError("query", fmt.Errorf("no graph loaded, ingest or load one first"))
	}
	return r.Engine.Retrieve(ctx, query, limit)
}

// Retrieve returns the formatted context block for a query, ready for
// prompt injection. No matches produce an empty string, not an error. A
// missing graph (never ingested, or the artifact failed to load) disables
// retrieval the same way, so the chat keeps running without context.
func (r *Ragmesh) Retrieve(ctx context.Context, query string, limit int) (string, error) {
	if r.Engine == nil {
		r.log.Warn("Retrieval unavailable, no graph loaded")
		return "", nil
	}
	results, err := r.Engine.Retrieve(ctx, query, limit)
	if err != nil {
		return "", err
	}
	return retrieval.FormatContext(results, r.Config.MaxContextChars), nil
}

// Close closes the database connection
func (r *Ragmesh) Close() error {
	if r.DB != nil && r.DB.Instance != nil {
		return r.DB.Instance.Close()
	}
	return nil
}
