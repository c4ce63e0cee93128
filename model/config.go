package model

// Config holds the tunable parameters of the retrieval core.
type Config struct {
	// Model parameters
	ExtractionModel    string `json:"extraction_model"`
	EmbeddingModel     string `json:"embedding_model"`
	EmbeddingDimension int    `json:"embedding_dimension"`

	// Retrieval parameters
	GraphTraversalDepth     int     `json:"graph_traversal_depth"`
	KeywordWeight           float64 `json:"keyword_weight"`
	GraphDiscountWeight     float64 `json:"graph_discount_weight"`
	SemanticCandidateFactor int     `json:"semantic_candidate_factor"` // Semantic stage fetches limit*factor candidates

	// Formatting parameters
	MaxContextChars int `json:"max_context_chars"`

	// Ingestion parameters
	WorkerPoolSize int `json:"worker_pool_size"`
}

// DefaultConfig returns the documented default configuration.
func DefaultConfig() *Config {
	return &Config{
		ExtractionModel:         "mistral",
		EmbeddingModel:          "nomic-embed-text",
		EmbeddingDimension:      768,
		GraphTraversalDepth:     2,
		KeywordWeight:           1.0,
		GraphDiscountWeight:     0.8,
		SemanticCandidateFactor: 3,
		MaxContextChars:         4000,
		WorkerPoolSize:          4,
	}
}
