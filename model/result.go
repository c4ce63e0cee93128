package model

// RetrievalMethod tags which retrieval stage produced a result.
type RetrievalMethod string

const (
	RetrievalMethodKeyword       RetrievalMethod = "keyword"
	RetrievalMethodSemantic      RetrievalMethod = "semantic"
	RetrievalMethodGraphNeighbor RetrievalMethod = "graph-neighbor"
)

// StagePriority orders retrieval methods for tie-breaking during fusion.
// Lower is better: keyword > semantic > graph-neighbor.
func (m RetrievalMethod) StagePriority() int {
	switch m {
	case RetrievalMethodKeyword:
		return 0
	case RetrievalMethodSemantic:
		return 1
	case RetrievalMethodGraphNeighbor:
		return 2
	default:
		return 3
	}
}

// DocumentResult represents a document retrieved by a query.
type DocumentResult struct {
	Document *Document       `json:"document"`
	Score    float64         `json:"score"`
	Method   RetrievalMethod `json:"retrieval_method"`
	// Entities connected to the document in the graph, used by the
	// context formatter for topic annotations.
	Entities  []*Entity `json:"entities,omitempty"`
	Sentiment float64   `json:"sentiment,omitempty"`
}
