package retrieval

import (
	"fmt"
	"math"
	"sort"

	"github.com/ragmesh/ragmesh/helper"
)

// EmbeddingIndex is a brute-force cosine similarity index over document
// embeddings. Vectors are added once during construction and only read
// afterwards.
type EmbeddingIndex struct {
	dimension int
	ids       []string
	vectors   [][]float32
}

// NewEmbeddingIndex creates an empty index for vectors of the given
// dimension. A dimension of 0 adopts the dimension of the first vector.
func NewEmbeddingIndex(dimension int) *EmbeddingIndex {
	return &EmbeddingIndex{dimension: dimension}
}

// Add inserts a document vector. Vectors with the wrong dimension are
// rejected so a single index never mixes embedding spaces.
func (x *EmbeddingIndex) Add(id string, vector []float32) error {
	if len(vector) == 0 {
		return helper.NewError("index embedding", fmt.Errorf("empty vector for document %q", id))
	}
	if x.dimension == 0 {
		x.dimension = len(vector)
	}
	if len(vector) != x.dimension {
		return helper.NewError("index embedding", fmt.Errorf("vector dimension %d does not match index dimension %d", len(vector), x.dimension))
	}
	x.ids = append(x.ids, id)
	x.vectors = append(x.vectors, vector)
	return nil
}

// Len returns the number of indexed vectors.
func (x *EmbeddingIndex) Len() int {
	return len(x.ids)
}

// Dimension returns the vector dimension the index accepts.
func (x *EmbeddingIndex) Dimension() int {
	return x.dimension
}

// Neighbor is a document id with its cosine similarity to a query vector.
type Neighbor struct {
	ID         string
	Similarity float64
}

// Nearest returns up to k indexed documents ranked by cosine similarity to
// the query, most similar first. Equal similarities are ordered by document
// id so results are deterministic.
func (x *EmbeddingIndex) Nearest(query []float32, k int) ([]*Neighbor, error) {
	if len(query) != x.dimension {
		return nil, helper.NewError("nearest neighbors", fmt.Errorf("query dimension %d does not match index dimension %d", len(query), x.dimension))
	}
	if k <= 0 || len(x.ids) == 0 {
		return nil, nil
	}

	neighbors := make([]*Neighbor, len(x.ids))
	for i, vector := range x.vectors {
		neighbors[i] = &Neighbor{
			ID:         x.ids[i],
			Similarity: CosineSimilarity(query, vector),
		}
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].ID < neighbors[j].ID
	})

	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}

// CosineSimilarity computes the cosine similarity of two equal-length
// vectors. Zero vectors yield 0.
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
