package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	t.Run("Identical vectors score one", func(t *testing.T) {
		assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9, "Expected identical vectors to score 1")
	})

	t.Run("Orthogonal vectors score zero", func(t *testing.T) {
		assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9, "Expected orthogonal vectors to score 0")
	})

	t.Run("Opposite vectors score minus one", func(t *testing.T) {
		assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9, "Expected opposite vectors to score -1")
	})

	t.Run("Zero vectors score zero", func(t *testing.T) {
		assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 1}), "Expected zero vector to score 0")
	})
}

func TestEmbeddingIndex(t *testing.T) {
	t.Run("Returns nearest neighbors most similar first", func(t *testing.T) {
		index := NewEmbeddingIndex(2)
		require.NoError(t, index.Add("east", []float32{1, 0}), "Expected add to succeed")
		require.NoError(t, index.Add("north", []float32{0, 1}), "Expected add to succeed")
		require.NoError(t, index.Add("northeast", []float32{1, 1}), "Expected add to succeed")

		neighbors, err := index.Nearest([]float32{1, 0.1}, 2)
		require.NoError(t, err, "Expected nearest to succeed")
		require.Len(t, neighbors, 2, "Expected two neighbors")
		assert.Equal(t, "east", neighbors[0].ID, "Expected the most similar vector first")
		assert.Equal(t, "northeast", neighbors[1].ID, "Expected the next most similar vector second")
	})

	t.Run("Returns fewer than k when the index is small", func(t *testing.T) {
		index := NewEmbeddingIndex(2)
		require.NoError(t, index.Add("only", []float32{1, 0}), "Expected add to succeed")

		neighbors, err := index.Nearest([]float32{1, 0}, 10)
		require.NoError(t, err, "Expected nearest to succeed")
		assert.Len(t, neighbors, 1, "Expected all available vectors")
	})

	t.Run("Breaks similarity ties by document id", func(t *testing.T) {
		index := NewEmbeddingIndex(2)
		require.NoError(t, index.Add("beta", []float32{1, 0}), "Expected add to succeed")
		require.NoError(t, index.Add("alpha", []float32{1, 0}), "Expected add to succeed")

		neighbors, err := index.Nearest([]float32{1, 0}, 2)
		require.NoError(t, err, "Expected nearest to succeed")
		assert.Equal(t, "alpha", neighbors[0].ID, "Expected ties broken by document id")
	})

	t.Run("Rejects vectors with mismatched dimension", func(t *testing.T) {
		index := NewEmbeddingIndex(3)
		assert.Error(t, index.Add("bad", []float32{1, 2}), "Expected wrong dimension to be rejected")
		assert.Error(t, index.Add("empty", nil), "Expected empty vector to be rejected")
		assert.Zero(t, index.Len(), "Expected rejected vectors not to be indexed")
	})

	t.Run("Rejects queries with mismatched dimension", func(t *testing.T) {
		index := NewEmbeddingIndex(3)
		require.NoError(t, index.Add("a", []float32{1, 2, 3}), "Expected add to succeed")

		_, err := index.Nearest([]float32{1, 2}, 1)
		assert.Error(t, err, "Expected wrong query dimension to be rejected")
	})

	t.Run("Adopts the dimension of the first vector", func(t *testing.T) {
		index := NewEmbeddingIndex(0)
		require.NoError(t, index.Add("a", []float32{1, 2, 3, 4}), "Expected add to succeed")
		assert.Equal(t, 4, index.Dimension(), "Expected index to adopt the first vector's dimension")
	})

	t.Run("Empty index returns nothing", func(t *testing.T) {
		index := NewEmbeddingIndex(2)
		neighbors, err := index.Nearest([]float32{1, 0}, 5)
		require.NoError(t, err, "Expected nearest on an empty index to succeed")
		assert.Empty(t, neighbors, "Expected no neighbors from an empty index")
	})
}
