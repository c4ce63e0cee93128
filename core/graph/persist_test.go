package graph

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad(t *testing.T) {
	t.Run("Round-trips exactly", func(t *testing.T) {
		original, err := Build(forumInputs(), 3)
		require.NoError(t, err, "Expected build to succeed")

		var buf bytes.Buffer
		require.NoError(t, original.Save(&buf), "Expected save to succeed")

		loaded, err := Load(&buf)
		require.NoError(t, err, "Expected load to succeed")

		assert.Equal(t, original.Documents, loaded.Documents, "Expected identical documents after reload")
		assert.Equal(t, original.Authors, loaded.Authors, "Expected identical authors after reload")
		assert.Equal(t, original.Communities, loaded.Communities, "Expected identical communities after reload")
		assert.Equal(t, original.Entities, loaded.Entities, "Expected identical entities after reload")
		assert.Equal(t, original.Edges, loaded.Edges, "Expected identical edges after reload")
		assert.Equal(t, original.Embeddings, loaded.Embeddings, "Expected identical embeddings after reload")
		assert.Equal(t, original.Sentiments, loaded.Sentiments, "Expected identical sentiments after reload")
		assert.Equal(t, original.EmbeddingDimension, loaded.EmbeddingDimension, "Expected identical embedding dimension after reload")
	})

	t.Run("Loaded graph supports traversal", func(t *testing.T) {
		original, err := Build(traversalInputs(), 0)
		require.NoError(t, err, "Expected build to succeed")

		var buf bytes.Buffer
		require.NoError(t, original.Save(&buf), "Expected save to succeed")
		loaded, err := Load(&buf)
		require.NoError(t, err, "Expected load to succeed")

		assert.Equal(t, original.NeighborDocuments("p1", 2), loaded.NeighborDocuments("p1", 2), "Expected traversal to work after reload")
	})

	t.Run("Round-trips through a file", func(t *testing.T) {
		original, err := Build(forumInputs(), 3)
		require.NoError(t, err, "Expected build to succeed")

		path := filepath.Join(t.TempDir(), "graph.json")
		require.NoError(t, original.SaveFile(path), "Expected file save to succeed")

		loaded, err := LoadFile(path)
		require.NoError(t, err, "Expected file load to succeed")
		assert.Equal(t, original.Edges, loaded.Edges, "Expected identical edges after file reload")
	})

	t.Run("Rejects corrupt artifacts", func(t *testing.T) {
		_, err := Load(strings.NewReader("{not json"))
		assert.Error(t, err, "Expected corrupt artifact to be rejected")
	})

	t.Run("Rejects unsupported versions", func(t *testing.T) {
		_, err := Load(strings.NewReader(`{"version": 99}`))
		assert.Error(t, err, "Expected unsupported version to be rejected")
	})

	t.Run("Missing file returns an error", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err, "Expected missing file to return an error")
	})
}
