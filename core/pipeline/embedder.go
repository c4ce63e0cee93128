package pipeline

import (
	"context"
	"fmt"

	"github.com/knights-analytics/hugot"
	"github.com/ragmesh/ragmesh/helper"
)

// LocalEmbedder is an in-process EmbeddingService backed by a sentence
// transformer model. It is a drop-in replacement for a remote embedding
// service when no Ollama server is available.
type LocalEmbedder struct {
	embed func(text string) ([]float32, error)
}

// NewLocalEmbedder creates an embedder using the all-MiniLM-L6-v2 model,
// which produces 384-dimensional embeddings. The model is downloaded on
// first use.
func NewLocalEmbedder() (*LocalEmbedder, error) {
	modelName := "sentence-transformers/all-MiniLM-L6-v2"
	modelPath, err := helper.PrepareModel(modelName, "onnx/model.onnx")
	if err != nil {
		return nil, err
	}

	// Initialize hugot session with Go backend
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "embedder-pipeline",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create sentence pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create sentence pipeline: %w", err)
	}

	return &LocalEmbedder{
		embed: func(text string) ([]float32, error) {
			result, err := sentencePipeline.RunPipeline([]string{text})
			if err != nil {
				return nil, fmt.Errorf("failed to generate embedding: %w", err)
			}

			if len(result.Embeddings) == 0 {
				return nil, fmt.Errorf("no embedding generated")
			}

			return result.Embeddings[0], nil
		},
	}, nil
}

// Embed generates an embedding for the text.
func (e *LocalEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.embed(text)
}
