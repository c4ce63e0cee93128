package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ragmesh/ragmesh/helper"
	"github.com/ragmesh/ragmesh/model"
)

// artifactVersion is bumped when the on-disk format changes incompatibly.
const artifactVersion = 1

// artifact is the JSON representation of a graph. Saving and loading must
// round-trip exactly: node sets, edge sets, statistics and embeddings come
// back identical.
type artifact struct {
	Version            int                         `json:"version"`
	Documents          map[string]*model.Document  `json:"documents"`
	Authors            map[string]*model.Author    `json:"authors"`
	Communities        map[string]*model.Community `json:"communities"`
	Entities           map[string]*model.Entity    `json:"entities"`
	Edges              []*model.Edge               `json:"edges"`
	Embeddings         map[string][]float32        `json:"embeddings"`
	Sentiments         map[string]float64          `json:"sentiments"`
	EmbeddingDimension int                         `json:"embedding_dimension"`
}

// Save writes the graph as a JSON artifact.
func (g *Graph) Save(w io.Writer) error {
	a := artifact{
		Version:            artifactVersion,
		Documents:          g.Documents,
		Authors:            g.Authors,
		Communities:        g.Communities,
		Entities:           g.Entities,
		Edges:              g.Edges,
		Embeddings:         g.Embeddings,
		Sentiments:         g.Sentiments,
		EmbeddingDimension: g.EmbeddingDimension,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	err := encoder.Encode(a)
	if err != nil {
		return helper.NewError("save graph", err)
	}
	return nil
}

// SaveFile writes the graph artifact to a file, replacing any existing one.
func (g *Graph) SaveFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return helper.NewError("save graph", err)
	}
	defer file.Close()

	err = g.Save(file)
	if err != nil {
		return err
	}

	err = file.Close()
	if err != nil {
		return helper.NewError("save graph", err)
	}
	return nil
}

// Load reads a graph artifact and rebuilds the traversal index. Corrupt or
// incompatible artifacts return an error rather than a partial graph.
func Load(r io.Reader) (*Graph, error) {
	var a artifact
	decoder := json.NewDecoder(r)
	err := decoder.Decode(&a)
	if err != nil {
		return nil, helper.NewError("load graph", err)
	}
	if a.Version != artifactVersion {
		return nil, helper.NewError("load graph", fmt.Errorf("unsupported artifact version %d", a.Version))
	}

	g := &Graph{
		Documents:          a.Documents,
		Authors:            a.Authors,
		Communities:        a.Communities,
		Entities:           a.Entities,
		Edges:              a.Edges,
		Embeddings:         a.Embeddings,
		Sentiments:         a.Sentiments,
		EmbeddingDimension: a.EmbeddingDimension,
	}
	if g.Documents == nil {
		g.Documents = make(map[string]*model.Document)
	}
	if g.Authors == nil {
		g.Authors = make(map[string]*model.Author)
	}
	if g.Communities == nil {
		g.Communities = make(map[string]*model.Community)
	}
	if g.Entities == nil {
		g.Entities = make(map[string]*model.Entity)
	}
	if g.Embeddings == nil {
		g.Embeddings = make(map[string][]float32)
	}
	if g.Sentiments == nil {
		g.Sentiments = make(map[string]float64)
	}

	g.buildAdjacency()

	return g, nil
}

// LoadFile reads a graph artifact from a file.
func LoadFile(path string) (*Graph, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, helper.NewError("load graph", err)
	}
	defer file.Close()

	return Load(file)
}
