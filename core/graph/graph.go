package graph

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/ragmesh/ragmesh/helper"
	"github.com/ragmesh/ragmesh/model"
)

// Graph is a directed multigraph over document, author, community and
// entity nodes. It is built once per ingestion run and read-shared afterwards;
// no method mutates it after Build returns.
type Graph struct {
	Documents   map[string]*model.Document  `json:"documents"`   // keyed by document id
	Authors     map[string]*model.Author    `json:"authors"`     // keyed by name
	Communities map[string]*model.Community `json:"communities"` // keyed by name
	Entities    map[string]*model.Entity    `json:"entities"`    // keyed by normalized name
	Edges       []*model.Edge               `json:"edges"`

	// Embeddings maps document ids to their vectors. Documents whose
	// embedding call failed at ingestion time are simply absent.
	Embeddings         map[string][]float32 `json:"embeddings"`
	EmbeddingDimension int                  `json:"embedding_dimension"`

	// Sentiments maps document ids to their extraction sentiment score.
	Sentiments map[string]float64 `json:"sentiments"`

	// adjacency indexes edges by both endpoints for traversal.
	adjacency map[string][]*model.Edge
}

// DocumentInput bundles a document with its extraction and embedding for
// the builder.
type DocumentInput struct {
	Document   *model.Document
	Extraction *model.Extraction
	Embedding  []float32
}

// Build assembles the knowledge graph from processed documents. It is
// deterministic: the same inputs in the same order produce the same node
// set, edge set and weights.
//
// Entity statistics are merged by normalized name with occurrence-weighted
// running averages, so every distinct mentions edge contributes exactly one
// occurrence. Embeddings whose dimension does not match embeddingDim are
// dropped, which excludes the document from semantic search only.
func Build(inputs []*DocumentInput, embeddingDim int) (*Graph, error) {
	g := &Graph{
		Documents:          make(map[string]*model.Document),
		Authors:            make(map[string]*model.Author),
		Communities:        make(map[string]*model.Community),
		Entities:           make(map[string]*model.Entity),
		Embeddings:         make(map[string][]float32),
		Sentiments:         make(map[string]float64),
		EmbeddingDimension: embeddingDim,
	}

	for _, input := range inputs {
		doc := input.Document
		if doc == nil || doc.ID == "" {
			return nil, helper.NewError("build graph", fmt.Errorf("document without id"))
		}
		if _, exists := g.Documents[doc.ID]; exists {
			return nil, helper.NewError("build graph", fmt.Errorf("duplicate document id %q", doc.ID))
		}
		g.Documents[doc.ID] = doc
		docNode := model.DocumentNodeID(doc.ID)

		if doc.Author != "" {
			author, exists := g.Authors[doc.Author]
			if !exists {
				author = &model.Author{Name: doc.Author}
				g.Authors[doc.Author] = author
			}
			author.DocumentCount++
			g.Edges = append(g.Edges, &model.Edge{
				Source: model.AuthorNodeID(doc.Author),
				Target: docNode,
				Type:   model.EdgeTypeAuthored,
				Weight: 1.0,
			})
		}

		if doc.Community != "" {
			community, exists := g.Communities[doc.Community]
			if !exists {
				community = &model.Community{Name: doc.Community}
				g.Communities[doc.Community] = community
			}
			community.DocumentCount++
			g.Edges = append(g.Edges, &model.Edge{
				Source: docNode,
				Target: model.CommunityNodeID(doc.Community),
				Type:   model.EdgeTypeBelongsTo,
				Weight: 1.0,
			})
		}

		if input.Extraction != nil {
			g.Sentiments[doc.ID] = input.Extraction.Sentiment
			g.addMentions(doc, input.Extraction)
		}

		if len(input.Embedding) > 0 {
			if g.EmbeddingDimension == 0 {
				g.EmbeddingDimension = len(input.Embedding)
			}
			// Mixing dimensions within one graph generation is an error
			// state; the offending vector is dropped, not the document.
			if len(input.Embedding) == g.EmbeddingDimension {
				g.Embeddings[doc.ID] = input.Embedding
			}
		}
	}

	g.buildAdjacency()

	return g, nil
}

// addMentions adds mentions edges and entity nodes for one document's
// extraction, plus co-occurrence edges between the document's entities.
func (g *Graph) addMentions(doc *model.Document, extraction *model.Extraction) {
	docNode := model.DocumentNodeID(doc.ID)

	// Deduplicate within the document so occurrence counts match distinct
	// mentions edges.
	type mention struct {
		name       string
		entityType model.EntityType
		confidence float64
	}
	var mentions []mention
	seen := make(map[string]bool)
	for _, extracted := range extraction.Entities {
		key := model.NormalizeEntityName(extracted.Name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		mentions = append(mentions, mention{
			name:       key,
			entityType: extracted.Type,
			confidence: extracted.Confidence,
		})
	}

	for _, m := range mentions {
		entity, exists := g.Entities[m.name]
		if !exists {
			entity = &model.Entity{
				ID:   uuid.NewSHA1(uuid.NameSpaceOID, []byte(m.name)),
				Name: m.name,
				Type: m.entityType,
			}
			g.Entities[m.name] = entity
		}
		entity.RecordMention(m.confidence, extraction.Sentiment)

		g.Edges = append(g.Edges, &model.Edge{
			Source: docNode,
			Target: model.EntityNodeID(m.name),
			Type:   model.EdgeTypeMentions,
			Weight: m.confidence,
		})
	}

	// Co-occurrence edges between every entity pair in the document,
	// weighted by the weaker of the two mention confidences.
	for i := 0; i < len(mentions); i++ {
		for j := i + 1; j < len(mentions); j++ {
			weight := mentions[i].confidence
			if mentions[j].confidence < weight {
				weight = mentions[j].confidence
			}
			g.Edges = append(g.Edges, &model.Edge{
				Source: model.EntityNodeID(mentions[i].name),
				Target: model.EntityNodeID(mentions[j].name),
				Type:   model.EdgeTypeCoOccurs,
				Weight: weight,
			})
		}
	}
}

// buildAdjacency indexes edges by both endpoints. Called once after build
// or load; the graph is never mutated afterwards.
func (g *Graph) buildAdjacency() {
	g.adjacency = make(map[string][]*model.Edge)
	for _, edge := range g.Edges {
		g.adjacency[edge.Source] = append(g.adjacency[edge.Source], edge)
		g.adjacency[edge.Target] = append(g.adjacency[edge.Target], edge)
	}
}

// Document returns the document with the given id, or nil.
func (g *Graph) Document(id string) *model.Document {
	return g.Documents[id]
}

// DocumentSentiment returns the document's sentiment score, neutral if none
// was recorded.
func (g *Graph) DocumentSentiment(id string) float64 {
	return g.Sentiments[id]
}

// EntitiesForDocument returns the entities the document mentions.
func (g *Graph) EntitiesForDocument(id string) []*model.Entity {
	docNode := model.DocumentNodeID(id)

	var entities []*model.Entity
	for _, edge := range g.adjacency[docNode] {
		if edge.Type != model.EdgeTypeMentions || edge.Source != docNode {
			continue
		}
		name := edge.Target[len(model.NodeKindEntity)+1:]
		if entity, exists := g.Entities[name]; exists {
			entities = append(entities, entity)
		}
	}
	return entities
}

// MentionCount returns the number of mentions edges referencing the entity.
// It always equals the entity's occurrence count.
func (g *Graph) MentionCount(normalizedName string) int {
	entityNode := model.EntityNodeID(normalizedName)
	count := 0
	for _, edge := range g.adjacency[entityNode] {
		if edge.Type == model.EdgeTypeMentions && edge.Target == entityNode {
			count++
		}
	}
	return count
}
