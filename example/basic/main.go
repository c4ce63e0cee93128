package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/ragmesh/ragmesh"
	"github.com/ragmesh/ragmesh/model"
)

func sampleDocuments() []*model.Document {
	return []*model.Document{
		{
			ID:        "post-1",
			Title:     "Franklin Barbecue",
			Content:   "Franklin Barbecue is amazing BBQ in Austin. The brisket sells out by noon.",
			Author:    "bbqfan",
			Community: "austinfood",
			Kind:      model.DocumentKindPost,
			Metadata:  model.Metadata{"score": 128},
		},
		{
			ID:        "post-2",
			Content:   "Tech layoffs hit Austin startups as funding dries up.",
			Author:    "reporter",
			Community: "austin",
			Kind:      model.DocumentKindPost,
		},
		{
			ID:        "post-3",
			Content:   "Best tacos in East Austin, hands down the trailer on 6th street.",
			Author:    "taqueriafan",
			Community: "austinfood",
			Kind:      model.DocumentKindPost,
		},
		{
			ID:        "reply-1",
			Content:   "Agreed, the brisket at Franklin Barbecue is worth the wait.",
			Author:    "taqueriafan",
			Community: "austinfood",
			Kind:      model.DocumentKindReply,
			Metadata:  model.Metadata{"parent_id": "post-1"},
		},
	}
}

func main() {
	ctx := context.Background()

	// No Ollama server, no database: extraction falls back to the built-in
	// heuristic and retrieval runs over the graph alone.
	r := ragmesh.NewRagmesh(nil)

	fmt.Println("Ingesting documents...")
	if err := r.IngestDocuments(ctx, sampleDocuments()); err != nil {
		log.Fatalf("Failed to ingest documents: %v", err)
	}

	fmt.Printf("Graph: %d documents, %d entities, %d edges\n",
		len(r.Graph.Documents), len(r.Graph.Entities), len(r.Graph.Edges))

	for name, entity := range r.Graph.Entities {
		fmt.Printf("  entity %-20s type=%-12s occurrences=%d\n", name, entity.Type, entity.Occurrences)
	}

	// Persist the graph artifact and reload it, as the chat app does
	// between its ingestion run and query time.
	path := filepath.Join(".", "graph.json")
	if err := r.SaveGraph(path); err != nil {
		log.Fatalf("Failed to save graph: %v", err)
	}
	fmt.Printf("\nSaved graph artifact to %s\n", path)

	fresh := ragmesh.NewRagmesh(nil)
	if err := fresh.LoadGraph(path); err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}

	results, err := fresh.Query(ctx, "Austin restaurants", 3)
	if err != nil {
		log.Fatalf("Failed to query: %v", err)
	}

	fmt.Printf("\nResults for 'Austin restaurants':\n")
	for _, result := range results {
		fmt.Printf("  %-8s score=%.2f method=%s\n", result.Document.ID, result.Score, result.Method)
	}
}
