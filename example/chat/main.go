package main

import (
	"context"
	"fmt"
	"log"

	"github.com/ragmesh/ragmesh"
	"github.com/ragmesh/ragmesh/helper"
	"github.com/ragmesh/ragmesh/model"
)

// This example runs the full stack a chat application uses: a postgres
// document store for keyword search plus the knowledge graph for semantic
// and graph-neighbor retrieval. An Ollama server is wired in when reachable;
// without one, extraction falls back to the heuristic.
func main() {
	ctx := context.Background()

	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Name:     "database",
		User:     "user",
		Password: "password",
		Schema:   "public",
	}

	r := ragmesh.NewRagmesh(nil)
	defer r.Close()

	if err := r.UseDatabase(dbConfig); err != nil {
		log.Fatalf("Failed to attach database: %v", err)
	}

	// Wire a local Ollama server for extraction and embeddings. Documents
	// whose calls fail fall back to the heuristic extractor, so ingestion
	// completes even while the server is down.
	if err := r.UseOllama(""); err != nil {
		log.Fatalf("Failed to configure Ollama: %v", err)
	}

	populated, err := r.StoreIsPopulated()
	if err != nil {
		log.Fatalf("Failed to check store: %v", err)
	}
	if populated {
		fmt.Println("Store already populated, skipping ingestion")
	} else {
		fmt.Println("Ingesting documents...")
		if err := r.IngestDocuments(ctx, forumDocuments()); err != nil {
			log.Fatalf("Failed to ingest documents: %v", err)
		}
	}

	// The formatted context block is what the chat app injects into its
	// prompt before the user's question.
	contextBlock, err := r.Retrieve(ctx, "where should I eat in Austin?", 3)
	if err != nil {
		log.Fatalf("Failed to retrieve context: %v", err)
	}

	if contextBlock == "" {
		fmt.Println("No relevant context found")
		return
	}

	fmt.Println("Context for the prompt:")
	fmt.Println(contextBlock)
}

func forumDocuments() []*model.Document {
	return []*model.Document{
		{
			ID:        "post-1",
			Title:     "Franklin Barbecue",
			Content:   "Franklin Barbecue is amazing BBQ in Austin. Get there early.",
			Author:    "bbqfan",
			Community: "austinfood",
			Kind:      model.DocumentKindPost,
			Metadata:  model.Metadata{"score": 128, "permalink": "/r/austinfood/post-1"},
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
			Content:   "Best tacos in East Austin, the trailer on 6th street is unbeatable.",
			Author:    "taqueriafan",
			Community: "austinfood",
			Kind:      model.DocumentKindPost,
		},
	}
}
