package model

import "fmt"

// EdgeType represents the type of relationship between graph nodes.
type EdgeType string

const (
	EdgeTypeAuthored  EdgeType = "authored"       // Author -> Document
	EdgeTypeBelongsTo EdgeType = "belongs_to"     // Document -> Community
	EdgeTypeMentions  EdgeType = "mentions"       // Document -> Entity, weighted by confidence
	EdgeTypeCoOccurs  EdgeType = "co_occurs_with" // Entity -> Entity within one document
)

// NodeKind identifies which record a node id refers to.
type NodeKind string

const (
	NodeKindDocument  NodeKind = "doc"
	NodeKindAuthor    NodeKind = "author"
	NodeKindCommunity NodeKind = "community"
	NodeKindEntity    NodeKind = "entity"
)

// Edge represents a directed, weighted relationship between two nodes.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   EdgeType `json:"edge_type"`
	Weight float64  `json:"weight"`
}

// DocumentNodeID returns the graph node id for a document.
func DocumentNodeID(documentID string) string {
	return fmt.Sprintf("%s:%s", NodeKindDocument, documentID)
}

// AuthorNodeID returns the graph node id for an author.
func AuthorNodeID(name string) string {
	return fmt.Sprintf("%s:%s", NodeKindAuthor, name)
}

// CommunityNodeID returns the graph node id for a community.
func CommunityNodeID(name string) string {
	return fmt.Sprintf("%s:%s", NodeKindCommunity, name)
}

// EntityNodeID returns the graph node id for an entity. The name is
// normalized first so all mentions of one entity share a node.
func EntityNodeID(name string) string {
	return fmt.Sprintf("%s:%s", NodeKindEntity, NormalizeEntityName(name))
}
