package model

import (
	"strings"

	"github.com/google/uuid"
)

// EntityType is the closed set of entity categories. Unknown types reported
// by the text-understanding service map to EntityTypeOther.
type EntityType string

const (
	EntityTypePlace        EntityType = "place"
	EntityTypeOrganization EntityType = "organization"
	EntityTypePerson       EntityType = "person"
	EntityTypeConcept      EntityType = "concept"
	EntityTypeProduct      EntityType = "product"
	EntityTypeOther        EntityType = "other"
)

// ParseEntityType maps a free-form type string onto the closed EntityType set.
func ParseEntityType(s string) EntityType {
	switch EntityType(strings.ToLower(strings.TrimSpace(s))) {
	case EntityTypePlace:
		return EntityTypePlace
	case EntityTypeOrganization:
		return EntityTypeOrganization
	case EntityTypePerson:
		return EntityTypePerson
	case EntityTypeConcept:
		return EntityTypeConcept
	case EntityTypeProduct:
		return EntityTypeProduct
	default:
		return EntityTypeOther
	}
}

// Entity represents a typed concept extracted from document text.
// Entities are deduplicated by normalized name; repeated mentions merge into
// running statistics instead of creating duplicate nodes.
type Entity struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Type          EntityType `json:"entity_type"`
	Occurrences   int        `json:"occurrences"`
	AvgConfidence float64    `json:"avg_confidence"`
	AvgSentiment  float64    `json:"avg_sentiment"`
}

// RecordMention merges one more mention into the entity's running statistics.
// Averages are weighted by the occurrence count so merge order does not matter.
func (e *Entity) RecordMention(confidence float64, sentiment float64) {
	n := float64(e.Occurrences)
	e.AvgConfidence = (e.AvgConfidence*n + confidence) / (n + 1)
	e.AvgSentiment = (e.AvgSentiment*n + sentiment) / (n + 1)
	e.Occurrences++
}

// NormalizeEntityName case-folds and whitespace-collapses an entity name.
// Two extracted entities merge into one node iff their normalized names match.
func NormalizeEntityName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// ExtractedEntity is a single entity as reported by the extractor, before
// merging into the graph.
type ExtractedEntity struct {
	Name       string     `json:"entity"`
	Type       EntityType `json:"type"`
	Confidence float64    `json:"confidence"`
}

// Extraction is the result of running the entity and sentiment extractor
// over one document.
type Extraction struct {
	Entities  []ExtractedEntity `json:"entities"`
	Sentiment float64           `json:"sentiment"`
}
