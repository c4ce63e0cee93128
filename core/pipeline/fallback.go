package pipeline

import (
	"regexp"
	"strings"

	"github.com/ragmesh/ragmesh/model"
)

var (
	userMentionRegex      = regexp.MustCompile(`@(\w+)`)
	communityMentionRegex = regexp.MustCompile(`\br/(\w+)`)
	hashtagRegex          = regexp.MustCompile(`#(\w+)`)
	capitalizedRegex      = regexp.MustCompile(`\b[A-Z][a-z]+(?: [A-Z][a-z]+)*\b`)
	allCapsRegex          = regexp.MustCompile(`\b[A-Z]{3,}\b`)
)

// HeuristicExtraction is the deterministic fallback for the text-understanding
// service. It extracts lower-confidence entities from surface patterns and
// always reports neutral sentiment. It never fails, so ingestion of a document
// completes even when the external service is down.
func HeuristicExtraction(text string) *model.Extraction {
	extraction := &model.Extraction{Sentiment: 0.0}
	seen := make(map[string]bool)

	add := func(name string, entityType model.EntityType, confidence float64) {
		name = strings.TrimSpace(name)
		if len(name) <= 1 {
			return
		}
		key := model.NormalizeEntityName(name)
		if seen[key] {
			return
		}
		seen[key] = true
		extraction.Entities = append(extraction.Entities, model.ExtractedEntity{
			Name:       name,
			Type:       entityType,
			Confidence: confidence,
		})
	}

	// User mentions (@user)
	for _, match := range userMentionRegex.FindAllStringSubmatch(text, -1) {
		add(match[1], model.EntityTypePerson, 0.8)
	}

	// Community mentions (r/community)
	for _, match := range communityMentionRegex.FindAllStringSubmatch(text, -1) {
		add(match[1], model.EntityTypeOrganization, 0.8)
	}

	// Hashtags
	for _, match := range hashtagRegex.FindAllStringSubmatch(text, -1) {
		add(match[1], model.EntityTypeConcept, 0.6)
	}

	// Capitalized phrases (potential proper nouns)
	for _, match := range capitalizedRegex.FindAllString(text, -1) {
		if stopWords[strings.ToLower(match)] {
			continue
		}
		add(match, model.EntityTypeConcept, 0.5)
	}

	// All caps words (potential emphasis)
	for _, match := range allCapsRegex.FindAllString(text, -1) {
		add(strings.ToLower(match), model.EntityTypeConcept, 0.4)
	}

	return extraction
}

// stopWords filters sentence-leading capitalized words that are almost never
// entities.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "best": true, "but": true,
	"for": true, "how": true, "i": true, "if": true, "in": true, "is": true,
	"it": true, "my": true, "not": true, "of": true, "on": true, "or": true,
	"so": true, "the": true, "these": true, "they": true, "this": true,
	"to": true, "was": true, "we": true, "what": true, "when": true,
	"where": true, "which": true, "who": true, "why": true, "you": true,
}
