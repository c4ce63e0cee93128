package graph

import (
	"sort"

	"github.com/ragmesh/ragmesh/model"
)

// NeighborDocument is a document reached by graph traversal together with
// its hop distance from the source document.
type NeighborDocument struct {
	Document *model.Document
	Distance int
}

// neighborEdgeTypes are the edge kinds traversal follows. Authored edges are
// stored in the graph but not used for neighborhood expansion; documents are
// reached through shared entities and communities.
var neighborEdgeTypes = map[model.EdgeType]bool{
	model.EdgeTypeMentions:  true,
	model.EdgeTypeBelongsTo: true,
	model.EdgeTypeCoOccurs:  true,
}

// NeighborDocuments performs a breadth-first traversal from a document and
// returns all other documents within maxHops edges, closest first. Edges are
// followed in both directions, so document -> entity -> document and
// document -> community -> document paths each count two hops. The traversal
// tolerates any graph shape including cycles.
func (g *Graph) NeighborDocuments(documentID string, maxHops int) []*NeighborDocument {
	sourceNode := model.DocumentNodeID(documentID)
	if _, exists := g.Documents[documentID]; !exists {
		return nil
	}

	type queueItem struct {
		node     string
		distance int
	}

	visited := map[string]bool{sourceNode: true}
	queue := []queueItem{{node: sourceNode, distance: 0}}

	var results []*NeighborDocument

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.distance >= maxHops {
			continue
		}

		for _, edge := range g.adjacency[current.node] {
			if !neighborEdgeTypes[edge.Type] {
				continue
			}

			target := edge.Target
			if target == current.node {
				target = edge.Source
			}
			if visited[target] {
				continue
			}
			visited[target] = true

			if docID, isDocument := documentIDFromNode(target); isDocument {
				if doc, exists := g.Documents[docID]; exists {
					results = append(results, &NeighborDocument{
						Document: doc,
						Distance: current.distance + 1,
					})
				}
			}

			queue = append(queue, queueItem{node: target, distance: current.distance + 1})
		}
	}

	// Closest first, then by document id for deterministic output.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Document.ID < results[j].Document.ID
	})

	return results
}

// documentIDFromNode extracts the document id from a document node id.
func documentIDFromNode(node string) (string, bool) {
	prefix := string(model.NodeKindDocument) + ":"
	if len(node) > len(prefix) && node[:len(prefix)] == prefix {
		return node[len(prefix):], true
	}
	return "", false
}
