package retrieval

import (
	"fmt"
	"strings"

	"github.com/ragmesh/ragmesh/model"
)

// maxContentChars caps each document body inside the formatted context.
const maxContentChars = 600

// contextTrailer instructs the consuming model to stay grounded in the
// supplied posts.
const contextTrailer = "Answer using only the forum posts above. If they do not contain the answer, say so instead of guessing."

// FormatContext renders retrieval results into a bounded text block for
// prompt injection. Each result becomes an indexed block with title, topic
// and tone annotations and a truncated body; the whole output stays under
// maxChars and never splits a multi-byte character. Empty input produces an
// empty string so the caller can omit the context entirely.
func FormatContext(results []*model.DocumentResult, maxChars int) string {
	if len(results) == 0 {
		return ""
	}
	if maxChars <= 0 {
		maxChars = model.DefaultConfig().MaxContextChars
	}

	// The trailer only ships when some content fits alongside it. Under a
	// budget too small for both, the whole budget goes to the first result.
	budget := maxChars - len([]rune(contextTrailer)) - 2
	if budget <= 0 {
		return truncateRunes(formatResult(1, results[0]), maxChars)
	}

	var blocks []string
	used := 0
	for i, result := range results {
		block := formatResult(i+1, result)
		length := len([]rune(block))
		if len(blocks) > 0 {
			length += 2 // separating blank line
		}
		if used+length > budget {
			break
		}
		blocks = append(blocks, block)
		used += length
	}

	// The first result must survive even under a tight budget, truncated
	// to whatever fits.
	if len(blocks) == 0 {
		blocks = append(blocks, truncateRunes(formatResult(1, results[0]), budget))
	}

	return strings.Join(blocks, "\n\n") + "\n\n" + contextTrailer
}

// formatResult renders one result block.
func formatResult(index int, result *model.DocumentResult) string {
	var b strings.Builder

	doc := result.Document
	if doc.Title != "" {
		fmt.Fprintf(&b, "[%d] Title: %s\n", index, doc.Title)
	} else {
		fmt.Fprintf(&b, "[%d]\n", index)
	}

	if len(result.Entities) > 0 {
		names := make([]string, len(result.Entities))
		for i, entity := range result.Entities {
			names[i] = entity.Name
		}
		fmt.Fprintf(&b, "Key Topics: %s\n", strings.Join(names, ", "))
	}

	if result.Sentiment > 0.1 {
		b.WriteString("Tone: positive\n")
	} else if result.Sentiment < -0.1 {
		b.WriteString("Tone: negative\n")
	}

	content := doc.Content
	if len([]rune(content)) > maxContentChars {
		content = truncateRunes(content, maxContentChars) + "..."
	}
	fmt.Fprintf(&b, "Content: %s", content)

	return b.String()
}

// truncateRunes shortens s to at most n runes without splitting a
// multi-byte character.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
