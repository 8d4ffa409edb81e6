package rag

import (
	"fmt"
	"strings"

	"github.com/podsage/podsage/engine/domain"
)

// ToMarkdown renders a query result as a shareable markdown document:
// the question, the answer, then one section per citation.
func ToMarkdown(res domain.QueryResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Query: %s\n\n", res.Query)
	b.WriteString("## Answer\n\n")
	b.WriteString(res.Answer + "\n\n")
	b.WriteString("---\n\n")
	b.WriteString("## Sources\n\n")

	for i, c := range res.Citations {
		fmt.Fprintf(&b, "### Source %d: %s\n", i+1, c.Guest)
		fmt.Fprintf(&b, "**Episode:** %s\n", c.Title)
		if c.YouTubeURL != "" {
			fmt.Fprintf(&b, "**YouTube:** %s\n", c.YouTubeURL)
		}
		fmt.Fprintf(&b, "\n**Excerpt:**\n> %s\n\n", c.Snippet)
	}

	fmt.Fprintf(&b, "\n*Based on %d relevant transcript excerpts*\n", res.NSources)

	return b.String()
}
