package search

import (
	"fmt"
	"strings"
)

// Format renders results as a numbered markdown block. Error entries
// are rendered distinctly with a leading ❌.
func Format(results []Result) string {
	if len(results) == 0 {
		return "No search results found."
	}

	var b strings.Builder
	b.WriteString("Search Results:\n\n")
	n := 0
	for _, r := range results {
		if r.Err != "" {
			fmt.Fprintf(&b, "❌ %s\n", r.Err)
			continue
		}
		n++
		fmt.Fprintf(&b, "%d. **%s**\n   %s\n   🔗 %s\n\n", n, r.Title, r.Snippet, r.Link)
	}
	return b.String()
}
