package ranker

import "strings"

const (
	// snippetRadius is the number of characters kept on either side of the
	// first query token found in the text.
	snippetRadius = 60
	// snippetFallbackLength is the prefix length used when no token matches.
	snippetFallbackLength = 150
	ellipsis              = "..."
)

// makeSnippet extracts a short context window around the first query token
// present in the text. When no token is found it falls back to the leading
// 150 characters.
func makeSnippet(text string, tokens []string) string {
	if text == "" {
		return ""
	}

	lower := strings.ToLower(text)

	start := -1
	for _, tok := range tokens {
		if idx := strings.Index(lower, tok); idx != -1 {
			start = idx
			break
		}
	}

	if start == -1 {
		if len(text) <= snippetFallbackLength {
			return text + ellipsis
		}
		return text[:snippetFallbackLength] + ellipsis
	}

	lo := start - snippetRadius
	if lo < 0 {
		lo = 0
	}
	hi := start + snippetRadius
	if hi > len(text) {
		hi = len(text)
	}

	snippet := text[lo:hi]
	if lo > 0 {
		snippet = ellipsis + snippet
	}
	if hi < len(text) {
		snippet += ellipsis
	}

	return snippet
}
