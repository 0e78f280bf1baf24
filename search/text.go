package search

import "strings"

// tokenize splits text into lowercase words with edge punctuation trimmed.
// Word order is preserved; nothing is filtered, so the caller can rebuild
// residual text from unconsumed tokens.
func tokenize(text string) []string {
	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"()[]{}"))
		if cleaned != "" {
			tokens = append(tokens, cleaned)
		}
	}

	return tokens
}
