package services

import (
	"strings"
	"unicode"
)

// SplitSentences cuts text after '.', '!' or '?' when the terminator is
// followed by whitespace or the end of input, so "Node.js" stays whole.
// Terminators are kept; empty pieces are dropped.
func SplitSentences(text string) []string {
	runes := []rune(text)

	var result []string
	start := 0
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			result = append(result, s)
		}
		start = i + 1
	}

	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		result = append(result, s)
	}

	return result
}
