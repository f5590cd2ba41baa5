package util

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// FuzzyMatch reports whether every rune of pattern appears in candidate in
// order, ignoring case.
func FuzzyMatch(pattern, candidate string) bool {
	if pattern == "" {
		return true
	}
	return len(fuzzy.Find(strings.ToLower(pattern), []string{strings.ToLower(candidate)})) > 0
}

// ScoreTitles returns up to n titles ordered by fuzzy match quality.
func ScoreTitles(input string, candidates []string, n int) []string {
	if input == "" {
		return candidates
	}
	lowered := make([]string, len(candidates))
	for i, c := range candidates {
		lowered[i] = strings.ToLower(c)
	}
	matches := fuzzy.Find(strings.ToLower(input), lowered)
	if len(matches) == 0 {
		return nil
	}

	limit := n
	if n <= 0 || len(matches) < limit {
		limit = len(matches)
	}

	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = candidates[matches[i].Index]
	}
	return out
}
