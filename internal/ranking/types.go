// Package ranking fetches top-viewed pages and classifies them by namespace.
package ranking

import "context"

// RankEntry is one ranked page. Title is in display form (spaces).
type RankEntry struct {
	Title string `json:"page"`
	Views int64  `json:"views"`
}

// Query addresses one ranking. Date is the API date path, e.g. "2016/02/all-days".
// Fresh asks caching layers to skip their read.
type Query struct {
	Project  string
	Platform string
	Date     string
	Fresh    bool
}

// Source is the two-stage ranking acquisition the view controller drives
type Source interface {
	// Rankings returns pages in source order, most viewed first
	Rankings(ctx context.Context, q Query) ([]RankEntry, error)

	// NamespaceExcludes returns titles to hide: the site main page plus every
	// title outside the main namespace or missing. Titles come back as they
	// were requested.
	NamespaceExcludes(ctx context.Context, project string, titles []string) ([]string, error)
}

// Titles returns the titles of entries in order
func Titles(entries []RankEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Title
	}
	return out
}
