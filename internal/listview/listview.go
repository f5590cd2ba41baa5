// Package listview derives the visible, densely ranked rows of a ranking.
// Everything here is pure: inputs are never mutated.
package listview

import "github.com/mithrel/topviews/internal/ranking"

// Excluder answers exclude-set membership. *exclude.Set satisfies it.
type Excluder interface {
	Contains(title string) bool
}

// Window is the pagination window. Offset grows by whole pages.
type Window struct {
	PageSize int
	Offset   int
}

// NewWindow returns the first page
func NewWindow(pageSize int) Window {
	if pageSize <= 0 {
		pageSize = 100
	}
	return Window{PageSize: pageSize}
}

// Limit is how many surviving entries the window shows
func (w Window) Limit() int { return w.Offset + w.PageSize }

// Expand returns the window grown by one page
func (w Window) Expand() Window {
	w.Offset += w.PageSize
	return w
}

// VisibleEntry is one rendered row. SourceIndex points into the raw ranking.
type VisibleEntry struct {
	Rank        int    `json:"rank"`
	Title       string `json:"title"`
	Views       int64  `json:"views"`
	SourceIndex int    `json:"source_index"`
}

// Visible walks raw in source order, skipping excluded titles and assigning
// dense ranks. Without a matcher it stops at the window limit. With one, it
// ranks the whole sequence and returns every match, ignoring the window.
func Visible(raw []ranking.RankEntry, ex Excluder, w Window, m Matcher) []VisibleEntry {
	if m != nil && m.Active() {
		return search(raw, ex, m)
	}
	limit := w.Limit()
	out := make([]VisibleEntry, 0, min(limit, len(raw)))
	rank := 0
	for i, e := range raw {
		if len(out) >= limit {
			break
		}
		if excluded(ex, e.Title) {
			continue
		}
		rank++
		out = append(out, VisibleEntry{Rank: rank, Title: e.Title, Views: e.Views, SourceIndex: i})
	}
	return out
}

func search(raw []ranking.RankEntry, ex Excluder, m Matcher) []VisibleEntry {
	var out []VisibleEntry
	rank := 0
	for i, e := range raw {
		if excluded(ex, e.Title) {
			continue
		}
		rank++
		if m.Match(e.Title) {
			out = append(out, VisibleEntry{Rank: rank, Title: e.Title, Views: e.Views, SourceIndex: i})
		}
	}
	return out
}

// Surviving returns every non-excluded entry in source order
func Surviving(raw []ranking.RankEntry, ex Excluder) []ranking.RankEntry {
	out := make([]ranking.RankEntry, 0, len(raw))
	for _, e := range raw {
		if !excluded(ex, e.Title) {
			out = append(out, e)
		}
	}
	return out
}

// HasMore reports whether expanding the window would show more rows
func HasMore(raw []ranking.RankEntry, ex Excluder, w Window) bool {
	n := 0
	for _, e := range raw {
		if excluded(ex, e.Title) {
			continue
		}
		if n++; n > w.Limit() {
			return true
		}
	}
	return false
}

// FirstSurviving returns the views of the first non-excluded entry.
// Callers fix this once per fetch as the bar-scale baseline.
func FirstSurviving(raw []ranking.RankEntry, ex Excluder) (int64, bool) {
	for _, e := range raw {
		if !excluded(ex, e.Title) {
			return e.Views, true
		}
	}
	return 0, false
}

func excluded(ex Excluder, title string) bool {
	return ex != nil && ex.Contains(title)
}
