package format

import (
	"encoding/json"
	"io"

	"github.com/mithrel/topviews/internal/listview"
	"github.com/mithrel/topviews/internal/ranking"
)

// WriteJSON writes a [{page, views}] export
func WriteJSON(w io.Writer, entries []ranking.RankEntry, indent bool) error {
	if entries == nil {
		entries = []ranking.RankEntry{}
	}
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(entries)
}

// WriteNDJSON writes one visible row per line
func WriteNDJSON(w io.Writer, rows []listview.VisibleEntry) error {
	enc := json.NewEncoder(w)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
