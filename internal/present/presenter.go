// Package present renders a controller's view for non-interactive output.
package present

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mithrel/topviews/internal/controller"
	perr "github.com/mithrel/topviews/internal/errors"
	"github.com/mithrel/topviews/internal/linkstate"
	"github.com/mithrel/topviews/internal/listview"
	"github.com/mithrel/topviews/internal/present/format"
)

type Mode int

const (
	ModePlain Mode = iota
	ModePretty
	ModeJSON
	ModeNDJSON
	ModeCSV
	ModeTUI
)

// Modes lists the names ParseMode accepts
var Modes = []string{"plain", "pretty", "json", "ndjson", "csv", "tui"}

type Options struct {
	Mode       Mode
	JSONIndent bool
	Headers    bool
}

// ParseMode parses a string like "plain", "pretty", "json", "ndjson", "csv", "tui".
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "plain":
		return ModePlain, true
	case "pretty":
		return ModePretty, true
	case "json":
		return ModeJSON, true
	case "ndjson":
		return ModeNDJSON, true
	case "csv":
		return ModeCSV, true
	case "tui":
		return ModeTUI, true
	default:
		return ModePlain, false
	}
}

// EntryView is a visible row with its outbound links
type EntryView struct {
	listview.VisibleEntry
	PageURL      string `json:"page_url"`
	PageviewsURL string `json:"pageviews_url"`
}

// Snapshot is the serializable view of a controller
type Snapshot struct {
	Link      string              `json:"link"`
	Permalink string              `json:"permalink"`
	Phase     string              `json:"phase"`
	State     linkstate.ViewState `json:"state"`
	Baseline  *int64              `json:"baseline,omitempty"`
	HasMore   bool                `json:"has_more"`
	Query     string              `json:"query,omitempty"`
	Entries   []EntryView         `json:"entries"`
	Error     *perr.Wire          `json:"error,omitempty"`
}

// Snap captures what c currently shows
func Snap(c *controller.Controller) Snapshot {
	s := c.State()
	now := c.Now()
	snap := Snapshot{
		Link:      c.Link(),
		Permalink: c.Permalink(),
		Phase:     c.Phase().String(),
		State:     s,
		HasMore:   c.HasMore(),
		Query:     c.Query(),
		Entries:   []EntryView{},
	}
	if snap.State.Excludes == nil {
		snap.State.Excludes = []string{}
	}
	if b, ok := c.Baseline(); ok {
		snap.Baseline = &b
	}
	if err := c.Err(); err != nil {
		w := perr.WireFrom(err)
		snap.Error = &w
	}
	for _, e := range c.Visible() {
		snap.Entries = append(snap.Entries, EntryView{
			VisibleEntry: e,
			PageURL:      linkstate.PageURL(s.Project, e.Title),
			PageviewsURL: linkstate.PageviewsURL(s, e.Title, now),
		})
	}
	return snap
}

// RenderView writes c in the chosen mode. It returns the controller's error
// after writing, so callers can exit non-zero.
func RenderView(w io.Writer, c *controller.Controller, opts Options) error {
	var err error
	switch opts.Mode {
	case ModeJSON:
		enc := json.NewEncoder(w)
		if opts.JSONIndent {
			enc.SetIndent("", "  ")
		}
		err = enc.Encode(Snap(c))
	case ModeNDJSON:
		err = format.WriteNDJSON(w, c.Visible())
	case ModeCSV:
		err = format.WriteCSV(w, c.Export())
	case ModePretty:
		if c.Err() != nil {
			format.WriteError(w, c.Err())
			break
		}
		s := c.State()
		rows := make([]format.PrettyRow, 0)
		for _, e := range Snap(c).Entries {
			rows = append(rows, format.PrettyRow{VisibleEntry: e.VisibleEntry, PageURL: e.PageURL, PageviewsURL: e.PageviewsURL})
		}
		err = format.WritePretty(w, fmt.Sprintf("%s · %s · %s", s.Project, s.Platform, s.Date), rows)
	case ModeTUI:
		return perr.InvalidArgf("tui output needs an interactive session")
	default:
		if c.Err() != nil {
			format.WriteError(w, c.Err())
			break
		}
		err = format.WritePlain(w, c.Visible(), opts.Headers)
	}
	if err != nil {
		return err
	}
	return c.Err()
}
