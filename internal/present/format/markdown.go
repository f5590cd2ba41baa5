package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/mithrel/topviews/internal/listview"
)

// PrettyRow is a visible row with the links the pretty table shows
type PrettyRow struct {
	listview.VisibleEntry
	PageURL      string
	PageviewsURL string
}

// WritePretty renders rows as a markdown table through glamour
func WritePretty(w io.Writer, heading string, rows []PrettyRow) error {
	var b strings.Builder
	if heading != "" {
		b.WriteString("# " + heading + "\n\n")
	}
	b.WriteString("| # | Page | Views |\n|--:|:-----|------:|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %d | [%s](%s) | [%s](%s) |\n",
			r.Rank, mdEscape(r.Title), r.PageURL, Views(r.Views), r.PageviewsURL)
	}

	rend, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := rend.Render(b.String())
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

var mdEscaper = strings.NewReplacer(`|`, `\|`, `[`, `\[`, `]`, `\]`, `*`, `\*`, `_`, `\_`)

func mdEscape(s string) string { return mdEscaper.Replace(s) }
