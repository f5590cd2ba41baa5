package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/mithrel/topviews/internal/listview"
)

func esc(field string) string {
	field = strings.ReplaceAll(field, "\t", "\\t")
	field = strings.ReplaceAll(field, "\n", "\\n")
	return field
}

// WritePlain writes rank, title and views as an aligned table
func WritePlain(w io.Writer, rows []listview.VisibleEntry, headers bool) error {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	if headers {
		tbl.AddRow(bold.Sprint("#"), bold.Sprint("Page"), bold.Sprint("Views"))
	}
	for _, r := range rows {
		tbl.AddRow(strconv.Itoa(r.Rank), esc(r.Title), Views(r.Views))
	}
	tbl.RightAlign(0)
	tbl.RightAlign(2)

	_, err := fmt.Fprintln(w, tbl)
	return err
}

// WriteError prints err the way plain output reports failures
func WriteError(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold)
	_, _ = fmt.Fprintln(w, red.Sprint("error: ")+err.Error())
}
