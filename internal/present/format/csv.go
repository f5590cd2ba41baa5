package format

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/mithrel/topviews/internal/ranking"
)

// WriteCSV writes a Page,Views export. Titles are always quoted with
// embedded quotes doubled.
func WriteCSV(w io.Writer, entries []ranking.RankEntry) error {
	bw := bufio.NewWriter(w)
	_, _ = bw.WriteString("Page,Views\n")
	for _, e := range entries {
		_, _ = bw.WriteString(`"` + strings.ReplaceAll(e.Title, `"`, `""`) + `",`)
		_, _ = bw.WriteString(strconv.FormatInt(e.Views, 10))
		_ = bw.WriteByte('\n')
	}
	return bw.Flush()
}
