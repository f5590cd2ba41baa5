package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/topviews/internal/listview"
	"github.com/mithrel/topviews/internal/ranking"
)

func TestViews(t *testing.T) {
	require.Equal(t, "0", Views(0))
	require.Equal(t, "999", Views(999))
	require.Equal(t, "1,234,567", Views(1234567))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []ranking.RankEntry{
		{Title: "Main Page", Views: 100},
		{Title: `The "Thing", 1982`, Views: 5},
	}))
	require.Equal(t, "Page,Views\n\"Main Page\",100\n\"The \"\"Thing\"\", 1982\",5\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, nil))
	require.Equal(t, "Page,Views\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []ranking.RankEntry{{Title: "A b", Views: 3}}, false))
	require.JSONEq(t, `[{"page":"A b","views":3}]`, buf.String())

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, nil, true))
	require.Equal(t, "[]\n", buf.String())
}

func TestWriteNDJSON(t *testing.T) {
	var buf bytes.Buffer
	rows := []listview.VisibleEntry{{Rank: 1, Title: "A", Views: 9, SourceIndex: 0}, {Rank: 2, Title: "C", Views: 1, SourceIndex: 2}}
	require.NoError(t, WriteNDJSON(&buf, rows))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var got listview.VisibleEntry
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &got))
	require.Equal(t, rows[1], got)
}

func TestWritePlain(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	rows := []listview.VisibleEntry{{Rank: 1, Title: "Main\tPage", Views: 12345}, {Rank: 10, Title: "B", Views: 7}}
	require.NoError(t, WritePlain(&buf, rows, true))
	out := buf.String()
	require.Contains(t, out, "Page")
	require.Contains(t, out, `Main\tPage`)
	require.Contains(t, out, "12,345")
	require.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)

	buf.Reset()
	WriteError(&buf, bytesErr("boom"))
	require.Equal(t, "error: boom\n", buf.String())
}

type bytesErr string

func (e bytesErr) Error() string { return string(e) }

func TestMarkdownEscape(t *testing.T) {
	require.Equal(t, `A\|B \[x\] \_y\_`, mdEscape("A|B [x] _y_"))
}
