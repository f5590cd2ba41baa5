package listview

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mithrel/topviews/internal/exclude"
	"github.com/mithrel/topviews/internal/ranking"
)

func sample() []ranking.RankEntry {
	return []ranking.RankEntry{{Title: "A", Views: 100}, {Title: "B", Views: 80}, {Title: "C", Views: 80}, {Title: "D", Views: 1}}
}

func TestVisibleScenario(t *testing.T) {
	raw := sample()
	ex := exclude.New("B")
	got := Visible(raw, ex, NewWindow(100), nil)
	require.Equal(t, []VisibleEntry{
		{Rank: 1, Title: "A", Views: 100, SourceIndex: 0},
		{Rank: 2, Title: "C", Views: 80, SourceIndex: 2},
		{Rank: 3, Title: "D", Views: 1, SourceIndex: 3},
	}, got)

	base, ok := FirstSurviving(raw, ex)
	require.True(t, ok)
	require.Equal(t, int64(100), base)
}

func TestRanksAreDense(t *testing.T) {
	raw := make([]ranking.RankEntry, 50)
	for i := range raw {
		raw[i] = ranking.RankEntry{Title: fmt.Sprintf("T%d", i), Views: int64(100 - i)}
	}
	for _, ex := range []*exclude.Set{nil, exclude.New("T0"), exclude.New("T1", "T7", "T8", "T49")} {
		got := Visible(raw, ex, NewWindow(100), nil)
		require.Len(t, got, 50-ex.Len())
		for i, e := range got {
			require.Equal(t, i+1, e.Rank)
			require.False(t, ex.Contains(e.Title))
			require.Equal(t, raw[e.SourceIndex].Title, e.Title)
		}
	}
}

func TestPaginationIsMonotonic(t *testing.T) {
	raw := make([]ranking.RankEntry, 25)
	for i := range raw {
		raw[i] = ranking.RankEntry{Title: fmt.Sprintf("T%d", i), Views: int64(100 - i)}
	}
	ex := exclude.New("T3")
	w := NewWindow(10)
	prev := Visible(raw, ex, w, nil)
	require.Len(t, prev, 10)
	require.True(t, HasMore(raw, ex, w))

	for range 3 {
		w = w.Expand()
		next := Visible(raw, ex, w, nil)
		require.Equal(t, prev, next[:len(prev)])
		prev = next
	}
	require.Len(t, prev, 24)
	require.False(t, HasMore(raw, ex, w))
	require.Equal(t, 30, w.Offset)
}

func TestSearchBypassesWindowAndKeepsRanks(t *testing.T) {
	raw := make([]ranking.RankEntry, 300)
	for i := range raw {
		raw[i] = ranking.RankEntry{Title: fmt.Sprintf("Title %d", i), Views: int64(1000 - i)}
	}
	raw[250].Title = "Needle"
	ex := exclude.New("Title 0")
	w := NewWindow(100)

	for _, mode := range []Mode{ModeRegex, ModeSubstring, ModeFuzzy} {
		got := Visible(raw, ex, w, NewMatcher(mode, "NEEDLE"))
		require.Len(t, got, 1, mode)
		require.Equal(t, 250, got[0].Rank, mode)
		require.Equal(t, 250, got[0].SourceIndex, mode)
	}

	windowed := Visible(raw, ex, w, nil)
	searched := Visible(raw, ex, w, NewMatcher(ModeSubstring, "title 1"))
	byTitle := map[string]int{}
	for _, e := range windowed {
		byTitle[e.Title] = e.Rank
	}
	for _, e := range searched {
		if r, ok := byTitle[e.Title]; ok {
			require.Equal(t, r, e.Rank)
		}
	}

	require.Len(t, Visible(raw, ex, w, NewMatcher(ModeRegex, "   ")), 100)
}

func TestMatcherModes(t *testing.T) {
	require.False(t, NewMatcher(ModeRegex, "").Active())

	re := NewMatcher(ModeRegex, "^talk:")
	require.True(t, re.Match("Talk:X"))
	require.False(t, re.Match("X Talk:"))

	bad := NewMatcher(ModeRegex, "c++ (")
	require.True(t, bad.Match("C++ (programming language)"))
	require.Equal(t, "c++ (", bad.Query())

	sub := NewMatcher(ModeSubstring, "MAÑANA")
	require.True(t, sub.Match("Hasta mañana"))
	require.False(t, sub.Match("Hasta"))

	fz := NewMatcher(ModeFuzzy, "brt")
	require.True(t, fz.Match("Albert"))
}

func TestEmptyInputs(t *testing.T) {
	require.Empty(t, Visible(nil, nil, NewWindow(0), nil))
	_, ok := FirstSurviving(sample(), exclude.New("A", "B", "C", "D"))
	require.False(t, ok)
	require.Empty(t, Surviving(sample(), exclude.New("A", "B", "C", "D")))
	require.Equal(t, 100, NewWindow(-1).PageSize)
}
