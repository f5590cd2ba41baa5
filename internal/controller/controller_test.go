package controller

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	perr "github.com/mithrel/topviews/internal/errors"
	"github.com/mithrel/topviews/internal/linkstate"
	"github.com/mithrel/topviews/internal/listview"
	"github.com/mithrel/topviews/internal/ranking"
)

var fixedNow = time.Date(2016, time.March, 15, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	entries  []ranking.RankEntry
	err      error
	nsErr    error
	nsTitles []string
	queries  []ranking.Query
	lookups  [][]string
}

func (f *fakeSource) Rankings(_ context.Context, q ranking.Query) ([]ranking.RankEntry, error) {
	f.queries = append(f.queries, q)
	return f.entries, f.err
}

func (f *fakeSource) NamespaceExcludes(_ context.Context, _ string, titles []string) ([]string, error) {
	f.lookups = append(f.lookups, titles)
	if f.nsErr != nil {
		return nil, f.nsErr
	}
	var out []string
	out = append(out, "Main Page")
	for _, t := range titles {
		for _, ns := range f.nsTitles {
			if t == ns {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func newController(t *testing.T, pageSize int) (*Controller, *[]string) {
	t.Helper()
	var links []string
	c := New(Options{
		PageSize: pageSize,
		Now:      func() time.Time { return fixedNow },
		OnLink:   func(l string) { links = append(links, l) },
	})
	return c, &links
}

func bigRanking(n int) []ranking.RankEntry {
	out := make([]ranking.RankEntry, n)
	for i := range out {
		out[i] = ranking.RankEntry{Title: fmt.Sprintf("Page %03d", i), Views: int64(10000 - i)}
	}
	return out
}

func TestInitialLoadWithNamespaceLookup(t *testing.T) {
	c, _ := newController(t, 100)
	require.Equal(t, Idle, c.Phase())

	entries := bigRanking(40)
	entries[0].Title = "Main Page"
	entries[5].Title = "Talk:X"
	src := &fakeSource{entries: entries, nsTitles: []string{"Talk:X"}}

	req := c.Load("")
	require.NotNil(t, req)
	require.Equal(t, Loading, c.Phase())
	require.Equal(t, "2016/02/all-days", req.Query.Date)
	require.Equal(t, "en.wikipedia.org", req.Query.Project)

	require.NoError(t, Drive(context.Background(), c, src, req))
	require.Equal(t, Rendered, c.Phase())
	require.Len(t, src.lookups, 1)
	require.Len(t, src.lookups[0], DefaultSample)
	require.Equal(t, []string{"Main Page", "Talk:X"}, c.Excludes())

	vis := c.Visible()
	require.Len(t, vis, 38)
	require.Equal(t, 1, vis[0].Rank)
	require.Equal(t, "Page 001", vis[0].Title)
	require.Equal(t, 1, vis[0].SourceIndex)

	base, ok := c.Baseline()
	require.True(t, ok)
	require.Equal(t, int64(9999), base)
	require.Contains(t, c.Link(), "excludes=Main_Page|Talk:X")
}

func TestExplicitExcludesSkipLookup(t *testing.T) {
	c, _ := newController(t, 100)
	src := &fakeSource{entries: []ranking.RankEntry{{Title: "A", Views: 100}, {Title: "B", Views: 80}, {Title: "C", Views: 80}, {Title: "D", Views: 1}}}

	req := c.Load("project=en.wikipedia.org&excludes=B")
	require.NoError(t, Drive(context.Background(), c, src, req))
	require.Empty(t, src.lookups)

	require.Equal(t, []listview.VisibleEntry{
		{Rank: 1, Title: "A", Views: 100, SourceIndex: 0},
		{Rank: 2, Title: "C", Views: 80, SourceIndex: 2},
		{Rank: 3, Title: "D", Views: 1, SourceIndex: 3},
	}, c.Visible())
	base, _ := c.Baseline()
	require.Equal(t, int64(100), base)
}

func TestIdenticalSubmitIsNoop(t *testing.T) {
	c, _ := newController(t, 100)
	src := &fakeSource{entries: bigRanking(5)}
	require.NoError(t, Drive(context.Background(), c, src, c.Load("")))
	require.Len(t, src.queries, 1)
	gen := c.Generation()

	require.Nil(t, c.Submit(c.State(), false))
	require.Nil(t, c.SetPeriod(c.State().Date))
	require.Nil(t, c.SetProject("  "))
	require.Nil(t, c.SetProject("EN.wikipedia.org"))
	require.Equal(t, Rendered, c.Phase())
	require.Equal(t, gen, c.Generation())

	req := c.Refresh()
	require.NotNil(t, req)
	require.True(t, req.Query.Fresh)
	require.Equal(t, c.Excludes(), []string{"Main Page"})
}

func TestStaleResultsAreDropped(t *testing.T) {
	c, _ := newController(t, 100)
	first := c.Load("project=en.wikipedia.org&excludes=X")
	second := c.SetPlatform(linkstate.Desktop)
	require.NotNil(t, second)
	require.Greater(t, second.Gen, first.Gen)

	require.Nil(t, c.RankingsLoaded(first.Gen, bigRanking(3), nil))
	require.Equal(t, Loading, c.Phase())
	require.Nil(t, c.Visible())

	lk := c.RankingsLoaded(second.Gen, bigRanking(3), nil)
	require.NotNil(t, lk)

	c.NamespaceLoaded(first.Gen, []string{"Page 000"}, nil)
	require.Equal(t, Loading, c.Phase())

	c.NamespaceLoaded(lk.Gen, []string{"Page 001"}, nil)
	require.Equal(t, Rendered, c.Phase())
	require.Equal(t, []string{"Page 001"}, c.Excludes())

	c.NamespaceLoaded(lk.Gen, []string{"Page 002"}, nil)
	require.Equal(t, []string{"Page 001"}, c.Excludes())
}

func TestInvalidProjectFailsFast(t *testing.T) {
	c, _ := newController(t, 100)
	require.Nil(t, c.Load("project=bogus.example.com"))
	require.Equal(t, Rendered, c.Phase())
	require.True(t, perr.IsCode(c.Err(), perr.ErrorCodeInvalidProject))
	require.False(t, c.ControlsVisible())
	require.Nil(t, c.Visible())
	require.Nil(t, c.Export())

	req := c.SetProject("de.wikipedia.org")
	require.NotNil(t, req)
	require.NoError(t, c.Err())
}

func TestFetchFailureRendersError(t *testing.T) {
	c, _ := newController(t, 100)
	src := &fakeSource{err: errors.New("connection refused")}
	err := Drive(context.Background(), c, src, c.Load(""))
	require.True(t, perr.IsCode(err, perr.ErrorCodeFetchFailure))
	require.Equal(t, Rendered, c.Phase())
	require.Nil(t, c.Visible())
	require.False(t, c.HasMore())

	src.err = nil
	src.entries = bigRanking(2)
	require.NoError(t, Drive(context.Background(), c, src, c.Refresh()))
	require.Len(t, c.Visible(), 2)
}

func TestNamespaceFailureDegrades(t *testing.T) {
	c, _ := newController(t, 100)
	src := &fakeSource{entries: bigRanking(3), nsErr: perr.New(perr.ErrorCodeNamespaceLookup, "timeout")}
	require.NoError(t, Drive(context.Background(), c, src, c.Load("")))
	require.Equal(t, Rendered, c.Phase())
	require.Empty(t, c.Excludes())
	require.Len(t, c.Visible(), 3)
}

func TestExcludeWithoutRefetchKeepsBaseline(t *testing.T) {
	c, links := newController(t, 100)
	src := &fakeSource{entries: []ranking.RankEntry{{Title: "A", Views: 100}, {Title: "B", Views: 80}, {Title: "C", Views: 50}}, nsErr: errors.New("x")}
	require.NoError(t, Drive(context.Background(), c, src, c.Load("")))
	gen := c.Generation()

	require.True(t, c.ExcludeAt(0))
	require.False(t, c.ExcludeAt(0))
	require.False(t, c.ExcludeAt(99))
	require.Equal(t, gen, c.Generation())
	require.Equal(t, "B", c.Visible()[0].Title)
	require.Equal(t, 1, c.Visible()[0].Rank)

	base, _ := c.Baseline()
	require.Equal(t, int64(100), base)
	require.Contains(t, (*links)[len(*links)-1], "excludes=A")

	// the link now describes the applied state, so resubmitting it is a no-op
	require.Nil(t, c.Load(c.Link()))

	// an exclude-only change through Submit is applied without a fetch
	next := c.State()
	next.Excludes = []string{"C"}
	require.Nil(t, c.Submit(next, false))
	require.Equal(t, []string{"C"}, c.Excludes())
	require.Equal(t, Rendered, c.Phase())

	require.True(t, c.Restore("C"))
	require.False(t, c.Restore("C"))
	require.Len(t, c.Visible(), 3)
}

func TestPaginationAndSearch(t *testing.T) {
	c, _ := newController(t, 10)
	src := &fakeSource{entries: bigRanking(25), nsErr: errors.New("x")}
	require.NoError(t, Drive(context.Background(), c, src, c.Load("")))

	first := c.Visible()
	require.Len(t, first, 10)
	require.True(t, c.HasMore())

	require.True(t, c.Expand())
	second := c.Visible()
	require.Len(t, second, 20)
	require.Equal(t, first, second[:10])

	require.True(t, c.Expand())
	require.Len(t, c.Visible(), 25)
	require.False(t, c.HasMore())
	require.False(t, c.Expand())

	c.Search("page 02")
	require.Equal(t, "page 02", c.Query())
	hits := c.Visible()
	require.Len(t, hits, 5)
	require.Equal(t, 21, hits[0].Rank)
	require.False(t, c.Expand())

	c.Search("")
	require.Len(t, c.Visible(), 25)

	require.Len(t, c.Export(), 25)
	c.Exclude("Page 000")
	require.Len(t, c.Export(), 24)
}

func TestPeriodChangeClearsExcludesAndWindow(t *testing.T) {
	c, _ := newController(t, 10)
	src := &fakeSource{entries: bigRanking(30)}
	require.NoError(t, Drive(context.Background(), c, src, c.Load("excludes=Page_000")))
	require.True(t, c.Expand())
	require.Equal(t, 10, c.Window().Offset)

	req := c.SetPeriod(linkstate.Day(time.Date(2016, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, req)
	require.Equal(t, "2016/03/01", req.Query.Date)
	require.Empty(t, c.Excludes())
	require.Equal(t, 0, c.Window().Offset)
	require.Contains(t, c.Link(), "date=2016-03-01")

	require.NoError(t, Drive(context.Background(), c, src, req))
	require.Len(t, src.lookups, 1)
	require.Equal(t, []string{"Main Page"}, c.Excludes())
	require.Contains(t, c.Permalink(), "date=2016-03-01")
}

func TestPermalinkResolvesRange(t *testing.T) {
	c, _ := newController(t, 10)
	require.Contains(t, c.Link(), "date=last-month")
	require.Contains(t, c.Permalink(), "date=2016-02")
}

func TestPhaseString(t *testing.T) {
	require.Equal(t, "idle", Idle.String())
	require.Equal(t, "loading", Loading.String())
	require.Equal(t, "rendered", Rendered.String())
}
