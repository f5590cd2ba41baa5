package ranking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	perr "github.com/mithrel/topviews/internal/errors"
)

const topBody = `{"items":[{"project":"en.wikipedia","access":"all-access","year":"2016","month":"02","day":"all-days",
"articles":[{"article":"Main_Page","views":500,"rank":1},{"article":"Special:Search","views":300,"rank":2},
{"article":"Talk:X","views":80,"rank":3},{"article":"Deadpool_(film)","views":80,"rank":4}]}]}`

const infoBody = `{"batchcomplete":true,"query":{
"normalized":[{"fromencoded":false,"from":"deadpool (film)","to":"Deadpool (film)"}],
"pages":[{"ns":0,"title":"Main Page","pageid":1},{"ns":-1,"title":"Special:Search","special":true},
{"ns":1,"title":"Talk:X","pageid":3},{"ns":0,"title":"Deadpool (film)","pageid":4},
{"ns":0,"title":"Nope","missing":true}],
"general":{"mainpage":"Main Page","sitename":"Wikipedia"}}}`

func newTestServer(t *testing.T, seen *[]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics/pageviews/top/", func(w http.ResponseWriter, r *http.Request) {
		*seen = append(*seen, r.URL.Path)
		if strings.Contains(r.URL.Path, "/bogus.wikipedia/") {
			http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
			return
		}
		if strings.Contains(r.URL.Path, "/empty.wikipedia/") {
			_, _ = w.Write([]byte(`{"items":[]}`))
			return
		}
		_, _ = w.Write([]byte(topBody))
	})
	mux.HandleFunc("/w/api.php", func(w http.ResponseWriter, r *http.Request) {
		*seen = append(*seen, r.URL.RawQuery)
		_, _ = w.Write([]byte(infoBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Options{
		BaseURL:    srv.URL + "/",
		HTTPClient: srv.Client(),
		WikiAPI:    func(string) string { return srv.URL + "/w/api.php" },
	})
}

func TestTopArticles(t *testing.T) {
	var seen []string
	srv := newTestServer(t, &seen)
	c := newTestClient(srv)

	got, err := c.TopArticles(context.Background(), Query{Project: "en.wikipedia.org", Platform: "all-access", Date: "2016/02/all-days"})
	require.NoError(t, err)
	require.Equal(t, []string{"/metrics/pageviews/top/en.wikipedia/all-access/2016/02/all-days"}, seen)
	require.Equal(t, []RankEntry{
		{Title: "Main Page", Views: 500},
		{Title: "Special:Search", Views: 300},
		{Title: "Talk:X", Views: 80},
		{Title: "Deadpool (film)", Views: 80},
	}, got)
}

func TestTopArticlesFailures(t *testing.T) {
	var seen []string
	srv := newTestServer(t, &seen)
	c := newTestClient(srv)

	for _, project := range []string{"bogus.wikipedia.org", "empty.wikipedia.org"} {
		_, err := c.TopArticles(context.Background(), Query{Project: project, Platform: "all-access", Date: "2016/02/01"})
		require.Error(t, err, project)
		require.True(t, perr.IsCode(err, perr.ErrorCodeFetchFailure), project)
	}

	srv.Close()
	_, err := c.TopArticles(context.Background(), Query{Project: "en.wikipedia.org", Platform: "all-access", Date: "2016/02/01"})
	require.True(t, perr.IsCode(err, perr.ErrorCodeFetchFailure))
}

func TestPageInfo(t *testing.T) {
	var seen []string
	srv := newTestServer(t, &seen)
	c := newTestClient(srv)

	info, err := c.PageInfo(context.Background(), "en.wikipedia.org", []string{"Main Page", "deadpool (film)"})
	require.NoError(t, err)
	require.Len(t, seen, 1)
	require.Contains(t, seen[0], "titles=Main+Page%7Cdeadpool+%28film%29")
	require.Contains(t, seen[0], "meta=siteinfo")
	require.Contains(t, seen[0], "prop=info")
	require.Equal(t, "Main Page", info.MainPage)
	require.Equal(t, "deadpool (film)", info.Normalized["Deadpool (film)"])
	require.Len(t, info.Pages, 5)
	require.True(t, info.Pages[4].Missing)
}

func TestPageInfoMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"code":"badvalue"}}`))
	}))
	defer srv.Close()
	c := NewClient(Options{HTTPClient: srv.Client(), WikiAPI: func(string) string { return srv.URL }})

	_, err := c.PageInfo(context.Background(), "en.wikipedia.org", []string{"A"})
	require.True(t, perr.IsCode(err, perr.ErrorCodeNamespaceLookup))
}

func TestDefaultWikiAPI(t *testing.T) {
	require.Equal(t, "https://en.wikipedia.org/w/api.php", DefaultWikiAPI("en.wikipedia"))
}

func TestWikiAPITemplate(t *testing.T) {
	require.Equal(t, "https://de.wikipedia.org/w/api.php", WikiAPITemplate("")("de.wikipedia"))
	require.Equal(t, "http://mirror.local/de.wikipedia.org/api.php", WikiAPITemplate("http://mirror.local/{project}/api.php")("de.wikipedia"))
}
