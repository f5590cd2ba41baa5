package ranking

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	perr "github.com/mithrel/topviews/internal/errors"
	"github.com/mithrel/topviews/internal/logger"
	"github.com/mithrel/topviews/internal/sites"
	"github.com/mithrel/topviews/internal/util"
)

const (
	baseURLDefault = "https://wikimedia.org/api/rest_v1"
	defaultTimeout = 10 * time.Second
	defaultUA      = "topviews-cli (https://github.com/mithrel/topviews)"
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// HTTPClient overrides the transport; Timeout is ignored when set
	HTTPClient *http.Client

	// WikiAPI maps a project domain to its MediaWiki api.php endpoint
	WikiAPI func(project string) string
}

// Client talks to the pageviews REST API and to per-wiki MediaWiki APIs.
// It never retries.
type Client struct {
	http *http.Client
	opts Options
	now  func() time.Time
}

// log is resolved per call and follows the current root logger
func (c *Client) log() *logger.Logger { return logger.Named("ranking") }

// NewClient creates a Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.WikiAPI == nil {
		o.WikiAPI = DefaultWikiAPI
	}
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}
	return &Client{
		http: hc,
		opts: o,
		now:  time.Now,
	}
}

// DefaultWikiAPI is https://<project>/w/api.php
func DefaultWikiAPI(project string) string {
	return "https://" + sites.Normalize(project) + "/w/api.php"
}

// WikiAPITemplate maps projects through tmpl, replacing "{project}" with the
// normalized domain. An empty template gives DefaultWikiAPI.
func WikiAPITemplate(tmpl string) func(project string) string {
	if strings.TrimSpace(tmpl) == "" {
		return DefaultWikiAPI
	}
	return func(project string) string {
		return strings.ReplaceAll(tmpl, "{project}", sites.Normalize(project))
	}
}

type topResponse struct {
	Items []struct {
		Articles []struct {
			Article string `json:"article"`
			Views   int64  `json:"views"`
			Rank    int    `json:"rank"`
		} `json:"articles"`
	} `json:"items"`
}

// TopArticles fetches the ranking for q, in the order the source returns it
func (c *Client) TopArticles(ctx context.Context, q Query) ([]RankEntry, error) {
	path := "/metrics/pageviews/top/" +
		url.PathEscape(sites.APIProject(q.Project)) + "/" +
		url.PathEscape(q.Platform) + "/" + q.Date

	var body topResponse
	if err := c.getJSON(ctx, c.opts.BaseURL+path, &body); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeFetchFailure, "top articles %s", path)
	}
	if len(body.Items) == 0 {
		return nil, perr.FetchFailuref("top articles %s: response has no items", path)
	}

	arts := body.Items[0].Articles
	out := make([]RankEntry, 0, len(arts))
	for _, a := range arts {
		out = append(out, RankEntry{Title: util.Descore(a.Article), Views: max(a.Views, 0)})
	}
	return out, nil
}

// PageInfo is the part of a MediaWiki info+siteinfo query the namespace
// stage needs
type PageInfo struct {
	MainPage   string
	Pages      []InfoPage
	Normalized map[string]string // canonical title -> requested title
}

// InfoPage is one page of a metadata lookup
type InfoPage struct {
	Title   string
	NS      int
	Missing bool
}

type infoResponse struct {
	Query *struct {
		Normalized []struct {
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"normalized"`
		Pages []struct {
			NS      int    `json:"ns"`
			Title   string `json:"title"`
			Missing bool   `json:"missing"`
			Invalid bool   `json:"invalid"`
		} `json:"pages"`
		General struct {
			MainPage string `json:"mainpage"`
		} `json:"general"`
	} `json:"query"`
}

// PageInfo looks up titles in one batched request
func (c *Client) PageInfo(ctx context.Context, project string, titles []string) (*PageInfo, error) {
	v := url.Values{}
	v.Set("action", "query")
	v.Set("prop", "info")
	v.Set("meta", "siteinfo")
	v.Set("siprop", "general")
	v.Set("titles", strings.Join(titles, "|"))
	v.Set("format", "json")
	v.Set("formatversion", "2")

	endpoint := c.opts.WikiAPI(project)
	var body infoResponse
	if err := c.getJSON(ctx, endpoint+"?"+v.Encode(), &body); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeNamespaceLookup, "page info %s", project)
	}
	if body.Query == nil {
		return nil, perr.Newf(perr.ErrorCodeNamespaceLookup, "page info %s: response has no query", project)
	}

	info := &PageInfo{
		MainPage:   body.Query.General.MainPage,
		Normalized: make(map[string]string, len(body.Query.Normalized)),
	}
	for _, n := range body.Query.Normalized {
		info.Normalized[n.To] = n.From
	}
	for _, p := range body.Query.Pages {
		info.Pages = append(info.Pages, InfoPage{Title: p.Title, NS: p.NS, Missing: p.Missing || p.Invalid})
	}
	return info, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		c.log().Debug().Err(err).Str("url", u).Dur("latency", lat).Msg("http transport error")
		return err
	}
	defer resp.Body.Close()

	c.log().Debug().
		Str("method", req.Method).
		Str("host", req.URL.Host).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("latency", lat).
		Msg("http response")

	if resp.StatusCode != http.StatusOK {
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return perr.Newf(perr.ErrorCodeUnknown, "unexpected status %d body %s", resp.StatusCode, strings.TrimSpace(string(tail)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "decode response")
	}
	return nil
}
