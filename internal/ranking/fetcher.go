package ranking

import (
	"context"

	"github.com/mithrel/topviews/internal/util"
)

// Fetcher is the network-backed Source
type Fetcher struct {
	client *Client
}

// NewFetcher returns a Source backed by c
func NewFetcher(c *Client) *Fetcher { return &Fetcher{client: c} }

// Rankings implements Source
func (f *Fetcher) Rankings(ctx context.Context, q Query) ([]RankEntry, error) {
	return f.client.TopArticles(ctx, q)
}

// NamespaceExcludes implements Source
func (f *Fetcher) NamespaceExcludes(ctx context.Context, project string, titles []string) ([]string, error) {
	if len(titles) == 0 {
		return nil, nil
	}
	info, err := f.client.PageInfo(ctx, project, titles)
	if err != nil {
		return nil, err
	}
	return Classify(info), nil
}

// Classify picks the titles to exclude from a metadata lookup: the main page,
// then every page outside namespace 0 or missing, mapped back to the title
// that was originally requested.
func Classify(info *PageInfo) []string {
	if info == nil {
		return nil
	}
	var out []string
	if info.MainPage != "" {
		out = append(out, util.Descore(info.MainPage))
	}
	requested := make(map[string]string, len(info.Normalized))
	for to, from := range info.Normalized {
		requested[to] = from
	}
	for _, p := range info.Pages {
		if p.NS == 0 && !p.Missing {
			continue
		}
		title := p.Title
		if from, ok := requested[title]; ok {
			title = from
			delete(requested, p.Title)
		}
		out = append(out, util.Descore(title))
	}
	return out
}
