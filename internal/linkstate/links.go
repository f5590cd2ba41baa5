package linkstate

import (
	"net/url"
	"time"

	"github.com/mithrel/topviews/internal/util"
)

// PageviewsBase is the detail-chart tool entries link to
const PageviewsBase = "https://pageviews.wmcloud.org/pageviews/"

// PageURL links to the article itself
func PageURL(project, title string) string {
	return "https://" + project + "/wiki/" + url.PathEscape(util.Underscore(title))
}

// PageviewsURL links to the daily chart for title around the selected period
func PageviewsURL(s ViewState, title string, now time.Time) string {
	start, end := s.Date.Span(now)
	q := url.Values{}
	q.Set("start", start.Format(dayLayout))
	q.Set("end", end.Format(dayLayout))
	q.Set("project", s.Project)
	q.Set("platform", string(s.Platform))
	q.Set("pages", util.Underscore(title))
	return PageviewsBase + "?" + q.Encode()
}
