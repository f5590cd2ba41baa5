package listview

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/mithrel/topviews/internal/util"
)

// Mode selects how a search query matches titles
type Mode string

const (
	ModeRegex     Mode = "regex"
	ModeSubstring Mode = "substring"
	ModeFuzzy     Mode = "fuzzy"
)

// Matcher is a case-insensitive title predicate. An inactive matcher means
// no search is in effect.
type Matcher interface {
	Active() bool
	Match(title string) bool
	Query() string
}

// NewMatcher builds a matcher for query. An empty or blank query is inactive.
// A query that is not a valid regular expression matches literally.
func NewMatcher(mode Mode, query string) Matcher {
	if strings.TrimSpace(query) == "" {
		return inactive{}
	}
	switch mode {
	case ModeSubstring:
		f := cases.Fold()
		return substring{q: query, folded: f.String(query), fold: f}
	case ModeFuzzy:
		return fuzzyMatcher{q: query}
	default:
		re, err := regexp.Compile("(?i)" + query)
		if err != nil {
			re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
		}
		return regex{q: query, re: re}
	}
}

type inactive struct{}

func (inactive) Active() bool { return false }
func (inactive) Match(string) bool { return true }
func (inactive) Query() string { return "" }

type regex struct {
	q  string
	re *regexp.Regexp
}

func (r regex) Active() bool { return true }
func (r regex) Match(title string) bool { return r.re.MatchString(title) }
func (r regex) Query() string { return r.q }

type substring struct {
	q, folded string
	fold      cases.Caser
}

func (s substring) Active() bool { return true }
func (s substring) Match(title string) bool {
	return strings.Contains(s.fold.String(title), s.folded)
}
func (s substring) Query() string { return s.q }

type fuzzyMatcher struct{ q string }

func (f fuzzyMatcher) Active() bool { return true }
func (f fuzzyMatcher) Match(title string) bool { return util.FuzzyMatch(f.q, title) }
func (f fuzzyMatcher) Query() string { return f.q }
