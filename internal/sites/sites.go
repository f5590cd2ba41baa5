// Package sites holds the registry of wiki projects the ranking source knows.
package sites

import (
	"sort"
	"strings"
)

var languages = []string{
	"en", "de", "fr", "es", "ja", "ru", "it", "zh", "pt", "pl", "nl", "sv", "ar", "fa",
	"uk", "he", "id", "ko", "vi", "cs", "fi", "hu", "no", "tr", "ro", "ca", "da", "el",
	"bg", "sr", "hi", "th", "ms", "sk", "eo", "lt", "sl", "et", "hr", "simple",
}

var families = []string{
	"wikipedia", "wiktionary", "wikibooks", "wikinews", "wikiquote",
	"wikisource", "wikiversity", "wikivoyage",
}

var specials = []string{
	"commons.wikimedia.org",
	"meta.wikimedia.org",
	"species.wikimedia.org",
	"incubator.wikimedia.org",
	"www.wikidata.org",
	"www.mediawiki.org",
}

// Registry answers whether a project is a known site. The zero value is empty.
type Registry struct {
	domains map[string]struct{}
}

// NewRegistry builds the default registry plus any extra domains
func NewRegistry(extra ...string) *Registry {
	r := &Registry{domains: make(map[string]struct{}, len(languages)*len(families)+len(specials)+len(extra))}
	for _, lang := range languages {
		for _, fam := range families {
			r.domains[lang+"."+fam+".org"] = struct{}{}
		}
	}
	for _, d := range specials {
		r.domains[d] = struct{}{}
	}
	for _, d := range extra {
		if d = Normalize(d); d != "" {
			r.domains[d] = struct{}{}
		}
	}
	return r
}

// Contains reports whether project (after normalization) is known
func (r *Registry) Contains(project string) bool {
	if r == nil {
		return false
	}
	_, ok := r.domains[Normalize(project)]
	return ok
}

// Domains returns the known domains sorted, for completions
func (r *Registry) Domains() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.domains))
	for d := range r.domains {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Normalize lowercases a project and strips scheme and path. A two-label
// name gets ".org" appended, so "https://EN.wikipedia.org/wiki/X" and
// "en.wikipedia" both become "en.wikipedia.org".
func Normalize(project string) string {
	p := strings.ToLower(strings.TrimSpace(project))
	p = strings.TrimPrefix(p, "https://")
	p = strings.TrimPrefix(p, "http://")
	p = strings.TrimPrefix(p, "//")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return ""
	}
	if !strings.HasSuffix(p, ".org") && strings.Count(p, ".") == 1 {
		p += ".org"
	}
	return p
}

// APIProject is the project segment of the pageviews API ("en.wikipedia")
func APIProject(project string) string {
	return strings.TrimSuffix(Normalize(project), ".org")
}
