package linkstate

import (
	stderrs "errors"
	"net/url"
	"strings"
	"time"

	perr "github.com/mithrel/topviews/internal/errors"
	"github.com/mithrel/topviews/internal/sites"
	"github.com/mithrel/topviews/internal/util"
)

// Query-string keys
const (
	KeyProject  = "project"
	KeyPlatform = "platform"
	KeyDate     = "date"
	KeyExcludes = "excludes"
)

// excludeSep joins titles; it cannot appear in a page title
const excludeSep = "|"

// Defaults are the values a link falls back to for missing or malformed fields
type Defaults struct {
	Project  string
	Platform Platform
	Range    NamedRange
	Excludes []string
}

// Codec converts ViewState to and from a query string
type Codec struct {
	defaults Defaults
}

// NewCodec returns a codec, filling zero defaults with the built-in ones
func NewCodec(d Defaults) *Codec {
	if d.Project = sites.Normalize(d.Project); d.Project == "" {
		d.Project = "en.wikipedia.org"
	}
	if d.Platform == "" {
		d.Platform = AllAccess
	}
	if d.Range == "" {
		d.Range = LastMonth
	}
	d.Excludes = descoreAll(d.Excludes)
	return &Codec{defaults: d}
}

// Defaults returns the fallback values
func (c *Codec) Defaults() Defaults { return c.defaults }

// Default returns the state an empty link decodes to
func (c *Codec) Default() ViewState {
	return ViewState{
		Project:  c.defaults.Project,
		Platform: c.defaults.Platform,
		Date:     Named(c.defaults.Range),
		Excludes: append([]string(nil), c.defaults.Excludes...),
	}
}

// Encode writes every field of s, including an empty excludes list
func (c *Codec) Encode(s ViewState) string {
	var b strings.Builder
	b.WriteString(KeyProject + "=" + url.QueryEscape(s.Project))
	b.WriteString("&" + KeyPlatform + "=" + url.QueryEscape(string(s.Platform)))
	b.WriteString("&" + KeyDate + "=" + url.QueryEscape(s.Date.String()))
	b.WriteString("&" + KeyExcludes + "=")
	for i, t := range s.Excludes {
		if i > 0 {
			b.WriteString(excludeSep)
		}
		b.WriteString(escapeTitle(t))
	}
	return b.String()
}

// Permalink encodes s with its named range replaced by the resolved date
func (c *Codec) Permalink(s ViewState, now time.Time) string {
	s.Date = s.Date.Explicit(now)
	return c.Encode(s)
}

// Decode reads a query string, a full URL, or a "#"-prefixed fragment.
// The returned state is always usable; a non-nil error lists the fields
// that were malformed and replaced by defaults.
func (c *Codec) Decode(raw string) (ViewState, error) {
	params := splitQuery(raw)
	s := c.Default()
	var errs []error

	if v, ok := params[KeyProject]; ok {
		if p, err := url.QueryUnescape(v); err != nil {
			errs = append(errs, perr.Malformedf(KeyProject, "project: %v", err))
		} else if p = sites.Normalize(p); p != "" {
			s.Project = p
		}
	}

	if v, ok := params[KeyPlatform]; ok {
		if p, err := url.QueryUnescape(v); err != nil {
			errs = append(errs, perr.Malformedf(KeyPlatform, "platform: %v", err))
		} else if p = strings.TrimSpace(p); p != "" {
			s.Platform = Platform(p)
		}
	}

	if v, ok := params[KeyDate]; ok {
		d, err := url.QueryUnescape(v)
		if err == nil && strings.TrimSpace(d) != "" {
			var sel DateSelector
			if sel, err = ParseDate(d); err == nil {
				s.Date = sel
			}
		}
		if err != nil {
			errs = append(errs, perr.Malformedf(KeyDate, "date %q: %v", v, err))
		}
	}

	if v, ok := params[KeyExcludes]; ok {
		s.Excludes = nil
		seen := map[string]struct{}{}
		for _, part := range strings.Split(v, excludeSep) {
			raw, err := url.PathUnescape(part)
			if err != nil {
				errs = append(errs, perr.Malformedf(KeyExcludes, "exclude %q: %v", part, err))
				raw = part
			}
			// a re-encoded link carries its separators as %7C
			for _, t := range strings.Split(raw, excludeSep) {
				if t = util.Descore(t); t == "" {
					continue
				}
				if _, dup := seen[t]; dup {
					continue
				}
				seen[t] = struct{}{}
				s.Excludes = append(s.Excludes, t)
			}
		}
	}

	return s, stderrs.Join(errs...)
}

// splitQuery keeps the first value of each key. Values stay escaped.
func splitQuery(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[i+1:]
		if j := strings.IndexByte(raw, '#'); j >= 0 {
			raw = raw[:j]
		}
	} else {
		raw = strings.TrimPrefix(raw, "#")
	}

	out := map[string]string{}
	for _, kv := range strings.Split(raw, "&") {
		if kv == "" {
			continue
		}
		k, v, _ := strings.Cut(kv, "=")
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}

var titleEscaper = strings.NewReplacer(
	"%", "%25",
	"&", "%26",
	"+", "%2B",
	"#", "%23",
	"?", "%3F",
	excludeSep, "%7C",
)

func escapeTitle(t string) string {
	return titleEscaper.Replace(util.Underscore(t))
}

func descoreAll(in []string) []string {
	var out []string
	for _, t := range in {
		if t = util.Descore(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
