// Package linkstate models the addressable parameters of a ranking view and
// converts them to and from a shareable query string.
package linkstate

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mithrel/topviews/internal/util"
)

// Platform is the access method the pageviews source splits counts by
type Platform string

const (
	AllAccess Platform = "all-access"
	Desktop   Platform = "desktop"
	MobileWeb Platform = "mobile-web"
	MobileApp Platform = "mobile-app"
)

// Platforms lists the platforms the ranking source accepts
var Platforms = []Platform{AllAccess, Desktop, MobileWeb, MobileApp}

// Valid reports whether p is one of Platforms
func (p Platform) Valid() bool { return slices.Contains(Platforms, p) }

// NamedRange is a relative date selector resolved at evaluation time
type NamedRange string

const (
	LastMonth NamedRange = "last-month"
	Yesterday NamedRange = "yesterday"
)

// Granularity selects between a calendar month and a single day
type Granularity int

const (
	Monthly Granularity = iota
	Daily
)

func (g Granularity) String() string {
	if g == Daily {
		return "daily"
	}
	return "monthly"
}

const (
	monthLayout = "2006-01"
	dayLayout   = "2006-01-02"
)

// DateSelector is either a named range or an explicit date, never both.
// Build one with Named, Month or Day.
type DateSelector struct {
	Range       NamedRange
	Date        time.Time
	Granularity Granularity
}

// Named selects a relative range
func Named(r NamedRange) DateSelector {
	g := Monthly
	if r == Yesterday {
		g = Daily
	}
	return DateSelector{Range: r, Granularity: g}
}

// Month selects the calendar month containing t
func Month(t time.Time) DateSelector {
	t = t.UTC()
	return DateSelector{Date: time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), Granularity: Monthly}
}

// Day selects the calendar day containing t
func Day(t time.Time) DateSelector {
	t = t.UTC()
	return DateSelector{Date: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), Granularity: Daily}
}

// IsNamed reports whether the selector is a relative range
func (d DateSelector) IsNamed() bool { return d.Range != "" }

// IsZero reports whether nothing is selected
func (d DateSelector) IsZero() bool { return d.Range == "" && d.Date.IsZero() }

// Equal compares two selectors by value
func (d DateSelector) Equal(o DateSelector) bool {
	return d.Range == o.Range && d.Granularity == o.Granularity && d.Date.Equal(o.Date)
}

// Resolve returns the concrete date the selector points at
func (d DateSelector) Resolve(now time.Time) time.Time {
	if !d.IsNamed() {
		return d.Date
	}
	now = now.UTC()
	switch d.Range {
	case Yesterday:
		return time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, time.UTC)
	}
}

// Explicit returns the selector with its named range resolved against now
func (d DateSelector) Explicit(now time.Time) DateSelector {
	if !d.IsNamed() {
		return d
	}
	if d.Granularity == Daily {
		return Day(d.Resolve(now))
	}
	return Month(d.Resolve(now))
}

// String is the link form: the range name, YYYY-MM or YYYY-MM-DD
func (d DateSelector) String() string {
	switch {
	case d.IsNamed():
		return string(d.Range)
	case d.Date.IsZero():
		return ""
	case d.Granularity == Daily:
		return d.Date.Format(dayLayout)
	default:
		return d.Date.Format(monthLayout)
	}
}

// APIPath is the date segment of the top-articles endpoint
func (d DateSelector) APIPath(now time.Time) string {
	t := d.Resolve(now)
	if d.Granularity == Daily {
		return t.Format("2006/01/02")
	}
	return t.Format("2006/01") + "/all-days"
}

// Span is the inclusive day range a detail chart should cover: the whole
// month, or three days either side of a single day.
func (d DateSelector) Span(now time.Time) (start, end time.Time) {
	t := d.Resolve(now)
	if d.Granularity == Daily {
		return t.AddDate(0, 0, -3), t.AddDate(0, 0, 3)
	}
	return t, t.AddDate(0, 1, -1)
}

// ParseDate reads the link form of a selector
func ParseDate(s string) (DateSelector, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch NamedRange(s) {
	case LastMonth, Yesterday:
		return Named(NamedRange(s)), nil
	}
	if t, err := time.Parse(dayLayout, s); err == nil {
		return Day(t), nil
	}
	if t, err := time.Parse(monthLayout, s); err == nil {
		return Month(t), nil
	}
	return DateSelector{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseDateExpr accepts everything ParseDate does plus relative shorthand
// such as "3d" or "1 month ago", resolved against now.
func ParseDateExpr(s string, now time.Time) (DateSelector, error) {
	if d, err := ParseDate(s); err == nil {
		return d, nil
	}
	t, monthly, err := util.ParseRelativeDate(s, now)
	if err != nil {
		return DateSelector{}, fmt.Errorf("unrecognized date %q", strings.TrimSpace(s))
	}
	if monthly {
		return Month(t), nil
	}
	return Day(t), nil
}

// MarshalText implements encoding.TextMarshaler
func (d DateSelector) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler
func (d *DateSelector) UnmarshalText(b []byte) error {
	v, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ViewState is everything a shareable link carries
type ViewState struct {
	Project  string       `json:"project"`
	Platform Platform     `json:"platform"`
	Date     DateSelector `json:"date"`
	Excludes []string     `json:"excludes"`
}

// SameQuery reports whether two states fetch the same ranking
func (s ViewState) SameQuery(o ViewState) bool {
	return s.Project == o.Project && s.Platform == o.Platform && s.Date.Equal(o.Date)
}

// Equal compares states by value; nil and empty excludes are equal
func (s ViewState) Equal(o ViewState) bool {
	return s.SameQuery(o) && slices.Equal(s.Excludes, o.Excludes)
}

// Clone returns a copy that shares no slices with s
func (s ViewState) Clone() ViewState {
	c := s
	c.Excludes = slices.Clone(s.Excludes)
	return c
}
