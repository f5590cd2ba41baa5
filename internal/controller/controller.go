// Package controller owns one ranking view: its link state, exclude set,
// fetched ranking and pagination. It performs no I/O. Fetches are handed out
// as requests tagged with a generation, and results for an older generation
// are dropped.
package controller

import (
	"strings"
	"time"

	"github.com/mithrel/topviews/internal/exclude"
	perr "github.com/mithrel/topviews/internal/errors"
	"github.com/mithrel/topviews/internal/linkstate"
	"github.com/mithrel/topviews/internal/listview"
	"github.com/mithrel/topviews/internal/logger"
	"github.com/mithrel/topviews/internal/ranking"
	"github.com/mithrel/topviews/internal/sites"
)

// Phase is the controller's coarse state
type Phase int

const (
	Idle Phase = iota
	Loading
	Rendered
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Rendered:
		return "rendered"
	default:
		return "idle"
	}
}

// DefaultSample is how many leading titles the namespace lookup classifies
const DefaultSample = 30

// Options configures a Controller
type Options struct {
	Codec    *linkstate.Codec
	Sites    *sites.Registry
	PageSize int
	Sample   int
	Mode     listview.Mode
	Now      func() time.Time
	Log      *logger.Logger

	// OnLink is called with the encoded state after every mutation
	OnLink func(link string)
}

// FetchRequest asks the host to load a ranking
type FetchRequest struct {
	Gen   uint64
	Query ranking.Query
}

// LookupRequest asks the host to classify titles by namespace
type LookupRequest struct {
	Gen     uint64
	Project string
	Titles  []string
}

// Controller is not safe for concurrent use. Hosts call it from one goroutine.
type Controller struct {
	opts  Options
	codec *linkstate.Codec
	log   logger.Logger

	phase   Phase
	gen     uint64
	state   linkstate.ViewState
	applied string

	excludes *exclude.Set
	raw      []ranking.RankEntry
	window   listview.Window
	matcher  listview.Matcher

	baseline    int64
	hasBaseline bool

	err  error
	link string
}

// New returns an Idle controller holding the codec's default state
func New(o Options) *Controller {
	if o.Codec == nil {
		o.Codec = linkstate.NewCodec(linkstate.Defaults{})
	}
	if o.Sites == nil {
		o.Sites = sites.NewRegistry()
	}
	if o.Sample <= 0 {
		o.Sample = DefaultSample
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Log == nil {
		o.Log = logger.Named("controller")
	}
	c := &Controller{
		opts:     o,
		codec:    o.Codec,
		log:      *o.Log,
		state:    o.Codec.Default(),
		excludes: exclude.New(),
		window:   listview.NewWindow(o.PageSize),
		matcher:  listview.NewMatcher(o.Mode, ""),
	}
	c.excludes.Add(c.state.Excludes...)
	c.state.Excludes = nil
	c.link = c.codec.Encode(c.State())
	return c
}

// Load decodes a link and submits it. Malformed fields fall back to defaults
// and are only logged.
func (c *Controller) Load(link string) *FetchRequest {
	s, err := c.codec.Decode(link)
	if err != nil {
		c.log.Debug().Err(err).Str("link", link).Msg("link fields replaced by defaults")
	}
	return c.Submit(s, false)
}

// Submit moves the view to next. It returns a fetch to perform, or nil when
// no network data is needed: an unchanged state, an invalid project, or a
// change to the excludes alone.
func (c *Controller) Submit(next linkstate.ViewState, force bool) *FetchRequest {
	next = c.normalize(next)
	enc := c.codec.Encode(next)
	if enc == c.applied && !force {
		return nil
	}

	if !c.opts.Sites.Contains(next.Project) {
		c.gen++
		c.reset(next)
		c.phase = Rendered
		c.err = perr.WithField(perr.InvalidProjectf("%s is not a known project", next.Project), linkstate.KeyProject)
		c.applied = enc
		c.refreshLink()
		return nil
	}

	if !force && c.phase == Rendered && c.err == nil && next.SameQuery(c.state) {
		c.excludes.Replace(next.Excludes...)
		c.state = withoutExcludes(next)
		c.applied = enc
		c.refreshLink()
		return nil
	}

	c.gen++
	c.reset(next)
	c.phase = Loading
	c.applied = enc
	c.refreshLink()

	c.log.Debug().Uint64("gen", c.gen).Str("project", next.Project).Str("date", next.Date.String()).Bool("force", force).Msg("fetch")
	return &FetchRequest{
		Gen: c.gen,
		Query: ranking.Query{
			Project:  next.Project,
			Platform: string(next.Platform),
			Date:     next.Date.APIPath(c.opts.Now()),
			Fresh:    force,
		},
	}
}

// reset prepares for a new ranking. next carries the excludes to keep; the
// setters that change project, platform or period pass none.
func (c *Controller) reset(next linkstate.ViewState) {
	c.excludes.Replace(next.Excludes...)
	c.state = withoutExcludes(next)
	c.window = listview.NewWindow(c.opts.PageSize)
	c.raw = nil
	c.err = nil
	c.baseline, c.hasBaseline = 0, false
}

// RankingsLoaded applies a ranking result. When the exclude set is empty it
// returns the namespace lookup to run next and stays Loading.
func (c *Controller) RankingsLoaded(gen uint64, entries []ranking.RankEntry, err error) *LookupRequest {
	if c.stale(gen, "rankings") {
		return nil
	}
	if err != nil {
		if _, ok := perr.As(err); !ok {
			err = perr.Wrap(err, perr.ErrorCodeFetchFailure, "load rankings")
		}
		c.raw = nil
		c.err = err
		c.phase = Rendered
		c.refreshLink()
		return nil
	}

	c.raw = entries
	if c.excludes.Len() == 0 && len(entries) > 0 {
		n := min(c.opts.Sample, len(entries))
		return &LookupRequest{Gen: gen, Project: c.state.Project, Titles: ranking.Titles(entries[:n])}
	}
	c.finish()
	return nil
}

// NamespaceLoaded merges auto-excluded titles. A failed lookup leaves the
// ranking loaded with no auto-exclusions.
func (c *Controller) NamespaceLoaded(gen uint64, titles []string, err error) {
	if c.stale(gen, "namespace") {
		return
	}
	if err != nil {
		c.log.Warn().Err(err).Str("project", c.state.Project).Msg("namespace lookup failed; no auto-exclusions")
	} else {
		c.excludes.Add(titles...)
	}
	c.finish()
}

func (c *Controller) finish() {
	c.phase = Rendered
	c.baseline, c.hasBaseline = listview.FirstSurviving(c.raw, c.excludes)
	c.applied = c.codec.Encode(c.State())
	c.refreshLink()
}

func (c *Controller) stale(gen uint64, what string) bool {
	if gen == c.gen && c.phase == Loading {
		return false
	}
	c.log.Debug().Uint64("gen", gen).Uint64("current", c.gen).Str("result", what).Msg("stale result dropped")
	return true
}

// SetProject switches project and forces a reload. Blank input is ignored.
func (c *Controller) SetProject(project string) *FetchRequest {
	if strings.TrimSpace(project) == "" {
		return nil
	}
	next := c.State()
	if sites.Normalize(project) == next.Project {
		return nil
	}
	next.Project = project
	next.Excludes = nil
	return c.Submit(next, true)
}

// SetPlatform switches platform, clearing excludes
func (c *Controller) SetPlatform(p linkstate.Platform) *FetchRequest {
	next := c.State()
	if next.Platform == p {
		return nil
	}
	next.Platform = p
	next.Excludes = nil
	return c.Submit(next, false)
}

// SetPeriod switches the date selector, clearing excludes
func (c *Controller) SetPeriod(d linkstate.DateSelector) *FetchRequest {
	next := c.State()
	if next.Date.Equal(d) {
		return nil
	}
	next.Date = d
	next.Excludes = nil
	return c.Submit(next, false)
}

// Refresh reloads the current state, bypassing the guard and any cache
func (c *Controller) Refresh() *FetchRequest {
	return c.Submit(c.State(), true)
}

// Expand grows the window by one page. It is a no-op while searching.
func (c *Controller) Expand() bool {
	if c.phase != Rendered || c.matcher.Active() || !c.HasMore() {
		return false
	}
	c.window = c.window.Expand()
	return true
}

// Search sets the query. Blank returns to windowed mode.
func (c *Controller) Search(query string) {
	c.matcher = listview.NewMatcher(c.opts.Mode, query)
}

// Query returns the active search query
func (c *Controller) Query() string { return c.matcher.Query() }

// ExcludeAt hides the raw entry at sourceIndex
func (c *Controller) ExcludeAt(sourceIndex int) bool {
	if sourceIndex < 0 || sourceIndex >= len(c.raw) {
		return false
	}
	return c.Exclude(c.raw[sourceIndex].Title) > 0
}

// Exclude hides titles without refetching and returns how many were new
func (c *Controller) Exclude(titles ...string) int {
	n := c.excludes.Add(titles...)
	if n > 0 {
		c.syncExcludes()
	}
	return n
}

// Restore removes title from the exclude set
func (c *Controller) Restore(title string) bool {
	if !c.excludes.Remove(title) {
		return false
	}
	c.syncExcludes()
	return true
}

func (c *Controller) syncExcludes() {
	if c.phase == Rendered {
		c.applied = c.codec.Encode(c.State())
	}
	c.refreshLink()
}

func (c *Controller) refreshLink() {
	c.link = c.codec.Encode(c.State())
	if c.opts.OnLink != nil {
		c.opts.OnLink(c.link)
	}
}

func (c *Controller) normalize(s linkstate.ViewState) linkstate.ViewState {
	d := c.codec.Defaults()
	if p := sites.Normalize(s.Project); p != "" {
		s.Project = p
	} else {
		s.Project = d.Project
	}
	if s.Platform == "" {
		s.Platform = d.Platform
	}
	if s.Date.IsZero() {
		s.Date = linkstate.Named(d.Range)
	}
	s.Excludes = exclude.New(s.Excludes...).List()
	return s
}

func withoutExcludes(s linkstate.ViewState) linkstate.ViewState {
	s.Excludes = nil
	return s
}

// Visible returns the rows to render; nil unless a ranking is shown
func (c *Controller) Visible() []listview.VisibleEntry {
	if !c.ControlsVisible() {
		return nil
	}
	return listview.Visible(c.raw, c.excludes, c.window, c.matcher)
}

// HasMore reports whether Expand would reveal more rows
func (c *Controller) HasMore() bool {
	return c.ControlsVisible() && !c.matcher.Active() && listview.HasMore(c.raw, c.excludes, c.window)
}

// Export returns the whole ranking minus excludes, ignoring window and search
func (c *Controller) Export() []ranking.RankEntry {
	if !c.ControlsVisible() {
		return nil
	}
	return listview.Surviving(c.raw, c.excludes)
}

// ControlsVisible reports whether a ranking is shown, so exclude and search apply
func (c *Controller) ControlsVisible() bool { return c.phase == Rendered && c.err == nil }

// Baseline is the views of the first surviving entry, fixed per fetch
func (c *Controller) Baseline() (int64, bool) { return c.baseline, c.hasBaseline }

// State returns a copy of the current view state
func (c *Controller) State() linkstate.ViewState {
	s := c.state.Clone()
	s.Excludes = c.excludes.List()
	return s
}

// Excludes returns the exclude set in insertion order
func (c *Controller) Excludes() []string { return c.excludes.List() }

// Phase returns the current phase
func (c *Controller) Phase() Phase { return c.phase }

// Err returns the error shown in place of the ranking, if any
func (c *Controller) Err() error { return c.err }

// Generation returns the tag of the most recent fetch
func (c *Controller) Generation() uint64 { return c.gen }

// Window returns the pagination window
func (c *Controller) Window() listview.Window { return c.window }

// Link returns the encoded current state
func (c *Controller) Link() string { return c.link }

// Permalink returns the link with the named range resolved
func (c *Controller) Permalink() string { return c.codec.Permalink(c.State(), c.opts.Now()) }

// Now returns the controller clock
func (c *Controller) Now() time.Time { return c.opts.Now() }
