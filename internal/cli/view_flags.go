package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/topviews/internal/controller"
	perr "github.com/mithrel/topviews/internal/errors"
	"github.com/mithrel/topviews/internal/linkstate"
	"github.com/mithrel/topviews/internal/sites"
	"github.com/mithrel/topviews/internal/util"
	"github.com/mithrel/topviews/internal/wire"
)

// viewFlags select a view: a link, optionally overridden field by field
type viewFlags struct {
	link     string
	project  string
	platform string
	date     string
	excludes []string
	query    string
	pages    int
	fresh    bool
}

func (f *viewFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.link, "link", "l", "", "shared link or query string to start from")
	fl.StringVarP(&f.project, "project", "p", "", "project domain, e.g. de.wikipedia.org")
	fl.StringVar(&f.platform, "platform", "", "all-access, desktop, mobile-web or mobile-app")
	fl.StringVarP(&f.date, "date", "d", "", "last-month, yesterday, YYYY-MM, YYYY-MM-DD, 3d or \"2 months ago\"")
	fl.StringArrayVarP(&f.excludes, "exclude", "x", nil, "exclude a title (repeatable)")
	fl.StringVarP(&f.query, "query", "q", "", "only show titles matching this search")
	fl.IntVar(&f.pages, "pages", 1, "number of pages to show")
	fl.BoolVar(&f.fresh, "fresh", false, "skip the session cache")

	_ = cmd.RegisterFlagCompletionFunc("project", completeProject)
	_ = cmd.RegisterFlagCompletionFunc("platform", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		out := make([]string, len(linkstate.Platforms))
		for i, p := range linkstate.Platforms {
			out[i] = string(p)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("date", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{string(linkstate.LastMonth), string(linkstate.Yesterday)}, cobra.ShellCompDirectiveNoFileComp
	})
}

// state decodes the link and applies flag overrides on top
func (f *viewFlags) state(app *wire.App, c *controller.Controller) (linkstate.ViewState, error) {
	if f.pages < 1 {
		return linkstate.ViewState{}, perr.WithField(perr.InvalidArgf("--pages must be at least 1"), "pages")
	}
	s, err := app.Codec.Decode(f.link)
	if err != nil {
		app.Log.Warn().Err(err).Msg("link fields replaced by defaults")
	}
	if p := strings.TrimSpace(f.project); p != "" {
		s.Project = sites.Normalize(p)
	}
	if p := strings.TrimSpace(f.platform); p != "" {
		pl := linkstate.Platform(strings.ToLower(p))
		if !pl.Valid() {
			return s, perr.WithField(perr.InvalidArgf("unknown platform %q", p), linkstate.KeyPlatform)
		}
		s.Platform = pl
	}
	if d := strings.TrimSpace(f.date); d != "" {
		sel, err := linkstate.ParseDateExpr(d, c.Now())
		if err != nil {
			return s, perr.WithField(perr.Wrap(err, perr.ErrorCodeInvalidArgument, "--date"), linkstate.KeyDate)
		}
		s.Date = sel
	}
	for _, t := range f.excludes {
		if t = util.Descore(t); t != "" {
			s.Excludes = append(s.Excludes, t)
		}
	}
	return s, nil
}

// open builds a controller positioned at the flagged view and returns the
// fetch to run
func (f *viewFlags) open(app *wire.App) (*controller.Controller, *controller.FetchRequest, error) {
	c := app.Controller(nil)
	s, err := f.state(app, c)
	if err != nil {
		return nil, nil, err
	}
	return c, c.Submit(s, f.fresh), nil
}

// settle applies the window and search flags once a ranking is shown
func (f *viewFlags) settle(c *controller.Controller) {
	for i := 1; i < f.pages; i++ {
		if !c.Expand() {
			break
		}
	}
	c.Search(f.query)
}

func completeProject(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	domains := sites.NewRegistry().Domains()
	if strings.TrimSpace(toComplete) == "" {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, d := range domains {
		if strings.HasPrefix(d, toComplete) {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		out = util.ScoreTitles(toComplete, domains, 20)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
