// Package wire assembles the services a command needs from configuration.
package wire

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mithrel/topviews/internal/config"
	"github.com/mithrel/topviews/internal/controller"
	"github.com/mithrel/topviews/internal/db"
	perr "github.com/mithrel/topviews/internal/errors"
	"github.com/mithrel/topviews/internal/linkstate"
	"github.com/mithrel/topviews/internal/listview"
	"github.com/mithrel/topviews/internal/logger"
	"github.com/mithrel/topviews/internal/ranking"
	"github.com/mithrel/topviews/internal/server"
	"github.com/mithrel/topviews/internal/sites"
)

// App aggregates the major services for easy injection.
type App struct {
	Settings config.Settings
	Log      *logger.Logger
	Store    db.Store
	Client   *ranking.Client
	Source   ranking.Source
	Codec    *linkstate.Codec
	Sites    *sites.Registry

	logFile *os.File
}

// BuildApp validates v and wires dependencies from it.
func BuildApp(ctx context.Context, v *viper.Viper) (*App, error) {
	if err := config.CheckConfigValidity(v); err != nil {
		return nil, err
	}
	s := config.FromViper(v)
	app := &App{Settings: s}

	var w io.Writer
	if s.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(s.Log.File), 0o755); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "log directory for %s", s.Log.File)
		}
		f, err := os.OpenFile(s.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "open log file %s", s.Log.File)
		}
		app.logFile = f
		w = f
	}
	app.Log = logger.Init(logger.Options{Level: s.Log.Level, Format: s.Log.Format, Writer: w})

	store, err := db.Open(ctx, s.Cache.Backend)
	if err != nil {
		_ = app.Close()
		return nil, perr.Wrap(err, perr.ErrorCodeCache, "open cache")
	}
	app.Store = store

	app.Client = ranking.NewClient(ranking.Options{
		BaseURL:   s.API.PageviewsURL,
		UserAgent: s.API.UserAgent,
		Timeout:   s.API.Timeout,
		WikiAPI:   ranking.WikiAPITemplate(s.API.WikiAPI),
	})
	app.Source = ranking.NewCached(ranking.NewFetcher(app.Client), store)
	app.Sites = sites.NewRegistry(s.Sites.Extra...)
	app.Codec = linkstate.NewCodec(linkstate.Defaults{
		Project:  s.Defaults.Project,
		Platform: linkstate.Platform(s.Defaults.Platform),
		Range:    linkstate.NamedRange(s.Defaults.DateRange),
		Excludes: s.Defaults.Excludes,
	})

	app.Log.Debug().
		Str("cache", s.Cache.Backend).
		Str("project", s.Defaults.Project).
		Int("extra_sites", len(s.Sites.Extra)).
		Msg("app wired")
	return app, nil
}

// Controller returns a controller configured from the app's settings
func (a *App) Controller(onLink func(string)) *controller.Controller {
	return controller.New(controller.Options{
		Codec:    a.Codec,
		Sites:    a.Sites,
		PageSize: a.Settings.PageSize,
		Sample:   a.Settings.NamespaceSample,
		Mode:     listview.Mode(a.Settings.Search.Mode),
		Log:      logger.Named("controller"),
		OnLink:   onLink,
	})
}

// Server returns an HTTP server bound to addr, or to the configured address
func (a *App) Server(addr string) *server.Server {
	if addr == "" {
		addr = a.Settings.HTTPAddr
	}
	return server.New(server.Options{
		Addr:     addr,
		Source:   a.Source,
		Codec:    a.Codec,
		Sites:    a.Sites,
		PageSize: a.Settings.PageSize,
		Sample:   a.Settings.NamespaceSample,
		Mode:     listview.Mode(a.Settings.Search.Mode),
		Log:      logger.Named("http"),
	})
}

// QuietLogs sends logging to w unless a log file is configured. The browse
// TUI calls it so nothing is written over the screen it draws.
func (a *App) QuietLogs(w io.Writer) {
	if a.logFile != nil {
		return
	}
	a.Log = logger.Init(logger.Options{Level: a.Settings.Log.Level, Format: "json", Writer: w})
}

// Close releases the cache and log file
func (a *App) Close() error {
	var err error
	if a.Store != nil {
		err = a.Store.Close()
	}
	if a.logFile != nil {
		if cerr := a.logFile.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
