package wire

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/topviews/internal/config"
	perr "github.com/mithrel/topviews/internal/errors"
	"github.com/mithrel/topviews/internal/linkstate"
	"github.com/mithrel/topviews/internal/ranking"
)

func loadViper(t *testing.T, body string) *viper.Viper {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, config.Load(context.Background(), v))
	return v
}

func TestBuildAppFromConfig(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "topviews.log")
	v := loadViper(t, `
page_size = 25

[defaults]
project = "de.wikipedia"
platform = "desktop"
date_range = "yesterday"

[sites]
extra = ["wiki.example.org"]

[cache]
backend = "sqlite"

[log]
level = "debug"
format = "json"
file = "`+logPath+`"
`)
	app, err := BuildApp(context.Background(), v)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	d := app.Codec.Defaults()
	require.Equal(t, "de.wikipedia.org", d.Project)
	require.Equal(t, linkstate.Desktop, d.Platform)
	require.Equal(t, linkstate.Yesterday, d.Range)
	require.True(t, app.Sites.Contains("wiki.example.org"))

	c := app.Controller(nil)
	require.Equal(t, 25, c.Window().PageSize)
	require.Contains(t, c.Link(), "project=de.wikipedia.org")

	require.Equal(t, app.Settings.HTTPAddr, app.Server("").Addr())
	require.Equal(t, ":9999", app.Server(":9999").Addr())

	_, err = os.Stat(logPath)
	require.NoError(t, err)
}

func TestBuildAppRejectsInvalidConfig(t *testing.T) {
	v := loadViper(t, `
[cache]
backend = "redis"
`)
	_, err := BuildApp(context.Background(), v)
	require.Error(t, err)
	require.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))
	require.Contains(t, err.Error(), "cache.backend")
}

func TestQuietLogsSilencesRankingLoggers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"articles":[{"article":"Main_Page","views":500,"rank":1}]}]}`))
	}))
	t.Cleanup(srv.Close)

	stderr, err := os.CreateTemp(t.TempDir(), "stderr")
	require.NoError(t, err)
	orig := os.Stderr
	os.Stderr = stderr
	t.Cleanup(func() { os.Stderr = orig })

	v := loadViper(t, `
[api]
pageviews_url = "`+srv.URL+`"

[log]
level = "debug"
`)
	app, err := BuildApp(context.Background(), v)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	app.QuietLogs(io.Discard)
	mark, err := stderr.Seek(0, io.SeekCurrent)
	require.NoError(t, err)

	entries, err := app.Source.Rankings(context.Background(), ranking.Query{
		Project: "en.wikipedia.org", Platform: "all-access", Date: "2016/02/all-days",
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	end, err := stderr.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	require.Equal(t, mark, end, "log output reached stderr after QuietLogs")
}
