package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	perr "github.com/mithrel/topviews/internal/errors"
)

func loadFrom(t *testing.T, body string) *viper.Viper {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, Load(context.Background(), v))
	return v
}

func TestDefaultsAreValid(t *testing.T) {
	v := loadFrom(t, RenderDefaultTOML())
	require.NoError(t, CheckConfigValidity(v))

	s := FromViper(v)
	require.Equal(t, 100, s.PageSize)
	require.Equal(t, 30, s.NamespaceSample)
	require.Equal(t, "en.wikipedia.org", s.Defaults.Project)
	require.Equal(t, "all-access", s.Defaults.Platform)
	require.Equal(t, "last-month", s.Defaults.DateRange)
	require.Equal(t, 10*time.Second, s.API.Timeout)
	require.Equal(t, "memory", s.Cache.Backend)
	require.Empty(t, s.Defaults.Excludes)
}

func TestFileAndEnvOverride(t *testing.T) {
	t.Setenv("TOPVIEWS_SEARCH_MODE", "fuzzy")
	t.Setenv("TOPVIEWS_SITES_EXTRA", "wiki.example.org, wiki.example.net")
	v := loadFrom(t, "page_size = 25\n[defaults]\nproject = \"de.wikipedia.org\"\n")

	s := FromViper(v)
	require.Equal(t, 25, s.PageSize)
	require.Equal(t, "de.wikipedia.org", s.Defaults.Project)
	require.Equal(t, "fuzzy", s.Search.Mode)
	require.Equal(t, []string{"wiki.example.org", "wiki.example.net"}, s.Sites.Extra)
	require.NoError(t, s.Validate())
}

func TestMissingFileIsFine(t *testing.T) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, Load(context.Background(), v))
	require.Equal(t, 100, v.GetInt("page_size"))
}

func TestCheckConfigValidityInvalid(t *testing.T) {
	v := viper.New()
	applyDefaults(v)
	v.Set("page_size", 0)
	v.Set("namespace_sample", 80)
	v.Set("defaults.platform", "tablet")
	v.Set("search.mode", "glob")
	v.Set("cache.backend", "redis")
	v.Set("defaults.project", "")

	err := CheckConfigValidity(v)
	require.Error(t, err)
	require.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))

	msg := err.Error()
	for _, want := range []string{
		"page_size: page_size must be at least 1",
		"namespace_sample: namespace_sample must be at most 50",
		"defaults.platform:",
		"search.mode:",
		"cache.backend:",
		"defaults.project:",
	} {
		require.Contains(t, msg, want)
	}
}

func TestRenderDefaultTOML(t *testing.T) {
	out := RenderDefaultTOML()
	require.True(t, strings.HasPrefix(out, "# topviews configuration"))
	require.Contains(t, out, "page_size = 100\n")
	require.Contains(t, out, "[defaults]\n")
	require.Contains(t, out, "project = \"en.wikipedia.org\"")
	require.Contains(t, out, "timeout = \"10s\"")
	require.Contains(t, out, "excludes = []")
	require.Less(t, strings.Index(out, "http_addr"), strings.Index(out, "[defaults]"))
}

func TestUpdateTOML(t *testing.T) {
	existing := "page_size = 50\nlegacy = true\n[defaults]\nproject = \"fr.wikipedia.org\"\n"
	out, changed := UpdateTOML(existing)
	require.True(t, changed)
	require.Contains(t, out, "page_size = 50")
	require.Contains(t, out, "# OUTDATED: option removed from config schema\n# legacy = true")
	require.Contains(t, out, "project = \"fr.wikipedia.org\"")
	require.Contains(t, out, "# Added by config update")
	require.Contains(t, out, "namespace_sample = 30")
	require.Equal(t, 1, strings.Count(out, "project ="))

	again, changed := UpdateTOML(RenderDefaultTOML())
	require.False(t, changed)
	require.Equal(t, RenderDefaultTOML(), again)
}
