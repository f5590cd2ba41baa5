package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// applyDefaults seeds Viper with defaults defined in GetConfigOptions.
func applyDefaults(v *viper.Viper) {
	for _, o := range GetConfigOptions() {
		v.SetDefault(o.Key, o.Default)
	}
}

// Load resolves configuration with precedence: defaults < file < env.
// The provided Viper instance is mutated with defaults, file contents, and env.
func Load(ctx context.Context, v *viper.Viper) error {
	// SetConfigFile upstream wins; these paths are fallbacks.
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "topviews"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "topviews"))
		}
		v.AddConfigPath(".")
	}

	applyDefaults(v)

	// A missing file is fine; a broken one is not
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	// TOPVIEWS_* env vars, dots become underscores
	v.SetEnvPrefix("topviews")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Comma-separated env overrides for list keys
	for _, key := range []string{"defaults.excludes", "sites.extra"} {
		if s := strings.TrimSpace(v.GetString(key)); strings.Contains(s, ",") {
			v.Set(key, splitCSV(s))
		}
	}
	return nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// DefaultConfigPath resolves the standard config.toml location.
func DefaultConfigPath() string {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, _ := os.UserHomeDir()
		xdg = filepath.Join(home, ".config")
	}
	return filepath.Join(xdg, "topviews", "config.toml")
}

// ConfigOption is one documented key with its default
type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// GetConfigOptions returns the default configuration options and their meanings.
// This is the single source of truth for defaults and generator output.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "page_size", Default: 100, Comment: "Rows per page; expanding the list adds this many"},
		{Key: "namespace_sample", Default: 30, Comment: "Leading titles classified by namespace when a ranking has no excludes (max 50)"},
		{Key: "http_addr", Default: "127.0.0.1:8080", Comment: "Listen address for `topviews-cli serve`"},

		{Key: "defaults.project", Default: "en.wikipedia.org", Comment: "Project used when a link has none"},
		{Key: "defaults.platform", Default: "all-access", Comment: "all-access, desktop, mobile-web or mobile-app"},
		{Key: "defaults.date_range", Default: "last-month", Comment: "last-month or yesterday"},
		{Key: "defaults.excludes", Default: []string{}, Comment: "Titles excluded when a link has no excludes parameter"},

		{Key: "search.mode", Default: "regex", Comment: "regex, substring or fuzzy; matching ignores case"},

		{Key: "api.pageviews_url", Default: "https://wikimedia.org/api/rest_v1", Comment: "Base URL of the pageviews REST API"},
		{Key: "api.wiki_api", Default: "https://{project}/w/api.php", Comment: "MediaWiki endpoint for namespace lookups; {project} is the project domain"},
		{Key: "api.user_agent", Default: "topviews-cli (https://github.com/mithrel/topviews)", Comment: "User-Agent sent to Wikimedia APIs"},
		{Key: "api.timeout", Default: 10 * time.Second, Comment: "Per-request timeout"},

		{Key: "sites.extra", Default: []string{}, Comment: "Extra project domains accepted besides the built-in registry"},

		{Key: "cache.backend", Default: "memory", Comment: "Session cache for rankings: memory, sqlite or off"},

		{Key: "log.level", Default: "info", Comment: "trace, debug, info, warn, error or off"},
		{Key: "log.format", Default: "console", Comment: "console or json"},
		{Key: "log.file", Default: "", Comment: "Log file; empty logs to stderr (browse discards logs when empty)"},
	}
}
