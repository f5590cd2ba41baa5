package editor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mithrel/topviews/internal/linkstate"
)

func TestComposeAndParseExcludes(t *testing.T) {
	s := linkstate.ViewState{
		Project:  "en.wikipedia.org",
		Platform: linkstate.Desktop,
		Date:     linkstate.Named(linkstate.LastMonth),
		Excludes: []string{"Main Page", "Special:Search"},
	}
	text := ComposeExcludes(s)
	require.True(t, strings.HasPrefix(text, "# Excluded pages for en.wikipedia.org · desktop · last-month\n"))
	require.Equal(t, []string{"Main Page", "Special:Search"}, ParseExcludes(text))

	edited := text + "\n  Foo_bar \n# note\nMain Page\n"
	require.Equal(t, []string{"Main Page", "Special:Search", "Foo bar"}, ParseExcludes(edited))
	require.Nil(t, ParseExcludes("# only comments\n\n"))
}

func TestTempPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)
	p, err := TempPath("de.wikipedia.org/../x")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "topviews"), filepath.Dir(p))
	require.True(t, strings.HasPrefix(filepath.Base(p), "de.wikipedia.org-..-x."))
	require.True(t, strings.HasSuffix(p, ".excludes.txt"))
}

func TestEditExcludesRunsEditor(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)
	script := filepath.Join(dir, "fake-editor.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho 'Talk:X' >> \"$1\"\n"), 0o755))
	t.Setenv("VISUAL", script)

	s := linkstate.ViewState{Project: "en.wikipedia.org", Excludes: []string{"Main Page"}}
	got, changed, err := EditExcludes(context.Background(), s)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, []string{"Main Page", "Talk:X"}, got)

	t.Setenv("VISUAL", "true")
	got, changed, err = EditExcludes(context.Background(), s)
	require.NoError(t, err)
	require.False(t, changed)
	require.Equal(t, []string{"Main Page"}, got)

	entries, err := os.ReadDir(filepath.Join(dir, "topviews"))
	require.NoError(t, err)
	require.Empty(t, entries)
}
