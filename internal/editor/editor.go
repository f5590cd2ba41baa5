// Package editor round-trips an exclude list through the user's editor.
package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mithrel/topviews/internal/exclude"
	"github.com/mithrel/topviews/internal/linkstate"
)

// ComposeExcludes creates the text presented to the editor: a comment header
// naming the view, then one excluded title per line.
func ComposeExcludes(s linkstate.ViewState) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# Excluded pages for %s · %s · %s\n", s.Project, s.Platform, s.Date)
	b.WriteString("# One title per line. Lines starting with '#' are ignored.\n")
	b.WriteString("# Underscores read as spaces; delete a line to show the page again.\n")
	for _, t := range s.Excludes {
		b.WriteString(t)
		b.WriteString("\n")
	}
	return b.String()
}

// ParseExcludes reads titles back in file order, dropping comments, blanks
// and duplicates.
func ParseExcludes(s string) []string {
	set := exclude.New()
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set.Add(line)
	}
	return set.List()
}

// TempPath returns a per-process scratch file for project
func TempPath(project string) (string, error) {
	name := fmt.Sprintf("%s.%d.excludes.txt", sanitize(project), os.Getpid())
	if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
		return filepath.Join(xdg, "topviews", name), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "topviews", "edit", name), nil
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "view"
	}
	return b.String()
}

// editorCommand resolves $VISUAL, then $EDITOR, then the first common editor
// on PATH. Environment values may carry flags and go through sh.
func editorCommand(ctx context.Context, path string) (*exec.Cmd, error) {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if ed := strings.TrimSpace(os.Getenv(env)); ed != "" {
			cmd := exec.CommandContext(ctx, "sh", "-c", ed+` "$1"`, "topviews-edit", path)
			return cmd, nil
		}
	}
	for _, cand := range []string{"nvim", "vim", "vi", "nano"} {
		if p, err := exec.LookPath(cand); err == nil {
			return exec.CommandContext(ctx, p, path), nil
		}
	}
	return nil, errors.New("no editor found; set $EDITOR or $VISUAL")
}

// EditExcludes lets the user rewrite s's excludes and returns the new list and
// whether the file was touched. The scratch file is removed afterwards.
func EditExcludes(ctx context.Context, s linkstate.ViewState) ([]string, bool, error) {
	path, err := TempPath(s.Project)
	if err != nil {
		return nil, false, err
	}
	initial := []byte(ComposeExcludes(s))
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, false, err
	}
	if err := os.WriteFile(path, initial, 0o600); err != nil {
		return nil, false, err
	}
	defer os.Remove(path)

	cmd, err := editorCommand(ctx, path)
	if err != nil {
		return nil, false, err
	}
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, false, fmt.Errorf("editor: %w", err)
	}
	out, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return ParseExcludes(string(out)), !bytes.Equal(out, initial), nil
}
