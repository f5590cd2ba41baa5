package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"

	"golang.org/x/term"
)

const defaultPager = "less -FRSX"

// pageRanking renders into memory first and only starts $PAGER when out is a
// terminal too short for the table. The render error is returned as is so
// callers can still compare it with the controller's error.
func pageRanking(ctx context.Context, out io.Writer, render func(io.Writer) error) error {
	var buf bytes.Buffer
	renderErr := render(&buf)

	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		_, err := out.Write(buf.Bytes())
		return firstErr(renderErr, err)
	}
	if _, rows, err := term.GetSize(int(f.Fd())); err == nil && bytes.Count(buf.Bytes(), []byte("\n")) < rows {
		_, err := f.Write(buf.Bytes())
		return firstErr(renderErr, err)
	}

	pager := os.Getenv("PAGER")
	if pager == "" {
		pager = defaultPager
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", pager)
	cmd.Stdin = &buf
	cmd.Stdout = f
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		// pager missing or killed: fall back to the raw table
		if buf.Len() > 0 {
			_, _ = f.Write(buf.Bytes())
		}
	}
	return renderErr
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
