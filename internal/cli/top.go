package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/topviews/internal/controller"
	perr "github.com/mithrel/topviews/internal/errors"
	"github.com/mithrel/topviews/internal/present"
)

func newTopCmd() *cobra.Command {
	var vf viewFlags
	var output string
	var headers, indent, pager bool

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the most-viewed pages",
		Example: `  topviews-cli top -p de.wikipedia.org -d 2016-01
  topviews-cli top --link 'project=fr.wikipedia.org&date=yesterday&excludes=Spécial:Recherche' -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, ok := present.ParseMode(output)
			if !ok {
				return perr.WithField(perr.InvalidArgf("unknown output %q, want one of %s", output, strings.Join(present.Modes, ", ")), "output")
			}
			if mode == present.ModeTUI {
				return runBrowse(cmd, &vf, headers)
			}

			app := getApp(cmd)
			c, req, err := vf.open(app)
			if err != nil {
				return err
			}
			_ = controller.Drive(cmd.Context(), c, app.Source, req)
			vf.settle(c)

			opts := present.Options{Mode: mode, JSONIndent: indent, Headers: headers}
			write := func(w io.Writer) error { return present.RenderView(w, c, opts) }
			if pager && (mode == present.ModePlain || mode == present.ModePretty) {
				err = pageRanking(cmd.Context(), cmd.OutOrStdout(), write)
			} else {
				err = write(cmd.OutOrStdout())
			}
			if err != nil && err == c.Err() && (mode == present.ModePlain || mode == present.ModePretty) {
				return reportedError{err}
			}
			if err == nil && c.HasMore() && mode == present.ModePlain {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "more rows: --pages %d\n", vf.pages+1)
			}
			return err
		},
	}
	vf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "plain", "plain, pretty, json, ndjson, csv or tui")
	cmd.Flags().BoolVar(&headers, "headers", true, "print column headers")
	cmd.Flags().BoolVar(&indent, "indent", false, "indent json output")
	cmd.Flags().BoolVar(&pager, "pager", true, "page plain and pretty output on a terminal")
	_ = cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return present.Modes, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}
