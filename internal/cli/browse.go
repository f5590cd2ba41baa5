package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mithrel/topviews/internal/logger"
	"github.com/mithrel/topviews/internal/present/tui"
)

func newBrowseCmd() *cobra.Command {
	var vf viewFlags
	var headers bool
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse rankings interactively",
		Long: `Browse opens the ranking in a terminal UI.

Keys: x exclude row, e excluded pages, / search, m more rows,
p project/platform/date, r refresh, ? help, q quit.
The link of the last view is printed on exit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, &vf, headers)
		},
	}
	vf.register(cmd)
	cmd.Flags().BoolVar(&headers, "headers", true, "show column headers")
	return cmd
}

func runBrowse(cmd *cobra.Command, vf *viewFlags, headers bool) error {
	app := getApp(cmd)
	app.QuietLogs(io.Discard)

	c, req, err := vf.open(app)
	if err != nil {
		return err
	}
	if vf.query != "" {
		c.Search(vf.query)
	}
	link, err := tui.Browse(cmd.Context(), c, app.Source, req, tui.Options{
		Headers: headers,
		Log:     logger.Named("tui"),
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), link)
	return nil
}
