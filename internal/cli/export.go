package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mithrel/topviews/internal/controller"
	perr "github.com/mithrel/topviews/internal/errors"
	"github.com/mithrel/topviews/internal/present/format"
)

func newExportCmd() *cobra.Command {
	var vf viewFlags
	var formatName, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every non-excluded page as CSV or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if formatName != "csv" && formatName != "json" {
				return perr.WithField(perr.InvalidArgf("unknown format %q, want csv or json", formatName), "format")
			}
			app := getApp(cmd)
			c, req, err := vf.open(app)
			if err != nil {
				return err
			}
			if err := controller.Drive(cmd.Context(), c, app.Source, req); err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			entries := c.Export()
			if formatName == "json" {
				err = format.WriteJSON(w, entries, true)
			} else {
				err = format.WriteCSV(w, entries)
			}
			if err != nil {
				return err
			}
			if out != "" && out != "-" {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d rows to %s\n", len(entries), out)
			}
			return nil
		},
	}
	vf.register(cmd)
	cmd.Flags().StringVarP(&formatName, "format", "f", "csv", "csv or json")
	cmd.Flags().StringVarP(&out, "out", "O", "", "write to file instead of stdout")
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"csv", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}
