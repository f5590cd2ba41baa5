package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mithrel/topviews/internal/editor"
	perr "github.com/mithrel/topviews/internal/errors"
	"github.com/mithrel/topviews/internal/linkstate"
)

func newLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Build, read and pin shareable links",
	}
	cmd.AddCommand(newLinkEncodeCmd())
	cmd.AddCommand(newLinkDecodeCmd())
	cmd.AddCommand(newLinkPermalinkCmd())
	cmd.AddCommand(newLinkEditCmd())
	return cmd
}

func newLinkEncodeCmd() *cobra.Command {
	var vf viewFlags
	var permalink bool
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Print the link for a view",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			s, err := vf.state(app, app.Controller(nil))
			if err != nil {
				return err
			}
			out := app.Codec.Encode(s)
			if permalink {
				out = app.Codec.Permalink(s, time.Now())
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	vf.register(cmd)
	cmd.Flags().BoolVar(&permalink, "permalink", false, "resolve named ranges to explicit dates")
	return cmd
}

type decodedLink struct {
	Link     string              `json:"link"`
	State    linkstate.ViewState `json:"state"`
	Warnings []perr.Wire         `json:"warnings,omitempty"`
}

func newLinkDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <link>",
		Short: "Show the view a link selects, with defaults filled in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			s, err := app.Codec.Decode(args[0])
			d := decodedLink{Link: app.Codec.Encode(s), State: s}
			if d.State.Excludes == nil {
				d.State.Excludes = []string{}
			}
			for _, e := range perr.Flatten(err) {
				d.Warnings = append(d.Warnings, perr.WireFrom(e))
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(d)
		},
	}
}

func newLinkPermalinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "permalink <link>",
		Short: "Pin a link's named date range to the date it means today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			s, err := app.Codec.Decode(args[0])
			if err != nil {
				app.Log.Warn().Err(err).Msg("link fields replaced by defaults")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), app.Codec.Permalink(s, time.Now()))
			return err
		},
	}
}

func newLinkEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit [link]",
		Short: "Edit a link's excluded pages in $EDITOR",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			raw := ""
			if len(args) == 1 {
				raw = args[0]
			}
			s, err := app.Codec.Decode(raw)
			if err != nil {
				app.Log.Warn().Err(err).Msg("link fields replaced by defaults")
			}
			excludes, changed, err := editor.EditExcludes(cmd.Context(), s)
			if err != nil {
				return err
			}
			if changed {
				s.Excludes = excludes
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), app.Codec.Encode(s))
			return err
		},
	}
}
