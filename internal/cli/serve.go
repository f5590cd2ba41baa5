package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rankings, exports and links over HTTP",
		Long: `Serve exposes:

  GET /healthz
  GET /api/top?<link>[&pages=N][&q=search][&fresh=1]
  GET /api/export.csv?<link>
  GET /api/export.json?<link>
  GET /api/link?<link>`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return getApp(cmd).Server(addr).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from http_addr)")
	return cmd
}
