// Package serve runs the dashboard API server.
package serve

import (
	"fmt"

	"arsat/finanzas/cmd/common"
	"arsat/finanzas/cmd/root"

	"github.com/spf13/cobra"
)

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard JSON API",
	Long: `Serve the purchase order, transfer and correlation views over HTTP.
Input files are re-read when they change on disk. Stops on SIGINT or SIGTERM.`,
	RunE: serveFunc,
}

func serveFunc(cmd *cobra.Command, args []string) error {
	appContainer := root.GetContainer()
	if appContainer == nil {
		return fmt.Errorf("container not initialized")
	}

	ctx, stop := common.SignalContext(cmd.Context())
	defer stop()

	return appContainer.NewDashboardServer().Run(ctx)
}
