// Package report implements the batch report command.
package report

import (
	"fmt"

	"arsat/finanzas/cmd/common"
	"arsat/finanzas/cmd/root"

	"github.com/spf13/cobra"
)

// Cmd represents the report command
var Cmd = &cobra.Command{
	Use:   "report",
	Short: "Normalize both exports and write workbooks, series and summary",
	Long: `Load the purchase order and transfer exports, write the formatted
workbooks, the monthly series CSV and a run summary to the output directory.

A dataset that cannot be loaded is reported and skipped; the other one is
still processed.

Example:
  arsat-finanzas report --purchase-orders oc.csv --transfers tr.csv -o out/`,
	RunE: reportFunc,
}

func reportFunc(cmd *cobra.Command, args []string) error {
	appContainer := root.GetContainer()
	if appContainer == nil {
		return fmt.Errorf("container not initialized")
	}

	ctx, stop := common.SignalContext(cmd.Context())
	defer stop()

	res, err := appContainer.GetPipeline().Run(ctx)
	common.PrintResult(cmd.OutOrStdout(), res)
	if err != nil {
		return fmt.Errorf("report failed: %w", err)
	}
	if res.PurchaseOrdersErr != nil && res.TransfersErr != nil {
		return fmt.Errorf("no dataset could be loaded")
	}
	return nil
}
