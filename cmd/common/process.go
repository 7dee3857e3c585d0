// Package common contains shared functionality for command handlers
package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"arsat/finanzas/internal/pipeline"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// SignalContext returns a context canceled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// PrintResult writes the generated files and any unavailable series or
// correlation to w.
func PrintResult(w io.Writer, res *pipeline.Result) {
	if res == nil {
		return
	}
	for _, out := range res.Outputs {
		fmt.Fprintf(w, "wrote %s\n", out)
	}
	if res.PurchaseOrdersErr != nil {
		fmt.Fprintf(w, "purchase orders unavailable: %v\n", res.PurchaseOrdersErr)
	}
	if res.TransfersErr != nil {
		fmt.Fprintf(w, "transfers unavailable: %v\n", res.TransfersErr)
	}
	for _, s := range res.Series {
		if s.Available() {
			fmt.Fprintf(w, "series %s: %d months\n", s.Name, s.Series.Len())
		} else {
			fmt.Fprintf(w, "series %s unavailable: %v\n", s.Name, s.Err)
		}
	}
	if res.Correlation != nil {
		fmt.Fprintf(w, "correlation r=%.4f over %d months\n", res.Correlation.Coefficient, len(res.Correlation.Points))
	} else if res.CorrelationErr != nil {
		fmt.Fprintf(w, "correlation unavailable: %v\n", res.CorrelationErr)
	}
}

// PassthroughArgs renders the persistent flags changed on cmd as arguments
// for a child invocation, in flag name order.
func PassthroughArgs(cmd *cobra.Command) []string {
	var args []string
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if cmd.InheritedFlags().Lookup(f.Name) == nil {
			return
		}
		args = append(args, "--"+f.Name, f.Value.String())
	})
	return args
}
