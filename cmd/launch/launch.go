// Package launch starts the dashboard server as a background process.
package launch

import (
	"fmt"

	"arsat/finanzas/cmd/common"
	"arsat/finanzas/cmd/root"

	"github.com/spf13/cobra"
)

// Cmd represents the launch command
var Cmd = &cobra.Command{
	Use:   "launch",
	Short: "Start the dashboard in the background and report its URL",
	Long: `Start "serve" as a child process with the same global flags, wait for
launcher.startup_wait and report the dashboard URL. If the child exits early
its exit status and output are shown instead.`,
	RunE: launchFunc,
}

func launchFunc(cmd *cobra.Command, args []string) error {
	appContainer := root.GetContainer()
	if appContainer == nil {
		return fmt.Errorf("container not initialized")
	}

	childArgs := append([]string{"serve"}, common.PassthroughArgs(cmd)...)
	l, err := appContainer.NewLauncher(childArgs)
	if err != nil {
		return err
	}

	res, err := l.Launch(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to start dashboard: %w", err)
	}

	out := cmd.OutOrStdout()
	if !res.Running {
		fmt.Fprintf(out, "dashboard exited with status %d\n", res.ExitCode)
		if res.Output != "" {
			fmt.Fprintln(out, res.Output)
		}
		return fmt.Errorf("dashboard did not stay up")
	}

	fmt.Fprintf(out, "dashboard running at %s (pid %d)\n", res.URL, res.PID)
	if !res.Healthy {
		fmt.Fprintln(out, "health check did not answer yet; see the log file")
	}
	return nil
}
