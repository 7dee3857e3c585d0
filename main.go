package main

import (
	"fmt"
	"os"

	"arsat/finanzas/cmd/launch"
	"arsat/finanzas/cmd/report"
	"arsat/finanzas/cmd/root"
	"arsat/finanzas/cmd/serve"
	"arsat/finanzas/internal/config"
)

func init() {
	// Load .env silently before any configuration is read
	_, _ = config.LoadEnv()

	root.Init()

	root.Cmd.AddCommand(report.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
	root.Cmd.AddCommand(launch.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
