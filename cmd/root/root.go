// Package root contains the root command for the application
package root

import (
	"fmt"
	"sync"

	"arsat/finanzas/internal/config"
	"arsat/finanzas/internal/container"
	"arsat/finanzas/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	ConfigFile     string
	PurchaseOrders string
	Transfers      string
	OutputDir      string
	LogLevel       string
}

// Persistent flag names.
const (
	FlagConfig         = "config"
	FlagPurchaseOrders = "purchase-orders"
	FlagTransfers      = "transfers"
	FlagOutputDir      = "output-dir"
	FlagLogLevel       = "log-level"
)

// flagKeys maps persistent flags to the configuration keys they override.
var flagKeys = map[string]string{
	FlagPurchaseOrders: "input.purchase_orders",
	FlagTransfers:      "input.transfers",
	FlagOutputDir:      "export.dir",
	FlagLogLevel:       "log.level",
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "arsat-finanzas",
		Short: "Normalize ARSAT purchase order and transfer exports and analyze them monthly.",
		Long: `arsat-finanzas cleans the ARSAT purchase order and incoming transfer CSV
exports, writes formatted workbooks, aggregates monthly series and correlates
transfers with peso spending. It also serves an exploration dashboard API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appContainer != nil {
				_ = appContainer.Close()
			}
		},
	}

	// SharedFlags holds the persistent flag values
	SharedFlags = CommonFlags{}

	appContainer *container.Container
	initOnce     sync.Once
)

// Init initializes the root command and all flags
func Init() {
	initOnce.Do(func() {
		Cmd.PersistentPreRunE = initialize
		flags := Cmd.PersistentFlags()
		flags.StringVarP(&SharedFlags.ConfigFile, FlagConfig, "c", "", "Config file (default searches ./config.yaml and ~/.arsat-finanzas)")
		flags.StringVar(&SharedFlags.PurchaseOrders, FlagPurchaseOrders, "", "Purchase order CSV export")
		flags.StringVar(&SharedFlags.Transfers, FlagTransfers, "", "Incoming transfer CSV export")
		flags.StringVarP(&SharedFlags.OutputDir, FlagOutputDir, "o", "", "Directory for generated files")
		flags.StringVar(&SharedFlags.LogLevel, FlagLogLevel, "", "Log level (trace, debug, info, warn, error)")
	})
}

func initialize(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return err
	}
	c, err := container.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	appContainer = c
	Log = c.GetLogger()
	return nil
}

// LoadConfig reads the configuration with the persistent flags of cmd
// taking precedence over environment and config file values.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := config.New(SharedFlags.ConfigFile)
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			flag = cmd.Root().PersistentFlags().Lookup(name)
		}
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return config.Load(v)
}

// GetContainer returns the container built for the running command.
func GetContainer() *container.Container {
	return appContainer
}

// GetLogger returns the configured command logger.
func GetLogger() logging.Logger {
	return Log
}
