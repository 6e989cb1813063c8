package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}

	root := &cobra.Command{
		Use:          "stockvision",
		Short:        "Stock indicators and price forecasts",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", cfgPath, "Path to the YAML config file")

	root.AddCommand(
		newRunCmd(&cfgPath),
		newPredictCmd(&cfgPath),
		newIndicatorsCmd(&cfgPath),
		newRunsCmd(&cfgPath),
	)
	return root
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
