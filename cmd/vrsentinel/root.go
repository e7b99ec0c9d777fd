package main

import (
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
	pretty     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{configPath: "configs/config.yaml"}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		opts.configPath = v
	}

	root := &cobra.Command{
		Use:   "vrsentinel",
		Short: "Relative-risk (VR) scoring of symbols against a benchmark",
		Long: `VRSentinel scores instruments by comparing their historical return
behaviour with a benchmark index. It reports DERI (relative volatility),
MEVAR (relative mean absolute move) and the blended VR score per symbol.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath, "path to the YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "human readable console logs")

	root.AddCommand(newRunCmd(opts), newServeCmd(opts))
	return root
}
