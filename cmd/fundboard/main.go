package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "fundboard",
	Short: "fundboard - financial dashboard data relay",
	Long: `fundboard relays requests to a Brazilian market data site, classifies
tickers and assembles per-ticker financial snapshots for a dashboard.
When the upstream cannot be reached it serves clearly labelled synthetic data.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
