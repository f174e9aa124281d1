package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var snapshotPretty bool

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [ticker]",
	Short: "Fetch one ticker's snapshot and print it as JSON",
	Long: `Classify the ticker, fetch its six series from the upstream and print the
normalized snapshot. If every upstream request fails, a synthetic snapshot
with isSynthetic=true and an explanatory notice is printed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().BoolVar(&snapshotPretty, "pretty", false, "indent the JSON output")
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	p := buildPipeline(cfg, log, nil)

	snap, err := p.service.Load(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	if snapshotPretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(snap)
}
