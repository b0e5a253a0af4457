package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run one collection cycle and print its summary",
	Long: `Run one collection cycle over every configured station and print the
cycle summary as JSON. Station failures are reported in the summary and do
not change the exit status.`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, _ []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	service, st, err := newService(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.CollectTimeout)
	defer cancel()

	summary := service.Collect(ctx)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
