package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "List the configured stations",
	RunE:  runStations,
}

func init() {
	rootCmd.AddCommand(stationsCmd)
}

func runStations(cmd *cobra.Command, _ []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLATITUDE\tLONGITUDE")
	for _, s := range cfg.Stations.All() {
		fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\n", s.ID, s.Name, s.Latitude, s.Longitude)
	}
	return w.Flush()
}
