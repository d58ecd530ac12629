package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (a *app) runsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent export runs from the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, closeLedger, err := a.openLedger()
			if err != nil {
				return err
			}
			defer closeLedger()

			ctx := cmd.Context()
			stats, err := ledger.GetStats(ctx)
			if err != nil {
				return err
			}
			runs, err := ledger.Runs(ctx, limit)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%d run(s), %d variant(s) across %d species\n", stats.Runs, stats.Variants, stats.Species)
			for _, run := range runs {
				status := "unfinished"
				if !run.Finished.IsZero() {
					status = run.Finished.Sub(run.Started).Round(time.Millisecond).String()
				}
				fmt.Fprintf(w, "%s  %s  written=%d skipped=%d failed=%d  %s\n",
					run.ID, run.Started.Format(time.RFC3339), run.Written, run.Skipped, run.Failed, status)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	return cmd
}
