package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit int
		reap  bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if store == nil {
				fmt.Fprintln(out, "History is disabled")
				return nil
			}
			defer store.Close()

			if reap {
				n, err := store.ReapRunning(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Marked %d stale run(s) failed\n", n)
			}

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			now := time.Now()
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					fmt.Sprintf("%d", run.ID),
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					string(run.Status),
					run.Duration(now).Round(time.Second).String(),
					run.OutputPath,
					run.Message,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Started", "Status", "Duration", "Output", "Message"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&reap, "reap", false, "Mark runs left running by a crashed worker as failed")
	return cmd
}
