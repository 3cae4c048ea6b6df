package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Report bundled and system dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			locator := ctx.locator()
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			root := locator.Root()
			if locator.Bundled() {
				fmt.Fprintf(out, "Bundle: %s\n", locator.PlatformDir())
			} else {
				fmt.Fprintf(out, "Bundle: none under %s (using PATH)\n", root)
			}

			statuses := locator.Check()
			rows := make([][]string, 0, len(statuses))
			missing := make([]string, 0)
			for _, status := range statuses {
				state := paint(colorize, ansiGreen, "OK")
				if !status.Available {
					if status.Optional {
						state = paint(colorize, ansiAmber, "OPTIONAL")
					} else {
						state = paint(colorize, ansiRed, "MISSING")
						missing = append(missing, status.Name)
					}
				}
				rows = append(rows, []string{status.Name, state, status.Command, status.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Dependency", "Status", "Path", "Detail"}, rows, nil))

			if len(missing) > 0 {
				return fmt.Errorf("missing required dependencies: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
}
