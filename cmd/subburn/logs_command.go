package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"subburn/internal/logging"
	"subburn/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		follow bool
		runID  string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the JSON run log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			out := cmd.OutOrStdout()

			tail, offset, err := logs.Last(path, lines)
			if err != nil {
				return err
			}
			for _, line := range logs.Filter(tail, runID) {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, offset, 0, func(line string) {
				if runID == "" || logs.MatchRun(line, runID) {
					fmt.Fprintln(out, line)
				}
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines")
	cmd.Flags().StringVar(&runID, "run", "", "Only show lines for this run ID")
	return cmd
}
