package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subburn/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var online bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, external tools, and credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(runContext(cmd), cfg, preflight.Options{Online: online})

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, passFail(r.Passed, r.Optional), yesNo(r.Optional), r.Detail})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, tableLayout{
				Headers: []string{"Check", "Status", "Optional", "Detail"},
				Rows:    rows,
			}.render())

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d required check(s) failed", len(failed))
			}
			fmt.Fprintln(out, "All required checks passed")
			return nil
		},
	}

	cmd.Flags().BoolVar(&online, "online", false, "Also verify the OpenAI API is reachable with the configured key")
	return cmd
}
