package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"dubber/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check the external tools the pipeline needs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(deps.Required(cfg))

			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Tool", "Command", "Available", "Notes"})
			for _, status := range statuses {
				notes := status.Detail
				if notes == "" {
					notes = status.Description
				}
				if status.Optional && !status.Available {
					notes += " (optional)"
				}
				t.AppendRow(table.Row{status.Name, status.Command, yesNo(status.Available), notes})
			}
			t.Render()

			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
}
