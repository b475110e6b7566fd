package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"dubber/internal/oracle"
)

func newVoicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List the available synthesis voices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Voice", "Description"})
			for _, info := range oracle.KnownVoices() {
				t.AppendRow(table.Row{info.Name.String(), info.Description})
			}
			t.Render()
			return nil
		},
	}
}
