package main

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"dubber/internal/workflow"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	return t
}

func printSummary(out io.Writer, summary workflow.Summary) {
	t := newTable(out)
	t.AppendRow(table.Row{"Output", summary.Output})
	t.AppendRow(table.Row{"Language", summary.TargetLanguage})
	t.AppendRow(table.Row{"Source duration", fmt.Sprintf("%.1fs", float64(summary.SourceDurationMs)/1000)})
	t.AppendRow(table.Row{"Chunks", summary.Chunks})
	t.AppendRow(table.Row{"Translated", summary.TranslatedChunks})
	t.AppendRow(table.Row{"Failed", summary.FailedChunks})
	t.AppendRow(table.Row{"Video output", yesNo(summary.VideoOutput)})
	t.AppendRow(table.Row{"Elapsed", summary.Elapsed.Round(100 * time.Millisecond).String()})
	t.Render()
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
