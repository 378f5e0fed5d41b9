package engine

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/agentrun/agentrun/internal/stringutil"
)

var summaryHeader = table.Row{
	"#",
	"Task",
	"Timestamp",
	"Duration",
	"Prompt",
}

// Summary renders a table of the completed tasks.
func (e *Engine) Summary() string {
	summaryTable := table.NewWriter()
	summaryTable.AppendHeader(summaryHeader)

	for i, record := range e.history {
		summaryTable.AppendRow(table.Row{
			i + 1,
			record.Task,
			record.Timestamp,
			e.durations[i].Round(time.Millisecond).String(),
			stringutil.TruncString(record.Prompt, 50),
		})
	}

	return summaryTable.Render()
}
