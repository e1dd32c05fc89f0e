// Package render formats records as an aligned text table.
package render

import (
	"strings"
	"text/tabwriter"

	"github.com/leengari/primdb/internal/domain/data"
)

// Table renders records with a header row and a "---" separator. Columns are
// emitted in the given order; missing values are blank.
type Table struct{}

func (Table) Render(columns []string, records []data.Record) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	writeRow(tw, columns)

	sep := make([]string, len(columns))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(tw, sep)

	cells := make([]string, len(columns))
	for _, r := range records {
		for i, col := range columns {
			cells[i] = r.Display(col)
		}
		writeRow(tw, cells)
	}
	tw.Flush()

	// tabwriter pads terminated cells, so an empty last cell leaves trailing blanks
	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}

func writeRow(tw *tabwriter.Writer, cells []string) {
	tw.Write([]byte(strings.Join(cells, "\t") + "\n"))
}
