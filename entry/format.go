package entry

import (
	"strconv"
	"strings"
)

// FormatTable renders entries as an aligned text table, one row per entry,
// header first. Column widths grow to fit the widest cell; columns are
// separated by two spaces.
func FormatTable(entries []*Entry) string {
	headers := []string{"ID", "SOURCE", "INSTRUMENT", "FILE ID", "STARRED"}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		starred := "no"
		if e.Starred {
			starred = "yes"
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.Source,
			e.Instrument,
			e.FileID,
			starred,
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			b.WriteString(cell)
			if i == len(cells)-1 {
				break
			}
			b.WriteString(strings.Repeat(" ", widths[i]-len(cell)+2))
		}
		b.WriteByte('\n')
	}

	writeRow(headers)
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}
