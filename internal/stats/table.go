package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const columnGap = "  "

type column struct {
	title string
	right bool
}

// table lays out cells in columns sized by terminal display width, so wide
// runes in usernames still line up.
type table struct {
	columns []column
	rows    [][]string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) lines() []string {
	if len(t.columns) == 0 {
		return nil
	}
	widths := make([]int, len(t.columns))
	for i, c := range t.columns {
		widths[i] = runewidth.StringWidth(c.title)
	}
	for _, row := range t.rows {
		for i := range t.columns {
			if w := runewidth.StringWidth(cell(row, i)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	out := make([]string, 0, len(t.rows)+1)
	header := make([]string, len(t.columns))
	for i, c := range t.columns {
		header[i] = c.title
	}
	out = append(out, t.render(header, widths))
	for _, row := range t.rows {
		out = append(out, t.render(row, widths))
	}
	return out
}

func (t *table) render(row []string, widths []int) string {
	parts := make([]string, len(t.columns))
	for i, c := range t.columns {
		if c.right {
			parts[i] = runewidth.FillLeft(cell(row, i), widths[i])
		} else {
			parts[i] = runewidth.FillRight(cell(row, i), widths[i])
		}
	}
	return strings.TrimRight(strings.Join(parts, columnGap), " ")
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
