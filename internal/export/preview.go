package export

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/microcosm-cc/bluemonday"

	"coingecko-exporter/internal/columns"
	"coingecko-exporter/internal/types"
)

// PreviewRows is how many rows a preview shows.
const PreviewRows = 2

const maxCellWidth = 20

// cellPolicy reduces scraped text to plain escaped text. Markup in a cell
// is dropped rather than rendered.
var cellPolicy = bluemonday.StrictPolicy()

// Cell is one preview value, full and shortened for display.
type Cell struct {
	Full    string
	Display string
}

// Preview is the first rows of an export, laid out in canonical column order.
type Preview struct {
	Type      types.PageType
	TotalRows int
	Columns   columns.Spec
	Rows      [][]Cell
}

// NewPreview lays out up to PreviewRows records. The columns shown are the
// ones present in the first record, in canonical order.
func NewPreview(records []types.Record, t types.PageType, totalRows int) Preview {
	if len(records) > PreviewRows {
		records = records[:PreviewRows]
	}
	if totalRows == 0 {
		totalRows = len(records)
	}
	p := Preview{Type: t, TotalRows: totalRows}
	if len(records) == 0 {
		return p
	}

	p.Columns = columns.For(t).Resolve(records[0].Keys())
	for _, rec := range records {
		row := make([]Cell, len(p.Columns))
		for i, c := range p.Columns {
			v, _ := rec.Get(c.Key)
			if v == "" {
				v = types.NA
			}
			row[i] = Cell{Full: v, Display: truncate(v)}
		}
		p.Rows = append(p.Rows, row)
	}
	return p
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxCellWidth {
		return s
	}
	return string(r[:maxCellWidth]) + "..."
}

// Summary describes what is about to be exported.
func (p Preview) Summary(selected []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d rows. Preview of first %d rows:\n", p.TotalRows, PreviewRows)
	if len(selected) > 0 {
		fmt.Fprintf(&b, "Exporting %d selected columns: %s", len(selected), strings.Join(selected, ", "))
	} else {
		b.WriteString("Exporting all available columns")
	}
	return b.String()
}

// HTML renders the preview as a table. Every label and cell goes through
// cellPolicy.
func (p Preview) HTML() string {
	if len(p.Rows) == 0 {
		return "<p>No data to preview</p>"
	}

	var b strings.Builder
	b.WriteString("<table><thead><tr>")
	for _, c := range p.Columns {
		b.WriteString("<th>" + cellPolicy.Sanitize(c.Label) + "</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range p.Rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			fmt.Fprintf(&b, `<td title="%s">%s</td>`, cellPolicy.Sanitize(cell.Full), cellPolicy.Sanitize(cell.Display))
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

// WriteText renders the preview as an aligned plain-text table.
func (p Preview) WriteText(w io.Writer) error {
	if len(p.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No data to preview")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	labels := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		labels[i] = c.Label
	}
	fmt.Fprintln(tw, strings.Join(labels, "\t"))
	for _, row := range p.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = c.Display
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
