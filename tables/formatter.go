package tables

import (
	"strings"
	"unicode/utf8"

	"github.com/tsawler/reflow/model"
)

// Formatter renders a detected table as an aligned plain-text grid for
// reinsertion into the page's linear output.
type Formatter struct {
	// Separator is placed between columns
	// Default: " | "
	Separator string

	// HeaderRule adds a dashed rule under the first row
	// Default: true
	HeaderRule bool
}

// NewFormatter creates a formatter with default settings
func NewFormatter() *Formatter {
	return &Formatter{
		Separator:  " | ",
		HeaderRule: true,
	}
}

// Format renders the table row by row with columns padded to equal width
func (f *Formatter) Format(table *model.Table) string {
	rows := table.Rows()
	cols := table.Cols()
	if rows == 0 || cols == 0 {
		return ""
	}

	widths := make([]int, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if w := utf8.RuneCountInString(table.CellText(r, c)); w > widths[c] {
				widths[c] = w
			}
		}
	}

	var sb strings.Builder
	for r := 0; r < rows; r++ {
		sb.WriteString("| ")
		for c := 0; c < cols; c++ {
			if c > 0 {
				sb.WriteString(f.Separator)
			}
			text := table.CellText(r, c)
			sb.WriteString(text)
			sb.WriteString(strings.Repeat(" ", widths[c]-utf8.RuneCountInString(text)))
		}
		sb.WriteString(" |\n")

		if r == 0 && f.HeaderRule && rows > 1 {
			sb.WriteString("|-")
			for c := 0; c < cols; c++ {
				if c > 0 {
					sb.WriteString("-+-")
				}
				sb.WriteString(strings.Repeat("-", widths[c]))
			}
			sb.WriteString("-|\n")
		}
	}
	return sb.String()
}
