package widgets

import (
	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

// TableColumn defines a column in a Table.
type TableColumn struct {
	Width      int         // fixed character width
	AlignRight bool        // right-align text within the column
	Style      vaxis.Style // applied to all cells in this column
}

// Table renders rows of text with fixed-width columns using WriteCell.
// Each row is a []string matching the Columns slice.
type Table struct {
	Columns []TableColumn
	Rows    [][]string
	Header  []string // optional header row rendered with AttrDim
	Gap     int      // spaces between columns (default 1)

	// RowStyles overrides the column style per row. A nil entry or a
	// missing index keeps the column style.
	RowStyles []*vaxis.Style

	// With ShowCursor set the row at Cursor is drawn in reverse video and
	// the body scrolls to keep it visible.
	Cursor     int
	ShowCursor bool
}

// MoveCursor shifts the cursor by delta, clamped to the rows.
func (t *Table) MoveCursor(delta int) {
	t.Cursor = min(max(t.Cursor+delta, 0), max(len(t.Rows)-1, 0))
}

// writeText writes s into surf at (col, row) within maxWidth. If
// right-aligned, text is padded on the left.
func writeText(surf *vxfw.Surface, col, row uint16, maxWidth int, s string, style vaxis.Style, alignRight bool) {
	chars := vaxis.Characters(s)

	displayWidth := 0
	for _, ch := range chars {
		displayWidth += ch.Width
	}

	offset := 0
	if alignRight && displayWidth < maxWidth {
		offset = maxWidth - displayWidth
	}

	pos := offset
	for _, ch := range chars {
		if pos+ch.Width > maxWidth {
			break
		}
		surf.WriteCell(col+uint16(pos), row, vaxis.Cell{
			Character: ch,
			Style:     style,
		})
		pos += ch.Width
	}
}

func (t *Table) writeRow(s *vxfw.Surface, row uint16, width uint16, cells []string, style func(TableColumn) vaxis.Style) {
	gap := t.Gap
	if gap == 0 {
		gap = 1
	}
	col := uint16(0)
	for i, c := range t.Columns {
		if col >= width {
			break
		}
		text := ""
		if i < len(cells) {
			text = cells[i]
		}
		writeText(s, col, row, c.Width, text, style(c), c.AlignRight)
		col += uint16(c.Width + gap)
	}
}

// firstVisible returns the index of the first data row so that the cursor
// stays inside a body of the given height.
func (t *Table) firstVisible(body int) int {
	if !t.ShowCursor || body <= 0 || t.Cursor < body {
		return 0
	}
	return t.Cursor - body + 1
}

// Draw renders the table header (if set) and the rows that fit.
func (t *Table) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	totalRows := len(t.Rows)
	if t.Header != nil {
		totalRows++
	}
	height := min(uint16(totalRows), ctx.Max.Height)

	s := vxfw.NewSurface(ctx.Max.Width, height, t)
	row := uint16(0)

	if t.Header != nil && row < height {
		t.writeRow(&s, row, ctx.Max.Width, t.Header, func(TableColumn) vaxis.Style {
			return vaxis.Style{Attribute: vaxis.AttrDim}
		})
		row++
	}

	start := t.firstVisible(int(height - row))
	for idx := start; idx < len(t.Rows) && row < height; idx++ {
		var override *vaxis.Style
		if idx < len(t.RowStyles) {
			override = t.RowStyles[idx]
		}
		selected := t.ShowCursor && idx == t.Cursor
		t.writeRow(&s, row, ctx.Max.Width, t.Rows[idx], func(c TableColumn) vaxis.Style {
			style := c.Style
			if override != nil {
				style = *override
			}
			if selected {
				style.Attribute |= vaxis.AttrReverse
			}
			return style
		})
		row++
	}

	return s, nil
}
