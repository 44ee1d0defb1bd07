package widgets

import (
	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

// TabBar is a horizontal tab navigation widget.
type TabBar struct {
	labels []string
	badges []string
	active int
}

// NewTabBar creates a TabBar with the given labels. Active defaults to 0.
func NewTabBar(labels []string) *TabBar {
	return &TabBar{labels: labels, badges: make([]string, len(labels))}
}

// Active returns the currently active tab index.
func (tb *TabBar) Active() int {
	return tb.active
}

// SetActive sets the active tab index. Out-of-range values are ignored.
func (tb *TabBar) SetActive(i int) {
	if i >= 0 && i < len(tb.labels) {
		tb.active = i
	}
}

// SetBadge attaches a short marker to tab i, such as an overdue count.
// An empty string clears it. Out-of-range values are ignored.
func (tb *TabBar) SetBadge(i int, text string) {
	if i >= 0 && i < len(tb.badges) {
		tb.badges[i] = text
	}
}

// Badge returns the marker attached to tab i.
func (tb *TabBar) Badge(i int) string {
	if i < 0 || i >= len(tb.badges) {
		return ""
	}
	return tb.badges[i]
}

// Next advances to the next tab, wrapping around.
func (tb *TabBar) Next() {
	tb.active = (tb.active + 1) % len(tb.labels)
}

// Prev moves to the previous tab, wrapping around.
func (tb *TabBar) Prev() {
	tb.active = (tb.active - 1 + len(tb.labels)) % len(tb.labels)
}

// Draw renders the tab bar as a single row: " Dashboard | Machines | Maintenances (3) "
// Active tab is rendered with reverse video, badges in red.
func (tb *TabBar) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, 1, tb)

	col := uint16(0)
	put := func(text string, style vaxis.Style) {
		for _, ch := range ctx.Characters(text) {
			s.WriteCell(col, 0, vaxis.Cell{Character: ch, Style: style})
			col += uint16(ch.Width)
		}
	}

	for i, label := range tb.labels {
		if i > 0 {
			put(" | ", vaxis.Style{})
		}

		style := vaxis.Style{}
		if i == tb.active {
			style.Attribute |= vaxis.AttrReverse
		}
		put(" "+label+" ", style)

		if tb.badges[i] != "" {
			put("("+tb.badges[i]+")", vaxis.Style{Foreground: vaxis.IndexColor(1)})
		}
	}

	return s, nil
}
