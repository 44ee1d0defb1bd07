package widgets

import (
	"fmt"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

// BarGauge is a horizontal bar gauge widget.
//
//	OPS  [████████████████░░░░]  80.0%  8/10 machines
type BarGauge struct {
	Label    string  // 4-char left column, e.g. "OPS", "DONE"
	Value    float64 // 0.0–100.0
	Suffix   string  // text after %, e.g. "8/10 machines"
	BarWidth int     // character width of the [████░░░░] portion (excluding brackets)

	// HighIsGood flips the colour scale so a full bar is green. Use it for
	// availability and completion ratios.
	HighIsGood bool
}

const (
	barFilled = '█' // U+2588
	barEmpty  = '░' // U+2591
)

// Ratio returns count/total as a percentage, or 0 when total is not positive.
func Ratio(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// barColor returns the appropriate color for the given percentage.
func barColor(pct float64, highIsGood bool) vaxis.Color {
	if highIsGood {
		pct = 100 - pct
	}
	switch {
	case pct >= 85:
		return vaxis.IndexColor(1) // red
	case pct >= 60:
		return vaxis.IndexColor(3) // yellow
	default:
		return vaxis.IndexColor(2) // green
	}
}

// Draw renders the bar gauge as a single row.
func (bg *BarGauge) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, 1, bg)

	col := uint16(0)
	put := func(text string, style vaxis.Style) {
		for _, ch := range ctx.Characters(text) {
			s.WriteCell(col, 0, vaxis.Cell{Character: ch, Style: style})
			col += uint16(ch.Width)
		}
	}

	put(fmt.Sprintf("%-4s ", bg.Label), vaxis.Style{Attribute: vaxis.AttrBold})
	put("[", vaxis.Style{})

	v := min(max(bg.Value, 0), 100)
	filled := int(v / 100 * float64(bg.BarWidth))
	color := barColor(v, bg.HighIsGood)

	for i := 0; i < bg.BarWidth; i++ {
		if i < filled {
			put(string(barFilled), vaxis.Style{Foreground: color})
		} else {
			put(string(barEmpty), vaxis.Style{Foreground: vaxis.IndexColor(8)})
		}
	}

	put(fmt.Sprintf("] %5.1f%%", v), vaxis.Style{})

	if bg.Suffix != "" {
		put("  "+bg.Suffix, vaxis.Style{Attribute: vaxis.AttrDim})
	}

	return s, nil
}
