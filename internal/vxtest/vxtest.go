// Package vxtest holds helpers for drawing vxfw widgets in tests.
package vxtest

import (
	"strings"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

// DrawContext returns a w by h context that measures text like a real
// terminal: graphemes are clustered and wide runes take two cells.
func DrawContext(w, h uint16) vxfw.DrawContext {
	return vxfw.DrawContext{
		Max:        vxfw.Size{Width: w, Height: h},
		Min:        vxfw.Size{},
		Characters: vaxis.Characters,
	}
}

// Row returns the text on row y of s with trailing blanks trimmed. Empty
// cells read as spaces; the cells covered by a wide character are skipped.
func Row(s vxfw.Surface, y int) string {
	w := int(s.Size.Width)
	if y < 0 || y >= int(s.Size.Height) {
		return ""
	}
	var b strings.Builder
	for x := 0; x < w; x++ {
		ch := s.Buffer[y*w+x].Character
		if ch.Grapheme == "" {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(ch.Grapheme)
		x += max(ch.Width, 1) - 1
	}
	return strings.TrimRight(b.String(), " ")
}
