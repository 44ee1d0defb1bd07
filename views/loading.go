package views

import (
	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"git.sr.ht/~rockorager/vaxis/vxfw/richtext"
)

// drawLoadingState renders "Loading <what>..." on the first row, with the
// key hint for a manual reload underneath.
func drawLoadingState(ctx vxfw.DrawContext, owner vxfw.Widget, what string) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, owner)
	dim := vaxis.Style{Attribute: vaxis.AttrDim}
	lines := [][]vaxis.Segment{
		{{Text: "Loading " + what + "...", Style: dim}},
		{{Text: "r", Style: vaxis.Style{Attribute: vaxis.AttrBold}}, {Text: " reload", Style: dim}},
	}
	for row, segs := range lines {
		if row >= int(ctx.Max.Height) {
			break
		}
		surf, err := richtext.New(segs).Draw(ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: 1}))
		if err != nil {
			return vxfw.Surface{}, err
		}
		s.AddChild(0, row, surf)
	}
	return s, nil
}
