package layout

import (
	"fmt"

	"github.com/tsawler/reflow/model"
)

// NormalizeRotation transforms token coordinates of a rotated page back into
// the upright frame so that column and band analysis see normal geometry.
// Rotation is the page rotation in degrees and must be a quarter turn.
// Returns new tokens; the originals are untouched.
func NormalizeRotation(tokens []model.Token, rotation int, pageWidth, pageHeight float64) ([]model.Token, error) {
	rotation = ((rotation % 360) + 360) % 360
	if rotation == 0 {
		out := make([]model.Token, len(tokens))
		copy(out, tokens)
		return out, nil
	}
	if rotation != 90 && rotation != 180 && rotation != 270 {
		return nil, fmt.Errorf("unsupported rotation %d degrees", rotation)
	}

	out := make([]model.Token, 0, len(tokens))
	for _, tok := range tokens {
		t := tok
		t.BBox = rotateBBox(tok.BBox, rotation, pageWidth, pageHeight)
		t.Baseline = rotateBaseline(tok, rotation, pageWidth, pageHeight)
		out = append(out, t)
	}
	return out, nil
}

func rotateBBox(b model.BBox, rotation int, w, h float64) model.BBox {
	switch rotation {
	case 90:
		// Page was rotated 90° clockwise; undo it
		return model.NewBBox(b.Y0, w-b.X1, b.Y1, w-b.X0)
	case 180:
		return model.NewBBox(w-b.X1, h-b.Y1, w-b.X0, h-b.Y0)
	case 270:
		return model.NewBBox(h-b.Y1, b.X0, h-b.Y0, b.X1)
	default:
		return b
	}
}

func rotateBaseline(tok model.Token, rotation int, w, h float64) float64 {
	// After undoing the rotation the baseline is re-derived from the box
	// bottom; the upstream baseline axis no longer applies.
	box := rotateBBox(tok.BBox, rotation, w, h)
	return box.Y1
}
