package layout

import (
	"testing"

	"github.com/tsawler/reflow/model"
)

func TestNormalizeRotation_180(t *testing.T) {
	tokens := []model.Token{{
		Text:     "upside",
		BBox:     model.NewBBox(10, 20, 30, 40),
		Baseline: 40,
	}}

	out, err := NormalizeRotation(tokens, 180, 612, 792)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := model.NewBBox(582, 752, 602, 772)
	if out[0].BBox != want {
		t.Errorf("bbox = %+v, want %+v", out[0].BBox, want)
	}
	if out[0].Baseline != 772 {
		t.Errorf("baseline = %f, want 772", out[0].Baseline)
	}
	// Input untouched
	if tokens[0].BBox.X0 != 10 {
		t.Error("input tokens mutated")
	}
}

func TestNormalizeRotation_QuarterTurnsPreserveSize(t *testing.T) {
	tok := model.Token{BBox: model.NewBBox(100, 200, 160, 212)}

	for _, rotation := range []int{90, 270} {
		out, err := NormalizeRotation([]model.Token{tok}, rotation, 612, 792)
		if err != nil {
			t.Fatalf("rotation %d: %v", rotation, err)
		}
		// Width and height swap under a quarter turn
		if out[0].BBox.Width() != tok.BBox.Height() || out[0].BBox.Height() != tok.BBox.Width() {
			t.Errorf("rotation %d: dimensions not swapped: %+v", rotation, out[0].BBox)
		}
	}
}

func TestNormalizeRotation_Unsupported(t *testing.T) {
	if _, err := NormalizeRotation(nil, 45, 612, 792); err == nil {
		t.Error("non-quarter rotation must error")
	}
}

func TestNormalizeRotation_ZeroCopies(t *testing.T) {
	tokens := []model.Token{{Text: "a", BBox: model.NewBBox(1, 2, 3, 4)}}
	out, err := NormalizeRotation(tokens, 0, 612, 792)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out[0].Text = "b"
	if tokens[0].Text != "a" {
		t.Error("zero rotation must still copy")
	}
}
