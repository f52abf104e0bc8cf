package reflow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/pipeline"
)

func testDoc() *pipeline.Document {
	tok := func(x, y, w, h float64, text string, page int) model.Token {
		return model.Token{
			Text:     text,
			BBox:     model.NewBBox(x, y, x+w, y+h),
			FontSize: h,
			Baseline: y + h,
			Page:     page,
		}
	}
	return &pipeline.Document{
		ID:   "test",
		Name: "test.pdf",
		Pages: []*model.Page{
			{
				Number: 1,
				Width:  612,
				Height: 1000,
				Tokens: []model.Token{
					tok(72, 100, 60, 12, "First", 1),
					tok(140, 100, 50, 12, "page", 1),
				},
			},
			{
				Number: 2,
				Width:  612,
				Height: 1000,
				Tokens: []model.Token{
					tok(72, 100, 70, 12, "Second", 2),
					tok(150, 100, 50, 12, "page", 2),
				},
			},
		},
	}
}

func TestFromTokens_Text(t *testing.T) {
	text, warnings, err := FromTokens(testDoc()).Text()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "First page\n\nSecond page" {
		t.Errorf("text = %q", text)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestExtractor_PageSelection(t *testing.T) {
	text, _, err := FromTokens(testDoc()).Pages(2).Text()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Second page" {
		t.Errorf("text = %q", text)
	}
}

func TestExtractor_PageMarkers(t *testing.T) {
	text, _, err := FromTokens(testDoc()).PageMarkers().Text()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "[page 1]\nFirst page\n\n[page 2]\nSecond page"
	if text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
}

func TestExtractor_ChainImmutability(t *testing.T) {
	base := FromTokens(testDoc())
	withMarkers := base.PageMarkers()

	text, _, err := base.Text()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "First page\n\nSecond page" {
		t.Errorf("base extractor mutated by chained call: %q", text)
	}

	marked, _, err := withMarkers.Text()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marked == text {
		t.Error("chained option had no effect")
	}
}

func TestExtractor_Result(t *testing.T) {
	result, _, err := FromTokens(testDoc()).Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Verification.Coverage != 1.0 {
		t.Errorf("coverage = %f", result.Verification.Coverage)
	}
	if result.Quality.Grade != model.GradeA {
		t.Errorf("grade = %q", result.Quality.Grade)
	}
}

func TestExtractor_NoSource(t *testing.T) {
	if _, _, err := (&Extractor{options: defaultOptions()}).Text(); err == nil {
		t.Error("missing source must error")
	}
}

func TestFromDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	dump := `{
	  "name": "dump.pdf",
	  "pages": [{
	    "number": 1, "width": 612, "height": 1000,
	    "tokens": [
	      {"text": "Hello", "x0": 72, "y0": 100, "x1": 132, "y1": 112, "font_size": 12},
	      {"text": "world", "x0": 140, "y0": 100, "x1": 200, "y1": 112, "font_size": 12}
	    ]
	  }]
	}`
	if err := os.WriteFile(path, []byte(dump), 0644); err != nil {
		t.Fatal(err)
	}

	text, _, err := FromDump(path).Text()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Hello world" {
		t.Errorf("text = %q", text)
	}
}

func TestMustText_PanicsOnError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustText must panic on error")
		}
	}()
	MustText(FromDump(filepath.Join(t.TempDir(), "missing.json")).Text())
}
