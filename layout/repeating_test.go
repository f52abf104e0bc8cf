package layout

import (
	"testing"

	"github.com/tsawler/reflow/model"
)

func makePages(pageCount int, build func(page int) []model.Token) []*model.Page {
	var pages []*model.Page
	for i := 1; i <= pageCount; i++ {
		tokens := build(i)
		for j := range tokens {
			tokens[j].Page = i
		}
		pages = append(pages, &model.Page{
			Number: i,
			Width:  612,
			Height: 1000,
			Tokens: tokens,
		})
	}
	return pages
}

func TestRepeatingElementDetector_FindsHeader(t *testing.T) {
	pages := makePages(4, func(page int) []model.Token {
		return []model.Token{
			makeToken(72, 20, 200, 10, "Quarterly Review"),
			makeToken(72, 400, 300, 12, "unique body content"),
		}
	})
	// Vary the body per page so only the header repeats
	for i, p := range pages {
		p.Tokens[1].Text = p.Tokens[1].Text + string(rune('a'+i))
	}

	sigs := NewRepeatingElementDetector().Detect(pages)
	if sigs.Len() != 1 {
		t.Fatalf("expected 1 signature, got %d", sigs.Len())
	}

	sig := sigs.Signatures()[0]
	if sig.Text != "Quarterly Review" {
		t.Errorf("unexpected signature text %q", sig.Text)
	}
	if sig.Region != RegionHeader {
		t.Errorf("expected header region, got %s", sig.Region)
	}
	if sig.PageCount != 4 {
		t.Errorf("expected 4 pages, got %d", sig.PageCount)
	}
}

func TestRepeatingElementDetector_FooterRegion(t *testing.T) {
	pages := makePages(3, func(page int) []model.Token {
		return []model.Token{
			makeToken(250, 975, 120, 10, "Confidential"),
		}
	})

	sigs := NewRepeatingElementDetector().Detect(pages)
	if sigs.Len() != 1 {
		t.Fatalf("expected 1 signature, got %d", sigs.Len())
	}
	if sigs.Signatures()[0].Region != RegionFooter {
		t.Errorf("expected footer region, got %s", sigs.Signatures()[0].Region)
	}
}

func TestRepeatingElementDetector_BelowThresholdIgnored(t *testing.T) {
	// Text on 2 of 5 pages stays under the default majority threshold
	pages := makePages(5, func(page int) []model.Token {
		if page <= 2 {
			return []model.Token{makeToken(72, 20, 200, 10, "Draft")}
		}
		return []model.Token{makeToken(72, 400, 200, 10, "body")}
	})
	// Make the body positions distinct per page
	for i, p := range pages {
		if p.Tokens[0].Text == "body" {
			p.Tokens[0].BBox.Y0 += float64(i * 40)
			p.Tokens[0].BBox.Y1 += float64(i * 40)
		}
	}

	sigs := NewRepeatingElementDetector().Detect(pages)
	for _, sig := range sigs.Signatures() {
		if sig.Text == "Draft" {
			t.Error("2-of-5 occurrence should not form a signature")
		}
	}
}

func TestRepeatingElementDetector_PositionDriftWithinQuantum(t *testing.T) {
	// The same footer drifts a few units between pages; quantization
	// still groups it
	pages := makePages(3, func(page int) []model.Token {
		drift := float64(page - 1) // 0, 1, 2 units
		return []model.Token{
			makeToken(250+drift, 975+drift, 120, 10, "Issue 7"),
		}
	})

	sigs := NewRepeatingElementDetector().Detect(pages)
	if sigs.Len() != 1 {
		t.Errorf("expected drifted footer to group into 1 signature, got %d", sigs.Len())
	}
}

func TestRepeatingElementDetector_SinglePageDocument(t *testing.T) {
	pages := makePages(1, func(page int) []model.Token {
		return []model.Token{makeToken(72, 20, 200, 10, "Header")}
	})

	sigs := NewRepeatingElementDetector().Detect(pages)
	if sigs.Len() != 0 {
		t.Errorf("single page must yield no signatures, got %d", sigs.Len())
	}
}
