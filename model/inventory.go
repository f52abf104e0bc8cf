package model

// PositionRegion buckets a token by its vertical position on the page
type PositionRegion int

const (
	RegionTop    PositionRegion = iota // top 15% of the page
	RegionMiddle                       // middle 70%
	RegionBottom                       // bottom 15%
)

func (r PositionRegion) String() string {
	switch r {
	case RegionTop:
		return "top"
	case RegionBottom:
		return "bottom"
	default:
		return "middle"
	}
}

// SizeClass buckets a token by font size
type SizeClass int

const (
	SizeLarge    SizeClass = iota // > 18pt, titles
	SizeStandard                  // 10-18pt, body
	SizeSmall                     // 6-10pt, footnotes
	SizeTiny                      // < 6pt, super/subscripts
)

func (s SizeClass) String() string {
	switch s {
	case SizeLarge:
		return "large"
	case SizeSmall:
		return "small"
	case SizeTiny:
		return "tiny"
	default:
		return "standard"
	}
}

// PageInventory is the frozen pre-filter census of one page: total token
// count plus counts bucketed by position region and size class. It is
// captured before any removal and never recomputed; verification always
// compares against this baseline.
type PageInventory struct {
	Page  int
	Total int

	ByRegion map[PositionRegion]int
	BySize   map[SizeClass]int
}

// Inventory is the frozen census for a whole document
type Inventory struct {
	Pages []PageInventory
}

// Total returns the document-wide token count
func (inv Inventory) Total() int {
	n := 0
	for _, p := range inv.Pages {
		n += p.Total
	}
	return n
}

// RegionCount returns the document-wide count for one position region
func (inv Inventory) RegionCount(r PositionRegion) int {
	n := 0
	for _, p := range inv.Pages {
		n += p.ByRegion[r]
	}
	return n
}

// CoverageStatus grades a coverage ratio
type CoverageStatus int

const (
	CoverageGood    CoverageStatus = iota // >= 0.85
	CoverageWarning                       // 0.70 - 0.85
	CoveragePoor                          // < 0.70
)

func (s CoverageStatus) String() string {
	switch s {
	case CoverageGood:
		return "GOOD"
	case CoverageWarning:
		return "WARNING"
	default:
		return "POOR"
	}
}

// StatusFor returns the coverage status for a ratio
func StatusFor(coverage float64) CoverageStatus {
	switch {
	case coverage >= 0.85:
		return CoverageGood
	case coverage >= 0.70:
		return CoverageWarning
	default:
		return CoveragePoor
	}
}
