package model

import "math"

// Segment is a drawn line segment reported by the upstream parser alongside
// the page's tokens. Ruled-table detection is built from these.
type Segment struct {
	X0, Y0 float64
	X1, Y1 float64
}

// IsHorizontal reports whether the segment is horizontal within tolerance
func (s Segment) IsHorizontal(tolerance float64) bool {
	return math.Abs(s.Y1-s.Y0) <= tolerance &&
		math.Abs(s.X1-s.X0) > math.Abs(s.Y1-s.Y0)
}

// IsVertical reports whether the segment is vertical within tolerance
func (s Segment) IsVertical(tolerance float64) bool {
	return math.Abs(s.X1-s.X0) <= tolerance &&
		math.Abs(s.Y1-s.Y0) > math.Abs(s.X1-s.X0)
}

// Length returns the segment length
func (s Segment) Length() float64 {
	dx := s.X1 - s.X0
	dy := s.Y1 - s.Y0
	return math.Sqrt(dx*dx + dy*dy)
}
