// Package layout reconstructs human reading order from positioned tokens:
// column segmentation, line banding, cross-page repeating-element detection,
// metadata filtering, super/subscript attachment, and rotated-page recovery.
//
// Every detector takes its configuration at construction and never mutates
// it; identical input produces identical output on every run.
package layout
