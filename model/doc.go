// Package model defines the shared data types for reading-order
// reconstruction: positioned tokens, bands, columns, pages, tables,
// footnotes, the frozen element inventory, and verification reports.
//
// Tokens are immutable. Every derived structure (Band, Column, Page) holds
// copies; nothing in the pipeline rewrites a token after the upstream parser
// produces it, which is what keeps the inventory baseline valid across
// remediation attempts.
package model
