package main

import (
	"math"
	"sort"
	"strings"
)

// Fragment is one positioned piece of text decoded from a document page.
// Coordinates follow the usual page convention: origin bottom-left, y grows
// upward.
type Fragment struct {
	Text  string  `json:"text"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Width float64 `json:"width"`
}

// Row is one reconstructed line of text and its fragments in reading order.
type Row struct {
	Y         float64
	Fragments []Fragment
}

// Text joins the row's fragments left to right with single spaces.
func (r Row) Text() string {
	parts := make([]string, 0, len(r.Fragments))
	for _, f := range r.Fragments {
		if t := strings.TrimSpace(f.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// rowGridUnits absorbs sub-pixel baseline jitter: fragments whose y rounds to
// the same 2-unit grid line belong to one printed line.
const rowGridUnits = 2.0

// ReconstructRows groups one page's fragments into ordered rows: bucketed by
// quantized y, sorted left to right within a row, rows top of page first
// (descending y).
func ReconstructRows(fragments []Fragment) []Row {
	buckets := make(map[float64][]Fragment)
	for _, f := range fragments {
		key := math.Round(f.Y/rowGridUnits) * rowGridUnits
		buckets[key] = append(buckets[key], f)
	}

	rows := make([]Row, 0, len(buckets))
	for y, frags := range buckets {
		sort.SliceStable(frags, func(i, j int) bool { return frags[i].X < frags[j].X })
		rows = append(rows, Row{Y: y, Fragments: frags})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Y > rows[j].Y })
	return rows
}
