package main

import "testing"

func TestReconstructRowsGroupsJitteredBaselines(t *testing.T) {
	frags := []Fragment{
		{Text: "SPRINKLER", X: 120, Y: 700.4},
		{Text: "DH-1200", X: 10, Y: 699.8},
		{Text: "ROUGH-IN", X: 60, Y: 700.1},
	}
	rows := ReconstructRows(frags)
	if len(rows) != 1 {
		t.Fatalf("expected jittered fragments in 1 row, got %d", len(rows))
	}
	if got := rows[0].Text(); got != "DH-1200 ROUGH-IN SPRINKLER" {
		t.Fatalf("row text = %q, want fragments in reading order", got)
	}
}

func TestReconstructRowsTopOfPageFirst(t *testing.T) {
	frags := []Fragment{
		{Text: "bottom row", X: 0, Y: 50},
		{Text: "top row", X: 0, Y: 750},
		{Text: "middle row", X: 0, Y: 400},
	}
	rows := ReconstructRows(frags)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Text() != "top row" || rows[2].Text() != "bottom row" {
		t.Fatalf("rows not ordered top first: %q, %q, %q", rows[0].Text(), rows[1].Text(), rows[2].Text())
	}
}

func TestReconstructRowsSeparatesDistinctLines(t *testing.T) {
	frags := []Fragment{
		{Text: "line one", X: 0, Y: 100},
		{Text: "line two", X: 0, Y: 90},
	}
	rows := ReconstructRows(frags)
	if len(rows) != 2 {
		t.Fatalf("expected distinct lines to stay separate, got %d rows", len(rows))
	}
}

func TestRowTextSkipsEmptyFragments(t *testing.T) {
	row := Row{Fragments: []Fragment{
		{Text: "FP", X: 0}, {Text: "   ", X: 5}, {Text: "TEST", X: 10},
	}}
	if got := row.Text(); got != "FP TEST" {
		t.Fatalf("row text = %q, want blank fragments skipped", got)
	}
}
