package assignment

import "testing"

const bound = 100.0

func TestSolveEmptyTracks(t *testing.T) {
	assignments, unassignedRows, unassignedCols := Solve(nil, 1.5, bound)
	if len(assignments) != 0 || len(unassignedRows) != 0 || len(unassignedCols) != 0 {
		t.Errorf("expected no assignments and no unassigned nodes for an empty matrix")
	}
}

func TestSolveEmptyDetections(t *testing.T) {
	cost := [][]float64{{}, {}}
	assignments, unassignedRows, unassignedCols := Solve(cost, 1.5, bound)
	if len(assignments) != 0 {
		t.Errorf("expected no assignments")
	}
	if len(unassignedRows) != 2 {
		t.Errorf("expected both tracks unassigned, got %v", unassignedRows)
	}
	if len(unassignedCols) != 0 {
		t.Errorf("expected no unassigned detections")
	}
}

func TestSolveDiagonalMatch(t *testing.T) {
	cost := [][]float64{
		{0.1, 10},
		{10, 0.2},
	}
	assignments, unassignedRows, unassignedCols := Solve(cost, 1.5, bound)
	if len(assignments) != 2 {
		t.Fatalf("expected 2 matches, got %d: %v", len(assignments), assignments)
	}
	if len(unassignedRows) != 0 || len(unassignedCols) != 0 {
		t.Errorf("expected everything matched, got unassignedRows=%v unassignedCols=%v", unassignedRows, unassignedCols)
	}
	seen := map[[2]int]bool{}
	for _, a := range assignments {
		seen[a] = true
	}
	if !seen[[2]int{0, 0}] || !seen[[2]int{1, 1}] {
		t.Errorf("expected diagonal matches, got %v", assignments)
	}
}

func TestSolveAllInfeasibleRowsAreUnassigned(t *testing.T) {
	cost := [][]float64{
		{5, 5},
		{5, 5},
	}
	assignments, unassignedRows, unassignedCols := Solve(cost, 1.5, bound)
	if len(assignments) != 0 {
		t.Errorf("expected no matches when every cell is above gate, got %v", assignments)
	}
	if len(unassignedRows) != 2 || len(unassignedCols) != 2 {
		t.Errorf("expected all rows and cols unassigned, got rows=%v cols=%v", unassignedRows, unassignedCols)
	}
}

func TestSolveDisjointComponentsSolvedIndependently(t *testing.T) {
	cost := [][]float64{
		{0.1, 5, 5, 5},
		{5, 0.1, 5, 5},
		{5, 5, 0.1, 5},
		{5, 5, 5, 0.1},
	}
	assignments, unassignedRows, unassignedCols := Solve(cost, 1.5, bound)
	if len(assignments) != 4 {
		t.Fatalf("expected 4 matches across 4 singleton-pair components, got %d: %v", len(assignments), assignments)
	}
	if len(unassignedRows) != 0 || len(unassignedCols) != 0 {
		t.Errorf("expected nothing unassigned, got rows=%v cols=%v", unassignedRows, unassignedCols)
	}
}

func TestSolveRejectsMatchAtOrAboveGateAfterPadding(t *testing.T) {
	// 2 tracks, 1 detection: one track has no feasible detection and must
	// stay unassigned even though the Hungarian solver still returns a
	// (padded) assignment for it internally.
	cost := [][]float64{
		{0.1},
		{5},
	}
	assignments, unassignedRows, unassignedCols := Solve(cost, 1.5, bound)
	if len(assignments) != 1 || assignments[0] != [2]int{0, 0} {
		t.Fatalf("expected single match (0,0), got %v", assignments)
	}
	if len(unassignedRows) != 1 || unassignedRows[0] != 1 {
		t.Errorf("expected track 1 unassigned, got %v", unassignedRows)
	}
	if len(unassignedCols) != 0 {
		t.Errorf("expected no unassigned detections, got %v", unassignedCols)
	}
}
