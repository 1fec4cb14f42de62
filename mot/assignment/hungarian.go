package assignment

import (
	hungarian "github.com/arthurkushman/go-hungarian"
)

// solveComponent runs the classical Hungarian assignment over the
// component's row/col sub-matrix of cost, padding to a square matrix with
// bound wherever a cell falls outside the component's own rows/cols or is
// otherwise infeasible. It returns row-major pairs of (component-local row
// index, component-local col index).
func solveComponent(cost [][]float64, comp component, bound float64) [][2]int {
	size := maxInt(len(comp.rows), len(comp.cols))
	if size == 0 {
		return nil
	}

	padded := make([][]float64, size)
	for i := range padded {
		padded[i] = make([]float64, size)
		for j := range padded[i] {
			padded[i][j] = bound
		}
	}
	for li, gi := range comp.rows {
		for lj, gj := range comp.cols {
			padded[li][lj] = cost[gi][gj]
		}
	}

	// SolveMin returns no assignment for 1x1 and 2x2 matrices, so those
	// are solved exhaustively.
	if size <= 2 {
		perm := []int{0, 1}
		if size == 2 && padded[0][1]+padded[1][0] < padded[0][0]+padded[1][1] {
			perm = []int{1, 0}
		}
		pairs := make([][2]int, 0, len(comp.rows))
		for li := range comp.rows {
			if perm[li] < len(comp.cols) {
				pairs = append(pairs, [2]int{li, perm[li]})
			}
		}
		return pairs
	}

	assignmentsMap := hungarian.SolveMin(padded)
	pairs := make([][2]int, 0, len(comp.rows))
	for li, row := range assignmentsMap {
		if li >= len(comp.rows) {
			continue
		}
		for lj := range row {
			if lj >= len(comp.cols) {
				continue
			}
			pairs = append(pairs, [2]int{li, lj})
			break
		}
	}
	return pairs
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
