package assignment

// Solve runs the gated Hungarian assignment over cost (rows = tracks, cols
// = detections): it decomposes the bipartite feasibility graph (edge iff
// cost[i][j] < gate) into connected components, solves each component
// independently with bound substituted for infeasible cells, and accepts
// only matches whose cell cost is still below gate.
//
// It returns accepted (trackIndex, detectionIndex) pairs, and the track and
// detection indices left unassigned.
func Solve(cost [][]float64, gate, bound float64) (assignments [][2]int, unassignedRows, unassignedCols []int) {
	numRows := len(cost)
	numCols := 0
	if numRows > 0 {
		numCols = len(cost[0])
	}
	if numRows == 0 {
		cols := make([]int, numCols)
		for j := range cols {
			cols[j] = j
		}
		return nil, nil, cols
	}
	if numCols == 0 {
		rows := make([]int, numRows)
		for i := range rows {
			rows[i] = i
		}
		return nil, rows, nil
	}

	rowAssigned := make([]bool, numRows)
	colAssigned := make([]bool, numCols)

	// Infeasible cells (cost >= gate) enter the per-component solve as bound.
	gated := make([][]float64, numRows)
	for i, row := range cost {
		gated[i] = make([]float64, numCols)
		for j, c := range row {
			if c >= gate {
				c = bound
			}
			gated[i][j] = c
		}
	}

	for _, comp := range connectedComponents(cost, gate) {
		if len(comp.rows) == 0 || len(comp.cols) == 0 {
			continue
		}
		for _, pair := range solveComponent(gated, comp, bound) {
			gi, gj := comp.rows[pair[0]], comp.cols[pair[1]]
			if cost[gi][gj] < gate {
				assignments = append(assignments, [2]int{gi, gj})
				rowAssigned[gi] = true
				colAssigned[gj] = true
			}
		}
	}

	for i := 0; i < numRows; i++ {
		if !rowAssigned[i] {
			unassignedRows = append(unassignedRows, i)
		}
	}
	for j := 0; j < numCols; j++ {
		if !colAssigned[j] {
			unassignedCols = append(unassignedCols, j)
		}
	}
	return assignments, unassignedRows, unassignedCols
}
