package layout

import "slices"

// countLayerCrossings counts edge crossings between two adjacent layers
// using a Fenwick tree for O(E log V) inversion counting, where E is the
// number of edges between the layers and V the size of the lower layer.
//
// Two edges (u1,v1) and (u2,v2) cross iff pos(u1) < pos(u2) and
// pos(v1) > pos(v2), so crossings equal the inversions in the sequence of
// target positions when edges are sorted by source position. Edges whose
// target is not in the lower layer are ignored.
func countLayerCrossings(children map[string][]string, upper, lower []string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	lowerPos := make(map[string]int, len(lower))
	for i, id := range lower {
		lowerPos[id] = i
	}

	type edge struct{ upper, lower int }
	var edges []edge
	for i, id := range upper {
		for _, child := range children[id] {
			if pos, ok := lowerPos[child]; ok {
				edges = append(edges, edge{i, pos})
			}
		}
	}
	if len(edges) < 2 {
		return 0
	}

	slices.SortFunc(edges, func(a, b edge) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, e := range edges {
		// count edges seen so far with target <= e.lower; the remainder
		// of the seen edges cross this one
		lessOrEqual := 0
		for q := e.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += total - lessOrEqual

		total++
		for idx := e.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}

// countAllCrossings sums crossings over every adjacent layer pair.
func countAllCrossings(children map[string][]string, layers [][]string) int {
	crossings := 0
	for i := 0; i+1 < len(layers); i++ {
		crossings += countLayerCrossings(children, layers[i], layers[i+1])
	}
	return crossings
}
