package layout

import (
	"slices"
	"sort"
)

// AutoArrange recomputes node positions for an already-produced graph
// using a layered algorithm: nodes are ranked into generations along the
// orientation axis, ordered within each generation to reduce edge
// crossings, then assigned evenly spaced coordinates.
//
// Node IDs and edges pass through untouched; only positions change. A
// couple node is a single unit with the same size budget as an individual
// node. Spouse edges keep their endpoints in the same generation;
// parent-child edges force the child strictly below the parent.
//
// The input is not modified; the returned slice holds copies in the same
// order.
func AutoArrange(nodes []*Node, edges []*Edge, opts Options) []*Node {
	if len(nodes) == 0 {
		return []*Node{}
	}
	sp := opts.spacing()

	ranks := assignRanks(nodes, edges)
	layers := buildLayers(nodes, ranks)

	children := make(map[string][]string, len(nodes))
	parents := make(map[string][]string, len(nodes))
	for _, e := range edges {
		if e.Kind != EdgeParentChild {
			continue
		}
		children[e.Source] = append(children[e.Source], e.Target)
		parents[e.Target] = append(parents[e.Target], e.Source)
	}
	layers = orderLayers(layers, children, parents)

	if opts.Logger != nil {
		opts.Logger.Debug("auto-arrange complete",
			"nodes", len(nodes), "layers", len(layers),
			"crossings", countAllCrossings(children, layers))
	}

	// assign coordinates: sequential lateral slots per layer, one
	// generation step per layer
	pos := make(map[string]*placementXY, len(nodes))
	for depth, layer := range layers {
		for i, id := range layer {
			lat := float64(i) * (sp.NodeW + sp.SiblingGap)
			x, y := opts.coords(lat, depth, sp)
			pos[id] = &placementXY{x: x, y: y}
		}
	}

	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		cp := *n
		if p := pos[n.ID]; p != nil {
			cp.X, cp.Y = p.x, p.y
		}
		out[i] = &cp
	}
	return out
}

type placementXY struct{ x, y float64 }

// ===== ranking =====

// assignRanks computes a generation rank per node with a longest-path
// topological pass (Kahn's algorithm) over the parent-child edges.
// Spouse-connected nodes are merged into one ranking group first, so both
// partners land in the same generation. Nodes caught in a cycle never
// reach zero in-degree and keep rank 0.
func assignRanks(nodes []*Node, edges []*Edge) map[string]int {
	// union spouse-connected components
	group := make(map[string]string, len(nodes))
	var find func(id string) string
	find = func(id string) string {
		if group[id] == id {
			return id
		}
		group[id] = find(group[id])
		return group[id]
	}
	for _, n := range nodes {
		group[n.ID] = n.ID
	}
	for _, e := range edges {
		if e.Kind != EdgeSpouse {
			continue
		}
		if _, ok := group[e.Source]; !ok {
			continue
		}
		if _, ok := group[e.Target]; !ok {
			continue
		}
		group[find(e.Source)] = find(e.Target)
	}

	// group-level DAG over parent-child edges
	children := make(map[string][]string)
	inDegree := make(map[string]int)
	var groups []string
	seen := make(map[string]bool)
	for _, n := range nodes {
		g := find(n.ID)
		if !seen[g] {
			seen[g] = true
			groups = append(groups, g)
			inDegree[g] = 0
		}
	}
	for _, e := range edges {
		if e.Kind != EdgeParentChild {
			continue
		}
		if _, ok := group[e.Source]; !ok {
			continue
		}
		if _, ok := group[e.Target]; !ok {
			continue
		}
		gs, gt := find(e.Source), find(e.Target)
		if gs == gt {
			continue
		}
		children[gs] = append(children[gs], gt)
		inDegree[gt]++
	}

	rank := make(map[string]int, len(groups))
	var queue []string
	for _, g := range groups {
		if inDegree[g] == 0 {
			queue = append(queue, g)
		}
	}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, child := range children[curr] {
			if r := rank[curr] + 1; r > rank[child] {
				rank[child] = r
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	out := make(map[string]int, len(nodes))
	for _, n := range nodes {
		out[n.ID] = rank[find(n.ID)]
	}
	return out
}

// buildLayers groups node IDs by rank, preserving input order within each
// layer as the initial ordering.
func buildLayers(nodes []*Node, ranks map[string]int) [][]string {
	maxRank := 0
	for _, n := range nodes {
		if r := ranks[n.ID]; r > maxRank {
			maxRank = r
		}
	}
	layers := make([][]string, maxRank+1)
	for _, n := range nodes {
		r := ranks[n.ID]
		layers[r] = append(layers[r], n.ID)
	}
	return layers
}

// ===== ordering =====

const orderingSweeps = 4

// orderLayers reduces crossings with alternating median sweeps: each
// downward sweep reorders a layer by the median position of its parents
// in the layer above, each upward sweep by the median of its children
// below. After every sweep the total crossing count is scored and the
// best ordering seen is kept, so the result is never worse than the
// initial input ordering.
func orderLayers(layers [][]string, children, parents map[string][]string) [][]string {
	best := cloneLayers(layers)
	bestScore := countAllCrossings(children, best)

	curr := cloneLayers(layers)
	for sweep := 0; sweep < orderingSweeps; sweep++ {
		if sweep%2 == 0 {
			for i := 1; i < len(curr); i++ {
				medianSort(curr[i], curr[i-1], parents)
			}
		} else {
			for i := len(curr) - 2; i >= 0; i-- {
				medianSort(curr[i], curr[i+1], children)
			}
		}
		if score := countAllCrossings(children, curr); score < bestScore {
			bestScore = score
			best = cloneLayers(curr)
		}
	}
	return best
}

// medianSort stably reorders layer by each node's median neighbor
// position in the adjacent layer. Nodes without neighbors keep their
// median from their current position, so they do not drift.
func medianSort(layer, adjacent []string, neighbors map[string][]string) {
	adjPos := make(map[string]int, len(adjacent))
	for i, id := range adjacent {
		adjPos[id] = i
	}

	medians := make(map[string]float64, len(layer))
	for i, id := range layer {
		var positions []int
		for _, nb := range neighbors[id] {
			if p, ok := adjPos[nb]; ok {
				positions = append(positions, p)
			}
		}
		if len(positions) == 0 {
			medians[id] = float64(i)
			continue
		}
		slices.Sort(positions)
		mid := len(positions) / 2
		if len(positions)%2 == 1 {
			medians[id] = float64(positions[mid])
		} else {
			medians[id] = float64(positions[mid-1]+positions[mid]) / 2
		}
	}

	sort.SliceStable(layer, func(a, b int) bool {
		return medians[layer[a]] < medians[layer[b]]
	})
}

func cloneLayers(layers [][]string) [][]string {
	out := make([][]string, len(layers))
	for i, l := range layers {
		out[i] = slices.Clone(l)
	}
	return out
}
