package layout

import (
	"github.com/kintreehq/kintree/pkg/gen"
)

// Layout runs the primary recursive algorithm: a post-order descendant
// pass from the root so each parent centers over its children's span, an
// ancestor pass climbing birth families upward, and a wrapping grid for
// everyone disconnected from the root's component.
//
// Every unit is positioned at most once; a unit reached again through a
// second path keeps its first placement. This bounds the traversal on
// non-tree topologies (a person with two recorded birth families,
// remarriage cycles) with the first discovered placement winning
// deterministically.
func Layout(persons []*gen.Person, families []*gen.Family, opts Options) *Graph {
	e := newEngine(persons, families, opts)

	root := e.pickRoot()
	if root == nil {
		return &Graph{Nodes: []*Node{}, Edges: []*Edge{}}
	}
	e.rootUnit = e.unitOf[root.ID]

	e.placeDescendants(root.ID, 0)
	e.placeAncestors(root.ID, 0)
	e.placeOrphans()

	return e.graph()
}

// ===== engine state =====

// unit is one placeable item: a person, or a compacted couple.
type unit struct {
	id      string
	persons []*gen.Person // 1, or 2 for a couple
	family  *gen.Family   // the couple's family; nil for individuals
}

func (u *unit) compact() bool { return u.family != nil }

// placement is a unit's abstract position: lateral pixels and generation
// depth. Orientation mapping happens once, at output time.
type placement struct {
	unit  *unit
	lat   float64
	depth int
}

type engine struct {
	idx  *gen.Index
	sp   spacing
	opts Options

	unitOf   map[string]*unit // person ID -> unit
	rootUnit *unit

	placed   map[string]*placement // unit ID -> placement
	order    []*placement          // placement order
	visiting map[string]bool       // descendant recursion guard

	edges    []*Edge
	edgeSeen map[string]bool

	cursor float64 // advancing lateral cursor for leaf placement
}

func newEngine(persons []*gen.Person, families []*gen.Family, opts Options) *engine {
	e := &engine{
		idx:      gen.NewIndex(persons, families),
		sp:       opts.spacing(),
		opts:     opts,
		unitOf:   make(map[string]*unit),
		placed:   make(map[string]*placement),
		visiting: make(map[string]bool),
		edgeSeen: make(map[string]bool),
	}
	e.buildUnits(families)
	e.flagAnomalies(families)
	return e
}

// buildUnits decides which persons merge into couple nodes. A family
// compacts when compaction is enabled, both spouses are present, at least
// one child is present, and neither spouse belongs to any other family.
// The last condition keeps a person with two spouse families as an
// individual node anchoring two spouse edges; compaction never spans
// more than one pair.
func (e *engine) buildUnits(families []*gen.Family) {
	for _, p := range e.idx.Persons() {
		e.unitOf[p.ID] = &unit{id: p.ID, persons: []*gen.Person{p}}
	}
	if !e.opts.CoupleCompaction {
		return
	}
	for _, f := range families {
		if f.Deleted {
			continue
		}
		s1 := e.idx.Person(f.Spouse1ID)
		s2 := e.idx.Person(f.Spouse2ID)
		if s1 == nil || s2 == nil {
			continue
		}
		if len(e.idx.SpouseFamilies(s1.ID)) != 1 || len(e.idx.SpouseFamilies(s2.ID)) != 1 {
			continue
		}
		hasChild := false
		for _, cid := range f.ChildIDs {
			if e.idx.Person(cid) != nil {
				hasChild = true
				break
			}
		}
		if !hasChild {
			continue
		}
		cu := &unit{
			id:      coupleID(s1.ID, s2.ID),
			persons: []*gen.Person{s1, s2},
			family:  f,
		}
		e.unitOf[s1.ID] = cu
		e.unitOf[s2.ID] = cu
	}
}

// flagAnomalies reports persons linked as a child into more than one
// family. The first family silently wins everywhere else; surfacing the
// anomaly is this log line's job.
func (e *engine) flagAnomalies(families []*gen.Family) {
	if e.opts.Logger == nil {
		return
	}
	seen := make(map[string]string)
	for _, f := range families {
		if f.Deleted {
			continue
		}
		for _, cid := range f.ChildIDs {
			if first, ok := seen[cid]; ok && first != f.ID {
				e.opts.Logger.Debug("person linked as child in multiple families; first wins",
					"person", cid, "kept", first, "ignored", f.ID)
				continue
			}
			seen[cid] = f.ID
		}
	}
}

func (e *engine) pickRoot() *gen.Person {
	if e.opts.RootID != "" {
		if p := e.idx.Person(e.opts.RootID); p != nil {
			return p
		}
	}
	all := e.idx.Persons()
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

func (e *engine) place(u *unit, lat float64, depth int) *placement {
	if pl, ok := e.placed[u.id]; ok {
		return pl
	}
	pl := &placement{unit: u, lat: lat, depth: depth}
	e.placed[u.id] = pl
	e.order = append(e.order, pl)
	return pl
}

func (e *engine) addEdge(source, target string, kind EdgeKind) {
	key := edgeID(source, target)
	if e.edgeSeen[key] {
		return
	}
	e.edgeSeen[key] = true
	e.edges = append(e.edges, &Edge{ID: key, Source: source, Target: target, Kind: kind})
}

// ===== descendant pass =====

// childrenOf returns the children to descend into from a unit entered via
// pid: a couple's own family children, or an individual's children across
// every spouse family.
func (e *engine) childrenOf(u *unit, pid string) []*gen.Person {
	if u.compact() {
		var out []*gen.Person
		for _, cid := range u.family.ChildIDs {
			if p := e.idx.Person(cid); p != nil {
				out = append(out, p)
			}
		}
		return out
	}
	return e.idx.Children(pid)
}

// placeDescendants lays out pid's subtree post-order and returns the
// lateral center of pid's unit. ok is false when the unit is mid-layout
// further up the stack (a cycle); the caller skips it.
func (e *engine) placeDescendants(pid string, depth int) (lat float64, ok bool) {
	u := e.unitOf[pid]
	if pl, done := e.placed[u.id]; done {
		return pl.lat, true
	}
	if e.visiting[u.id] {
		return 0, false
	}
	e.visiting[u.id] = true

	kids := e.childrenOf(u, pid)
	var centers []float64
	for _, c := range kids {
		if ctr, placedNow := e.placeDescendants(c.ID, depth+1); placedNow {
			centers = append(centers, ctr)
		}
	}

	if len(centers) == 0 {
		lat = e.cursor + e.sp.NodeW/2
		e.cursor += e.sp.NodeW + e.sp.SiblingGap
	} else {
		lat = (centers[0] + centers[len(centers)-1]) / 2
	}
	e.place(u, lat, depth)

	for _, c := range kids {
		cu := e.unitOf[c.ID]
		if _, done := e.placed[cu.id]; done {
			e.addEdge(u.id, cu.id, EdgeParentChild)
		}
	}
	if !u.compact() {
		e.placeSpouses(pid, u, lat, depth)
	}
	return lat, true
}

// placeSpouses positions pid's partners beside pid's unit and records the
// spouse edges. Successive spouses step further out laterally. A partner
// already placed keeps its position but still gets its edge.
func (e *engine) placeSpouses(pid string, u *unit, lat float64, depth int) {
	step := e.sp.NodeW + e.sp.SpouseGap
	n := 0
	for _, f := range e.idx.SpouseFamilies(pid) {
		other := e.idx.Person(f.OtherSpouse(pid))
		if other == nil {
			continue
		}
		su := e.unitOf[other.ID]
		if su == u {
			continue
		}
		n++
		e.place(su, lat+float64(n)*step, depth)
		e.addEdge(u.id, su.id, EdgeSpouse)
	}
}

// ===== ancestor pass =====

// placeAncestors climbs pid's birth families upward, placing each parent
// one generation above its child and connecting the generations. depth is
// pid's own generation. Recursion only follows parents newly placed by
// this call, which bounds it on cyclic ancestry anomalies.
func (e *engine) placeAncestors(pid string, depth int) {
	f := e.idx.BirthFamily(pid)
	if f == nil {
		return
	}
	childPl, ok := e.placed[e.unitOf[pid].id]
	if !ok {
		return
	}

	var parents []*gen.Person
	for _, sid := range []string{f.Spouse1ID, f.Spouse2ID} {
		if p := e.idx.Person(sid); p != nil {
			parents = append(parents, p)
		}
	}
	if len(parents) == 0 {
		return
	}

	childUnit := e.unitOf[pid].id
	step := (e.sp.NodeW + e.sp.SpouseGap) / 2

	if pu := e.unitOf[parents[0].ID]; len(parents) == 2 && pu == e.unitOf[parents[1].ID] {
		// parents compacted into one couple unit
		fresh := e.placeIfNew(pu, childPl.lat, depth-1)
		e.addEdge(pu.id, childUnit, EdgeParentChild)
		if fresh {
			e.placeAncestors(parents[0].ID, depth-1)
			e.placeAncestors(parents[1].ID, depth-1)
		}
		return
	}

	offsets := []float64{0}
	if len(parents) == 2 {
		offsets = []float64{-step, +step}
	}
	var freshParents []*gen.Person
	for i, p := range parents {
		pu := e.unitOf[p.ID]
		if e.placeIfNew(pu, childPl.lat+offsets[i], depth-1) {
			freshParents = append(freshParents, p)
		}
		e.addEdge(pu.id, childUnit, EdgeParentChild)
	}
	if len(parents) == 2 {
		e.addEdge(e.unitOf[parents[0].ID].id, e.unitOf[parents[1].ID].id, EdgeSpouse)
	}
	for _, p := range freshParents {
		e.placeAncestors(p.ID, depth-1)
	}
}

// placeIfNew places the unit and reports whether this call did the
// placing, as opposed to the unit already having a position.
func (e *engine) placeIfNew(u *unit, lat float64, depth int) bool {
	if _, done := e.placed[u.id]; done {
		return false
	}
	e.place(u, lat, depth)
	return true
}

// ===== orphan pass =====

// placeOrphans grids everyone unreachable from the root: three units per
// row, left to right, rows advancing one generation at a time below the
// main layout's deepest generation.
func (e *engine) placeOrphans() {
	maxDepth := 0
	for _, pl := range e.order {
		if pl.depth > maxDepth {
			maxDepth = pl.depth
		}
	}
	baseDepth := maxDepth + 2

	col, row := 0, 0
	for _, p := range e.idx.Persons() {
		u := e.unitOf[p.ID]
		if _, done := e.placed[u.id]; done {
			continue
		}
		lat := float64(col)*(e.sp.NodeW+e.sp.SiblingGap) + e.sp.NodeW/2
		e.place(u, lat, baseDepth+row)
		col++
		if col == 3 {
			col, row = 0, row+1
		}
	}
}

// ===== output =====

// graph converts placements to final coordinates, normalized so the
// smallest lateral position and shallowest generation land at zero.
func (e *engine) graph() *Graph {
	minLat, minDepth := 0.0, 0
	for i, pl := range e.order {
		if i == 0 || pl.lat < minLat {
			minLat = pl.lat
		}
		if i == 0 || pl.depth < minDepth {
			minDepth = pl.depth
		}
	}

	nodes := make([]*Node, 0, len(e.order))
	for _, pl := range e.order {
		u := pl.unit
		x, y := e.opts.coords(pl.lat-minLat, pl.depth-minDepth, e.sp)
		kind := KindPerson
		if u.compact() {
			kind = KindCouple
		}
		nodes = append(nodes, &Node{
			ID:      u.id,
			Kind:    kind,
			X:       x,
			Y:       y,
			Persons: u.persons,
			IsRoot:  u == e.rootUnit,
			Compact: u.compact(),
		})
	}

	edges := e.edges
	if edges == nil {
		edges = []*Edge{}
	}
	if e.opts.Logger != nil {
		e.opts.Logger.Debug("layout complete",
			"nodes", len(nodes), "edges", len(edges),
			"orientation", e.opts.Orientation, "density", e.opts.Density)
	}
	return &Graph{Nodes: nodes, Edges: edges}
}
