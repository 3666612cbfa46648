package layout

import (
	"reflect"
	"testing"

	"github.com/kintreehq/kintree/pkg/gen"
)

func arrangeFixture() ([]*Node, []*Edge) {
	mk := func(id string) *Node {
		return &Node{ID: id, Kind: KindPerson, Persons: []*gen.Person{{ID: id}}}
	}
	nodes := []*Node{mk("pa"), mk("ma"), mk("kid1"), mk("kid2"), mk("inlaw")}
	edges := []*Edge{
		{ID: "pa->ma", Source: "pa", Target: "ma", Kind: EdgeSpouse},
		{ID: "pa->kid1", Source: "pa", Target: "kid1", Kind: EdgeParentChild},
		{ID: "pa->kid2", Source: "pa", Target: "kid2", Kind: EdgeParentChild},
		{ID: "kid1->inlaw", Source: "kid1", Target: "inlaw", Kind: EdgeSpouse},
	}
	return nodes, edges
}

func TestAutoArrangeEmpty(t *testing.T) {
	if out := AutoArrange(nil, nil, Options{}); len(out) != 0 {
		t.Errorf("out = %+v", out)
	}
}

func TestAutoArrangeRanks(t *testing.T) {
	nodes, edges := arrangeFixture()
	out := AutoArrange(nodes, edges, Options{})

	pos := make(map[string]*Node, len(out))
	for _, n := range out {
		pos[n.ID] = n
	}
	// spouses share a generation
	if pos["pa"].Y != pos["ma"].Y {
		t.Errorf("spouses at Y %v and %v", pos["pa"].Y, pos["ma"].Y)
	}
	if pos["kid1"].Y != pos["inlaw"].Y {
		t.Errorf("married-in spouse at Y %v, child at %v", pos["inlaw"].Y, pos["kid1"].Y)
	}
	// children strictly below parents
	if pos["kid1"].Y <= pos["pa"].Y || pos["kid2"].Y <= pos["pa"].Y {
		t.Errorf("children not below parents: pa=%v kid1=%v kid2=%v",
			pos["pa"].Y, pos["kid1"].Y, pos["kid2"].Y)
	}
	// no two nodes in a layer share a position
	seen := make(map[[2]float64]string)
	for _, n := range out {
		key := [2]float64{n.X, n.Y}
		if prev, ok := seen[key]; ok {
			t.Errorf("nodes %s and %s overlap at %v", prev, n.ID, key)
		}
		seen[key] = n.ID
	}
}

func TestAutoArrangePreservesIdentity(t *testing.T) {
	nodes, edges := arrangeFixture()
	for i, n := range nodes {
		n.X, n.Y = float64(i)*7, float64(i)*13
	}
	out := AutoArrange(nodes, edges, Options{})

	if len(out) != len(nodes) {
		t.Fatalf("node count changed: %d -> %d", len(nodes), len(out))
	}
	for i, n := range out {
		if n.ID != nodes[i].ID || n.Kind != nodes[i].Kind {
			t.Errorf("node %d identity changed: %+v", i, n)
		}
		if !reflect.DeepEqual(n.Persons, nodes[i].Persons) {
			t.Errorf("node %d persons changed", i)
		}
	}
	// input untouched
	if nodes[3].X != 21 || nodes[3].Y != 39 {
		t.Error("AutoArrange mutated its input")
	}
}

func TestAutoArrangeDeterministic(t *testing.T) {
	nodes, edges := arrangeFixture()
	a := AutoArrange(nodes, edges, Options{Density: Compact})
	b := AutoArrange(nodes, edges, Options{Density: Compact})
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs produced different arrangements")
	}
}

func TestAutoArrangeReducesCrossings(t *testing.T) {
	// two parents each with one child, initial orderings inverted so the
	// straight-through layout has one crossing
	mk := func(id string) *Node {
		return &Node{ID: id, Kind: KindPerson, Persons: []*gen.Person{{ID: id}}}
	}
	nodes := []*Node{mk("p1"), mk("p2"), mk("c2"), mk("c1")}
	edges := []*Edge{
		{ID: "p1->c1", Source: "p1", Target: "c1", Kind: EdgeParentChild},
		{ID: "p2->c2", Source: "p2", Target: "c2", Kind: EdgeParentChild},
	}
	out := AutoArrange(nodes, edges, Options{})

	pos := make(map[string]*Node)
	for _, n := range out {
		pos[n.ID] = n
	}
	// untangled: c1 ends up on p1's side of c2
	if (pos["p1"].X < pos["p2"].X) != (pos["c1"].X < pos["c2"].X) {
		t.Errorf("crossing not removed: p1=%v p2=%v c1=%v c2=%v",
			pos["p1"].X, pos["p2"].X, pos["c1"].X, pos["c2"].X)
	}
}

func TestAutoArrangeHorizontal(t *testing.T) {
	nodes, edges := arrangeFixture()
	out := AutoArrange(nodes, edges, Options{Orientation: Horizontal})

	pos := make(map[string]*Node)
	for _, n := range out {
		pos[n.ID] = n
	}
	if pos["kid1"].X <= pos["pa"].X {
		t.Errorf("horizontal: generations must advance along X, pa=%v kid1=%v",
			pos["pa"].X, pos["kid1"].X)
	}
	if pos["pa"].X != pos["ma"].X {
		t.Error("horizontal: spouses must share X")
	}
}

func TestAutoArrangeCycleTolerance(t *testing.T) {
	mk := func(id string) *Node {
		return &Node{ID: id, Kind: KindPerson, Persons: []*gen.Person{{ID: id}}}
	}
	nodes := []*Node{mk("a"), mk("b")}
	edges := []*Edge{
		{ID: "a->b", Source: "a", Target: "b", Kind: EdgeParentChild},
		{ID: "b->a", Source: "b", Target: "a", Kind: EdgeParentChild},
	}
	out := AutoArrange(nodes, edges, Options{})
	if len(out) != 2 {
		t.Fatalf("nodes = %d", len(out))
	}
}
