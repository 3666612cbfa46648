// Package layout maps persons and families to 2D node positions and
// connecting edges for an arbitrary downstream renderer.
//
// # Strategies
//
// Two strategies are provided:
//   - [Layout]: the primary recursive algorithm. Starting from a root
//     person it walks descendants post-order so parents center over their
//     children, then walks ancestors upward, then grids everything
//     unreachable from the root.
//   - [AutoArrange]: a layered re-arrangement over an already-produced
//     graph. It ranks nodes into generations, reduces edge crossings and
//     reassigns coordinates, leaving IDs and edges untouched.
//
// # Determinism
//
// For a fixed input entity set, root, orientation and density the output
// is exactly reproducible: every traversal follows input slice order and
// no step iterates over a map where order affects the result. Layout is
// pure; it performs no I/O and is safe to call repeatedly.
package layout

import (
	"github.com/charmbracelet/log"

	"github.com/kintreehq/kintree/pkg/gen"
)

// Orientation selects the axis along which generations advance.
type Orientation string

// Supported orientations. Switching orientation is a full re-layout, not
// an axis flip: lateral spacing and generation spacing swap roles.
const (
	Vertical   Orientation = "vertical"
	Horizontal Orientation = "horizontal"
)

// Density selects a spacing profile. It changes spacing constants only,
// never topology.
type Density string

// Supported density profiles.
const (
	Desktop Density = "desktop"
	Compact Density = "compact"
)

// NodeKind distinguishes individual nodes from compound couple nodes.
type NodeKind string

// Node kinds.
const (
	KindPerson NodeKind = "person"
	KindCouple NodeKind = "couple"
)

// EdgeKind is the relationship an edge represents. Kind is part of the
// layout contract so renderers can style by relationship; the styling
// itself is not.
type EdgeKind string

// Edge kinds.
const (
	EdgeSpouse      EdgeKind = "spouse"
	EdgeParentChild EdgeKind = "parent-child"
)

// Node is one positioned layout unit: a single person, or two spouses
// compacted into a couple.
type Node struct {
	ID      string        `json:"id"`
	Kind    NodeKind      `json:"kind"`
	X       float64       `json:"x"`
	Y       float64       `json:"y"`
	Persons []*gen.Person `json:"persons"`
	IsRoot  bool          `json:"isRoot,omitempty"`
	Compact bool          `json:"compact,omitempty"`
}

// Edge connects two nodes by their IDs.
type Edge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"kind"`
}

// Graph is the layout output consumed by renderers.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// Options configures a layout run.
type Options struct {
	// RootID selects the focal person. When empty the first person in the
	// input set is used; with no persons at all the layout is empty.
	RootID string

	// Orientation defaults to Vertical.
	Orientation Orientation

	// Density defaults to Desktop.
	Density Density

	// CoupleCompaction renders a two-spouse family with at least one child
	// as a single compound node instead of two nodes plus a spouse edge.
	CoupleCompaction bool

	// Logger receives diagnostic output. Nil discards it.
	Logger *log.Logger
}

// spacing holds the pixel constants for one density profile. All layout
// units share the same width and height budget, couple nodes included.
type spacing struct {
	NodeW, NodeH  float64
	SpouseGap     float64
	SiblingGap    float64
	GenerationGap float64
}

func (o Options) spacing() spacing {
	if o.Density == Compact {
		return spacing{NodeW: 140, NodeH: 72, SpouseGap: 24, SiblingGap: 24, GenerationGap: 56}
	}
	return spacing{NodeW: 180, NodeH: 90, SpouseGap: 40, SiblingGap: 40, GenerationGap: 80}
}

// coords maps (lateral, generation-depth) placements to final X/Y under
// the chosen orientation. Depth units are generations; lateral units are
// already pixels.
func (o Options) coords(lat float64, depth int, sp spacing) (x, y float64) {
	if o.Orientation == Horizontal {
		return float64(depth) * (sp.NodeW + sp.GenerationGap), lat
	}
	return lat, float64(depth) * (sp.NodeH + sp.GenerationGap)
}

// coupleID returns the canonical compound-node ID for an unordered spouse
// pair. Stable across slot order, distinct from any person ID.
func coupleID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return "couple:" + a + ":" + b
}

// edgeID keys an edge by its ordered endpoint pair.
func edgeID(source, target string) string {
	return source + "->" + target
}
