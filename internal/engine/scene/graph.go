package scene

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Faultbox/pbr-viewer/internal/engine/gpu"
)

// NodeID addresses a node in a Graph. IDs stay valid for the graph's
// lifetime.
type NodeID int

// NoParent marks a root node.
const NoParent NodeID = -1

var (
	// ErrUnknownNode is returned for an ID the graph did not issue.
	ErrUnknownNode = errors.New("unknown node")
	// ErrNilNode is returned when adding a nil node.
	ErrNilNode = errors.New("nil node")
)

type graphEntry struct {
	node     *Node
	parent   NodeID
	children []NodeID
}

// Graph owns the scene's nodes. Insertion order is draw order.
//
// Parent links are bookkeeping only: a child's world transform does not
// include its parent's transform.
type Graph struct {
	entries []graphEntry
}

// Add appends n under parent, or as a root when parent is NoParent.
func (g *Graph) Add(n *Node, parent NodeID) (NodeID, error) {
	if n == nil {
		return NoParent, ErrNilNode
	}
	if parent != NoParent && !g.valid(parent) {
		return NoParent, fmt.Errorf("parent %d: %w", parent, ErrUnknownNode)
	}
	id := NodeID(len(g.entries))
	g.entries = append(g.entries, graphEntry{node: n, parent: parent})
	if parent != NoParent {
		g.entries[parent].children = append(g.entries[parent].children, id)
	}
	return id, nil
}

func (g *Graph) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(g.entries)
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id NodeID) *Node {
	if !g.valid(id) {
		return nil
	}
	return g.entries[id].node
}

// Parent returns the parent of id. ok is false for roots and unknown IDs.
func (g *Graph) Parent(id NodeID) (parent NodeID, ok bool) {
	if !g.valid(id) || g.entries[id].parent == NoParent {
		return NoParent, false
	}
	return g.entries[id].parent, true
}

// Children returns a copy of the children of id in insertion order.
func (g *Graph) Children(id NodeID) []NodeID {
	if !g.valid(id) {
		return nil
	}
	return slices.Clone(g.entries[id].children)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.entries)
}

// Each calls fn for every node in insertion order.
func (g *Graph) Each(fn func(NodeID, *Node)) {
	for i, e := range g.entries {
		fn(NodeID(i), e.node)
	}
}

// SubmeshCount returns the total submesh count, which is also the number
// of draw calls per frame.
func (g *Graph) SubmeshCount() int {
	total := 0
	for _, e := range g.entries {
		total += e.node.SubmeshCount()
	}
	return total
}

// Release releases every node and empties the graph.
func (g *Graph) Release(dev gpu.Device) {
	for _, e := range g.entries {
		e.node.Release(dev)
	}
	g.entries = nil
}
