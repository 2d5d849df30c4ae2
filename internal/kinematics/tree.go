package kinematics

import (
	"fmt"

	"github.com/san-kum/kinchain/internal/spatial"
)

// NodeID is the stable index of a node inside its Tree.
type NodeID int

// NoNode marks an absent parent or mimic parent.
const NoNode NodeID = -1

type mimicEdge struct {
	child NodeID
	mimic *Mimic
}

type node struct {
	joint         *Joint
	parent        NodeID
	children      []NodeID
	mimicParent   NodeID
	mimicChildren []mimicEdge
	world         spatial.Transform
	hasWorld      bool
}

// Tree is the arena that owns every node of one or more kinematic trees.
// Nodes are addressed by NodeID and never removed; Node handles are cheap
// views into the arena, so every handle observes the same state.
//
// A Tree is not safe for concurrent use.
type Tree struct {
	nodes []*node
	// structure increments on every parent change so chains can detect a
	// stale traversal order.
	structure uint64
}

func NewTree() *Tree {
	return &Tree{nodes: make([]*node, 0)}
}

// Add takes ownership of j and returns its handle. The node starts as a root.
func (t *Tree) Add(j *Joint) Node {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, &node{
		joint:       j,
		parent:      NoNode,
		mimicParent: NoNode,
	})
	t.structure++
	return Node{tree: t, id: id}
}

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the handle for id.
func (t *Tree) Node(id NodeID) (Node, bool) {
	if id < 0 || int(id) >= len(t.nodes) {
		return Node{}, false
	}
	return Node{tree: t, id: id}, true
}

// Roots returns every node without a structural parent, in insertion order.
func (t *Tree) Roots() []Node {
	roots := make([]Node, 0)
	for i, n := range t.nodes {
		if n.parent == NoNode {
			roots = append(roots, Node{tree: t, id: NodeID(i)})
		}
	}
	return roots
}

// Chain seals every root of the tree into a Chain.
func (t *Tree) Chain(opts ...ChainOption) *Chain {
	return NewChain(t.Roots(), opts...)
}

func (t *Tree) get(id NodeID) *node {
	return t.nodes[id]
}

// Node is a handle to one joint in a Tree.
type Node struct {
	tree *Tree
	id   NodeID
}

func (n Node) ID() NodeID {
	return n.id
}

func (n Node) Tree() *Tree {
	return n.tree
}

// IsValid reports whether the handle refers to a node.
func (n Node) IsValid() bool {
	return n.tree != nil && n.id >= 0 && int(n.id) < len(n.tree.nodes)
}

func (n Node) data() *node {
	return n.tree.get(n.id)
}

// Joint exposes the underlying joint. Setting its position directly bypasses
// mimic handling.
func (n Node) Joint() *Joint {
	return n.data().joint
}

func (n Node) Name() string {
	return n.data().joint.Name
}

func (n Node) JointType() JointType {
	return n.data().joint.Type()
}

// Limits returns a copy of the joint limits, or nil when unconstrained.
func (n Node) Limits() *Range {
	l := n.data().joint.Limits
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

func (n Node) HasPosition() bool {
	return n.data().joint.HasPosition()
}

func (n Node) Position() (float64, bool) {
	return n.data().joint.Position()
}

func (n Node) SetOffset(t spatial.Transform) {
	n.data().joint.SetOffset(t)
}

func (n Node) LocalTransform() spatial.Transform {
	return n.data().joint.LocalTransform()
}

// WorldTransform returns the pose cached by the last Chain.UpdateTransforms.
// It never recomputes.
func (n Node) WorldTransform() (spatial.Transform, bool) {
	d := n.data()
	return d.world, d.hasWorld
}

// ParentWorldTransform returns the parent's cached world pose, or identity
// for a root. ok is false when the parent has not been computed yet.
func (n Node) ParentWorldTransform() (spatial.Transform, bool) {
	d := n.data()
	if d.parent == NoNode {
		return spatial.Identity(), true
	}
	p := n.tree.get(d.parent)
	return p.world, p.hasWorld
}

func (n Node) setWorld(t spatial.Transform) {
	d := n.data()
	d.world = t
	d.hasWorld = true
}

// SetPosition sets the joint position and writes the derived position of
// every joint that mimics this one.
//
// A node that mimics another is driven only by its mimic parent: calling
// SetPosition on it succeeds without changing anything. Mimic children are
// written in list order and are not rolled back if a later one fails.
func (n Node) SetPosition(q float64) error {
	d := n.data()
	if d.mimicParent != NoNode {
		return nil
	}
	if err := d.joint.SetPosition(q); err != nil {
		return err
	}
	for _, edge := range d.mimicChildren {
		child := n.tree.get(edge.child)
		if edge.mimic == nil {
			return &MimicError{
				From:    d.joint.Name,
				To:      child.joint.Name,
				Message: fmt.Sprintf("set_position for %s -> %s failed, mimic record not found", d.joint.Name, child.joint.Name),
			}
		}
		if err := child.joint.SetPosition(edge.mimic.MimicPosition(q)); err != nil {
			return err
		}
	}
	return nil
}

// Parent returns the structural parent.
func (n Node) Parent() (Node, bool) {
	p := n.data().parent
	if p == NoNode {
		return Node{}, false
	}
	return Node{tree: n.tree, id: p}, true
}

// Children returns the structural children in stored order.
func (n Node) Children() []Node {
	ids := n.data().children
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = Node{tree: n.tree, id: id}
	}
	return out
}

// SetParent makes n a structural child of parent, detaching it from any
// previous parent. Chains built before the call must be rebuilt.
func (n Node) SetParent(parent Node) error {
	if err := n.sameTree(parent); err != nil {
		return err
	}
	if parent.id == n.id {
		return fmt.Errorf("%s parented to itself: %w", n.Name(), ErrInvalidRelation)
	}
	for cur := parent.id; cur != NoNode; cur = n.tree.get(cur).parent {
		if cur == n.id {
			return fmt.Errorf("%s parented to descendant %s: %w", n.Name(), parent.Name(), ErrInvalidRelation)
		}
	}
	n.detach()
	d := n.data()
	d.parent = parent.id
	p := parent.data()
	p.children = append(p.children, n.id)
	n.tree.structure++
	return nil
}

// Detach turns n into a root.
func (n Node) Detach() {
	if n.data().parent == NoNode {
		return
	}
	n.detach()
	n.tree.structure++
}

func (n Node) detach() {
	d := n.data()
	if d.parent == NoNode {
		return
	}
	p := n.tree.get(d.parent)
	for i, c := range p.children {
		if c == n.id {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	d.parent = NoNode
}

// MimicParent returns the joint driving this one, if any.
func (n Node) MimicParent() (Node, bool) {
	p := n.data().mimicParent
	if p == NoNode {
		return Node{}, false
	}
	return Node{tree: n.tree, id: p}, true
}

// MimicChild is one dependent joint and the relation applied to it.
type MimicChild struct {
	Node  Node
	Mimic Mimic
}

// MimicChildren returns the joints mimicking n, in the order they are driven.
func (n Node) MimicChildren() []MimicChild {
	edges := n.data().mimicChildren
	out := make([]MimicChild, 0, len(edges))
	for _, e := range edges {
		mc := MimicChild{Node: Node{tree: n.tree, id: e.child}}
		if e.mimic != nil {
			mc.Mimic = *e.mimic
		}
		out = append(out, mc)
	}
	return out
}

// SetMimicParent makes n follow parent through m. Both directions of the
// relation are recorded; an existing mimic parent is replaced and its reverse
// entry removed.
func (n Node) SetMimicParent(parent Node, m Mimic) error {
	if err := n.sameTree(parent); err != nil {
		return err
	}
	if parent.id == n.id {
		return fmt.Errorf("%s mimics itself: %w", n.Name(), ErrInvalidRelation)
	}
	for cur := parent.id; cur != NoNode; cur = n.tree.get(cur).mimicParent {
		if cur == n.id {
			return fmt.Errorf("%s mimic loop through %s: %w", n.Name(), parent.Name(), ErrInvalidRelation)
		}
	}
	n.ClearMimicParent()
	rec := m
	n.data().mimicParent = parent.id
	p := parent.data()
	p.mimicChildren = append(p.mimicChildren, mimicEdge{child: n.id, mimic: &rec})
	return nil
}

// ClearMimicParent removes the mimic relation on both sides.
func (n Node) ClearMimicParent() {
	d := n.data()
	if d.mimicParent == NoNode {
		return
	}
	p := n.tree.get(d.mimicParent)
	for i, e := range p.mimicChildren {
		if e.child == n.id {
			p.mimicChildren = append(p.mimicChildren[:i], p.mimicChildren[i+1:]...)
			break
		}
	}
	d.mimicParent = NoNode
}

func (n Node) sameTree(other Node) error {
	if !other.IsValid() {
		return fmt.Errorf("%s linked to an invalid node: %w", n.Name(), ErrInvalidRelation)
	}
	if other.tree != n.tree {
		return fmt.Errorf("%s and %s belong to different trees: %w", n.Name(), other.Name(), ErrInvalidRelation)
	}
	return nil
}

func (n Node) String() string {
	return n.data().joint.String()
}
