package kinematics

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/rs/zerolog"
	"github.com/san-kum/kinchain/internal/spatial"
	"go.uber.org/multierr"
)

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithLogger attaches a logger; chains are silent by default.
func WithLogger(l zerolog.Logger) ChainOption {
	return func(c *Chain) {
		c.log = l
	}
}

// Chain fixes a depth-first traversal order over one or more subtrees and
// runs bulk operations in that order. The same order indexes the position
// vector of SetJointPositions (restricted to movable joints) and the pose
// vector of UpdateTransforms.
type Chain struct {
	tree      *Tree
	roots     []NodeID
	order     []NodeID
	movable   []NodeID
	structure uint64
	log       zerolog.Logger
}

// NewChain seals the subtrees below roots. All roots must share one Tree;
// nodes reachable from more than one root are visited once.
func NewChain(roots []Node, opts ...ChainOption) *Chain {
	c := &Chain{
		roots: make([]NodeID, 0, len(roots)),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, r := range roots {
		if !r.IsValid() {
			continue
		}
		if c.tree == nil {
			c.tree = r.tree
		}
		if r.tree != c.tree {
			c.log.Warn().Str("joint", r.Name()).Msg("root from a different tree ignored")
			continue
		}
		c.roots = append(c.roots, r.id)
	}
	c.Rebuild()
	return c
}

// FromRoot builds a chain over the subtree below root.
func FromRoot(root Node, opts ...ChainOption) *Chain {
	return NewChain([]Node{root}, opts...)
}

// Rebuild recomputes the traversal order. Call it after SetParent or Detach
// on any node of the chain.
func (c *Chain) Rebuild() {
	c.order = c.order[:0]
	c.movable = c.movable[:0]
	if c.tree == nil {
		return
	}
	seen := make(map[NodeID]bool, c.tree.Len())
	var visit func(id NodeID)
	visit = func(id NodeID) {
		if seen[id] {
			return
		}
		seen[id] = true
		c.order = append(c.order, id)
		n := c.tree.get(id)
		if n.joint.HasPosition() {
			c.movable = append(c.movable, id)
		}
		for _, child := range n.children {
			visit(child)
		}
	}
	for _, r := range c.topRoots() {
		visit(r)
	}
	c.structure = c.tree.structure
	c.log.Debug().Int("nodes", len(c.order)).Int("dof", len(c.movable)).Msg("traversal order built")
}

// topRoots returns the roots that have no ancestor among the other roots, in
// the order given. A root below another root is reached from that ancestor,
// after its structural parent.
func (c *Chain) topRoots() []NodeID {
	isRoot := make(map[NodeID]bool, len(c.roots))
	for _, r := range c.roots {
		isRoot[r] = true
	}
	out := make([]NodeID, 0, len(c.roots))
	for _, r := range c.roots {
		covered := false
		for p := c.tree.get(r).parent; p != NoNode; p = c.tree.get(p).parent {
			if isRoot[p] {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, r)
		}
	}
	return out
}

// Stale reports whether the tree was restructured since the last Rebuild.
func (c *Chain) Stale() bool {
	return c.tree != nil && c.tree.structure != c.structure
}

func (c *Chain) Tree() *Tree {
	return c.tree
}

// Len returns the number of nodes in traversal order.
func (c *Chain) Len() int {
	return len(c.order)
}

// Dof returns the number of movable joints.
func (c *Chain) Dof() int {
	return len(c.movable)
}

// Nodes returns every node in traversal order.
func (c *Chain) Nodes() []Node {
	return c.handles(c.order)
}

// Movable returns the movable nodes in traversal order.
func (c *Chain) Movable() []Node {
	return c.handles(c.movable)
}

// Roots returns the chain roots.
func (c *Chain) Roots() []Node {
	return c.handles(c.roots)
}

// Leaves returns nodes without children, in traversal order.
func (c *Chain) Leaves() []Node {
	out := make([]Node, 0)
	for _, id := range c.order {
		if len(c.tree.get(id).children) == 0 {
			out = append(out, Node{tree: c.tree, id: id})
		}
	}
	return out
}

func (c *Chain) handles(ids []NodeID) []Node {
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = Node{tree: c.tree, id: id}
	}
	return out
}

// JointNames returns the names of the movable joints in vector order.
func (c *Chain) JointNames() []string {
	names := make([]string, len(c.movable))
	for i, id := range c.movable {
		names[i] = c.tree.get(id).joint.Name
	}
	return names
}

// JointPositions returns the current movable joint positions in vector order.
func (c *Chain) JointPositions() []float64 {
	out := make([]float64, len(c.movable))
	for i, id := range c.movable {
		out[i], _ = c.tree.get(id).joint.Position()
	}
	return out
}

// Limits returns the limits of the movable joints; nil entries are unlimited.
func (c *Chain) Limits() []*Range {
	out := make([]*Range, len(c.movable))
	for i, id := range c.movable {
		out[i] = Node{tree: c.tree, id: id}.Limits()
	}
	return out
}

// SetJointPositions assigns values to the movable joints in traversal order.
// A length mismatch is reported before anything is written. Otherwise the
// first failing joint stops the assignment; earlier joints keep their values.
func (c *Chain) SetJointPositions(values []float64) error {
	if len(values) != len(c.movable) {
		return &LengthMismatchError{Want: len(c.movable), Got: len(values)}
	}
	for i, id := range c.movable {
		if err := (Node{tree: c.tree, id: id}).SetPosition(values[i]); err != nil {
			c.log.Debug().Err(err).Int("index", i).Msg("set joint positions stopped")
			return err
		}
	}
	return nil
}

// SetJointPositionsClamped clamps each value into its joint's limits before
// assigning.
func (c *Chain) SetJointPositionsClamped(values []float64) error {
	if len(values) != len(c.movable) {
		return &LengthMismatchError{Want: len(c.movable), Got: len(values)}
	}
	clamped := make([]float64, len(values))
	for i, id := range c.movable {
		clamped[i] = values[i]
		if l := c.tree.get(id).joint.Limits; l != nil {
			clamped[i] = l.Clamp(values[i])
		}
	}
	return c.SetJointPositions(clamped)
}

// UpdateTransforms recomputes the world pose of every node in traversal
// order, stores it in the node cache and returns the poses index-aligned with
// Nodes(). A root whose structural parent lies outside the chain starts from
// that parent's cached pose, or identity when none is cached.
func (c *Chain) UpdateTransforms() []spatial.Transform {
	poses := make([]spatial.Transform, len(c.order))
	for i, id := range c.order {
		n := Node{tree: c.tree, id: id}
		parent, ok := n.ParentWorldTransform()
		if !ok {
			parent = spatial.Identity()
		}
		world := parent.Mul(n.LocalTransform())
		n.setWorld(world)
		poses[i] = world
	}
	return poses
}

// IndexOf returns the traversal index of n, or -1 when n is not in the chain.
func (c *Chain) IndexOf(n Node) int {
	if n.tree != c.tree {
		return -1
	}
	for i, id := range c.order {
		if id == n.id {
			return i
		}
	}
	return -1
}

// Find returns the node named name. Unknown names report the closest match.
func (c *Chain) Find(name string) (Node, error) {
	best, bestDist := "", -1
	for _, id := range c.order {
		jn := c.tree.get(id).joint.Name
		if jn == name {
			return Node{tree: c.tree, id: id}, nil
		}
		d := levenshtein.ComputeDistance(name, jn)
		if bestDist < 0 || d < bestDist {
			best, bestDist = jn, d
		}
	}
	if bestDist > len(name)/2+1 {
		best = ""
	}
	return Node{}, &NotFoundError{Name: name, Suggestion: best}
}

// Validate reports every structural problem found in the chain.
func (c *Chain) Validate() error {
	var errs error
	if c.Stale() {
		errs = multierr.Append(errs, fmt.Errorf("traversal order is stale: %w", ErrInvalidRelation))
	}
	names := make(map[string]bool, len(c.order))
	for _, id := range c.order {
		n := c.tree.get(id)
		if err := n.joint.Type().Validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("joint %q: %w", n.joint.Name, err))
		}
		if names[n.joint.Name] {
			errs = multierr.Append(errs, fmt.Errorf("duplicate joint name %q", n.joint.Name))
		}
		names[n.joint.Name] = true
		if n.mimicParent != NoNode && !c.hasMimicEdge(n.mimicParent, id) {
			p := c.tree.get(n.mimicParent)
			errs = multierr.Append(errs, &MimicError{From: p.joint.Name, To: n.joint.Name, Message: "reverse entry missing"})
		}
		for _, e := range n.mimicChildren {
			child := c.tree.get(e.child)
			if e.mimic == nil {
				errs = multierr.Append(errs, &MimicError{From: n.joint.Name, To: child.joint.Name, Message: "mimic record not found"})
			} else if child.mimicParent != id {
				errs = multierr.Append(errs, &MimicError{From: n.joint.Name, To: child.joint.Name, Message: "child follows another joint"})
			}
		}
	}
	return errs
}

func (c *Chain) hasMimicEdge(parent, child NodeID) bool {
	for _, e := range c.tree.get(parent).mimicChildren {
		if e.child == child {
			return true
		}
	}
	return false
}

// String renders the chain as an indented tree.
func (c *Chain) String() string {
	var b strings.Builder
	var walk func(id NodeID, depth int)
	walk = func(id NodeID, depth int) {
		n := c.tree.get(id)
		b.WriteString(strings.Repeat("    ", depth))
		b.WriteString(n.joint.String())
		if n.mimicParent != NoNode {
			fmt.Fprintf(&b, " (mimics %s)", c.tree.get(n.mimicParent).joint.Name)
		}
		b.WriteString("\n")
		for _, ch := range n.children {
			walk(ch, depth+1)
		}
	}
	for _, r := range c.roots {
		walk(r, 0)
	}
	return b.String()
}
