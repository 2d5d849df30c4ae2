package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/kinchain/internal/kinematics"
	"github.com/san-kum/kinchain/internal/playback"
	"github.com/san-kum/kinchain/internal/spatial"
)

// Cost scores one sampled pose; lower is better.
type Cost func(f playback.Frame) float64

// DistanceTo scores a pose by how far the tracked end is from target.
func DistanceTo(target spatial.Vec) Cost {
	return func(f playback.Frame) float64 {
		return f.End.Sub(target).Length()
	}
}

// Bounds is the axis-aligned box around every sampled end position.
type Bounds struct {
	Min, Max spatial.Vec
}

func (b Bounds) Size() spatial.Vec {
	return b.Max.Sub(b.Min)
}

type SearchResult struct {
	Best     []float64
	BestCost float64
	BestEnd  spatial.Vec
	Bounds   Bounds
	MaxReach float64
	MinReach float64
	Samples  int
	Skipped  int
	EndJoint string
}

// GridSearch walks a regular grid over the independently settable joints of
// a chain. Mimic-driven joints follow their parents.
type GridSearch struct {
	chain  *kinematics.Chain
	end    int
	joints []int
	ranges [][]float64
}

// NewGridSearch samples steps values per joint across its limits. Unlimited
// joints use the same defaults as a sweep.
func NewGridSearch(chain *kinematics.Chain, steps int) (*GridSearch, error) {
	if steps < 2 {
		return nil, fmt.Errorf("grid needs at least 2 steps per joint, got %d", steps)
	}
	g := &GridSearch{chain: chain, end: len(chain.Nodes()) - 1}
	if leaves := chain.Leaves(); len(leaves) > 0 {
		g.end = chain.IndexOf(leaves[len(leaves)-1])
	}

	for i, n := range chain.Movable() {
		if _, driven := n.MimicParent(); driven {
			continue
		}
		lo, hi := span(n)
		values := make([]float64, steps)
		for k := range values {
			values[k] = lo + (hi-lo)*float64(k)/float64(steps-1)
		}
		g.joints = append(g.joints, i)
		g.ranges = append(g.ranges, values)
	}
	return g, nil
}

func span(n kinematics.Node) (float64, float64) {
	if l := n.Limits(); l != nil {
		return l.Min, l.Max
	}
	if n.JointType().Kind == kinematics.Rotational {
		return -math.Pi, math.Pi
	}
	return -1, 1
}

// TrackJoint makes name the node whose position is scored.
func (g *GridSearch) TrackJoint(name string) error {
	n, err := g.chain.Find(name)
	if err != nil {
		return err
	}
	g.end = g.chain.IndexOf(n)
	return nil
}

// Size returns the number of grid points.
func (g *GridSearch) Size() int {
	size := 1
	for _, r := range g.ranges {
		size *= len(r)
	}
	return size
}

// Search evaluates every grid point and returns the one with the lowest
// cost. A nil cost only gathers workspace bounds. The chain is left at its
// starting positions; failing to restore them is reported as an error.
func (g *GridSearch) Search(ctx context.Context, cost Cost) (res *SearchResult, err error) {
	home := g.chain.JointPositions()
	defer func() {
		if rerr := g.chain.SetJointPositions(home); rerr != nil && err == nil {
			err = fmt.Errorf("restore positions: %w", rerr)
		}
		g.chain.UpdateTransforms()
	}()

	res = &SearchResult{
		BestCost: math.Inf(1),
		MinReach: math.Inf(1),
	}
	if g.end >= 0 {
		res.EndJoint = g.chain.Nodes()[g.end].Name()
	}

	q := make([]float64, len(home))
	copy(q, home)
	err = g.searchRecursive(ctx, 0, q, cost, res)
	if res.Samples == 0 {
		res.MinReach = 0
	}
	return res, err
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, q []float64, cost Cost, res *SearchResult) error {
	if depth == len(g.joints) {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.evaluate(q, cost, res)
		return nil
	}

	idx := g.joints[depth]
	for _, val := range g.ranges[depth] {
		q[idx] = val
		if err := g.searchRecursive(ctx, depth+1, q, cost, res); err != nil {
			return err
		}
	}
	return nil
}

func (g *GridSearch) evaluate(q []float64, cost Cost, res *SearchResult) {
	if err := g.chain.SetJointPositions(q); err != nil {
		res.Skipped++
		return
	}
	poses := g.chain.UpdateTransforms()
	f := playback.Frame{Positions: g.chain.JointPositions(), Poses: poses}
	if g.end >= 0 && g.end < len(poses) {
		f.End = poses[g.end].Translation()
	}

	if res.Samples == 0 {
		res.Bounds = Bounds{Min: f.End, Max: f.End}
	} else {
		res.Bounds.Min = res.Bounds.Min.Min(f.End)
		res.Bounds.Max = res.Bounds.Max.Max(f.End)
	}
	r := f.End.Length()
	res.MaxReach = math.Max(res.MaxReach, r)
	res.MinReach = math.Min(res.MinReach, r)
	res.Samples++

	if cost == nil {
		return
	}
	if c := cost(f); c < res.BestCost {
		res.BestCost = c
		res.BestEnd = f.End
		res.Best = f.Positions
	}
}
