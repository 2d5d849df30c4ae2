package metrics

import (
	"github.com/san-kum/kinchain/internal/playback"
	"github.com/san-kum/kinchain/internal/spatial"
)

// PathLength sums the distance travelled by the tracked end node.
type PathLength struct {
	name   string
	total  float64
	last   spatial.Vec
	primed bool
}

func NewPathLength() *PathLength {
	return &PathLength{name: "path_length"}
}

func (p *PathLength) Name() string {
	return p.name
}

func (p *PathLength) Observe(f playback.Frame) {
	if p.primed {
		p.total += f.End.Sub(p.last).Length()
	}
	p.last = f.End
	p.primed = true
}

func (p *PathLength) Value() float64 {
	return p.total
}

func (p *PathLength) Reset() {
	p.total = 0
	p.last = spatial.Zero
	p.primed = false
}

// MaxReach is the largest distance of the end node from the world origin.
type MaxReach struct {
	name string
	max  float64
}

func NewMaxReach() *MaxReach {
	return &MaxReach{name: "max_reach"}
}

func (m *MaxReach) Name() string { return m.name }

func (m *MaxReach) Observe(f playback.Frame) {
	if d := f.End.Length(); d > m.max {
		m.max = d
	}
}

func (m *MaxReach) Value() float64 { return m.max }

func (m *MaxReach) Reset() { m.max = 0 }
