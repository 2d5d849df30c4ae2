package viz

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/kinchain/internal/kinematics"
	"github.com/san-kum/kinchain/internal/spatial"
)

const (
	reachCapacity = 120
	defaultAngle  = 5 * math.Pi / 180
	defaultLinear = 0.01
)

// Jog is an interactive bubbletea model for moving one joint at a time and
// watching the chain respond.
type Jog struct {
	chain    *kinematics.Chain
	name     string
	movable  []kinematics.Node
	home     []float64
	selected int
	// scale multiplies the per-key step of every joint.
	scale    float64
	poses    []spatial.Transform
	extent   float64
	canvas   *Canvas
	cam      *Camera
	theme    Theme
	styles   Styles
	reach    []float64
	status   string
	failed   bool
	width    int
	height   int
	showHelp bool
}

// NewJog builds a jog model over chain. The chain's current positions become
// the home pose.
func NewJog(chain *kinematics.Chain, name string, theme Theme) Jog {
	m := Jog{
		chain:   chain,
		name:    name,
		movable: chain.Movable(),
		home:    chain.JointPositions(),
		scale:   1,
		canvas:  NewCanvas(60, 20),
		cam:     NewCamera(),
		theme:   theme,
		styles:  NewStyles(theme),
		width:   120,
		height:  30,
	}
	m.refresh()
	m.extent = ChainScene(chain, m.poses).Extent()
	return m
}

func (m Jog) Init() tea.Cmd { return nil }

func (m Jog) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		cw := max(20, msg.Width-60)
		ch := max(8, msg.Height-6)
		m.canvas = NewCanvas(cw, ch)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.movable)-1 {
				m.selected++
			}
		case "right", "l":
			m.jog(1)
		case "left", "h":
			m.jog(-1)
		case "]":
			m.scale = math.Min(m.scale*2, 64)
		case "[":
			m.scale = math.Max(m.scale/2, 1.0/64)
		case "r":
			m.resetHome()
		case "a":
			m.cam.Orbit(-0.1, 0)
		case "d":
			m.cam.Orbit(0.1, 0)
		case "w":
			m.cam.Orbit(0, 0.1)
		case "s":
			m.cam.Orbit(0, -0.1)
		case "+", "=":
			m.cam.ZoomIn()
		case "-", "_":
			m.cam.ZoomOut()
		case "t":
			m.theme = NextTheme(m.theme)
			m.styles = NewStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	}
	return m, nil
}

// Selected returns the node being jogged.
func (m Jog) Selected() (kinematics.Node, bool) {
	if m.selected < 0 || m.selected >= len(m.movable) {
		return kinematics.Node{}, false
	}
	return m.movable[m.selected], true
}

func (m Jog) step(n kinematics.Node) float64 {
	if n.JointType().Kind == kinematics.Rotational {
		return defaultAngle * m.scale
	}
	return defaultLinear * m.scale
}

func (m *Jog) jog(dir float64) {
	n, ok := m.Selected()
	if !ok {
		return
	}
	if p, ok := n.MimicParent(); ok {
		m.setStatus(fmt.Sprintf("%s is driven by %s", n.Name(), p.Name()), true)
		return
	}
	q, _ := n.Position()
	target := q + dir*m.step(n)
	if l := n.Limits(); l != nil {
		target = l.Clamp(target)
	}
	if err := n.SetPosition(target); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("%s = %.4f", n.Name(), target), false)
	m.refresh()
}

func (m *Jog) resetHome() {
	if err := m.chain.SetJointPositions(m.home); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.reach = m.reach[:0]
	m.setStatus("home", false)
	m.refresh()
}

func (m *Jog) setStatus(s string, failed bool) {
	m.status, m.failed = s, failed
}

func (m *Jog) refresh() {
	m.poses = m.chain.UpdateTransforms()
	if len(m.poses) == 0 {
		return
	}
	m.reach = append(m.reach, m.poses[len(m.poses)-1].Translation().Length())
	if len(m.reach) > reachCapacity {
		m.reach = m.reach[1:]
	}
}

func (m Jog) View() string {
	st := m.styles

	m.canvas.Clear()
	Render(m.canvas, ChainScene(m.chain, m.poses), m.cam, m.extent)
	canvasView := st.Panel.Render(st.Title.Render(strings.ToUpper(m.name)) + "\n" + st.Value.Render(m.canvas.String()))

	var s strings.Builder
	s.WriteString(st.Title.Render("JOINTS") + "\n")
	for i, n := range m.movable {
		q, _ := n.Position()
		line := fmt.Sprintf("%-14s %9.4f ", n.Name(), q)
		bar := LimitBar(q, n.Limits(), 12, st)
		if _, ok := n.MimicParent(); ok {
			line = fmt.Sprintf("%-14s %9.4f*", n.Name(), q)
		}
		if i == m.selected {
			s.WriteString(st.Selected.Render("> "+line) + bar + "\n")
		} else {
			s.WriteString("  " + st.Label.Render(line) + bar + "\n")
		}
	}
	if len(m.movable) == 0 {
		s.WriteString(st.Subtle.Render("  (no movable joints)") + "\n")
	}

	s.WriteString("\n" + st.Title.Render("END") + "\n")
	if len(m.poses) > 0 {
		end := m.poses[len(m.poses)-1]
		p := end.Translation()
		r, pi, y := end.RPY()
		s.WriteString(st.Label.Render("xyz ") + st.Value.Render(fmt.Sprintf("%.4f %.4f %.4f", p.X, p.Y, p.Z)) + "\n")
		s.WriteString(st.Label.Render("rpy ") + st.Value.Render(fmt.Sprintf("%.1f %.1f %.1f", deg(r), deg(pi), deg(y))) + "\n")
		s.WriteString(st.Label.Render("reach ") + Sparkline(m.reach, 30, st) + "\n")
	}

	s.WriteString("\n" + st.Label.Render(fmt.Sprintf("step x%g", m.scale)) + "\n")
	if m.status != "" {
		if m.failed {
			s.WriteString(st.Err.Render(m.status) + "\n")
		} else {
			s.WriteString(st.OK.Render(m.status) + "\n")
		}
	}
	s.WriteString(st.KeyHint.Render("\n↑↓ select  ←→ jog  [ ] step  r home\nwasd orbit  +- zoom  t theme  ? help  q quit"))

	panel := st.Panel.Render(s.String())
	view := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panel)
	if m.showHelp {
		view += "\n" + st.Subtle.Render(m.chain.String())
	}
	return view
}
