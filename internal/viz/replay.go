package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/kinchain/internal/kinematics"
	"github.com/san-kum/kinchain/internal/playback"
)

type TickMsg time.Time

// Replay animates recorded playback frames at a fixed rate. Frames must carry
// poses index-aligned with chain.Nodes().
type Replay struct {
	chain    *kinematics.Chain
	name     string
	frames   []playback.Frame
	head     int
	running  bool
	loop     bool
	interval time.Duration
	extent   float64
	canvas   *Canvas
	cam      *Camera
	theme    Theme
	styles   Styles
	trail    []float64
}

func NewReplay(chain *kinematics.Chain, name string, frames []playback.Frame, fps float64, theme Theme) Replay {
	if fps <= 0 {
		fps = 30
	}
	m := Replay{
		chain:    chain,
		name:     name,
		frames:   frames,
		running:  true,
		loop:     true,
		interval: time.Duration(float64(time.Second) / fps),
		extent:   1,
		canvas:   NewCanvas(60, 20),
		cam:      NewCamera(),
		theme:    theme,
		styles:   NewStyles(theme),
	}
	for _, f := range frames {
		if e := ChainScene(chain, f.Poses).Extent(); e > m.extent {
			m.extent = e
		}
	}
	return m
}

func (m Replay) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Replay) Init() tea.Cmd {
	return m.tick()
}

// Head returns the index of the frame on screen.
func (m Replay) Head() int {
	return m.head
}

func (m Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.canvas = NewCanvas(max(20, msg.Width-50), max(8, msg.Height-6))
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "[", "left", "h":
			m.seek(-1)
		case "]", "right", "l":
			m.seek(1)
		case "r":
			m.head = 0
			m.trail = m.trail[:0]
		case "o":
			m.loop = !m.loop
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
		}
	case TickMsg:
		if m.running {
			m.seek(1)
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Replay) seek(delta int) {
	if len(m.frames) == 0 {
		return
	}
	next := m.head + delta
	switch {
	case next >= len(m.frames) && m.loop:
		next = 0
		m.trail = m.trail[:0]
	case next >= len(m.frames):
		next = len(m.frames) - 1
		m.running = false
	case next < 0:
		next = 0
	}
	m.head = next
	if delta > 0 {
		m.trail = append(m.trail, m.frames[next].End.Length())
		if len(m.trail) > reachCapacity {
			m.trail = m.trail[1:]
		}
	}
}

func (m Replay) View() string {
	st := m.styles
	if len(m.frames) == 0 {
		return st.Subtle.Render("no frames") + "\n"
	}
	f := m.frames[m.head]

	m.canvas.Clear()
	Render(m.canvas, ChainScene(m.chain, f.Poses), m.cam, m.extent)
	canvasView := st.Panel.Render(st.Title.Render(strings.ToUpper(m.name)) + "\n" + st.Value.Render(m.canvas.String()))

	var s strings.Builder
	state := "playing"
	if !m.running {
		state = "paused"
	}
	s.WriteString(st.Title.Render("PLAYBACK") + "\n")
	s.WriteString(st.Label.Render("t ") + st.Value.Render(fmt.Sprintf("%.3fs", f.Time)) +
		st.Subtle.Render(fmt.Sprintf("  %d/%d %s", m.head+1, len(m.frames), state)) + "\n\n")

	names := m.chain.JointNames()
	limits := m.chain.Limits()
	for i, q := range f.Positions {
		name := fmt.Sprintf("q%d", i)
		if i < len(names) {
			name = names[i]
		}
		var r *kinematics.Range
		if i < len(limits) {
			r = limits[i]
		}
		s.WriteString(st.Label.Render(fmt.Sprintf("%-14s %9.4f ", name, q)) + LimitBar(q, r, 12, st) + "\n")
	}

	s.WriteString("\n" + st.Title.Render("END") + "\n")
	s.WriteString(st.Value.Render(fmt.Sprintf("%.4f %.4f %.4f", f.End.X, f.End.Y, f.End.Z)) + "\n")
	s.WriteString(st.Label.Render("reach ") + Sparkline(m.trail, 30, st) + "\n")
	s.WriteString(st.KeyHint.Render("\nspace pause  [ ] step  r restart  o loop\nwasd orbit  +- zoom  t theme  q quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.Panel.Render(s.String()))
}
