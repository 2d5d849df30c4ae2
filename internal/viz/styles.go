package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/kinchain/internal/kinematics"
)

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Selected lipgloss.Style
	Subtle   lipgloss.Style
	KeyHint  lipgloss.Style
	Panel    lipgloss.Style
	OK       lipgloss.Style
	Warn     lipgloss.Style
	Err      lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Muted),
		Label: lipgloss.NewStyle().
			Foreground(t.Muted),
		Value: lipgloss.NewStyle().
			Foreground(t.Text),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Secondary),
		Subtle: lipgloss.NewStyle().
			Foreground(t.Muted),
		KeyHint: lipgloss.NewStyle().
			Foreground(t.Muted).
			Italic(true),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
		OK:   lipgloss.NewStyle().Foreground(t.Success),
		Warn: lipgloss.NewStyle().Foreground(t.Warning),
		Err:  lipgloss.NewStyle().Bold(true).Foreground(t.Error),
	}
}

// LimitBar shows where q sits inside r. The marker turns to the warning
// color within 10% of either bound. A nil range renders as unlimited.
func LimitBar(q float64, r *kinematics.Range, width int, st Styles) string {
	if width < 3 {
		width = 3
	}
	if r == nil || r.Span() <= 0 {
		return st.Subtle.Render(strings.Repeat("·", width))
	}

	frac := (q - r.Min) / r.Span()
	frac = math.Max(0, math.Min(1, frac))
	pos := int(math.Round(frac * float64(width-1)))

	marker := st.OK.Render("█")
	if frac < 0.1 || frac > 0.9 {
		marker = st.Warn.Render("█")
	}
	return st.Subtle.Render(strings.Repeat("─", pos)) + marker + st.Subtle.Render(strings.Repeat("─", width-1-pos))
}

// Sparkline renders the last width values as a one-line bar chart.
func Sparkline(values []float64, width int, st Styles) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	start := 0
	if len(values) > width {
		start = len(values) - width
	}

	var b strings.Builder
	for _, v := range values[start:] {
		idx := int((v - lo) / rng * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		b.WriteRune(chars[idx])
	}
	return st.Value.Render(b.String())
}
