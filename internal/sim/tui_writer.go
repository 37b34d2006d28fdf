// Terminal dashboard rendering the live grid with bubbletea
package sim

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"

	"rescuesim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// snapshotMsg carries the per-tick world snapshot.
type snapshotMsg struct{ Snapshot }

// eventLineMsg carries a formatted mission event for the log viewport.
type eventLineMsg struct{ line string }

const eventLogHeight = 6

// TUIWriter renders the simulation using a bubbletea TUI. It consumes
// snapshots for the grid view and mission events for the scrolling log.
type TUIWriter struct {
	program teaProgram
	done    chan struct{}
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter() *TUIWriter {
	m := newTUIModel()
	p := tea.NewProgram(m, tea.WithAltScreen())
	w := &TUIWriter{program: p, done: make(chan struct{})}
	go func() {
		_, _ = p.Run()
		close(w.done)
	}()
	return w
}

// Done is closed when the user quits the TUI.
func (w *TUIWriter) Done() <-chan struct{} {
	return w.done
}

// WriteSnapshot implements SnapshotWriter.
func (w *TUIWriter) WriteSnapshot(snap Snapshot) error {
	w.program.Send(snapshotMsg{snap})
	return nil
}

// WriteEvent implements EventWriter.
func (w *TUIWriter) WriteEvent(e telemetry.EventRow) error {
	line := fmt.Sprintf("[%4d] %-8s drone=%s victim=%s", e.Tick, e.EventType, e.DroneID, e.VictimID)
	w.program.Send(eventLineMsg{line: line})
	return nil
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5fafff"))
	statsStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#aaaaaa"))
	obstacleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	hubStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5f87ff"))
	rescuedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5f87ff"))
	lostStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
	emptyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#303030"))
)

type tuiModel struct {
	snap    Snapshot
	drones  table.Model
	events  viewport.Model
	lines   []string
	width   int
	height  int
	hasSnap bool
}

func newTUIModel() tuiModel {
	cols := []table.Column{
		{Title: "Drone", Width: 10},
		{Title: "Pos", Width: 9},
		{Title: "Battery", Width: 8},
		{Title: "State", Width: 9},
		{Title: "Carrying", Width: 10},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(8))
	vp := viewport.New(80, eventLogHeight)

	w, h := 80, 24
	if tw, th, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		w, h = tw, th
	}
	return tuiModel{drones: t, events: vp, width: w, height: h}
}

func (m tuiModel) Init() tea.Cmd {
	return nil
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.events.Width = msg.Width
	case snapshotMsg:
		m.snap = msg.Snapshot
		m.hasSnap = true
		rows := make([]table.Row, 0, len(m.snap.Drones))
		for _, d := range m.snap.Drones {
			rows = append(rows, table.Row{
				d.ID,
				fmt.Sprintf("(%d,%d)", d.X, d.Y),
				strconv.Itoa(d.Battery),
				d.State,
				d.Carrying,
			})
		}
		m.drones.SetRows(rows)
	case eventLineMsg:
		m.lines = append(m.lines, wordwrap.String(msg.line, m.width))
		if len(m.lines) > 200 {
			m.lines = m.lines[len(m.lines)-200:]
		}
		m.events.SetContent(strings.Join(m.lines, "\n"))
		m.events.GotoBottom()
	}
	var cmd tea.Cmd
	m.drones, cmd = m.drones.Update(msg)
	return m, cmd
}

func (m tuiModel) View() string {
	if !m.hasSnap {
		return "waiting for first tick..."
	}
	st := m.snap.Stats
	header := titleStyle.Render(fmt.Sprintf("rescuesim %s  tick %d", m.snap.MissionID, m.snap.Tick))
	stats := statsStyle.Render(fmt.Sprintf("coverage %.1f%%  found %d  rescued %d  active drones %d",
		st.Coverage*100, st.Found, st.Rescued, st.ActiveDrones))
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		stats,
		renderGrid(m.snap),
		m.drones.View(),
		m.events.View(),
	)
}

// renderGrid draws the world, one glyph per cell. Drones fade red to green
// with battery, victims black to red with health, matching the portrayal of
// the browser canvas view.
func renderGrid(snap Snapshot) string {
	type cell struct {
		glyph string
		style lipgloss.Style
	}
	cells := make(map[[2]int]cell)
	for _, o := range snap.Obstacles {
		cells[[2]int{o.X, o.Y}] = cell{"#", obstacleStyle}
	}
	for _, h := range snap.Hubs {
		cells[[2]int{h.X, h.Y}] = cell{"H", hubStyle}
	}
	for _, v := range snap.Victims {
		switch {
		case v.Rescued:
			cells[[2]int{v.X, v.Y}] = cell{"+", rescuedStyle}
		case v.Lost:
			cells[[2]int{v.X, v.Y}] = cell{"x", lostStyle}
		default:
			c := fadeColor("000000", "ff0000", v.HealthFraction)
			cells[[2]int{v.X, v.Y}] = cell{"V", lipgloss.NewStyle().Foreground(lipgloss.Color(c))}
		}
	}
	for _, d := range snap.Drones {
		if d.Failed {
			cells[[2]int{d.X, d.Y}] = cell{"X", lostStyle}
			continue
		}
		c := fadeColor("ff0000", "00ff00", d.BatteryFraction)
		cells[[2]int{d.X, d.Y}] = cell{"D", lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c))}
	}

	var b strings.Builder
	for y := 0; y < snap.Height; y++ {
		for x := 0; x < snap.Width; x++ {
			if c, ok := cells[[2]int{x, y}]; ok {
				b.WriteString(c.style.Render(c.glyph))
			} else {
				b.WriteString(emptyStyle.Render("."))
			}
			if x < snap.Width-1 {
				b.WriteByte(' ')
			}
		}
		if y < snap.Height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// fadeColor interpolates between two hex colors by fraction and returns a
// "#rrggbb" string.
func fadeColor(start, end string, frac float64) string {
	if frac < 0 {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}
	var out [3]int
	for i := 0; i < 3; i++ {
		s, _ := strconv.ParseInt(start[i*2:i*2+2], 16, 0)
		e, _ := strconv.ParseInt(end[i*2:i*2+2], 16, 0)
		out[i] = int(float64(s) + (float64(e)-float64(s))*frac)
	}
	return fmt.Sprintf("#%02x%02x%02x", out[0], out[1], out[2])
}
