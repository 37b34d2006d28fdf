package sim

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"rescuesim/internal/telemetry"
)

type fakeProgram struct{ msgs []tea.Msg }

func (f *fakeProgram) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

func TestTUIWriterMessages(t *testing.T) {
	p := &fakeProgram{}
	w := &TUIWriter{program: p, done: make(chan struct{})}

	snap := Snapshot{MissionID: "m", Tick: 3, Width: 5, Height: 5}
	if err := w.WriteSnapshot(snap); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	sm, ok := p.msgs[0].(snapshotMsg)
	if !ok {
		t.Fatalf("expected snapshotMsg, got %T", p.msgs[0])
	}
	if sm.Tick != 3 {
		t.Errorf("snapshot tick = %d", sm.Tick)
	}

	e := telemetry.EventRow{EventType: "found", Tick: 3, DroneID: "drone-1", VictimID: "victim-2"}
	if err := w.WriteEvent(e); err != nil {
		t.Fatalf("event: %v", err)
	}
	em, ok := p.msgs[1].(eventLineMsg)
	if !ok {
		t.Fatalf("expected eventLineMsg, got %T", p.msgs[1])
	}
	for _, want := range []string{"found", "drone-1", "victim-2"} {
		if !strings.Contains(em.line, want) {
			t.Errorf("event line %q missing %q", em.line, want)
		}
	}
}

func TestTUIModel_SnapshotFillsTable(t *testing.T) {
	m := newTUIModel()
	snap := Snapshot{
		MissionID: "m",
		Tick:      1,
		Width:     4,
		Height:    4,
		Drones: []DroneView{
			{ID: "drone-0", X: 1, Y: 1, State: "search", Battery: 80, BatteryFraction: 1},
		},
	}
	mi, _ := m.Update(snapshotMsg{snap})
	m = mi.(tuiModel)
	if !m.hasSnap {
		t.Fatal("model should hold a snapshot")
	}
	if len(m.drones.Rows()) != 1 {
		t.Fatalf("table rows = %d, want 1", len(m.drones.Rows()))
	}
	if !strings.Contains(m.View(), "tick 1") {
		t.Error("view missing tick header")
	}
}

func TestRenderGrid_Glyphs(t *testing.T) {
	snap := Snapshot{
		Width:  3,
		Height: 3,
		Drones: []DroneView{
			{ID: "drone-0", X: 0, Y: 0, BatteryFraction: 1},
			{ID: "drone-1", X: 2, Y: 2, Failed: true},
		},
		Victims: []VictimView{
			{ID: "victim-0", X: 1, Y: 0, HealthFraction: 0.5},
			{ID: "victim-1", X: 2, Y: 0, Rescued: true},
			{ID: "victim-2", X: 0, Y: 1, Lost: true},
		},
		Hubs:      []HubView{{ID: "hub-0", X: 1, Y: 1}},
		Obstacles: []ObstacleView{{X: 2, Y: 1}},
	}

	out := renderGrid(snap)
	for glyph, what := range map[string]string{
		"D": "active drone",
		"X": "failed drone",
		"V": "live victim",
		"+": "rescued victim",
		"x": "lost victim",
		"H": "hub",
		"#": "obstacle",
		".": "empty cell",
	} {
		if !strings.Contains(out, glyph) {
			t.Errorf("grid missing %s glyph %q:\n%s", what, glyph, out)
		}
	}
	if got := strings.Count(out, "\n"); got != 2 {
		t.Errorf("grid has %d newlines, want 2", got)
	}
}

func TestFadeColor(t *testing.T) {
	cases := []struct {
		frac float64
		want string
	}{
		{0, "#ff0000"},
		{1, "#00ff00"},
		{-1, "#ff0000"},
		{2, "#00ff00"},
	}
	for _, c := range cases {
		if got := fadeColor("ff0000", "00ff00", c.frac); got != c.want {
			t.Errorf("fadeColor(%g) = %s, want %s", c.frac, got, c.want)
		}
	}
	mid := fadeColor("000000", "ff0000", 0.5)
	if mid != "#7f0000" {
		t.Errorf("midpoint fade = %s, want #7f0000", mid)
	}
}
