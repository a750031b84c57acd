package worldtest

import (
	"testing"

	world "jewelbots.ai/internal/sim/world"
)

func TestScenario_SingleRobotDelivers(t *testing.T) {
	h := NewHarness(t, world.Config{
		Width:       3,
		Height:      3,
		Seed:        1,
		HeatWeight:  world.DefaultHeatWeight,
		StayPenalty: world.DefaultStayPenalty,
		Layout: &world.Layout{
			Robots:  []world.Placement{{Color: world.Red, X: 0, Y: 1}},
			Jewels:  []world.Placement{{Color: world.Red, X: 0, Y: 0}},
			Targets: []world.Placement{{Color: world.Red, X: 2, Y: 2}},
		},
	})
	if h.W.IsComplete() {
		t.Fatalf("fresh world reported complete")
	}

	ticks := h.StepUntilComplete(20)
	if ticks != 4 {
		t.Fatalf("completed after %d ticks, want 4", ticks)
	}
	if got := h.W.TotalMoves(); got != 2 {
		t.Fatalf("total moves=%d want 2", got)
	}

	var kinds []string
	for _, a := range h.Audits {
		kinds = append(kinds, a.Action)
	}
	want := []string{"PICK_UP", "MOVE", "MOVE", "DROP"}
	if len(kinds) != len(want) {
		t.Fatalf("audits=%v want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("audits=%v want %v", kinds, want)
		}
	}
	last := h.Audits[len(h.Audits)-1]
	if last.To != [2]int{2, 2} || last.Jewel != 1 {
		t.Fatalf("final drop=%+v", last)
	}

	c, _ := h.W.CellAt(world.Vec2i{X: 2, Y: 2})
	if c.State != world.CellJewel || !c.Correct {
		t.Fatalf("target cell=%+v", c)
	}
	m := h.W.Metrics()
	if !m.Complete || m.JewelsCorrect != 1 || m.TotalMoves != 2 {
		t.Fatalf("metrics=%+v", m)
	}
}

func TestScenario_CompletionSticks(t *testing.T) {
	h := NewHarness(t, world.Config{
		Width:       2,
		Height:      1,
		Seed:        1,
		HeatWeight:  world.DefaultHeatWeight,
		StayPenalty: world.DefaultStayPenalty,
		Layout: &world.Layout{
			Robots:  []world.Placement{{Color: world.Green, X: 0, Y: 0}},
			Jewels:  []world.Placement{{Color: world.Green, X: 1, Y: 0}},
			Targets: []world.Placement{{Color: world.Green, X: 1, Y: 0}},
		},
	})
	if !h.W.IsComplete() {
		t.Fatalf("pre-sorted world should start complete")
	}
	for i := 0; i < 5; i++ {
		if e := h.Step(); !e.Complete {
			t.Fatalf("tick %d lost completion", e.Tick)
		}
	}
	if len(h.Audits) != 0 {
		t.Fatalf("boxed-in robot acted: %+v", h.Audits)
	}
}

func TestScenario_DefaultGridMakesProgress(t *testing.T) {
	cfg := world.Config{
		Width:       7,
		Height:      7,
		RedJewels:   3,
		GreenJewels: 3,
		BlueJewels:  3,
		Seed:        11,
		HeatWeight:  world.DefaultHeatWeight,
		StayPenalty: world.DefaultStayPenalty,
	}
	h := NewHarness(t, cfg)

	// Correct jewels are never picked up again, so the count only grows.
	prev := h.W.Metrics().JewelsCorrect
	for i := 0; i < 200; i++ {
		h.Step()
		m := h.W.Metrics()
		if m.JewelsCorrect < prev {
			t.Fatalf("tick %d: correct jewels went from %d to %d", m.Tick-1, prev, m.JewelsCorrect)
		}
		prev = m.JewelsCorrect
	}
	m := h.W.Metrics()
	if m.TotalMoves == 0 || len(h.Audits) == 0 {
		t.Fatalf("no progress after 200 ticks: %+v", m)
	}
	if m.Tick != 200 {
		t.Fatalf("metrics tick=%d want 200", m.Tick)
	}
}
