package world

import "testing"

func place(c Color, x, y int) Placement { return Placement{Color: c, X: x, Y: y} }

func newLayoutWorld(t *testing.T, width, height int, l Layout) *World {
	t.Helper()
	w, err := New(Config{
		Width:       width,
		Height:      height,
		Seed:        1,
		HeatWeight:  DefaultHeatWeight,
		StayPenalty: DefaultStayPenalty,
		Layout:      &l,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func mustCell(t *testing.T, w *World, x, y int) *Cell {
	t.Helper()
	c := w.cellAt(Vec2i{X: x, Y: y})
	if c == nil {
		t.Fatalf("no cell at (%d,%d)", x, y)
	}
	return c
}
