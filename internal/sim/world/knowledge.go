package world

import "fmt"

// KnowledgeMode selects how robots share what they observe.
type KnowledgeMode string

const (
	// KnowledgeShared: one cache for all robots, last observation wins.
	KnowledgeShared KnowledgeMode = "shared"
	// KnowledgePrivate: every robot keeps its own cache.
	KnowledgePrivate KnowledgeMode = "private"
)

func ParseKnowledgeMode(s string) (KnowledgeMode, error) {
	switch KnowledgeMode(s) {
	case "", KnowledgeShared:
		return KnowledgeShared, nil
	case KnowledgePrivate:
		return KnowledgePrivate, nil
	}
	return "", fmt.Errorf("unknown knowledge mode %q", s)
}

// KnownCell is a copy of a cell as last observed. It never tracks the live grid.
type KnownCell struct {
	Pos        Vec2i
	State      CellState
	Target     Color
	JewelColor Color
	Correct    bool
	SeenTick   uint64
}

// Knowledge is a grid-shaped cache of observed cells.
type Knowledge struct {
	width  int
	height int
	cells  []KnownCell
	seen   []bool
}

func NewKnowledge(width, height int) *Knowledge {
	return &Knowledge{
		width:  width,
		height: height,
		cells:  make([]KnownCell, width*height),
		seen:   make([]bool, width*height),
	}
}

func (k *Knowledge) index(p Vec2i) int {
	if p.X < 0 || p.Y < 0 || p.X >= k.width || p.Y >= k.height {
		return -1
	}
	return p.X*k.height + p.Y
}

func (k *Knowledge) observe(c *Cell, tick uint64) {
	i := k.index(c.Pos)
	if i < 0 {
		return
	}
	kc := KnownCell{
		Pos:      c.Pos,
		State:    c.State,
		Target:   c.Target,
		Correct:  c.Correct,
		SeenTick: tick,
	}
	if c.State == CellJewel && c.Jewel != nil {
		kc.JewelColor = c.Jewel.Color
	}
	k.cells[i] = kc
	k.seen[i] = true
}

// At returns the cached copy of p, or false if p was never observed.
func (k *Knowledge) At(p Vec2i) (KnownCell, bool) {
	i := k.index(p)
	if i < 0 || !k.seen[i] {
		return KnownCell{}, false
	}
	return k.cells[i], true
}

func (k *Knowledge) Known() int {
	n := 0
	for _, s := range k.seen {
		if s {
			n++
		}
	}
	return n
}

// nearest scans x-major, then y, and keeps the first cell at the smallest Manhattan distance.
func (k *Knowledge) nearest(from Vec2i, match func(KnownCell) bool) (Vec2i, bool) {
	best := Vec2i{}
	bestD := -1
	for x := 0; x < k.width; x++ {
		for y := 0; y < k.height; y++ {
			i := x*k.height + y
			if !k.seen[i] || !match(k.cells[i]) {
				continue
			}
			d := Manhattan(from, k.cells[i].Pos)
			if bestD < 0 || d < bestD {
				bestD = d
				best = k.cells[i].Pos
			}
		}
	}
	return best, bestD >= 0
}
