package world

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"jewelbots.ai/internal/persistence/snapshot"
)

// World owns the ground-truth grid, the jewels and the robots.
// It is a single-threaded simulation: all state must be accessed only from the goroutine
// that calls RunTick (or Run).
type World struct {
	cfg Config

	tick    atomic.Uint64
	metrics atomic.Value

	grid   []Cell
	jewels []*Jewel
	robots []*Robot

	// Shared knowledge cache (nil in private mode).
	shared *Knowledge

	complete bool

	actionsApplied  int
	actionsRejected int

	observerJoin  chan ObserverJoinRequest
	observerLeave chan string
	observers     map[string]*observerClient

	stop     chan struct{}
	stopOnce sync.Once

	// Optional loggers (may be nil). Implemented in internal/persistence/*.
	tickLogger  TickLogger
	auditLogger AuditLogger

	// Optional frame sink (may be nil). Frame writing should be off-thread.
	frameSink chan<- snapshot.FrameV1
}

// New validates cfg and builds the initial layout. Misconfiguration is reported here,
// before any tick runs.
func New(cfg Config) (*World, error) {
	if cfg.Knowledge == "" {
		cfg.Knowledge = KnowledgeShared
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("world config: %w", err)
	}
	if cfg.Seed < 0 {
		cfg.Seed = time.Now().UnixNano() & (1<<62 - 1)
	}

	w := &World{
		cfg:           cfg,
		grid:          make([]Cell, cfg.Width*cfg.Height),
		observerJoin:  make(chan ObserverJoinRequest, 16),
		observerLeave: make(chan string, 16),
		observers:     map[string]*observerClient{},
		stop:          make(chan struct{}),
	}
	for x := 0; x < cfg.Width; x++ {
		for y := 0; y < cfg.Height; y++ {
			w.grid[x*cfg.Height+y] = Cell{Pos: Vec2i{X: x, Y: y}}
		}
	}
	if cfg.Knowledge == KnowledgeShared {
		w.shared = NewKnowledge(cfg.Width, cfg.Height)
	}

	if cfg.Layout != nil {
		w.applyLayout(cfg.Layout)
	} else {
		w.placeRandom()
	}

	w.complete = w.CheckCompletion()
	w.publishMetrics(0)
	return w, nil
}

func (w *World) SetTickLogger(l TickLogger)                { w.tickLogger = l }
func (w *World) SetAuditLogger(l AuditLogger)              { w.auditLogger = l }
func (w *World) SetFrameSink(ch chan<- snapshot.FrameV1)   { w.frameSink = ch }
func (w *World) ObserverJoin() chan<- ObserverJoinRequest { return w.observerJoin }
func (w *World) ObserverLeave() chan<- string             { return w.observerLeave }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

// Config returns the effective configuration (with the resolved seed).
func (w *World) Config() Config {
	cfg := w.cfg
	if cfg.Layout != nil {
		l := *cfg.Layout
		l.Robots = append([]Placement(nil), l.Robots...)
		l.Jewels = append([]Placement(nil), l.Jewels...)
		l.Targets = append([]Placement(nil), l.Targets...)
		cfg.Layout = &l
	}
	return cfg
}

func (w *World) Seed() int64 { return w.cfg.Seed }
func (w *World) Width() int  { return w.cfg.Width }
func (w *World) Height() int { return w.cfg.Height }

func (w *World) inBounds(p Vec2i) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < w.cfg.Width && p.Y < w.cfg.Height
}

func (w *World) cellAt(p Vec2i) *Cell {
	if !w.inBounds(p) {
		return nil
	}
	return &w.grid[p.X*w.cfg.Height+p.Y]
}

func (w *World) knowledgeFor() *Knowledge {
	if w.shared != nil {
		return w.shared
	}
	return NewKnowledge(w.cfg.Width, w.cfg.Height)
}

func (w *World) addRobot(color Color, pos Vec2i) {
	seed := w.cfg.Seed*1_000_003 + int64(color)
	r := newRobot(color, pos, w.knowledgeFor(), w.cfg.HeatWeight, w.cfg.StayPenalty, seed)
	w.cellAt(pos).placeRobot(r)
	w.robots = append(w.robots, r)
}

func (w *World) addJewel(color Color, pos Vec2i) {
	j := &Jewel{ID: len(w.jewels) + 1, Color: color}
	w.cellAt(pos).placeJewel(j)
	w.jewels = append(w.jewels, j)
}

// placeRandom draws robots (R, B, G) and then jewels (R, G, B) from one seeded source,
// redrawing on occupied cells, and marks the fixed target bands.
func (w *World) placeRandom() {
	rng := rand.New(rand.NewSource(w.cfg.Seed))
	draw := func() Vec2i {
		for {
			p := Vec2i{X: rng.Intn(w.cfg.Width), Y: rng.Intn(w.cfg.Height)}
			if w.cellAt(p).Free() {
				return p
			}
		}
	}

	placed := map[Color]Vec2i{}
	for _, c := range []Color{Red, Blue, Green} {
		placed[c] = draw()
		w.cellAt(placed[c]).State = CellRobot
	}
	for _, c := range RobotColors {
		w.addRobot(c, placed[c])
	}

	for _, c := range []Color{Red, Green, Blue} {
		for i := 0; i < w.cfg.JewelCount(c); i++ {
			w.addJewel(c, draw())
		}
	}

	for _, c := range RobotColors {
		for _, p := range targetBand(w.cfg.Width, w.cfg.Height, c) {
			w.cellAt(p).Target = c
		}
	}
}

func (w *World) applyLayout(l *Layout) {
	for _, c := range RobotColors {
		for _, r := range l.Robots {
			if r.Color == c {
				w.addRobot(c, r.Pos())
			}
		}
	}
	for _, j := range l.Jewels {
		w.addJewel(j.Color, j.Pos())
	}
	for _, t := range l.Targets {
		w.cellAt(t.Pos()).Target = t.Color
	}
}

// CheckCompletion refreshes the correct flag of every targeted cell holding a jewel and
// reports whether every jewel rests on a cell of its own color.
func (w *World) CheckCompletion() bool {
	for i := range w.grid {
		c := &w.grid[i]
		if c.Target != ColorNone && c.State == CellJewel && c.Jewel != nil {
			c.Correct = c.Jewel.Color == c.Target
		}
	}
	for _, j := range w.jewels {
		if j.Carried() {
			return false
		}
		c := w.cellAt(j.Pos)
		if c == nil || c.Jewel != j || !c.Correct {
			return false
		}
	}
	return true
}

// IsComplete reports the completion state computed at the end of the last tick.
func (w *World) IsComplete() bool { return w.complete }

func (w *World) TotalMoves() int {
	n := 0
	for _, r := range w.robots {
		n += r.moves
	}
	return n
}

// CellAt returns a copy of the cell at p.
func (w *World) CellAt(p Vec2i) (CellView, bool) {
	c := w.cellAt(p)
	if c == nil {
		return CellView{}, false
	}
	return c.view(), true
}

func (w *World) Cells() []CellView {
	out := make([]CellView, 0, len(w.grid))
	for i := range w.grid {
		out = append(out, w.grid[i].view())
	}
	return out
}

func (w *World) Robots() []RobotView {
	out := make([]RobotView, 0, len(w.robots))
	for _, r := range w.robots {
		out = append(out, r.view())
	}
	return out
}

func (w *World) Jewels() []JewelView {
	out := make([]JewelView, 0, len(w.jewels))
	for _, j := range w.jewels {
		out = append(out, j.view())
	}
	return out
}

// Robot returns the robot of the given color, or nil.
func (w *World) Robot(c Color) *Robot {
	for _, r := range w.robots {
		if r.color == c {
			return r
		}
	}
	return nil
}

// SharedKnowledge returns the cache all robots write into, or nil in private mode.
func (w *World) SharedKnowledge() *Knowledge { return w.shared }

func (w *World) correctJewels() int {
	n := 0
	for _, j := range w.jewels {
		if j.Carried() {
			continue
		}
		if c := w.cellAt(j.Pos); c != nil && c.Jewel == j && c.Correct {
			n++
		}
	}
	return n
}
