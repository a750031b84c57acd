package world

import "math/rand"

// Goal is what a robot is currently trying to do.
type Goal uint8

const (
	GoalCollect Goal = iota
	GoalDeliver
)

func (g Goal) String() string {
	if g == GoalDeliver {
		return "deliver"
	}
	return "collect"
}

// Robot is one agent. Its state is mutated only by its own Sense/Deliberate/Act calls,
// which the world runs phase by phase.
type Robot struct {
	color Color
	pos   Vec2i

	carrying *Jewel

	knowledge *Knowledge
	heat      *HeatMap
	goal      Goal

	zone   Zone
	intent Intent
	moves  int

	heatWeight  float64
	stayPenalty float64
	rng         *rand.Rand
}

func newRobot(color Color, pos Vec2i, knowledge *Knowledge, heatWeight, stayPenalty float64, seed int64) *Robot {
	return &Robot{
		color:       color,
		pos:         pos,
		knowledge:   knowledge,
		heatWeight:  heatWeight,
		stayPenalty: stayPenalty,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (r *Robot) Color() Color          { return r.color }
func (r *Robot) Pos() Vec2i            { return r.pos }
func (r *Robot) Carrying() bool        { return r.carrying != nil }
func (r *Robot) Moves() int            { return r.moves }
func (r *Robot) Goal() Goal            { return r.goal }
func (r *Robot) Intent() Intent        { return r.intent }
func (r *Robot) Zone() Zone            { return r.zone }
func (r *Robot) Knowledge() *Knowledge { return r.knowledge }
func (r *Robot) Heat() *HeatMap        { return r.heat }

// Sense observes the four neighbors, records them in the knowledge cache and refreshes
// the goal. The heat map is (re)created when missing or when the goal flips.
func (r *Robot) Sense(w *World) {
	r.zone = newZone(w, r.pos)
	tick := w.CurrentTick()
	for _, c := range r.zone.cells {
		if c != nil {
			r.knowledge.observe(c, tick)
		}
	}

	goal := GoalCollect
	if r.carrying != nil {
		goal = GoalDeliver
	}
	if r.heat == nil || goal != r.goal {
		if r.heat == nil {
			r.heat = newHeatMap(w.cfg.Width, w.cfg.Height)
		}
		r.heat.reset(r.pos)
	}
	r.goal = goal
}

// Deliberate picks this tick's intent from the zone, the knowledge cache and the heat
// map. It never touches the grid.
func (r *Robot) Deliberate() Intent {
	r.intent = r.decide()
	return r.intent
}

func (r *Robot) decide() Intent {
	if r.carrying != nil {
		if _, c := r.zone.first(func(c *Cell) bool { return c.Target == r.color && c.Free() }); c != nil {
			return DropAt(c.Pos)
		}
	} else {
		if _, c := r.zone.first(r.holdsLooseJewel); c != nil {
			return PickUpFrom(c.Pos)
		}
	}

	if goal, ok := r.findGoal(); ok {
		if next, moved := r.stepToward(goal); moved {
			return MoveTo(next)
		}
	}
	return r.roam()
}

func (r *Robot) holdsLooseJewel(c *Cell) bool {
	return c.State == CellJewel && c.Jewel != nil && c.Jewel.Color == r.color && !c.Correct
}

// findGoal returns the nearest known cell worth heading to for the current goal.
func (r *Robot) findGoal() (Vec2i, bool) {
	if r.heat == nil {
		return Vec2i{}, false
	}
	if r.goal == GoalDeliver {
		return r.knowledge.nearest(r.pos, func(k KnownCell) bool {
			return k.Target == r.color && k.State == CellFree
		})
	}
	return r.knowledge.nearest(r.pos, func(k KnownCell) bool {
		return k.State == CellJewel && k.JewelColor == r.color && !k.Correct
	})
}

func (r *Robot) score(p, goal Vec2i, stay bool) float64 {
	s := float64(Manhattan(p, goal)) + float64(r.heat.At(p))*r.heatWeight
	if stay {
		s += r.stayPenalty
	}
	return s
}

// stepToward scores staying put against each free neighbor, visited in shuffled order.
// It reports false when staying scores best.
func (r *Robot) stepToward(goal Vec2i) (Vec2i, bool) {
	order := ScanOrder
	r.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	best := r.pos
	bestScore := r.score(r.pos, goal, true)
	for _, d := range order {
		c, ok := r.zone.Neighbor(d)
		if !ok || !c.Free() {
			continue
		}
		if s := r.score(c.Pos, goal, false); s < bestScore {
			bestScore = s
			best = c.Pos
		}
	}
	return best, best != r.pos
}

// roam moves to the coolest free neighbor, or idles when boxed in.
func (r *Robot) roam() Intent {
	var best *Cell
	bestHeat := 0
	for _, d := range ScanOrder {
		c, ok := r.zone.Neighbor(d)
		if !ok || !c.Free() {
			continue
		}
		h := 0
		if r.heat != nil {
			h = r.heat.At(c.Pos)
		}
		if best == nil || h < bestHeat {
			best = c
			bestHeat = h
		}
	}
	if best == nil {
		return Idle()
	}
	return MoveTo(best.Pos)
}

// ActResult describes what Act attempted and whether the grid changed.
type ActResult struct {
	Robot   Color
	Intent  Intent
	From    Vec2i
	To      Vec2i
	Applied bool
	Jewel   int // jewel moved by the action, 0 if none
}

// Act executes the pending intent against the grid and resets it to Idle.
// Invalid actions are silently dropped.
func (r *Robot) Act(w *World) ActResult {
	in := r.intent
	r.intent = Idle()

	res := ActResult{Robot: r.color, Intent: in, From: r.pos, To: r.pos}
	switch in.Kind() {
	case IntentMove:
		in = in.clampedFrom(r.pos)
		res.Intent = in
		res.Applied = r.tryMove(w, in.Target())
		res.To = r.pos
		if res.Applied && r.carrying != nil {
			res.Jewel = r.carrying.ID
		}
	case IntentPickUp:
		res.To = in.Target()
		res.Applied = r.pickUp(w.cellAt(in.Target()))
		if res.Applied {
			res.Jewel = r.carrying.ID
		}
	case IntentDrop:
		res.To = in.Target()
		carried := r.carrying
		res.Applied = r.drop(w.cellAt(in.Target()))
		if res.Applied {
			res.Jewel = carried.ID
		}
	}
	return res
}

func (r *Robot) tryMove(w *World, to Vec2i) bool {
	if Manhattan(r.pos, to) != 1 {
		return false
	}
	dst := w.cellAt(to)
	if dst == nil || !dst.Free() {
		return false
	}
	src := w.cellAt(r.pos)
	from := r.pos

	src.clear()
	dst.placeRobot(r)
	r.pos = to
	if r.carrying != nil {
		r.carrying.Pos = to
	}
	r.moves++
	if r.heat != nil {
		r.heat.inc(from)
	}
	return true
}

func (r *Robot) pickUp(c *Cell) bool {
	if c == nil || r.carrying != nil {
		return false
	}
	if c.State != CellJewel || c.Jewel == nil || c.Jewel.Color != r.color {
		return false
	}
	j := c.Jewel
	c.clear()
	j.carrier = r
	j.Pos = r.pos
	r.carrying = j
	return true
}

func (r *Robot) drop(c *Cell) bool {
	if c == nil || r.carrying == nil {
		return false
	}
	if c.Target != r.color || !c.Free() {
		return false
	}
	c.placeJewel(r.carrying)
	c.Correct = true
	r.carrying = nil
	return true
}

type RobotView struct {
	Color    Color  `json:"color"`
	Pos      Vec2i  `json:"pos"`
	Carrying Color  `json:"carrying,omitempty"`
	Goal     string `json:"goal"`
	Moves    int    `json:"moves"`
}

func (r *Robot) view() RobotView {
	v := RobotView{Color: r.color, Pos: r.pos, Goal: r.goal.String(), Moves: r.moves}
	if r.carrying != nil {
		v.Carrying = r.carrying.Color
	}
	return v
}
