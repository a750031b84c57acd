package world

// Jewel is a colored token. Pos mirrors the cell it rests on or the robot carrying it.
type Jewel struct {
	ID    int
	Color Color
	Pos   Vec2i

	carrier *Robot
}

func (j *Jewel) Carried() bool { return j.carrier != nil }

// Cell is one grid location. State always agrees with the Jewel/Robot references.
type Cell struct {
	Pos     Vec2i
	State   CellState
	Target  Color
	Jewel   *Jewel
	Robot   *Robot
	Correct bool
}

func (c *Cell) Free() bool { return c.State == CellFree }

func (c *Cell) placeRobot(r *Robot) {
	c.State = CellRobot
	c.Robot = r
	c.Jewel = nil
}

func (c *Cell) placeJewel(j *Jewel) {
	c.State = CellJewel
	c.Jewel = j
	c.Robot = nil
	j.Pos = c.Pos
	j.carrier = nil
}

func (c *Cell) clear() {
	c.State = CellFree
	c.Jewel = nil
	c.Robot = nil
	c.Correct = false
}

// occupantColor is the color of whatever rests on the cell, if anything.
func (c *Cell) occupantColor() Color {
	switch c.State {
	case CellJewel:
		if c.Jewel != nil {
			return c.Jewel.Color
		}
	case CellRobot:
		if c.Robot != nil {
			return c.Robot.color
		}
	}
	return ColorNone
}

// CellView is a detached copy of a cell, safe to hand to renderers.
type CellView struct {
	Pos      Vec2i     `json:"pos"`
	State    CellState `json:"state"`
	Target   Color     `json:"target"`
	Occupant Color     `json:"occupant"`
	Carrying Color     `json:"carrying,omitempty"`
	Correct  bool      `json:"correct"`
}

func (c *Cell) view() CellView {
	v := CellView{
		Pos:      c.Pos,
		State:    c.State,
		Target:   c.Target,
		Occupant: c.occupantColor(),
		Correct:  c.Correct,
	}
	if c.State == CellRobot && c.Robot != nil && c.Robot.carrying != nil {
		v.Carrying = c.Robot.carrying.Color
	}
	return v
}

type JewelView struct {
	ID      int   `json:"id"`
	Color   Color `json:"color"`
	Pos     Vec2i `json:"pos"`
	Carried bool  `json:"carried"`
}

func (j *Jewel) view() JewelView {
	return JewelView{ID: j.ID, Color: j.Color, Pos: j.Pos, Carried: j.Carried()}
}
