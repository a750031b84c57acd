package world

import (
	"errors"
	"fmt"
	"time"
)

type Config struct {
	RunID  string `json:"run_id,omitempty"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	RedJewels   int `json:"red_jewels"`
	GreenJewels int `json:"green_jewels"`
	BlueJewels  int `json:"blue_jewels"`

	// Seed < 0 picks a time-based seed; the effective seed is kept in Config().Seed.
	Seed int64 `json:"seed"`

	HeatWeight  float64       `json:"heat_weight"`
	StayPenalty float64       `json:"stay_penalty"`
	Knowledge   KnowledgeMode `json:"knowledge"`

	// Driver-only settings. They never influence tick results.
	TickInterval    time.Duration `json:"tick_interval"`
	MaxTicks        uint64        `json:"max_ticks,omitempty"`
	StopOnComplete  bool          `json:"stop_on_complete,omitempty"`
	FrameEveryTicks uint64        `json:"frame_every_ticks,omitempty"`

	// Optional hand-placed layout. When set it replaces random placement and target bands.
	Layout *Layout `json:"layout,omitempty"`
}

// Placement puts one robot, jewel or target color at a grid position.
type Placement struct {
	Color Color `json:"color"`
	X     int   `json:"x"`
	Y     int   `json:"y"`
}

func (p Placement) Pos() Vec2i { return Vec2i{X: p.X, Y: p.Y} }

type Layout struct {
	Robots  []Placement `json:"robots"`
	Jewels  []Placement `json:"jewels"`
	Targets []Placement `json:"targets"`
}

const (
	DefaultHeatWeight  = 3.0
	DefaultStayPenalty = 0.25
)

func (c Config) JewelCount(color Color) int {
	if c.Layout != nil {
		n := 0
		for _, j := range c.Layout.Jewels {
			if j.Color == color {
				n++
			}
		}
		return n
	}
	switch color {
	case Red:
		return c.RedJewels
	case Green:
		return c.GreenJewels
	case Blue:
		return c.BlueJewels
	}
	return 0
}

func (c Config) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", c.Width, c.Height)
	}
	if c.RedJewels < 0 || c.GreenJewels < 0 || c.BlueJewels < 0 {
		return errors.New("jewel counts must be non-negative")
	}
	if c.HeatWeight < 0 {
		return fmt.Errorf("heat weight must be non-negative, got %v", c.HeatWeight)
	}
	if c.StayPenalty < 0 {
		return fmt.Errorf("stay penalty must be non-negative, got %v", c.StayPenalty)
	}
	if _, err := ParseKnowledgeMode(string(c.Knowledge)); err != nil {
		return err
	}
	if c.Layout != nil {
		return c.Layout.validate(c.Width, c.Height)
	}

	cells := c.Width * c.Height
	need := len(RobotColors) + c.RedJewels + c.GreenJewels + c.BlueJewels
	if need > cells {
		return fmt.Errorf("need %d free cells for robots and jewels, grid has %d", need, cells)
	}
	for _, color := range RobotColors {
		have := len(targetBand(c.Width, c.Height, color))
		if want := c.JewelCount(color); want > have {
			return fmt.Errorf("%d %s jewels but only %d %s target cells on a %dx%d grid", want, color, have, color, c.Width, c.Height)
		}
	}
	return nil
}

func (l *Layout) validate(width, height int) error {
	occupied := map[Vec2i]string{}
	inBounds := func(p Vec2i) bool { return p.X >= 0 && p.Y >= 0 && p.X < width && p.Y < height }

	if len(l.Robots) == 0 {
		return errors.New("layout: at least one robot is required")
	}
	seenRobot := map[Color]bool{}
	for _, r := range l.Robots {
		if !r.Color.Valid() {
			return fmt.Errorf("layout: robot at %v has no color", r.Pos())
		}
		if seenRobot[r.Color] {
			return fmt.Errorf("layout: duplicate %s robot", r.Color)
		}
		seenRobot[r.Color] = true
		if !inBounds(r.Pos()) {
			return fmt.Errorf("layout: robot %s at %v is off-grid", r.Color, r.Pos())
		}
		if what, ok := occupied[r.Pos()]; ok {
			return fmt.Errorf("layout: robot %s at %v overlaps %s", r.Color, r.Pos(), what)
		}
		occupied[r.Pos()] = "robot " + r.Color.String()
	}
	for _, j := range l.Jewels {
		if !j.Color.Valid() {
			return fmt.Errorf("layout: jewel at %v has no color", j.Pos())
		}
		if !inBounds(j.Pos()) {
			return fmt.Errorf("layout: jewel %s at %v is off-grid", j.Color, j.Pos())
		}
		if what, ok := occupied[j.Pos()]; ok {
			return fmt.Errorf("layout: jewel %s at %v overlaps %s", j.Color, j.Pos(), what)
		}
		occupied[j.Pos()] = "jewel " + j.Color.String()
	}
	targets := map[Vec2i]bool{}
	for _, t := range l.Targets {
		if !t.Color.Valid() {
			return fmt.Errorf("layout: target at %v has no color", t.Pos())
		}
		if !inBounds(t.Pos()) {
			return fmt.Errorf("layout: target %s at %v is off-grid", t.Color, t.Pos())
		}
		if targets[t.Pos()] {
			return fmt.Errorf("layout: two targets at %v", t.Pos())
		}
		targets[t.Pos()] = true
	}
	return nil
}

// targetBand lists the target cells of a color: one row per color (green lowest, then
// blue, then red) spread over the grid height, on every odd column short of the right edge.
func targetBand(width, height int, color Color) []Vec2i {
	var k int
	switch color {
	case Green:
		k = 0
	case Blue:
		k = 1
	case Red:
		k = 2
	default:
		return nil
	}
	if height < 3 {
		return nil
	}
	row := (2*k + 1) * height / 6
	var out []Vec2i
	for x := 1; x < width-1; x += 2 {
		out = append(out, Vec2i{X: x, Y: row})
	}
	return out
}
