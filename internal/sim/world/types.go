package world

import "fmt"

type Vec2i struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (v Vec2i) ToArray() [2]int { return [2]int{v.X, v.Y} }

func (v Vec2i) String() string { return fmt.Sprintf("(%d,%d)", v.X, v.Y) }

func (v Vec2i) Add(d Vec2i) Vec2i { return Vec2i{X: v.X + d.X, Y: v.Y + d.Y} }

func Manhattan(a, b Vec2i) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Color identifies a robot, a jewel, or a cell's target band.
type Color uint8

const (
	ColorNone Color = iota
	Red
	Green
	Blue
)

// RobotColors is the fixed agent order used by every phase of a tick.
var RobotColors = [3]Color{Red, Green, Blue}

func (c Color) String() string {
	switch c {
	case Red:
		return "R"
	case Green:
		return "G"
	case Blue:
		return "B"
	default:
		return ""
	}
}

func (c Color) Valid() bool { return c == Red || c == Green || c == Blue }

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func ParseColor(s string) (Color, error) {
	switch s {
	case "R", "r", "red", "RED":
		return Red, nil
	case "G", "g", "green", "GREEN":
		return Green, nil
	case "B", "b", "blue", "BLUE":
		return Blue, nil
	case "", "-", "none", "NONE":
		return ColorNone, nil
	}
	return ColorNone, fmt.Errorf("unknown color %q", s)
}

type CellState uint8

const (
	CellFree CellState = iota
	CellJewel
	CellRobot
)

func (s CellState) String() string {
	switch s {
	case CellJewel:
		return "jewel"
	case CellRobot:
		return "robot"
	default:
		return "free"
	}
}

// Direction names one of the four orthogonal neighbors. The zero value is NoDirection.
type Direction uint8

const (
	NoDirection Direction = iota
	North
	South
	East
	West
)

// ScanOrder is the fixed neighbor traversal used for deterministic tie-breaking.
var ScanOrder = [4]Direction{North, South, East, West}

func (d Direction) Offset() Vec2i {
	switch d {
	case North:
		return Vec2i{Y: 1}
	case South:
		return Vec2i{Y: -1}
	case East:
		return Vec2i{X: 1}
	case West:
		return Vec2i{X: -1}
	default:
		return Vec2i{}
	}
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	default:
		return "none"
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
