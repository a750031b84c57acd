// Package render prints a grid as fixed-width text labels.
package render

import (
	"fmt"
	"io"
	"strings"

	"jewelbots.ai/internal/observerproto"
	"jewelbots.ai/internal/persistence/snapshot"
	"jewelbots.ai/internal/sim/encoding"
	"jewelbots.ai/internal/sim/world"
)

// Cell is the renderer's view of one grid location. Colors use the wire codes
// (0 none, 1 red, 2 green, 3 blue); State is 0 free, 1 jewel, 2 robot.
type Cell struct {
	State    uint8
	Target   uint8
	Occupant uint8
	Carrying uint8
	Correct  bool
}

const cellWidth = 8

const Legend = "Legend:\n" +
	" RR/RG/RB = Robot (Red/Green/Blue), +J<c> when carrying\n" +
	" JR/JG/JB = Jewel (Red/Green/Blue)\n" +
	" SR/SG/SB = Target Space\n" +
	" Combined like RR/SR means Robot in Target Space; * marks a correct jewel\n"

func colorLetter(c uint8) string {
	switch c {
	case 1:
		return "R"
	case 2:
		return "G"
	case 3:
		return "B"
	}
	return "?"
}

// Label returns the short text for one cell: what rests on it, then its target space.
func Label(c Cell) string {
	var primary string
	switch c.State {
	case 2:
		primary = "R" + colorLetter(c.Occupant)
		if c.Carrying != 0 {
			primary += "J" + colorLetter(c.Carrying)
		}
	case 1:
		primary = "J" + colorLetter(c.Occupant)
	}

	var secondary string
	if c.Target != 0 {
		secondary = "S" + colorLetter(c.Target)
		if c.Correct {
			secondary += "*"
		}
	}

	switch {
	case primary != "" && secondary != "":
		return primary + "/" + secondary
	case primary != "":
		return primary
	case secondary != "":
		return secondary
	}
	return "__"
}

// Grid writes a header row of x indices and one line per y, top row first.
func Grid(w io.Writer, width, height int, at func(x, y int) Cell) error {
	var sb strings.Builder
	sb.WriteString("    ")
	for x := 0; x < width; x++ {
		fmt.Fprintf(&sb, "%*d", cellWidth, x)
	}
	sb.WriteByte('\n')
	for y := height - 1; y >= 0; y-- {
		fmt.Fprintf(&sb, "%3d ", y)
		for x := 0; x < width; x++ {
			fmt.Fprintf(&sb, "%*s", cellWidth, Label(at(x, y)))
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// World renders a live world. It must be called from the goroutine driving the world.
func World(w io.Writer, wd *world.World) error {
	return Grid(w, wd.Width(), wd.Height(), func(x, y int) Cell {
		v, _ := wd.CellAt(world.Vec2i{X: x, Y: y})
		return Cell{
			State:    uint8(v.State),
			Target:   uint8(v.Target),
			Occupant: uint8(v.Occupant),
			Carrying: uint8(v.Carrying),
			Correct:  v.Correct,
		}
	})
}

func Frame(w io.Writer, fr snapshot.FrameV1) error {
	cells := make(map[[2]int]Cell, len(fr.Cells))
	for _, c := range fr.Cells {
		cells[[2]int{c.X, c.Y}] = Cell{State: c.State, Target: c.Target, Occupant: c.Occupant, Carrying: c.Carrying, Correct: c.Correct}
	}
	return Grid(w, fr.Width, fr.Height, func(x, y int) Cell { return cells[[2]int{x, y}] })
}

// Tick renders an observer TICK message, decoding its packed grid.
func Tick(w io.Writer, msg observerproto.TickMsg) error {
	if msg.Encoding != observerproto.GridEncoding {
		return fmt.Errorf("unsupported grid encoding %q", msg.Encoding)
	}
	codes, err := encoding.DecodeRLE(msg.Grid, msg.Width*msg.Height)
	if err != nil {
		return fmt.Errorf("decode grid: %w", err)
	}
	carrying := map[[2]int]uint8{}
	for _, r := range msg.Robots {
		if r.Carrying == "" {
			continue
		}
		c, err := world.ParseColor(r.Carrying)
		if err != nil {
			return err
		}
		carrying[r.Pos] = uint8(c)
	}
	return Grid(w, msg.Width, msg.Height, func(x, y int) Cell {
		pc := observerproto.UnpackCell(codes[x*msg.Height+y])
		return Cell{
			State:    pc.State,
			Target:   pc.Target,
			Occupant: pc.Occupant,
			Carrying: carrying[[2]int{x, y}],
			Correct:  pc.Correct,
		}
	})
}
