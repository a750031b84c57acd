package world

// Zone is a robot's view of its four orthogonal neighbors. Entries are live cells;
// neighbors past the grid edge are absent.
type Zone struct {
	cells [4]*Cell
}

func newZone(w *World, pos Vec2i) Zone {
	var z Zone
	for i, d := range ScanOrder {
		z.cells[i] = w.cellAt(pos.Add(d.Offset()))
	}
	return z
}

// Neighbor returns the adjoining cell in direction d, or false at the boundary.
func (z Zone) Neighbor(d Direction) (*Cell, bool) {
	i := dirIndex(d)
	if i < 0 || z.cells[i] == nil {
		return nil, false
	}
	return z.cells[i], true
}

// first returns the first neighbor in scan order matching pred.
func (z Zone) first(pred func(c *Cell) bool) (Direction, *Cell) {
	for i, d := range ScanOrder {
		c := z.cells[i]
		if c != nil && pred(c) {
			return d, c
		}
	}
	return NoDirection, nil
}

func dirIndex(d Direction) int {
	switch d {
	case North:
		return 0
	case South:
		return 1
	case East:
		return 2
	case West:
		return 3
	}
	return -1
}
